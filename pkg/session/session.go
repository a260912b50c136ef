package session

import (
	"context"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/walteh/gosnip/pkg/snippet"
	"github.com/walteh/gosnip/pkg/tabstop"
	"gitlab.com/tozd/go/errors"
)

// Session is one live expansion of a snippet. It owns the node arena,
// one anchor per node plus an enclosing anchor for the whole snippet,
// the tabstop ring, and the currently focused tabstop. A session always
// has a focused tabstop until stopped; there is no idle state.
//
// Sessions are single-threaded: the embedder must serialize calls into
// one session. Independent sessions never share anchors, so a
// per-session exclusion is sufficient.
type Session struct {
	id      string
	doc     Document
	anchors Anchors
	events  Events

	nodes []node
	roots []int
	byID  map[string][]int

	// allIDs is the depth-first discovery order of tabstop ids in the
	// original tree; the ring is re-derived from its live subset.
	allIDs []string
	ring   *tabstop.Ring

	enclosing AnchorID

	focused   string
	visited   map[string]bool
	visitLog  []string
	suspended bool
	stopped   bool
}

// Expand materializes a normalized tree into the document at position
// `at` and focuses the first tabstop in visit order. The tree must have
// been through snippet.Normalize; a tree violating the
// value-or-placeholder invariant fails with a ConfigurationError.
func Expand(ctx context.Context, doc Document, anchors Anchors, events Events, tree []snippet.Node, at int) (*Session, error) {
	if doc == nil || anchors == nil {
		return nil, configErr("document and anchor service are required")
	}
	if events == nil {
		events = NopEvents{}
	}

	nodes, roots, byID, err := buildArena(tree)
	if err != nil {
		return nil, err
	}
	ring := tabstop.BuildOrder(tree)
	if ring.Len() == 0 {
		return nil, configErr("tree has no tabstops (tree not normalized?)")
	}

	s := &Session{
		id:      xid.New().String(),
		doc:     doc,
		anchors: anchors,
		events:  events,
		nodes:   nodes,
		roots:   roots,
		byID:    byID,
		allIDs:  snippet.TabstopIDs(tree),
		ring:    ring,
		visited: map[string]bool{},
	}

	if err := s.materialize(ctx, at); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("session", s.id).
		Strs("order", s.ring.Order()).
		Int("at", at).
		Msg("session started")

	s.events.SessionStart(s.Snapshot())

	if err := s.Focus(ctx, s.ring.First()); err != nil {
		return nil, err
	}
	return s, nil
}

// ID returns the session's identifier, used in events and logs.
func (s *Session) ID() string {
	return s.id
}

// Focused returns the currently focused tabstop identifier.
func (s *Session) Focused() string {
	return s.focused
}

// Order returns the current visit order over live tabstops.
func (s *Session) Order() []string {
	return s.ring.Order()
}

// Stopped reports whether the session was stopped.
func (s *Session) Stopped() bool {
	return s.stopped
}

// Snapshot returns the session view carried on events.
func (s *Session) Snapshot() Snapshot {
	visited := make([]string, len(s.visitLog))
	copy(visited, s.visitLog)
	return Snapshot{
		ID:      s.id,
		Focused: s.focused,
		Order:   s.ring.Order(),
		Visited: visited,
	}
}

// materialize walks the tree depth-first, creating an anchor for every
// node and writing its resolved text immediately after, so each anchor
// ends up covering exactly that node's rendered region. A node's anchor
// stays in expand mode while its subtree is being written (absorbing
// descendant writes at its end) and is closed to left-pinned once done,
// so the next sibling's text is not captured.
//
// Before any write the insertion line's leading indent is folded into
// the arena, so multi-line bodies land correctly in indented context
// and the arena text stays byte-equal to the document text that
// Synchronize reads back.
func (s *Session) materialize(ctx context.Context, at int) error {
	if indent := s.insertionIndent(at); indent != "" {
		for idx := range s.nodes {
			if s.nodes[idx].hasText {
				s.nodes[idx].text = strings.ReplaceAll(s.nodes[idx].text, "\n", "\n"+indent)
			}
		}
	}

	enclosing, err := s.anchors.Create(at)
	if err != nil {
		return errors.Errorf("creating enclosing anchor: %w", err)
	}
	s.enclosing = enclosing
	if err := s.anchors.SetGrowth(enclosing, GrowExpand); err != nil {
		return errors.Errorf("opening enclosing anchor: %w", err)
	}

	pos := at
	for _, root := range s.roots {
		pos, err = s.writeNode(root, pos)
		if err != nil {
			return err
		}
	}

	s.doc.SetCursor(pos)
	return nil
}

// insertionIndent returns the leading whitespace of the line the
// snippet is inserted on; every body line after the first continues it.
// The indent is copied verbatim, style normalization of typed text
// stays with the document.
func (s *Session) insertionIndent(at int) string {
	line := s.doc.ReadText(0, at)
	if i := strings.LastIndexByte(line, '\n'); i >= 0 {
		line = line[i+1:]
	}
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return line[:i]
		}
	}
	return line
}

func (s *Session) writeNode(idx, pos int) (int, error) {
	n := &s.nodes[idx]

	a, err := s.anchors.Create(pos)
	if err != nil {
		return 0, errors.Errorf("creating anchor for node %d: %w", idx, err)
	}
	n.anchor = a
	if err := s.anchors.SetGrowth(a, GrowExpand); err != nil {
		return 0, errors.Errorf("opening anchor for node %d: %w", idx, err)
	}

	if n.hasText {
		if err := s.anchors.SetText(a, n.text); err != nil {
			return 0, errors.Errorf("writing node %d: %w", idx, err)
		}
		pos += len(n.text)
	} else {
		for _, c := range n.children {
			pos, err = s.writeNode(c, pos)
			if err != nil {
				return 0, err
			}
		}
	}

	if err := s.anchors.SetGrowth(a, GrowLeft); err != nil {
		return 0, errors.Errorf("closing anchor for node %d: %w", idx, err)
	}
	return pos, nil
}

// refNode returns the arena index of the reference node for a tabstop:
// the first alive node in depth-first order carrying that id.
func (s *Session) refNode(id string) (int, bool) {
	for _, idx := range s.byID[id] {
		if s.nodes[idx].alive {
			return idx, true
		}
	}
	return 0, false
}

// Focus makes id the focused tabstop: marks it visited, moves the
// cursor onto its reference node (to the start when a placeholder will
// be replaced, to the end when content will be appended), and adjusts
// every anchor's growth so only the reference region absorbs typed
// text. When the reference node carries choices, or its content is
// empty, the offer signal fires.
func (s *Session) Focus(ctx context.Context, id string) error {
	ref, ok := s.refNode(id)
	if !ok {
		return configErr("tabstop %q is not part of the live tree", id)
	}

	s.focused = id
	if !s.visited[id] {
		s.visited[id] = true
		s.visitLog = append(s.visitLog, id)
	}

	start, end, err := s.anchors.Range(s.nodes[ref].anchor)
	if err != nil {
		return errors.Errorf("resolving reference anchor for tabstop %q: %w", id, err)
	}

	if len(s.nodes[ref].children) > 0 {
		// placeholder content will be replaced
		s.doc.SetCursor(start)
	} else {
		// content will be appended
		s.doc.SetCursor(end)
	}

	if err := s.adjustGrowth(ref); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Debug().
		Str("session", s.id).
		Str("tabstop", id).
		Int("cursor", s.doc.CursorPosition()).
		Msg("focused tabstop")

	if len(s.nodes[ref].choices) > 0 || currentText(s.nodes, ref) == "" {
		s.events.Offer(id, s.nodes[ref].choices)
	}
	return nil
}

// adjustGrowth pins nodes before the reference to their left edge and
// nodes after it to their right edge, while the reference node, its
// ancestors and the enclosing anchor expand. Arena index order is
// depth-first order, which is what "before" and "after" mean here. This
// keeps neighbouring same-boundary anchors from capturing text meant
// for the reference region.
func (s *Session) adjustGrowth(ref int) error {
	ancestors := map[int]bool{}
	for p := s.nodes[ref].parent; p >= 0; p = s.nodes[p].parent {
		ancestors[p] = true
	}

	for idx := range s.nodes {
		if !s.nodes[idx].alive {
			continue
		}
		g := GrowRight
		switch {
		case idx == ref || ancestors[idx]:
			g = GrowExpand
		case idx < ref:
			g = GrowLeft
		}
		if err := s.anchors.SetGrowth(s.nodes[idx].anchor, g); err != nil {
			return errors.Errorf("adjusting growth of node %d: %w", idx, err)
		}
	}
	return s.anchors.SetGrowth(s.enclosing, GrowExpand)
}

// Synchronize folds the reference node's observed document text back
// into the arena and rewrites every other node sharing the focused
// tabstop id to match. It must be invoked on every document-change
// notification, after the edit has been applied to the document.
// Observing unchanged content is the normal steady state and a no-op.
func (s *Session) Synchronize(ctx context.Context) error {
	ref, ok := s.refNode(s.focused)
	if !ok {
		return configErr("focused tabstop %q is not part of the live tree", s.focused)
	}

	start, end, err := s.anchors.Range(s.nodes[ref].anchor)
	if err != nil {
		return errors.Errorf("resolving reference anchor for tabstop %q: %w", s.focused, err)
	}
	observed := s.doc.ReadText(start, end)

	if observed == currentText(s.nodes, ref) {
		// external notification with nothing changed
		return nil
	}

	// the reference's placeholder is consumed by the first real edit
	if err := s.consumeSubtree(ref); err != nil {
		return err
	}
	s.nodes[ref].text = observed
	s.nodes[ref].hasText = true

	for _, idx := range s.byID[s.focused] {
		if idx == ref || !s.nodes[idx].alive {
			continue
		}
		if err := s.consumeSubtree(idx); err != nil {
			return err
		}
		s.nodes[idx].text = observed
		s.nodes[idx].hasText = true
		// re-aim growth at the mirror being rewritten, so neighbouring
		// anchors (the reference included) don't capture its text
		if err := s.adjustGrowth(idx); err != nil {
			return err
		}
		if err := s.anchors.SetText(s.nodes[idx].anchor, observed); err != nil {
			return errors.Errorf("mirroring tabstop %q into node %d: %w", s.focused, idx, err)
		}
	}
	if err := s.adjustGrowth(ref); err != nil {
		return err
	}

	// consumed placeholders may have removed nested tabstop ids
	s.ring = tabstop.New(liveTabstopIDs(s.nodes, s.byID, s.allIDs))

	zerolog.Ctx(ctx).Debug().
		Str("session", s.id).
		Str("tabstop", s.focused).
		Str("text", observed).
		Msg("synchronized mirrors")
	return nil
}

// consumeSubtree discards a node's placeholder children, deleting their
// anchors and marking them dead.
func (s *Session) consumeSubtree(idx int) error {
	var kill func(int) error
	kill = func(i int) error {
		n := &s.nodes[i]
		n.alive = false
		if err := s.anchors.Delete(n.anchor); err != nil {
			return errors.Errorf("deleting anchor of node %d: %w", i, err)
		}
		for _, c := range n.children {
			if err := kill(c); err != nil {
				return err
			}
		}
		return nil
	}
	for _, c := range s.nodes[idx].children {
		if err := kill(c); err != nil {
			return err
		}
	}
	s.nodes[idx].children = nil
	return nil
}

// JumpNext focuses the next tabstop in the ring, JumpPrev the previous
// one. Ids that disappeared from the live tree are skipped; the walk
// terminates because the ring always contains at least the final
// tabstop. Focus side effects complete before Jump returns.
func (s *Session) JumpNext(ctx context.Context) error {
	return s.jump(ctx, func(id string) (string, bool) { return s.ring.Next(id) })
}

// JumpPrev focuses the previous tabstop in the ring.
func (s *Session) JumpPrev(ctx context.Context) error {
	return s.jump(ctx, func(id string) (string, bool) { return s.ring.Prev(id) })
}

func (s *Session) jump(ctx context.Context, step func(string) (string, bool)) error {
	from := s.focused
	target := from
	if !s.ring.Contains(target) {
		target = s.ring.First()
	}

	for i := 0; i < s.ring.Len(); i++ {
		next, ok := step(target)
		if !ok {
			return errors.Errorf("tabstop %q missing from ring", target)
		}
		target = next
		if _, live := s.refNode(target); live {
			break
		}
	}

	s.events.JumpPre(from, target)
	if err := s.Focus(ctx, target); err != nil {
		return err
	}
	s.events.JumpPost(from, target)
	return nil
}

// Stop ends the session. A full stop deletes every anchor; a suspend
// (used when a nested session starts inside a focused tabstop) is a
// data-only operation that preserves anchors and merely clears the
// session's visual state.
func (s *Session) Stop(ctx context.Context, suspend bool) error {
	if suspend {
		s.suspended = true
		zerolog.Ctx(ctx).Debug().Str("session", s.id).Msg("session suspended")
		s.events.SessionSuspend(s.Snapshot())
		return nil
	}

	var result *multierror.Error
	for idx := range s.nodes {
		if !s.nodes[idx].alive {
			continue
		}
		if err := s.anchors.Delete(s.nodes[idx].anchor); err != nil {
			result = multierror.Append(result, errors.Errorf("deleting anchor of node %d: %w", idx, err))
		}
	}
	if err := s.anchors.Delete(s.enclosing); err != nil {
		result = multierror.Append(result, errors.Errorf("deleting enclosing anchor: %w", err))
	}

	s.stopped = true
	zerolog.Ctx(ctx).Debug().Str("session", s.id).Msg("session stopped")
	s.events.SessionStop(s.Snapshot())
	return result.ErrorOrNil()
}

// Resume reactivates a suspended session. The caller (normally the
// stack) re-runs Synchronize first, so text typed inside a nested
// session folds back into the parent's mirrors.
func (s *Session) Resume(ctx context.Context) {
	s.suspended = false
	zerolog.Ctx(ctx).Debug().Str("session", s.id).Msg("session resumed")
	s.events.SessionResume(s.Snapshot())
}

// Suspended reports whether the session is currently suspended.
func (s *Session) Suspended() bool {
	return s.suspended
}

// Validate checks that every live anchor still resolves. On failure it
// returns a CorruptionError aggregating the per-anchor failures; the
// embedder should force-stop the session rather than attempt repair.
func (s *Session) Validate(ctx context.Context) error {
	var result *multierror.Error
	for idx := range s.nodes {
		if !s.nodes[idx].alive {
			continue
		}
		if _, _, err := s.anchors.Range(s.nodes[idx].anchor); err != nil {
			result = multierror.Append(result, errors.Errorf("node %d: %w", idx, err))
		}
	}
	if _, _, err := s.anchors.Range(s.enclosing); err != nil {
		result = multierror.Append(result, errors.Errorf("enclosing anchor: %w", err))
	}

	if err := result.ErrorOrNil(); err != nil {
		return &CorruptionError{SessionID: s.id, Err: err}
	}
	return nil
}

// Text returns the snippet's full current text, read from the enclosing
// anchor.
func (s *Session) Text() (string, error) {
	start, end, err := s.anchors.Range(s.enclosing)
	if err != nil {
		return "", errors.Errorf("resolving enclosing anchor: %w", err)
	}
	return s.doc.ReadText(start, end), nil
}
