// Package document provides an in-memory reference implementation of
// the session engine's Document and Anchors interfaces, for embedders
// that have no host editor and for tests. Positions are byte offsets.
package document

import (
	"github.com/editorconfig/editorconfig-core-go/v2"
	"github.com/walteh/gosnip/pkg/position"
	"github.com/walteh/gosnip/pkg/session"
	"gitlab.com/tozd/go/errors"
)

// anchor tracks one range. Growth decides whether an edit exactly at a
// boundary is absorbed; valid turns false when the covered text is
// destroyed.
type anchor struct {
	start  int
	end    int
	growth session.Growth
	valid  bool
}

// Buffer is a mutable text document with anchor tracking.
type Buffer struct {
	name    string
	text    string
	cursor  int
	anchors map[session.AnchorID]*anchor
	nextID  session.AnchorID
	indent  *editorconfig.Definition
}

var (
	_ session.Document = (*Buffer)(nil)
	_ session.Anchors  = (*Buffer)(nil)
)

// Option configures a Buffer.
type Option func(*Buffer)

// WithText sets the initial buffer content.
func WithText(text string) Option {
	return func(b *Buffer) {
		b.text = text
	}
}

// WithName sets the buffer's file name (used for editorconfig
// resolution and variable contexts).
func WithName(name string) Option {
	return func(b *Buffer) {
		b.name = name
	}
}

// WithIndentDefinition sets the editorconfig definition used to
// normalize continued indentation on multi-line inserts.
func WithIndentDefinition(def *editorconfig.Definition) Option {
	return func(b *Buffer) {
		b.indent = def
	}
}

// WithEditorConfig resolves the indent definition from the .editorconfig
// files governing the buffer's name. Resolution failures leave indent
// continuation verbatim.
func WithEditorConfig() Option {
	return func(b *Buffer) {
		if b.name == "" {
			return
		}
		if def, err := editorconfig.GetDefinitionForFilename(b.name); err == nil {
			b.indent = def
		}
	}
}

// NewBuffer creates a buffer. Options apply in order, so WithName must
// precede WithEditorConfig.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		anchors: map[session.AnchorID]*anchor{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the buffer's file name.
func (b *Buffer) Name() string {
	return b.name
}

// Text returns the full buffer content.
func (b *Buffer) Text() string {
	return b.text
}

// CursorPosition returns the cursor's byte offset.
func (b *Buffer) CursorPosition() int {
	return b.cursor
}

// SetCursor moves the cursor, clamping to the buffer bounds.
func (b *Buffer) SetCursor(pos int) {
	b.cursor = b.clamp(pos)
}

// CursorPlace returns the cursor as a 1-indexed line and
// grapheme-cluster column.
func (b *Buffer) CursorPlace() position.Place {
	place := position.PlaceOf(b.text, b.cursor)
	line := position.LineAt(b.text, b.cursor)
	place.Character = position.GraphemeColumn(line, place.Character)
	return place
}

// ReadText returns the text between two offsets, clamped to the buffer.
func (b *Buffer) ReadText(start, end int) string {
	start = b.clamp(start)
	end = b.clamp(end)
	if end < start {
		start, end = end, start
	}
	return b.text[start:end]
}

// InsertTextAt inserts text at pos, continuing the current line's
// leading indentation on every following line of a multi-line insert
// (normalized through the editorconfig definition when present). The
// cursor ends up after the inserted text.
func (b *Buffer) InsertTextAt(pos int, text string) {
	pos = b.clamp(pos)
	text = b.continueIndent(pos, text)
	b.replace(pos, pos, text, -1)
	b.cursor = pos + len(text)
}

// Replace substitutes text for the region [start,end), the way a host
// editor applies a user edit over a selection. Anchors adjust; no
// indent continuation is applied. The cursor ends up after the
// replacement text.
func (b *Buffer) Replace(start, end int, text string) {
	start = b.clamp(start)
	end = b.clamp(end)
	if end < start {
		start, end = end, start
	}
	b.replace(start, end, text, -1)
	b.cursor = start + len(text)
}

// Create returns a new empty-range anchor at pos.
func (b *Buffer) Create(pos int) (session.AnchorID, error) {
	pos = b.clamp(pos)
	id := b.nextID
	b.nextID++
	b.anchors[id] = &anchor{start: pos, end: pos, growth: session.GrowExpand, valid: true}
	return id, nil
}

// Range returns an anchor's current extent, failing when the anchor was
// deleted or its covered text destroyed.
func (b *Buffer) Range(id session.AnchorID) (int, int, error) {
	a, err := b.lookup(id)
	if err != nil {
		return 0, 0, err
	}
	return a.start, a.end, nil
}

// SetText replaces an anchor's covered text; afterwards the anchor
// covers exactly the new text. Raw text: no indent continuation is
// applied, per the engine contract.
func (b *Buffer) SetText(id session.AnchorID, text string) error {
	a, err := b.lookup(id)
	if err != nil {
		return err
	}
	b.replace(a.start, a.end, text, id)
	a.end = a.start + len(text)
	return nil
}

// SetGrowth sets an anchor's boundary behaviour.
func (b *Buffer) SetGrowth(id session.AnchorID, g session.Growth) error {
	a, err := b.lookup(id)
	if err != nil {
		return err
	}
	a.growth = g
	return nil
}

// Delete discards an anchor.
func (b *Buffer) Delete(id session.AnchorID) error {
	if _, ok := b.anchors[id]; !ok {
		return errors.Errorf("anchor %d does not exist", id)
	}
	delete(b.anchors, id)
	return nil
}

func (b *Buffer) lookup(id session.AnchorID) (*anchor, error) {
	a, ok := b.anchors[id]
	if !ok {
		return nil, errors.Errorf("anchor %d does not exist", id)
	}
	if !a.valid {
		return nil, errors.Errorf("anchor %d no longer resolves: its covered text was destroyed", id)
	}
	return a, nil
}

func (b *Buffer) clamp(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(b.text) {
		return len(b.text)
	}
	return pos
}

// replace substitutes text for the region [start,end) and adjusts every
// anchor except owner. Owner (when >= 0) is excluded because its range
// is set explicitly by the caller.
//
// Adjustment rules for an insertion of n bytes at pos:
//
//   - anchors entirely after pos shift right
//   - anchors spanning pos grow
//   - a boundary exactly at pos absorbs the insertion only when the
//     growth mode allows it: the start boundary for GrowLeft/GrowExpand,
//     the end boundary for GrowRight/GrowExpand
//   - an empty anchor at pos absorbs only under GrowExpand; it stays
//     put under GrowLeft and shifts right under GrowRight
//
// A deletion invalidates every non-empty anchor whose covered range is
// strictly contained in the deleted region and clips partially
// overlapping ones. A deletion matching an anchor's range exactly
// collapses the anchor to an empty one instead (that is the
// select-and-retype flow, and the anchor must survive it).
func (b *Buffer) replace(start, end int, repl string, owner session.AnchorID) {
	removed := end - start
	n := len(repl)

	for id, a := range b.anchors {
		if id == owner || !a.valid {
			continue
		}

		if removed > 0 {
			if a.start < a.end && a.start >= start && a.end <= end &&
				!(a.start == start && a.end == end) {
				a.valid = false
				continue
			}
			a.start = delAdjust(a.start, start, end)
			a.end = delAdjust(a.end, start, end)
		}

		if n > 0 {
			a.start, a.end = insAdjust(a, start, n)
		}
	}

	if b.cursor >= end {
		b.cursor += n - removed
	} else if b.cursor > start {
		b.cursor = start + n
	}

	b.text = b.text[:start] + repl + b.text[end:]
}

func delAdjust(p, start, end int) int {
	switch {
	case p <= start:
		return p
	case p >= end:
		return p - (end - start)
	default:
		return start
	}
}

func insAdjust(a *anchor, pos, n int) (int, int) {
	switch {
	case a.start == a.end && a.start == pos:
		// empty anchor exactly at the insertion point
		switch a.growth {
		case session.GrowExpand:
			return a.start, a.end + n
		case session.GrowRight:
			return a.start + n, a.end + n
		default:
			return a.start, a.end
		}
	case pos < a.start:
		return a.start + n, a.end + n
	case pos == a.start:
		if a.growth == session.GrowLeft || a.growth == session.GrowExpand {
			return a.start, a.end + n
		}
		return a.start + n, a.end + n
	case pos < a.end:
		return a.start, a.end + n
	case pos == a.end:
		if a.growth == session.GrowRight || a.growth == session.GrowExpand {
			return a.start, a.end + n
		}
		return a.start, a.end
	default:
		return a.start, a.end
	}
}
