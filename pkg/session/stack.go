package session

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
)

// Stack holds the live sessions of one embedder surface (for example,
// one editor window), outermost first. Only the top session is active
// and receives navigation and synchronization calls; starting a snippet
// inside an active session pushes a new independent session rather than
// merging trees.
//
// The stack is an injectable object owned by the embedding layer, so
// multiple independent engine instances can coexist.
type Stack struct {
	sessions []*Session
}

// NewStack creates an empty session stack.
func NewStack() *Stack {
	return &Stack{}
}

// Len returns the number of stacked sessions.
func (st *Stack) Len() int {
	return len(st.sessions)
}

// Active returns the top session, or nil when the stack is empty.
func (st *Stack) Active() *Session {
	if len(st.sessions) == 0 {
		return nil
	}
	return st.sessions[len(st.sessions)-1]
}

// Push suspends the currently active session (if any) and makes s the
// active one. The displaced session is suspended before the new one is
// exposed.
func (st *Stack) Push(ctx context.Context, s *Session) error {
	if s == nil {
		return configErr("cannot push a nil session")
	}
	if top := st.Active(); top != nil {
		if err := top.Stop(ctx, true); err != nil {
			return errors.Errorf("suspending active session: %w", err)
		}
	}
	st.sessions = append(st.sessions, s)
	zerolog.Ctx(ctx).Debug().
		Str("session", s.ID()).
		Int("depth", len(st.sessions)).
		Msg("session pushed")
	return nil
}

// Pop stops the active session and resumes the one underneath. The
// parent re-runs Synchronize for its still-focused tabstop before
// resuming, so text typed inside the nested session folds back into the
// parent's mirrors.
func (st *Stack) Pop(ctx context.Context) error {
	top := st.Active()
	if top == nil {
		return errors.Errorf("session stack is empty")
	}
	if err := top.Stop(ctx, false); err != nil {
		return errors.Errorf("stopping session %s: %w", top.ID(), err)
	}
	st.sessions = st.sessions[:len(st.sessions)-1]

	parent := st.Active()
	if parent == nil {
		return nil
	}
	if err := parent.Synchronize(ctx); err != nil {
		return errors.Errorf("synchronizing parent session %s: %w", parent.ID(), err)
	}
	parent.Resume(ctx)
	return nil
}

// Remove force-stops a session anywhere in the stack and drops it,
// used when validation detected corruption. The session is removed
// silently; when it was the active one, the newly exposed top resumes
// without a synchronize pass (its anchors were never displaced by a
// nested edit that completed).
func (st *Stack) Remove(ctx context.Context, s *Session) error {
	for i, cur := range st.sessions {
		if cur != s {
			continue
		}
		wasTop := i == len(st.sessions)-1
		err := cur.Stop(ctx, false)
		st.sessions = append(st.sessions[:i], st.sessions[i+1:]...)
		if wasTop {
			if parent := st.Active(); parent != nil {
				parent.Resume(ctx)
			}
		}
		return err
	}
	return errors.Errorf("session %s is not on the stack", s.ID())
}

// StopAll stops every session, top first, combining any errors.
func (st *Stack) StopAll(ctx context.Context) error {
	var err error
	for i := len(st.sessions) - 1; i >= 0; i-- {
		err = multierr.Append(err, st.sessions[i].Stop(ctx, false))
	}
	st.sessions = nil
	return err
}
