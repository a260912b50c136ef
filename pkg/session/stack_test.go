package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/gosnip/pkg/document"
	"github.com/walteh/gosnip/pkg/session"
)

func TestStackNestedExpansion(t *testing.T) {
	ctx := context.Background()
	b := document.NewBuffer()
	ev := &eventLog{}
	st := session.NewStack()

	parent, err := session.Expand(ctx, b, b, ev, mustTree(t, "${1:x} $1"), 0)
	require.NoError(t, err)
	require.NoError(t, st.Push(ctx, parent))
	require.Equal(t, "x x", b.Text())
	require.Equal(t, "1", parent.Focused())

	// expanding a snippet while tabstop 1 is focused pushes an
	// independent child session at the cursor
	child, err := session.Expand(ctx, b, b, ev, mustTree(t, "hi$0"), b.CursorPosition())
	require.NoError(t, err)
	require.NoError(t, st.Push(ctx, child))

	assert.Equal(t, 2, st.Len())
	assert.Same(t, child, st.Active())
	assert.True(t, parent.Suspended())
	assert.Equal(t, "hix x", b.Text())

	// type inside the child
	b.InsertTextAt(b.CursorPosition(), "!")
	require.NoError(t, child.Synchronize(ctx))
	assert.Equal(t, "hi!x x", b.Text())

	// popping folds the child's text back into the parent's mirrors
	require.NoError(t, st.Pop(ctx))

	assert.Equal(t, 1, st.Len())
	assert.Same(t, parent, st.Active())
	assert.False(t, parent.Suspended())
	assert.Equal(t, "hi!x hi!x", b.Text())

	assert.True(t, child.Stopped())
	assert.Contains(t, ev.entries, "suspend")
	assert.Contains(t, ev.entries, "resume")
}

func TestStackPopEmpty(t *testing.T) {
	st := session.NewStack()
	assert.Error(t, st.Pop(context.Background()))
	assert.Nil(t, st.Active())
}

func TestStackPushNil(t *testing.T) {
	err := session.NewStack().Push(context.Background(), nil)
	var cerr *session.ConfigurationError
	require.ErrorAs(t, err, &cerr)
}

func TestStackRemoveCorruptSession(t *testing.T) {
	ctx := context.Background()
	b := document.NewBuffer(document.WithText("()"))
	st := session.NewStack()

	s, err := session.Expand(ctx, b, b, nil, mustTree(t, "${1:mid}$0"), 1)
	require.NoError(t, err)
	require.NoError(t, st.Push(ctx, s))
	require.Equal(t, "(mid)", b.Text())

	// wipe the whole snippet region plus surrounding text
	b.Replace(0, len(b.Text()), "gone")

	var corrupt *session.CorruptionError
	require.ErrorAs(t, s.Validate(ctx), &corrupt)

	require.NoError(t, st.Remove(ctx, s))
	assert.Equal(t, 0, st.Len())
	assert.True(t, s.Stopped())

	assert.Error(t, st.Remove(ctx, s), "removing twice fails")
}

func TestStackStopAll(t *testing.T) {
	ctx := context.Background()
	b := document.NewBuffer()
	st := session.NewStack()

	outer, err := session.Expand(ctx, b, b, nil, mustTree(t, "${1:a}$0"), 0)
	require.NoError(t, err)
	require.NoError(t, st.Push(ctx, outer))

	inner, err := session.Expand(ctx, b, b, nil, mustTree(t, "${1:b}$0"), b.CursorPosition())
	require.NoError(t, err)
	require.NoError(t, st.Push(ctx, inner))

	require.NoError(t, st.StopAll(ctx))
	assert.Equal(t, 0, st.Len())
	assert.True(t, outer.Stopped())
	assert.True(t, inner.Stopped())
}
