package check

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetContext(context.Background())
	return cmd, out
}

func TestRunCheck(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "lib/good.hcl", []byte(`
snippet "ok" {
  body = "hello $${1:world}$0"
}
`), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "lib/bad.hcl", []byte(`
snippet "broken" {
  body = "$${1:open"
}
`), 0o644))

	t.Run("clean_library_passes", func(t *testing.T) {
		cmd, out := newTestCmd()
		require.NoError(t, runCheck(cmd, fsys, []string{"lib/good.hcl"}, false))
		assert.Empty(t, out.String())
	})

	t.Run("broken_library_fails", func(t *testing.T) {
		cmd, out := newTestCmd()
		err := runCheck(cmd, fsys, []string{"lib/*.hcl"}, false)
		require.Error(t, err)
		assert.Contains(t, out.String(), "broken")
	})

	t.Run("json_output", func(t *testing.T) {
		cmd, out := newTestCmd()
		err := runCheck(cmd, fsys, []string{"lib/bad.hcl"}, true)
		require.Error(t, err)
		assert.Contains(t, out.String(), `"severity":1`)
	})

	t.Run("no_matches_is_not_an_error", func(t *testing.T) {
		cmd, _ := newTestCmd()
		assert.NoError(t, runCheck(cmd, fsys, []string{"nope/**/*.hcl"}, false))
	})
}
