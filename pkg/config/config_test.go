package config_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/gosnip/pkg/config"
)

const hclLibrary = `
defaults {
  variables = {
    AUTHOR = "me"
  }
}

snippet "forloop" {
  prefix      = "for"
  description = "counted for loop"
  body        = "for ($${1:i} = 0; $1 < $${2:n}; $1++) {\n\t$0\n}"
}

snippet "header" {
  prefix = "hdr"
  body   = "// by $AUTHOR"

  variables = {
    AUTHOR = "someone else"
  }
}
`

const yamlLibrary = `
defaults:
  variables:
    AUTHOR: me
snippets:
  - name: forloop
    prefix: for
    description: counted for loop
    body: "for (${1:i} = 0; $1 < ${2:n}; $1++) {\n\t$0\n}"
  - name: header
    prefix: hdr
    body: "// by $AUTHOR"
    variables:
      AUTHOR: someone else
`

func writeLibrary(t *testing.T, path, content string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
	return fsys
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
	}{
		{
			name:    "hcl",
			path:    "snippets.hcl",
			content: hclLibrary,
		},
		{
			name:    "yaml",
			path:    "snippets.yaml",
			content: yamlLibrary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := writeLibrary(t, tt.path, tt.content)

			lib, err := config.Load(fsys, tt.path)
			require.NoError(t, err)
			require.Len(t, lib.Snippets, 2)

			forloop, ok := lib.Lookup("forloop")
			require.True(t, ok)
			assert.Equal(t, "for", forloop.Prefix)
			assert.Equal(t, "counted for loop", forloop.Description)
			assert.Contains(t, forloop.Body, "${1:i}")

			_, ok = lib.Lookup("nope")
			assert.False(t, ok)
		})
	}
}

func TestHCLInterpolationEscape(t *testing.T) {
	// `${` is HCL template interpolation; snippet bodies write it as
	// `$${`, which HCL evaluates back to the literal form
	fsys := writeLibrary(t, "esc.hcl", `
snippet "x" {
  body = "$${1:a} $1 $${2}"
}
`)

	lib, err := config.Load(fsys, "esc.hcl")
	require.NoError(t, err)

	entry, ok := lib.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "${1:a} $1 ${2}", entry.Body)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing_file", func(t *testing.T) {
		_, err := config.Load(afero.NewMemMapFs(), "absent.hcl")
		assert.Error(t, err)
	})

	t.Run("bad_hcl", func(t *testing.T) {
		fsys := writeLibrary(t, "bad.hcl", `snippet "x" {`)
		_, err := config.Load(fsys, "bad.hcl")
		assert.Error(t, err)
	})

	t.Run("unknown_yaml_field", func(t *testing.T) {
		fsys := writeLibrary(t, "bad.yaml", "snippets: []\nbogus: true\n")
		_, err := config.Load(fsys, "bad.yaml")
		assert.Error(t, err)
	})
}

func TestByPrefix(t *testing.T) {
	fsys := writeLibrary(t, "snippets.hcl", hclLibrary)
	lib, err := config.Load(fsys, "snippets.hcl")
	require.NoError(t, err)

	matches := lib.ByPrefix("fo")
	require.Len(t, matches, 1)
	assert.Equal(t, "forloop", matches[0].Name)

	assert.Len(t, lib.ByPrefix(""), 2)
	assert.Empty(t, lib.ByPrefix("zzz"))
}

func TestLookupTable(t *testing.T) {
	fsys := writeLibrary(t, "snippets.hcl", hclLibrary)
	lib, err := config.Load(fsys, "snippets.hcl")
	require.NoError(t, err)

	forloop, _ := lib.Lookup("forloop")
	assert.Equal(t, map[string]string{"AUTHOR": "me"}, lib.LookupTable(forloop))

	header, _ := lib.Lookup("header")
	assert.Equal(t, map[string]string{"AUTHOR": "someone else"}, lib.LookupTable(header),
		"per-snippet variables override library defaults")
}
