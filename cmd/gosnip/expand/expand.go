// Package expand implements the `gosnip expand` subcommand, which
// renders a snippet from a library through a full in-memory session.
package expand

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/gosnip/pkg/config"
	"github.com/walteh/gosnip/pkg/document"
	"github.com/walteh/gosnip/pkg/session"
	"github.com/walteh/gosnip/pkg/snippet"
	"gitlab.com/tozd/go/errors"
)

func NewExpandCommand() *cobra.Command {
	var (
		file      string
		vars      map[string]string
		showOrder bool
	)

	cmd := &cobra.Command{
		Use:   "expand <library> <snippet>",
		Short: "Expand a snippet and print its rendered text",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(cmd, afero.NewOsFs(), args[0], args[1], file, vars, showOrder)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "target file name, used for TM_* variables and editorconfig")
	cmd.Flags().StringToStringVar(&vars, "var", nil, "extra variable overrides (name=value)")
	cmd.Flags().BoolVar(&showOrder, "order", false, "also print the tabstop visit order")
	return cmd
}

func runExpand(cmd *cobra.Command, fsys afero.Fs, libPath, name, file string, vars map[string]string, showOrder bool) error {
	ctx := cmd.Context()

	lib, err := config.Load(fsys, libPath)
	if err != nil {
		return errors.Errorf("loading library: %w", err)
	}

	entry, ok := lib.Lookup(name)
	if !ok {
		return errors.Errorf("library %s has no snippet %q", libPath, name)
	}

	lookup := lib.LookupTable(entry)
	for k, v := range vars {
		lookup[k] = v
	}

	wd, _ := os.Getwd()
	vc := &snippet.VarContext{
		Filepath:        file,
		Directory:       filepath.Dir(file),
		WorkspaceFolder: wd,
		WorkspaceName:   filepath.Base(wd),
		Now:             time.Now(),
	}

	tree, err := snippet.Parse(entry.Body)
	if err != nil {
		return errors.Errorf("parsing snippet %q: %w", name, err)
	}
	tree = snippet.Normalize(tree, lookup, vc)

	buf := document.NewBuffer(
		document.WithName(file),
		document.WithEditorConfig(),
	)

	s, err := session.Expand(ctx, buf, buf, nil, tree, 0)
	if err != nil {
		return errors.Errorf("expanding snippet %q: %w", name, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("snippet", name).
		Strs("order", s.Order()).
		Str("focused", s.Focused()).
		Msg("snippet expanded")

	if err := s.Stop(ctx, false); err != nil {
		return errors.Errorf("stopping session: %w", err)
	}

	cmd.Println(buf.Text())
	if showOrder {
		cmd.Println("order: " + strings.Join(s.Order(), " > "))
	}
	return nil
}
