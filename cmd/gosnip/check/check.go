// Package check implements the `gosnip check` subcommand, which
// validates snippet library files matched by glob patterns.
package check

import (
	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/gosnip/pkg/config"
	"github.com/walteh/gosnip/pkg/diagnostic"
	"gitlab.com/tozd/go/errors"
)

func NewCheckCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "check <glob>...",
		Short: "Validate snippet library files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, afero.NewOsFs(), args, jsonOut)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit diagnostics as JSON")
	return cmd
}

func runCheck(cmd *cobra.Command, fsys afero.Fs, patterns []string, jsonOut bool) error {
	ctx := cmd.Context()

	var formatter diagnostic.Formatter = diagnostic.TextFormatter{}
	if jsonOut {
		formatter = diagnostic.JSONFormatter{}
	}

	failed := false
	checked := 0

	for _, pattern := range patterns {
		matches, err := doublestar.Glob(afero.NewIOFS(fsys), pattern)
		if err != nil {
			return errors.Errorf("bad glob %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			zerolog.Ctx(ctx).Warn().Str("pattern", pattern).Msg("no library files matched")
			continue
		}

		for _, path := range matches {
			lib, err := config.Load(fsys, path)
			if err != nil {
				return errors.Errorf("loading %s: %w", path, err)
			}

			d := diagnostic.CheckLibrary(path, lib)
			checked++

			if d.Count() > 0 {
				out, err := formatter.Format(d)
				if err != nil {
					return errors.Errorf("formatting diagnostics for %s: %w", path, err)
				}
				cmd.OutOrStdout().Write(out)
				if jsonOut {
					cmd.Println()
				}
			}
			if d.HasErrors() {
				failed = true
			}
		}
	}

	zerolog.Ctx(ctx).Debug().Int("libraries", checked).Bool("failed", failed).Msg("check finished")

	if failed {
		return errors.Errorf("snippet check failed")
	}
	return nil
}
