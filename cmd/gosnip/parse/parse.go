// Package parse implements the `gosnip parse` subcommand, which dumps
// the node tree of a snippet body as JSON.
package parse

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"github.com/walteh/gosnip/pkg/snippet"
	"gitlab.com/tozd/go/errors"
)

func NewParseCommand() *cobra.Command {
	var normalize bool

	cmd := &cobra.Command{
		Use:   "parse [body]",
		Short: "Parse a snippet body and print its node tree as JSON",
		Long:  "Parse a snippet body given as an argument, or read from stdin when omitted.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var body string
			if len(args) == 1 {
				body = args[0]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Errorf("reading stdin: %w", err)
				}
				body = string(data)
			}

			tree, err := snippet.Parse(body)
			if err != nil {
				return errors.Errorf("parsing snippet body: %w", err)
			}
			if normalize {
				tree = snippet.Normalize(tree, nil, nil)
			}

			out, err := json.MarshalIndent(tree, "", "  ")
			if err != nil {
				return errors.Errorf("encoding tree: %w", err)
			}
			cmd.Println(string(out))
			return nil
		},
	}

	cmd.Flags().BoolVar(&normalize, "normalize", false, "normalize the tree before printing")
	return cmd
}
