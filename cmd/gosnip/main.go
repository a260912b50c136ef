package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/walteh/gosnip/cmd/gosnip/check"
	"github.com/walteh/gosnip/cmd/gosnip/expand"
	"github.com/walteh/gosnip/cmd/gosnip/parse"
	pkgdebug "github.com/walteh/gosnip/pkg/debug"
	"gitlab.com/tozd/go/errors"
)

func main() {
	if err := run(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	var verbose, noColor bool

	rootCmd := &cobra.Command{
		Use:   "gosnip",
		Short: "A snippet templating engine and library checker",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := pkgdebug.NewLogger(os.Stderr, verbose, !noColor)
			cmd.SetContext(logger.WithContext(cmd.Context()))
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	cmdVersion := &cobra.Command{
		Use: "raw-version",
		Run: func(cmdz *cobra.Command, args []string) {
			cmdz.Println(rootCmd.Version)
		},
		Hidden: true,
	}

	rootCmd.AddCommand(cmdVersion)

	rootCmd.AddCommand(check.NewCheckCommand())
	rootCmd.AddCommand(expand.NewExpandCommand())
	rootCmd.AddCommand(parse.NewParseCommand())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}

	return nil
}
