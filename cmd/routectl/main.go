package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vroute/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "routectl",
		Short: "Inspect and exercise route tables",
		Long: `routectl loads a route table and runs it through the router.

Route tables are YAML, JSON (comments allowed) or TOML files, read from
disk or from s3://bucket/key. Use it to:

  • list routes in match priority order
  • check a table for shadowed routes and dead redirects
  • match and resolve locations
  • replay navigations through guards with a saved history
  • serve an inspector API with live reload and metrics`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.noColor {
				errors.DisableColors()
			}
		},
	}
	rootCmd.PersistentFlags().AddFlagSet(g.flagSet())

	rootCmd.AddCommand(
		routesCmd(g),
		checkCmd(g),
		matchCmd(g),
		resolveCmd(g),
		navCmd(g),
		serveCmd(g),
		versionCmd(),
	)
	return rootCmd
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
