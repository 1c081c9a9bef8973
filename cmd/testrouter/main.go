package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/testrouter/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var opts projectOptions

	root := &cobra.Command{
		Use:   "testrouter",
		Short: "Inspect the route tree a testrouter harness builds",
		Long: `testrouter reads a project's testrouter.config, route config and
route module files the same way the test harness does, without running
any application code.

  • routes  prints the route tree and its match patterns
  • match   shows which branch a URL resolves to
  • check   validates the configuration and every module file`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				errors.DisableColors()
			}
		},
	}

	root.PersistentFlags().StringVarP(&opts.root, "root", "C", ".", "Project root directory")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log each module load")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		routesCmd(&opts),
		matchCmd(&opts),
		checkCmd(&opts),
		versionCmd(),
	)
	return root
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
