package main

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/testrouter/pkg/router"
)

func routesCmd(opts *projectOptions) *cobra.Command {
	var patterns bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the route tree",
		Long: `Print the route tree built from the route config.

With --patterns, print the flattened match patterns instead, in the
order they are tried.

Examples:
  testrouter routes
  testrouter routes --patterns
  testrouter -C ./examples/shop routes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if patterns {
				for _, pat := range p.handler.Patterns() {
					fmt.Fprintln(out, pat)
				}
				return nil
			}
			printTree(out, p.tree)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&patterns, "patterns", "p", false, "Print match patterns in precedence order")
	return cmd
}

// printTree writes one line per route: its ID, full path and flags.
func printTree(w io.Writer, tree []*router.Object) {
	var walk func(objs []*router.Object, parent string, depth int)
	walk = func(objs []*router.Object, parent string, depth int) {
		for _, o := range objs {
			full := fullPath(parent, o.Path)
			var flags []string
			if o.Index() {
				flags = append(flags, "index")
			}
			if o.Path == "" && !o.Index() {
				flags = append(flags, "layout")
			}
			line := fmt.Sprintf("%s%s  %s", strings.Repeat("  ", depth), o.ID, full)
			if len(flags) > 0 {
				line += "  (" + strings.Join(flags, ", ") + ")"
			}
			fmt.Fprintln(w, line)
			walk(o.Children(), full, depth+1)
		}
	}
	walk(tree, "", 0)
}

func fullPath(parent, p string) string {
	if strings.HasPrefix(p, "/") {
		return path.Clean(p)
	}
	return path.Clean("/" + path.Join(parent, p))
}
