package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vango-dev/testrouter/internal/errors"
	"github.com/vango-dev/testrouter/pkg/router"
)

func matchCmd(opts *projectOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <url>",
		Short: "Show the routes a URL matches",
		Long: `Resolve a URL against the route tree and print the matched branch,
root first, with its URL params.

Examples:
  testrouter match /products/42
  testrouter match "/search?q=lamp"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			loc := router.ParsePath(args[0])
			matches, ok := p.handler.Match(loc.Pathname)
			if !ok {
				return errors.Newf(errors.CategoryResolution, "no route matches %s", loc.Pathname).
					WithSuggestion("Run 'testrouter routes --patterns' to list match patterns")
			}

			out := cmd.OutOrStdout()
			success(out, "%s matched %s", loc.Pathname, matches[len(matches)-1].Pattern)
			for _, m := range matches {
				info(out, "%s", m.Route.ID)
			}
			params := matches[len(matches)-1].Params
			if len(params) > 0 {
				fmt.Fprintln(out)
				keys := make([]string, 0, len(params))
				for k := range params {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					info(out, "%s = %s", k, params[k])
				}
			}
			return nil
		},
	}
	return cmd
}
