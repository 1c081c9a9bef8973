package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/testrouter/internal/errors"
	"github.com/vango-dev/testrouter/pkg/router"
)

type checkReport struct {
	Config     string   `json:"config"`
	AppDir     string   `json:"appDirectory"`
	Routes     int      `json:"routes"`
	Patterns   []string `json:"patterns"`
	FlatRoutes bool     `json:"flatRoutes,omitempty"`
	Ignore     []string `json:"ignore,omitempty"`
}

func checkCmd(opts *projectOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the project configuration and route files",
		Long: `Load testrouter.config, the route config and the root module, and
confirm every route module file exists. Route patterns are registered
with the matcher so conflicts surface here rather than in a test.

Exits non-zero on the first problem found. With --json the result, or
the error, is written to stdout as one JSON object.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			p, err := loadProject(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				if asJSON {
					errors.FprintJSON(out, err)
				}
				return err
			}

			count := 0
			for _, o := range p.tree {
				o.Walk(func(*router.Object, int) { count++ })
			}
			if asJSON {
				return writeReport(out, checkReport{
					Config:     p.cfg.Path(),
					AppDir:     p.cfg.AppDir(),
					Routes:     count,
					Patterns:   p.handler.Patterns(),
					FlatRoutes: p.cfg.FlatRoutes,
					Ignore:     p.cfg.Ignore,
				})
			}

			success(out, "Config %s", p.cfg.Path())
			success(out, "App directory %s", p.cfg.AppDir())
			success(out, "%d routes, %d patterns", count, len(p.handler.Patterns()))
			if p.cfg.FlatRoutes {
				info(out, "routes discovered from %s", p.cfg.RoutesDirectory)
			}
			if len(p.cfg.Ignore) > 0 {
				info(out, "ignoring %v", p.cfg.Ignore)
			}
			if count == 1 {
				warn(out, "No routes besides root")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Write the result as JSON")
	return cmd
}

func writeReport(w io.Writer, r checkReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
