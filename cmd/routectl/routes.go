package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vroute/pkg/router"
)

type routeEntry struct {
	Path        string         `json:"path"`
	Name        string         `json:"name,omitempty"`
	Views       []string       `json:"views"`
	AliasOf     string         `json:"aliasOf,omitempty"`
	Redirect    bool           `json:"redirect,omitempty"`
	BeforeEnter bool           `json:"beforeEnter,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
}

type routeTable struct {
	Source      string       `json:"source"`
	Fingerprint string       `json:"fingerprint"`
	Routes      []routeEntry `json:"routes"`
	Warnings    []string     `json:"warnings,omitempty"`
}

// listRoutes returns the records in match priority order.
func listRoutes(r *router.Router, source string) routeTable {
	reg := r.Registry()
	table := routeTable{
		Source:      source,
		Fingerprint: reg.Fingerprint(),
		Routes:      []routeEntry{},
	}
	for _, path := range reg.PathList() {
		rec, ok := reg.ByPath(path)
		if !ok {
			continue
		}
		entry := routeEntry{
			Path:        path,
			Name:        rec.Name(),
			Views:       rec.Views(),
			Redirect:    rec.HasRedirect(),
			BeforeEnter: rec.BeforeEnter() != nil,
			Meta:        map[string]any(rec.Meta()),
		}
		if rec.MatchAs() != "" {
			entry.AliasOf = rec.MatchAs()
		}
		table.Routes = append(table.Routes, entry)
	}
	for _, w := range reg.Warnings() {
		table.Warnings = append(table.Warnings, w.String())
	}
	return table
}

func routesCmd(g *globals) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List routes in match priority order",
		Long: `List every route record in the order the matcher tries them.

Wildcard routes are listed last. Aliases are listed with the route
they render. The fingerprint changes whenever the priority table does.

Examples:
  routectl routes
  routectl routes --routes s3://config/routes.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.load(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			r, err := s.newRouter()
			if err != nil {
				return err
			}

			table := listRoutes(r, s.source)
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, table)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tNAME\tVIEWS\tNOTES")
			for _, e := range table.Routes {
				var notes []string
				if e.AliasOf != "" {
					notes = append(notes, "alias of "+e.AliasOf)
				}
				if e.Redirect {
					notes = append(notes, "redirect")
				}
				if e.BeforeEnter {
					notes = append(notes, "guarded")
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Path, dash(e.Name), dash(strings.Join(e.Views, ",")), strings.Join(notes, ", "))
			}
			tw.Flush()

			fmt.Fprintln(out)
			info(out, "%d routes, fingerprint %s", len(table.Routes), table.Fingerprint[:12])
			for _, w := range table.Warnings {
				warn(out, "%s", w)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the table as JSON")

	return cmd
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
