package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vroute/internal/errors"
	"github.com/vango-dev/vroute/pkg/router"
)

func matchCmd(g *globals) *cobra.Command {
	var (
		asJSON  bool
		params  map[string]string
		require bool
	)

	cmd := &cobra.Command{
		Use:   "match <location>",
		Short: "Match a location against the route table",
		Long: `Match a location and print the route it produces.

A location is a path with optional query and hash, or name:<route>
with --param for named routes. Redirects are followed.

Examples:
  routectl match '/users/42?tab=posts#top'
  routectl match name:user --param id=42
  routectl match /missing --require`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.load(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			r, err := s.newRouter()
			if err != nil {
				return err
			}

			route := r.Match(parseLocation(args[0], params))
			if require && !route.IsMatched() {
				return errors.New(errors.CodeUnmatched).WithDetail(args[0])
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, viewRoute(route))
			}
			printRoute(out, route)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the route as JSON")
	cmd.Flags().StringToStringVarP(&params, "param", "p", nil, "Route params for named locations (key=value)")
	cmd.Flags().BoolVar(&require, "require", false, "Fail when nothing matches")

	return cmd
}

type resolvedView struct {
	Href     string    `json:"href"`
	Location string    `json:"location"`
	Route    routeView `json:"route"`
}

func resolveCmd(g *globals) *cobra.Command {
	var (
		asJSON     bool
		params     map[string]string
		from       string
		appendPath bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <location>",
		Short: "Resolve a location to an href",
		Long: `Resolve a location relative to a current route and print the href
a link to it would use, with the configured base and mode.

Examples:
  routectl resolve edit --from /users/42 --append
  routectl resolve name:user --param id=7 --base /app --mode hash`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.load(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			r, err := s.newRouter()
			if err != nil {
				return err
			}

			var current *router.Route
			if from != "" {
				current = r.Match(router.Path(from))
			}
			res := r.Resolve(parseLocation(args[0], params), current, appendPath)

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, resolvedView{
					Href:     res.Href,
					Location: res.Location.Path,
					Route:    viewRoute(res.Route),
				})
			}
			fmt.Fprintf(out, "href:      %s\n", res.Href)
			printRoute(out, res.Route)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().StringToStringVarP(&params, "param", "p", nil, "Route params for named locations (key=value)")
	cmd.Flags().StringVar(&from, "from", "", "Current route to resolve against (default: start)")
	cmd.Flags().BoolVar(&appendPath, "append", false, "Append relative paths to the current path")

	return cmd
}
