package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vroute/internal/errors"
	"github.com/vango-dev/vroute/pkg/router"
	"github.com/vango-dev/vroute/pkg/telemetry"
)

// navGuards are before-each guards built from flags.
type navGuards struct {
	deny      []string
	fail      []string
	redirects map[string]string
}

func hasPrefixIn(prefixes []string) func(to, from *router.Route) bool {
	return func(to, _ *router.Route) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(to.Path(), p) {
				return true
			}
		}
		return false
	}
}

func (n navGuards) guard() router.Guard {
	deny := router.Only(hasPrefixIn(n.deny), func(to, from *router.Route, next router.Next) {
		next(router.Abort())
	})
	fail := router.Only(hasPrefixIn(n.fail), func(to, from *router.Route, next router.Next) {
		next(router.Fail(fmt.Errorf("navigation to %s refused", to.Path())))
	})
	redirect := func(to, from *router.Route, next router.Next) {
		if target, ok := n.redirects[to.Path()]; ok {
			next(router.Redirect(router.Path(target)))
			return
		}
		next(router.Proceed())
	}
	return router.ComposeGuards(deny, fail, redirect)
}

// runStep performs one navigation step and describes the outcome.
func runStep(ctx context.Context, r *router.Router, step string) string {
	switch {
	case step == "back":
		r.Back()
		return "back → " + r.CurrentRoute().FullPath()
	case step == "forward":
		r.Forward()
		return "forward → " + r.CurrentRoute().FullPath()
	case strings.HasPrefix(step, "go:"):
		n, err := strconv.Atoi(strings.TrimPrefix(step, "go:"))
		if err != nil {
			return "invalid step " + strconv.Quote(step)
		}
		r.Go(n)
		return step + " → " + r.CurrentRoute().FullPath()
	}

	var opts []router.NavigateOption
	target := step
	if rest, ok := strings.CutPrefix(step, "replace:"); ok {
		target = rest
		opts = append(opts, router.WithReplace())
	}

	route, err := r.NavigateWait(ctx, router.Path(target), opts...)
	if err == nil {
		return target + " → " + route.FullPath()
	}
	outcome := telemetry.Outcome(err)
	var ne *router.NavigationError
	if stderrors.As(err, &ne) && ne.Reason == router.Redirected {
		return fmt.Sprintf("%s %s → %s", target, outcome, r.CurrentRoute().FullPath())
	}
	return fmt.Sprintf("%s %s: %v", target, outcome, err)
}

func printStack(w io.Writer, h *router.MemoryHistory) {
	idx := h.Index()
	for i, e := range h.Entries() {
		marker := " "
		if i == idx {
			marker = "*"
		}
		fmt.Fprintf(w, "  %s %d %s\n", marker, i, e)
	}
}

func navCmd(g *globals) *cobra.Command {
	var (
		statePath string
		guards    navGuards
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "nav <step>...",
		Short: "Replay navigations through the guard pipeline",
		Long: `Run a sequence of navigations against an in-memory history.

Each step is a path to push, replace:<path>, back, forward or go:<n>.
Guards built from --deny, --fail and --redirect run before every
navigation. With --state the history is restored from and saved to a
file between runs.

Examples:
  routectl nav / /users/1 /users/2 back
  routectl nav /admin --deny /admin
  routectl nav /old-home --redirect /old-home=/
  routectl nav /next --state .routectl-history`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.load(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			h := router.NewMemoryHistory()
			r, err := s.newRouter(router.WithHistory(h))
			if err != nil {
				return err
			}
			r.BeforeEach(guards.guard())

			out := cmd.OutOrStdout()

			if statePath != "" {
				data, err := os.ReadFile(statePath)
				switch {
				case err == nil:
					if err := h.RestoreState(data); err != nil {
						return errors.New(errors.CodeStateInvalid).Wrap(err).WithRoutes(statePath)
					}
					if h.Index() >= 0 {
						h.Go(0)
					}
					info(out, "restored %d entries from %s", len(h.Entries()), statePath)
				case !os.IsNotExist(err):
					return errors.New(errors.CodeStateInvalid).Wrap(err)
				}
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			for _, step := range args {
				stepCtx, cancel := context.WithTimeout(ctx, timeout)
				fmt.Fprintln(out, runStep(stepCtx, r, step))
				cancel()
			}

			fmt.Fprintln(out)
			printStack(out, h)

			if statePath != "" {
				data, err := h.MarshalState()
				if err != nil {
					return errors.New(errors.CodeStateInvalid).Wrap(err)
				}
				if err := os.WriteFile(statePath, data, 0644); err != nil {
					return errors.New(errors.CodeStateInvalid).Wrap(err).WithRoutes(statePath)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&statePath, "state", "", "History state file (CBOR) to restore and save")
	cmd.Flags().StringSliceVar(&guards.deny, "deny", nil, "Abort navigations to paths with this prefix")
	cmd.Flags().StringSliceVar(&guards.fail, "fail", nil, "Fail navigations to paths with this prefix")
	cmd.Flags().StringToStringVar(&guards.redirects, "redirect", nil, "Redirect navigations from one path to another (from=to)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Maximum time per navigation")

	return cmd
}
