package main

import (
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vroute/internal/errors"
	"github.com/vango-dev/vroute/pkg/router"
)

var validationCodes = map[router.ValidationErrorType]string{
	router.ErrorShadowedRoute: errors.CodeRouteShadowed,
	router.ErrorDeadRedirect:  errors.CodeDeadRedirect,
}

// validationProblem converts a validation error into a coded error.
func validationProblem(v router.ValidationError) *errors.RouteError {
	code, ok := validationCodes[v.Type]
	if !ok {
		code = errors.CodeRouteWarning
	}
	e := errors.New(code).WithRoutes(v.Paths...)
	e.Message = v.Message
	if v.Details != "" {
		e.Detail = v.Details
	}
	return e
}

func checkCmd(g *globals) *cobra.Command {
	var (
		strict bool
		plain  bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check a route table for problems",
		Long: `Check a route table for problems that registration accepts but
that make routes unreachable:

  • duplicate route names and repeated params
  • named parents whose default child is never rendered by name
  • static routes shadowed by an earlier pattern
  • static redirects that lead nowhere

Problems are warnings unless --strict is set.

Examples:
  routectl check
  routectl check --strict --routes routes.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.load(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			err = router.ValidateRoutes(s.routes)
			if err == nil {
				success(out, "%s: no problems found", s.source)
				return nil
			}

			var multi *router.MultiValidationError
			if !stderrors.As(err, &multi) {
				return errors.New(errors.CodeRoutesInvalid).Wrap(err).WithRoutes(s.source)
			}

			for _, v := range multi.Errors {
				switch {
				case plain:
					fmt.Fprint(out, router.FormatValidationError(v))
				case strict:
					fmt.Fprint(out, validationProblem(v).Format())
				default:
					fmt.Fprint(out, validationProblem(v).FormatWarning())
				}
			}

			if strict {
				return errors.New(errors.CodeRoutesInvalid).
					WithDetail(fmt.Sprintf("%d problems found", len(multi.Errors))).
					WithRoutes(s.source)
			}
			warn(out, "%s: %d problems found", s.source, len(multi.Errors))
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when any problem is found")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print problems without color or codes")

	return cmd
}
