package router

import (
	"fmt"
	"strings"
)

// Validator checks a route table for problems that do not stop
// registration but make routes unreachable or navigations dead ends.
type Validator struct {
	registry *Registry
	matcher  *Matcher
	errors   []ValidationError
}

// ValidationError is one problem found by a Validator.
type ValidationError struct {
	// Type is the error category
	Type ValidationErrorType

	// Message is the human-readable error message
	Message string

	// Paths are the record paths involved
	Paths []string

	// Name is the route name, if the problem concerns one
	Name string

	// Details contains additional error-specific information
	Details string
}

func (e ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ValidationErrorType categorizes validation errors.
type ValidationErrorType string

const (
	// ErrorDuplicateName means two records share a name; the later one
	// is unreachable by name.
	ErrorDuplicateName ValidationErrorType = "DUPLICATE_NAME"

	// ErrorDuplicateParam means a path template repeats a param name.
	ErrorDuplicateParam ValidationErrorType = "DUPLICATE_PARAM"

	// ErrorUnreachableDefaultChild means a named parent has a default
	// child that navigating by name never renders.
	ErrorUnreachableDefaultChild ValidationErrorType = "UNREACHABLE_DEFAULT_CHILD"

	// ErrorShadowedRoute means a static path is always matched by an
	// earlier entry of the path list.
	// Example: "/:id" declared before "/about"
	ErrorShadowedRoute ValidationErrorType = "SHADOWED_ROUTE"

	// ErrorDeadRedirect means a static redirect leads to no record.
	ErrorDeadRedirect ValidationErrorType = "DEAD_REDIRECT"
)

var warningTypes = map[WarningCode]ValidationErrorType{
	WarnDuplicateName:           ErrorDuplicateName,
	WarnDuplicateParam:          ErrorDuplicateParam,
	WarnUnreachableDefaultChild: ErrorUnreachableDefaultChild,
}

// MultiValidationError wraps multiple validation errors.
type MultiValidationError struct {
	Errors []ValidationError
}

func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d route validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// NewValidator creates a validator over m's registry.
func NewValidator(m *Matcher) *Validator {
	return &Validator{registry: m.Registry(), matcher: m}
}

// Validate runs every check. It returns nil when the table is clean, or
// a *MultiValidationError listing each problem.
func (v *Validator) Validate() error {
	v.errors = nil

	v.validateWarnings()
	v.validateShadowed()
	v.validateRedirects()

	if len(v.errors) > 0 {
		return &MultiValidationError{Errors: v.errors}
	}
	return nil
}

func (v *Validator) validateWarnings() {
	for _, w := range v.registry.Warnings() {
		typ, ok := warningTypes[w.Code]
		if !ok {
			continue
		}
		v.errors = append(v.errors, ValidationError{
			Type:    typ,
			Message: w.Message,
			Paths:   []string{w.Path},
			Name:    w.Name,
		})
	}
}

// validateShadowed reports static paths that an earlier pattern in the
// path list already matches.
func (v *Validator) validateShadowed() {
	list := v.registry.PathList()
	for i, p := range list {
		rec, ok := v.registry.ByPath(p)
		if !ok || len(rec.pattern.Keys()) > 0 {
			continue
		}
		for _, earlier := range list[:i] {
			prev, ok := v.registry.ByPath(earlier)
			if !ok || !prev.pattern.MatchString(p) {
				continue
			}
			v.errors = append(v.errors, ValidationError{
				Type:    ErrorShadowedRoute,
				Message: fmt.Sprintf("route %q is never matched", p),
				Paths:   []string{earlier, p},
				Name:    rec.name,
				Details: fmt.Sprintf("%q is declared first and matches it", earlier),
			})
			break
		}
	}
}

// validateRedirects follows redirects of static records and reports the
// ones that end unmatched.
func (v *Validator) validateRedirects() {
	for _, rec := range v.registry.Records() {
		if rec.redirect == nil || rec.aliased || len(rec.pattern.Keys()) > 0 {
			continue
		}
		route := v.matcher.Match(Path(rec.path), nil)
		if route.IsMatched() {
			continue
		}
		v.errors = append(v.errors, ValidationError{
			Type:    ErrorDeadRedirect,
			Message: fmt.Sprintf("redirect from %q matches no route", rec.path),
			Paths:   []string{rec.path},
			Name:    rec.name,
			Details: "resolved to " + route.fullPath,
		})
	}
}

// ValidateRoutes builds routes into a fresh table and validates it.
func ValidateRoutes(routes []RouteConfig) error {
	registry, err := BuildRegistry(routes, discardLogger())
	if err != nil {
		return err
	}
	return NewValidator(NewMatcher(registry, nil, discardLogger())).Validate()
}

// FormatValidationError formats a validation error for display:
//
//	ERROR: route "/about" is never matched
//	  /:id
//	  /about
//	  Details: "/:id" is declared first and matches it
func FormatValidationError(err ValidationError) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "ERROR: %s\n", err.Message)
	for _, p := range err.Paths {
		if p != "" {
			fmt.Fprintf(&sb, "  %s\n", p)
		}
	}
	if err.Details != "" {
		fmt.Fprintf(&sb, "  Details: %s\n", err.Details)
	}

	return sb.String()
}
