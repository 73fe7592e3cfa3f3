// Package pathpattern compiles route path templates into matching
// automata and reverse "fill" functions.
//
// Templates use Express-style syntax:
//
//	/user/:id           → named parameter, one segment
//	/user/:id(\d+)      → named parameter with a custom pattern
//	/docs/:path*        → zero or more segments
//	/docs/:path+        → one or more segments
//	/post/:slug?        → optional parameter
//	/files/(.*)         → unnamed parameter (named "0", "1", ...)
//	*                   → wildcard, exposed as the "pathMatch" parameter
//	/\:literal          → backslash escapes a special character
//
// # Matching
//
//	p := pathpattern.MustCompile("/user/:id", pathpattern.Options{})
//	params, ok := p.Match("/user/42")
//	// params["id"] == "42"
//
// In non-strict mode one trailing delimiter is tolerated. With End set
// to false the pattern is anchored only at the start and must be
// followed by a delimiter or the end of the input.
//
// # Filling
//
//	path, err := p.Fill(map[string]any{"id": "42"})
//	// path == "/user/42"
//
// Fill reports MissingParameter, TypeMismatch, EmptyRepeat and
// ParameterPatternMismatch failures as *FillError values.
//
// Compiled patterns are cached for the lifetime of the process, keyed by
// template and options. Compilation is pure, so concurrent compilation of
// the same key is harmless.
//
// The automaton is built on github.com/dlclark/regexp2 in ECMAScript mode
// because non-strict and non-end matching need lookahead, which the
// standard library's RE2 engine does not provide.
package pathpattern
