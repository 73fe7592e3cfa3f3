// Package errors provides coded, actionable errors for routectl.
//
// Each error has a code (e.g. "R101") registered with a category, a
// short message and an optional detail and hint. Errors from config and
// route-table decoding carry the file location, and Format renders the
// surrounding lines:
//
//	err := errors.New(errors.CodeRoutesParse).
//	    WithLocation("routes.yaml", 12, 0).
//	    Wrap(decodeErr)
//
//	errors.PrintError(os.Stderr, err)
//	// ERROR R105: Route table could not be parsed
//	//
//	//   routes.yaml:12
//	//
//	//       10 │ - path: /users
//	//       11 │   children:
//	//     → 12 │   - path: :id
//	//   ...
//
// # Categories
//
//   - config: routectl configuration files
//   - routes: route-table decoding and validation
//   - source: fetching route tables (local files, S3)
//   - navigation: match, resolve and nav commands
//   - cli: long-running commands
package errors
