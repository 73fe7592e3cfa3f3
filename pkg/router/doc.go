// Package router maps locations to nested route records and runs
// guarded transitions between them.
//
// # Route table
//
// Routes are declared as a tree of RouteConfig values and flattened into a
// Registry. Each record compiles its absolute path template with
// pkg/pathpattern. Matching walks the path list in declaration order, with
// wildcard records ("*") moved to the end:
//
//	r, err := router.New([]router.RouteConfig{
//		{Path: "/", Component: home},
//		{Path: "/user/:id", Name: "user", Component: user, Children: []router.RouteConfig{
//			{Path: "profile", Component: profile},
//		}},
//		{Path: "/old", Redirect: router.RedirectTo(router.Path("/new"))},
//		{Path: "*", Component: notFound},
//	})
//
// # Locations
//
// A RawLocation is either a Path string or a Location. Normalization
// resolves relative paths against the current route, merges query strings
// and fills params for relative-params navigation.
//
// # Transitions
//
// Push and Replace start a transition. The Engine runs the guard queue in
// this order:
//
//  1. leave guards of deactivated instances (innermost first)
//  2. global BeforeEach guards
//  3. update guards of reused instances
//  4. per-record BeforeEnter guards
//  5. lazy component resolution
//  6. enter guards of activated components
//  7. global BeforeResolve guards
//
// Every guard receives a Next continuation that must be called exactly once
// with Proceed, Abort, Fail or Redirect. A newer navigation cancels an older
// one; stale continuations are ignored.
//
// # History
//
// MemoryHistory keeps an in-process stack and is the history used in
// abstract mode. Its state can be serialized with MarshalState.
package router
