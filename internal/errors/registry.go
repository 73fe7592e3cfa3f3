package errors

import "sort"

// template is the registered text of an error code.
type template struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// Error codes.
const (
	CodeConfigNotFound  = "R101"
	CodeConfigParse     = "R102"
	CodeConfigInvalid   = "R103"
	CodeRoutesNotFound  = "R104"
	CodeRoutesParse     = "R105"
	CodeRoutesInvalid   = "R106"
	CodeRouteWarning    = "R110"
	CodeRouteShadowed   = "R111"
	CodeDeadRedirect    = "R112"
	CodeS3Fetch         = "R120"
	CodeSourceScheme    = "R121"
	CodeUnmatched       = "R130"
	CodeNavigationError = "R131"
	CodeStateInvalid    = "R132"
	CodeServeFailed     = "R140"
	CodeWatchFailed     = "R141"
)

// registry maps error codes to their templates.
var registry = map[string]template{
	// R10x: configuration and route table files.

	CodeConfigNotFound: {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Detail:     "No routectl.yaml, routectl.json or routectl.toml was found in the working directory.",
		Suggestion: "Create routectl.yaml or pass --config",
	},
	CodeConfigParse: {
		Category: CategoryConfig,
		Message:  "Configuration file could not be parsed",
	},
	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	CodeRoutesNotFound: {
		Category:   CategoryRoutes,
		Message:    "Route table not found",
		Suggestion: "Set routes in routectl.yaml or pass --routes",
	},
	CodeRoutesParse: {
		Category: CategoryRoutes,
		Message:  "Route table could not be parsed",
	},
	CodeRoutesInvalid: {
		Category: CategoryRoutes,
		Message:  "Invalid route table",
		Detail:   "A path template or parameter pattern does not compile.",
	},

	// R11x: problems found by validation.

	CodeRouteWarning: {
		Category: CategoryRoutes,
		Message:  "Route table warning",
	},
	CodeRouteShadowed: {
		Category:   CategoryRoutes,
		Message:    "Route is shadowed",
		Detail:     "An earlier route matches every path this route matches, so it is never selected.",
		Suggestion: "Move the more specific route above the pattern that shadows it",
	},
	CodeDeadRedirect: {
		Category:   CategoryRoutes,
		Message:    "Redirect target does not match any route",
		Suggestion: "Point the redirect at an existing path or route name",
	},

	// R12x: route table sources.

	CodeS3Fetch: {
		Category:   CategorySource,
		Message:    "Failed to fetch route table from S3",
		Suggestion: "Check the bucket, key, region and AWS credentials",
	},
	CodeSourceScheme: {
		Category:   CategorySource,
		Message:    "Unsupported route table source",
		Detail:     "Route tables are read from local files or s3://bucket/key.",
		Suggestion: "Use a file path or an s3:// URL",
	},

	// R13x

	CodeUnmatched: {
		Category: CategoryNavigation,
		Message:  "No route matches location",
	},
	CodeNavigationError: {
		Category: CategoryNavigation,
		Message:  "Navigation failed",
	},
	CodeStateInvalid: {
		Category:   CategoryNavigation,
		Message:    "Invalid history state",
		Detail:     "The state file is not a history snapshot for this route table.",
		Suggestion: "Delete the state file to start from an empty history",
	},

	// R14x: long-running commands.

	CodeServeFailed: {
		Category: CategoryCLI,
		Message:  "Inspector server failed",
	},
	CodeWatchFailed: {
		Category:   CategoryCLI,
		Message:    "Route watcher failed",
		Suggestion: "Check that the route table file exists and is readable",
	},
}

// Codes returns every registered code in ascending order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
