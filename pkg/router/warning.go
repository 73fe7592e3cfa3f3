package router

import (
	"fmt"
	"io"
	"log/slog"
)

// WarningCode classifies a configuration or resolution warning.
type WarningCode string

const (
	WarnDuplicateName           WarningCode = "duplicate-name"
	WarnDuplicateParam          WarningCode = "duplicate-param"
	WarnUnreachableDefaultChild WarningCode = "unreachable-default-child"
	WarnInvalidRedirect         WarningCode = "invalid-redirect"
	WarnRedirectLoop            WarningCode = "redirect-loop"
	WarnUnknownName             WarningCode = "unknown-name"
	WarnMissingParam            WarningCode = "missing-param"
	WarnRelativeParams          WarningCode = "relative-params"
	WarnMalformedQuery          WarningCode = "malformed-query"
)

// Warning is a non-fatal problem with the route table or a navigation
// target. Warnings never stop registration or matching.
type Warning struct {
	Code    WarningCode
	Message string
	Path    string
	Name    string
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Code, w.Message)
}

func logWarning(logger *slog.Logger, w Warning) {
	attrs := []any{"code", string(w.Code)}
	if w.Path != "" {
		attrs = append(attrs, "path", w.Path)
	}
	if w.Name != "" {
		attrs = append(attrs, "name", w.Name)
	}
	logger.Warn(w.Message, attrs...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
