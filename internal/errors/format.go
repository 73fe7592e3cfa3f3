package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"
)

var colorsOff bool

// DisableColors turns off ANSI escapes in formatted output.
func DisableColors() { colorsOff = true }

// style wraps text in an ANSI escape sequence.
type style string

const (
	styleRed    style = "31"
	styleYellow style = "33"
	styleCyan   style = "36"
	styleGray   style = "90"
	styleBold   style = "1"
)

func (s style) apply(text string) string {
	if colorsOff {
		return text
	}
	return "\033[" + string(s) + "m" + text + "\033[0m"
}

// Format renders the error for a terminal.
func (e *RouteError) Format() string {
	return e.render(styleRed, "ERROR")
}

// FormatWarning renders the error with a warning header.
func (e *RouteError) FormatWarning() string {
	return e.render(styleYellow, "WARNING")
}

func (e *RouteError) render(tone style, label string) string {
	var b strings.Builder

	header := tone.apply(styleBold.apply(label))
	if e.Code != "" {
		header += " " + styleBold.apply(e.Code+":")
	} else {
		header += styleBold.apply(":")
	}
	fmt.Fprintf(&b, "\n%s %s\n\n", header, e.Message)

	if e.Location != nil {
		fmt.Fprintf(&b, "  %s\n\n", styleCyan.apply(e.Location.String()))
		e.renderContext(&b)
	}

	for _, path := range e.Routes {
		fmt.Fprintf(&b, "  %s%s\n", styleGray.apply("route "), path)
	}
	if len(e.Routes) > 0 {
		b.WriteString("\n")
	}

	parts := []string{}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	if e.Wrapped != nil {
		parts = append(parts, "Cause: "+e.Wrapped.Error())
	}
	if len(parts) > 0 {
		for _, line := range wrapText(strings.Join(parts, " "), 70) {
			fmt.Fprintf(&b, "  %s\n", line)
		}
		b.WriteString("\n")
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s%s\n\n", styleCyan.apply("Hint: "), e.Suggestion)
	}
	return b.String()
}

// renderContext writes the numbered source lines, marking the error line
// and, when known, its column.
func (e *RouteError) renderContext(b *strings.Builder) {
	if len(e.Context) == 0 {
		return
	}
	gutter := styleGray.apply(" │ ")
	for _, l := range e.Context {
		marker := "    "
		if l.Number == e.Location.Line {
			marker = "  " + styleRed.apply("→ ")
		}
		fmt.Fprintf(b, "%s%4d%s%s\n", marker, l.Number, gutter, l.Text)
		if l.Number == e.Location.Line && e.Location.Column > 0 {
			fmt.Fprintf(b, "        %s%s%s\n", gutter, strings.Repeat(" ", e.Location.Column-1), styleRed.apply("^"))
		}
	}
	b.WriteString("\n")
}

// wrapText breaks text into lines of at most width bytes. Longer words
// get a line of their own.
func wrapText(text string, width int) []string {
	var (
		lines []string
		line  string
	)
	for _, word := range strings.Fields(text) {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= width:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// PrintError writes err to w, formatted when it is a *RouteError.
func PrintError(w io.Writer, err error) {
	var re *RouteError
	if stderrors.As(err, &re) {
		fmt.Fprint(w, re.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", styleRed.apply(styleBold.apply("ERROR:")), err.Error())
}
