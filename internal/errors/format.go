package errors

import (
	"fmt"
	"os"
	"strings"
)

// ANSI escape codes for terminal output.
const (
	ansiReset = "\033[0m"
	ansiRed   = "\033[31m"
	ansiBlue  = "\033[34m"
	ansiCyan  = "\033[36m"
	ansiWhite = "\033[37m"
	ansiGray  = "\033[90m"
	ansiBold  = "\033[1m"
)

// colorEnabled controls whether ANSI colors are used.
var colorEnabled = true

// DisableColors disables ANSI color output.
func DisableColors() {
	colorEnabled = false
}

// EnableColors enables ANSI color output.
func EnableColors() {
	colorEnabled = true
}

// paint wraps text in ANSI codes when colors are enabled. Codes may be
// concatenated, e.g. paint(s, ansiRed, ansiBold).
func paint(text string, codes ...string) string {
	if !colorEnabled || len(codes) == 0 {
		return text
	}
	return strings.Join(codes, "") + text + ansiReset
}

// Format renders the error for terminal display: header, source location
// with a context excerpt, detail, cause, hint, and doc link.
func (e *RoutegenError) Format() string {
	var b strings.Builder
	b.WriteString("\n")
	e.writeHeader(&b)
	e.writeLocation(&b)
	e.writeDetail(&b)
	e.writeCause(&b)
	e.writeHint(&b)
	return b.String()
}

func (e *RoutegenError) writeHeader(b *strings.Builder) {
	b.WriteString(paint("ERROR ", ansiRed, ansiBold))
	if e.Code != "" {
		b.WriteString(paint(e.Code+": ", ansiWhite, ansiBold))
	}
	b.WriteString(paint(e.Message, ansiWhite))
	b.WriteString("\n\n")
}

func (e *RoutegenError) writeLocation(b *strings.Builder) {
	if e.Location == nil {
		return
	}
	fmt.Fprintf(b, "  %s\n\n", paint(e.Location.String(), ansiCyan))

	if len(e.Context) == 0 {
		return
	}
	firstLine := e.Location.Line - len(e.Context)/2
	for i, line := range e.Context {
		n := firstLine + i
		if n != e.Location.Line {
			fmt.Fprintf(b, "    %4d %s %s\n", n, paint("│", ansiGray), line)
			continue
		}
		fmt.Fprintf(b, "  %s%4d %s %s\n", paint("→ ", ansiRed), n, paint("│", ansiGray), line)
		if e.Location.Column > 0 {
			fmt.Fprintf(b, "       %s %s%s\n",
				paint("│", ansiGray),
				strings.Repeat(" ", e.Location.Column-1),
				paint("^", ansiRed))
		}
	}
	b.WriteString("\n")
}

func (e *RoutegenError) writeDetail(b *strings.Builder) {
	if e.Detail == "" {
		return
	}
	for _, line := range wrapText(e.Detail, 70) {
		fmt.Fprintf(b, "  %s\n", line)
	}
	b.WriteString("\n")
}

func (e *RoutegenError) writeCause(b *strings.Builder) {
	if e.Wrapped == nil {
		return
	}
	fmt.Fprintf(b, "  %s%s\n\n", paint("Caused by: ", ansiGray), e.Wrapped.Error())
}

func (e *RoutegenError) writeHint(b *strings.Builder) {
	if e.Suggestion != "" {
		fmt.Fprintf(b, "  %s%s\n\n", paint("Hint: ", ansiCyan), e.Suggestion)
	}
	if e.DocURL != "" {
		fmt.Fprintf(b, "  %s%s\n", paint("Learn more: ", ansiGray), paint(e.DocURL, ansiBlue))
	}
}

// FormatCompact returns a single-line rendering: location, code, message.
func (e *RoutegenError) FormatCompact() string {
	var parts []string
	if e.Location != nil {
		parts = append(parts, e.Location.String())
	}
	if e.Code != "" {
		parts = append(parts, e.Code)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

// wrapText wraps text at word boundaries to the given width.
func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= width {
		return []string{text}
	}

	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+len(word)+1 > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

// PrintError prints a formatted error to stderr.
func PrintError(err error) {
	if re, ok := err.(*RoutegenError); ok {
		fmt.Fprint(os.Stderr, re.Format())
	} else {
		fmt.Fprintf(os.Stderr, "\n%sERROR:%s %s\n\n", ansiRed+ansiBold, ansiReset, err.Error())
	}
}
