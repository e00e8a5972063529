package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
)

// contextRadius is the number of source lines shown on each side of a
// Location.
const contextRadius = 1

const (
	ansiReset = "\033[0m"
	ansiRed   = "\033[31m"
	ansiCyan  = "\033[36m"
	ansiGray  = "\033[90m"
	ansiBold  = "\033[1m"
)

// Printer renders errors for a terminal.
type Printer struct {
	// Color enables ANSI escapes.
	Color bool

	// Width is the column at which Detail is wrapped. Zero means 70.
	Width int
}

// DefaultPrinter is used by Format and Fprint.
var DefaultPrinter = Printer{Color: true, Width: 70}

func (p Printer) paint(code, s string) string {
	if !p.Color {
		return s
	}
	return code + s + ansiReset
}

// Render returns e as a multi-line report: a header, the source excerpt
// when a Location is set, then detail, cause and hint.
func (p Printer) Render(e *Error) string {
	var b strings.Builder

	head := "ERROR"
	if e.Code != "" {
		head += " " + e.Code
	}
	fmt.Fprintf(&b, "\n%s %s\n\n", p.paint(ansiRed+ansiBold, head+":"), p.paint(ansiBold, e.Message))

	if e.Location != nil {
		fmt.Fprintf(&b, "  %s\n\n", p.paint(ansiCyan, e.Location.String()))
		p.excerpt(&b, e)
	}

	width := p.Width
	if width <= 0 {
		width = 70
	}
	if lines := wrapText(e.Detail, width); len(lines) > 0 {
		for _, line := range lines {
			fmt.Fprintf(&b, "  %s\n", line)
		}
		b.WriteString("\n")
	}
	if e.Wrapped != nil {
		fmt.Fprintf(&b, "  %s %s\n\n", p.paint(ansiGray, "Cause:"), e.Wrapped)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s %s\n\n", p.paint(ansiCyan, "Hint:"), e.Suggestion)
	}
	return b.String()
}

// excerpt writes the Context lines with a marker on the located line and
// a caret under its column.
func (p Printer) excerpt(b *strings.Builder, e *Error) {
	if len(e.Context) == 0 {
		return
	}
	first := max(e.Location.Line-contextRadius, 1)
	bar := p.paint(ansiGray, "│")
	for i, text := range e.Context {
		n := first + i
		marker := "  "
		if n == e.Location.Line {
			marker = p.paint(ansiRed, "→ ")
		}
		fmt.Fprintf(b, "  %s%4d %s %s\n", marker, n, bar, text)
		if n == e.Location.Line && e.Location.Column > 0 {
			fmt.Fprintf(b, "         %s %s%s\n", bar, strings.Repeat(" ", e.Location.Column-1), p.paint(ansiRed, "^"))
		}
	}
	b.WriteString("\n")
}

// Fprint writes err to w. An *Error anywhere in the chain is rendered in
// full; anything else gets a one-line report.
func (p Printer) Fprint(w io.Writer, err error) {
	var e *Error
	if stderrors.As(err, &e) {
		io.WriteString(w, p.Render(e))
		return
	}
	fmt.Fprintf(w, "\n%s %v\n\n", p.paint(ansiRed+ansiBold, "ERROR:"), err)
}

// Format renders e with DefaultPrinter.
func (e *Error) Format() string {
	return DefaultPrinter.Render(e)
}

// Fprint writes err to w with DefaultPrinter.
func Fprint(w io.Writer, err error) {
	DefaultPrinter.Fprint(w, err)
}

// FormatCompact returns "location: code: message".
func (e *Error) FormatCompact() string {
	if e.Location == nil {
		return e.Error()
	}
	return e.Location.String() + ": " + e.Error()
}

// Payload is the JSON body the HTTP API sends for an error.
type Payload struct {
	Code     string   `json:"code,omitempty"`
	Category Category `json:"category"`
	Message  string   `json:"message"`
	Detail   string   `json:"detail,omitempty"`
	Cause    string   `json:"cause,omitempty"`
}

// Payload returns the JSON representation of e.
func (e *Error) Payload() Payload {
	p := Payload{
		Code:     e.Code,
		Category: e.Category,
		Message:  e.Message,
		Detail:   e.Detail,
	}
	if e.Wrapped != nil {
		p.Cause = e.Wrapped.Error()
	}
	return p
}

// FormatJSON returns the error as a JSON object.
func (e *Error) FormatJSON() string {
	data, err := json.Marshal(e.Payload())
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, e.Message)
	}
	return string(data)
}

// wrapText breaks text into lines of at most width bytes, splitting on
// whitespace. A single word longer than width gets its own line.
func wrapText(text string, width int) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) > width:
			lines = append(lines, line)
			line = word
		default:
			line += " " + word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
