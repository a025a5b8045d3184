package diagnostics

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

// Formatter renders diagnostics as `file:line:col: severity[code]: message`
// followed by the offending source line when the source is known.
type Formatter struct {
	w       io.Writer
	color   bool
	sources map[string]string
}

func NewFormatter(w io.Writer, color bool) *Formatter {
	return &Formatter{w: w, color: color, sources: make(map[string]string)}
}

// NewTerminalFormatter colours output only when f is a terminal.
func NewTerminalFormatter(f *os.File) *Formatter {
	return NewFormatter(f, IsTerminal(f))
}

// IsTerminal reports whether f is attached to a TTY.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// AddSource registers source text so diagnostics can show snippets.
func (f *Formatter) AddSource(file, src string) {
	f.sources[file] = src
}

func (f *Formatter) paint(code, s string) string {
	if !f.color {
		return s
	}
	return code + s + ansiReset
}

func (f *Formatter) Format(d Diagnostic) {
	sevColor := ansiRed
	if d.Severity == SeverityWarning {
		sevColor = ansiYellow
	} else if d.Severity == SeverityNote {
		sevColor = ansiCyan
	}
	loc := d.Span.String()
	if d.File != "" {
		loc = d.File + ":" + loc
	}
	fmt.Fprintf(f.w, "%s: %s: %s\n",
		f.paint(ansiBold, loc),
		f.paint(sevColor, fmt.Sprintf("%s[%s]", d.Severity, d.Code)),
		d.Message)

	if line, ok := f.sourceLine(d.File, d.Span.Line); ok && d.Span.Column > 0 {
		width := d.Span.End - d.Span.Start
		if width < 1 {
			width = 1
		}
		if rest := len(line) - (d.Span.Column - 1); width > rest && rest > 0 {
			width = rest
		}
		fmt.Fprintf(f.w, "  %s\n", line)
		fmt.Fprintf(f.w, "  %s%s\n", strings.Repeat(" ", d.Span.Column-1), f.paint(sevColor, strings.Repeat("^", width)))
	}
	for _, n := range d.Notes {
		fmt.Fprintf(f.w, "  = note: %s\n", n)
	}
}

func (f *Formatter) FormatAll(ds []Diagnostic) {
	for _, d := range ds {
		f.Format(d)
	}
}

// Summary prints the error/warning totals.
func (f *Formatter) Summary(ds []Diagnostic) {
	errs, warns := Count(ds, SeverityError), Count(ds, SeverityWarning)
	if errs == 0 && warns == 0 {
		return
	}
	fmt.Fprintf(f.w, "%d error(s), %d warning(s)\n", errs, warns)
}

func (f *Formatter) sourceLine(file string, line int) (string, bool) {
	src, ok := f.sources[file]
	if !ok || line < 1 {
		return "", false
	}
	lines := strings.Split(src, "\n")
	if line > len(lines) {
		return "", false
	}
	return strings.TrimRight(lines[line-1], "\r"), true
}
