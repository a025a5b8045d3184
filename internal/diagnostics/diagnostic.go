package diagnostics

import (
	"fmt"

	"github.com/funvibe/matchcore/internal/token"
)

// Severity captures how impactful the diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// ParseSeverity accepts the names used in configuration files.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(s) {
	case SeverityError, SeverityWarning, SeverityNote:
		return Severity(s), true
	}
	return "", false
}

func (s Severity) rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	}
	return 2
}

// Diagnostic is a compiler diagnostic surfaced to end-users.
type Diagnostic struct {
	Code     Code       `json:"code"`
	Severity Severity   `json:"severity"`
	Stage    Stage      `json:"stage"`
	Message  string     `json:"message"`
	Span     token.Span `json:"span"`
	File     string     `json:"file,omitempty"`
	Notes    []string   `json:"notes,omitempty"`
}

// NewDiagnostic builds a diagnostic from the registered message of code.
func NewDiagnostic(code Code, span token.Span, args ...interface{}) Diagnostic {
	e, ok := registry[code]
	if !ok {
		panic(fmt.Sprintf("diagnostics: unregistered code %q", code))
	}
	return Diagnostic{
		Code:     code,
		Severity: e.severity,
		Stage:    e.stage,
		Message:  fmt.Sprintf(e.format, args...),
		Span:     span,
	}
}

func (d Diagnostic) Error() string {
	if d.File != "" {
		return fmt.Sprintf("%s:%s: %s[%s]: %s", d.File, d.Span, d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s[%s]: %s", d.Span, d.Severity, d.Code, d.Message)
}

// WithNote returns a copy with an extra note.
func (d Diagnostic) WithNote(format string, args ...interface{}) Diagnostic {
	d.Notes = append(append([]string(nil), d.Notes...), fmt.Sprintf(format, args...))
	return d
}

// WithFile returns a copy attributed to file.
func (d Diagnostic) WithFile(file string) Diagnostic {
	d.File = file
	return d
}

func (d Diagnostic) IsError() bool { return d.Severity == SeverityError }
