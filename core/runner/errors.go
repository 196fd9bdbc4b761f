package runner

import (
	"errors"
	"fmt"
	"strings"
)

// ErrExit is raised by the exit construct to end the session.
var ErrExit = errors.New("exit requested")

// DiagnosticCode classifies a compiler diagnostic. Engines translate their
// own messages into codes so the runner never matches message text.
type DiagnosticCode int

const (
	CodeUnknown DiagnosticCode = iota
	// CodeMissingTerminator means the code would compile with a statement
	// terminator appended.
	CodeMissingTerminator
	// CodeExpressionResultUnused means the code is an expression whose value
	// was discarded by a trailing terminator.
	CodeExpressionResultUnused
)

func (c DiagnosticCode) String() string {
	switch c {
	case CodeMissingTerminator:
		return "missing-terminator"
	case CodeExpressionResultUnused:
		return "expression-result-unused"
	default:
		return "unknown"
	}
}

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one message from a compiler.
type Diagnostic struct {
	Severity Severity
	Code     DiagnosticCode
	// Line is 1-based, 0 if unknown.
	Line    int
	Message string
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", d.Severity, d.Line, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// CompilationFailure is returned by engines when code fails to compile.
type CompilationFailure struct {
	Diagnostics []Diagnostic
}

func (e *CompilationFailure) Error() string {
	var msgs []string
	for _, d := range e.Diagnostics {
		msgs = append(msgs, d.String())
	}
	return "compilation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether any error diagnostic carries code.
func (e *CompilationFailure) Has(code DiagnosticCode) bool {
	for _, d := range e.Diagnostics {
		if d.Severity == SeverityError && d.Code == code {
			return true
		}
	}
	return false
}
