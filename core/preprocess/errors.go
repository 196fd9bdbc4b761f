package preprocess

import (
	"fmt"
	"strings"
)

// SyntaxError is an authoring mistake detected from the text alone. It is
// always fatal to the submission that contained it.
type SyntaxError struct {
	// Line is the 1-based line the error was found on.
	Line int
	// Related holds other 1-based lines involved in the error.
	Related []int
	Msg     string
}

func (e *SyntaxError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "line %d: %s", e.Line, e.Msg)
	if len(e.Related) > 0 {
		var related []string
		for _, l := range e.Related {
			related = append(related, fmt.Sprintf("%d", l))
		}
		fmt.Fprintf(&sb, " (see line %s)", strings.Join(related, ", "))
	}
	return sb.String()
}

func syntaxErrorf(line int, related []int, format string, a ...interface{}) *SyntaxError {
	return &SyntaxError{Line: line, Related: related, Msg: fmt.Sprintf(format, a...)}
}

// OrderingError means a marker reached the decode pass even though its
// matcher resolves everything during substitution. It points at a bug in the
// pipeline rather than in the input.
type OrderingError struct {
	Matcher string
	Marker  string
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("pipeline ordering defect: %s marker %q must not reach decode", e.Matcher, e.Marker)
}
