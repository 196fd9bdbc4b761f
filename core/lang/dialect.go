// Package lang describes the target scripting languages the preprocessor can
// emit code for.
//
// A Dialect bundles everything about the host language that the
// preprocessor needs but must not hard code: which words are reserved, which
// lines already look like host code, how comments are spelled, how the buffer
// is laid out, and the code templates shell constructs are lowered into.
package lang

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// DefaultType is the type captured command output is converted to when no
// declared type is available.
const DefaultType = "string"

// Span is an offset and length into a specific version of a string.
type Span struct {
	Offset int
	Length int
}

// End returns the offset one past the last byte of the span.
func (s Span) End() int {
	return s.Offset + s.Length
}

type CommentKind int

const (
	// LineComment runs to the end of the line, the newline is not included.
	LineComment CommentKind = iota
	// BlockComment is delimited on both sides and may span lines.
	BlockComment
)

func (k CommentKind) String() string {
	switch k {
	case LineComment:
		return "line"
	case BlockComment:
		return "block"
	default:
		return fmt.Sprintf("CommentKind(%d)", int(k))
	}
}

// Comment is a comment found by a dialect's lexer.
type Comment struct {
	Span
	Text string
	Kind CommentKind
}

// Emitter produces the host-language code that shell constructs decode into.
//
// Arguments named expr are already host-language expressions (usually the
// output of Quote, possibly concatenated with variables), never raw text.
type Emitter interface {
	// Quote returns s as a string literal.
	Quote(s string) string
	// ConcatOperator joins two string expressions.
	ConcatOperator() string
	// ExecStatement runs a command asynchronously and discards the result.
	ExecStatement(expr string) string
	// CaptureExpression runs a command and interprets its output as typ.
	CaptureExpression(expr, typ string) string
	ChangeDirectory(expr string) string
	LoadScript(expr string) string
	Exit() string
	ClearScreen() string
}

// Dialect is the capability interface for a target scripting language.
type Dialect interface {
	Emitter

	// Name is the identifier used in configuration.
	Name() string

	// ReservedKeywords lists the words that mark a line as host code when they
	// start it.
	ReservedKeywords() []string
	IsReservedKeyword(word string) bool

	// IsHostLanguageLine reports whether a (non-blank) line is host code by
	// shape alone.
	IsHostLanguageLine(line string) bool

	// Placeholder is the keyword used in place of a declared type, such as
	// "var".
	Placeholder() string

	// Terminator ends a statement.
	Terminator() string
	// RequiresTerminator is false for languages where Terminator is optional.
	RequiresTerminator() bool

	// CompiledSourceExt is the file extension of standalone units that are
	// compiled and imported rather than run as scripts.
	CompiledSourceExt() string

	// Comments enumerates every comment in buffer in order.
	Comments(buffer string) []Comment

	// Reformat normalizes the layout of buffer.
	Reformat(buffer string) string
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Dialect)
)

// Register makes a dialect available by name, it panics on duplicates.
func Register(d Dialect) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, ok := registry[d.Name()]; ok {
		panic(fmt.Sprintf("dialect %q registered twice", d.Name()))
	}
	registry[d.Name()] = d
}

// Lookup finds a registered dialect.
func Lookup(name string) (Dialect, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	d, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q, known: %s", name, strings.Join(namesLocked(), ", "))
	}
	return d, nil
}

// Names lists registered dialects in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	var out []string
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
