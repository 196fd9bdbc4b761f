package lang

import (
	"sort"
	"strings"
	"unicode"
)

// hostLineSuffixes end lines that already look like host code.
const hostLineSuffixes = ";{}()"

// Keywords is a set of reserved words.
type Keywords map[string]bool

// NewKeywords builds a keyword set.
func NewKeywords(words ...string) Keywords {
	out := make(Keywords, len(words))
	for _, w := range words {
		out[w] = true
	}
	return out
}

// Contains reports whether word is reserved.
func (k Keywords) Contains(word string) bool {
	return k[word]
}

// Sorted lists the keywords alphabetically.
func (k Keywords) Sorted() []string {
	out := make([]string, 0, len(k))
	for w := range k {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// FirstWord returns the leading identifier of line, ignoring indentation.
func FirstWord(line string) string {
	line = strings.TrimLeft(line, " \t")
	end := strings.IndexFunc(line, func(r rune) bool {
		return !(r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r))
	})
	if end < 0 {
		return line
	}
	return line[:end]
}

// HasHostShape implements the shape test most dialects share: a line is host
// code if it ends in one of ; { } ( ) or starts with a reserved keyword.
func HasHostShape(line string, isKeyword func(string) bool) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	if strings.ContainsAny(trimmed[len(trimmed)-1:], hostLineSuffixes) {
		return true
	}
	return isKeyword(FirstWord(trimmed))
}

// NormalizeLayout is a conservative reformatter: LF line endings, no trailing
// whitespace, at most one consecutive blank line, no leading or trailing blank
// lines.
func NormalizeLayout(buffer string) string {
	buffer = strings.ReplaceAll(buffer, "\r\n", "\n")

	var out []string
	blank := false
	for _, line := range strings.Split(buffer, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			if blank || len(out) == 0 {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}

	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

// WithKeywords layers extra reserved words over a dialect.
func WithKeywords(d Dialect, extra ...string) Dialect {
	if len(extra) == 0 {
		return d
	}
	words := NewKeywords(d.ReservedKeywords()...)
	for _, w := range extra {
		words[w] = true
	}
	return &extendedDialect{Dialect: d, words: words}
}

type extendedDialect struct {
	Dialect
	words Keywords
}

var _ Dialect = (*extendedDialect)(nil)

func (e *extendedDialect) ReservedKeywords() []string {
	return e.words.Sorted()
}

func (e *extendedDialect) IsReservedKeyword(word string) bool {
	return e.words.Contains(word)
}

func (e *extendedDialect) IsHostLanguageLine(line string) bool {
	return e.Dialect.IsHostLanguageLine(line) || HasHostShape(line, e.IsReservedKeyword)
}
