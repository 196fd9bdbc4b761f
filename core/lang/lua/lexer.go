package lua

import (
	"strings"

	"github.com/josephlewis42/hybridsh/core/lang"
)

// Comments finds Lua comments while skipping string literals.
//
// A "--" only opens a line comment at the start of a line or after
// whitespace, and only when followed by whitespace, '-', '[' or the end of
// the line. Lua itself is less strict, but shell flags such as "ls --all"
// share the same spelling and must survive; anything skipped here is still
// discarded by the engine. A lone "--" argument, as in "git checkout -- f",
// still reads as a comment; quote it ('--') to pass it to the command.
func (*dialect) Comments(buffer string) []lang.Comment {
	var out []lang.Comment

	for i := 0; i < len(buffer); {
		switch {
		case strings.HasPrefix(buffer[i:], "--") && commentAllowed(buffer, i):
			if level, ok := longBracket(buffer, i+2); ok {
				end := skipLong(buffer, i+2+level+2, level)
				out = append(out, newComment(buffer, i, end, lang.BlockComment))
				i = end
				continue
			}
			end := strings.IndexByte(buffer[i:], '\n')
			if end < 0 {
				end = len(buffer)
			} else {
				end += i
			}
			out = append(out, newComment(buffer, i, end, lang.LineComment))
			i = end

		case buffer[i] == '"' || buffer[i] == '\'':
			i = skipQuoted(buffer, i+1, buffer[i])

		case buffer[i] == '[':
			if level, ok := longBracket(buffer, i); ok {
				i = skipLong(buffer, i+level+2, level)
				continue
			}
			i++

		default:
			i++
		}
	}

	return out
}

func commentAllowed(buffer string, i int) bool {
	if i > 0 {
		switch buffer[i-1] {
		case ' ', '\t', '\n', '\r':
		default:
			return false
		}
	}
	if i+2 >= len(buffer) {
		return true
	}
	switch buffer[i+2] {
	case ' ', '\t', '\n', '\r', '-', '[':
		return true
	}
	return false
}

// longBracket reports whether an opening long bracket ([[, [=[, ...) starts
// at i and returns its level.
func longBracket(buffer string, i int) (int, bool) {
	if i >= len(buffer) || buffer[i] != '[' {
		return 0, false
	}
	level := 0
	for j := i + 1; j < len(buffer); j++ {
		switch buffer[j] {
		case '=':
			level++
		case '[':
			return level, true
		default:
			return 0, false
		}
	}
	return 0, false
}

// skipLong returns the offset after the closing bracket of the given level.
func skipLong(buffer string, i, level int) int {
	closer := "]" + strings.Repeat("=", level) + "]"
	end := strings.Index(buffer[min(i, len(buffer)):], closer)
	if end < 0 {
		return len(buffer)
	}
	return i + end + len(closer)
}

func skipQuoted(buffer string, i int, quote byte) int {
	for i < len(buffer) {
		switch buffer[i] {
		case '\\':
			i += 2
		case quote:
			return i + 1
		case '\n':
			return i
		default:
			i++
		}
	}
	return len(buffer)
}

func newComment(buffer string, start, end int, kind lang.CommentKind) lang.Comment {
	return lang.Comment{
		Span: lang.Span{Offset: start, Length: end - start},
		Text: buffer[start:end],
		Kind: kind,
	}
}
