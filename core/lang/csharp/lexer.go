package csharp

import (
	"strings"

	"github.com/josephlewis42/hybridsh/core/lang"
)

// Comments finds // and /* */ comments, skipping string and character
// literals. Regular literals end at a newline even when unterminated so a
// stray apostrophe in a shell line can't swallow the rest of the buffer.
func (*dialect) Comments(buffer string) []lang.Comment {
	var out []lang.Comment

	for i := 0; i < len(buffer); {
		switch {
		case strings.HasPrefix(buffer[i:], "//"):
			end := strings.IndexByte(buffer[i:], '\n')
			if end < 0 {
				end = len(buffer)
			} else {
				end += i
			}
			out = append(out, newComment(buffer, i, end, lang.LineComment))
			i = end

		case strings.HasPrefix(buffer[i:], "/*"):
			end := strings.Index(buffer[i+2:], "*/")
			if end < 0 {
				end = len(buffer)
			} else {
				end += i + 4
			}
			out = append(out, newComment(buffer, i, end, lang.BlockComment))
			i = end

		case strings.HasPrefix(buffer[i:], `@"`):
			i = skipVerbatim(buffer, i+2)
		case strings.HasPrefix(buffer[i:], `$@"`), strings.HasPrefix(buffer[i:], `@$"`):
			i = skipVerbatim(buffer, i+3)
		case buffer[i] == '"':
			i = skipQuoted(buffer, i+1, '"')
		case buffer[i] == '\'':
			i = skipQuoted(buffer, i+1, '\'')
		default:
			i++
		}
	}

	return out
}

func newComment(buffer string, start, end int, kind lang.CommentKind) lang.Comment {
	return lang.Comment{
		Span: lang.Span{Offset: start, Length: end - start},
		Text: buffer[start:end],
		Kind: kind,
	}
}

// skipQuoted returns the offset after the literal that starts at i.
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

// skipVerbatim skips a verbatim literal body, "" is an escaped quote.
func skipVerbatim(buffer string, i int) int {
	for i < len(buffer) {
		if buffer[i] == '"' {
			if i+1 < len(buffer) && buffer[i+1] == '"' {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return len(buffer)
}
