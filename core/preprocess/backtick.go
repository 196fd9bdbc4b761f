package preprocess

import (
	"regexp"
	"strings"

	"github.com/josephlewis42/hybridsh/core/lang"
)

const typedAssignPrefix = "^\\s*([A-Za-z_][\\w.<>,\\[\\]?]*)\\s+([A-Za-z_]\\w*)\\s*=\\s*`[^`]*`\\s*"

var (
	// typedAssignment matches <Type> <name> = `cmd`;
	typedAssignment = regexp.MustCompile(typedAssignPrefix + ";\\s*$")
	// unterminatedAssignment matches <Type> <name> = `cmd` with the ; missing.
	unterminatedAssignment = regexp.MustCompile(typedAssignPrefix + "$")
)

// maskQuoted blanks the interior of double-quoted strings so backticks inside
// them are invisible. The result has the same length as line so offsets into
// it are offsets into line.
func maskQuoted(line string) string {
	b := []byte(line)
	inString := false
	for i := 0; i < len(b); i++ {
		switch {
		case inString && b[i] == '\\' && i+1 < len(b):
			b[i], b[i+1] = ' ', ' '
			i++
		case b[i] == '"':
			inString = !inString
		case inString:
			b[i] = ' '
		}
	}
	return string(b)
}

func isUnescapedBacktick(s string, i int) bool {
	return s[i] == '`' && (i == 0 || s[i-1] != '\\')
}

// backtickSpans finds `...` spans in a masked line, left to right. An opening
// backtick preceded by \ is ignored and spans never contain a backtick.
func backtickSpans(masked string) []lang.Span {
	var spans []lang.Span
	for i := 0; i < len(masked); i++ {
		if !isUnescapedBacktick(masked, i) {
			continue
		}
		end := strings.IndexByte(masked[i+1:], '`')
		if end < 0 {
			break
		}
		end += i + 1
		spans = append(spans, lang.Span{Offset: i, Length: end - i + 1})
		i = end
	}
	return spans
}

// countBackticks counts the unescaped backticks in a masked line.
func countBackticks(masked string) int {
	n := 0
	for i := range masked {
		if isUnescapedBacktick(masked, i) {
			n++
		}
	}
	return n
}

// BacktickMatcher lowers command substitutions embedded in host code.
type BacktickMatcher struct {
	dialect lang.Dialect
	shell   *ShellCommandMatcher
}

var _ LineMatcher = (*BacktickMatcher)(nil)

const backtickMarker marker = "bt"

func (*BacktickMatcher) Name() string { return "backtick" }

func (*BacktickMatcher) IsValid(line string) bool {
	return len(backtickSpans(maskQuoted(line))) > 0
}

func (m *BacktickMatcher) ToMeta(line string) string {
	return backtickMarker.encode(m.Rewrite(line))
}

func (*BacktickMatcher) FromMeta(meta string) (string, error) {
	return backtickMarker.decode(meta)
}

func (*BacktickMatcher) MarkerPrefix() string { return backtickMarker.prefix() }

// Rewrite replaces every substitution in line with code that runs the
// command and converts its output. Text around the spans is kept verbatim.
func (m *BacktickMatcher) Rewrite(line string) string {
	typ := lang.DefaultType
	if sub := typedAssignment.FindStringSubmatch(line); sub != nil && sub[1] != m.dialect.Placeholder() {
		typ = sub[1]
	}

	var fragments []string
	last := 0
	for _, span := range backtickSpans(maskQuoted(line)) {
		command := strings.TrimSpace(line[span.Offset+1 : span.End()-1])
		fragments = append(fragments,
			line[last:span.Offset],
			m.dialect.CaptureExpression(m.shell.Expr(command), typ),
		)
		last = span.End()
	}
	fragments = append(fragments, line[last:])

	return strings.Join(fragments, "")
}
