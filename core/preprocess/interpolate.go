package preprocess

import "strings"

// interpolation splits text around $name$ spans. literals always has one more
// entry than names and holds the text between spans exactly as written.
type interpolation struct {
	literals []string
	names    []string
}

func scanInterpolation(s string) interpolation {
	var in interpolation
	start := 0
	for i := 0; i < len(s); {
		open := nextDollar(s, i)
		if open < 0 {
			break
		}
		close := nextDollar(s, open+1)
		if close < 0 {
			break
		}

		name := s[open+1 : close]
		if !isInterpolationName(name) {
			// The closing $ may open the next span.
			i = close
			continue
		}

		in.literals = append(in.literals, s[start:open])
		in.names = append(in.names, name)
		start = close + 1
		i = close + 1
	}
	in.literals = append(in.literals, s[start:])
	return in
}

// nextDollar finds the next $ at or after from that isn't escaped.
func nextDollar(s string, from int) int {
	for j := from; j < len(s); j++ {
		if s[j] == '$' && (j == 0 || s[j-1] != '\\') {
			return j
		}
	}
	return -1
}

func isInterpolationName(name string) bool {
	return name != "" && !strings.ContainsAny(name, " \t\r\n\"'\\$")
}

// HasInterpolation reports whether s contains at least one $name$ span.
func HasInterpolation(s string) bool {
	return len(scanInterpolation(s).names) > 0
}

// Interpolate rewrites every $name$ span in a string literal into a
// concatenation with the variable name, so "cat $n$ x" becomes
// "cat "+n+" x". The empty-string artifacts left when a span touches either
// end of the literal are trimmed. Text without spans is returned unchanged.
func Interpolate(literal, concat string) string {
	in := scanInterpolation(literal)
	if len(in.names) == 0 {
		return literal
	}

	var sb strings.Builder
	for i, name := range in.names {
		sb.WriteString(in.literals[i])
		sb.WriteString(`"` + concat + name + concat + `"`)
	}
	last := in.literals[len(in.literals)-1]
	sb.WriteString(last)
	out := sb.String()

	switch in.literals[0] {
	case `"`:
		out = strings.TrimPrefix(out, `""`+concat)
	case "":
		out = strings.TrimPrefix(out, `"`+concat)
	}
	switch last {
	case `"`:
		out = strings.TrimSuffix(out, concat+`""`)
	case "":
		out = strings.TrimSuffix(out, concat+`"`)
	}

	return out
}
