package preprocess

import (
	"strings"

	"github.com/josephlewis42/hybridsh/core/lang"
)

// isHostLine reports whether line is already host code and must pass through
// substitution untouched. lineNo is only used for errors.
func isHostLine(d lang.Dialect, line string, lineNo int) (bool, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true, nil
	}

	if d.RequiresTerminator() && unterminatedAssignment.MatchString(trimmed) {
		return false, syntaxErrorf(lineNo, nil,
			"command substitution assignment is missing its %q", d.Terminator())
	}

	masked := maskQuoted(trimmed)

	// Two or more substitutions on one line are left to the host language.
	if countBackticks(masked) > 2 {
		return true, nil
	}
	if len(backtickSpans(masked)) == 1 {
		return false, nil
	}

	return d.IsHostLanguageLine(trimmed), nil
}
