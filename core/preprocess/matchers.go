package preprocess

import (
	"regexp"
	"strings"

	"github.com/josephlewis42/hybridsh/core/lang"
)

// ResetToken is what a reset line decodes to. The runner, not the engine,
// acts on it.
const ResetToken = "#reset"

// LineMatcher recognizes one single-line shell construct and converts it to
// and from its meta form.
//
// IsValid and ToMeta receive lines with indentation removed. FromMeta receives
// a left-trimmed line that starts with MarkerPrefix. Matchers with an empty
// MarkerPrefix resolve completely during substitution and are never decoded.
type LineMatcher interface {
	Name() string
	IsValid(line string) bool
	ToMeta(line string) string
	FromMeta(meta string) (string, error)
	MarkerPrefix() string
}

// DefaultLineMatchers returns the built-in matchers in precedence order.
func DefaultLineMatchers(d lang.Dialect) []LineMatcher {
	shell := &ShellCommandMatcher{dialect: d}
	return []LineMatcher{
		&ShebangMatcher{},
		&ExitMatcher{dialect: d},
		&ClsMatcher{dialect: d},
		&ReferenceMatcher{},
		&LoadMatcher{dialect: d},
		&CdMatcher{dialect: d},
		&BacktickMatcher{dialect: d, shell: shell},
		&ResetMatcher{},
		shell,
	}
}

// orderingDefect is the decode result of matchers that resolve fully during
// substitution.
func orderingDefect(m LineMatcher, meta string) (string, error) {
	return "", &OrderingError{Matcher: m.Name(), Marker: meta}
}

// ShebangMatcher drops interpreter lines like #!/usr/bin/env hybridsh.
type ShebangMatcher struct{}

var _ LineMatcher = (*ShebangMatcher)(nil)

func (*ShebangMatcher) Name() string { return "shebang" }

func (*ShebangMatcher) IsValid(line string) bool { return strings.HasPrefix(line, "#!") }

func (*ShebangMatcher) ToMeta(string) string { return "" }

func (m *ShebangMatcher) FromMeta(meta string) (string, error) {
	return orderingDefect(m, meta)
}

func (*ShebangMatcher) MarkerPrefix() string { return "" }

// ExitMatcher handles exit and #exit.
type ExitMatcher struct {
	dialect lang.Dialect
}

var _ LineMatcher = (*ExitMatcher)(nil)

func (*ExitMatcher) Name() string { return "exit" }

func (*ExitMatcher) IsValid(line string) bool { return line == "exit" || line == "#exit" }

func (*ExitMatcher) ToMeta(string) string { return sentinel("exit") }

func (m *ExitMatcher) FromMeta(string) (string, error) { return m.dialect.Exit(), nil }

func (*ExitMatcher) MarkerPrefix() string { return sentinel("exit") }

// ClsMatcher handles #cls.
type ClsMatcher struct {
	dialect lang.Dialect
}

var _ LineMatcher = (*ClsMatcher)(nil)

func (*ClsMatcher) Name() string { return "cls" }

func (*ClsMatcher) IsValid(line string) bool { return line == "#cls" }

func (*ClsMatcher) ToMeta(string) string { return sentinel("cls") }

func (m *ClsMatcher) FromMeta(string) (string, error) { return m.dialect.ClearScreen(), nil }

func (*ClsMatcher) MarkerPrefix() string { return sentinel("cls") }

// ReferenceMatcher passes #r directives through untouched for the engine.
type ReferenceMatcher struct{}

var _ LineMatcher = (*ReferenceMatcher)(nil)

// ReferencePrefix starts a reference directive.
const ReferencePrefix = "#r "

func (*ReferenceMatcher) Name() string { return "reference" }

func (*ReferenceMatcher) IsValid(line string) bool { return strings.HasPrefix(line, ReferencePrefix) }

func (*ReferenceMatcher) ToMeta(line string) string { return line }

func (m *ReferenceMatcher) FromMeta(meta string) (string, error) {
	return orderingDefect(m, meta)
}

func (*ReferenceMatcher) MarkerPrefix() string { return "" }

// LoadMatcher handles #load <path>.
type LoadMatcher struct {
	dialect lang.Dialect
}

var _ LineMatcher = (*LoadMatcher)(nil)

const loadMarker marker = "load"

// ParseLoadDirective extracts the path from a #load line. Surrounding double
// quotes are removed.
func ParseLoadDirective(line string) (string, bool) {
	line = strings.TrimSpace(line)
	rest := strings.TrimPrefix(line, "#load")
	if rest == line || rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
		return "", false
	}
	path := strings.TrimSpace(rest)
	if len(path) >= 2 && path[0] == '"' && path[len(path)-1] == '"' {
		path = path[1 : len(path)-1]
	}
	return path, path != ""
}

func (*LoadMatcher) Name() string { return "load" }

func (*LoadMatcher) IsValid(line string) bool {
	_, ok := ParseLoadDirective(line)
	return ok
}

func (*LoadMatcher) ToMeta(line string) string {
	path, _ := ParseLoadDirective(line)
	return loadMarker.encode(path)
}

func (m *LoadMatcher) FromMeta(meta string) (string, error) {
	path, err := loadMarker.decode(meta)
	if err != nil {
		return "", err
	}
	return m.dialect.LoadScript(quoteInterpolated(m.dialect, path)), nil
}

func (*LoadMatcher) MarkerPrefix() string { return loadMarker.prefix() }

// CdMatcher handles cd and cd <path>.
type CdMatcher struct {
	dialect lang.Dialect
}

var _ LineMatcher = (*CdMatcher)(nil)

const cdMarker marker = "cd"

func (*CdMatcher) Name() string { return "cd" }

func (*CdMatcher) IsValid(line string) bool {
	return line == "cd" || strings.HasPrefix(line, "cd ") || strings.HasPrefix(line, "cd\t")
}

func (*CdMatcher) ToMeta(line string) string {
	return cdMarker.encode(strings.TrimSpace(strings.TrimPrefix(line, "cd")))
}

func (m *CdMatcher) FromMeta(meta string) (string, error) {
	arg, err := cdMarker.decode(meta)
	if err != nil {
		return "", err
	}
	return m.dialect.ChangeDirectory(m.dialect.Quote(arg)), nil
}

func (*CdMatcher) MarkerPrefix() string { return cdMarker.prefix() }

// ResetMatcher handles #reset, which clears engine state.
type ResetMatcher struct{}

var _ LineMatcher = (*ResetMatcher)(nil)

func (*ResetMatcher) Name() string { return "reset" }

func (*ResetMatcher) IsValid(line string) bool { return strings.HasPrefix(line, ResetToken) }

func (*ResetMatcher) ToMeta(string) string { return ResetToken }

func (m *ResetMatcher) FromMeta(meta string) (string, error) {
	return orderingDefect(m, meta)
}

func (*ResetMatcher) MarkerPrefix() string { return "" }

// shellCommand matches ./anything or word[-word] optionally followed by
// whitespace and arguments.
var shellCommand = regexp.MustCompile(`^(?:\./.*|\w+(?:-\w+)*(?:\s.*)?)$`)

// ShellCommandMatcher is the fallback that runs a line as an external
// command.
type ShellCommandMatcher struct {
	dialect lang.Dialect
}

var _ LineMatcher = (*ShellCommandMatcher)(nil)

const commandMarker marker = "cmd"

func (*ShellCommandMatcher) Name() string { return "command" }

func (m *ShellCommandMatcher) IsValid(line string) bool {
	if strings.HasSuffix(line, ";") || !shellCommand.MatchString(line) {
		return false
	}
	return !m.dialect.IsReservedKeyword(lang.FirstWord(line))
}

func (*ShellCommandMatcher) ToMeta(line string) string {
	return commandMarker.encode(line)
}

func (m *ShellCommandMatcher) FromMeta(meta string) (string, error) {
	command, err := commandMarker.decode(meta)
	if err != nil {
		return "", err
	}
	return m.dialect.ExecStatement(m.Expr(command)), nil
}

func (*ShellCommandMatcher) MarkerPrefix() string { return commandMarker.prefix() }

// Expr returns the string expression for command with $name$ references
// spliced in.
func (m *ShellCommandMatcher) Expr(command string) string {
	return quoteInterpolated(m.dialect, command)
}

func quoteInterpolated(d lang.Dialect, s string) string {
	return Interpolate(d.Quote(s), d.ConcatOperator())
}
