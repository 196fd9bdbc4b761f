// Package lua lowers shell constructs into Lua code that calls the host
// runtime's shell table.
package lua

import (
	"regexp"
	"strings"

	"github.com/josephlewis42/hybridsh/core/lang"
)

const Name = "lua"

var keywords = []string{
	"and", "break", "do", "else", "elseif", "end", "false", "for",
	"function", "goto", "if", "in", "local", "nil", "not", "or", "repeat",
	"return", "then", "true", "until", "while",
}

var quoter = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\x00", `\0`,
)

type dialect struct {
	words lang.Keywords
}

// New creates the Lua dialect.
func New() lang.Dialect {
	return &dialect{words: lang.NewKeywords(keywords...)}
}

var _ lang.Dialect = (*dialect)(nil)

func (*dialect) Name() string { return Name }

func (d *dialect) ReservedKeywords() []string { return d.words.Sorted() }

func (d *dialect) IsReservedKeyword(word string) bool { return d.words.Contains(word) }

// assignment matches statements like "x = 1" and "a.b, c = f()" which Lua
// allows without a terminator.
var assignment = regexp.MustCompile(`^[A-Za-z_][\w.]*(?:\s*,\s*[A-Za-z_][\w.]*)*\s*=[^=]`)

func (d *dialect) IsHostLanguageLine(line string) bool {
	return lang.HasHostShape(line, d.IsReservedKeyword) || assignment.MatchString(strings.TrimSpace(line))
}

func (*dialect) Placeholder() string { return "local" }

func (*dialect) Terminator() string { return ";" }

func (*dialect) RequiresTerminator() bool { return false }

func (*dialect) CompiledSourceExt() string { return ".lua" }

func (*dialect) Reformat(buffer string) string {
	return lang.NormalizeLayout(buffer)
}

func (*dialect) Quote(s string) string {
	return `"` + quoter.Replace(s) + `"`
}

func (*dialect) ConcatOperator() string { return ".." }

func (*dialect) ExecStatement(expr string) string {
	return "shell.exec(" + expr + ")"
}

func (*dialect) CaptureExpression(expr, typ string) string {
	capture := "shell.capture(" + expr + ")"
	switch typ {
	case "number", "int", "integer", "float", "double":
		return "tonumber(" + capture + ")"
	case "bool", "boolean":
		return "(" + capture + ` == "true")`
	default:
		return capture
	}
}

func (*dialect) ChangeDirectory(expr string) string {
	return "shell.cd(" + expr + ")"
}

func (*dialect) LoadScript(expr string) string {
	return "shell.load(" + expr + ")"
}

func (*dialect) Exit() string { return "shell.exit()" }

func (*dialect) ClearScreen() string { return "shell.cls()" }

func init() {
	lang.Register(New())
}
