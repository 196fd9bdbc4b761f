// Package csharp lowers shell constructs into C# scripting code.
package csharp

import (
	"strings"

	"github.com/josephlewis42/hybridsh/core/lang"
)

const Name = "csharp"

// keywords are the C# keywords plus the contextual keywords that can start a
// script statement.
var keywords = []string{
	"abstract", "as", "async", "await", "base", "bool", "break", "byte",
	"case", "catch", "char", "checked", "class", "const", "continue",
	"decimal", "default", "delegate", "do", "double", "dynamic", "else",
	"enum", "event", "explicit", "extern", "false", "finally", "fixed",
	"float", "for", "foreach", "goto", "if", "implicit", "in", "int",
	"interface", "internal", "is", "lock", "long", "nameof", "namespace",
	"new", "null", "object", "operator", "out", "override", "params",
	"private", "protected", "public", "readonly", "record", "ref", "return",
	"sbyte", "sealed", "short", "sizeof", "stackalloc", "static", "string",
	"struct", "switch", "this", "throw", "true", "try", "typeof", "uint",
	"ulong", "unchecked", "unsafe", "ushort", "using", "var", "virtual",
	"void", "volatile", "while", "yield",
}

var quoter = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

type dialect struct {
	words lang.Keywords
}

// New creates the C# dialect.
func New() lang.Dialect {
	return &dialect{words: lang.NewKeywords(keywords...)}
}

var _ lang.Dialect = (*dialect)(nil)

func (*dialect) Name() string { return Name }

func (d *dialect) ReservedKeywords() []string { return d.words.Sorted() }

func (d *dialect) IsReservedKeyword(word string) bool { return d.words.Contains(word) }

func (d *dialect) IsHostLanguageLine(line string) bool {
	return lang.HasHostShape(line, d.IsReservedKeyword)
}

func (*dialect) Placeholder() string { return "var" }

func (*dialect) Terminator() string { return ";" }

func (*dialect) RequiresTerminator() bool { return true }

func (*dialect) CompiledSourceExt() string { return ".cs" }

func (*dialect) Reformat(buffer string) string {
	return lang.NormalizeLayout(buffer)
}

func (*dialect) Quote(s string) string {
	return `"` + quoter.Replace(s) + `"`
}

func (*dialect) ConcatOperator() string { return "+" }

func (*dialect) ExecStatement(expr string) string {
	return "_= await Shell.ExecAsync(" + expr + ");"
}

func (*dialect) CaptureExpression(expr, typ string) string {
	if typ == "" {
		typ = lang.DefaultType
	}
	return "(await Shell.ExecAsync(" + expr + ")).As<" + typ + ">()"
}

func (*dialect) ChangeDirectory(expr string) string {
	return "Shell.ChangeDirectory(" + expr + ");"
}

func (*dialect) LoadScript(expr string) string {
	return "Shell.Load(" + expr + ");"
}

func (*dialect) Exit() string { return "throw new ShellExitException();" }

func (*dialect) ClearScreen() string { return "Console.Clear();" }

func init() {
	lang.Register(New())
}
