package preprocess

import (
	"testing"

	"github.com/josephlewis42/hybridsh/core/lang"
	"github.com/josephlewis42/hybridsh/core/lang/csharp"
	"github.com/josephlewis42/hybridsh/core/lang/lua"
	"github.com/stretchr/testify/assert"
)

func newBacktickMatcher(d lang.Dialect) *BacktickMatcher {
	return &BacktickMatcher{dialect: d, shell: &ShellCommandMatcher{dialect: d}}
}

func TestMaskQuoted(t *testing.T) {
	line := "echo \"a`b\" `x`"

	masked := maskQuoted(line)

	assert.Equal(t, "echo \"   \" `x`", masked)
	assert.Len(t, masked, len(line))
}

func TestBacktickSpans(t *testing.T) {
	cases := map[string]struct {
		line     string
		expected []lang.Span
	}{
		"none":        {line: "ls -la", expected: nil},
		"one":         {line: "x = `date`", expected: []lang.Span{{Offset: 4, Length: 6}}},
		"two":         {line: "a `b` c `d`", expected: []lang.Span{{Offset: 2, Length: 3}, {Offset: 8, Length: 3}}},
		"escaped":     {line: "\\`x`", expected: nil},
		"unclosed":    {line: "echo `date", expected: nil},
		"quoted":      {line: "print(\"`date`\")", expected: nil},
		"after quote": {line: "f(\"`\", `id`)", expected: []lang.Span{{Offset: 7, Length: 4}}},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.expected, backtickSpans(maskQuoted(tc.line)))
		})
	}
}

func TestCountBackticks(t *testing.T) {
	assert.Equal(t, 0, countBackticks("ls"))
	assert.Equal(t, 1, countBackticks("\\`x`"))
	assert.Equal(t, 4, countBackticks("`a` + `b`"))
}

func TestBacktickMatcher_Rewrite(t *testing.T) {
	cases := map[string]struct {
		dialect  lang.Dialect
		line     string
		expected string
	}{
		"placeholder type": {
			dialect:  csharp.New(),
			line:     "var data=`cat /etc/passwd`;",
			expected: `var data=(await Shell.ExecAsync("cat /etc/passwd")).As<string>();`,
		},
		"declared type": {
			dialect:  csharp.New(),
			line:     "int n = `wc -l f`;",
			expected: `int n = (await Shell.ExecAsync("wc -l f")).As<int>();`,
		},
		"generic type": {
			dialect:  csharp.New(),
			line:     "List<string> files = `ls`;",
			expected: `List<string> files = (await Shell.ExecAsync("ls")).As<List<string>>();`,
		},
		"expression": {
			dialect:  csharp.New(),
			line:     "Console.WriteLine(`date`);",
			expected: `Console.WriteLine((await Shell.ExecAsync("date")).As<string>());`,
		},
		"interpolated": {
			dialect:  csharp.New(),
			line:     "var x = `cat $testNum$ $testStr$`;",
			expected: `var x = (await Shell.ExecAsync("cat "+testNum+" "+testStr)).As<string>();`,
		},
		"quotes in command": {
			dialect:  csharp.New(),
			line:     "var s = `echo \"hi\"`;",
			expected: `var s = (await Shell.ExecAsync("echo \"hi\"")).As<string>();`,
		},
		"lua local": {
			dialect:  lua.New(),
			line:     "local me = `whoami`",
			expected: `local me = shell.capture("whoami")`,
		},
		"lua number": {
			dialect:  lua.New(),
			line:     "number n = `wc -l < f`;",
			expected: `number n = tonumber(shell.capture("wc -l < f"));`,
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.expected, newBacktickMatcher(tc.dialect).Rewrite(tc.line))
		})
	}
}
