package lua

import (
	"testing"

	"github.com/josephlewis42/hybridsh/core/lang"
	"github.com/stretchr/testify/assert"
)

func TestDialect_Comments(t *testing.T) {
	cases := map[string]struct {
		buffer   string
		expected []lang.Comment
	}{
		"trailing": {
			buffer: "x = 1 -- note",
			expected: []lang.Comment{
				{Span: lang.Span{Offset: 6, Length: 7}, Text: "-- note", Kind: lang.LineComment},
			},
		},
		"long flag": {
			buffer: "ls --all",
		},
		"lone dashes argument": {
			buffer: "git checkout -- file.txt",
			expected: []lang.Comment{
				{Span: lang.Span{Offset: 13, Length: 11}, Text: "-- file.txt", Kind: lang.LineComment},
			},
		},
		"quoted dashes argument": {
			buffer: "git checkout '--' file.txt",
		},
		"long comment": {
			buffer: "--[[ a\nb ]] y",
			expected: []lang.Comment{
				{Span: lang.Span{Offset: 0, Length: 11}, Text: "--[[ a\nb ]]", Kind: lang.BlockComment},
			},
		},
		"leveled long comment": {
			buffer: "--[==[ ]] ]==]",
			expected: []lang.Comment{
				{Span: lang.Span{Offset: 0, Length: 14}, Text: "--[==[ ]] ]==]", Kind: lang.BlockComment},
			},
		},
		"in string": {
			buffer: `s = "-- x"`,
		},
		"in long string": {
			buffer: "s = [[\n-- x ]]",
		},
		"bare dashes": {
			buffer: "--",
			expected: []lang.Comment{
				{Span: lang.Span{Offset: 0, Length: 2}, Text: "--", Kind: lang.LineComment},
			},
		},
	}

	d := New()
	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.expected, d.Comments(tc.buffer))
		})
	}
}

func TestDialect_IsHostLanguageLine(t *testing.T) {
	cases := map[string]bool{
		"x = 5":            true,
		"a.b, c = f()":     true,
		"local y = 2":      true,
		"print(x)":         true,
		"end":              true,
		"ls -la":           false,
		"x == 5":           false,
		"git commit -m hi": false,
	}

	d := New()
	for line, expected := range cases {
		t.Run(line, func(t *testing.T) {
			assert.Equal(t, expected, d.IsHostLanguageLine(line))
		})
	}
}

func TestDialect_CaptureExpression(t *testing.T) {
	cases := map[string]string{
		"":       `shell.capture("ls")`,
		"local":  `shell.capture("ls")`,
		"number": `tonumber(shell.capture("ls"))`,
		"int":    `tonumber(shell.capture("ls"))`,
		"bool":   `(shell.capture("ls") == "true")`,
	}

	d := New()
	for typ, expected := range cases {
		t.Run(typ, func(t *testing.T) {
			assert.Equal(t, expected, d.CaptureExpression(`"ls"`, typ))
		})
	}
}
