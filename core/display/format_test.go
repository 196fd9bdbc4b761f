package display

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type named string

func (n named) String() string { return "<" + string(n) + ">" }

func TestPrinter_Format(t *testing.T) {
	cases := map[string]struct {
		value    interface{}
		expected string
	}{
		"nil":      {value: nil, expected: "nil"},
		"string":   {value: "a\tb", expected: `"a\tb"`},
		"bool":     {value: true, expected: "true"},
		"int":      {value: int64(42), expected: "42"},
		"float":    {value: 0.5, expected: "0.5"},
		"error":    {value: errors.New("boom"), expected: "boom"},
		"sequence": {value: []interface{}{int64(1), "x"}, expected: "- 1\n- x"},
		"record":   {value: map[string]interface{}{"b": true, "a": int64(1)}, expected: "a: 1\nb: true"},
		"stringer": {value: named("proc"), expected: "<proc>"},
		"struct":   {value: struct{ A int }{A: 1}, expected: "{1}"},
	}

	printer := NewPrinter(false)
	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.expected, printer.Format(tc.value))
		})
	}
}

func TestPrinter_colors(t *testing.T) {
	printer := NewPrinter(true)

	assert.Equal(t, "\x1b[32m\"hi\"\x1b[0m", printer.Format("hi"))
	assert.Equal(t, "\x1b[36m7\x1b[0m", printer.Format(7))
	assert.Equal(t, "\x1b[33mfalse\x1b[0m", printer.Format(false))
	assert.Equal(t, "\x1b[31;1mbad\x1b[0m", printer.Error(errors.New("bad")))
	assert.Equal(t, "a: 1", printer.Format(map[string]interface{}{"a": 1}))
}

func TestShouldColor(t *testing.T) {
	cases := map[string]struct {
		mode     string
		terminal bool
		expected bool
	}{
		"always pipe":   {mode: ColorAlways, terminal: false, expected: true},
		"never tty":     {mode: ColorNever, terminal: true, expected: false},
		"auto tty":      {mode: ColorAuto, terminal: true, expected: true},
		"auto pipe":     {mode: ColorAuto, terminal: false, expected: false},
		"unset is auto": {mode: "", terminal: true, expected: true},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.expected, ShouldColor(tc.mode, tc.terminal))
		})
	}
}

func ExamplePrinter_Format() {
	printer := NewPrinter(false)

	fmt.Println(printer.Format("hello"))
	fmt.Println(printer.Format([]interface{}{"a", "b"}))
	// Output: "hello"
	// - a
	// - b
}
