// Package display renders engine results for the terminal.
package display

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"sigs.k8s.io/yaml"
)

const (
	ColorAlways = "always"
	ColorAuto   = "auto"
	ColorNever  = "never"
)

// ColorModes lists the accepted values of the color setting.
var ColorModes = []string{ColorAlways, ColorAuto, ColorNever}

// ShouldColor resolves a color mode, auto colors only terminals.
func ShouldColor(mode string, isTerminal bool) bool {
	switch mode {
	case ColorNever:
		return false
	case ColorAlways:
		return true
	default:
		return isTerminal
	}
}

// Printer formats values, optionally with ANSI colors.
type Printer struct {
	str     *color.Color
	number  *color.Color
	boolean *color.Color
	err     *color.Color
	prompt  *color.Color
}

// NewPrinter creates a printer. Its colors don't depend on the global
// color.NoColor setting.
func NewPrinter(enabled bool) *Printer {
	p := &Printer{
		str:     color.New(color.FgGreen),
		number:  color.New(color.FgCyan),
		boolean: color.New(color.FgYellow),
		err:     color.New(color.FgRed, color.Bold),
		prompt:  color.New(color.FgBlue, color.Bold),
	}
	for _, c := range []*color.Color{p.str, p.number, p.boolean, p.err, p.prompt} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Format renders value. Tables are rendered as YAML.
func (p *Printer) Format(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case string:
		return p.str.Sprint(strconv.Quote(v))
	case bool:
		return p.boolean.Sprint(v)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return p.number.Sprint(v)
	case error:
		return p.Error(v)
	case []interface{}, map[string]interface{}:
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return strings.TrimRight(string(out), "\n")
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Error renders err in red.
func (p *Printer) Error(err error) string {
	return p.err.Sprint(err.Error())
}

// Prompt renders the REPL prompt.
func (p *Printer) Prompt(prompt string) string {
	return p.prompt.Sprint(prompt)
}
