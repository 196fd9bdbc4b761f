package preprocess

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ExampleInterpolate() {
	fmt.Println(Interpolate(`"cat $testNum$ $testStr$"`, "+"))
	fmt.Println(Interpolate(`"touch file$i$.txt"`, ".."))

	// Output: "cat "+testNum+" "+testStr
	// "touch file"..i..".txt"
}

func TestInterpolate(t *testing.T) {
	cases := map[string]struct {
		literal  string
		expected string
	}{
		"no spans":        {literal: `"ls -la"`, expected: `"ls -la"`},
		"only a variable": {literal: `"$x$"`, expected: `x`},
		"leading":         {literal: `"$dir$/setup"`, expected: `dir+"/setup"`},
		"trailing":        {literal: `"echo $name$"`, expected: `"echo "+name`},
		"adjacent":        {literal: `"$a$$b$"`, expected: `a+""+b`},
		"escaped":         {literal: `"a \$x\$ b"`, expected: `"a \$x\$ b"`},
		"lone dollar":     {literal: `"echo $HOME"`, expected: `"echo $HOME"`},
		"not names":       {literal: `"echo $HOME $PATH"`, expected: `"echo $HOME $PATH"`},
		"quotes kept":     {literal: `"say \"$who$\" twice"`, expected: `"say \""+who+"\" twice"`},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.expected, Interpolate(tc.literal, "+"))
		})
	}
}

func TestInterpolate_identityWithoutDollar(t *testing.T) {
	for _, literal := range []string{
		``,
		`""`,
		`"cat /etc/passwd"`,
		`"it's \"quoted\""`,
		`"a+b"`,
	} {
		assert.Equal(t, literal, Interpolate(literal, "+"))
		assert.False(t, HasInterpolation(literal))
	}
}

func TestHasInterpolation(t *testing.T) {
	assert.True(t, HasInterpolation(`cat $file$`))
	assert.False(t, HasInterpolation(`cat $file`))
	assert.False(t, HasInterpolation(`cat \$file\$`))
	assert.False(t, HasInterpolation(`price: $$`))
}
