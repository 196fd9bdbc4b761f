package lang_test

import (
	"fmt"
	"testing"

	"github.com/josephlewis42/hybridsh/core/lang"
	"github.com/josephlewis42/hybridsh/core/lang/csharp"
	"github.com/josephlewis42/hybridsh/core/lang/lua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstWord(t *testing.T) {
	cases := map[string]string{
		"":              "",
		"  ls -la":      "ls",
		"if(x)":         "if",
		"\tfoo_bar = 1": "foo_bar",
		"./run.sh":      "",
	}

	for line, expected := range cases {
		t.Run(line, func(t *testing.T) {
			assert.Equal(t, expected, lang.FirstWord(line))
		})
	}
}

func TestHasHostShape(t *testing.T) {
	isKeyword := lang.NewKeywords("if", "var").Contains

	cases := map[string]bool{
		"":              true,
		"x = 1;":        true,
		"if x":          true,
		"var y = 2":     true,
		"Main() {":      true,
		"}":             true,
		"f(x)":          true,
		"ls -la":        false,
		"variable --x":  false,
		"echo trailing": false,
	}

	for line, expected := range cases {
		t.Run(line, func(t *testing.T) {
			assert.Equal(t, expected, lang.HasHostShape(line, isKeyword))
		})
	}
}

func ExampleNormalizeLayout() {
	fmt.Printf("%q\n", lang.NormalizeLayout("\n\na = 1;  \r\n\n\n\nb = 2;\n\n"))
	// Output: "a = 1;\n\nb = 2;"
}

func TestWithKeywords(t *testing.T) {
	base := csharp.New()
	d := lang.WithKeywords(base, "ls", "make")

	assert.True(t, d.IsReservedKeyword("ls"))
	assert.True(t, d.IsReservedKeyword("var"))
	assert.False(t, base.IsReservedKeyword("ls"))
	assert.True(t, d.IsHostLanguageLine("make all"))
	assert.False(t, base.IsHostLanguageLine("make all"))
	assert.Contains(t, d.ReservedKeywords(), "make")
	assert.Equal(t, base.Name(), d.Name())

	assert.Same(t, base, lang.WithKeywords(base))
}

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{csharp.Name, lua.Name}, lang.Names())

	d, err := lang.Lookup(lua.Name)
	require.NoError(t, err)
	assert.Equal(t, lua.Name, d.Name())

	_, err = lang.Lookup("cobol")
	assert.EqualError(t, err, `unknown dialect "cobol", known: csharp, lua`)
}

func TestRegister_duplicate(t *testing.T) {
	assert.Panics(t, func() { lang.Register(lua.New()) })
}

func TestCommentKind_String(t *testing.T) {
	assert.Equal(t, "line", lang.LineComment.String())
	assert.Equal(t, "block", lang.BlockComment.String())
	assert.Equal(t, "CommentKind(7)", lang.CommentKind(7).String())
}
