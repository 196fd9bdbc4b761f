package preprocess

import (
	"path/filepath"
	"testing"

	"github.com/josephlewis42/hybridsh/core/lang"
	"github.com/josephlewis42/hybridsh/core/lang/csharp"
	"github.com/josephlewis42/hybridsh/core/lang/lua"
	"github.com/sebdah/goldie/v2"
)

type goldenTestSuite map[string]goldenTest

type goldenTest struct {
	Script string
}

func (gts goldenTestSuite) Run(t *testing.T, d lang.Dialect) {
	t.Helper()

	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
	)

	for tn, tc := range gts {
		t.Run(tn, func(t *testing.T) {
			out, err := New(d).Process(tc.Script)
			if err != nil {
				t.Fatal(err)
			}

			g.Assert(t, tn, []byte(out+"\n"))
		})
	}
}

func TestGoldenCSharp(t *testing.T) {
	goldenTestSuite{
		"mixed": {Script: `#!/usr/bin/env hybridsh
// list the home directory
ls -la ~
var count = 3;
int lines = ` + "`wc -l /etc/passwd`" + `;
cd /tmp
if (count > 2)
{
    echo $count$ items
}
#sh
mkdir -p out
touch out/a
#end
#code
date
#end
`},
		"comments": {Script: `var url = "http://example.com"; // keep the URL
/* block
   ls */
echo done // trailing
`},
	}.Run(t, csharp.New())
}

func TestGoldenLua(t *testing.T) {
	goldenTestSuite{
		"mixed": {Script: `-- greet the user
local name = ` + "`whoami`" + `
print("hello " .. name)
echo $name$
cd ~/src
for i = 1, 3 do
  touch file$i$.txt
end
#load "setup.lua"
exit
`},
	}.Run(t, lua.New())
}
