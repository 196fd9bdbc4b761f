package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		cfgPath, dialectName, runCode, runDryRun = ".", "", "", false
	})

	var out bytes.Buffer
	err := execute(context.Background(), strings.NewReader(stdin), &out, &out, args...)
	return out.String(), err
}

func TestTranspile(t *testing.T) {
	cases := map[string]struct {
		dialect  string
		input    string
		expected string
	}{
		"csharp command": {
			dialect:  "csharp",
			input:    "cat /etc/passwd",
			expected: "_= await Shell.ExecAsync(\"cat /etc/passwd\");\n",
		},
		"csharp capture": {
			dialect:  "csharp",
			input:    "var data=`cat /etc/passwd`;",
			expected: "var data=(await Shell.ExecAsync(\"cat /etc/passwd\")).As<string>();\n",
		},
		"lua cd": {
			dialect:  "lua",
			input:    "cd /tmp",
			expected: "shell.cd(\"/tmp\")\n",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			out, err := runCommand(t, tc.input, "transpile", "--config", t.TempDir(), "--dialect", tc.dialect)

			require.NoError(t, err)
			assert.Equal(t, tc.expected, out)
		})
	}
}

func TestTranspile_syntaxError(t *testing.T) {
	_, err := runCommand(t, "var data=`cat /etc/passwd`", "transpile", "--config", t.TempDir(), "--dialect", "csharp")

	assert.Error(t, err)
}

func TestTranspile_file(t *testing.T) {
	script := filepath.Join(t.TempDir(), "script.hsh")
	require.NoError(t, os.WriteFile(script, []byte("ls\n"), 0644))

	out, err := runCommand(t, "", "transpile", "--config", t.TempDir(), "--dialect", "lua", script)

	require.NoError(t, err)
	assert.Equal(t, "shell.exec(\"ls\")\n", out)
}

func TestRun(t *testing.T) {
	out, err := runCommand(t, "", "run", "--config", t.TempDir(), "--dialect", "lua", "-c", "(6 * 7)")

	require.NoError(t, err)
	assert.Equal(t, "42\n", out)
}

func TestRun_dryRun(t *testing.T) {
	out, err := runCommand(t, "", "run", "--config", t.TempDir(), "--dialect", "csharp", "-c", "cd /tmp")

	require.NoError(t, err)
	assert.Equal(t, "Shell.ChangeDirectory(\"/tmp\");\n", out)
}

func TestRun_args(t *testing.T) {
	_, err := runCommand(t, "", "run", "--config", t.TempDir())
	assert.Error(t, err)
}

func TestMatchers(t *testing.T) {
	out, err := runCommand(t, "", "matchers", "--config", t.TempDir())

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "KIND"))
	assert.Contains(t, out, "@@cmd[")
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	_, err := runCommand(t, "", "init", "--config", dir)

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "config.yaml"))
}
