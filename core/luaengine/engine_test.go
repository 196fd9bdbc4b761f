package luaengine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/josephlewis42/hybridsh/core/runner"
	"github.com/josephlewis42/hybridsh/core/shellrt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	execs    []string
	captures map[string]string
	cds      []string
	loads    []string
	cleared  int
	env      *shellrt.Env
}

func (f *fakeHost) Exec(_ context.Context, command string) (*shellrt.Process, error) {
	f.execs = append(f.execs, command)
	if command == "false" {
		return &shellrt.Process{Command: command, Status: 1}, nil
	}
	return &shellrt.Process{Command: command}, nil
}

func (f *fakeHost) Capture(_ context.Context, command string) (string, error) {
	out, ok := f.captures[command]
	if !ok {
		return "", errors.New("command not found")
	}
	return out, nil
}

func (f *fakeHost) Cd(arg string) error {
	f.cds = append(f.cds, arg)
	return nil
}

func (f *fakeHost) Load(path string) error {
	f.loads = append(f.loads, path)
	return nil
}

func (f *fakeHost) Cls() { f.cleared++ }

func (f *fakeHost) Getwd() string { return "/work" }

func (f *fakeHost) Exit() error { return runner.ErrExit }

func (f *fakeHost) Env() *shellrt.Env { return f.env }

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *fakeHost) {
	t.Helper()

	host := &fakeHost{
		captures: map[string]string{"whoami": "user", "wc -l": "42"},
		env:      shellrt.NewEnvFromList([]string{"HOME=/home/user"}),
	}
	e, err := New(host, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e, host
}

func submit(t *testing.T, e *Engine, code string) interface{} {
	t.Helper()

	out, err := e.Submit(context.Background(), code, "/work")
	require.NoError(t, err)
	return out
}

func TestEngine_Submit_values(t *testing.T) {
	cases := map[string]struct {
		code     string
		expected interface{}
	}{
		"integer":    {code: "1 + 2", expected: int64(3)},
		"float":      {code: "1 / 4", expected: 0.25},
		"string":     {code: `"a" .. "b"`, expected: "ab"},
		"bool":       {code: "1 < 2", expected: true},
		"nil":        {code: "nil", expected: nil},
		"statement":  {code: "print()", expected: nil},
		"sequence":   {code: "{1, 2, 3}", expected: []interface{}{int64(1), int64(2), int64(3)}},
		"record":     {code: "{a = 1}", expected: map[string]interface{}{"a": int64(1)}},
		"multiple":   {code: "1, 'x'", expected: []interface{}{int64(1), "x"}},
		"capture":    {code: `shell.capture("whoami")`, expected: "user"},
		"to number":  {code: `tonumber(shell.capture("wc -l"))`, expected: int64(42)},
		"getwd":      {code: "shell.getwd()", expected: "/work"},
		"assignment": {code: "x = 5", expected: nil},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			e, _ := newTestEngine(t)

			assert.Equal(t, tc.expected, submit(t, e, tc.code))
		})
	}
}

func TestEngine_Submit_keepsGlobals(t *testing.T) {
	e, _ := newTestEngine(t)

	submit(t, e, "count = 2")
	submit(t, e, "function double(n) return n * 2 end")

	assert.Equal(t, int64(4), submit(t, e, "double(count)"))
	assert.Equal(t, []string{"count", "double"}, e.Globals())
}

func TestEngine_Submit_shellTable(t *testing.T) {
	e, host := newTestEngine(t)

	out := submit(t, e, `shell.exec("ls -la")`)
	proc, ok := out.(runner.ProcessHandle)
	require.True(t, ok)
	assert.Equal(t, 0, proc.ExitCode())

	assert.Equal(t, int64(1), submit(t, e, `shell.exec("false").status`))

	submit(t, e, "shell.cd(\"/tmp\")\nshell.load(\"setup.hsh\")\nshell.cls()")

	assert.Equal(t, []string{"ls -la", "false"}, host.execs)
	assert.Equal(t, []string{"/tmp"}, host.cds)
	assert.Equal(t, []string{"setup.hsh"}, host.loads)
	assert.Equal(t, 1, host.cleared)
}

func TestEngine_Submit_errors(t *testing.T) {
	cases := map[string]struct {
		code string
		diag runner.DiagnosticCode
	}{
		"unused expression": {code: "1 + 2;", diag: runner.CodeExpressionResultUnused},
		"syntax":            {code: "x = = 1", diag: runner.CodeUnknown},
		"terminated syntax": {code: "local = 1;", diag: runner.CodeUnknown},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			e, _ := newTestEngine(t)

			_, err := e.Submit(context.Background(), tc.code, "/work")

			var failure *runner.CompilationFailure
			require.True(t, errors.As(err, &failure), "got %v", err)
			assert.True(t, failure.Has(tc.diag))
		})
	}
}

func TestEngine_Submit_terminatedStatement(t *testing.T) {
	e, _ := newTestEngine(t)

	assert.Nil(t, submit(t, e, "y = 1;"))
	assert.Equal(t, int64(1), submit(t, e, "y"))
}

func TestEngine_Submit_runtimeError(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.Submit(context.Background(), `error("boom")`, "/work")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	_, err = e.Submit(context.Background(), `shell.capture("nope")`, "/work")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command not found")

	// The state is still usable.
	assert.Equal(t, int64(2), submit(t, e, "1 + 1"))
}

func TestEngine_Submit_exit(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.Submit(context.Background(), "shell.exit()", "/work")
	assert.ErrorIs(t, err, runner.ErrExit)

	_, err = e.Submit(context.Background(), `error("later")`, "/work")
	assert.NotErrorIs(t, err, runner.ErrExit)
}

func TestEngine_Submit_caughtExit(t *testing.T) {
	e, _ := newTestEngine(t)

	submit(t, e, "caught = not pcall(shell.exit)")
	assert.Equal(t, true, submit(t, e, "caught"))

	_, err := e.Submit(context.Background(), `error("boom")`, "/work")
	require.Error(t, err)
	assert.NotErrorIs(t, err, runner.ErrExit)
	assert.Contains(t, err.Error(), "boom")
}

func TestEngine_Submit_environment(t *testing.T) {
	e, host := newTestEngine(t)

	assert.Equal(t, "/home/user", submit(t, e, `shell.getenv("HOME")`))
	assert.Nil(t, submit(t, e, `shell.getenv("EDITOR")`))

	submit(t, e, `shell.setenv("EDITOR", "vi")`)
	assert.Equal(t, "vi", host.env.Getenv("EDITOR"))

	submit(t, e, `shell.unsetenv("HOME")`)
	_, ok := host.env.LookupEnv("HOME")
	assert.False(t, ok)
}

func TestEngine_Submit_cancelled(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Submit(ctx, "while true do end", "/work")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_Reset(t *testing.T) {
	e, _ := newTestEngine(t)
	submit(t, e, "z = 1")

	require.NoError(t, e.Reset(context.Background()))

	assert.Nil(t, submit(t, e, "z"))
	assert.Empty(t, e.Globals())
	assert.Equal(t, "user", submit(t, e, `shell.capture("whoami")`))
}

func TestEngine_CompileAndLoad(t *testing.T) {
	e, _ := newTestEngine(t)

	err := e.CompileAndLoad(context.Background(), "util", "local M = {}\nfunction M.twice(s) return s .. s end\nreturn M")
	require.NoError(t, err)

	assert.Equal(t, "abab", submit(t, e, `util.twice("ab")`))
}

func TestEngine_CompileAndLoad_syntaxError(t *testing.T) {
	e, _ := newTestEngine(t)

	err := e.CompileAndLoad(context.Background(), "broken", "function (")

	var failure *runner.CompilationFailure
	assert.True(t, errors.As(err, &failure))
}

func TestEngine_references(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greet.lua"), []byte(`return { hello = function() return "hi" end }`), 0644))
	e, _ := newTestEngine(t)

	out, err := e.Submit(context.Background(), "#r \"greet.lua\"\ngreet.hello()", dir)

	require.NoError(t, err)
	assert.Equal(t, "hi", out)
}

func TestEngine_imports(t *testing.T) {
	e, _ := newTestEngine(t, WithImports("string"))

	assert.Equal(t, "ABC", submit(t, e, `string.upper("abc")`))

	_, err := New(&fakeHost{}, WithImports("does_not_exist"))
	assert.Error(t, err)
}
