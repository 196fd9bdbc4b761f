// Package luaengine runs the lua dialect's output in a persistent gopher-lua
// state.
package luaengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/josephlewis42/hybridsh/core/logger"
	"github.com/josephlewis42/hybridsh/core/preprocess"
	"github.com/josephlewis42/hybridsh/core/runner"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// Engine keeps global bindings across submissions.
type Engine struct {
	mu      sync.Mutex
	state   *lua.LState
	host    Host
	imports []string
	log     *slog.Logger

	// builtin holds the globals present before any user code ran.
	builtin map[string]bool
}

var (
	_ runner.Engine   = (*Engine)(nil)
	_ runner.Compiler = (*Engine)(nil)
)

type Option func(*Engine)

// WithImports requires modules at startup and after every reset, each is
// bound to a global of the same name.
func WithImports(modules ...string) Option {
	return func(e *Engine) {
		e.imports = modules
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// New creates an engine whose shell table calls into host.
func New(host Host, opts ...Option) (*Engine, error) {
	e := &Engine{
		host: host,
		log:  logger.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.init(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) init() error {
	L := lua.NewState()
	e.installBindings(L)

	e.builtin = make(map[string]bool)
	for _, name := range sortedGlobals(L, nil) {
		e.builtin[name] = true
	}

	for _, module := range e.imports {
		if err := requireModule(L, module); err != nil {
			L.Close()
			return fmt.Errorf("couldn't import %q: %w", module, err)
		}
	}

	e.state = L
	return nil
}

func requireModule(L *lua.LState, module string) error {
	if err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal("require"),
		NRet:    1,
		Protect: true,
	}, lua.LString(module)); err != nil {
		return err
	}
	ret := L.Get(-1)
	L.Pop(1)
	if ret != lua.LNil && ret != lua.LTrue {
		name := module
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
		L.SetGlobal(name, ret)
	}
	return nil
}

// Close releases the Lua state.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Close()
	return nil
}

// Reset discards every binding by starting a fresh state.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.Close()
	e.log.Debug("lua state reset")
	return e.init()
}

// Globals lists the names of globals defined by user code.
func (e *Engine) Globals() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return sortedGlobals(e.state, e.builtin)
}

// Submit compiles and runs code. dir is added to the module search path for
// #r directives.
func (e *Engine) Submit(ctx context.Context, code, dir string) (interface{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	code, err := e.references(code, dir)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}

	fn, err := e.compile(code)
	if err != nil {
		return nil, err
	}
	return e.call(ctx, fn)
}

// references requires the modules named by #r lines and removes them.
func (e *Engine) references(code, dir string) (string, error) {
	var kept []string
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, preprocess.ReferencePrefix) {
			kept = append(kept, line)
			continue
		}

		module := strings.Trim(strings.TrimSpace(strings.TrimPrefix(trimmed, preprocess.ReferencePrefix)), `"'`)
		if strings.HasSuffix(module, ".lua") {
			path := module
			if !filepath.IsAbs(path) {
				path = filepath.Join(dir, path)
			}
			e.addSearchPath(filepath.Dir(path))
			module = strings.TrimSuffix(filepath.Base(path), ".lua")
		} else {
			e.addSearchPath(dir)
		}

		e.log.Debug("requiring reference", "module", module)
		if err := requireModule(e.state, module); err != nil {
			return "", err
		}
		// Keep line numbers stable for diagnostics.
		kept = append(kept, "")
	}
	return strings.Join(kept, "\n"), nil
}

func (e *Engine) addSearchPath(dir string) {
	pkg, ok := e.state.GetGlobal("package").(*lua.LTable)
	if !ok {
		return
	}
	entry := filepath.Join(dir, "?.lua")
	current := lua.LVAsString(pkg.RawGetString("path"))
	if strings.Contains(current, entry) {
		return
	}
	pkg.RawSetString("path", lua.LString(entry+";"+current))
}

// compile prefers treating code as an expression so its value can be shown.
// Code ending in a terminator that only compiles as an expression is
// reported as an unused expression result.
func (e *Engine) compile(code string) (*lua.LFunction, error) {
	trimmed := strings.TrimSpace(code)

	if !strings.HasSuffix(trimmed, ";") {
		if fn, err := e.state.LoadString("return " + trimmed); err == nil {
			return fn, nil
		}
		fn, err := e.state.LoadString(code)
		if err != nil {
			return nil, compilationFailure(runner.CodeUnknown, err)
		}
		return fn, nil
	}

	fn, err := e.state.LoadString(code)
	if err == nil {
		return fn, nil
	}
	if _, exprErr := e.state.LoadString("return " + strings.TrimSuffix(trimmed, ";")); exprErr == nil {
		return nil, compilationFailure(runner.CodeExpressionResultUnused, err)
	}
	return nil, compilationFailure(runner.CodeUnknown, err)
}

func compilationFailure(code runner.DiagnosticCode, err error) error {
	return &runner.CompilationFailure{Diagnostics: []runner.Diagnostic{{
		Severity: runner.SeverityError,
		Code:     code,
		Message:  err.Error(),
	}}}
}

// call runs fn and converts what it returns.
func (e *Engine) call(ctx context.Context, fn *lua.LFunction) (interface{}, error) {
	L := e.state
	L.SetContext(ctx)
	defer L.RemoveContext()

	base := L.GetTop()
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		L.SetTop(base)
		return nil, e.runtimeError(ctx, err)
	}

	n := L.GetTop() - base
	defer L.Pop(n)

	switch n {
	case 0:
		return nil, nil
	case 1:
		return toGo(L.Get(-1)), nil
	default:
		out := make([]interface{}, 0, n)
		for i := base + 1; i <= base+n; i++ {
			out = append(out, toGo(L.Get(i)))
		}
		return out, nil
	}
}

func (e *Engine) runtimeError(ctx context.Context, err error) error {
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) {
		if hostErr := hostError(apiErr.Object); hostErr != nil {
			return hostErr
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if apiErr != nil && apiErr.Object != nil {
		return errors.New(apiErr.Object.String())
	}
	return err
}

// CompileAndLoad runs a standalone Lua unit. A table it returns is bound to
// the global name.
func (e *Engine) CompileAndLoad(ctx context.Context, name, source string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	chunk, err := parse.Parse(strings.NewReader(source), name)
	if err != nil {
		return compilationFailure(runner.CodeUnknown, err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return compilationFailure(runner.CodeUnknown, err)
	}

	L := e.state
	L.SetContext(ctx)
	defer L.RemoveContext()

	L.Push(L.NewFunctionFromProto(proto))
	if err := L.PCall(0, 1, nil); err != nil {
		return e.runtimeError(ctx, err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	if tbl, ok := ret.(*lua.LTable); ok {
		L.SetGlobal(name, tbl)
		if loaded, ok := L.GetField(L.Get(lua.RegistryIndex), "_LOADED").(*lua.LTable); ok {
			loaded.RawSetString(name, tbl)
		}
	}
	e.log.Debug("loaded unit", "name", name)
	return nil
}
