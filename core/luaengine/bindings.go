package luaengine

import (
	"context"

	"github.com/josephlewis42/hybridsh/core/shellrt"
	lua "github.com/yuin/gopher-lua"
)

const (
	shellTable      = "shell"
	processTypeName = "process"
)

// Host is what the shell table calls into.
type Host interface {
	Exec(ctx context.Context, command string) (*shellrt.Process, error)
	Capture(ctx context.Context, command string) (string, error)
	Cd(arg string) error
	Load(path string) error
	Cls()
	Getwd() string
	Exit() error
	Env() *shellrt.Env
}

func contextOf(L *lua.LState) context.Context {
	if ctx := L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func (e *Engine) installBindings(L *lua.LState) {
	mt := L.NewTypeMetatable(processTypeName)
	L.SetField(mt, "__index", L.NewFunction(processIndex))
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(checkProcess(L).String()))
		return 1
	}))

	shell := L.NewTable()
	L.SetFuncs(shell, map[string]lua.LGFunction{
		"exec": func(L *lua.LState) int {
			proc, err := e.host.Exec(contextOf(L), L.CheckString(1))
			if err != nil {
				L.RaiseError("%s", err.Error())
			}
			ud := L.NewUserData()
			ud.Value = proc
			L.SetMetatable(ud, L.GetTypeMetatable(processTypeName))
			L.Push(ud)
			return 1
		},
		"capture": func(L *lua.LState) int {
			out, err := e.host.Capture(contextOf(L), L.CheckString(1))
			if err != nil {
				L.RaiseError("%s", err.Error())
			}
			L.Push(lua.LString(out))
			return 1
		},
		"cd": func(L *lua.LState) int {
			if err := e.host.Cd(L.OptString(1, "")); err != nil {
				L.RaiseError("%s", err.Error())
			}
			return 0
		},
		"load": func(L *lua.LState) int {
			if err := e.host.Load(L.CheckString(1)); err != nil {
				L.RaiseError("%s", err.Error())
			}
			return 0
		},
		"cls": func(L *lua.LState) int {
			e.host.Cls()
			return 0
		},
		"getwd": func(L *lua.LState) int {
			L.Push(lua.LString(e.host.Getwd()))
			return 1
		},
		"getenv": func(L *lua.LState) int {
			value, ok := e.host.Env().LookupEnv(L.CheckString(1))
			if !ok {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(lua.LString(value))
			return 1
		},
		"setenv": func(L *lua.LState) int {
			e.host.Env().Setenv(L.CheckString(1), L.CheckString(2))
			return 0
		},
		"unsetenv": func(L *lua.LState) int {
			e.host.Env().Unsetenv(L.CheckString(1))
			return 0
		},
		"exit": func(L *lua.LState) int {
			if err := e.host.Exit(); err != nil {
				raiseHostError(L, err)
			}
			return 0
		},
	})
	L.SetGlobal(shellTable, shell)
}

// raiseHostError raises err as a Lua error whose value still carries err, so
// it survives the trip back through PCall.
func raiseHostError(L *lua.LState, err error) {
	ud := L.NewUserData()
	ud.Value = err
	L.Error(ud, 1)
}

// hostError returns the error raised by raiseHostError, nil if value isn't
// one.
func hostError(value lua.LValue) error {
	ud, ok := value.(*lua.LUserData)
	if !ok {
		return nil
	}
	err, _ := ud.Value.(error)
	return err
}

func checkProcess(L *lua.LState) *shellrt.Process {
	ud := L.CheckUserData(1)
	if proc, ok := ud.Value.(*shellrt.Process); ok {
		return proc
	}
	L.ArgError(1, "process expected")
	return nil
}

// processIndex exposes status and command on process values.
func processIndex(L *lua.LState) int {
	proc := checkProcess(L)
	switch L.CheckString(2) {
	case "status":
		L.Push(lua.LNumber(proc.Status))
	case "command":
		L.Push(lua.LString(proc.Command))
	default:
		L.Push(lua.LNil)
	}
	return 1
}
