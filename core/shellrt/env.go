package shellrt

import (
	"os"
	"sort"
	"strings"
	"sync"
)

// Env is the environment external commands run with. It is kept separate
// from the process environment so cd and scripts can change it freely.
type Env struct {
	rw  sync.RWMutex
	env map[string]string
}

// NewEnv creates an empty environment.
func NewEnv() *Env {
	return &Env{}
}

// NewEnvFromList creates an environment from key=value pairs. Entries
// without "=" are set to the empty string.
func NewEnvFromList(environ []string) *Env {
	out := NewEnv()
	for _, e := range environ {
		key, value, _ := strings.Cut(e, "=")
		out.Setenv(key, value)
	}
	return out
}

func (e *Env) Setenv(key, value string) {
	e.rw.Lock()
	defer e.rw.Unlock()

	if e.env == nil {
		e.env = make(map[string]string)
	}
	e.env[key] = value
}

func (e *Env) Unsetenv(key string) {
	e.rw.Lock()
	defer e.rw.Unlock()
	delete(e.env, key)
}

// LookupEnv retrieves a variable, ok is false if it isn't set.
func (e *Env) LookupEnv(key string) (string, bool) {
	e.rw.RLock()
	defer e.rw.RUnlock()

	val, ok := e.env[key]
	return val, ok
}

// Getenv retrieves a variable, unset variables are empty.
func (e *Env) Getenv(key string) string {
	val, _ := e.LookupEnv(key)
	return val
}

// ExpandEnv replaces $var and ${var} with their values.
func (e *Env) ExpandEnv(s string) string {
	return os.Expand(s, e.Getenv)
}

// Environ returns the environment as sorted key=value pairs.
func (e *Env) Environ() []string {
	e.rw.RLock()
	defer e.rw.RUnlock()

	env := make([]string, 0, len(e.env))
	for k, v := range e.env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}
