// Package shellrt is the host runtime generated code calls into: it runs and
// captures external commands, changes directory, and loads scripts.
package shellrt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/anmitsu/go-shlex"
	"github.com/josephlewis42/hybridsh/core/logger"
	"github.com/josephlewis42/hybridsh/core/runner"
	"github.com/pborman/getopt/v2"
	"github.com/spf13/afero"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

const (
	EnvHome   = "HOME"
	EnvPwd    = "PWD"
	EnvOldPwd = "OLDPWD"
)

// clearScreen moves the cursor home and erases the display.
const clearScreen = "\033[H\033[2J"

// Preprocessor turns a loaded script into final code.
type Preprocessor interface {
	Process(script string) (string, error)
}

// Runtime is the state shared by every command of one session.
type Runtime struct {
	mu  sync.Mutex
	dir string

	env    *Env
	fs     afero.Fs
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	pre    Preprocessor
	queue  *runner.Queue
	log    *slog.Logger
}

type Option func(*Runtime)

// WithFs sets the filesystem cd and load resolve paths against.
func WithFs(fs afero.Fs) Option {
	return func(r *Runtime) {
		r.fs = fs
	}
}

// WithStdio sets the streams external commands are attached to.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(r *Runtime) {
		r.stdin, r.stdout, r.stderr = stdin, stdout, stderr
	}
}

// WithEnv sets the environment commands run with.
func WithEnv(env *Env) Option {
	return func(r *Runtime) {
		r.env = env
	}
}

// WithDir sets the initial working directory.
func WithDir(dir string) Option {
	return func(r *Runtime) {
		r.dir = dir
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(r *Runtime) {
		r.log = log
	}
}

// New creates a runtime that queues loaded scripts on queue after running
// them through pre.
func New(pre Preprocessor, queue *runner.Queue, opts ...Option) *Runtime {
	r := &Runtime{
		env:    NewEnvFromList(os.Environ()),
		fs:     afero.NewOsFs(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		pre:    pre,
		queue:  queue,
		log:    logger.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.dir == "" {
		if wd, err := os.Getwd(); err == nil {
			r.dir = wd
		} else {
			r.dir = "/"
		}
	}
	r.env.Setenv(EnvPwd, r.dir)
	return r
}

// Env returns the environment commands run with.
func (r *Runtime) Env() *Env { return r.env }

// Getwd returns the working directory.
func (r *Runtime) Getwd() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dir
}

// Exec runs command with its output going to the terminal. A non-zero exit
// status is reported in the Process, not as an error.
func (r *Runtime) Exec(ctx context.Context, command string) (*Process, error) {
	status, err := r.run(ctx, command, r.stdout)
	if err != nil {
		return nil, err
	}
	if status != 0 {
		r.log.Debug("command failed", "command", command, "status", status)
	}
	return &Process{Command: command, Status: status}, nil
}

// Capture runs command and returns its standard output without trailing
// newlines.
func (r *Runtime) Capture(ctx context.Context, command string) (string, error) {
	var out bytes.Buffer
	if _, err := r.run(ctx, command, &out); err != nil {
		return "", err
	}
	return strings.TrimRight(out.String(), "\r\n"), nil
}

func (r *Runtime) run(ctx context.Context, command string, stdout io.Writer) (int, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return 0, fmt.Errorf("couldn't parse command %q: %w", command, err)
	}

	shell, err := interp.New(
		interp.Dir(r.Getwd()),
		interp.Env(expand.ListEnviron(r.env.Environ()...)),
		interp.StdIO(r.stdin, stdout, r.stderr),
	)
	if err != nil {
		return 0, err
	}

	err = shell.Run(ctx, file)
	if status, ok := interp.IsExitStatus(err); ok {
		return int(status), nil
	}
	return 0, err
}

// Cd changes the working directory. arg is everything after "cd" and may
// hold -L or -P, "-" for the previous directory, or nothing for $HOME.
func (r *Runtime) Cd(arg string) error {
	args, err := shlex.Split(arg, true)
	if err != nil {
		return fmt.Errorf("cd: %w", err)
	}

	opts := getopt.New()
	opts.SetProgram("cd")
	opts.Bool('L', "follow symbolic links (default)")
	physical := opts.Bool('P', "resolve symbolic links")
	if err := opts.Getopt(append([]string{"cd"}, args...), nil); err != nil {
		return fmt.Errorf("cd: %w", err)
	}

	var target string
	switch rest := opts.Args(); len(rest) {
	case 0:
		target = r.env.Getenv(EnvHome)
		if target == "" {
			return errors.New("cd: HOME not set")
		}
	case 1:
		target = rest[0]
	default:
		return errors.New("cd: too many arguments")
	}

	if target == "-" {
		target = r.env.Getenv(EnvOldPwd)
		if target == "" {
			return errors.New("cd: OLDPWD not set")
		}
	}

	target = r.resolve(target)
	info, err := r.fs.Stat(target)
	if err != nil {
		return fmt.Errorf("cd: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cd: %s: not a directory", target)
	}

	if _, ok := r.fs.(*afero.OsFs); ok && *physical {
		if resolved, err := filepath.EvalSymlinks(target); err == nil {
			target = resolved
		}
	}

	r.mu.Lock()
	old := r.dir
	r.dir = target
	r.mu.Unlock()

	r.env.Setenv(EnvOldPwd, old)
	r.env.Setenv(EnvPwd, target)
	r.log.Debug("changed directory", "from", old, "to", target)
	return nil
}

// resolve expands environment variables and a leading ~ and makes path
// absolute.
func (r *Runtime) resolve(path string) string {
	path = r.env.ExpandEnv(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		path = r.env.Getenv(EnvHome) + path[1:]
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.Getwd(), path)
	}
	return filepath.Clean(path)
}

// Load preprocesses the script at path and defers it until the current
// submission finishes.
func (r *Runtime) Load(path string) error {
	resolved := r.resolve(path)
	script, err := afero.ReadFile(r.fs, resolved)
	if err != nil {
		return err
	}

	code, err := r.pre.Process(string(script))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	r.log.Debug("queued script", "path", resolved)
	r.queue.Enqueue(code)
	return nil
}

// Cls clears the terminal.
func (r *Runtime) Cls() {
	fmt.Fprint(r.stdout, clearScreen)
}

// Exit ends the session.
func (r *Runtime) Exit() error {
	return runner.ErrExit
}
