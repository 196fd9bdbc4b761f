// Package core assembles a hybridsh session from its configuration and runs
// the interactive loop.
package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/josephlewis42/hybridsh/core/config"
	"github.com/josephlewis42/hybridsh/core/display"
	"github.com/josephlewis42/hybridsh/core/lang"
	_ "github.com/josephlewis42/hybridsh/core/lang/csharp"
	"github.com/josephlewis42/hybridsh/core/lang/lua"
	"github.com/josephlewis42/hybridsh/core/logger"
	"github.com/josephlewis42/hybridsh/core/luaengine"
	"github.com/josephlewis42/hybridsh/core/preprocess"
	"github.com/josephlewis42/hybridsh/core/runner"
	"github.com/josephlewis42/hybridsh/core/shellrt"
	"github.com/spf13/afero"
)

// IO holds the streams a session is attached to.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// StdIO attaches to the process's streams.
func StdIO() IO {
	return IO{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Options change how a session is built.
type Options struct {
	IO IO
	// Dialect overrides the configured dialect when set.
	Dialect string
	// DryRun prints final code instead of running it.
	DryRun bool
	// Color enables colored result formatting.
	Color bool
	// Fs is the filesystem scripts are loaded from, the OS by default.
	Fs     afero.Fs
	Logger *slog.Logger
}

// Session is one preprocessor, runtime, engine and runner wired together.
type Session struct {
	Config   *config.Configuration
	Dialect  lang.Dialect
	Pipeline *preprocess.Pipeline
	Runtime  *shellrt.Runtime
	Runner   *runner.Runner
	Printer  *display.Printer

	// Engine is set when the session runs Lua in process.
	Engine *luaengine.Engine

	log     *slog.Logger
	toClose listCloser
}

// NewSession builds a session for cfg.
func NewSession(cfg *config.Configuration, opts Options) (*Session, error) {
	if opts.IO.Stdin == nil {
		opts.IO = StdIO()
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	name := cfg.Dialect
	if opts.Dialect != "" {
		name = opts.Dialect
	}
	base, err := lang.Lookup(name)
	if err != nil {
		return nil, err
	}
	dialect := lang.WithKeywords(base, cfg.ExtraKeywords...)

	s := &Session{
		Config:   cfg,
		Dialect:  dialect,
		Pipeline: preprocess.New(dialect, preprocess.WithLogger(opts.Logger)),
		Printer:  display.NewPrinter(opts.Color),
		log:      opts.Logger,
	}

	env := shellrt.NewEnv()
	if cfg.Shell.InheritEnv {
		env = shellrt.NewEnvFromList(os.Environ())
	}

	queue := runner.NewQueue()
	s.Runtime = shellrt.New(s.Pipeline, queue,
		shellrt.WithFs(opts.Fs),
		shellrt.WithEnv(env),
		shellrt.WithStdio(opts.IO.Stdin, opts.IO.Stdout, opts.IO.Stderr),
		shellrt.WithLogger(opts.Logger),
	)

	runnerOpts := []runner.Option{
		runner.WithQueue(queue),
		runner.WithLoader(s.Runtime),
		runner.WithWorkspace(s.Runtime),
		runner.WithFs(opts.Fs),
		runner.WithFormatter(s.Printer),
		runner.WithOutput(opts.IO.Stdout),
		runner.WithLogger(opts.Logger),
	}

	var engine runner.Engine
	switch {
	case opts.DryRun || dialect.Name() != lua.Name:
		engine = &printEngine{out: opts.IO.Stdout}
	default:
		s.Engine, err = luaengine.New(s.Runtime,
			luaengine.WithImports(cfg.Imports...),
			luaengine.WithLogger(opts.Logger),
		)
		if err != nil {
			return nil, err
		}
		s.toClose = append(s.toClose, s.Engine)
		engine = s.Engine
		runnerOpts = append(runnerOpts, runner.WithCompiler(s.Engine))
	}

	s.Runner = runner.New(s.Pipeline, engine, runnerOpts...)
	opts.Logger.Debug("session ready", "dialect", dialect.Name(), "dry_run", s.Engine == nil)
	return s, nil
}

// Execute runs one line or block of mixed input.
func (s *Session) Execute(ctx context.Context, input string) error {
	return s.Runner.Execute(ctx, input)
}

// ExecuteFile runs a script file.
func (s *Session) ExecuteFile(ctx context.Context, path string) error {
	return s.Runner.ExecuteFile(ctx, path)
}

// Completions lists names worth completing: globals the user defined and the
// dialect's keywords.
func (s *Session) Completions() []string {
	var out []string
	if s.Engine != nil {
		out = append(out, s.Engine.Globals()...)
	}
	return append(out, s.Dialect.ReservedKeywords()...)
}

func (s *Session) Close() error {
	return s.toClose.Close()
}

// printEngine writes final code instead of running it. It backs dialects
// without an in-process engine.
type printEngine struct {
	out io.Writer
}

var _ runner.Engine = (*printEngine)(nil)

func (p *printEngine) Submit(_ context.Context, code, _ string) (interface{}, error) {
	_, err := fmt.Fprintln(p.out, code)
	return nil, err
}

func (p *printEngine) Reset(context.Context) error {
	_, err := fmt.Fprintln(p.out, preprocess.ResetToken)
	return err
}

type listCloser []io.Closer

func (lc listCloser) Close() error {
	var lastErr error
	for _, v := range lc {
		if err := v.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}
