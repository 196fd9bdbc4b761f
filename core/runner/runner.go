// Package runner submits preprocessed code to an execution engine, recovers
// from the two punctuation mistakes engines report, and drains the snippets
// submissions defer.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/josephlewis42/hybridsh/core/lang"
	"github.com/josephlewis42/hybridsh/core/logger"
	"github.com/josephlewis42/hybridsh/core/preprocess"
	"github.com/spf13/afero"
)

// Engine runs code in a persistent binding environment.
type Engine interface {
	// Submit runs code with dir as the working directory. Compile errors are
	// reported as *CompilationFailure.
	Submit(ctx context.Context, code, dir string) (interface{}, error)
	// Reset discards every binding.
	Reset(ctx context.Context) error
}

// Compiler compiles a standalone source unit and makes it available to later
// submissions.
type Compiler interface {
	CompileAndLoad(ctx context.Context, name, source string) error
}

// Formatter renders a result for display.
type Formatter interface {
	Format(value interface{}) string
}

// FormatterFunc adapts a function to a Formatter.
type FormatterFunc func(value interface{}) string

func (f FormatterFunc) Format(value interface{}) string { return f(value) }

// ProcessHandle is the result of running an external command. Its output has
// already been shown so it is never displayed.
type ProcessHandle interface {
	ExitCode() int
}

// Loader queues the contents of a script file.
type Loader interface {
	Load(path string) error
}

// Workspace knows the session's working directory.
type Workspace interface {
	Getwd() string
}

// Preprocessor turns mixed input into final code.
type Preprocessor interface {
	Process(script string) (string, error)
	Dialect() lang.Dialect
}

// Attempt is one pass through the runner.
type Attempt struct {
	Code string
	// Depth is 0 for a submission and 1 for its punctuation-corrected retry.
	Depth int
	// Preprocess is false for code that is already final.
	Preprocess bool
}

// Runner drives submissions for one session. Submissions are serialized.
type Runner struct {
	mu sync.Mutex

	pre       Preprocessor
	engine    Engine
	queue     *Queue
	compiler  Compiler
	loader    Loader
	workspace Workspace
	fs        afero.Fs
	formatter Formatter
	out       io.Writer
	log       *slog.Logger
}

type Option func(*Runner)

// WithQueue shares a deferred snippet queue, usually with the host runtime.
func WithQueue(q *Queue) Option {
	return func(r *Runner) {
		r.queue = q
	}
}

// WithCompiler enables loading compiled-source files.
func WithCompiler(c Compiler) Option {
	return func(r *Runner) {
		r.compiler = c
	}
}

// WithLoader sets how ExecuteFile reads scripts.
func WithLoader(l Loader) Option {
	return func(r *Runner) {
		r.loader = l
	}
}

func WithWorkspace(w Workspace) Option {
	return func(r *Runner) {
		r.workspace = w
	}
}

// WithFs sets the filesystem compiled-source files are read from.
func WithFs(fs afero.Fs) Option {
	return func(r *Runner) {
		r.fs = fs
	}
}

func WithFormatter(f Formatter) Option {
	return func(r *Runner) {
		r.formatter = f
	}
}

// WithOutput sets where results are displayed.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.out = w
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(r *Runner) {
		r.log = log
	}
}

type processWorkspace struct{}

func (processWorkspace) Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "/"
	}
	return wd
}

// New creates a runner.
func New(pre Preprocessor, engine Engine, opts ...Option) *Runner {
	r := &Runner{
		pre:       pre,
		engine:    engine,
		queue:     NewQueue(),
		workspace: processWorkspace{},
		fs:        afero.NewOsFs(),
		formatter: FormatterFunc(func(v interface{}) string { return fmt.Sprint(v) }),
		out:       os.Stdout,
		log:       logger.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Queue returns the deferred snippet queue.
func (r *Runner) Queue() *Queue { return r.queue }

// Process runs the preprocessor only.
func (r *Runner) Process(script string) (string, error) {
	return r.pre.Process(script)
}

// Execute preprocesses and runs line, then drains the queue.
func (r *Runner) Execute(ctx context.Context, line string) error {
	return r.Run(ctx, Attempt{Code: line, Preprocess: true})
}

// ExecuteFile loads a script through the loader and drains the queue.
func (r *Runner) ExecuteFile(ctx context.Context, path string) error {
	if r.loader == nil {
		return errors.New("no script loader configured")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.loader.Load(path); err != nil {
		return fmt.Errorf("couldn't load %q: %w", path, err)
	}
	return r.drain(ctx)
}

// Run executes one attempt. Attempts at depth 0 drain the queue afterwards.
func (r *Runner) Run(ctx context.Context, a Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.attempt(ctx, a); err != nil {
		return err
	}
	if a.Depth > 0 {
		return nil
	}
	return r.drain(ctx)
}

func (r *Runner) attempt(ctx context.Context, a Attempt) error {
	code := a.Code
	if a.Preprocess {
		if unit, ok := r.compiledSource(code); ok {
			return r.compileAndLoad(ctx, unit)
		}

		final, err := r.pre.Process(code)
		if err != nil {
			return err
		}
		code = final
	}

	switch strings.TrimSpace(code) {
	case "":
		return nil
	case preprocess.ResetToken:
		return r.reset(ctx)
	}

	result, err := r.engine.Submit(ctx, code, r.workspace.Getwd())
	if err != nil {
		retry, ok := r.retryFor(a, code, err)
		if !ok {
			return err
		}
		r.log.Debug("retrying submission", "depth", retry.Depth, "error", err)
		return r.attempt(ctx, retry)
	}

	r.display(result)
	return nil
}

// retryFor decides whether a failed attempt gets its one punctuation retry.
func (r *Runner) retryFor(a Attempt, code string, err error) (Attempt, bool) {
	var failure *CompilationFailure
	if a.Depth > 0 || !errors.As(err, &failure) {
		return Attempt{}, false
	}

	terminator := r.pre.Dialect().Terminator()
	code = strings.TrimRight(code, " \t\r\n")

	switch {
	case failure.Has(CodeMissingTerminator):
		code += terminator
	case failure.Has(CodeExpressionResultUnused) && strings.HasSuffix(code, terminator):
		code = strings.TrimSuffix(code, terminator)
	default:
		return Attempt{}, false
	}

	return Attempt{Code: code, Depth: a.Depth + 1}, true
}

func (r *Runner) drain(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		code, ok := r.queue.Dequeue()
		if !ok {
			return nil
		}

		r.log.Debug("draining deferred snippet", "remaining", r.queue.Len())
		if err := r.attempt(ctx, Attempt{Code: code}); err != nil {
			r.queue.Clear()
			return err
		}
	}
}

func (r *Runner) reset(ctx context.Context) error {
	r.log.Debug("resetting engine")
	r.queue.Clear()
	return r.engine.Reset(ctx)
}

func (r *Runner) display(result interface{}) {
	if result == nil {
		return
	}
	if _, ok := result.(ProcessHandle); ok {
		return
	}
	fmt.Fprintln(r.out, r.formatter.Format(result))
}

// compiledSource reports whether code is a single load directive naming a
// standalone unit for the compiler rather than a script.
func (r *Runner) compiledSource(code string) (string, bool) {
	if r.compiler == nil || strings.Contains(strings.TrimSpace(code), "\n") {
		return "", false
	}
	unit, ok := preprocess.ParseLoadDirective(code)
	if !ok || !strings.EqualFold(filepath.Ext(unit), r.pre.Dialect().CompiledSourceExt()) {
		return "", false
	}
	return unit, true
}

func (r *Runner) compileAndLoad(ctx context.Context, unit string) error {
	if !filepath.IsAbs(unit) {
		unit = filepath.Join(r.workspace.Getwd(), unit)
	}

	source, err := afero.ReadFile(r.fs, unit)
	if err != nil {
		return err
	}

	r.log.Debug("compiling unit", "path", unit)
	name := strings.TrimSuffix(filepath.Base(unit), filepath.Ext(unit))
	return r.compiler.CompileAndLoad(ctx, name, string(source))
}
