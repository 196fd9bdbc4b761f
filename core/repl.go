package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/abiosoft/readline"
	"github.com/josephlewis42/hybridsh/core/runner"
	"github.com/josephlewis42/hybridsh/core/ttylog"
)

const (
	DefaultPrompt             = "hybridsh> "
	DefaultContinuationPrompt = "... "
)

// REPLOptions configure the interactive loop.
type REPLOptions struct {
	// IsTerminal reports whether the input is a terminal.
	IsTerminal func() bool
	// Recorder, if set, receives every line typed. Output is recorded by
	// passing streams from Recorder.Writer.
	Recorder *ttylog.Recorder
}

// REPL reads mixed input a line at a time and runs it in a session.
type REPL struct {
	session  *Session
	readline *readline.Instance
	recorder *ttylog.Recorder
	history  io.WriteCloser
	stderr   io.Writer
}

// NewREPL creates the interactive loop for s. The session's streams must be
// the ones readline is attached to.
func NewREPL(s *Session, sio IO, opts REPLOptions) (*REPL, error) {
	cfg := &readline.Config{
		Stdin:                  readline.NewCancelableStdin(sio.Stdin),
		Stdout:                 sio.Stdout,
		Stderr:                 sio.Stderr,
		AutoComplete:           &completer{session: s},
		DisableAutoSaveHistory: true,
		FuncIsTerminal:         opts.IsTerminal,
	}
	if err := cfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}

	repl := &REPL{
		session:  s,
		readline: rl,
		recorder: opts.Recorder,
		stderr:   sio.Stderr,
	}
	if err := repl.loadHistory(); err != nil {
		s.log.Warn("couldn't load history", "error", err)
	}
	return repl, nil
}

func (r *REPL) loadHistory() error {
	lines, err := r.session.Config.ReadHistory()
	if err != nil {
		return err
	}
	for _, line := range lines {
		r.readline.SaveHistory(line)
	}

	fd, ok, err := r.session.Config.OpenHistory()
	if err != nil || !ok {
		return err
	}
	r.history = fd
	return nil
}

func (r *REPL) saveHistory(entry string) {
	for _, line := range strings.Split(entry, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		r.readline.SaveHistory(line)
		if r.history != nil {
			if _, err := fmt.Fprintln(r.history, line); err != nil {
				r.session.log.Warn("couldn't save history", "error", err)
			}
		}
	}
}

func (r *REPL) prompt(continuation bool) string {
	cfg := r.session.Config
	if continuation {
		if cfg.ContinuationPrompt != "" {
			return cfg.ContinuationPrompt
		}
		return DefaultContinuationPrompt
	}
	if cfg.Prompt != "" {
		return r.session.Printer.Prompt(cfg.Prompt)
	}
	return r.session.Printer.Prompt(DefaultPrompt)
}

// Run reads and executes input until end of input or an exit.
func (r *REPL) Run(ctx context.Context) error {
	var pending []string
	for {
		r.readline.SetPrompt(r.prompt(len(pending) > 0))
		line, err := r.readline.Readline()

		switch {
		case err == io.EOF:
			return nil // Input closed, quit.

		case err == readline.ErrInterrupt:
			pending = nil
			continue

		case err != nil:
			return err
		}

		if r.recorder != nil {
			r.recorder.RecordInput(line)
		}

		pending = append(pending, line)
		input := strings.Join(pending, "\n")
		if r.session.Pipeline.Incomplete(input) {
			continue
		}
		pending = nil

		if strings.TrimSpace(input) == "" {
			continue // empty line
		}
		r.saveHistory(input)

		err = r.session.Execute(ctx, input)
		switch {
		case errors.Is(err, runner.ErrExit):
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			fmt.Fprintln(r.stderr, r.session.Printer.Error(err))
		}
	}
}

func (r *REPL) Close() error {
	var toClose listCloser
	if r.history != nil {
		toClose = append(toClose, r.history)
	}
	toClose = append(toClose, r.readline)
	return toClose.Close()
}

// completer completes the identifier before the cursor.
type completer struct {
	session *Session
}

var _ readline.AutoCompleter = (*completer)(nil)

func (c *completer) Do(line []rune, pos int) ([][]rune, int) {
	start := pos
	for start > 0 && isIdentRune(line[start-1]) {
		start--
	}
	prefix := string(line[start:pos])
	if prefix == "" {
		return nil, 0
	}

	var out [][]rune
	seen := make(map[string]bool)
	for _, name := range c.session.Completions() {
		if seen[name] || !strings.HasPrefix(name, prefix) || name == prefix {
			continue
		}
		seen[name] = true
		out = append(out, []rune(strings.TrimPrefix(name, prefix)))
	}
	return out, len([]rune(prefix))
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
