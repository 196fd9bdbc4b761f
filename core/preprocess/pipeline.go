// Package preprocess turns text that mixes shell commands with host-language
// statements into plain host-language source.
//
// The pipeline runs four passes over the whole buffer:
//
//  1. meta substitution replaces each recognized shell construct with a
//     marker line,
//  2. comment stripping removes every comment the dialect's lexer finds,
//  3. the dialect reformats the buffer,
//  4. meta decode expands each marker line into host code.
//
// Markers carry their payload hex encoded so passes 2 and 3 never see the
// quotes, comment starters or newlines of the original construct.
package preprocess

import (
	"log/slog"
	"strings"

	"github.com/josephlewis42/hybridsh/core/lang"
	"github.com/josephlewis42/hybridsh/core/logger"
)

// Pipeline is the preprocessor for one dialect. It holds no per-call state
// and is safe to share.
type Pipeline struct {
	dialect lang.Dialect
	lines   []LineMatcher
	blocks  []BlockMatcher
	log     *slog.Logger
}

type Option func(*Pipeline)

// WithLogger sets the logger matcher activity is reported to.
func WithLogger(log *slog.Logger) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}

// WithLineMatchers replaces the default line matchers, order is precedence.
func WithLineMatchers(matchers ...LineMatcher) Option {
	return func(p *Pipeline) {
		p.lines = matchers
	}
}

// WithBlockMatchers replaces the default block matchers.
func WithBlockMatchers(matchers ...BlockMatcher) Option {
	return func(p *Pipeline) {
		p.blocks = matchers
	}
}

// New creates a pipeline that emits code for d.
func New(d lang.Dialect, opts ...Option) *Pipeline {
	p := &Pipeline{
		dialect: d,
		lines:   DefaultLineMatchers(d),
		blocks:  DefaultBlockMatchers(d),
		log:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) Dialect() lang.Dialect { return p.dialect }

func (p *Pipeline) LineMatchers() []LineMatcher { return p.lines }

func (p *Pipeline) BlockMatchers() []BlockMatcher { return p.blocks }

// Process runs every pass over script and returns the final source.
func (p *Pipeline) Process(script string) (string, error) {
	buffer := strings.ReplaceAll(script, "\r\n", "\n")

	buffer, err := p.substitute(buffer)
	if err != nil {
		return "", err
	}
	buffer = p.stripComments(buffer)
	buffer = p.dialect.Reformat(buffer)
	buffer, err = p.decode(buffer)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(buffer), nil
}

// Incomplete reports whether script ends inside a block, meaning more lines
// are needed before it can be processed.
func (p *Pipeline) Incomplete(script string) bool {
	var open BlockMatcher
	for _, line := range strings.Split(strings.ReplaceAll(script, "\r\n", "\n"), "\n") {
		if open != nil {
			if open.IsEnd(line) {
				open = nil
			}
			continue
		}
		for _, b := range p.blocks {
			if b.IsStart(line) {
				open = b
				break
			}
		}
	}
	return open != nil
}

type openBlock struct {
	matcher BlockMatcher
	start   int
	lines   []string
}

// insideBlockComment reports whether a block comment opened in the given
// lines is still open after them.
func (p *Pipeline) insideBlockComment(lines []string) bool {
	if len(lines) == 0 {
		return false
	}
	prefix := strings.Join(lines, "\n") + "\n"
	for _, c := range p.dialect.Comments(prefix) {
		if c.Kind == lang.BlockComment && c.End() >= len(prefix) {
			return true
		}
	}
	return false
}

// cutLineComment removes a single-line comment from line. Block comment
// openers on the line are left for the matchers to see.
func (p *Pipeline) cutLineComment(line string) string {
	for _, c := range p.dialect.Comments(line) {
		if c.Kind == lang.LineComment {
			return strings.TrimRight(line[:c.Offset], " \t")
		}
	}
	return line
}

// opensWithBlockComment reports whether the first thing on line is a block
// comment.
func (p *Pipeline) opensWithBlockComment(line string) bool {
	indent := len(line) - len(strings.TrimLeft(line, " \t"))
	comments := p.dialect.Comments(line)
	return len(comments) > 0 && comments[0].Kind == lang.BlockComment && comments[0].Offset == indent
}

func (p *Pipeline) substitute(buffer string) (string, error) {
	lines := strings.Split(buffer, "\n")

	var out []string
	var open *openBlock
	// scanFrom is the first output line a host block comment could still
	// be open from.
	scanFrom := 0
	for i, line := range lines {
		lineNo := i + 1
		if open == nil {
			if p.insideBlockComment(out[scanFrom:]) {
				out = append(out, line)
				continue
			}
			scanFrom = len(out)
		}
		line = p.cutLineComment(line)

		if open != nil {
			open.lines = append(open.lines, line)
			if open.matcher.IsEnd(line) {
				p.log.Debug("block closed", "block", open.matcher.Name(), "start", open.start, "end", lineNo)
				out = append(out, open.matcher.ToMeta(open.lines))
				open = nil
			}
			continue
		}

		var starts []BlockMatcher
		for _, b := range p.blocks {
			if b.IsStart(line) {
				starts = append(starts, b)
			}
		}
		switch len(starts) {
		case 0:
		case 1:
			open = &openBlock{matcher: starts[0], start: lineNo, lines: []string{line}}
			continue
		default:
			return "", syntaxErrorf(lineNo, nil, "both %s and %s blocks start here", starts[0].Name(), starts[1].Name())
		}

		if p.opensWithBlockComment(line) {
			out = append(out, line)
			continue
		}

		host, err := isHostLine(p.dialect, line, lineNo)
		if err != nil {
			return "", err
		}
		if host {
			out = append(out, line)
			continue
		}

		out = append(out, p.substituteLine(line, lineNo))
	}

	if open != nil {
		return "", syntaxErrorf(len(lines), []int{open.start}, "%s block is never closed", open.matcher.Name())
	}

	return strings.Join(out, "\n"), nil
}

func (p *Pipeline) substituteLine(line string, lineNo int) string {
	trimmed := strings.TrimSpace(line)
	indent := line[:strings.Index(line, trimmed)]

	for _, m := range p.lines {
		if !m.IsValid(trimmed) {
			continue
		}
		p.log.Debug("line matched", "matcher", m.Name(), "line", lineNo)
		meta := m.ToMeta(trimmed)
		if meta == "" {
			return ""
		}
		return indent + meta
	}
	return line
}

// stripComments removes every comment, keeping the newlines of block comments
// so line numbers after them don't move.
func (p *Pipeline) stripComments(buffer string) string {
	var sb strings.Builder
	last := 0
	for _, c := range p.dialect.Comments(buffer) {
		sb.WriteString(buffer[last:c.Offset])
		if c.Kind == lang.BlockComment {
			sb.WriteString(strings.Repeat("\n", strings.Count(c.Text, "\n")))
		}
		last = c.End()
	}
	sb.WriteString(buffer[last:])
	return sb.String()
}

func (p *Pipeline) decode(buffer string) (string, error) {
	lines := strings.Split(buffer, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if !strings.HasPrefix(trimmed, metaLead) {
			continue
		}

		var found []LineMatcher
		for _, m := range p.lines {
			if prefix := m.MarkerPrefix(); prefix != "" && strings.HasPrefix(trimmed, prefix) {
				found = append(found, m)
			}
		}
		if len(found) != 1 {
			return "", syntaxErrorf(i+1, nil, "duplicate format: %d matchers decode %q", len(found), trimmed)
		}

		code, err := found[0].FromMeta(trimmed)
		if err != nil {
			return "", err
		}
		lines[i] = line[:len(line)-len(trimmed)] + code
	}
	return strings.Join(lines, "\n"), nil
}
