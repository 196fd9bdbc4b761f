package preprocess

import (
	"strings"

	"github.com/josephlewis42/hybridsh/core/lang"
)

// BlockEnd closes every built-in block.
const BlockEnd = "#end"

// BlockMatcher recognizes a construct delimited by start and end lines.
type BlockMatcher interface {
	Name() string
	IsStart(line string) bool
	IsEnd(line string) bool
	// ToMeta collapses the block, including its start and end lines, into a
	// single line.
	ToMeta(lines []string) string
}

// DefaultBlockMatchers returns the built-in block matchers.
func DefaultBlockMatchers(d lang.Dialect) []BlockMatcher {
	return []BlockMatcher{
		&VerbatimBlock{},
		&CommandBlock{shell: &ShellCommandMatcher{dialect: d}},
	}
}

func interior(lines []string) []string {
	if len(lines) < 2 {
		return nil
	}
	return lines[1 : len(lines)-1]
}

func isDirective(line, directive string) bool {
	return strings.TrimSpace(line) == directive
}

// VerbatimBlock passes everything between #code and #end through as host
// code, even lines that look like commands.
type VerbatimBlock struct{}

var _ BlockMatcher = (*VerbatimBlock)(nil)

func (*VerbatimBlock) Name() string { return "code" }

func (*VerbatimBlock) IsStart(line string) bool { return isDirective(line, "#code") }

func (*VerbatimBlock) IsEnd(line string) bool { return isDirective(line, BlockEnd) }

func (*VerbatimBlock) ToMeta(lines []string) string {
	return strings.Join(interior(lines), "\n")
}

// CommandBlock runs the lines between #sh and #end as one command, each line
// chained to the next with &&.
type CommandBlock struct {
	shell *ShellCommandMatcher
}

var _ BlockMatcher = (*CommandBlock)(nil)

func (*CommandBlock) Name() string { return "sh" }

func (*CommandBlock) IsStart(line string) bool { return isDirective(line, "#sh") }

func (*CommandBlock) IsEnd(line string) bool { return isDirective(line, BlockEnd) }

func (b *CommandBlock) ToMeta(lines []string) string {
	var commands []string
	for _, line := range interior(lines) {
		if line = strings.TrimSpace(line); line != "" {
			commands = append(commands, line)
		}
	}
	if len(commands) == 0 {
		return ""
	}
	return b.shell.ToMeta(strings.TrimSpace(strings.Join(commands, " && ")))
}
