package shellrt

import "fmt"

// Process is the outcome of an external command whose output went straight
// to the terminal.
type Process struct {
	Command string
	Status  int
}

// ExitCode returns the command's exit status.
func (p *Process) ExitCode() int {
	return p.Status
}

func (p *Process) String() string {
	return fmt.Sprintf("%q exited with status %d", p.Command, p.Status)
}
