package vm

import "fmt"

// RuntimeError is raised by the dispatch loop while executing bytecode. It
// is never recovered locally: the VM clears its stack and frames and
// returns it to the caller with the line of the instruction that raised it.
type RuntimeError struct {
	Line    int
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("[line %d] %s", e.Line, e.Message)
}
