package compiler

import "fmt"

// CompileError reports a single diagnostic raised while compiling source
// text, positioned by line and (when available) the offending token text.
type CompileError struct {
	Line    int
	Where   string
	Message string
}

func (e *CompileError) Error() string {
	if e.Where == "" {
		return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("[line %d] Error%s: %s", e.Line, e.Where, e.Message)
}
