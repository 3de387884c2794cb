package scanner

import "fmt"

// ScanError reports a lexical failure: an unterminated string or an
// unexpected character. The compiler attaches the line to its own
// diagnostic output; ScanError carries it for that purpose.
type ScanError struct {
	Line    int
	Message string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}
