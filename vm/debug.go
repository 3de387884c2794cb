package vm

import (
	"fmt"
	"io"

	"wisp/scanner"
	"wisp/token"
)

// debugTokens scans source to completion and writes one line per token to
// w, in the informal "line kind lexeme" shape the reference tooling's token
// dump uses. Scan errors are reported inline and scanning continues from
// the next token, mirroring how the compiler itself recovers from them.
func debugTokens(source string, w io.Writer) {
	s := scanner.New(source)
	for {
		tok, err := s.NextToken()
		if err != nil {
			fmt.Fprintf(w, "%s\n", err)
			continue
		}
		fmt.Fprintf(w, "%4d %-12s %q\n", tok.Line, tok.Kind, tok.Lexeme(source))
		if tok.Kind == token.Eof {
			return
		}
	}
}
