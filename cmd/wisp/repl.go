package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"wisp/scanner"
	"wisp/token"
	"wisp/vm"
)

type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "start an interactive session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive session. Type exit to quit.
`
}
func (*replCmd) SetFlags(*flag.FlagSet) {}

func (*replCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     historyFilePath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "wisp: %s\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	machine := vm.New(os.Stdout, os.Stderr)
	var buffer strings.Builder

	for {
		if buffer.Len() == 0 {
			rl.SetPrompt(">>> ")
		} else {
			rl.SetPrompt("... ")
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				buffer.Reset()
				continue
			}
			if err == io.EOF {
				return subcommands.ExitSuccess
			}
			fmt.Fprintf(os.Stderr, "wisp: %s\n", err)
			return subcommands.ExitFailure
		}

		if strings.TrimSpace(line) == "exit" && buffer.Len() == 0 {
			return subcommands.ExitSuccess
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
		source := buffer.String()

		tokens, scanErr := scanAll(source)
		if scanErr != nil {
			// A lexical error at the tail of the buffer (an unterminated
			// string spanning the newline we just typed, for instance) means
			// the user may still be mid-statement; wait for more input.
			if !atEOFTail(scanErr) {
				buffer.Reset()
				fmt.Fprintln(os.Stderr, scanErr)
			}
			continue
		}

		if !inputReady(tokens) {
			continue
		}

		if err := machine.Interpret(source); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		buffer.Reset()
	}
}

func historyFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.wisp_history"
}

// scanAll drains a scanner to completion (or to its first error) and
// returns every token produced, including a trailing Eof on success.
func scanAll(source string) ([]token.Token, error) {
	s := scanner.New(source)
	var tokens []token.Token
	for {
		tok, err := s.NextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.Eof {
			return tokens, nil
		}
	}
}

// atEOFTail reports whether the scan error was likely caused by input that
// simply hasn't been finished yet (an open string) rather than a genuine
// mistake. An unterminated string is the only scan error that can be cured
// by typing more input, since a string scans to the end of the source.
func atEOFTail(err error) bool {
	var se *scanner.ScanError
	return errors.As(err, &se) && se.Message == "unterminated string"
}

// inputReady reports whether tokens form a balanced, structurally complete
// unit the parser should be given a chance to run on: braces are closed and
// the last real token isn't an operator or keyword that still expects an
// operand or block to follow.
func inputReady(tokens []token.Token) bool {
	depth := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case token.LeftBrace:
			depth++
		case token.RightBrace:
			depth--
		}
	}
	if depth > 0 {
		return false
	}

	last := lastNonEOF(tokens)
	if last == nil {
		return true
	}

	switch last.Kind {
	case token.Equal, token.Plus, token.Minus, token.Star, token.Slash,
		token.Bang, token.EqualEqual, token.BangEqual,
		token.Less, token.LessEqual, token.Greater, token.GreaterEqual,
		token.Comma, token.LeftParen, token.LeftBrace,
		token.If, token.Else, token.While, token.For,
		token.Var, token.And, token.Or, token.Print:
		return false
	}
	return true
}

func lastNonEOF(tokens []token.Token) *token.Token {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].Kind != token.Eof {
			return &tokens[i]
		}
	}
	return nil
}
