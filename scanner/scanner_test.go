package scanner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"wisp/token"
)

func scanAll(t *testing.T, source string) []token.Token {
	t.Helper()
	s := New(source)
	var toks []token.Token
	for {
		tok, err := s.NextToken()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Kind == token.Eof {
			return toks
		}
	}
}

func TestScannerPunctuationAndOperators(t *testing.T) {
	toks := scanAll(t, "(){},.;:+-*/! != = == < <= > >=")
	want := []token.Kind{
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.Comma, token.Dot, token.Semicolon, token.Colon,
		token.Plus, token.Minus, token.Star, token.Slash,
		token.Bang, token.BangEqual, token.Equal, token.EqualEqual,
		token.Less, token.LessEqual, token.Greater, token.GreaterEqual,
		token.Eof,
	}
	require.Len(t, toks, len(want))
	for i, k := range want {
		require.Equalf(t, k, toks[i].Kind, "token %d", i)
	}
}

func TestScannerKeywordsAreWholeWords(t *testing.T) {
	toks := scanAll(t, "and break case class continue default else false for fun if nil or print return super switch this true var while andx")
	require.Equal(t, token.And, toks[0].Kind)
	require.Equal(t, token.While, toks[len(toks)-3].Kind)
	require.Equal(t, token.Identifier, toks[len(toks)-2].Kind)
}

func TestScannerNumberLiteral(t *testing.T) {
	toks := scanAll(t, "123 3.14 1.")
	require.Equal(t, token.Number, toks[0].Kind)
	require.Equal(t, "123", toks[0].Lexeme("123 3.14 1."))
	require.Equal(t, token.Number, toks[1].Kind)
	require.Equal(t, "3.14", toks[1].Lexeme("123 3.14 1."))

	// "1." without trailing digits: the '.' is NOT part of the number.
	require.Equal(t, token.Number, toks[2].Kind)
	require.Equal(t, "1", toks[2].Lexeme("123 3.14 1."))
	require.Equal(t, token.Dot, toks[3].Kind)
}

func TestScannerStringLiteral(t *testing.T) {
	source := `"hello world"`
	toks := scanAll(t, source)
	require.Equal(t, token.String, toks[0].Kind)
	require.Equal(t, source, toks[0].Lexeme(source))
}

func TestScannerStringSpansLinesAndTracksLineCount(t *testing.T) {
	source := "\"line1\nline2\" identifier"
	toks := scanAll(t, source)
	require.Equal(t, token.String, toks[0].Kind)
	require.Equal(t, 2, toks[1].Line)
}

func TestScannerUnterminatedStringReportsOpeningLine(t *testing.T) {
	s := New("\n\n\"unterminated")
	_, err := s.NextToken()
	require.Error(t, err)
	var scanErr *ScanError
	require.ErrorAs(t, err, &scanErr)
	require.Equal(t, 3, scanErr.Line)
	require.Contains(t, scanErr.Message, "unterminated string")
}

func TestScannerUnexpectedCharacter(t *testing.T) {
	s := New("@")
	_, err := s.NextToken()
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected character '@'")
}

func TestScannerUnexpectedMultibyteCharacterRealignsBytes(t *testing.T) {
	source := "éx"
	s := New(source)
	_, err := s.NextToken()
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected character 'é'")

	tok, err := s.NextToken()
	require.NoError(t, err)
	require.Equal(t, token.Identifier, tok.Kind)
	require.Equal(t, "x", tok.Lexeme(source))
}

func TestScannerSkipsLineCommentsAndTracksLines(t *testing.T) {
	source := "// a comment\nvar"
	toks := scanAll(t, source)
	require.Equal(t, token.Var, toks[0].Kind)
	require.Equal(t, 2, toks[0].Line)
}

func TestScannerEmptySourceYieldsEOF(t *testing.T) {
	toks := scanAll(t, "")
	require.Len(t, toks, 1)
	require.Equal(t, token.Eof, toks[0].Kind)
}
