// Package compiler implements a single-pass Pratt parser that compiles
// source text directly to bytecode: no intermediate AST is built. Parsing
// and code generation are interleaved, precedence-climbing style, exactly
// as emission order in the chunk mirrors the order expressions are parsed.
package compiler

import (
	"errors"
	"io"

	"wisp/bytecode"
	"wisp/scanner"
	"wisp/symbol"
	"wisp/token"
)

// scanErrorParts splits a scan error into its line and bare message so it
// can be re-formatted through the same [line N] Error: ... shape compile
// errors use, rather than double-prefixing the line.
func scanErrorParts(err error) (line int, message string) {
	var se *scanner.ScanError
	if errors.As(err, &se) {
		return se.Line, se.Message
	}
	return 0, err.Error()
}

// ErrCompileFailed is returned by Compile when one or more diagnostics were
// reported; the diagnostics themselves were already written to the
// compiler's stderr sink as they were discovered.
var ErrCompileFailed = errors.New("compile failed")

// parseFunc is a prefix or infix parsing rule. canAssign is only meaningful
// to rules that may appear in assignment-target position (currently only
// variable).
type parseFunc func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFunc
	infix      parseFunc
	precedence Precedence
}

// loopInfo is the context recorded when entering a while/for loop, threaded
// through nested statement compilation so break/continue can unwind scopes
// and jump correctly.
type loopInfo struct {
	depth     int
	loopStart int
	exitJump  int
}

// Compiler consumes a token stream from a single scanner and emits bytecode
// into a single Chunk representing the compiled top-level script. Only one
// Chunk is ever active: the language in scope has no user-defined functions
// to nest compilation into (see DESIGN.md).
type Compiler struct {
	source  string
	scanner *scanner.Scanner
	symbols *symbol.Table
	stderr  io.Writer

	current  token.Token
	previous token.Token

	hadError  bool
	panicMode bool

	chunk      *bytecode.Chunk
	locals     []local
	scopeDepth int
	loop       *loopInfo
}

// New constructs a Compiler over source. symbols is the VM's long-lived
// symbol table (interning persists across calls); stderr receives formatted
// diagnostics as they are discovered.
func New(source string, symbols *symbol.Table, stderr io.Writer) *Compiler {
	return &Compiler{
		source:  source,
		scanner: scanner.New(source),
		symbols: symbols,
		stderr:  stderr,
		chunk:   &bytecode.Chunk{},
		locals:  []local{{depth: 0, reserved: true}},
	}
}

// Compile runs the parser to completion and returns the compiled script as
// a FunctionObj named "<script>". If any diagnostic was reported, it
// returns ErrCompileFailed and a nil function; the caller must not attempt
// to execute a failed compilation.
func (c *Compiler) Compile() (*bytecode.FunctionObj, error) {
	c.advance()
	for !c.match(token.Eof) {
		c.declaration()
	}
	c.emitOp(bytecode.OpNil)
	c.emitOp(bytecode.OpReturn)

	if c.hadError {
		return nil, ErrCompileFailed
	}
	return &bytecode.FunctionObj{Name: "<script>", Arity: 0, Chunk: c.chunk}, nil
}

var rules map[token.Kind]parseRule

func init() {
	rules = map[token.Kind]parseRule{
		token.LeftParen:    {prefix: (*Compiler).grouping, infix: (*Compiler).call, precedence: PrecCall},
		token.Minus:        {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: PrecTerm},
		token.Plus:         {infix: (*Compiler).binary, precedence: PrecTerm},
		token.Slash:        {infix: (*Compiler).binary, precedence: PrecFactor},
		token.Star:         {infix: (*Compiler).binary, precedence: PrecFactor},
		token.Bang:         {prefix: (*Compiler).unary},
		token.BangEqual:    {infix: (*Compiler).binary, precedence: PrecEquality},
		token.EqualEqual:   {infix: (*Compiler).binary, precedence: PrecEquality},
		token.Greater:      {infix: (*Compiler).binary, precedence: PrecComparison},
		token.GreaterEqual: {infix: (*Compiler).binary, precedence: PrecComparison},
		token.Less:         {infix: (*Compiler).binary, precedence: PrecComparison},
		token.LessEqual:    {infix: (*Compiler).binary, precedence: PrecComparison},
		token.Identifier:   {prefix: (*Compiler).variable},
		token.Number:       {prefix: (*Compiler).number},
		token.String:       {prefix: (*Compiler).stringLiteral},
		token.And:          {infix: (*Compiler).and_, precedence: PrecAnd},
		token.Or:           {infix: (*Compiler).or_, precedence: PrecOr},
		token.Nil:          {prefix: (*Compiler).literal},
		token.True:         {prefix: (*Compiler).literal},
		token.False:        {prefix: (*Compiler).literal},
	}
}

func (c *Compiler) getRule(kind token.Kind) parseRule {
	return rules[kind]
}

// --- token stream -----------------------------------------------------

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		tok, err := c.scanner.NextToken()
		if err == nil {
			c.current = tok
			break
		}
		c.scanError(err)
	}
}

func (c *Compiler) check(kind token.Kind) bool {
	return c.current.Kind == kind
}

func (c *Compiler) match(kind token.Kind) bool {
	if !c.check(kind) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(kind token.Kind, message string) {
	if c.current.Kind == kind {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

// --- error reporting ----------------------------------------------------

func (c *Compiler) scanError(err error) {
	line, message := scanErrorParts(err)
	c.reportError(line, "", message)
}

func (c *Compiler) error(message string) {
	c.errorAt(c.previous, message)
}

func (c *Compiler) errorAtCurrent(message string) {
	c.errorAt(c.current, message)
}

func (c *Compiler) errorAt(tok token.Token, message string) {
	var where string
	if tok.Kind == token.Eof {
		where = " at end"
	} else {
		where = " at '" + tok.Lexeme(c.source) + "'"
	}
	c.reportError(tok.Line, where, message)
}

func (c *Compiler) reportError(line int, where, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true
	ce := &CompileError{Line: line, Where: where, Message: message}
	io.WriteString(c.stderr, ce.Error()+"\n")
}

// synchronize skips tokens after a compile error until a statement boundary
// is reached, so subsequent errors in unrelated statements still surface.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Kind != token.Eof {
		if c.previous.Kind == token.Semicolon {
			return
		}
		switch c.current.Kind {
		case token.Class, token.Fun, token.Var, token.For, token.If,
			token.While, token.Print, token.Return:
			return
		}
		c.advance()
	}
}

// --- emission helpers ----------------------------------------------------

func (c *Compiler) emitOp(op bytecode.Opcode) {
	c.chunk.WriteOp(op, c.previous.Line)
}

func (c *Compiler) emitOperand(op bytecode.Opcode, arg uint32) {
	c.chunk.WriteOperand(op, arg, c.previous.Line)
}

func (c *Compiler) emitConstant(value bytecode.Value) {
	if err := c.chunk.WriteConstant(value, c.previous.Line); err != nil {
		c.error(err.Error())
	}
}

func (c *Compiler) emitJump(op bytecode.Opcode) int {
	return c.chunk.WriteJump(op, c.previous.Line)
}

func (c *Compiler) patchJump(origin int) {
	if err := c.chunk.PatchJump(origin); err != nil {
		c.error(err.Error())
	}
}

func (c *Compiler) emitLoop(dest int) {
	if err := c.chunk.WriteLoop(dest, c.previous.Line); err != nil {
		c.error(err.Error())
	}
}
