package compiler

import (
	"wisp/bytecode"
	"wisp/token"
)

func (c *Compiler) declaration() {
	if c.match(token.Var) {
		c.varDeclaration()
	} else {
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) varDeclaration() {
	c.consume(token.Identifier, "expect variable name")
	sym := c.symbols.Intern(c.previous.Lexeme(c.source))

	if !c.topLevel() {
		c.declareLocal(sym)
	}

	if c.match(token.Equal) {
		c.expression()
	} else {
		c.emitOp(bytecode.OpNil)
	}
	c.consume(token.Semicolon, "expect ';' after variable declaration")

	if c.topLevel() {
		c.emitOperand(bytecode.OpDefineGlobal, uint32(sym))
	} else {
		c.markInitialized()
	}
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.Print):
		c.printStatement()
	case c.match(token.For):
		c.forStatement()
	case c.match(token.If):
		c.ifStatement()
	case c.match(token.While):
		c.whileStatement()
	case c.match(token.Break):
		c.breakStatement()
	case c.match(token.Continue):
		c.continueStatement()
	case c.match(token.LeftBrace):
		c.beginScope()
		c.block()
		c.popScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RightBrace) && !c.check(token.Eof) {
		c.declaration()
	}
	c.consume(token.RightBrace, "expect '}' after block")
}

// popScope ends the current lexical scope and emits the Pop/PopN needed to
// discard the locals it declared.
func (c *Compiler) popScope() {
	n := c.endScope()
	switch {
	case n == 1:
		c.emitOp(bytecode.OpPop)
	case n > 1:
		c.emitOperand(bytecode.OpPopN, uint32(n))
	}
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.Semicolon, "expect ';' after value")
	c.emitOp(bytecode.OpPrint)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.Semicolon, "expect ';' after expression")
	c.emitOp(bytecode.OpPop)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LeftParen, "expect '(' after 'if'")
	c.expression()
	c.consume(token.RightParen, "expect ')' after condition")

	thenJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.statement()
	elseJump := c.emitJump(bytecode.OpJump)

	c.patchJump(thenJump)
	c.emitOp(bytecode.OpPop)
	if c.match(token.Else) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := c.chunk.Len()
	c.consume(token.LeftParen, "expect '(' after 'while'")
	c.expression()
	c.consume(token.RightParen, "expect ')' after condition")

	exitJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)

	outer := c.loop
	c.loop = &loopInfo{depth: c.scopeDepth, loopStart: loopStart, exitJump: exitJump}
	c.statement()
	c.loop = outer

	c.emitLoop(loopStart)
	c.patchJump(exitJump)
	c.emitOp(bytecode.OpPop)
}

// forStatement desugars entirely into the while-loop primitives: an
// initializer, a condition guarded by JumpIfFalse, an optional increment
// clause spliced in after the body via an extra Jump, and a Loop back to
// the start of whichever of those runs first each iteration.
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LeftParen, "expect '(' after 'for'")

	switch {
	case c.match(token.Semicolon):
		// no initializer
	case c.match(token.Var):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := c.chunk.Len()
	if c.match(token.Semicolon) {
		c.emitOp(bytecode.OpTrue)
	} else {
		c.expression()
		c.consume(token.Semicolon, "expect ';' after loop condition")
	}

	exitJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)

	if !c.check(token.RightParen) {
		bodyJump := c.emitJump(bytecode.OpJump)
		incrementStart := c.chunk.Len()
		c.expression()
		c.emitOp(bytecode.OpPop)
		c.consume(token.RightParen, "expect ')' after loop clauses")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	} else {
		c.consume(token.RightParen, "expect ')' after loop clauses")
	}

	outer := c.loop
	c.loop = &loopInfo{depth: c.scopeDepth, loopStart: loopStart, exitJump: exitJump}
	c.statement()
	c.loop = outer

	c.emitLoop(loopStart)
	c.patchJump(exitJump)
	c.emitOp(bytecode.OpPop)

	c.popScope()
}

// breakStatement unwinds any locals declared inside the loop body, then
// pushes a synthetic false and loops back to the loop's own JumpIfFalse
// condition check, which (seeing false) takes the same forward jump the
// loop's normal exit path takes and pops the pushed value there.
func (c *Compiler) breakStatement() {
	c.consume(token.Semicolon, "expect ';' after 'break'")
	if c.loop == nil {
		c.error("'break' outside of loop")
		return
	}
	if n := c.countToDepth(c.loop.depth); n > 0 {
		c.emitOperand(bytecode.OpPopN, uint32(n))
	}
	c.emitOp(bytecode.OpFalse)
	c.emitLoop(c.loop.exitJump)
}

func (c *Compiler) continueStatement() {
	c.consume(token.Semicolon, "expect ';' after 'continue'")
	if c.loop == nil {
		c.error("'continue' outside of loop")
		return
	}
	if n := c.countToDepth(c.loop.depth); n > 0 {
		c.emitOperand(bytecode.OpPopN, uint32(n))
	}
	c.emitLoop(c.loop.loopStart)
}
