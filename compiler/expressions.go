package compiler

import (
	"strconv"

	"wisp/bytecode"
	"wisp/token"
)

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

// parsePrecedence runs one prefix rule and then consumes infix operators
// whose precedence is at least as tight as precedence, recursing into each
// infix rule's own right-hand operand at a tighter binding power. This is
// the entire expression grammar: there is no separate AST pass.
func (c *Compiler) parsePrecedence(precedence Precedence) {
	c.advance()
	rule := c.getRule(c.previous.Kind)
	if rule.prefix == nil {
		c.error("expect expression")
		return
	}

	canAssign := precedence <= PrecAssignment
	rule.prefix(c, canAssign)

	for precedence <= infixPrecedence(c.current.Kind) {
		c.advance()
		infix := c.getRule(c.previous.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.Equal) {
		c.error("invalid assignment target")
	}
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(token.RightParen, "expect ')' after expression")
}

func (c *Compiler) unary(canAssign bool) {
	operator := c.previous.Kind
	c.parsePrecedence(PrecUnary)
	switch operator {
	case token.Minus:
		c.emitOp(bytecode.OpNegate)
	case token.Bang:
		c.emitOp(bytecode.OpNot)
	}
}

func (c *Compiler) binary(canAssign bool) {
	operator := c.previous.Kind
	rule := c.getRule(operator)
	c.parsePrecedence(rule.precedence + 1)

	switch operator {
	case token.Plus:
		c.emitOp(bytecode.OpAdd)
	case token.Minus:
		c.emitOp(bytecode.OpSubtract)
	case token.Star:
		c.emitOp(bytecode.OpMultiply)
	case token.Slash:
		c.emitOp(bytecode.OpDivide)
	case token.EqualEqual:
		c.emitOp(bytecode.OpEqual)
	case token.Less:
		c.emitOp(bytecode.OpLess)
	case token.Greater:
		c.emitOp(bytecode.OpGreater)
	case token.BangEqual:
		c.emitOp(bytecode.OpEqual)
		c.emitOp(bytecode.OpNot)
	case token.GreaterEqual:
		c.emitOp(bytecode.OpLess)
		c.emitOp(bytecode.OpNot)
	case token.LessEqual:
		c.emitOp(bytecode.OpGreater)
		c.emitOp(bytecode.OpNot)
	}
}

// and_ short-circuits: if the left operand is already falsy, its value is
// left on the stack and the right operand is skipped entirely.
func (c *Compiler) and_(canAssign bool) {
	endJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

// or_ short-circuits the opposite way: a truthy left operand skips the
// right operand.
func (c *Compiler) or_(canAssign bool) {
	elseJump := c.emitJump(bytecode.OpJumpIfFalse)
	endJump := c.emitJump(bytecode.OpJump)
	c.patchJump(elseJump)
	c.emitOp(bytecode.OpPop)
	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

// call compiles a call expression's argument list; the callee has already
// been compiled and is on the stack beneath the arguments.
func (c *Compiler) call(canAssign bool) {
	argCount := c.argumentList()
	c.emitOperand(bytecode.OpCall, uint32(argCount))
}

func (c *Compiler) argumentList() int {
	argCount := 0
	if !c.check(token.RightParen) {
		for {
			c.expression()
			argCount++
			if !c.match(token.Comma) {
				break
			}
		}
	}
	c.consume(token.RightParen, "expect ')' after arguments")
	return argCount
}

func (c *Compiler) number(canAssign bool) {
	text := c.previous.Lexeme(c.source)
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		c.error("invalid number literal")
		return
	}
	c.emitConstant(bytecode.Number(value))
}

func (c *Compiler) stringLiteral(canAssign bool) {
	raw := c.previous.Lexeme(c.source)
	text := raw[1 : len(raw)-1]
	c.emitConstant(bytecode.String(&bytecode.StringObj{Text: text}))
}

func (c *Compiler) literal(canAssign bool) {
	switch c.previous.Kind {
	case token.Nil:
		c.emitOp(bytecode.OpNil)
	case token.True:
		c.emitOp(bytecode.OpTrue)
	case token.False:
		c.emitOp(bytecode.OpFalse)
	}
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	sym := c.symbols.Intern(name.Lexeme(c.source))

	var getOp, setOp bytecode.Opcode
	var arg uint32

	if slot, initialized, found := c.resolveLocal(sym); found {
		if !initialized {
			c.error("can't read local variable in its own initializer")
		}
		getOp, setOp, arg = bytecode.OpGetLocal, bytecode.OpSetLocal, uint32(slot)
	} else {
		getOp, setOp, arg = bytecode.OpGetGlobal, bytecode.OpSetGlobal, uint32(sym)
	}

	if canAssign && c.match(token.Equal) {
		c.expression()
		c.emitOperand(setOp, arg)
	} else {
		c.emitOperand(getOp, arg)
	}
}
