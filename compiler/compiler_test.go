package compiler

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"wisp/bytecode"
	"wisp/symbol"
)

func compileSource(t *testing.T, src string) (*bytecode.FunctionObj, string, error) {
	t.Helper()
	var stderr bytes.Buffer
	c := New(src, symbol.New(), &stderr)
	fn, err := c.Compile()
	return fn, stderr.String(), err
}

func opcodes(chunk *bytecode.Chunk) []bytecode.Opcode {
	var ops []bytecode.Opcode
	offset := 0
	for offset < chunk.Len() {
		inst := chunk.Decode(offset)
		ops = append(ops, inst.Op)
		offset += inst.Length
	}
	return ops
}

func TestCompileArithmeticPrecedence(t *testing.T) {
	fn, stderr, err := compileSource(t, "print 2 + 3 * 4;")
	require.NoError(t, err)
	require.Empty(t, stderr)

	require.Equal(t, []bytecode.Opcode{
		bytecode.OpConstant, bytecode.OpConstant, bytecode.OpConstant,
		bytecode.OpMultiply, bytecode.OpAdd, bytecode.OpPrint,
		bytecode.OpNil, bytecode.OpReturn,
	}, opcodes(fn.Chunk))
}

func TestCompileScriptFunctionShape(t *testing.T) {
	fn, _, err := compileSource(t, "")
	require.NoError(t, err)
	require.Equal(t, "<script>", fn.Name)
	require.Equal(t, 0, fn.Arity)
	require.Equal(t, []bytecode.Opcode{bytecode.OpNil, bytecode.OpReturn}, opcodes(fn.Chunk))
}

func TestGlobalVariableDeclarationAndAssignment(t *testing.T) {
	fn, stderr, err := compileSource(t, `var a = 1; a = 2;`)
	require.NoError(t, err)
	require.Empty(t, stderr)
	require.Equal(t, []bytecode.Opcode{
		bytecode.OpConstant, bytecode.OpDefineGlobal,
		bytecode.OpConstant, bytecode.OpSetGlobal, bytecode.OpPop,
		bytecode.OpNil, bytecode.OpReturn,
	}, opcodes(fn.Chunk))
}

func TestLocalScopeUsesSlotOpcodes(t *testing.T) {
	fn, stderr, err := compileSource(t, `{ var a = 1; a = a + 1; }`)
	require.NoError(t, err)
	require.Empty(t, stderr)
	require.Equal(t, []bytecode.Opcode{
		bytecode.OpConstant, // 1
		bytecode.OpGetLocal, bytecode.OpConstant, bytecode.OpAdd, bytecode.OpSetLocal, bytecode.OpPop,
		bytecode.OpPop, // end of block scope discards the one local
		bytecode.OpNil, bytecode.OpReturn,
	}, opcodes(fn.Chunk))
}

// TestLocalSlotAccountsForReservedCalleeSlot pins the exact operand
// GetLocal/SetLocal carry: position 0 in the locals array is the
// compiler's synthetic reservation for the stack slot the VM's callee
// occupies, so the first real local must resolve to slot 1, not slot 0.
func TestLocalSlotAccountsForReservedCalleeSlot(t *testing.T) {
	fn, stderr, err := compileSource(t, `{ var a = 1; print a; }`)
	require.NoError(t, err)
	require.Empty(t, stderr)

	offset := 0
	var getLocalOperand uint32
	found := false
	for offset < fn.Chunk.Len() {
		inst := fn.Chunk.Decode(offset)
		if inst.Op == bytecode.OpGetLocal {
			getLocalOperand = inst.Operand
			found = true
		}
		offset += inst.Length
	}
	require.True(t, found)
	require.Equal(t, uint32(1), getLocalOperand)
}

func TestRedeclaringLocalInSameScopeErrors(t *testing.T) {
	_, stderr, err := compileSource(t, `{ var a = 1; var a = 2; }`)
	require.ErrorIs(t, err, ErrCompileFailed)
	require.Contains(t, stderr, "already a variable with this name in this scope")
}

func TestShadowingInNestedScopeIsAllowed(t *testing.T) {
	_, stderr, err := compileSource(t, `{ var a = "outer"; { var a = "inner"; } }`)
	require.NoError(t, err)
	require.Empty(t, stderr)
}

func TestReadingUninitializedLocalErrors(t *testing.T) {
	_, stderr, err := compileSource(t, `{ var a = a; }`)
	require.ErrorIs(t, err, ErrCompileFailed)
	require.Contains(t, stderr, "can't read local variable in its own initializer")
}

func TestIfElseEmitsJumpsAroundBothBranches(t *testing.T) {
	fn, stderr, err := compileSource(t, `if (true) { print 1; } else { print 2; }`)
	require.NoError(t, err)
	require.Empty(t, stderr)
	require.Equal(t, []bytecode.Opcode{
		bytecode.OpTrue,
		bytecode.OpExtend, bytecode.OpJumpIfFalse, // then_jump placeholder
		bytecode.OpPop,
		bytecode.OpConstant, bytecode.OpPrint,
		bytecode.OpExtend, bytecode.OpJump, // else_jump placeholder
		bytecode.OpPop,
		bytecode.OpConstant, bytecode.OpPrint,
		bytecode.OpNil, bytecode.OpReturn,
	}, opcodes(fn.Chunk))
}

func TestInvalidAssignmentTarget(t *testing.T) {
	_, stderr, err := compileSource(t, `(a) = "value";`)
	require.ErrorIs(t, err, ErrCompileFailed)
	require.Equal(t, "[line 1] Error at '=': invalid assignment target\n", stderr)
}

func TestBreakOutsideLoopErrors(t *testing.T) {
	_, stderr, err := compileSource(t, `break;`)
	require.ErrorIs(t, err, ErrCompileFailed)
	require.Contains(t, stderr, "'break' outside of loop")
}

func TestContinueOutsideLoopErrors(t *testing.T) {
	_, stderr, err := compileSource(t, `continue;`)
	require.ErrorIs(t, err, ErrCompileFailed)
	require.Contains(t, stderr, "'continue' outside of loop")
}

func TestWhileLoopWithBreakCompiles(t *testing.T) {
	_, stderr, err := compileSource(t, `var a=0; while (a<3) { if (a==2) break; print a; a=a+1; }`)
	require.NoError(t, err)
	require.Empty(t, stderr)
}

func TestForLoopDesugarsCleanly(t *testing.T) {
	fn, stderr, err := compileSource(t, `var a=0; for (; a<4; a=a+1) { if (a==2) continue; print a; }`)
	require.NoError(t, err)
	require.Empty(t, stderr)
	require.NotEmpty(t, opcodes(fn.Chunk))
}

func TestLogicalAndShortCircuitsWithJumpIfFalse(t *testing.T) {
	fn, stderr, err := compileSource(t, `print false and 1;`)
	require.NoError(t, err)
	require.Empty(t, stderr)
	require.Equal(t, []bytecode.Opcode{
		bytecode.OpFalse,
		bytecode.OpExtend, bytecode.OpJumpIfFalse,
		bytecode.OpPop,
		bytecode.OpConstant,
		bytecode.OpPrint,
		bytecode.OpNil, bytecode.OpReturn,
	}, opcodes(fn.Chunk))
}

func TestLogicalOrShortCircuitsWithJumpThenJumpIfFalse(t *testing.T) {
	fn, stderr, err := compileSource(t, `print false or nil;`)
	require.NoError(t, err)
	require.Empty(t, stderr)
	require.Equal(t, []bytecode.Opcode{
		bytecode.OpFalse,
		bytecode.OpExtend, bytecode.OpJumpIfFalse,
		bytecode.OpExtend, bytecode.OpJump,
		bytecode.OpPop,
		bytecode.OpNil,
		bytecode.OpPrint,
		bytecode.OpNil, bytecode.OpReturn,
	}, opcodes(fn.Chunk))
}

func TestCallExpressionEmitsCallOpcode(t *testing.T) {
	fn, stderr, err := compileSource(t, `clock();`)
	require.NoError(t, err)
	require.Empty(t, stderr)
	require.Equal(t, []bytecode.Opcode{
		bytecode.OpGetGlobal, bytecode.OpCall, bytecode.OpPop,
		bytecode.OpNil, bytecode.OpReturn,
	}, opcodes(fn.Chunk))
}

func TestMultipleErrorsAcrossStatementsBothReport(t *testing.T) {
	_, stderr, err := compileSource(t, "var = 1; var = 2;")
	require.ErrorIs(t, err, ErrCompileFailed)
	require.Equal(t, 2, bytes.Count([]byte(stderr), []byte("[line")))
}

func TestUnterminatedStringIsReportedAsCompileError(t *testing.T) {
	_, stderr, err := compileSource(t, `print "oops;`)
	require.ErrorIs(t, err, ErrCompileFailed)
	require.Contains(t, stderr, "unterminated string")
}
