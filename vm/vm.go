// Package vm executes compiled bytecode: a dispatch loop over a value
// stack and a frame stack, global and local variable resolution, function
// calls (to native builtins in the current language surface; user
// functions are supported symmetrically by the dispatch loop even though
// nothing in the compiled grammar can construct one), and runtime error
// reporting.
package vm

import (
	"fmt"
	"io"
	"time"

	"wisp/bytecode"
	"wisp/compiler"
	"wisp/symbol"
)

// MaxStack bounds the value stack at 65536 entries, matching the stack
// size other bytecode VMs of this shape use.
const MaxStack = 1 << 16

// VM owns all interpreter state across many Interpret calls: the value
// stack, the frame stack, the global environment, the long-lived symbol
// table, and the two output sinks. It is not safe for concurrent use.
type VM struct {
	stack   []bytecode.Value
	frames  []frame
	globals map[symbol.ID]bytecode.Value
	symbols *symbol.Table
	stdout  io.Writer
	stderr  io.Writer
	start   time.Time
}

// New constructs a VM writing program output to stdout and compile
// diagnostics to stderr, with the built-in native functions already
// registered.
func New(stdout, stderr io.Writer) *VM {
	vm := &VM{
		globals: make(map[symbol.ID]bytecode.Value),
		symbols: symbol.New(),
		stdout:  stdout,
		stderr:  stderr,
		start:   time.Now(),
	}
	vm.registerNatives()
	return vm
}

func (vm *VM) clock() time.Duration {
	return time.Since(vm.start)
}

// NewString implements bytecode.NativeContext, letting builtins allocate
// fresh string values without the bytecode package importing vm.
func (vm *VM) NewString(text string) bytecode.Value {
	return bytecode.String(&bytecode.StringObj{Text: text})
}

// Interpret compiles and runs source against this VM's persistent globals
// and symbol table. A compile failure is reported to the stderr sink by
// the compiler itself and returned as compiler.ErrCompileFailed; the VM
// does not execute anything in that case. A runtime failure is returned as
// a *RuntimeError for the caller to report.
func (vm *VM) Interpret(source string) error {
	c := compiler.New(source, vm.symbols, vm.stderr)
	script, err := c.Compile()
	if err != nil {
		return err
	}
	return vm.run(script)
}

// DebugTokens scans source to completion, writing one line per token to
// stdout. It is a debugging aid, not part of the compiled execution path.
func (vm *VM) DebugTokens(source string) {
	debugTokens(source, vm.stdout)
}

func (vm *VM) push(v bytecode.Value) error {
	if len(vm.stack) >= MaxStack {
		return &RuntimeError{Message: "stack overflow"}
	}
	vm.stack = append(vm.stack, v)
	return nil
}

func (vm *VM) pop() bytecode.Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek(distanceFromTop int) bytecode.Value {
	return vm.stack[len(vm.stack)-1-distanceFromTop]
}

func (vm *VM) currentFrame() *frame {
	return &vm.frames[len(vm.frames)-1]
}

// run drives the fetch-decode-execute loop over script, starting a fresh
// stack and frame stack. Slot 0 of the initial frame is reserved for the
// callee, which for the top-level script is Nil.
func (vm *VM) run(script *bytecode.FunctionObj) error {
	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]
	vm.stack = append(vm.stack, bytecode.Nil)
	vm.frames = append(vm.frames, frame{fn: script, offset: 0, base: 0})

	for {
		f := vm.currentFrame()
		instOffset := f.offset
		inst := f.fn.Chunk.Decode(instOffset)
		f.offset += inst.Length
		line := f.fn.Chunk.GetLine(instOffset)

		if done, err := vm.dispatch(f, inst, line); err != nil {
			if re, ok := err.(*RuntimeError); ok && re.Line == 0 {
				re.Line = line
			}
			vm.stack = nil
			vm.frames = nil
			return err
		} else if done {
			return nil
		}
	}
}

func (vm *VM) fail(line int, format string, args ...any) error {
	return &RuntimeError{Line: line, Message: fmt.Sprintf(format, args...)}
}

// dispatch executes one instruction. It reports done=true only for the
// OpReturn that unwinds the outermost frame, ending the program.
func (vm *VM) dispatch(f *frame, inst bytecode.Instruction, line int) (done bool, err error) {
	switch inst.Op {
	case bytecode.OpNop:

	case bytecode.OpNil:
		err = vm.push(bytecode.Nil)
	case bytecode.OpTrue:
		err = vm.push(bytecode.Bool(true))
	case bytecode.OpFalse:
		err = vm.push(bytecode.Bool(false))

	case bytecode.OpPop:
		vm.pop()
	case bytecode.OpPopN:
		n := int(inst.Operand)
		vm.stack = vm.stack[:len(vm.stack)-n]

	case bytecode.OpPrint:
		v := vm.pop()
		fmt.Fprintf(vm.stdout, "%s\n", v.String())

	case bytecode.OpNot:
		v := vm.pop()
		err = vm.push(bytecode.Bool(!v.Truthy()))

	case bytecode.OpNegate:
		v := vm.pop()
		if !v.IsNumber() {
			return false, vm.fail(line, "operand must be a number")
		}
		err = vm.push(bytecode.Number(-v.AsNumber()))

	case bytecode.OpEqual:
		b := vm.pop()
		a := vm.pop()
		err = vm.push(bytecode.Bool(a.Equal(b)))

	case bytecode.OpGreater, bytecode.OpLess:
		b := vm.pop()
		a := vm.pop()
		if !a.IsNumber() || !b.IsNumber() {
			return false, vm.fail(line, "operands must be numbers")
		}
		var result bool
		if inst.Op == bytecode.OpGreater {
			result = a.AsNumber() > b.AsNumber()
		} else {
			result = a.AsNumber() < b.AsNumber()
		}
		err = vm.push(bytecode.Bool(result))

	case bytecode.OpAdd:
		b := vm.pop()
		a := vm.pop()
		switch {
		case a.IsNumber() && b.IsNumber():
			err = vm.push(bytecode.Number(a.AsNumber() + b.AsNumber()))
		case a.IsString() && b.IsString():
			text := a.AsStringObj().Text + b.AsStringObj().Text
			err = vm.push(bytecode.String(&bytecode.StringObj{Text: text}))
		default:
			return false, vm.fail(line, "operands must be numbers or strings")
		}

	case bytecode.OpSubtract, bytecode.OpMultiply, bytecode.OpDivide:
		b := vm.pop()
		a := vm.pop()
		if !a.IsNumber() || !b.IsNumber() {
			return false, vm.fail(line, "operands must be numbers")
		}
		var result float64
		switch inst.Op {
		case bytecode.OpSubtract:
			result = a.AsNumber() - b.AsNumber()
		case bytecode.OpMultiply:
			result = a.AsNumber() * b.AsNumber()
		case bytecode.OpDivide:
			result = a.AsNumber() / b.AsNumber()
		}
		err = vm.push(bytecode.Number(result))

	case bytecode.OpConstant:
		err = vm.push(f.fn.Chunk.Constants[inst.Operand])

	case bytecode.OpDefineGlobal:
		vm.globals[symbol.ID(inst.Operand)] = vm.pop()

	case bytecode.OpGetGlobal:
		sym := symbol.ID(inst.Operand)
		v, ok := vm.globals[sym]
		if !ok {
			return false, vm.fail(line, "undefined variable '%s'", vm.symbols.Lookup(sym))
		}
		err = vm.push(v)

	case bytecode.OpSetGlobal:
		sym := symbol.ID(inst.Operand)
		if _, ok := vm.globals[sym]; !ok {
			return false, vm.fail(line, "undefined variable '%s'", vm.symbols.Lookup(sym))
		}
		vm.globals[sym] = vm.peek(0)

	case bytecode.OpGetLocal:
		err = vm.push(vm.stack[f.base+int(inst.Operand)])

	case bytecode.OpSetLocal:
		vm.stack[f.base+int(inst.Operand)] = vm.peek(0)

	case bytecode.OpJumpIfFalse:
		if !vm.peek(0).Truthy() {
			f.offset += int(inst.Operand)
		}
	case bytecode.OpJump:
		f.offset += int(inst.Operand)
	case bytecode.OpLoop:
		f.offset -= int(inst.Operand)

	case bytecode.OpCall:
		return false, vm.call(int(inst.Operand), line)

	case bytecode.OpReturn:
		return vm.doReturn()

	default:
		return false, vm.fail(line, "unknown opcode %s", inst.Op)
	}
	return false, err
}

// doReturn pops the return value, truncates the stack back to the current
// frame's base, pops the frame, and pushes the return value into the
// caller's stack. Returning from the outermost frame ends the program.
func (vm *VM) doReturn() (bool, error) {
	f := vm.currentFrame()
	result := vm.pop()
	vm.stack = vm.stack[:f.base]
	vm.frames = vm.frames[:len(vm.frames)-1]
	if len(vm.frames) == 0 {
		return true, nil
	}
	if err := vm.push(result); err != nil {
		return false, err
	}
	return false, nil
}

// call inspects the value argCount slots below the top of the stack and
// invokes it: a user function pushes a new frame, a builtin runs
// synchronously and replaces its own call frame with the result.
func (vm *VM) call(argCount int, line int) error {
	calleeIdx := len(vm.stack) - 1 - argCount
	callee := vm.stack[calleeIdx]

	switch callee.Kind() {
	case bytecode.KindFunction:
		fn := callee.AsFunction()
		if fn.Arity != argCount {
			return vm.fail(line, "expected %d arguments but got %d", fn.Arity, argCount)
		}
		vm.frames = append(vm.frames, frame{fn: fn, offset: 0, base: calleeIdx})
		return nil

	case bytecode.KindBuiltin:
		b := callee.AsBuiltin()
		if b.Arity != argCount {
			return vm.fail(line, "expected %d arguments but got %d", b.Arity, argCount)
		}
		result, err := b.Fn(argCount, vm)
		if err != nil {
			return vm.fail(line, "%s", err.Error())
		}
		vm.stack = vm.stack[:calleeIdx]
		return vm.push(result)

	default:
		return vm.fail(line, "can only call functions or classes")
	}
}
