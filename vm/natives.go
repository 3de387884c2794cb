package vm

import "wisp/bytecode"

// registerNatives installs the host-provided callables into globals under
// their names, the way a user var declaration would, except no
// corresponding source text ever ran.
func (vm *VM) registerNatives() {
	vm.defineNative("clock", 0, vm.clockNative)
}

func (vm *VM) defineNative(name string, arity int, fn bytecode.BuiltinFunc) {
	sym := vm.symbols.Intern(name)
	vm.globals[sym] = bytecode.Builtin(&bytecode.BuiltinObj{Name: name, Arity: arity, Fn: fn})
}

// clockNative returns the number of seconds elapsed since the VM was
// constructed, read from a monotonic clock source (time.Since never reads
// the wall clock backwards, unlike time.Now().Unix()).
func (vm *VM) clockNative(argCount int, ctx bytecode.NativeContext) (bytecode.Value, error) {
	return bytecode.Number(vm.clock().Seconds()), nil
}
