package vm

import "wisp/bytecode"

// frame is one call's activation record: the function under execution, the
// instruction offset execution will resume at, and the stack index where
// the frame's locals begin (slot 0 is the callee itself).
type frame struct {
	fn     *bytecode.FunctionObj
	offset int
	base   int
}
