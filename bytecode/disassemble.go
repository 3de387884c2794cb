package bytecode

import (
	"fmt"
	"strings"

	"wisp/symbol"
)

// SymbolNames resolves a symbol id to its interned name for disassembly
// output. *symbol.Table satisfies this directly.
type SymbolNames interface {
	Lookup(id symbol.ID) string
}

// Disassemble renders chunk as a human-readable instruction listing, one
// line per instruction, in the informal style the reference tooling uses
// for debugging. It is not part of the executed core and is not covered by
// the compiler/VM correctness tests.
func (c *Chunk) Disassemble(name string, names SymbolNames) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	offset := 0
	for offset < len(c.Code) {
		inst := c.Decode(offset)
		fmt.Fprintf(&b, "%04d %4d %-12s", offset, c.GetLine(offset), inst.Op)
		switch {
		case inst.Op == OpConstant:
			if int(inst.Operand) < len(c.Constants) {
				fmt.Fprintf(&b, "%d %v", inst.Operand, c.Constants[inst.Operand])
			} else {
				fmt.Fprintf(&b, "%d (out of range)", inst.Operand)
			}
		case inst.Op == OpDefineGlobal || inst.Op == OpGetGlobal || inst.Op == OpSetGlobal:
			if names != nil {
				fmt.Fprintf(&b, "%d %s", inst.Operand, names.Lookup(symbol.ID(inst.Operand)))
			} else {
				fmt.Fprintf(&b, "%d", inst.Operand)
			}
		case inst.Op == OpJump || inst.Op == OpJumpIfFalse:
			fmt.Fprintf(&b, "-> %d", offset+inst.Length+int(inst.Operand))
		case inst.Op == OpLoop:
			fmt.Fprintf(&b, "-> %d", offset+inst.Length-int(inst.Operand))
		case inst.Op.HasOperand():
			fmt.Fprintf(&b, "%d", inst.Operand)
		}
		b.WriteByte('\n')
		offset += inst.Length
	}
	return b.String()
}
