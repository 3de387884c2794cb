package compiler

import "wisp/symbol"

// uninitialized marks a local that has been declared but whose initializer
// has not yet finished compiling; reading it is an error.
const uninitialized = -1

// local is a lexical-scope slot: the interned name bound to it and the
// scope depth at which it became initialized (uninitialized until then).
// reserved marks the synthetic slot-0 entry every Compiler starts with,
// standing in for the callee the VM itself pushes before any bytecode
// runs, so that array position N always lines up with the runtime slot
// GetLocal/SetLocal address at base+N; it never resolves to a real name.
type local struct {
	sym      symbol.ID
	depth    int
	reserved bool
}

func (c *Compiler) beginScope() {
	c.scopeDepth++
}

// endScope leaves the current scope and reports how many locals it
// declared, so the caller can emit the matching Pop/PopN.
func (c *Compiler) endScope() int {
	c.scopeDepth--
	n := 0
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.locals = c.locals[:len(c.locals)-1]
		n++
	}
	return n
}

// countToDepth reports how many locals at the top of the stack were
// declared deeper than depth, without popping them. Used by break/continue
// to unwind loop-local scopes before jumping.
func (c *Compiler) countToDepth(depth int) int {
	n := 0
	for n < len(c.locals) && c.locals[len(c.locals)-1-n].depth > depth {
		n++
	}
	return n
}

func (c *Compiler) topLevel() bool {
	return c.scopeDepth == 0
}

// declareLocal adds sym as a new local in the current scope, marked
// uninitialized. It reports an error and leaves the locals array
// unchanged if sym already names a local declared in this same scope.
func (c *Compiler) declareLocal(sym symbol.ID) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != uninitialized && l.depth < c.scopeDepth {
			break
		}
		if l.sym == sym {
			c.error("already a variable with this name in this scope")
			return
		}
	}
	c.locals = append(c.locals, local{sym: sym, depth: uninitialized})
}

// markInitialized marks the most recently declared local as usable,
// setting its depth to the current scope depth.
func (c *Compiler) markInitialized() {
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

// resolveLocal searches the locals array right-to-left for sym. found is
// false when no local matches and the caller should fall back to a global.
func (c *Compiler) resolveLocal(sym symbol.ID) (slot int, initialized bool, found bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].reserved {
			continue
		}
		if c.locals[i].sym == sym {
			return i, c.locals[i].depth != uninitialized, true
		}
	}
	return 0, false, false
}
