// Package symbol interns identifier strings into compact integer ids, used
// as the operands of global-variable opcodes and for diagnostic lookup.
package symbol

// ID is a dense, zero-based identifier assigned to an interned string.
type ID uint32

// Table is a two-way mapping between identifier text and symbol id. Ids are
// stable for the table's lifetime.
type Table struct {
	ids   map[string]ID
	names []string
}

// New returns an empty symbol table.
func New() *Table {
	return &Table{ids: make(map[string]ID)}
}

// Intern returns the existing id for text if already interned, otherwise
// allocates and returns a new one.
func (t *Table) Intern(text string) ID {
	if id, ok := t.ids[text]; ok {
		return id
	}
	id := ID(len(t.names))
	t.names = append(t.names, text)
	t.ids[text] = id
	return id
}

// Lookup returns the interned name for id. It panics if id was never
// interned by this table, which would indicate a compiler/VM invariant
// violation rather than a recoverable error.
func (t *Table) Lookup(id ID) string {
	return t.names[id]
}

// Len returns the number of distinct interned symbols.
func (t *Table) Len() int {
	return len(t.names)
}
