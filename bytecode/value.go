package bytecode

import (
	"math"
	"strconv"
)

// Kind tags the variant a Value currently holds.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindString
	KindFunction
	KindBuiltin
)

// Value is a tagged sum type: Nil, Bool, Number, String, Function, or
// Builtin. The zero Value is KindNil.
type Value struct {
	kind    Kind
	boolean bool
	number  float64
	str     *StringObj
	fn      *FunctionObj
	builtin *BuiltinObj
}

// StringObj is a shared, immutable byte sequence. Multiple Values may point
// at the same StringObj; Go's garbage collector frees it once unreachable,
// which is why no manual refcount field is needed here (see DESIGN.md).
type StringObj struct {
	Text string
}

// FunctionObj is an immutable compiled function: its declared name (for
// diagnostics and printing), its arity, and its bytecode chunk. The
// top-level script compiles to a FunctionObj named "<script>" with arity 0.
type FunctionObj struct {
	Name  string
	Arity int
	Chunk *Chunk
}

// NativeContext is the capability surface a BuiltinFunc receives alongside
// its argument count, letting a native build heap values without the
// bytecode package importing the VM package that owns allocation.
type NativeContext interface {
	NewString(text string) Value
}

// BuiltinFunc is a host-provided callable: given the call's argument count
// and a handle to the running VM, it returns a Value or a runtime error.
type BuiltinFunc func(argCount int, ctx NativeContext) (Value, error)

// BuiltinObj is an immutable host-provided callable: a name, an arity, and
// the Go function that implements it.
type BuiltinObj struct {
	Name  string
	Arity int
	Fn    BuiltinFunc
}

// Nil is the singleton Nil value.
var Nil = Value{kind: KindNil}

// Bool returns a Value wrapping b.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Number returns a Value wrapping n.
func Number(n float64) Value { return Value{kind: KindNumber, number: n} }

// String returns a Value wrapping a shared handle to obj.
func String(obj *StringObj) Value { return Value{kind: KindString, str: obj} }

// Function returns a Value wrapping a shared handle to obj.
func Function(obj *FunctionObj) Value { return Value{kind: KindFunction, fn: obj} }

// Builtin returns a Value wrapping a shared handle to obj.
func Builtin(obj *BuiltinObj) Value { return Value{kind: KindBuiltin, builtin: obj} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNil() bool {
	return v.kind == KindNil
}
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsString() bool { return v.kind == KindString }

// AsBool returns the wrapped bool. The caller must have checked Kind().
func (v Value) AsBool() bool { return v.boolean }

// AsNumber returns the wrapped float64. The caller must have checked Kind().
func (v Value) AsNumber() float64 { return v.number }

// AsStringObj returns the wrapped *StringObj. The caller must have checked Kind().
func (v Value) AsStringObj() *StringObj { return v.str }

// AsFunction returns the wrapped *FunctionObj. The caller must have checked Kind().
func (v Value) AsFunction() *FunctionObj { return v.fn }

// AsBuiltin returns the wrapped *BuiltinObj. The caller must have checked Kind().
func (v Value) AsBuiltin() *BuiltinObj { return v.builtin }

// Truthy implements the language's truthiness rule: Nil and Bool(false) are
// false, everything else is true.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.boolean
	default:
		return true
	}
}

// Equal implements Value equality: same variant and variant-specific
// equality. Strings compare by contents; functions and builtins by
// identity. NaN famously compares unequal to itself, inherited from
// Go's float64 equality.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.boolean == other.boolean
	case KindNumber:
		return v.number == other.number
	case KindString:
		return v.str == other.str || v.str.Text == other.str.Text
	case KindFunction:
		return v.fn == other.fn
	case KindBuiltin:
		return v.builtin == other.builtin
	default:
		return false
	}
}

// String renders v the way OpPrint does: numbers use shortest
// round-tripping decimal with no trailing ".0", booleans are true/false,
// nil is "nil", strings print their bytes verbatim, and functions print
// their declared name.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.boolean {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.number)
	case KindString:
		return v.str.Text
	case KindFunction:
		return v.fn.Name
	case KindBuiltin:
		return v.builtin.Name
	default:
		return "<invalid value>"
	}
}

func formatNumber(n float64) string {
	if math.IsNaN(n) {
		return "nan"
	}
	if math.IsInf(n, 1) {
		return "inf"
	}
	if math.IsInf(n, -1) {
		return "-inf"
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
