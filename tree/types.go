package tree

import (
	"fmt"

	"github.com/wippyai/nichefmt"
)

// Kind is the shape of a declared type.
type Kind int

const (
	KindScalar Kind = iota
	KindPointer
	KindStruct
	KindArray
	KindTypedef
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindPointer:
		return "pointer"
	case KindStruct:
		return "struct"
	case KindArray:
		return "array"
	case KindTypedef:
		return "typedef"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// PointerSize is the pointer width of every target this package models.
const PointerSize = 8

// Field is a named member at a byte offset.
type Field struct {
	Type   *Type
	Name   string
	Offset uint64
}

// Type is a declared type. It implements nichefmt.Type.
type Type struct {
	elem   *Type
	target *Type
	name   string
	fields []Field
	args   []*Type
	size   uint64
	count  uint64
	kind   Kind
}

// Scalar declares an integer-like type of the given size.
func Scalar(name string, size uint64) *Type {
	return &Type{name: name, size: size, kind: KindScalar}
}

// Pointer declares a thin pointer.
func Pointer(name string) *Type {
	return &Type{name: name, size: PointerSize, kind: KindPointer}
}

// Struct declares an aggregate. Fields may overlap, which is how unions and
// compiler-encoded enums are expressed.
func Struct(name string, size uint64, fields ...Field) *Type {
	return &Type{name: name, size: size, kind: KindStruct, fields: fields}
}

// Array declares [elem; count].
func Array(elem *Type, count uint64) *Type {
	return &Type{
		name:  fmt.Sprintf("[%s; %d]", elem.Name(), count),
		size:  elem.size * count,
		kind:  KindArray,
		elem:  elem,
		count: count,
	}
}

// Typedef declares name as an alias of target.
func Typedef(name string, target *Type) *Type {
	return &Type{name: name, size: target.size, kind: KindTypedef, target: target}
}

// F is shorthand for a Field literal.
func F(name string, offset uint64, t *Type) Field {
	return Field{Name: name, Offset: offset, Type: t}
}

// WithArgs returns t with generic parameters attached.
func (t *Type) WithArgs(args ...*Type) *Type {
	t.args = args
	return t
}

// Name implements nichefmt.Type.
func (t *Type) Name() string { return t.name }

// ByteSize implements nichefmt.Type.
func (t *Type) ByteSize() uint64 { return t.size }

// Kind returns the declared shape.
func (t *Type) Kind() Kind { return t.kind }

// Elem returns the element type of an array.
func (t *Type) Elem() *Type { return t.elem }

// Count returns the element count of an array.
func (t *Type) Count() uint64 { return t.count }

// Fields returns the struct members in declaration order.
func (t *Type) Fields() []Field { return t.fields }

// TemplateArg implements nichefmt.Type.
func (t *Type) TemplateArg(i int) (nichefmt.Type, bool) {
	c := t.resolve()
	if i < 0 || i >= len(c.args) || c.args[i] == nil {
		return nil, false
	}
	return c.args[i], true
}

// Canonical implements nichefmt.Type.
func (t *Type) Canonical() nichefmt.Type {
	return t.resolve()
}

func (t *Type) resolve() *Type {
	c := t
	for c.kind == KindTypedef && c.target != nil {
		c = c.target
	}
	return c
}

// Field looks up a struct member by name.
func (t *Type) Field(name string) (Field, bool) {
	for _, f := range t.resolve().fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Builtin scalar and pointer types.
var (
	U8      = Scalar("u8", 1)
	U16     = Scalar("u16", 2)
	U32     = Scalar("u32", 4)
	U64     = Scalar("u64", 8)
	Usize   = Scalar("usize", 8)
	I8      = Scalar("i8", 1)
	I16     = Scalar("i16", 2)
	I32     = Scalar("i32", 4)
	I64     = Scalar("i64", 8)
	Isize   = Scalar("isize", 8)
	Bool    = Scalar("bool", 1)
	Char    = Scalar("char", 1)
	BytePtr = Pointer("*const u8")
)

// Builtins returns the predeclared types keyed by name.
func Builtins() map[string]*Type {
	out := make(map[string]*Type)
	for _, t := range []*Type{U8, U16, U32, U64, Usize, I8, I16, I32, I64, Isize, Bool, Char, BytePtr} {
		out[t.name] = t
	}
	return out
}
