package nichefmt

// Memory reads raw bytes from an inspected address space.
// A failed read returns an error and never panics.
type Memory interface {
	Read(addr uint64, length uint64) ([]byte, error)
}

// BasicKind names a primitive type the host can always produce.
type BasicKind int

const (
	BasicInvalid BasicKind = iota
	BasicChar
	BasicU8
	BasicU16
	BasicU32
	BasicU64
	BasicUsize
	BasicPointer
)

var basicKindNames = [...]string{
	BasicInvalid: "invalid",
	BasicChar:    "char",
	BasicU8:      "u8",
	BasicU16:     "u16",
	BasicU32:     "u32",
	BasicU64:     "u64",
	BasicUsize:   "usize",
	BasicPointer: "*const u8",
}

func (k BasicKind) String() string {
	if k < 0 || int(k) >= len(basicKindNames) {
		return "invalid"
	}
	return basicKindNames[k]
}

// Type is the reflection view of a value's static type.
type Type interface {
	// Name is the fully qualified type name, e.g. "smol_str::SmolStr".
	Name() string
	// ByteSize is the in-memory size; 0 means unknown.
	ByteSize() uint64
	// TemplateArg returns the i-th generic type parameter.
	TemplateArg(i int) (Type, bool)
	// Canonical resolves typedefs; a type without aliases returns itself.
	Canonical() Type
}

// Value is an opaque handle to a value living in the inspected process.
type Value interface {
	Name() string
	Type() Type
	// NonSynthetic returns the raw-layout view, bypassing any formatter.
	NonSynthetic() Value
	ChildAt(i int) (Value, bool)
	Child(name string) (Value, bool)
	// Unsigned interprets the value's bytes as a little-endian integer.
	Unsigned() (uint64, error)
	// LoadAddress is the value's address in the inspected process, 0 if it has none.
	LoadAddress() uint64
	Memory() Memory
	Target() Target
}

// Target builds typed views over addresses of the inspected process.
type Target interface {
	BasicType(kind BasicKind) Type
	ArrayOf(elem Type, count uint64) Type
	ValueAt(name string, addr uint64, t Type) Value
	// Scalar creates a value that carries an integer without backing memory.
	Scalar(name string, v uint64, t Type) Value
}
