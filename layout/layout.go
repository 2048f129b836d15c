package layout

import (
	"fmt"

	"github.com/wippyai/nichefmt/errors"
)

// Binary contract for smol_str::SmolStr and smallvec::SmallVec.
const (
	InlineMax          = 23 // largest inline length and discriminant
	StaticDiscriminant = 24
	HeapHeaderSize     = 16 // Arc strong + weak counters, 8 bytes each
	VectorTagMask      = 1  // bit 0 of the raw length marks heap storage
	VectorTagShift     = 1

	// MaxStringLength bounds the length a Static or Heap string may claim
	// before its bytes are read. Larger values come from stale memory.
	MaxStringLength = 1 << 24
)

// StringLayout locates the parts of a small string inside its repr enum.
type StringLayout struct {
	Variants     Path   `yaml:"variants"`
	Discriminant Path   `yaml:"discriminant"`
	InlineBuffer Path   `yaml:"inline_buffer"`
	StaticRef    Path   `yaml:"static_ref"`
	HeapRef      Path   `yaml:"heap_ref"`
	DataPtr      string `yaml:"data_ptr"`
	Length       string `yaml:"length"`

	InlineMax          uint64 `yaml:"inline_max"`
	StaticDiscriminant uint64 `yaml:"static_discriminant"`
	HeapHeaderSize     uint64 `yaml:"heap_header_size"`
	MaxLength          uint64 `yaml:"max_length"`
}

// DefaultStringLayout matches smol_str 0.2/0.3 as described by LLDB's Rust plugin.
func DefaultStringLayout() StringLayout {
	return StringLayout{
		Variants:           Path{"$variants$"},
		Discriminant:       Path{"$variant$24", "$discr$"},
		InlineBuffer:       Path{"$variant$", "value", "buf"},
		StaticRef:          Path{"$variant$24", "value", "__0"},
		HeapRef:            Path{"$variant$25", "value", "__0", "ptr", "pointer"},
		DataPtr:            "data_ptr",
		Length:             "length",
		InlineMax:          InlineMax,
		StaticDiscriminant: StaticDiscriminant,
		HeapHeaderSize:     HeapHeaderSize,
		MaxLength:          MaxStringLength,
	}
}

// WithDefaults fills every zero field from DefaultStringLayout.
func (l StringLayout) WithDefaults() StringLayout {
	d := DefaultStringLayout()
	if len(l.Variants) == 0 {
		l.Variants = d.Variants
	}
	if len(l.Discriminant) == 0 {
		l.Discriminant = d.Discriminant
	}
	if len(l.InlineBuffer) == 0 {
		l.InlineBuffer = d.InlineBuffer
	}
	if len(l.StaticRef) == 0 {
		l.StaticRef = d.StaticRef
	}
	if len(l.HeapRef) == 0 {
		l.HeapRef = d.HeapRef
	}
	if l.DataPtr == "" {
		l.DataPtr = d.DataPtr
	}
	if l.Length == "" {
		l.Length = d.Length
	}
	if l.InlineMax == 0 {
		l.InlineMax = d.InlineMax
	}
	if l.StaticDiscriminant == 0 {
		l.StaticDiscriminant = d.StaticDiscriminant
	}
	if l.HeapHeaderSize == 0 {
		l.HeapHeaderSize = d.HeapHeaderSize
	}
	if l.MaxLength == 0 {
		l.MaxLength = d.MaxLength
	}
	return l
}

// Validate checks the constants against each other.
func (l StringLayout) Validate() error {
	if l.StaticDiscriminant != l.InlineMax+1 {
		return errors.InvalidLayout([]string{"string", "static_discriminant"},
			fmt.Sprintf("static discriminant %d must follow inline max %d", l.StaticDiscriminant, l.InlineMax))
	}
	if l.HeapHeaderSize%8 != 0 {
		return errors.InvalidLayout([]string{"string", "heap_header_size"},
			fmt.Sprintf("heap header size %d is not a whole number of counters", l.HeapHeaderSize))
	}
	if l.MaxLength <= l.InlineMax {
		return errors.InvalidLayout([]string{"string", "max_length"},
			fmt.Sprintf("max length %d does not exceed inline max %d", l.MaxLength, l.InlineMax))
	}
	if l.DataPtr == "" || l.Length == "" {
		return errors.InvalidLayout([]string{"string"}, "data_ptr and length member names are required")
	}
	return nil
}

// VectorLayout locates the parts of a small vector.
type VectorLayout struct {
	Length       Path `yaml:"length"`
	Raw          Path `yaml:"raw"`
	HeapPointer  Path `yaml:"heap_pointer"`
	InlineArray  Path `yaml:"inline_array"`
	ElementParam int  `yaml:"element_param"`
}

// DefaultVectorLayout matches smallvec 2.x.
func DefaultVectorLayout() VectorLayout {
	return VectorLayout{
		Length:       Path{"len", "__0"},
		Raw:          Path{"raw"},
		HeapPointer:  Path{"heap", "__0", "pointer"},
		InlineArray:  Path{"inline", "value", "value", "value"},
		ElementParam: 0,
	}
}

// WithDefaults fills every zero field from DefaultVectorLayout.
func (l VectorLayout) WithDefaults() VectorLayout {
	d := DefaultVectorLayout()
	if len(l.Length) == 0 {
		l.Length = d.Length
	}
	if len(l.Raw) == 0 {
		l.Raw = d.Raw
	}
	if len(l.HeapPointer) == 0 {
		l.HeapPointer = d.HeapPointer
	}
	if len(l.InlineArray) == 0 {
		l.InlineArray = d.InlineArray
	}
	return l
}

// Validate checks the vector layout.
func (l VectorLayout) Validate() error {
	if l.ElementParam < 0 {
		return errors.InvalidLayout([]string{"vector", "element_param"}, "negative template parameter index")
	}
	return nil
}

// SplitVectorLength separates the storage tag from the element count.
func SplitVectorLength(raw uint64) (count uint64, heap bool) {
	return raw >> VectorTagShift, raw&VectorTagMask == 1
}
