package present

import (
	"iter"
	"math"
	"strconv"

	"github.com/wippyai/nichefmt"
	"github.com/wippyai/nichefmt/smallvec"
	"github.com/wippyai/nichefmt/smolstr"
)

// Child names of a string provider, in index order.
const (
	ChildVariant = "variant"
	ChildLength  = "length"
	ChildContent = "content"
	ChildPointer = "pointer"
)

// ChildKind says which field of a Child carries its payload.
type ChildKind int

const (
	KindText     ChildKind = iota // Text
	KindUnsigned                  // Unsigned
	KindAddress                   // Unsigned, rendered as a pointer
	KindBytes                     // Value is a u8 array; Text is its decoded form
	KindElement                   // Value is a typed element view
)

func (k ChildKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindUnsigned:
		return "unsigned"
	case KindAddress:
		return "address"
	case KindBytes:
		return "bytes"
	case KindElement:
		return "element"
	default:
		return "unknown"
	}
}

// Child is one synthetic child.
type Child struct {
	Value    nichefmt.Value
	Name     string
	Text     string
	Unsigned uint64
	Kind     ChildKind
}

// Provider is the synthetic-children contract a host drives.
type Provider interface {
	// Update recomputes the record from v's current bytes.
	Update(v nichefmt.Value)
	NumChildren() int
	// ChildIndex returns -1 for unknown names.
	ChildIndex(name string) int
	ChildAt(i int) (Child, bool)
	HasChildren() bool
	Summary() string
}

// SummarizeString renders a string record as its quoted content.
func SummarizeString(rec smolstr.Record) string {
	return `"` + rec.Content + `"`
}

// SummarizeVector renders a vector record as its element count.
func SummarizeVector(rec smallvec.Record) string {
	if !rec.LengthKnown {
		return "size=?"
	}
	return "size=" + strconv.FormatUint(rec.Length, 10)
}

// Children walks p's children in index order, fetching each on demand.
func Children(p Provider) iter.Seq2[int, Child] {
	return func(yield func(int, Child) bool) {
		n := p.NumChildren()
		for i := 0; i < n; i++ {
			c, ok := p.ChildAt(i)
			if !ok {
				return
			}
			if !yield(i, c) {
				return
			}
		}
	}
}

// StringProvider exposes a SmolStr as variant, length, content and, for
// Static and Heap, pointer.
type StringProvider struct {
	decoder *smolstr.Decoder
	value   nichefmt.Value
	rec     smolstr.Record
}

// NewStringProvider creates a provider backed by d, or by the default
// decoder when d is nil.
func NewStringProvider(d *smolstr.Decoder) *StringProvider {
	if d == nil {
		d = smolstr.NewDecoder()
	}
	return &StringProvider{decoder: d}
}

// Update implements Provider.
func (p *StringProvider) Update(v nichefmt.Value) {
	p.value = v
	p.rec = p.decoder.Decode(v)
}

// Record returns the record computed by the last Update.
func (p *StringProvider) Record() smolstr.Record {
	return p.rec
}

// NumChildren implements Provider.
func (p *StringProvider) NumChildren() int {
	if p.rec.HasPointer() {
		return 4
	}
	return 3
}

// ChildIndex implements Provider. The pointer index is reported even for
// inline strings; ChildAt(3) then fails.
func (p *StringProvider) ChildIndex(name string) int {
	switch name {
	case ChildVariant:
		return 0
	case ChildLength:
		return 1
	case ChildContent:
		return 2
	case ChildPointer:
		return 3
	default:
		return -1
	}
}

// ChildAt implements Provider.
func (p *StringProvider) ChildAt(i int) (Child, bool) {
	switch i {
	case 0:
		return Child{Name: ChildVariant, Kind: KindText, Text: p.rec.Variant.String()}, true
	case 1:
		return Child{Name: ChildLength, Kind: KindUnsigned, Unsigned: p.rec.Length}, true
	case 2:
		return p.content(), true
	case 3:
		if !p.rec.HasPointer() {
			return Child{}, false
		}
		return Child{Name: ChildPointer, Kind: KindAddress, Unsigned: p.rec.Pointer}, true
	default:
		return Child{}, false
	}
}

func (p *StringProvider) content() Child {
	empty := Child{Name: ChildContent, Kind: KindText, Text: ""}
	if p.rec.ContentAddress == 0 || p.rec.Length == 0 || p.value == nil {
		return empty
	}
	tgt := p.value.Target()
	if tgt == nil {
		return empty
	}
	char := tgt.BasicType(nichefmt.BasicChar)
	if char == nil {
		return empty
	}
	arr := tgt.ArrayOf(char, p.rec.Length)
	v := tgt.ValueAt(ChildContent, p.rec.ContentAddress, arr)
	if v == nil {
		return empty
	}
	return Child{Name: ChildContent, Kind: KindBytes, Value: v, Text: p.rec.Content, Unsigned: p.rec.Length}
}

// HasChildren implements Provider. A string always has children.
func (p *StringProvider) HasChildren() bool {
	return true
}

// Summary implements Provider.
func (p *StringProvider) Summary() string {
	return SummarizeString(p.rec)
}

// VectorProvider exposes the elements of a SmallVec as children [0], [1], ...
type VectorProvider struct {
	decoder *smallvec.Decoder
	value   nichefmt.Value
	rec     smallvec.Record
}

// NewVectorProvider creates a provider backed by d, or by the default
// decoder when d is nil.
func NewVectorProvider(d *smallvec.Decoder) *VectorProvider {
	if d == nil {
		d = smallvec.NewDecoder()
	}
	return &VectorProvider{decoder: d}
}

// Update implements Provider.
func (p *VectorProvider) Update(v nichefmt.Value) {
	p.value = v
	p.rec = p.decoder.Decode(v)
}

// Record returns the record computed by the last Update.
func (p *VectorProvider) Record() smallvec.Record {
	return p.rec
}

// NumChildren implements Provider.
func (p *VectorProvider) NumChildren() int {
	if p.rec.Length > math.MaxInt {
		return math.MaxInt
	}
	return int(p.rec.Length)
}

// ChildIndex implements Provider.
func (p *VectorProvider) ChildIndex(name string) int {
	i, ok := smallvec.ParseElementName(name)
	if !ok || i >= p.rec.Length || i > math.MaxInt {
		return -1
	}
	return int(i)
}

// ChildAt implements Provider.
func (p *VectorProvider) ChildAt(i int) (Child, bool) {
	if i < 0 {
		return Child{}, false
	}
	el, ok := smallvec.ElementAt(p.value, p.rec, uint64(i))
	if !ok {
		return Child{}, false
	}
	return Child{Name: el.Name(), Kind: KindElement, Value: el}, true
}

// HasChildren implements Provider.
func (p *VectorProvider) HasChildren() bool {
	return p.rec.Length > 0
}

// Summary implements Provider.
func (p *VectorProvider) Summary() string {
	return SummarizeVector(p.rec)
}
