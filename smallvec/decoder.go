package smallvec

import (
	"fmt"
	"iter"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/nichefmt"
	"github.com/wippyai/nichefmt/errors"
	"github.com/wippyai/nichefmt/layout"
)

// TypeNamePattern matches every instantiation of SmallVec.
const TypeNamePattern = `^smallvec::SmallVec<.+>$`

// Storage is where the elements live.
type Storage int

const (
	StorageInline Storage = iota
	StorageHeap
)

func (s Storage) String() string {
	if s == StorageHeap {
		return "Heap"
	}
	return "Inline"
}

// Record is the decoded view of one SmallVec.
type Record struct {
	ElementType nichefmt.Type
	Length      uint64
	BaseAddress uint64
	Storage     Storage
	// LengthKnown is false when the tagged length itself could not be read.
	LengthKnown bool
}

// ElementSize is the byte size of one element, 0 without an element type.
func (r Record) ElementSize() uint64 {
	if r.ElementType == nil {
		return 0
	}
	return r.ElementType.ByteSize()
}

// ElementAddress is where element i lives. It does not check bounds and
// wraps past the top of the address space; ElementAt rejects such indexes.
func (r Record) ElementAddress(i uint64) uint64 {
	return r.BaseAddress + i*r.ElementSize()
}

// Decoder decodes SmallVec values. It holds no per-value state.
type Decoder struct {
	log    *zap.Logger
	layout layout.VectorLayout
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLayout overrides the field layout. Zero fields keep their defaults.
func WithLayout(l layout.VectorLayout) Option {
	return func(d *Decoder) {
		d.layout = l.WithDefaults()
	}
}

// WithLogger sets a logger for this decoder instead of the package logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Decoder) {
		d.log = l
	}
}

// NewDecoder creates a decoder for the default smallvec layout.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{layout: layout.DefaultVectorLayout()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var defaultDecoder = NewDecoder()

// Decode decodes v with the default layout.
func Decode(v nichefmt.Value) Record {
	return defaultDecoder.Decode(v)
}

// Layout returns the layout in use.
func (d *Decoder) Layout() layout.VectorLayout {
	return d.layout
}

func (d *Decoder) logger() *zap.Logger {
	if d.log != nil {
		return d.log
	}
	return Logger()
}

// Decode decodes v. Failures leave Length at 0; the storage tag survives
// when the tagged length was readable.
func (d *Decoder) Decode(v nichefmt.Value) Record {
	rec, err := d.TryDecode(v)
	if err != nil {
		fields := []zap.Field{
			zap.String("value", valueName(v)),
			zap.String("type", typeName(v)),
			zap.Stringer("outcome", errors.OutcomeOf(err)),
			zap.Error(err),
		}
		if e, ok := err.(*errors.Error); ok {
			fields = append(fields, zap.String("path", layout.Path(e.Path).String()))
		}
		d.logger().Debug("smallvec decode absorbed", fields...)
	}
	return rec
}

// TryDecode decodes v. On error the returned Record has Length 0.
func (d *Decoder) TryDecode(v nichefmt.Value) (Record, error) {
	if v == nil {
		return Record{}, errors.FieldMissing(nil, "<value>")
	}
	raw := v.NonSynthetic()
	if raw == nil {
		raw = v
	}

	tagged, err := layout.Unsigned(raw, d.layout.Length)
	if err != nil {
		return Record{}, err
	}
	count, onHeap := layout.SplitVectorLength(tagged)

	empty := Record{LengthKnown: true}
	if onHeap {
		empty.Storage = StorageHeap
	}

	elem, err := d.elementType(raw)
	if err != nil {
		return empty, err
	}

	storage, err := layout.TryResolve(raw, d.layout.Raw)
	if err != nil {
		return empty, err
	}

	var base uint64
	if onHeap {
		base, err = layout.Unsigned(storage, d.layout.HeapPointer)
		if err == nil && base == 0 {
			err = errors.NullPointer(d.layout.HeapPointer)
		}
	} else {
		base, err = layout.LoadAddress(storage, d.layout.InlineArray)
	}
	if err != nil {
		return empty, prefix(err, d.layout.Raw)
	}

	return Record{
		ElementType: elem,
		Length:      count,
		BaseAddress: base,
		Storage:     empty.Storage,
		LengthKnown: true,
	}, nil
}

func (d *Decoder) elementType(raw nichefmt.Value) (nichefmt.Type, error) {
	t := raw.Type()
	if t == nil {
		return nil, errors.InvalidType(nil, "", "value has no type")
	}
	elem, ok := t.TemplateArg(d.layout.ElementParam)
	if !ok || elem == nil {
		return nil, errors.InvalidType(nil, t.Name(),
			fmt.Sprintf("no element type at template parameter %d", d.layout.ElementParam))
	}
	if elem.ByteSize() == 0 {
		return nil, errors.InvalidType(nil, elem.Name(), "element type has zero size")
	}
	return elem, nil
}

// ElementAt returns a typed view of element i, located through v's target.
// ok is false when i is outside [0, Length), when the element address
// would overflow, or when the record has no element type.
func ElementAt(v nichefmt.Value, rec Record, i uint64) (nichefmt.Value, bool) {
	size := rec.ElementSize()
	if v == nil || i >= rec.Length || size == 0 {
		return nil, false
	}
	if i > (math.MaxUint64-rec.BaseAddress)/size {
		return nil, false
	}
	tgt := v.Target()
	if tgt == nil {
		return nil, false
	}
	el := tgt.ValueAt(ElementName(i), rec.ElementAddress(i), rec.ElementType)
	return el, el != nil
}

// Elements yields every element of rec in order. Each element is computed
// independently, so the sequence can be restarted or abandoned at any point.
func Elements(v nichefmt.Value, rec Record) iter.Seq2[uint64, nichefmt.Value] {
	return func(yield func(uint64, nichefmt.Value) bool) {
		for i := uint64(0); i < rec.Length; i++ {
			el, ok := ElementAt(v, rec, i)
			if !ok {
				return
			}
			if !yield(i, el) {
				return
			}
		}
	}
}

// ElementName is the child name of element i.
func ElementName(i uint64) string {
	return fmt.Sprintf("[%d]", i)
}

// ParseElementName parses "[i]" and reports whether name had that form.
func ParseElementName(name string) (uint64, bool) {
	inner, ok := strings.CutPrefix(name, "[")
	if !ok {
		return 0, false
	}
	inner, ok = strings.CutSuffix(inner, "]")
	if !ok {
		return 0, false
	}
	i, err := strconv.ParseUint(inner, 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

func prefix(err error, base layout.Path) error {
	if e, ok := err.(*errors.Error); ok {
		e.Path = base.Join(e.Path...)
		return e
	}
	return err
}

func valueName(v nichefmt.Value) string {
	if v == nil {
		return ""
	}
	return v.Name()
}

func typeName(v nichefmt.Value) string {
	if v == nil || v.Type() == nil {
		return ""
	}
	return v.Type().Name()
}
