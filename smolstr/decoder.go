package smolstr

import (
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"

	"github.com/wippyai/nichefmt"
	"github.com/wippyai/nichefmt/errors"
	"github.com/wippyai/nichefmt/layout"
)

// TypeName is the exact Rust type name this package decodes.
const TypeName = "smol_str::SmolStr"

// Variant is the active storage strategy.
type Variant int

const (
	VariantUnset Variant = iota
	VariantInline
	VariantStatic
	VariantHeap
)

func (v Variant) String() string {
	switch v {
	case VariantInline:
		return "Inline"
	case VariantStatic:
		return "Static"
	case VariantHeap:
		return "Heap"
	default:
		return ""
	}
}

// Record is the decoded view of one SmolStr.
type Record struct {
	Content        string
	Variant        Variant
	Length         uint64
	ContentAddress uint64 // 0 when Length is 0
	Pointer        uint64 // Static and Heap only
}

// HasPointer reports whether Pointer is meaningful.
func (r Record) HasPointer() bool {
	return r.Variant == VariantStatic || r.Variant == VariantHeap
}

// Decoder decodes SmolStr values. It holds no per-value state and is safe
// for concurrent use.
type Decoder struct {
	log    *zap.Logger
	layout layout.StringLayout
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLayout overrides the field layout. Zero fields keep their defaults.
func WithLayout(l layout.StringLayout) Option {
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

// NewDecoder creates a decoder for the default smol_str layout.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{layout: layout.DefaultStringLayout()}
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
func (d *Decoder) Layout() layout.StringLayout {
	return d.layout
}

func (d *Decoder) logger() *zap.Logger {
	if d.log != nil {
		return d.log
	}
	return Logger()
}

// Decode decodes v, collapsing every failure to the zero Record.
func (d *Decoder) Decode(v nichefmt.Value) Record {
	rec, err := d.TryDecode(v)
	if err != nil {
		d.logger().Debug("smol_str decode absorbed",
			zap.String("value", valueName(v)),
			zap.String("type", TypeName),
			zap.Stringer("outcome", errors.OutcomeOf(err)),
			zap.Error(err))
		return Record{}
	}
	return rec
}

// TryDecode decodes v. On error the returned Record is the zero Record.
func (d *Decoder) TryDecode(v nichefmt.Value) (Record, error) {
	repr, err := d.resolveRepr(v)
	if err != nil {
		return Record{}, err
	}

	switch {
	case repr.discriminant <= d.layout.InlineMax:
		return d.decodeInline(repr)
	case repr.discriminant == d.layout.StaticDiscriminant:
		return d.decodeStatic(repr)
	default:
		return d.decodeHeap(repr)
	}
}

// DataAddress is where the text of r lives, derived from Pointer alone:
// Pointer + header for Heap, Pointer for Static, ContentAddress for Inline.
func (d *Decoder) DataAddress(r Record) uint64 {
	switch r.Variant {
	case VariantHeap:
		return r.Pointer + d.layout.HeapHeaderSize
	case VariantStatic:
		return r.Pointer
	default:
		return r.ContentAddress
	}
}

// reprView is the resolved variant-selection data of one value.
type reprView struct {
	variants     nichefmt.Value
	discriminant uint64
}

func (d *Decoder) resolveRepr(v nichefmt.Value) (reprView, error) {
	first, err := layout.First(v)
	if err != nil {
		return reprView{}, err
	}
	variants, err := layout.TryResolve(first, d.layout.Variants)
	if err != nil {
		return reprView{}, err
	}
	discr, err := layout.Unsigned(variants, d.layout.Discriminant)
	if err != nil {
		return reprView{}, err
	}
	return reprView{variants: variants, discriminant: discr}, nil
}

// refView is a resolved (data pointer, length) pair.
type refView struct {
	mem    nichefmt.Memory
	ptr    uint64
	length uint64
}

func (d *Decoder) resolveRef(variants nichefmt.Value, base layout.Path) (refView, error) {
	holder, err := layout.TryResolve(variants, base)
	if err != nil {
		return refView{}, err
	}
	ptr, err := layout.Unsigned(holder, layout.Path{d.layout.DataPtr})
	if err != nil {
		return refView{}, prefix(err, base)
	}
	n, err := layout.Unsigned(holder, layout.Path{d.layout.Length})
	if err != nil {
		return refView{}, prefix(err, base)
	}
	return refView{mem: holder.Memory(), ptr: ptr, length: n}, nil
}

func (d *Decoder) decodeInline(repr reprView) (Record, error) {
	rec := Record{Variant: VariantInline, Length: repr.discriminant}
	if rec.Length == 0 {
		return rec, nil
	}

	buf, err := layout.TryResolve(repr.variants, d.layout.InlineBuffer)
	if err != nil {
		return Record{}, err
	}
	addr := buf.LoadAddress()
	if addr == 0 {
		return Record{}, errors.NullPointer(d.layout.InlineBuffer)
	}

	text, err := readText(buf.Memory(), addr, rec.Length, d.layout.InlineBuffer)
	if err != nil {
		return Record{}, err
	}
	rec.Content = text
	rec.ContentAddress = addr
	return rec, nil
}

func (d *Decoder) decodeStatic(repr reprView) (Record, error) {
	ref, err := d.resolveRef(repr.variants, d.layout.StaticRef)
	if err != nil {
		return Record{}, err
	}
	rec := Record{Variant: VariantStatic, Length: ref.length, Pointer: ref.ptr}
	if rec.Length == 0 {
		return rec, nil
	}
	if err := d.checkLength(ref.length, d.layout.StaticRef); err != nil {
		return Record{}, err
	}

	text, err := readText(ref.mem, ref.ptr, ref.length, d.layout.StaticRef)
	if err != nil {
		return Record{}, err
	}
	rec.Content = text
	rec.ContentAddress = ref.ptr
	return rec, nil
}

func (d *Decoder) decodeHeap(repr reprView) (Record, error) {
	ref, err := d.resolveRef(repr.variants, d.layout.HeapRef)
	if err != nil {
		return Record{}, err
	}
	rec := Record{Variant: VariantHeap, Length: ref.length, Pointer: ref.ptr}
	if rec.Length == 0 {
		return rec, nil
	}
	if err := d.checkLength(ref.length, d.layout.HeapRef); err != nil {
		return Record{}, err
	}

	data := ref.ptr + d.layout.HeapHeaderSize
	text, err := readText(ref.mem, data, ref.length, d.layout.HeapRef)
	if err != nil {
		return Record{}, err
	}
	rec.Content = text
	rec.ContentAddress = data
	return rec, nil
}

// checkLength rejects a claimed length above the layout limit before any
// buffer for it is allocated.
func (d *Decoder) checkLength(n uint64, path layout.Path) error {
	if n <= d.layout.MaxLength {
		return nil
	}
	return errors.New(errors.PhaseRead, errors.KindReadFailed).
		Path(path...).
		Detail("length %d exceeds the %d byte limit", n, d.layout.MaxLength).
		Build()
}

func readText(mem nichefmt.Memory, addr, length uint64, path layout.Path) (string, error) {
	if mem == nil {
		return "", errors.ReadFailed(path, addr, length, nil)
	}
	raw, err := mem.Read(addr, length)
	if err != nil {
		return "", errors.ReadFailed(path, addr, length, err)
	}
	if uint64(len(raw)) != length {
		return "", errors.New(errors.PhaseRead, errors.KindReadFailed).
			Path(path...).
			Detail("short read at 0x%x: got %d of %d bytes", addr, len(raw), length).
			Build()
	}
	return DecodeText(raw, path)
}

// DecodeText converts raw bytes to a string, replacing each invalid UTF-8
// byte with U+FFFD.
func DecodeText(raw []byte, path layout.Path) (string, error) {
	out, err := unicode.UTF8.NewDecoder().Bytes(raw)
	if err != nil {
		return "", errors.InvalidUTF8(path, raw, err)
	}
	return string(out), nil
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
