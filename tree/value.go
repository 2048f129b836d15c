package tree

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/nichefmt"
	"github.com/wippyai/nichefmt/errors"
)

// Value is a typed location in the inspected address space.
// It implements nichefmt.Value.
type Value struct {
	host     *Host
	typ      *Type
	name     string
	addr     uint64
	constant uint64
	isConst  bool
}

// Name implements nichefmt.Value.
func (v *Value) Name() string { return v.name }

// Type implements nichefmt.Value.
func (v *Value) Type() nichefmt.Type { return v.typ }

// DeclaredType returns the concrete declared type.
func (v *Value) DeclaredType() *Type { return v.typ }

// NonSynthetic implements nichefmt.Value. Declared values are always raw.
func (v *Value) NonSynthetic() nichefmt.Value { return v }

// LoadAddress implements nichefmt.Value.
func (v *Value) LoadAddress() uint64 {
	if v.isConst {
		return 0
	}
	return v.addr
}

// Memory implements nichefmt.Value.
func (v *Value) Memory() nichefmt.Memory { return v.host.mem }

// Target implements nichefmt.Value.
func (v *Value) Target() nichefmt.Target { return v.host }

// NumChildren reports how many structural children the value has.
func (v *Value) NumChildren() int {
	if v.isConst {
		return 0
	}
	c := v.typ.resolve()
	switch c.kind {
	case KindStruct:
		return len(c.fields)
	case KindArray:
		return int(c.count)
	default:
		return 0
	}
}

// ChildAt implements nichefmt.Value.
func (v *Value) ChildAt(i int) (nichefmt.Value, bool) {
	if v.isConst || i < 0 {
		return nil, false
	}
	c := v.typ.resolve()
	switch c.kind {
	case KindStruct:
		if i >= len(c.fields) {
			return nil, false
		}
		f := c.fields[i]
		return v.host.at(f.Name, v.addr+f.Offset, f.Type), true
	case KindArray:
		if uint64(i) >= c.count {
			return nil, false
		}
		return v.host.at("["+strconv.Itoa(i)+"]", v.addr+uint64(i)*c.elem.size, c.elem), true
	default:
		return nil, false
	}
}

// Child implements nichefmt.Value. Array elements are named "[i]".
func (v *Value) Child(name string) (nichefmt.Value, bool) {
	if v.isConst {
		return nil, false
	}
	c := v.typ.resolve()
	switch c.kind {
	case KindStruct:
		for _, f := range c.fields {
			if f.Name == name {
				return v.host.at(f.Name, v.addr+f.Offset, f.Type), true
			}
		}
	case KindArray:
		if strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]") {
			i, err := strconv.Atoi(name[1 : len(name)-1])
			if err == nil {
				return v.ChildAt(i)
			}
		}
	}
	return nil, false
}

// Unsigned implements nichefmt.Value for scalars and pointers up to 8 bytes.
func (v *Value) Unsigned() (uint64, error) {
	if v.isConst {
		return v.constant, nil
	}
	c := v.typ.resolve()
	if c.kind != KindScalar && c.kind != KindPointer {
		return 0, errors.InvalidType([]string{v.name}, c.name, fmt.Sprintf("%s has no integer value", c.kind))
	}
	if v.host.mem == nil {
		return 0, errors.ReadFailed([]string{v.name}, v.addr, c.size, fmt.Errorf("no memory attached"))
	}
	b, err := v.host.mem.Read(v.addr, c.size)
	if err != nil {
		return 0, errors.ReadFailed([]string{v.name}, v.addr, c.size, err)
	}
	switch len(b) {
	case 1:
		return uint64(b[0]), nil
	case 2:
		return uint64(binary.LittleEndian.Uint16(b)), nil
	case 4:
		return uint64(binary.LittleEndian.Uint32(b)), nil
	case 8:
		return binary.LittleEndian.Uint64(b), nil
	default:
		return 0, errors.InvalidType([]string{v.name}, c.name, fmt.Sprintf("unsupported integer width %d", len(b)))
	}
}

// Bytes reads the full extent of the value.
func (v *Value) Bytes() ([]byte, error) {
	if v.isConst {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], v.constant)
		return b[:min(v.typ.size, 8)], nil
	}
	if v.host.mem == nil {
		return nil, errors.ReadFailed([]string{v.name}, v.addr, v.typ.size, fmt.Errorf("no memory attached"))
	}
	b, err := v.host.mem.Read(v.addr, v.typ.size)
	if err != nil {
		return nil, errors.ReadFailed([]string{v.name}, v.addr, v.typ.size, err)
	}
	return b, nil
}

// IsConstant reports whether the value carries an immediate instead of an address.
func (v *Value) IsConstant() bool { return v.isConst }
