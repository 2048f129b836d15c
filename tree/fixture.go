package tree

import (
	"encoding/binary"
	"fmt"

	"github.com/wippyai/nichefmt/memory"
)

// StringStorage selects how Fixture.SmolStr lays out a string.
type StringStorage int

const (
	StorageInline StringStorage = iota
	StorageStatic
	StorageHeap
)

func (s StringStorage) String() string {
	switch s {
	case StorageInline:
		return "inline"
	case StorageStatic:
		return "static"
	case StorageHeap:
		return "heap"
	default:
		return fmt.Sprintf("storage(%d)", int(s))
	}
}

// ParseStringStorage parses "inline", "static" or "heap".
func ParseStringStorage(s string) (StringStorage, error) {
	switch s {
	case "inline", "":
		return StorageInline, nil
	case "static":
		return StorageStatic, nil
	case "heap":
		return StorageHeap, nil
	default:
		return 0, fmt.Errorf("unknown string storage %q", s)
	}
}

// Fixture regions. Each is a fixed-size bump arena inside the image.
const (
	StackBase  uint64 = 0x10000
	StaticBase uint64 = 0x20000
	HeapBase   uint64 = 0x40000
	RegionSize uint64 = 0x10000

	// danglingPtr is what Rust stores for an empty &'static str.
	danglingPtr uint64 = 1
)

type arena struct {
	next  uint64
	limit uint64
	name  string
}

func (a *arena) alloc(size, align uint64) (uint64, error) {
	if align == 0 {
		align = 1
	}
	addr := (a.next + align - 1) &^ (align - 1)
	if addr+size > a.limit || addr+size < addr {
		return 0, fmt.Errorf("%s region exhausted allocating %d bytes", a.name, size)
	}
	a.next = addr + size
	return addr, nil
}

// Fixture lays out real smol_str and smallvec bytes in a fresh image and
// binds them as host variables.
type Fixture struct {
	Image  *memory.Image
	Host   *Host
	stack  arena
	static arena
	heap   arena
}

// NewFixture maps the stack, static and heap regions and returns a host over them.
func NewFixture() *Fixture {
	img := memory.NewImage()
	for _, base := range []uint64{StackBase, StaticBase, HeapBase} {
		if err := img.Reserve(base, RegionSize); err != nil {
			panic("tree: fixture region: " + err.Error())
		}
	}
	return &Fixture{
		Image:  img,
		Host:   NewHost(img),
		stack:  arena{name: "stack", next: StackBase, limit: StackBase + RegionSize},
		static: arena{name: "static", next: StaticBase, limit: StaticBase + RegionSize},
		heap:   arena{name: "heap", next: HeapBase, limit: HeapBase + RegionSize},
	}
}

// Alloc reserves stack space for a value of the given size.
func (f *Fixture) Alloc(size uint64) (uint64, error) {
	return f.stack.alloc(size, 8)
}

// AllocHeap reserves heap space.
func (f *Fixture) AllocHeap(size uint64) (uint64, error) {
	return f.heap.alloc(size, 8)
}

// PutUint writes v as a little-endian integer of width bytes.
func (f *Fixture) PutUint(addr uint64, width uint64, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	if width > 8 {
		return fmt.Errorf("integer width %d exceeds 8 bytes", width)
	}
	return f.Image.Write(addr, b[:width])
}

// SmolStr lays out s with the requested storage and binds it as name.
// Inline storage is limited to 23 bytes.
func (f *Fixture) SmolStr(name, s string, storage StringStorage) (*Value, error) {
	addr, err := f.stack.alloc(24, 8)
	if err != nil {
		return nil, err
	}
	if err := f.WriteSmolStr(addr, s, storage); err != nil {
		return nil, err
	}
	return f.Host.Bind(name, addr, SmolStrType()), nil
}

// WriteSmolStr writes the 24-byte representation of s at addr.
func (f *Fixture) WriteSmolStr(addr uint64, s string, storage StringStorage) error {
	n := uint64(len(s))
	switch storage {
	case StorageInline:
		if n > 23 {
			return fmt.Errorf("inline string of %d bytes exceeds 23", n)
		}
		buf := make([]byte, 24)
		buf[0] = byte(n)
		copy(buf[1:], s)
		return f.Image.Write(addr, buf)

	case StorageStatic:
		data := danglingPtr
		if n > 0 {
			p, err := f.static.alloc(n, 1)
			if err != nil {
				return err
			}
			if err := f.Image.Write(p, []byte(s)); err != nil {
				return err
			}
			data = p
		}
		return f.writeRef(addr, 24, data, n)

	case StorageHeap:
		inner, err := f.heap.alloc(16+n, 8)
		if err != nil {
			return err
		}
		// strong = 1, weak = 1
		if err := f.PutUint(inner, 8, 1); err != nil {
			return err
		}
		if err := f.PutUint(inner+8, 8, 1); err != nil {
			return err
		}
		if err := f.Image.Write(inner+16, []byte(s)); err != nil {
			return err
		}
		return f.writeRef(addr, 25, inner, n)

	default:
		return fmt.Errorf("unknown string storage %d", storage)
	}
}

func (f *Fixture) writeRef(addr uint64, discr byte, ptr, n uint64) error {
	buf := make([]byte, 24)
	buf[0] = discr
	binary.LittleEndian.PutUint64(buf[8:], ptr)
	binary.LittleEndian.PutUint64(buf[16:], n)
	return f.Image.Write(addr, buf)
}

// SmallVec lays out elems as SmallVec<elem, inline> and binds it as name.
// More than inline elements spill to the heap.
func (f *Fixture) SmallVec(name string, elem *Type, inline uint64, elems []uint64) (*Value, error) {
	t := SmallVecType(elem, inline)
	addr, err := f.stack.alloc(t.size, 8)
	if err != nil {
		return nil, err
	}
	if err := f.WriteSmallVec(addr, elem, inline, elems); err != nil {
		return nil, err
	}
	return f.Host.Bind(name, addr, t), nil
}

// WriteSmallVec writes the representation of elems at addr.
func (f *Fixture) WriteSmallVec(addr uint64, elem *Type, inline uint64, elems []uint64) error {
	n := uint64(len(elems))
	onHeap := n > inline

	tagged := n << 1
	if onHeap {
		tagged |= 1
	}
	if err := f.PutUint(addr, 8, tagged); err != nil {
		return err
	}

	base := addr + 8
	if onHeap {
		buf, err := f.heap.alloc(n*elem.size, 8)
		if err != nil {
			return err
		}
		if err := f.PutUint(base, 8, buf); err != nil {
			return err
		}
		if err := f.PutUint(base+8, 8, n); err != nil {
			return err
		}
		base = buf
	}

	for i, v := range elems {
		if err := f.PutUint(base+uint64(i)*elem.size, elem.size, v); err != nil {
			return err
		}
	}
	return nil
}
