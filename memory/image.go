package memory

import (
	"fmt"
	"sort"
	"sync"
)

// Segment is a contiguous mapped byte range.
type Segment struct {
	Data []byte
	Base uint64
}

// End is the first address past the segment.
func (s Segment) End() uint64 {
	return s.Base + uint64(len(s.Data))
}

func (s Segment) contains(addr, length uint64) bool {
	if addr < s.Base {
		return false
	}
	off := addr - s.Base
	return off <= uint64(len(s.Data)) && length <= uint64(len(s.Data))-off
}

// Image is a sparse address space backed by in-process byte slices.
// Reads copy out so callers never alias the image.
type Image struct {
	segments []Segment
	mu       sync.RWMutex
}

// NewImage creates an empty image.
func NewImage() *Image {
	return &Image{}
}

// Map adds a segment at base. Overlapping an existing segment is an error.
// A zero base is rejected so address 0 always stays unmapped.
func (im *Image) Map(base uint64, data []byte) error {
	if base == 0 {
		return fmt.Errorf("segment at address 0 is not allowed")
	}
	if base+uint64(len(data)) < base {
		return fmt.Errorf("segment at 0x%x with length %d wraps the address space", base, len(data))
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	seg := Segment{Base: base, Data: data}
	for _, s := range im.segments {
		if seg.Base < s.End() && s.Base < seg.End() {
			return fmt.Errorf("segment [0x%x, 0x%x) overlaps [0x%x, 0x%x)", seg.Base, seg.End(), s.Base, s.End())
		}
	}
	im.segments = append(im.segments, seg)
	sort.Slice(im.segments, func(i, j int) bool { return im.segments[i].Base < im.segments[j].Base })
	return nil
}

// Reserve maps a zero-filled segment of the given size.
func (im *Image) Reserve(base, size uint64) error {
	return im.Map(base, make([]byte, size))
}

func (im *Image) find(addr, length uint64) (Segment, bool) {
	i := sort.Search(len(im.segments), func(i int) bool { return im.segments[i].End() > addr })
	if i < len(im.segments) && im.segments[i].contains(addr, length) {
		return im.segments[i], true
	}
	return Segment{}, false
}

// Read copies length bytes starting at addr.
// The range must lie within a single segment.
func (im *Image) Read(addr uint64, length uint64) ([]byte, error) {
	im.mu.RLock()
	defer im.mu.RUnlock()

	seg, ok := im.find(addr, length)
	if !ok {
		return nil, fmt.Errorf("memory read out of bounds: addr=0x%x, length=%d", addr, length)
	}
	off := addr - seg.Base
	out := make([]byte, length)
	copy(out, seg.Data[off:off+length])
	return out, nil
}

// Write stores data at addr. The range must lie within a single segment.
func (im *Image) Write(addr uint64, data []byte) error {
	im.mu.Lock()
	defer im.mu.Unlock()

	seg, ok := im.find(addr, uint64(len(data)))
	if !ok {
		return fmt.Errorf("memory write out of bounds: addr=0x%x, length=%d", addr, len(data))
	}
	copy(seg.Data[addr-seg.Base:], data)
	return nil
}

// Segments returns a copy of the segment table ordered by base address.
func (im *Image) Segments() []Segment {
	im.mu.RLock()
	defer im.mu.RUnlock()
	out := make([]Segment, len(im.segments))
	copy(out, im.segments)
	return out
}
