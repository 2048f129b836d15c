package memory

import (
	stderrors "errors"

	"github.com/wippyai/nichefmt"
)

// Layered returns a Memory that tries each layer in order and returns the
// first successful read. Nil layers are skipped.
func Layered(layers ...nichefmt.Memory) nichefmt.Memory {
	var kept []nichefmt.Memory
	for _, l := range layers {
		if l != nil {
			kept = append(kept, l)
		}
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return layered(kept)
}

type layered []nichefmt.Memory

func (l layered) Read(addr uint64, length uint64) ([]byte, error) {
	var errs []error
	for _, m := range l {
		data, err := m.Read(addr, length)
		if err == nil {
			return data, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, stderrors.New("no memory layers")
	}
	return nil, stderrors.Join(errs...)
}
