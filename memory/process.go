package memory

import (
	"fmt"
	"math"

	"github.com/wippyai/nichefmt/errors"
)

// MaxProcessRead is the largest single read a Process serves. Lengths come
// from the inspected process itself, so a corrupted one must fail before
// a buffer is allocated for it.
const MaxProcessRead = 64 << 20

func checkProcessRead(addr, length uint64) error {
	switch {
	case addr > math.MaxInt64:
		return errors.ReadFailed(nil, addr, length, fmt.Errorf("address beyond the file offset range"))
	case length > MaxProcessRead:
		return errors.ReadFailed(nil, addr, length, fmt.Errorf("length exceeds the %d byte read limit", MaxProcessRead))
	case addr+length < addr || addr+length > math.MaxInt64:
		return errors.ReadFailed(nil, addr, length, fmt.Errorf("range wraps the address space"))
	}
	return nil
}
