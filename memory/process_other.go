//go:build !linux

package memory

import (
	"github.com/wippyai/nichefmt/errors"
)

// Process is unavailable on this platform.
type Process struct {
	pid int
}

// OpenProcess always fails outside Linux.
func OpenProcess(pid int) (*Process, error) {
	return nil, errors.Unsupported(errors.PhaseLoad, "live process memory requires /proc")
}

// Pid returns the process id.
func (p *Process) Pid() int {
	return p.pid
}

// Read always fails outside Linux.
func (p *Process) Read(addr uint64, length uint64) ([]byte, error) {
	return nil, errors.Unsupported(errors.PhaseRead, "live process memory requires /proc")
}

// Close is a no-op.
func (p *Process) Close() error {
	return nil
}
