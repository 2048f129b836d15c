//go:build linux

package memory

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/wippyai/nichefmt/errors"
)

// Process reads the address space of a live process through /proc/<pid>/mem.
type Process struct {
	file *os.File
	pid  int
}

// OpenProcess opens /proc/<pid>/mem for reading. The caller needs ptrace
// access to the target.
func OpenProcess(pid int) (*Process, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/mem", pid))
	if err != nil {
		return nil, errors.Load(fmt.Sprintf("open memory of pid %d", pid), err)
	}
	return &Process{file: f, pid: pid}, nil
}

// Pid returns the process id.
func (p *Process) Pid() int {
	return p.pid
}

// Read reads length bytes at addr. A short read is a failure, as is a
// length above MaxProcessRead.
func (p *Process) Read(addr uint64, length uint64) ([]byte, error) {
	if err := checkProcessRead(addr, length); err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	var done uint64
	for done < length {
		n, err := unix.Pread(int(p.file.Fd()), buf[done:], int64(addr+done))
		if err != nil {
			return nil, fmt.Errorf("pread pid %d at 0x%x: %w", p.pid, addr+done, err)
		}
		if n == 0 {
			return nil, fmt.Errorf("short read pid %d at 0x%x: got %d of %d bytes", p.pid, addr, done, length)
		}
		done += uint64(n)
	}
	return buf, nil
}

// Close closes the memory file.
func (p *Process) Close() error {
	return p.file.Close()
}
