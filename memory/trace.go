package memory

import (
	"go.uber.org/zap"

	"github.com/wippyai/nichefmt"
)

// Trace wraps m so every read is logged at debug level.
func Trace(m nichefmt.Memory, log *zap.Logger) nichefmt.Memory {
	if m == nil {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &traced{mem: m, log: log}
}

type traced struct {
	mem nichefmt.Memory
	log *zap.Logger
}

func (t *traced) Read(addr uint64, length uint64) ([]byte, error) {
	data, err := t.mem.Read(addr, length)
	if err != nil {
		t.log.Debug("memory read failed",
			zap.Uint64("addr", addr),
			zap.Uint64("length", length),
			zap.Error(err))
		return nil, err
	}
	t.log.Debug("memory read",
		zap.Uint64("addr", addr),
		zap.Uint64("length", length))
	return data, nil
}
