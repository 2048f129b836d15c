package memory

import (
	"context"
	"fmt"
	"math"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/wippyai/nichefmt"
	"github.com/wippyai/nichefmt/errors"
)

// WrapWasm adapts a wazero api.Memory to nichefmt.Memory.
func WrapWasm(mem api.Memory) nichefmt.Memory {
	if mem == nil {
		return nil
	}
	return &WasmMemory{Mem: mem}
}

// WasmMemory reads WebAssembly linear memory. Addresses are guest offsets.
type WasmMemory struct {
	Mem api.Memory
}

// Read reads bytes from linear memory.
func (m *WasmMemory) Read(addr uint64, length uint64) ([]byte, error) {
	if addr > math.MaxUint32 || length > math.MaxUint32 {
		return nil, fmt.Errorf("memory read out of bounds: addr=0x%x, length=%d exceeds 32-bit space", addr, length)
	}
	data, ok := m.Mem.Read(uint32(addr), uint32(length))
	if !ok {
		return nil, fmt.Errorf("memory read out of bounds: addr=0x%x, length=%d", addr, length)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Size reports the current size of linear memory in bytes.
func (m *WasmMemory) Size() uint64 {
	return uint64(m.Mem.Size())
}

// WasmInstance is a module instantiated for inspection only; no start
// function has run.
type WasmInstance struct {
	rt     wazero.Runtime
	module api.Module
	mem    *WasmMemory
}

// OpenWasm instantiates wasmBytes with WASI preview1 available and without
// running start functions, so memory holds exactly the module's data segments.
func OpenWasm(ctx context.Context, wasmBytes []byte) (*WasmInstance, error) {
	rt := wazero.NewRuntime(ctx)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		rt.Close(ctx)
		return nil, errors.Load("instantiate wasi", err)
	}

	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		rt.Close(ctx)
		return nil, errors.Load("compile wasm module", err)
	}

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithStartFunctions())
	if err != nil {
		rt.Close(ctx)
		return nil, errors.Load("instantiate wasm module", err)
	}

	mem := mod.Memory()
	if mem == nil {
		rt.Close(ctx)
		return nil, errors.Load("module defines no memory", nil)
	}

	return &WasmInstance{rt: rt, module: mod, mem: &WasmMemory{Mem: mem}}, nil
}

// Memory returns the instance's linear memory.
func (w *WasmInstance) Memory() *WasmMemory {
	return w.mem
}

// Close releases the runtime and the instance.
func (w *WasmInstance) Close(ctx context.Context) error {
	return w.rt.Close(ctx)
}
