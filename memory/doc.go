// Package memory provides Memory implementations for the inspected address space.
//
// # Image
//
// An Image is a set of non-overlapping segments, each a byte slice mapped at
// a base address. It stands in for a core dump or a frozen snapshot:
//
//	img := memory.NewImage()
//	img.Map(0x1000, data)
//	b, err := img.Read(0x1004, 4)
//
// Segments can be loaded from disk with LoadSegment, which understands
// zstd (.zst) and LZ4 frame (.lz4) compression and an optional BLAKE3
// checksum guarding against stale images.
//
// # WebAssembly
//
// WrapWasm adapts a wazero api.Memory so guest linear memory can be
// inspected. OpenWasm instantiates a module without running it so that
// its data segments are laid out in memory.
//
// # Live processes
//
// OpenProcess reads /proc/<pid>/mem on Linux. Reads against a running
// process are not a consistent snapshot; callers treat a failed read as an
// ordinary outcome.
//
// # Tracing
//
// Trace wraps any Memory and logs each read at debug level.
package memory
