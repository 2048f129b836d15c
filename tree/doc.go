// Package tree is a reflection host built from declared type trees.
//
// Types are described the way debug info describes them: a name, a byte
// size, and either scalar contents, struct fields at offsets, or an array
// of elements. A Value is a (type, address) pair evaluated lazily against a
// nichefmt.Memory, so children are located by offset and nothing is read
// until Unsigned is called.
//
// Enums encoded by the Rust compiler are modelled as structs whose variant
// members all sit at offset 0, the same shape LLDB presents as
// "$variants$".
//
// The fixture helpers (NewFixture, Fixture.SmolStr, Fixture.SmallVec) lay
// out real smol_str and smallvec byte patterns into a memory.Image. They
// back the decoder tests and the scene loader.
package tree
