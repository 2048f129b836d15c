// Package smallvec decodes smallvec::SmallVec<T, N> values from raw process
// memory.
//
// The first word of a SmallVec is a tagged length: bit 0 set means the
// elements live in a heap buffer, and the element count is the word shifted
// right by one. The remaining bytes are a union of the inline [T; N] array
// and a (pointer, capacity) pair.
//
// Elements are never read eagerly. ElementAt builds a typed view at
// BaseAddress + i*size on demand, and Elements walks those views lazily.
package smallvec
