// Package layout describes where the decoders find things inside a value.
//
// A Path is a sequence of child names walked from a value handle. Each
// layout struct names the paths for one family of types together with the
// binary-contract constants that go with them:
//
//	StringLayout   smol_str::SmolStr
//	  repr = ChildAt(0) of the raw value
//	  $variants$.$variant$24.$discr$        discriminant (0..23 inline, 24 static, >=25 heap)
//	  $variants$.$variant$.value.buf        inline bytes
//	  $variants$.$variant$24.value.__0      &'static str {data_ptr, length}
//	  $variants$.$variant$25.value.__0.ptr.pointer   Arc<str> {data_ptr, length}
//
//	VectorLayout   smallvec::SmallVec<T, N>
//	  len.__0                               tagged length (bit 0 = heap)
//	  raw.heap.__0.pointer                  heap buffer
//	  raw.inline.value.value.value          first inline slot
//
// TryResolve is the only way decoders touch structure: it either yields the
// child or a field_missing error naming the full path walked so far.
package layout
