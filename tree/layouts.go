package tree

import (
	"fmt"
)

var smolStrType = newSmolStrType()

// SmolStrType returns the declared layout of smol_str::SmolStr (24 bytes).
//
//	offset 0      u8 discriminant / inline length
//	offset 1..24  inline bytes
//	offset 8      data pointer (static &str or Arc<str>)
//	offset 16     length
func SmolStrType() *Type {
	return smolStrType
}

func newSmolStrType() *Type {
	fatPtr := func(name string) *Type {
		return Struct(name, 16, F("data_ptr", 0, BytePtr), F("length", 8, Usize))
	}

	inline := Struct("smol_str::Repr::Inline", 24,
		F("len", 0, U8),
		F("buf", 1, Array(U8, 23)),
	)
	static := Struct("smol_str::Repr::Static", 24,
		F("__0", 8, fatPtr("&str")),
	)
	arc := Struct("alloc::sync::Arc<str>", 16,
		F("ptr", 0, Struct("core::ptr::non_null::NonNull<alloc::sync::ArcInner<str>>", 16,
			F("pointer", 0, fatPtr("*const alloc::sync::ArcInner<str>")),
		)),
	)
	heap := Struct("smol_str::Repr::Heap", 24, F("__0", 8, arc))

	variants := Struct("smol_str::Repr::$variants$", 24,
		F("$variant$", 0, Struct("$variant$", 24, F("value", 0, inline))),
		F("$variant$24", 0, Struct("$variant$24", 24, F("$discr$", 0, U8), F("value", 0, static))),
		F("$variant$25", 0, Struct("$variant$25", 24, F("$discr$", 0, U8), F("value", 0, heap))),
	)
	repr := Struct("smol_str::Repr", 24, F("$variants$", 0, variants))
	return Struct("smol_str::SmolStr", 24, F("__0", 0, repr))
}

// SmallVecType returns the declared layout of smallvec::SmallVec<elem, inline>.
//
//	offset 0  tagged length (count << 1 | heap)
//	offset 8  inline [elem; inline] or (heap pointer, capacity)
func SmallVecType(elem *Type, inline uint64) *Type {
	inlineBytes := elem.size * inline
	rawSize := max(inlineBytes, 16)
	rawSize = (rawSize + 7) &^ 7

	arr := Array(elem, inline)
	wrapped := Struct(fmt.Sprintf("core::mem::manually_drop::ManuallyDrop<%s>", arr.name), inlineBytes,
		F("value", 0, arr))
	uninit := Struct(fmt.Sprintf("core::mem::maybe_uninit::MaybeUninit<%s>", arr.name), inlineBytes,
		F("value", 0, wrapped))
	outer := Struct(fmt.Sprintf("core::mem::manually_drop::ManuallyDrop<core::mem::maybe_uninit::MaybeUninit<%s>>", arr.name), inlineBytes,
		F("value", 0, uninit))

	nonNull := Struct(fmt.Sprintf("core::ptr::non_null::NonNull<%s>", elem.name), PointerSize,
		F("pointer", 0, Pointer(fmt.Sprintf("*const %s", elem.name))))
	heap := Struct(fmt.Sprintf("(core::ptr::non_null::NonNull<%s>, usize)", elem.name), 16,
		F("__0", 0, nonNull),
		F("__1", 8, Usize),
	)

	raw := Struct(fmt.Sprintf("smallvec::RawSmallVec<%s, %d>", elem.name, inline), rawSize,
		F("inline", 0, outer),
		F("heap", 0, heap),
	)
	tagged := Struct("smallvec::TaggedLen", 8, F("__0", 0, Usize))

	return Struct(fmt.Sprintf("smallvec::SmallVec<%s, %d>", elem.name, inline), 8+rawSize,
		F("len", 0, tagged),
		F("raw", 8, raw),
	).WithArgs(elem)
}
