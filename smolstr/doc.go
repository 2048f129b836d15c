// Package smolstr decodes smol_str::SmolStr values from raw process memory.
//
// A SmolStr is 24 bytes. Its first byte is a niche-packed discriminant:
//
//	0..23   Inline: the discriminant is the length, bytes follow in place
//	24      Static: a &'static str (data pointer + length)
//	>= 25   Heap:   an Arc<str>; the pointer addresses the ArcInner, whose
//	        two 8-byte counters (strong, weak) precede the text
//
// Decode never fails. Any missing field, failed read or undecodable byte
// sequence collapses to the zero Record. TryDecode returns the same record
// together with the error that caused the collapse, for callers that want
// to know why.
//
// Invalid UTF-8 is not an error: each bad byte becomes U+FFFD.
package smolstr
