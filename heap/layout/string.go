package layout

import "github.com/kishorenc/candor/heap/value"

// NewString allocates a String of length bytes, copying contents in and
// leaving the hash field zeroed (uncached). NewUninitializedString covers
// the case where the caller fills the bytes itself (e.g. concatenation).
func NewString(a Allocator, tenure Tenure, contents []byte) value.Ref {
	r := NewUninitializedString(a, tenure, uint32(len(contents)))
	copy(value.BytesAt(r.Addr(), StringBytesOffset, uint32(len(contents))), contents)
	return r
}

// NewUninitializedString allocates a String of length bytes with its
// content left uninitialized (zero) and its hash uncached. The byte area
// is padded up to a multiple of 8 so the next object stays word-aligned.
func NewUninitializedString(a Allocator, tenure Tenure, length uint32) value.Ref {
	addr := a.AllocateTagged(value.KindString, tenure, StringBytesOffset-value.HeaderSize+(length+7)&^7)
	value.SetU32At(addr, StringHashOffset, 0)
	value.SetU32At(addr, StringLengthOffset, length)
	return value.FromAddr(addr)
}

// StringLength returns a String's byte length.
func StringLength(r value.Ref) uint32 {
	return value.U32At(r.Addr(), StringLengthOffset)
}

// StringBytes returns a slice view of a String's contents. The slice
// aliases heap memory directly and must not be retained across a
// safepoint.
func StringBytes(r value.Ref) []byte {
	return value.BytesAt(r.Addr(), StringBytesOffset, StringLength(r))
}

// computeHash is the byte-wise mixing function used to hash a String's
// contents. It is a FNV-1a variant: simple and well distributed.
// StringHash substitutes 1 whenever this would otherwise yield 0 for a
// nonempty string.
func computeHash(b []byte) uint32 {
	const offsetBasis uint32 = 2166136261
	const prime uint32 = 16777619
	h := offsetBasis
	for _, c := range b {
		h ^= uint32(c)
		h *= prime
	}
	return h
}

// StringHash returns the cached hash, computing and caching it on first
// use. A zero result from the mixing function is substituted with 1 so
// it never collides with the "uncached" sentinel; this substitution only
// matters for a nonempty string, since an empty string's hash is
// well-defined as the offset basis (nonzero already).
func StringHash(r value.Ref) uint32 {
	addr := r.Addr()
	h := value.U32At(addr, StringHashOffset)
	if h != 0 {
		return h
	}
	h = computeHash(StringBytes(r))
	if h == 0 {
		h = 1
	}
	value.SetU32At(addr, StringHashOffset, h)
	return h
}

// StringEqualBytes compares a String's contents to b: length first, then
// bytes — the tag-aware equality heap/maptable uses for string keys.
func StringEqualBytes(r value.Ref, b []byte) bool {
	if int(StringLength(r)) != len(b) {
		return false
	}
	a := StringBytes(r)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// StringCopySize returns the total byte size (including header) of a
// String at addr: header + hash + length + L bytes, with L padded up to a
// multiple of 8 (the same padding NewUninitializedString requested).
func StringCopySize(addr uintptr) uint32 {
	length := value.U32At(addr, StringLengthOffset)
	return StringBytesOffset + (length+7)&^7
}
