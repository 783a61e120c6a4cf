package layout

import "github.com/kishorenc/candor/heap/value"

// arraySize is the payload size of an Array header region: mask, map
// pointer, and length, three words.
const arraySize = ArrayLengthOffset + 8 - value.HeaderSize

// NewEmptyArray allocates an Array with a freshly-allocated, empty map of
// capacity a.InitialMapCapacity() and length 0.
func NewEmptyArray(a Allocator, tenure Tenure) value.Ref {
	capacity := a.InitialMapCapacity()
	m := NewMap(a, tenure, capacity)

	addr := a.AllocateTagged(value.KindArray, tenure, arraySize)
	value.SetU64At(addr, ArrayMaskOffset, MaskForCapacity(capacity))
	value.SetU64At(addr, ArrayMapOffset, uint64(m))
	value.SetU64At(addr, ArrayLengthOffset, 0)
	return value.FromAddr(addr)
}

// ArrayMask returns an Array's mask field.
func ArrayMask(r value.Ref) uint64 {
	return value.U64At(r.Addr(), ArrayMaskOffset)
}

// SetArrayMask rewrites an Array's mask field.
func SetArrayMask(r value.Ref, mask uint64) {
	value.SetU64At(r.Addr(), ArrayMaskOffset, mask)
}

// ArrayMap returns an Array's map pointer.
func ArrayMap(r value.Ref) value.Ref {
	return value.Ref(value.U64At(r.Addr(), ArrayMapOffset))
}

// SetArrayMap rewrites an Array's map pointer.
func SetArrayMap(r value.Ref, m value.Ref) {
	value.SetU64At(r.Addr(), ArrayMapOffset, uint64(m))
}

// ArrayStoredLength returns the raw length field, without consulting the
// map for a possible shrink. Use heap/maptable.ArrayLength for the
// accessor that performs the shrink walk.
func ArrayStoredLength(r value.Ref) int64 {
	return int64(value.U64At(r.Addr(), ArrayLengthOffset))
}

// SetArrayLength rewrites the length field directly.
func SetArrayLength(r value.Ref, length int64) {
	value.SetU64At(r.Addr(), ArrayLengthOffset, uint64(length))
}

// ArrayCopySize returns the total byte size (including header) of an
// Array — always fixed, mask + map pointer + length.
func ArrayCopySize(addr uintptr) uint32 {
	_ = addr
	return value.HeaderSize + arraySize
}
