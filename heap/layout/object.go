package layout

import "github.com/kishorenc/candor/heap/value"

// objectSize is the payload size of an Object header region: mask + map
// pointer, two words.
const objectSize = ObjectMapOffset + 8 - value.HeaderSize

// NewEmptyObject allocates an Object with a freshly-allocated, empty map
// of capacity a.InitialMapCapacity().
func NewEmptyObject(a Allocator, tenure Tenure) value.Ref {
	capacity := a.InitialMapCapacity()
	m := NewMap(a, tenure, capacity)

	addr := a.AllocateTagged(value.KindObject, tenure, objectSize)
	value.SetU64At(addr, ObjectMaskOffset, MaskForCapacity(capacity))
	value.SetU64At(addr, ObjectMapOffset, uint64(m))
	return value.FromAddr(addr)
}

// ObjectMask returns an Object's mask field.
func ObjectMask(r value.Ref) uint64 {
	return value.U64At(r.Addr(), ObjectMaskOffset)
}

// SetObjectMask rewrites an Object's mask field; called whenever its map
// is replaced by a larger one during growth.
func SetObjectMask(r value.Ref, mask uint64) {
	value.SetU64At(r.Addr(), ObjectMaskOffset, mask)
}

// ObjectMap returns an Object's map pointer.
func ObjectMap(r value.Ref) value.Ref {
	return value.Ref(value.U64At(r.Addr(), ObjectMapOffset))
}

// SetObjectMap rewrites an Object's map pointer; called after growth and
// by heap/gc after relocating the map.
func SetObjectMap(r value.Ref, m value.Ref) {
	value.SetU64At(r.Addr(), ObjectMapOffset, uint64(m))
}

// ObjectCopySize returns the total byte size (including header) of an
// Object — always fixed, mask + map pointer.
func ObjectCopySize(addr uintptr) uint32 {
	_ = addr
	return value.HeaderSize + objectSize
}
