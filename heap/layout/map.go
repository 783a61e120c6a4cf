package layout

import "github.com/kishorenc/candor/heap/value"

// NewMap allocates a Map with capacity slots, all keys and values
// initialized to value.Nil (vacant). The probing algorithm that turns
// this raw table into a property map lives in heap/maptable; this file
// only owns the byte layout: a capacity word followed by two contiguous
// blocks — C keys, then C values.
func NewMap(a Allocator, tenure Tenure, capacity uint32) value.Ref {
	addr := a.AllocateTagged(value.KindMap, tenure, MapSlotsOffset-value.HeaderSize+capacity*16)
	value.SetU64At(addr, MapCapacityOffset, uint64(capacity))
	for i := uint32(0); i < capacity; i++ {
		value.SetU64At(MapKeyAddr(value.FromAddr(addr), i), 0, uint64(value.Nil))
		value.SetU64At(MapValueAddr(value.FromAddr(addr), i), 0, uint64(value.Nil))
	}
	return value.FromAddr(addr)
}

// MapCapacity returns a Map's slot capacity C.
func MapCapacity(r value.Ref) uint32 {
	return uint32(value.U64At(r.Addr(), MapCapacityOffset))
}

// mapValuesOffset returns the byte offset of the values block, which
// starts immediately after the C-slot keys block.
func mapValuesOffset(capacity uint32) uintptr {
	return MapSlotsOffset + uintptr(capacity)*8
}

// MapKeyAddr returns the address of key slot i (0 <= i < capacity), in
// the leading keys block.
func MapKeyAddr(r value.Ref, i uint32) uintptr {
	return r.Addr() + MapSlotsOffset + uintptr(i)*8
}

// MapValueAddr returns the address of value slot i, in the trailing
// values block that starts after all C keys.
func MapValueAddr(r value.Ref, i uint32) uintptr {
	capacity := MapCapacity(r)
	return r.Addr() + mapValuesOffset(capacity) + uintptr(i)*8
}

// MapKey returns the key stored in slot i.
func MapKey(r value.Ref, i uint32) value.Ref {
	return value.Ref(value.U64At(MapKeyAddr(r, i), 0))
}

// MapValue returns the value stored in slot i.
func MapValue(r value.Ref, i uint32) value.Ref {
	return value.Ref(value.U64At(MapValueAddr(r, i), 0))
}

// SetMapKey stores key in slot i.
func SetMapKey(r value.Ref, i uint32, key value.Ref) {
	value.SetU64At(MapKeyAddr(r, i), 0, uint64(key))
}

// SetMapValue stores val in slot i.
func SetMapValue(r value.Ref, i uint32, val value.Ref) {
	value.SetU64At(MapValueAddr(r, i), 0, uint64(val))
}

// MapCopySize returns the total byte size (including header) of a Map at
// addr: header + capacity word + C key slots + C value slots.
func MapCopySize(addr uintptr) uint32 {
	capacity := uint32(value.U64At(addr, MapCapacityOffset))
	return MapSlotsOffset + capacity*16
}
