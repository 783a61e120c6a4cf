// Package maptable implements property lookup and insertion over the
// open-addressed Map tables heap/layout allocates for every Object and
// Array: hash normalization, linear probing, tag-aware key equality, and
// grow-by-doubling on a full scan.
package maptable

import (
	"github.com/kishorenc/candor/heap/layout"
	"github.com/kishorenc/candor/heap/value"
)

// Holder is anything with a mask and a map pointer that can grow: Object
// and Array both qualify, via the adapters in this package.
type Holder interface {
	Mask() uint64
	SetMask(uint64)
	Map() value.Ref
	SetMap(value.Ref)
}

type objectHolder struct{ r value.Ref }

func (h objectHolder) Mask() uint64       { return layout.ObjectMask(h.r) }
func (h objectHolder) SetMask(m uint64)   { layout.SetObjectMask(h.r, m) }
func (h objectHolder) Map() value.Ref     { return layout.ObjectMap(h.r) }
func (h objectHolder) SetMap(m value.Ref) { layout.SetObjectMap(h.r, m) }

// ObjectHolder adapts an Object Ref to Holder.
func ObjectHolder(r value.Ref) Holder { return objectHolder{r} }

type arrayHolder struct{ r value.Ref }

func (h arrayHolder) Mask() uint64       { return layout.ArrayMask(h.r) }
func (h arrayHolder) SetMask(m uint64)   { layout.SetArrayMask(h.r, m) }
func (h arrayHolder) Map() value.Ref     { return layout.ArrayMap(h.r) }
func (h arrayHolder) SetMap(m value.Ref) { layout.SetArrayMap(h.r, m) }

// ArrayHolder adapts an Array Ref to Holder.
func ArrayHolder(r value.Ref) Holder { return arrayHolder{r} }

// Allocator is the subset of layout.Allocator maptable needs to grow a
// map (allocate the doubled replacement).
type Allocator = layout.Allocator

// integerHash mixes an unboxed integer's payload into a 32-bit hash.
// A 32-bit avalanche mix (Murmur3 finalizer), applied to the tagged
// value's untagged payload.
func integerHash(n int64) uint32 {
	h := uint32(n)
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}

// addressHash hashes a heap value by its address, for keys that are
// neither unboxed integers nor Strings: everything else is hashed by
// pointer identity.
func addressHash(r value.Ref) uint32 {
	return integerHash(int64(r.Addr()))
}

// hashKey normalizes any tagged value K to a 32-bit hash.
func hashKey(k value.Ref) uint32 {
	switch {
	case k.IsUnboxedInt():
		return integerHash(value.Untag(k))
	case k.IsHeapPointer() && value.RawKind(k.Addr()) == value.KindString:
		return layout.StringHash(k)
	default:
		return addressHash(k)
	}
}

// keyEqual implements tag-aware key equality: unboxed integers compare
// by value, strings by length-then-bytes, everything else by pointer
// identity (address equality, since Ref already is the address for heap
// pointers).
func keyEqual(a, b value.Ref) bool {
	if a == b {
		return true
	}
	aIsInt, bIsInt := a.IsUnboxedInt(), b.IsUnboxedInt()
	if aIsInt || bIsInt {
		return false // a == b already covered equal unboxed ints
	}
	if !a.IsHeapPointer() || !b.IsHeapPointer() {
		return false
	}
	aKind, bKind := value.RawKind(a.Addr()), value.RawKind(b.Addr())
	if aKind != value.KindString || bKind != value.KindString {
		return false // distinct addresses, not both strings: not equal
	}
	return layout.StringEqualBytes(a, layout.StringBytes(b))
}

// Absent is the sentinel MapValueAddr-style result returned by Lookup
// when insert is false and the key was never found.
const Absent uintptr = 0

// Lookup probes h's map starting at (hash(k) & mask)/8, scanning for an
// equal key or a nil (vacant) slot. If a vacant slot is hit and insert is
// true, k is stored there. Growth (doubling and rehashing) happens when a
// full scan finds neither an equal key nor a vacant slot.
//
// Lookup returns the address of the matching (or newly inserted) value
// slot, or Absent if insert is false and k was never found.
func Lookup(a Allocator, h Holder, k value.Ref, insert bool) uintptr {
	for {
		m := h.Map()
		capacity := layout.MapCapacity(m)
		mask := h.Mask()
		idx := (hashKey(k) & uint32(mask)) / 8 % capacity

		for i := uint32(0); i < capacity; i++ {
			slot := (idx + i) % capacity
			existing := layout.MapKey(m, slot)

			if existing == value.Nil {
				if !insert {
					return Absent
				}
				layout.SetMapKey(m, slot, k)
				return layout.MapValueAddr(m, slot)
			}
			if keyEqual(existing, k) {
				return layout.MapValueAddr(m, slot)
			}
		}

		if !insert {
			return Absent
		}

		// Full scan found neither an equal key nor a vacant slot: grow
		// and loop again against the freshly doubled map.
		grow(a, h)
	}
}

// grow allocates a map of double h's current capacity, rehashes every
// existing key into it, and publishes it as h's new map.
func grow(a Allocator, h Holder) {
	old := h.Map()
	oldCapacity := layout.MapCapacity(old)
	newCapacity := oldCapacity * 2

	fresh := layout.NewMap(a, layout.TenureNew, newCapacity)
	freshHolder := &mapOnlyHolder{m: fresh, mask: layout.MaskForCapacity(newCapacity)}

	for i := uint32(0); i < oldCapacity; i++ {
		key := layout.MapKey(old, i)
		if key == value.Nil {
			continue
		}
		val := layout.MapValue(old, i)
		slot := Lookup(a, freshHolder, key, true)
		value.SetU64At(slot, 0, uint64(val))
	}

	h.SetMap(fresh)
	h.SetMask(layout.MaskForCapacity(newCapacity))
}

// mapOnlyHolder is a throwaway Holder used only while rehashing into a
// brand new map that is guaranteed never to need to grow again within
// grow's own loop (capacity already doubled to fit every existing key).
type mapOnlyHolder struct {
	m    value.Ref
	mask uint64
}

func (h *mapOnlyHolder) Mask() uint64       { return h.mask }
func (h *mapOnlyHolder) SetMask(m uint64)   { h.mask = m }
func (h *mapOnlyHolder) Map() value.Ref     { return h.m }
func (h *mapOnlyHolder) SetMap(m value.Ref) { h.m = m }

// ArrayLength returns an Array's effective length, performing a backward
// shrink walk: consult the map for nil tail entries starting at the
// stored length and rewrite the length field if any trailing entries are
// absent/nil. This is the only accessor in the whole heap that mutates on
// read.
func ArrayLength(r value.Ref) int64 {
	length := layout.ArrayStoredLength(r)
	h := ArrayHolder(r)

	shrunk := length
	for shrunk > 0 {
		key := value.Tag(shrunk - 1)
		slot := Lookup(nil, h, key, false)
		if slot != Absent && value.Ref(value.U64At(slot, 0)) != value.Nil {
			break // the slot just below shrunk holds a real value: stop
		}
		shrunk--
	}

	if shrunk != length {
		layout.SetArrayLength(r, shrunk)
	}
	return shrunk
}
