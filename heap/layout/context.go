package layout

import "github.com/kishorenc/candor/heap/value"

// NewContext allocates a Context with len(slots) value slots, all
// initialized from slots, and a nil parent. Contexts always tenure
// directly into old-space: function activation records tend to be
// long-lived relative to young-space collection cycles.
func NewContext(a Allocator, slots []value.Ref) value.Ref {
	n := uint32(len(slots))
	addr := a.AllocateTagged(value.KindContext, TenureOld, ContextSlotsOffset-value.HeaderSize+n*8)

	value.SetU64At(addr, ContextParentOffset, uint64(value.Nil))
	value.SetU64At(addr, ContextSlotCountOffset, uint64(n))
	for i, s := range slots {
		value.SetU64At(addr, uintptr(ContextSlotsOffset+i*8), uint64(s))
	}
	return value.FromAddr(addr)
}

// ContextSlotCount returns a Context's slot count N.
func ContextSlotCount(r value.Ref) uint32 {
	return uint32(value.U64At(r.Addr(), ContextSlotCountOffset))
}

// ContextHasSlot reports whether index is within [0, N).
func ContextHasSlot(r value.Ref, index uint32) bool {
	return index < ContextSlotCount(r)
}

// ContextGetSlot returns the value stored at index. It panics if index
// is out of range.
func ContextGetSlot(r value.Ref, index uint32) value.Ref {
	if !ContextHasSlot(r, index) {
		panic("layout: ContextGetSlot index out of range")
	}
	return value.Ref(value.U64At(r.Addr(), uintptr(ContextSlotsOffset+index*8)))
}

// ContextSetSlot stores val at index. It panics if index is out of range.
func ContextSetSlot(r value.Ref, index uint32, val value.Ref) {
	if !ContextHasSlot(r, index) {
		panic("layout: ContextSetSlot index out of range")
	}
	value.SetU64At(r.Addr(), uintptr(ContextSlotsOffset+index*8), uint64(val))
}

// ContextParent returns the parent context pointer: value.Nil (no
// parent), BindingContextTag (bound to the foreign binding, not a
// dereferenceable Context), or a real Context Ref.
func ContextParent(r value.Ref) value.Ref {
	return value.Ref(value.U64At(r.Addr(), ContextParentOffset))
}

// ContextHasParent reports whether the context chain continues past r.
func ContextHasParent(r value.Ref) bool {
	p := ContextParent(r)
	return p != value.Nil && p != BindingContextTag
}

// SetContextParent rewrites r's parent pointer; used both to link a new
// context into its enclosing scope and by heap/gc to rewrite the parent
// slot after evacuation.
func SetContextParent(r value.Ref, parent value.Ref) {
	value.SetU64At(r.Addr(), ContextParentOffset, uint64(parent))
}

// ContextCopySize returns the number of bytes heap/gc must memcpy for a
// Context at addr, including its header.
func ContextCopySize(addr uintptr) uint32 {
	n := uint32(value.U64At(addr, ContextSlotCountOffset))
	return ContextSlotsOffset + n*8
}
