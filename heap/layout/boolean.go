package layout

import "github.com/kishorenc/candor/heap/value"

// booleanSize is the payload size of a Boolean: a single byte, stored in
// a full word so the object stays word-sized.
const booleanSize = 8

// NewBoolean allocates a Boolean holding v.
func NewBoolean(a Allocator, tenure Tenure, v bool) value.Ref {
	addr := a.AllocateTagged(value.KindBoolean, tenure, booleanSize)
	var b byte
	if v {
		b = 1
	}
	value.SetByteAt(addr, BooleanValueOffset, b)
	return value.FromAddr(addr)
}

// BooleanIsTrue reports whether r holds true.
func BooleanIsTrue(r value.Ref) bool {
	return value.ByteAt(r.Addr(), BooleanValueOffset) != 0
}

// BooleanIsFalse reports whether r holds false.
func BooleanIsFalse(r value.Ref) bool {
	return !BooleanIsTrue(r)
}

// BooleanCopySize returns the total byte size (including header) of a
// Boolean object — always fixed.
func BooleanCopySize(addr uintptr) uint32 {
	_ = addr
	return value.HeaderSize + booleanSize
}
