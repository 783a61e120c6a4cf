package layout

import "github.com/kishorenc/candor/heap/value"

// numberSize is the payload size of a boxed Number: one float64.
const numberSize = 8

// NewBoxedNumber allocates a boxed Number holding v. A boxed Number is
// only ever constructed for values that cannot round-trip through an
// unboxed integer tag — integers prefer the unboxed representation
// (value.Tag), chosen once at allocation and never revisited for the
// same logical value.
func NewBoxedNumber(a Allocator, tenure Tenure, v float64) value.Ref {
	addr := a.AllocateTagged(value.KindNumber, tenure, numberSize)
	value.SetF64At(addr, NumberValueOffset, v)
	return value.FromAddr(addr)
}

// BoxedNumberValue reads a boxed Number's float64 payload.
func BoxedNumberValue(r value.Ref) float64 {
	return value.F64At(r.Addr(), NumberValueOffset)
}

// NumberCopySize returns the total byte size (including header) of a
// boxed Number — always fixed.
func NumberCopySize(addr uintptr) uint32 {
	_ = addr
	return value.HeaderSize + numberSize
}
