package layout

import "github.com/kishorenc/candor/heap/value"

// NewCData allocates an opaque foreign-data blob of len(payload) bytes,
// copying payload in. CData holds raw bytes handed in by native code
// that the collector must relocate but never interpret. The payload area
// is padded up to a multiple of 8 so the next object stays word-aligned.
func NewCData(a Allocator, tenure Tenure, payload []byte) value.Ref {
	size := uint32(len(payload))
	addr := a.AllocateTagged(value.KindCData, tenure, CDataBytesOffset-value.HeaderSize+(size+7)&^7)
	value.SetU32At(addr, CDataSizeOffset, size)
	if size > 0 {
		copy(value.BytesAt(addr, CDataBytesOffset, size), payload)
	}
	return value.FromAddr(addr)
}

// CDataSize returns the payload's byte length.
func CDataSize(r value.Ref) uint32 {
	return value.U32At(r.Addr(), CDataSizeOffset)
}

// CDataBytes returns a slice view of the payload. The slice aliases heap
// memory directly and must not be retained across a safepoint.
func CDataBytes(r value.Ref) []byte {
	return value.BytesAt(r.Addr(), CDataBytesOffset, CDataSize(r))
}

// CDataCopySize returns the total byte size (including header) of a
// CData object at addr: header + size word + payload, with the payload
// padded up to a multiple of 8 (the same padding NewCData requested).
func CDataCopySize(addr uintptr) uint32 {
	size := value.U32At(addr, CDataSizeOffset)
	return CDataBytesOffset + (size+7)&^7
}
