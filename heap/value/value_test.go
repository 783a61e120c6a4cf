package value

import (
	"testing"
	"unsafe"
)

// uintptrOf returns the address of buf's backing array, for tests that
// need a real (8-byte-aligned-by-convention) address to read/write
// through the raw accessors. Tests size buf generously and only touch
// offsets well within bounds.
func uintptrOf(buf []byte) uintptr {
	return uintptr(unsafe.Pointer(&buf[0]))
}

func TestTagUntagRoundTrip(t *testing.T) {
	tests := []int64{0, 1, -1, 42, -42, MaxSmallInt, MinSmallInt}
	for _, n := range tests {
		if got := Untag(Tag(n)); got != n {
			t.Errorf("Untag(Tag(%d)) = %d, want %d", n, got, n)
		}
	}
}

func TestTagSetsUnboxedIntBit(t *testing.T) {
	r := Tag(5)
	if !r.IsUnboxedInt() {
		t.Error("Tag(5) should be an unboxed int")
	}
	if r.IsHeapPointer() {
		t.Error("Tag(5) should not be a heap pointer")
	}
}

func TestNilIsNeitherIntNorPointer(t *testing.T) {
	if !Nil.IsNil() {
		t.Error("Nil.IsNil() = false")
	}
	if Nil.IsUnboxedInt() {
		t.Error("Nil should not be an unboxed int")
	}
	if Nil.IsHeapPointer() {
		t.Error("Nil should not be a heap pointer")
	}
}

func TestAddrPanicsOnNonPointer(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Addr on an unboxed int should panic")
		}
	}()
	Tag(1).Addr()
}

func TestFromAddrPanicsOnMisalignedAddress(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("FromAddr on a misaligned address should panic")
		}
	}()
	FromAddr(3)
}

func TestFromAddrAcceptsZero(t *testing.T) {
	if FromAddr(0) != Nil {
		t.Error("FromAddr(0) should equal Nil")
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	buf := make([]byte, 64)
	addr := uintptrOf(buf)

	WriteHeader(addr, KindNumber, 3)
	k, gen := ReadHeader(addr)
	if k != KindNumber {
		t.Errorf("kind = %v, want Number", k)
	}
	if gen != 3 {
		t.Errorf("generation = %d, want 3", gen)
	}
}

func TestBumpGenerationSaturates(t *testing.T) {
	buf := make([]byte, 64)
	addr := uintptrOf(buf)
	WriteHeader(addr, KindString, MaxGeneration)

	got := BumpGeneration(addr)
	if got != MaxGeneration {
		t.Errorf("BumpGeneration at ceiling = %d, want %d (saturating)", got, uint8(MaxGeneration))
	}
}

func TestGCMarkRoundTrip(t *testing.T) {
	buf := make([]byte, 64)
	addr := uintptrOf(buf)
	WriteHeader(addr, KindObject, 0)

	if IsGCMarked(addr) {
		t.Fatal("fresh header should not be marked")
	}
	SetGCMark(addr, 0x1000)
	if !IsGCMarked(addr) {
		t.Fatal("header should be marked after SetGCMark")
	}
	if got := GetGCMark(addr); got != 0x1000 {
		t.Errorf("GetGCMark = %#x, want 0x1000", got)
	}
}

func TestReadHeaderPanicsWhenForwarded(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("ReadHeader on a forwarded header should panic")
		}
	}()
	buf := make([]byte, 64)
	addr := uintptrOf(buf)
	SetGCMark(addr, 0x1000)
	ReadHeader(addr)
}

func TestRawKindSurvivesForwarding(t *testing.T) {
	buf := make([]byte, 64)
	addr := uintptrOf(buf)
	WriteHeader(addr, KindArray, 0)
	SetGCMark(addr, 0x2000)

	if got := RawKind(addr); got != kindForwarded {
		t.Errorf("RawKind after marking = %v, want the forwarded marker", got)
	}
}

func TestWordAccessorsRoundTrip(t *testing.T) {
	buf := make([]byte, 64)
	addr := uintptrOf(buf)

	SetU64At(addr, 8, 0xdeadbeef)
	if got := U64At(addr, 8); got != 0xdeadbeef {
		t.Errorf("U64At = %#x, want 0xdeadbeef", got)
	}

	SetU32At(addr, 16, 42)
	if got := U32At(addr, 16); got != 42 {
		t.Errorf("U32At = %d, want 42", got)
	}

	SetF64At(addr, 24, 2.5)
	if got := F64At(addr, 24); got != 2.5 {
		t.Errorf("F64At = %v, want 2.5", got)
	}

	SetByteAt(addr, 32, 0x7f)
	if got := ByteAt(addr, 32); got != 0x7f {
		t.Errorf("ByteAt = %#x, want 0x7f", got)
	}

	copy(BytesAt(addr, 40, 4), []byte{1, 2, 3, 4})
	if got := BytesAt(addr, 40, 4); got[0] != 1 || got[3] != 4 {
		t.Errorf("BytesAt round trip = %v, want [1 2 3 4]", got)
	}
}

func TestBytesAtZeroLengthReturnsNil(t *testing.T) {
	buf := make([]byte, 64)
	addr := uintptrOf(buf)
	if got := BytesAt(addr, 0, 0); got != nil {
		t.Errorf("BytesAt with length 0 = %v, want nil", got)
	}
}
