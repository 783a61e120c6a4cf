// Package snapshot produces a CBOR-encodable, point-in-time summary of a
// Heap's occupancy — a debugging/observability surface, never a
// persistence or resurrection format. The heap itself is purely
// in-memory and has no on-disk representation.
package snapshot

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// SpaceStats summarizes one Space's occupancy.
type SpaceStats struct {
	PageCount uint32 `cbor:"page_count"`
	PageSize  uint32 `cbor:"page_size"`
	Size      uint32 `cbor:"size"`
	SizeLimit uint32 `cbor:"size_limit"`
}

// KindCount records how many live objects of one kind were observed.
type KindCount struct {
	Kind  string `cbor:"kind"`
	Count uint32 `cbor:"count"`
}

// Heap is a point-in-time summary of a heap's occupancy: space
// bookkeeping, per-kind live object counts, and reference-registry
// sizes. It is produced by walking pages directly — no GC is triggered
// to build one.
type Heap struct {
	NewSpace SpaceStats `cbor:"new_space"`
	OldSpace SpaceStats `cbor:"old_space"`

	NewSpaceKinds []KindCount `cbor:"new_space_kinds"`
	OldSpaceKinds []KindCount `cbor:"old_space_kinds"`

	StrongReferenceCount int `cbor:"strong_reference_count"`
	WeakReferenceCount   int `cbor:"weak_reference_count"`

	NeedsGC byte `cbor:"needs_gc"`
}

// Marshal serializes h to canonical CBOR bytes.
func Marshal(h *Heap) ([]byte, error) {
	return cborEncMode.Marshal(h)
}

// Unmarshal deserializes a Heap snapshot from CBOR bytes.
func Unmarshal(data []byte) (*Heap, error) {
	var h Heap
	if err := cbor.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	return &h, nil
}
