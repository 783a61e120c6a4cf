// Package layouttest provides a minimal Allocator for exercising
// heap/layout and heap/maptable in isolation from the root heap package.
package layouttest

import (
	"unsafe"

	"github.com/kishorenc/candor/heap/layout"
	"github.com/kishorenc/candor/heap/value"
)

// Allocator is a bump allocator over a single fixed-size byte buffer. It
// never collects; tests that need to exercise growth just ask for a big
// enough buffer.
type Allocator struct {
	buf                []byte
	top                uintptr
	oldSpaceGeneration byte
	initialMapCapacity uint32
}

// New returns an Allocator with capacity bytes of backing storage, an
// old-space generation threshold of 5, and an initial map capacity of 16.
func New(capacity int) *Allocator {
	return &Allocator{
		buf:                make([]byte, capacity),
		oldSpaceGeneration: 5,
		initialMapCapacity: 16,
	}
}

func (a *Allocator) bufAddr() uintptr {
	return uintptr(unsafe.Pointer(&a.buf[0]))
}

// AllocateTagged implements layout.Allocator.
func (a *Allocator) AllocateTagged(kind value.Kind, tenure layout.Tenure, bytes uint32) uintptr {
	total := value.HeaderSize + uintptr(bytes+bytes&1)
	if a.top+total > uintptr(len(a.buf)) {
		panic("layouttest: allocator exhausted")
	}
	addr := a.bufAddr() + a.top
	a.top += total

	gen := byte(0)
	if tenure == layout.TenureOld {
		gen = a.oldSpaceGeneration
	}
	value.WriteHeader(addr, kind, gen)
	return addr
}

// OldSpaceGeneration implements layout.Allocator.
func (a *Allocator) OldSpaceGeneration() byte { return a.oldSpaceGeneration }

// InitialMapCapacity implements layout.Allocator.
func (a *Allocator) InitialMapCapacity() uint32 { return a.initialMapCapacity }
