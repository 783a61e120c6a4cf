// Package gc implements Candor's generational, copying collector: young
// scavenges and full collections over the two spaces heap/space manages,
// forwarding-pointer evacuation, root walking, and weak-callback firing.
package gc

import (
	"github.com/kishorenc/candor/heap/diag"
	"github.com/kishorenc/candor/heap/layout"
	"github.com/kishorenc/candor/heap/refs"
	"github.com/kishorenc/candor/heap/space"
	"github.com/kishorenc/candor/heap/value"
)

// Target is the subset of *heap.Heap the collector needs. Defining it
// here (instead of importing package heap) keeps heap/gc's dependency on
// heap one-directional: heap depends on gc, not the reverse.
type Target interface {
	space.Overflow

	NewSpace() *space.Space
	OldSpace() *space.Space
	OldSpaceGeneration() byte
	StrongRefs() *refs.Registry
	WeakRefs() *refs.Registry

	// Roots returns values reachable from outside the registries and the
	// two spaces themselves: the root stack and context chain from the
	// currently executing function. heap/gc has no knowledge of
	// stack-frame layout; the external collaborator that owns the root
	// stack format supplies this slice (e.g. via
	// heap.Heap.SetRootProvider), and is responsible for re-deriving its
	// own copies after the cycle — heap/gc has no address to write back
	// to for them, unlike registry slots.
	Roots() []value.Ref
}

// Stats summarizes one completed cycle for heap/diag.
type Stats = diag.Stats

// Scavenge runs a young-only collection: new-space objects surviving
// tracing are evacuated into a fresh new-space, or promoted into the
// existing old-space once their generation counter reaches the
// old-space threshold.
func Scavenge(target Target) Stats {
	diag.Emit(diag.ScavengeStart, "")
	stats := run(target, false)
	diag.EmitStats(stats)
	return stats
}

// FullCollect runs a full collection: both new-space and old-space are
// traced, and every surviving object is evacuated into fresh spaces.
func FullCollect(target Target) Stats {
	diag.Emit(diag.FullGCStart, "")
	stats := run(target, true)
	diag.EmitStats(stats)
	return stats
}

func run(target Target, full bool) Stats {
	newSpace := target.NewSpace()
	oldSpace := target.OldSpace()
	genThreshold := target.OldSpaceGeneration()

	freshNew := space.New(newSpace.PageSize(), 0, target)
	freshOld := oldSpace
	if full {
		freshOld = space.New(oldSpace.PageSize(), 0, target)
	}

	stats := Stats{Kind: diag.ScavengeDone}
	if full {
		stats.Kind = diag.FullGCDone
	}

	var work []uintptr // new-space/old-space addresses awaiting their outgoing-pointer pass

	// forwardRoot is the keep-alive forwarder: any from-space address it
	// is handed is, by definition, reachable, and is evacuated on first
	// visit (subsequent visits follow the forwarding pointer already
	// written into the from-space header).
	forwardRoot := func(v value.Ref) (value.Ref, bool) {
		if !v.IsHeapPointer() {
			return v, true
		}
		addr := v.Addr()
		if value.IsGCMarked(addr) {
			return value.FromAddr(value.GetGCMark(addr)), true
		}
		collecting := inSpace(addr, newSpace) || (full && inSpace(addr, oldSpace))
		if !collecting {
			// Already in old-space during a scavenge (or an address this
			// cycle isn't responsible for): alive, unmoved.
			return v, true
		}

		kind, gen := value.ReadHeader(addr)
		if gen < value.MaxGeneration {
			gen++
		}

		// A new-space survivor follows the usual promotion rule whether
		// this is a scavenge or a full collection. An old-space survivor
		// (only visited when full) always lands in the fresh old-space,
		// since it has already tenured.
		var dest *space.Space
		switch {
		case inSpace(addr, newSpace) && gen >= genThreshold:
			dest = freshOld
			stats.ObjectsPromoted++
		case inSpace(addr, newSpace):
			dest = freshNew
		default:
			dest = freshOld
		}

		size := layout.CopySize(kind, addr)
		newAddr := dest.Allocate(size)
		copy(value.BytesAt(newAddr, 0, size), value.BytesAt(addr, 0, size))
		value.WriteHeader(newAddr, kind, gen)
		value.SetGCMark(addr, newAddr)
		stats.ObjectsCopied++

		work = append(work, newAddr)
		return value.FromAddr(newAddr), true
	}

	// 1. Registered strong/persistent references are roots; rewrite their
	// slots in place and enqueue their targets for tracing.
	stats.ObjectsScanned += target.StrongRefs().RewriteStrong(forwardRoot)

	// 2. External roots (root stack / context chain): visited for
	// liveness only, no slot to rewrite.
	for _, v := range target.Roots() {
		forwardRoot(v)
	}

	// 3. During a scavenge, old-space is not itself traced, but an old
	// object can hold a pointer into new-space (e.g. a property value
	// inserted after the holder tenured). Without a write barrier or
	// remembered set, the only correct option is a conservative scan of
	// every live old-space object's outgoing pointers, rewriting any that
	// point into new-space; see DESIGN.md.
	if !full {
		walkLiveObjects(oldSpace, func(addr uintptr, kind value.Kind) {
			for _, off := range layout.OutgoingPointerOffsets(kind, addr) {
				old := value.Ref(value.U64At(addr, off))
				newV, _ := forwardRoot(old)
				value.SetU64At(addr, off, uint64(newV))
			}
		})
	}

	// 4. Drain the worklist: every evacuated copy's outgoing pointers
	// must themselves be forwarded (and, if unvisited, evacuated).
	for len(work) > 0 {
		addr := work[len(work)-1]
		work = work[:len(work)-1]

		kind := value.RawKind(addr)
		for _, off := range layout.OutgoingPointerOffsets(kind, addr) {
			old := value.Ref(value.U64At(addr, off))
			newV, _ := forwardRoot(old)
			value.SetU64At(addr, off, uint64(newV))
		}
	}

	// 5. Weak references must not themselves keep anything alive: check
	// without evacuating. A target is alive iff tracing above already
	// forwarded it.
	weakForward := func(v value.Ref) (value.Ref, bool) {
		if !v.IsHeapPointer() {
			return v, true
		}
		addr := v.Addr()
		if value.IsGCMarked(addr) {
			return value.FromAddr(value.GetGCMark(addr)), true
		}
		collecting := inSpace(addr, newSpace) || (full && inSpace(addr, oldSpace))
		if !collecting {
			return v, true // unmoved, outside this cycle's scope: still alive
		}
		return v, false // in scope, never forwarded: unreachable
	}
	stats.WeakFinalized = target.WeakRefs().ProcessWeak(weakForward)

	stats.PagesFreed = newSpace.PageCount()
	if full {
		stats.PagesFreed += oldSpace.PageCount()
	}

	newSpace.Swap(freshNew)
	if full {
		oldSpace.Swap(freshOld)
	}

	return stats
}

// inSpace reports whether addr falls within one of sp's currently
// allocated pages.
func inSpace(addr uintptr, sp *space.Space) bool {
	for _, p := range sp.Pages() {
		base := p.Limit() - uintptr(p.Size())
		if addr >= base && addr < p.Top() {
			return true
		}
	}
	return false
}

// walkLiveObjects visits every live object in sp's pages in allocation
// order, from each page's base up to its bump pointer.
func walkLiveObjects(sp *space.Space, visit func(addr uintptr, kind value.Kind)) {
	for _, p := range sp.Pages() {
		base := p.Limit() - uintptr(p.Size())
		for addr := base; addr < p.Top(); {
			kind := value.RawKind(addr)
			size := layout.CopySize(kind, addr)
			visit(addr, kind)
			addr += uintptr(size)
		}
	}
}
