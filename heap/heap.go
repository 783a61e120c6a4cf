// Package heap is the root of Candor's managed heap: it owns the two
// spaces, the needs_gc flag emitted code polls, the pending-exception
// slot, and the reference registry, and wires heap/layout's constructors
// to real storage via AllocateTagged.
package heap

import (
	"sort"
	"sync"

	"github.com/kishorenc/candor/heap/diag"
	"github.com/kishorenc/candor/heap/gc"
	"github.com/kishorenc/candor/heap/hconfig"
	"github.com/kishorenc/candor/heap/herror"
	"github.com/kishorenc/candor/heap/layout"
	"github.com/kishorenc/candor/heap/refs"
	"github.com/kishorenc/candor/heap/snapshot"
	"github.com/kishorenc/candor/heap/space"
	"github.com/kishorenc/candor/heap/value"
)

// needs_gc values. Generated code compiles a safepoint as a byte-load
// compare against NeedsGCNone; the collector chooses scavenge or full
// collection based on which flag is set.
const (
	NeedsGCNone byte = iota
	NeedsGCYoung
	NeedsGCFull
)

// FatalError reports an invariant violation the heap treats as fatal.
// AllocateTagged panics with it when asked for KindInvalid. The other
// invariant checks (a misaligned address in heap/value, an unknown kind
// in heap/layout, a forwarded header read through ReadHeader) panic with
// a plain string instead. Go idiom is a panic rather than os.Exit, so an
// embedding host can recover at a boundary it controls.
type FatalError struct {
	Detail string
}

func (e *FatalError) Error() string { return "heap: fatal: " + e.Detail }

func fatal(detail string) {
	diag.EmitFatal(detail)
	panic(&FatalError{Detail: detail})
}

// RootProvider supplies GC roots beyond the reference registry: the root
// stack and context chain from the currently executing function.
// heap/gc has no knowledge of stack-frame layout; the external
// collaborator that owns the root-stack format (the code generator)
// supplies this callback.
type RootProvider func() []value.Ref

// spaceOverflow routes a Space's overflow notification to the flag value
// appropriate for that space, so the needs_gc flag distinguishes
// "young full" from "old full".
type spaceOverflow struct {
	h    *Heap
	flag byte
}

func (o spaceOverflow) NotifyOverflow() {
	if o.flag > o.h.needsGC {
		o.h.needsGC = o.flag
	}
	diag.Emit(diag.PageOverflow, "")
}

// Heap owns both spaces, the reference registry, the pending-exception
// slot, and the needs_gc flag. Exactly one Heap is current per process
// at a time (Current/SetCurrent).
type Heap struct {
	newSpace *space.Space
	oldSpace *space.Space

	oldSpaceGeneration byte
	initialMapCapacity uint32

	needsGC byte

	rootStack    uintptr
	rootProvider RootProvider

	refs *refs.Registry

	pendingException    herror.Error
	hasPendingException bool
}

// New constructs a Heap from cfg and makes it the process-wide current
// Heap.
func New(cfg hconfig.Config) *Heap {
	h := &Heap{
		oldSpaceGeneration: cfg.OldSpaceGeneration,
		initialMapCapacity: cfg.InitialMapCapacity,
		refs:               refs.New(),
	}
	h.newSpace = space.New(cfg.PageSize, cfg.InitialSizeLimit, spaceOverflow{h, NeedsGCYoung})
	h.oldSpace = space.New(cfg.PageSize, cfg.InitialSizeLimit, spaceOverflow{h, NeedsGCFull})
	SetCurrent(h)
	return h
}

var (
	currentMu sync.RWMutex
	current   *Heap
)

// Current returns the process-wide active Heap, or nil if none has been
// constructed (or the last one was Released).
func Current() *Heap {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}

// SetCurrent installs h as the process-wide active Heap.
func SetCurrent(h *Heap) {
	currentMu.Lock()
	defer currentMu.Unlock()
	current = h
}

// Release clears h as the current Heap if it still is one. Go has no
// destructors, so callers must call this explicitly when a Heap is torn
// down.
func (h *Heap) Release() {
	currentMu.Lock()
	defer currentMu.Unlock()
	if current == h {
		current = nil
	}
}

// ---------------------------------------------------------------------------
// layout.Allocator
// ---------------------------------------------------------------------------

// AllocateTagged implements layout.Allocator: it acquires bytes+8 from
// the requested tenure's space, writes the header (tagging old-tenured
// objects with the old-space generation immediately so they are never
// mistaken for young survivors), and returns the object's address.
func (h *Heap) AllocateTagged(kind value.Kind, tenure layout.Tenure, bytes uint32) uintptr {
	if kind == value.KindInvalid {
		fatal("AllocateTagged called with KindInvalid")
	}

	sp := h.newSpace
	gen := byte(0)
	if tenure == layout.TenureOld {
		sp = h.oldSpace
		gen = h.oldSpaceGeneration
	}

	addr := sp.Allocate(bytes + value.HeaderSize)
	value.WriteHeader(addr, kind, gen)
	return addr
}

// OldSpaceGeneration implements layout.Allocator and gc.Target.
func (h *Heap) OldSpaceGeneration() byte { return h.oldSpaceGeneration }

// InitialMapCapacity implements layout.Allocator.
func (h *Heap) InitialMapCapacity() uint32 { return h.initialMapCapacity }

// ---------------------------------------------------------------------------
// gc.Target
// ---------------------------------------------------------------------------

// NewSpace and OldSpace expose the two spaces to heap/gc and to
// heap/snapshot.
func (h *Heap) NewSpace() *space.Space { return h.newSpace }
func (h *Heap) OldSpace() *space.Space { return h.oldSpace }

// NotifyOverflow implements space.Overflow for spaces heap/gc allocates
// directly against the Heap (the fresh to-spaces built for a collection
// cycle). Unlike spaceOverflow, it cannot distinguish which space
// overflowed, so it conservatively raises the full-collection flag.
func (h *Heap) NotifyOverflow() {
	h.needsGC = NeedsGCFull
}

// StrongRefs and WeakRefs both return the same Registry: strong/
// persistent slots and weak entries are two independently-addressed
// sections of one registry, per heap/refs.
func (h *Heap) StrongRefs() *refs.Registry { return h.refs }
func (h *Heap) WeakRefs() *refs.Registry   { return h.refs }

// SetRootProvider installs the callback heap/gc uses to discover roots
// beyond the reference registry.
func (h *Heap) SetRootProvider(p RootProvider) { h.rootProvider = p }

// Roots implements gc.Target.
func (h *Heap) Roots() []value.Ref {
	if h.rootProvider == nil {
		return nil
	}
	return h.rootProvider()
}

// RootStack and SetRootStack expose the opaque root-stack address to the
// code generator; heap/gc never interprets its contents directly (see
// RootProvider).
func (h *Heap) RootStack() uintptr        { return h.rootStack }
func (h *Heap) SetRootStack(addr uintptr) { h.rootStack = addr }

// ---------------------------------------------------------------------------
// Collection entry points
// ---------------------------------------------------------------------------

// NeedsGC returns the current safepoint flag value.
func (h *Heap) NeedsGC() byte { return h.needsGC }

// NeedsGCAddr returns the stable address of the needs_gc byte, for
// generated code to embed as an immediate and poll directly.
func (h *Heap) NeedsGCAddr() *byte { return &h.needsGC }

// Collect runs whichever collection the needs_gc flag currently
// requests, and clears the flag. It is a no-op if no collection is
// pending.
func (h *Heap) Collect() gc.Stats {
	switch h.needsGC {
	case NeedsGCFull:
		return h.FullCollect()
	case NeedsGCYoung:
		return h.Scavenge()
	default:
		return gc.Stats{}
	}
}

// Scavenge forces a young-only collection regardless of needs_gc.
func (h *Heap) Scavenge() gc.Stats {
	stats := gc.Scavenge(h)
	h.needsGC = NeedsGCNone
	return stats
}

// FullCollect forces a full collection regardless of needs_gc.
func (h *Heap) FullCollect() gc.Stats {
	stats := gc.FullCollect(h)
	h.needsGC = NeedsGCNone
	return stats
}

// ---------------------------------------------------------------------------
// Reference API
// ---------------------------------------------------------------------------

// Reference registers a strong or persistent reference against slot.
func (h *Heap) Reference(kind refs.Kind, slot *value.Ref, val value.Ref) {
	h.refs.Reference(kind, slot, val)
}

// Dereference removes a previously registered strong/persistent
// reference.
func (h *Heap) Dereference(slot *value.Ref, val value.Ref) {
	h.refs.Dereference(slot, val)
}

// AddWeak registers a weak reference to val with an optional finalizer.
func (h *Heap) AddWeak(val value.Ref, callback func(value.Ref)) {
	h.refs.AddWeak(val, callback)
}

// RemoveWeak removes every live weak entry registered against val.
func (h *Heap) RemoveWeak(val value.Ref) {
	h.refs.RemoveWeak(val)
}

// ---------------------------------------------------------------------------
// Pending exception
// ---------------------------------------------------------------------------

// PendingException returns the currently pending language-level error,
// if any.
func (h *Heap) PendingException() (herror.Error, bool) {
	return h.pendingException, h.hasPendingException
}

// SetPendingException records a language-level error for the caller to
// observe at its next safepoint.
func (h *Heap) SetPendingException(e herror.Error) {
	h.pendingException = e
	h.hasPendingException = true
}

// ClearPendingException clears any pending language-level error.
func (h *Heap) ClearPendingException() {
	h.hasPendingException = false
	h.pendingException = herror.Error{}
}

// ---------------------------------------------------------------------------
// Snapshot
// ---------------------------------------------------------------------------

// Snapshot walks both spaces' page lists and the reference registry and
// produces a point-in-time occupancy summary. It triggers no collection
// and mutates nothing; it exists purely for diagnostics.
func (h *Heap) Snapshot() (*snapshot.Heap, error) {
	s := &snapshot.Heap{
		NewSpace:      spaceStats(h.newSpace),
		OldSpace:      spaceStats(h.oldSpace),
		NewSpaceKinds: countKinds(h.newSpace),
		OldSpaceKinds: countKinds(h.oldSpace),

		StrongReferenceCount: h.refs.StrongCount(),
		WeakReferenceCount:   h.refs.WeakCount(),
		NeedsGC:              h.needsGC,
	}
	return s, nil
}

func spaceStats(sp *space.Space) snapshot.SpaceStats {
	return snapshot.SpaceStats{
		PageCount: uint32(sp.PageCount()),
		PageSize:  sp.PageSize(),
		Size:      sp.Size(),
		SizeLimit: sp.SizeLimit(),
	}
}

// countKinds walks every live object in sp's pages, in allocation order,
// tallying one counter per value.Kind.
func countKinds(sp *space.Space) []snapshot.KindCount {
	counts := map[value.Kind]uint32{}
	for _, p := range sp.Pages() {
		base := p.Limit() - uintptr(p.Size())
		for addr := base; addr < p.Top(); {
			kind := value.RawKind(addr)
			size := layout.CopySize(kind, addr)
			counts[kind]++
			addr += uintptr(size)
		}
	}

	out := make([]snapshot.KindCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, snapshot.KindCount{Kind: k.String(), Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}
