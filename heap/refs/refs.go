// Package refs implements the heap's reference registry: the strong,
// persistent, and weak external references the GC must scan and rewrite.
package refs

import "github.com/kishorenc/candor/heap/value"

// Kind distinguishes how a registered slot is owned.
type Kind int

const (
	// Strong references are scanned and rewritten by the GC but are not
	// otherwise special; they exist for the registrant's convenience.
	Strong Kind = iota
	// Persistent references behave identically to Strong for tracing
	// purposes; the distinction is meaningful only to the registrant
	// (e.g. a persistent handle outlives the call that created it).
	Persistent
)

// slotRef is one registered (slot_address, value) pair together with its
// Kind.
type slotRef struct {
	kind  Kind
	slot  *value.Ref
	value value.Ref
	live  bool
}

// weakEntry is one registered (value, callback) pair.
type weakEntry struct {
	value    value.Ref
	callback func(value.Ref)
	live     bool
}

// Registry holds every reference external collaborators have registered
// against a Heap. It is append-only while the mutator runs and compacted
// only during collection. The heap's mutator and collector are both
// single-threaded, so Registry itself needs no internal locking; callers
// embedding it in a concurrent host must serialize access themselves.
type Registry struct {
	slots []slotRef
	weak  []weakEntry
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{}
}

// Reference registers a strong or persistent reference: slot currently
// holds value, and the GC must rewrite *slot to the relocated address
// whenever value survives a collection.
func (r *Registry) Reference(kind Kind, slot *value.Ref, val value.Ref) {
	r.slots = append(r.slots, slotRef{kind: kind, slot: slot, value: val, live: true})
}

// Dereference removes the most recently registered entry matching both
// slot and value, via a tail-to-head linear scan.
func (r *Registry) Dereference(slot *value.Ref, val value.Ref) {
	for i := len(r.slots) - 1; i >= 0; i-- {
		e := &r.slots[i]
		if e.live && e.slot == slot && e.value == val {
			e.live = false
			return
		}
	}
}

// AddWeak registers a weak reference to val. callback, if non-nil, fires
// exactly once — with val's last known address — when val is found dead
// during a collection.
func (r *Registry) AddWeak(val value.Ref, callback func(value.Ref)) {
	r.weak = append(r.weak, weakEntry{value: val, callback: callback, live: true})
}

// RemoveWeak removes every live weak entry registered against val.
func (r *Registry) RemoveWeak(val value.Ref) {
	for i := range r.weak {
		if r.weak[i].live && r.weak[i].value == val {
			r.weak[i].live = false
		}
	}
}

// StrongCount and WeakCount report live registry sizes, for diagnostics
// and heap/snapshot.
func (r *Registry) StrongCount() int {
	n := 0
	for _, e := range r.slots {
		if e.live {
			n++
		}
	}
	return n
}

func (r *Registry) WeakCount() int {
	n := 0
	for _, e := range r.weak {
		if e.live {
			n++
		}
	}
	return n
}

// Forwarder maps a pre-collection Ref to its post-collection Ref and
// reports whether the value survived. The GC supplies this from the
// trace it just performed; Registry never inspects heap memory itself.
type Forwarder func(value.Ref) (value.Ref, bool)

// RewriteStrong rewrites every live strong/persistent slot in place using
// forward, and compacts away entries whose target died along the way
// (a registered reference is itself a root, so its target should never
// die — but a dead entry is dropped defensively rather than left
// dangling). Returns the number of slots rewritten.
func (r *Registry) RewriteStrong(forward Forwarder) int {
	rewritten := 0
	kept := r.slots[:0]
	for _, e := range r.slots {
		if !e.live {
			continue
		}
		newVal, alive := forward(e.value)
		if !alive {
			continue
		}
		*e.slot = newVal
		e.value = newVal
		kept = append(kept, e)
		rewritten++
	}
	r.slots = kept
	return rewritten
}

// ProcessWeak walks every live weak entry, forwarding survivors in place
// and firing callbacks for entries whose target died — each callback
// exactly once, with the last known (pre-collection) address. Dead
// entries are then dropped. Returns the number of callbacks fired.
func (r *Registry) ProcessWeak(forward Forwarder) int {
	type finalize struct {
		callback func(value.Ref)
		last     value.Ref
	}
	var toFinalize []finalize
	kept := r.weak[:0]

	for _, e := range r.weak {
		if !e.live {
			continue
		}
		newVal, alive := forward(e.value)
		if alive {
			e.value = newVal
			kept = append(kept, e)
			continue
		}
		if e.callback != nil {
			toFinalize = append(toFinalize, finalize{callback: e.callback, last: e.value})
		}
	}
	r.weak = kept

	for _, f := range toFinalize {
		f.callback(f.last)
	}
	return len(toFinalize)
}
