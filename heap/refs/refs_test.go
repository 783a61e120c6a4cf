package refs

import (
	"testing"

	"github.com/kishorenc/candor/heap/value"
)

func alwaysAlive(delta uintptr) Forwarder {
	return func(v value.Ref) (value.Ref, bool) {
		return value.Ref(uintptr(v) + delta), true
	}
}

func alwaysDead(v value.Ref) (value.Ref, bool) { return v, false }

func TestReferenceAndDereferenceRoundTrip(t *testing.T) {
	r := New()
	var slot value.Ref = value.Tag(1)
	r.Reference(Strong, &slot, slot)

	if r.StrongCount() != 1 {
		t.Fatalf("StrongCount = %d, want 1", r.StrongCount())
	}
	r.Dereference(&slot, slot)
	if r.StrongCount() != 0 {
		t.Errorf("StrongCount after Dereference = %d, want 0", r.StrongCount())
	}
}

func TestDereferenceMatchesMostRecentEntry(t *testing.T) {
	r := New()
	var slot value.Ref = value.Tag(7)
	r.Reference(Strong, &slot, value.Tag(7))
	r.Reference(Strong, &slot, value.Tag(7))

	r.Dereference(&slot, value.Tag(7))
	if r.StrongCount() != 1 {
		t.Errorf("StrongCount after one Dereference of a double-registered slot = %d, want 1", r.StrongCount())
	}
}

func TestRewriteStrongUpdatesSlotsAndCompactsDead(t *testing.T) {
	r := New()
	var a, b value.Ref = value.Ref(8), value.Ref(16)
	r.Reference(Strong, &a, a)
	r.Reference(Persistent, &b, b)

	n := r.RewriteStrong(alwaysAlive(8))
	if n != 2 {
		t.Errorf("RewriteStrong rewrote %d, want 2", n)
	}
	if a != 16 {
		t.Errorf("a = %v, want 16", a)
	}
	if b != 24 {
		t.Errorf("b = %v, want 24", b)
	}

	n = r.RewriteStrong(alwaysDead)
	if n != 0 {
		t.Errorf("RewriteStrong over dead targets rewrote %d, want 0", n)
	}
	if r.StrongCount() != 0 {
		t.Errorf("StrongCount after all-dead rewrite = %d, want 0 (compacted)", r.StrongCount())
	}
}

func TestAddWeakFiresCallbackOnceWhenDead(t *testing.T) {
	r := New()
	target := value.Ref(8)
	fired := 0
	var last value.Ref
	r.AddWeak(target, func(v value.Ref) {
		fired++
		last = v
	})

	n := r.ProcessWeak(alwaysDead)
	if n != 1 {
		t.Errorf("ProcessWeak fired %d callbacks, want 1", n)
	}
	if fired != 1 {
		t.Errorf("callback invoked %d times, want 1", fired)
	}
	if last != target {
		t.Errorf("callback received %v, want %v", last, target)
	}
	if r.WeakCount() != 0 {
		t.Errorf("WeakCount after finalization = %d, want 0", r.WeakCount())
	}
}

func TestAddWeakSurvivesWhenAlive(t *testing.T) {
	r := New()
	target := value.Ref(8)
	fired := false
	r.AddWeak(target, func(value.Ref) { fired = true })

	n := r.ProcessWeak(alwaysAlive(8))
	if n != 0 {
		t.Errorf("ProcessWeak fired %d callbacks for a surviving target, want 0", n)
	}
	if fired {
		t.Error("callback fired for a surviving target")
	}
	if r.WeakCount() != 1 {
		t.Errorf("WeakCount after survival = %d, want 1", r.WeakCount())
	}
}

func TestRemoveWeakClearsAllMatchingEntries(t *testing.T) {
	r := New()
	target := value.Ref(8)
	r.AddWeak(target, func(value.Ref) {})
	r.AddWeak(target, func(value.Ref) {})
	r.AddWeak(value.Ref(16), func(value.Ref) {})

	r.RemoveWeak(target)
	if r.WeakCount() != 1 {
		t.Errorf("WeakCount after RemoveWeak = %d, want 1", r.WeakCount())
	}
}
