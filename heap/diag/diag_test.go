package diag

import "testing"

func TestEmitDoesNotPanic(t *testing.T) {
	Emit(PageOverflow, "new-space page 3 exhausted")
	Emit(ScavengeStart, "")
	Emit(ScavengeDone, "")
}

func TestEmitStatsDoesNotPanic(t *testing.T) {
	EmitStats(Stats{
		Kind:            FullGCDone,
		ObjectsScanned:  12,
		ObjectsCopied:   10,
		ObjectsPromoted: 3,
		WeakFinalized:   1,
		PagesFreed:      2,
	})
}

func TestEmitFatalDoesNotPanic(t *testing.T) {
	EmitFatal("unknown tag 7 at address 0x1000")
}

func TestEventKindsAreDistinct(t *testing.T) {
	kinds := []Kind{PageOverflow, ScavengeStart, ScavengeDone, FullGCStart, FullGCDone, WeakFinalized, FatalAbort}
	seen := map[Kind]bool{}
	for _, k := range kinds {
		if seen[k] {
			t.Errorf("duplicate Kind value %q", k)
		}
		seen[k] = true
	}
}
