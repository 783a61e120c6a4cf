package layoutcheck

import "testing"

func TestCheckOffsetsAllMatch(t *testing.T) {
	want := map[string]int64{
		"NeedsGCNone":  0,
		"NeedsGCYoung": 1,
		"NeedsGCFull":  2,
	}

	results, err := CheckOffsets("github.com/kishorenc/candor/heap", want)
	if err != nil {
		t.Fatalf("CheckOffsets failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("unexpected mismatches: %v", results)
	}
}

func TestCheckOffsetsReportsMismatchAndMissing(t *testing.T) {
	want := map[string]int64{
		"NeedsGCNone":    5,  // wrong on purpose
		"NoSuchConstant": 99, // does not exist
	}

	results, err := CheckOffsets("github.com/kishorenc/candor/heap", want)
	if err != nil {
		t.Fatalf("CheckOffsets failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2: %v", len(results), results)
	}

	var sawMismatch, sawMissing bool
	for _, r := range results {
		switch v := r.(type) {
		case Mismatch:
			if v.Name == "NeedsGCNone" && v.Expected == 5 && v.Actual == 0 {
				sawMismatch = true
			}
		case Missing:
			if v.Name == "NoSuchConstant" {
				sawMissing = true
			}
		}
	}
	if !sawMismatch {
		t.Error("expected a Mismatch for NeedsGCNone")
	}
	if !sawMissing {
		t.Error("expected a Missing for NoSuchConstant")
	}
}
