// Package diag emits structured diagnostic events for allocation and
// collection activity inside the heap package.
//
// The simple backend is registered via the package's blank import, so a
// program that never configures logging still sees output on stderr.
package diag

import (
	"fmt"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

// loggerName is the commonlog logger name every heap diagnostic event is
// published under.
const loggerName = "candor.heap"

var logger = commonlog.GetLogger(loggerName)

// SetLogger replaces the package-level logger, for embedding hosts (and
// tests) that want their own commonlog.Logger instead of the simple
// backend's default.
func SetLogger(l commonlog.Logger) {
	if l != nil {
		logger = l
	}
}

// Kind identifies the category of a diagnostic event.
type Kind string

// Event kinds emitted by the heap and its collector.
const (
	PageOverflow   Kind = "page-overflow"
	ScavengeStart  Kind = "scavenge-start"
	ScavengeDone   Kind = "scavenge-done"
	FullGCStart    Kind = "full-gc-start"
	FullGCDone     Kind = "full-gc-done"
	WeakFinalized  Kind = "weak-finalized"
	FatalAbort     Kind = "fatal-abort"
)

// Stats summarizes one completed collection cycle.
type Stats struct {
	Kind            Kind
	ObjectsScanned  int
	ObjectsCopied   int
	ObjectsPromoted int
	WeakFinalized   int
	PagesFreed      int
}

// Emit logs a simple event with a free-form detail string.
func Emit(kind Kind, detail string) {
	logger.Info(fmt.Sprintf("%s: %s", kind, detail))
}

// EmitStats logs a completed collection cycle's statistics.
func EmitStats(s Stats) {
	logger.Info(fmt.Sprintf(
		"%s: scanned=%d copied=%d promoted=%d weak_finalized=%d pages_freed=%d",
		s.Kind, s.ObjectsScanned, s.ObjectsCopied, s.ObjectsPromoted,
		s.WeakFinalized, s.PagesFreed,
	))
}

// EmitFatal logs an invariant violation immediately before the caller
// panics, so a crash still leaves a diagnostic trail.
func EmitFatal(detail string) {
	logger.Error(fmt.Sprintf("%s: %s", FatalAbort, detail))
}
