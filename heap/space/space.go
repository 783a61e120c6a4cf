// Package space implements Space: an ordered list of heap/page.Page
// values with gap-search allocation and size-limit bookkeeping.
package space

import "github.com/kishorenc/candor/heap/page"

// roundUp rounds n up to the next multiple of unit.
func roundUp(n, unit uint32) uint32 {
	if unit == 0 {
		return n
	}
	if r := n % unit; r != 0 {
		return n + (unit - r)
	}
	return n
}

// Overflow is notified when a Space has exhausted every existing page
// and must add a new one while already over its size limit. Heap
// implements this to raise the needs_gc byte for the appropriate space.
type Overflow interface {
	NotifyOverflow()
}

// Space owns an ordered list of pages and serves bump allocations out of
// whichever page is currently selected.
type Space struct {
	pages     []*page.Page
	selected  int // index into pages of the currently active page
	pageSize  uint32
	size      uint32 // total bytes reserved across all pages
	sizeLimit uint32
	overflow  Overflow
}

// New creates a Space with one initial page of pageSize bytes and a size
// limit of initialLimit (0 selects a sensible default: 2x pageSize).
func New(pageSize uint32, initialLimit uint32, overflow Overflow) *Space {
	if initialLimit == 0 {
		initialLimit = pageSize * 2
	}
	s := &Space{
		pageSize:  pageSize,
		sizeLimit: initialLimit,
		overflow:  overflow,
	}
	s.addPage(pageSize)
	return s
}

func (s *Space) addPage(size uint32) {
	real := roundUp(size, s.pageSize)
	p := page.New(real)
	s.pages = append(s.pages, p)
	s.size += real
	s.selected = len(s.pages) - 1
}

// PageSize returns the granularity used to size freshly appended pages.
func (s *Space) PageSize() uint32 { return s.pageSize }

// Size returns the total number of bytes reserved across all pages.
func (s *Space) Size() uint32 { return s.size }

// SizeLimit returns the threshold that triggers an overflow notification
// when exceeded by a page-exhaustion allocation.
func (s *Space) SizeLimit() uint32 { return s.sizeLimit }

// PageCount returns the number of pages currently owned by the space.
func (s *Space) PageCount() int { return len(s.pages) }

// Allocate serves bytes from the selected page; on exhaustion it searches
// remaining pages for a gap, and failing that appends a fresh page sized
// to at least bytes. The allocation always succeeds once a page or gap is
// found; GC is requested via Overflow, not awaited, so the fast path
// never blocks.
func (s *Space) Allocate(bytes uint32) uintptr {
	if len(s.pages) > 0 {
		if addr, ok := s.pages[s.selected].Allocate(bytes); ok {
			return addr
		}
	}

	// Gap search: walk every page looking for one with enough room.
	for i, p := range s.pages {
		if addr, ok := p.Allocate(bytes); ok {
			s.selected = i
			return addr
		}
	}

	// No gap anywhere: append a new page sized for this request.
	if s.size > s.sizeLimit && s.overflow != nil {
		s.overflow.NotifyOverflow()
	}
	s.addPage(bytes)
	addr, ok := s.pages[s.selected].Allocate(bytes)
	if !ok {
		panic("space: freshly appended page could not satisfy its own allocation")
	}
	return addr
}

// Swap moves all pages from other into s, releasing s's previous pages,
// then recomputes s's size limit from the new total (2x the live total,
// clamped to a sensible minimum).
func (s *Space) Swap(other *Space) {
	s.pages = other.pages
	s.size = other.size
	s.selected = other.selected
	other.pages = nil
	other.size = 0
	other.selected = 0

	limit := s.size * 2
	const minLimit = 1 << 16
	if limit < minLimit {
		limit = minLimit
	}
	s.sizeLimit = limit
}

// Clear releases every page owned by the space.
func (s *Space) Clear() {
	s.pages = nil
	s.size = 0
	s.selected = 0
}

// Pages exposes the underlying page list for the collector to walk
// during tracing; callers must not mutate the returned slice.
func (s *Space) Pages() []*page.Page {
	return s.pages
}
