// Package page implements the bump-pointer allocation unit that backs
// every heap/space.Space. A Page owns a fixed-size byte buffer and two
// cursors, top and limit; allocation is a compare-and-bump.
package page

import "unsafe"

// Page is a contiguous byte buffer with a bump allocator.
type Page struct {
	buf   []byte
	top   uintptr // address of the next free byte
	limit uintptr // address one past the last usable byte
}

// New allocates a Page able to hold size bytes.
func New(size uint32) *Page {
	buf := make([]byte, size)
	base := bufAddr(buf)
	return &Page{
		buf:   buf,
		top:   base,
		limit: base + uintptr(size),
	}
}

// bufAddr returns the address of buf's backing array. buf must be
// nonempty and must not be reallocated afterward (Page never appends to
// it), so the address stays valid for the Page's lifetime.
func bufAddr(buf []byte) uintptr {
	if len(buf) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&buf[0]))
}

// Size returns the page's total capacity in bytes.
func (p *Page) Size() uint32 {
	return uint32(p.limit - bufAddr(p.buf))
}

// Used returns the number of bytes already allocated from the page.
func (p *Page) Used() uint32 {
	return uint32(p.top - bufAddr(p.buf))
}

// Available returns the number of bytes still free in the page.
func (p *Page) Available() uint32 {
	return uint32(p.limit - p.top)
}

// Allocate rounds size up to an even number of bytes, and if the page has
// room, bumps top and returns the old value. It returns (0, false) when
// the page cannot satisfy the request; the caller (heap/space.Space)
// decides what to do next.
func (p *Page) Allocate(size uint32) (uintptr, bool) {
	even := size + size&1
	if p.top+uintptr(even) > p.limit {
		return 0, false
	}
	result := p.top
	p.top += uintptr(even)
	return result, true
}

// Top and Limit expose the page's cursors for Space's gap search.
func (p *Page) Top() uintptr   { return p.top }
func (p *Page) Limit() uintptr { return p.limit }
