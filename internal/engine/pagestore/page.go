package pagestore

import "container/list"

// Page is an immutable snapshot of backing-file bytes starting at a
// page-aligned offset. Only the final page of an unaligned file is
// shorter than the store's page size.
//
// A Page returned by Store.Acquire is pinned and cannot be evicted
// until the caller hands it back with Store.Release.
type Page struct {
	off  int64
	data []byte

	// Guarded by the owning store's mutex.
	refs int
	elem *list.Element
}

// Off returns the page's backing-file offset.
func (p *Page) Off() int64 {
	return p.off
}

// Len returns the number of bytes in the page.
func (p *Page) Len() int {
	return len(p.data)
}

// Data returns the page's bytes. The slice must be treated as
// read-only and must not be retained past Release.
func (p *Page) Data() []byte {
	return p.data
}
