// Package search scans the document's logical byte sequence for a
// pattern, forward or backward, with optional wraparound.
//
// The scan reads through the edit overlay in bounded chunks with an
// overlap of len(pattern)-1 bytes, so a match straddling a chunk (or
// page, or piece) boundary is never missed and the whole file is never
// resident at once. Exact patterns use a Boyer-Moore-Horspool skip
// table; patterns with wildcard masks use a direct masked scan.
// Long scans are cancellable through a context, checked per chunk.
package search
