// Package engine presents an arbitrarily large file as a uniformly
// addressable, randomly readable and writable byte sequence.
//
// A Document layers a piece-table edit overlay over a demand-paged
// view of the backing file, records every mutation as a reversible
// delta for undo/redo, and exposes pattern search over the combined
// logical sequence. Memory stays bounded by the page cache budget plus
// the bytes introduced by edits; the file is never loaded whole.
//
// Mutations must be driven by a single coordinating goroutine; an
// overlapping mutation attempt is rejected with ErrMutationInFlight
// rather than serialized. Reads and searches may run concurrently with
// the coordinating goroutine, and asynchronous search results carry
// the generation they were computed against so stale results can be
// discarded after a mutation.
package engine
