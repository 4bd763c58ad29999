// Package overlay layers non-destructive edits over the original file
// as a piece table.
//
// The document's logical byte sequence is an ordered run of pieces,
// each sourcing its bytes either from the backing file (via the page
// store) or from an append-only edit buffer. Memory is bounded by the
// number of distinct edits, not by file size, and each mutation only
// touches the pieces overlapping the edited range.
//
// Every mutation produces a Delta, a reversible snapshot of the piece
// spans it removed and inserted, which the history package replays for
// undo and redo.
package overlay
