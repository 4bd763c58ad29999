// Package pagestore loads fixed-size pages of the backing file on
// demand and caches them under a byte budget.
//
// Pages are immutable snapshots of the original file; edits never touch
// them. The store evicts least-recently-used pages once the budget is
// exceeded, but never a page that is currently pinned by a reader.
// Concurrent loads of the same page offset are deduplicated so a page
// requested by the viewport and a background search results in one I/O.
//
// Out-of-band modification of the backing file is detected by a stat
// check before every load, supplemented by an fsnotify watch on the
// file's directory, and surfaces as ErrSourceChanged.
package pagestore
