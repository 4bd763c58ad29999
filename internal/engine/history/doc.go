// Package history records the reversible deltas produced by overlay
// mutations and replays them for undo and redo.
//
// History is linear: a new edit after an undo discards the redo stack.
// Deltas recorded without an intervening Boundary call coalesce into a
// single undo step, so a multi-byte paste undoes in one keystroke.
// Depth is capped; past the cap the oldest step is dropped and a
// one-time warning is raised.
package history
