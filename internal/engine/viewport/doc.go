// Package viewport maps a visible window of rows onto logical byte
// offsets and tracks the cursor and selection.
//
// It is the only component aware of rows and bytes-per-row; everything
// beneath it is display-agnostic. It performs no I/O: the presentation
// layer resolves the visible range's bytes through the engine.
package viewport
