// Package renderer turns the visible byte range into styled hex dump
// rows: an offset gutter, grouped hex columns, and a visual text
// column with ASCII or Unicode glyphs per byte.
//
// The renderer consumes the engine's read API and the viewport's
// cursor and selection; it owns no document state of its own.
package renderer
