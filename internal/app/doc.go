// Package app wires the document engine, viewport, renderer, and
// terminal backend into the interactive editor loop.
package app
