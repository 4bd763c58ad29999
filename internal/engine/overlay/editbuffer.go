package overlay

// EditBuffer is the append-only arena holding every byte introduced by
// an edit. Bytes are addressed by stable (offset, length) descriptors
// held in pieces, so undo snapshots copy descriptors, never bytes.
// The buffer never shrinks during a session: bytes left unreferenced
// by undone edits stay allocated until the document is closed, trading
// memory for undo simplicity.
type EditBuffer struct {
	data []byte
}

// Append stores b and returns the stable buffer offset it was placed at.
func (eb *EditBuffer) Append(b []byte) int64 {
	off := int64(len(eb.data))
	eb.data = append(eb.data, b...)
	return off
}

// Slice returns n bytes starting at the stable offset off. The result
// aliases the buffer and must not be modified.
func (eb *EditBuffer) Slice(off, n int64) []byte {
	return eb.data[off : off+n]
}

// Len returns the total number of bytes ever appended.
func (eb *EditBuffer) Len() int64 {
	return int64(len(eb.data))
}
