package syntree

// BufferCursor is an abstract reverse iterator over a postfix stream of
// parse events: children are visited before their parents, and the
// cursor walks the stream from its end toward its start. At any position
// it exposes the node currently "under" the cursor via Type/Start/End/
// Size; Next moves to the previous record in the stream (the record
// immediately preceding the current one, i.e. one step closer to index 0
// in the original forward-postfix sense).
//
// Size is the total slot footprint of the node at the cursor, including
// all of its descendants, expressed in the same 4-slot-per-record units
// NodeBuffer itself uses. A Size of ReusedValue marks a reuse record:
// Type() then holds an index into the Builder's Reused slice rather than
// a grammar type id, and the record has no descendants of its own.
type BufferCursor interface {
	Type() TypeID
	Start() int
	End() int
	Size() int
	Pos() int
	Next()
	Fork() BufferCursor
}

// FlatBufferCursor reads a flat []int32 of (type, start, end, size) quads,
// one per node (leaf or internal), laid out in postfix order. The cursor
// begins past the last quad and Next always steps back by exactly one
// quad; Size tells callers how many quads belong to a node's whole
// subtree so they can decide whether to skip or descend into it, but
// never changes how far a single Next call moves.
type FlatBufferCursor struct {
	buffer []int32
	index  int
}

// NewFlatBufferCursor wraps buffer, a sequence of (type, start, end, size)
// int32 quads in postfix order, starting the cursor at its end.
func NewFlatBufferCursor(buffer []int32) *FlatBufferCursor {
	return &FlatBufferCursor{buffer: buffer, index: len(buffer)}
}

// Type returns the current record's type id, or reuse index when Size is
// ReusedValue.
func (c *FlatBufferCursor) Type() TypeID { return TypeID(c.buffer[c.index-4]) }

// Start returns the current record's absolute start position.
func (c *FlatBufferCursor) Start() int { return int(c.buffer[c.index-3]) }

// End returns the current record's absolute end position.
func (c *FlatBufferCursor) End() int { return int(c.buffer[c.index-2]) }

// Size returns the current record's total subtree slot footprint, or
// ReusedValue for a reuse record.
func (c *FlatBufferCursor) Size() int { return int(c.buffer[c.index-1]) }

// Pos returns the cursor's current index into buffer; 0 marks the end of
// the stream.
func (c *FlatBufferCursor) Pos() int { return c.index }

// Next steps the cursor back by one record.
func (c *FlatBufferCursor) Next() { c.index -= 4 }

// Fork returns an independent cursor positioned identically to c, so
// callers can scan ahead (here, backward) without disturbing c itself.
func (c *FlatBufferCursor) Fork() BufferCursor {
	return &FlatBufferCursor{buffer: c.buffer, index: c.index}
}
