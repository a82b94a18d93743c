package syntree

import (
	"strconv"
	"strings"

	"github.com/salikh-syn/syntree/pkg/safeconv"
)

// NodeBuffer is a packed array of (type, start, end, childCount) int32
// quads describing a dense run of small nodes in prefix order: a
// record's direct children immediately follow it, each followed in turn
// by its own children, and so on. Positions are relative to the buffer's
// own start, not absolute source offsets. childCount counts only direct
// children; a record's full subtree footprint is derived by recursively
// walking those children, not stored directly.
type NodeBuffer struct {
	buffer []int32
}

// NewNodeBuffer wraps a prefix-ordered quad array as a NodeBuffer.
func NewNodeBuffer(buffer []int32) *NodeBuffer {
	return &NodeBuffer{buffer: buffer}
}

// Length returns the end position of the buffer's last top-level record,
// which is also the buffer's own span.
func (b *NodeBuffer) Length() int {
	if len(b.buffer) == 0 {
		return 0
	}

	return int(b.buffer[len(b.buffer)-2])
}

// subtreeEnd returns the slot index immediately after the whole subtree
// rooted at index (the record itself plus all of its descendants),
// recursively applying each descendant's own childCount.
func (b *NodeBuffer) subtreeEnd(index int) int {
	childCount := int(b.buffer[index+3])
	cur := index + 4

	for i := 0; i < childCount; i++ {
		cur = b.subtreeEnd(cur)
	}

	return cur
}

// Iterate walks the buffer's records in prefix order, reporting absolute
// positions shifted by offset, and restricts itself to records
// intersecting the closed range [from, to]. Since children are always
// contained within their parent's span, a record whose span misses it is
// skipped along with its whole subtree without invoking enter.
func (b *NodeBuffer) Iterate(from, to, offset int, enter EnterFunc, leave LeaveFunc) {
	var visit func(index int) int

	visit = func(index int) int {
		typ := TypeID(b.buffer[index])
		start := int(b.buffer[index+1]) + offset
		end := int(b.buffer[index+2]) + offset
		childCount := int(b.buffer[index+3])
		next := index + 4

		if start > to || end < from {
			for i := 0; i < childCount; i++ {
				next = b.subtreeEnd(next)
			}

			return next
		}

		descend := true
		if typ.IsTagged() {
			descend = enter(typ, start, end)
		}

		if descend {
			for i := 0; i < childCount; i++ {
				next = visit(next)
			}

			if typ.IsTagged() && leave != nil {
				leave(typ, start, end)
			}
		} else {
			for i := 0; i < childCount; i++ {
				next = b.subtreeEnd(next)
			}
		}

		return next
	}

	idx := 0
	for idx < len(b.buffer) {
		idx = visit(idx)
	}
}

// findIndex returns the slot index of the top-level record, restricted to
// the half-open slot range [from, to), that resolves pos with the given
// side tie-break: side < 0 wants the last record ending at or before pos
// (strictly before it), side > 0 wants the first record not entirely
// before pos (it may straddle pos or start after it), and side == 0 wants
// the record that actually contains pos (start <= pos < end). Zero-width
// records exactly at pos are never selected. Returns -1 when nothing
// matches.
func (b *NodeBuffer) findIndex(pos, side, bufferStart, from, to int) int {
	switch {
	case side < 0:
		prev := -1
		i := from

		for i < to {
			start := bufferStart + int(b.buffer[i+1])
			end := bufferStart + int(b.buffer[i+2])
			next := b.subtreeEnd(i)

			if start == end && start == pos {
				i = next

				continue
			}

			if end <= pos {
				prev = i
				i = next

				continue
			}

			break
		}

		return prev

	case side > 0:
		i := from

		for i < to {
			start := bufferStart + int(b.buffer[i+1])
			end := bufferStart + int(b.buffer[i+2])

			if start == end && start == pos {
				i = b.subtreeEnd(i)

				continue
			}

			if end > pos {
				return i
			}

			i = b.subtreeEnd(i)
		}

		return -1

	default:
		i := from

		for i < to {
			start := bufferStart + int(b.buffer[i+1])
			end := bufferStart + int(b.buffer[i+2])
			next := b.subtreeEnd(i)

			if start == end && start == pos {
				i = next

				continue
			}

			if start <= pos && pos < end {
				return i
			}

			if start > pos {
				break
			}

			i = next
		}

		return -1
	}
}

// Cut returns a NodeBuffer retaining only records starting before at; a
// record straddling at has its end clamped and its descendants dropped
// or clamped in turn.
func (b *NodeBuffer) Cut(at int) *NodeBuffer {
	var out []int32

	i := 0
	for i < len(b.buffer) {
		start := int(b.buffer[i+1])
		if start >= at {
			break
		}

		end := int(b.buffer[i+2])
		next := b.subtreeEnd(i)

		if end <= at {
			out = append(out, b.buffer[i:next]...)
		} else {
			out, _ = b.cutRecordInto(out, i, at)
		}

		i = next
	}

	return NewNodeBuffer(out)
}

// cutRecordInto appends a clamped copy of the subtree at idx to out,
// returning the updated slice and the number of direct children kept.
func (b *NodeBuffer) cutRecordInto(out []int32, idx, at int) ([]int32, int) {
	typ := b.buffer[idx]
	start := b.buffer[idx+1]
	end := b.buffer[idx+2]
	childCount := int(b.buffer[idx+3])

	if int(end) > at {
		end = safeconv.MustIntToInt32(at)
	}

	header := len(out)
	out = append(out, typ, start, end, 0)

	kept := 0
	child := idx + 4

	for c := 0; c < childCount; c++ {
		childStart := int(b.buffer[child+1])
		if childStart >= at {
			break
		}

		childEnd := int(b.buffer[child+2])
		next := b.subtreeEnd(child)

		if childEnd <= at {
			out = append(out, b.buffer[child:next]...)
		} else {
			out, _ = b.cutRecordInto(out, child, at)
		}

		kept++
		child = next
	}

	out[header+3] = int32(kept)

	return out, kept
}

// childToString renders the record at index (and, if it has any, its
// children) using tags to resolve display names, falling back to the raw
// numeric id. Untagged records render transparently: only their children
// are written, comma-joined, with no name or parentheses of their own.
func (b *NodeBuffer) childToString(index int, sink *strings.Builder, tags *TypeTagTable[string]) {
	typ := TypeID(b.buffer[index])
	childCount := int(b.buffer[index+3])

	if !typ.IsTagged() {
		b.writeChildrenString(index, childCount, sink, tags)

		return
	}

	sink.WriteString(nameFor(typ, tags))

	if childCount == 0 {
		return
	}

	sink.WriteByte('(')
	b.writeChildrenString(index, childCount, sink, tags)
	sink.WriteByte(')')
}

func (b *NodeBuffer) writeChildrenString(index, childCount int, sink *strings.Builder, tags *TypeTagTable[string]) {
	child := index + 4

	for i := 0; i < childCount; i++ {
		if i > 0 {
			sink.WriteByte(',')
		}

		b.childToString(child, sink, tags)
		child = b.subtreeEnd(child)
	}
}

func nameFor(id TypeID, tags *TypeTagTable[string]) string {
	if name, ok := tags.Get(id); ok {
		return name
	}

	return strconv.Itoa(int(id))
}
