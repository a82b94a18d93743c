package syntree

import "strings"

// SubtreeView is an ephemeral navigation handle over a position in a
// Tree: a node plus a chain of ancestors reaching back to the root.
// Views are created top-down as navigation descends, so a child's parent
// view always outlives the child and the chain can never cycle.
type SubtreeView interface {
	Parent() SubtreeView
	Type() TypeID
	Start() int
	End() int
	Depth() int
	Resolve(pos int) SubtreeView
	ChildBefore(pos int) SubtreeView
	ChildAfter(pos int) SubtreeView
	Iterate(from, to int, enter EnterFunc, leave LeaveFunc)
	String(tags *TypeTagTable[string]) string
}

// RootView represents the top of a Tree, with no parent.
type RootView struct {
	tree *Tree
}

func (v *RootView) Parent() SubtreeView { return nil }
func (v *RootView) Type() TypeID        { return v.tree.typ }
func (v *RootView) Start() int          { return 0 }
func (v *RootView) End() int            { return v.tree.length }
func (v *RootView) Depth() int          { return 0 }

func (v *RootView) Resolve(pos int) SubtreeView {
	return resolveTree(v.tree, 0, pos, v)
}

func (v *RootView) ChildBefore(pos int) SubtreeView {
	return directChildView(v.tree, 0, pos, -1, v)
}

func (v *RootView) ChildAfter(pos int) SubtreeView {
	return directChildView(v.tree, 0, pos, 1, v)
}

func (v *RootView) Iterate(from, to int, enter EnterFunc, leave LeaveFunc) {
	v.tree.iterateAbs(0, from, to, enter, leave)
}

func (v *RootView) String(tags *TypeTagTable[string]) string {
	return v.tree.String(tags)
}

// NodeView represents a tagged Tree reached while navigating another
// Tree, carrying a link back to its parent view.
type NodeView struct {
	typ          TypeID
	start, end   int
	parent       SubtreeView
	tree         *Tree
}

func (v *NodeView) Parent() SubtreeView { return v.parent }
func (v *NodeView) Type() TypeID        { return v.typ }
func (v *NodeView) Start() int          { return v.start }
func (v *NodeView) End() int            { return v.end }
func (v *NodeView) Depth() int          { return v.parent.Depth() + 1 }

func (v *NodeView) Resolve(pos int) SubtreeView {
	if pos < v.start || pos > v.end {
		return v.parent.Resolve(pos)
	}

	return resolveTree(v.tree, v.start, pos, v)
}

func (v *NodeView) ChildBefore(pos int) SubtreeView {
	return directChildView(v.tree, v.start, pos, -1, v)
}

func (v *NodeView) ChildAfter(pos int) SubtreeView {
	return directChildView(v.tree, v.start, pos, 1, v)
}

func (v *NodeView) Iterate(from, to int, enter EnterFunc, leave LeaveFunc) {
	v.tree.iterateAbs(v.start, from, to, enter, leave)
}

func (v *NodeView) String(tags *TypeTagTable[string]) string {
	return v.tree.String(tags)
}

// BufferView represents one record inside a NodeBuffer, identified by its
// slot index, reached while navigating a Tree or another buffer record.
type BufferView struct {
	typ         TypeID
	start, end  int
	parent      SubtreeView
	buffer      *NodeBuffer
	index       int
	bufferStart int
}

func (v *BufferView) Parent() SubtreeView { return v.parent }
func (v *BufferView) Type() TypeID        { return v.typ }
func (v *BufferView) Start() int          { return v.start }
func (v *BufferView) End() int            { return v.end }
func (v *BufferView) Depth() int          { return v.parent.Depth() + 1 }

func (v *BufferView) Resolve(pos int) SubtreeView {
	if pos < v.start || pos > v.end {
		return v.parent.Resolve(pos)
	}

	childCount := int(v.buffer.buffer[v.index+3])
	if childCount == 0 {
		return v
	}

	inner := v.index + 4
	innerEnd := v.buffer.subtreeEnd(v.index)

	bi := v.buffer.findIndex(pos, 0, v.bufferStart, inner, innerEnd)
	if bi < 0 {
		return v
	}

	return resolveBufferAt(v.buffer, v.bufferStart, bi, pos, v)
}

func (v *BufferView) ChildBefore(pos int) SubtreeView { return v.directChild(pos, -1) }
func (v *BufferView) ChildAfter(pos int) SubtreeView  { return v.directChild(pos, 1) }

func (v *BufferView) directChild(pos, side int) SubtreeView {
	from := v.index + 4
	to := v.buffer.subtreeEnd(v.index)

	for {
		idx := v.buffer.findIndex(pos, side, v.bufferStart, from, to)
		if idx < 0 {
			return nil
		}

		typ := TypeID(v.buffer.buffer[idx])
		if typ.IsTagged() {
			start := v.bufferStart + int(v.buffer.buffer[idx+1])
			end := v.bufferStart + int(v.buffer.buffer[idx+2])

			return &BufferView{
				typ: typ, start: start, end: end,
				parent: v, buffer: v.buffer, index: idx, bufferStart: v.bufferStart,
			}
		}

		if side > 0 {
			from = v.buffer.subtreeEnd(idx)
		} else {
			to = idx
		}
	}
}

func (v *BufferView) Iterate(from, to int, enter EnterFunc, leave LeaveFunc) {
	v.buffer.Iterate(from, to, v.bufferStart, enter, leave)
}

func (v *BufferView) String(tags *TypeTagTable[string]) string {
	var sb strings.Builder

	v.buffer.childToString(v.index, &sb, tags)

	return sb.String()
}

// resolveTree descends from tree (whose own absolute start is treeStart)
// toward pos, updating current to a new NodeView or BufferView whenever
// it enters a tagged node, and passing through anonymous ones
// transparently.
func resolveTree(tree *Tree, treeStart, pos int, current SubtreeView) SubtreeView {
	if pos < 0 {
		pos = 0
	}

	rel := pos - treeStart

	idx := findChildIndex(tree.positions, tree.children, rel, 0)
	if idx < 0 {
		return current
	}

	childStart := treeStart + tree.positions[idx]

	switch child := tree.children[idx].(type) {
	case *Tree:
		if child.typ.IsTagged() {
			view := &NodeView{typ: child.typ, start: childStart, end: childStart + child.length, parent: current, tree: child}

			return resolveTree(child, childStart, pos, view)
		}

		return resolveTree(child, childStart, pos, current)
	case *NodeBuffer:
		return resolveBuffer(child, childStart, pos, current)
	}

	return current
}

func resolveBuffer(buf *NodeBuffer, bufStart, pos int, current SubtreeView) SubtreeView {
	idx := buf.findIndex(pos, 0, bufStart, 0, len(buf.buffer))
	if idx < 0 {
		return current
	}

	return resolveBufferAt(buf, bufStart, idx, pos, current)
}

func resolveBufferAt(buf *NodeBuffer, bufStart, startIdx, pos int, current SubtreeView) SubtreeView {
	idx := startIdx

	for idx >= 0 {
		typ := TypeID(buf.buffer[idx])
		if typ.IsTagged() {
			start := bufStart + int(buf.buffer[idx+1])
			end := bufStart + int(buf.buffer[idx+2])
			current = &BufferView{typ: typ, start: start, end: end, parent: current, buffer: buf, index: idx, bufferStart: bufStart}
		}

		childCount := int(buf.buffer[idx+3])
		if childCount == 0 {
			break
		}

		inner := idx + 4
		innerEnd := buf.subtreeEnd(idx)

		next := buf.findIndex(pos, 0, bufStart, inner, innerEnd)
		if next < 0 {
			break
		}

		idx = next
	}

	return current
}

// directChildView finds the nearest direct tagged child of tree (at
// treeStart) on the given side of pos. When pos falls inside a packed
// NodeBuffer child, the qualifying record may live in that very buffer,
// so that child is searched directly (over its whole span) before
// stepping to a neighboring tree-level child; untagged Tree children, and
// tagged ones that don't satisfy side, are skipped over to the next slot
// in that direction.
func directChildView(tree *Tree, treeStart, pos, side int, parent SubtreeView) SubtreeView {
	rel := pos - treeStart

	idx := findChildIndex(tree.positions, tree.children, rel, 0)
	if idx < 0 {
		idx = findChildIndex(tree.positions, tree.children, rel, side)
	}

	for idx >= 0 && idx < len(tree.children) {
		childStart := treeStart + tree.positions[idx]

		switch child := tree.children[idx].(type) {
		case *Tree:
			if child.typ.IsTagged() {
				childEnd := childStart + child.length
				if (side < 0 && childEnd <= pos) || (side > 0 && childEnd > pos) {
					return &NodeView{typ: child.typ, start: childStart, end: childEnd, parent: parent, tree: child}
				}
			}
		case *NodeBuffer:
			from, to := 0, len(child.buffer)

			for {
				bi := child.findIndex(pos, side, childStart, from, to)
				if bi < 0 {
					break
				}

				typ := TypeID(child.buffer[bi])
				if typ.IsTagged() {
					start := childStart + int(child.buffer[bi+1])
					end := childStart + int(child.buffer[bi+2])

					return &BufferView{typ: typ, start: start, end: end, parent: parent, buffer: child, index: bi, bufferStart: childStart}
				}

				if side > 0 {
					from = child.subtreeEnd(bi)
				} else {
					to = bi
				}
			}
		}

		if side < 0 {
			idx--
		} else {
			idx++
		}
	}

	return nil
}
