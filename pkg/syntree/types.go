// Package syntree implements a persistent, memory-efficient parse-tree
// representation designed for incremental parsers: a packed NodeBuffer
// for dense leafy regions, pointer Trees for everything else, ephemeral
// SubtreeViews for parent-aware navigation, and a Builder that turns a
// postfix stream of parse events into one of these trees in a single
// backward pass.
package syntree

// TypeID identifies a node's grammar type. The low bit distinguishes
// semantically visible ("tagged") types from anonymous grouping types
// introduced by the builder or the parser's own repetition handling
// ("untagged"). Id 0 is the anonymous root type used to wrap a tree's
// top-level content.
type TypeID int32

// AnonymousRoot is the type id assigned to the implicit node wrapping a
// built tree's top-level children.
const AnonymousRoot TypeID = 0

// IsTagged reports whether id refers to a semantically visible node type,
// as opposed to a transparent grouping node.
func (id TypeID) IsTagged() bool {
	return id&1 == 1
}

// ReusedValue is the sentinel a BufferCursor reports as Size() when the
// record at the cursor's current position is not a freshly parsed node
// but a reference into the Builder's Reused slice. When this sentinel is
// seen, Type() holds the index into that slice rather than a real type id.
const ReusedValue = -1

// BranchFactor bounds how many children a balanced internal group may
// hold before the builder splits it into sub-groups.
const BranchFactor = 8

// DefaultMaxBufferLength is the span, in source positions, above which a
// node is never packed into a NodeBuffer and is instead built as a
// pointer Tree.
const DefaultMaxBufferLength = 1024

// Child is implemented by the two representations a Tree may hold as a
// direct child: another Tree, or a packed NodeBuffer covering a dense run
// of descendants.
type Child interface {
	Length() int
}

// EnterFunc is called when Iterate descends into a tagged node. Returning
// false suppresses descent into that node's children and skips the
// matching LeaveFunc call for it.
type EnterFunc func(typ TypeID, start, end int) bool

// LeaveFunc is called after Iterate finishes a tagged node's children,
// provided its EnterFunc call returned true. May be nil.
type LeaveFunc func(typ TypeID, start, end int)
