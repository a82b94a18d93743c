package tscursor

import "github.com/salikh-syn/syntree/pkg/syntree"

// Interner assigns a stable syntree.TypeID to every distinct tree-sitter
// node kind it sees. Named grammar nodes (identifiers, statements,
// declarations — anything ts_node_is_named reports true for) are tagged,
// matching syntree's convention that a tagged type is semantically
// visible; anonymous nodes (keywords, punctuation) are interned untagged,
// so they read as transparent grouping structure the way syntree expects.
type Interner struct {
	ids  map[string]syntree.TypeID
	tags *syntree.TypeTagTable[string]
	next int32
}

// NewInterner returns an empty Interner.
func NewInterner() *Interner {
	return &Interner{ids: make(map[string]syntree.TypeID), tags: syntree.NewTypeTagTable[string]()}
}

// intern returns the TypeID for kind, assigning a new one on first sight.
// A kind's tagged-ness is fixed by whichever call first interns it; a
// grammar never reports the same node kind as named in one parse and
// anonymous in another, so this never causes an inconsistency in
// practice.
func (in *Interner) intern(kind string, named bool) syntree.TypeID {
	if id, ok := in.ids[kind]; ok {
		return id
	}

	in.next += 2

	id := syntree.TypeID(in.next)
	if named {
		id |= 1
	}

	in.ids[kind] = id
	in.tags.Set(id, kind)

	return id
}

// Tags returns the TypeTagTable translating this Interner's ids back to
// grammar node kind names, suitable for Tree.String.
func (in *Interner) Tags() *syntree.TypeTagTable[string] { return in.tags }
