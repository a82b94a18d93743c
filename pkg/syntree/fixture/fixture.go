// Package fixture loads YAML-described parse trees for use as test and
// demo inputs: a small, hand-writable document shape that compiles down
// to the same postfix (type, start, end, size) quad stream a real
// BufferCursor would produce, so tests can exercise Builder without a
// parser.
package fixture

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/salikh-syn/syntree/pkg/safeconv"
	"github.com/salikh-syn/syntree/pkg/syntree"
)

// Node is the YAML shape of one fixture node: a type name, its absolute
// span, and nested children in ascending position order. Tagged defaults
// to true when omitted — most fixtures describe semantically visible
// nodes; set it to false explicitly to exercise untagged/grouping
// structure.
type Node struct {
	Type     string `yaml:"type"`
	Start    int    `yaml:"start"`
	End      int    `yaml:"end"`
	Tagged   *bool  `yaml:"tagged"`
	Children []Node `yaml:"children"`
}

func (n Node) tagged() bool {
	if n.Tagged == nil {
		return true
	}

	return *n.Tagged
}

// Document is the top-level YAML shape: an overall document length and
// its top-level nodes.
type Document struct {
	Length int    `yaml:"length"`
	Nodes  []Node `yaml:"nodes"`
}

// Load parses a fixture document from raw YAML bytes.
func Load(data []byte) (Document, error) {
	var doc Document

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("fixture: parse: %w", err)
	}

	return doc, nil
}

// LoadFile reads and parses a fixture document at name within fsys.
func LoadFile(fsys fs.FS, name string) (Document, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Document{}, fmt.Errorf("fixture: read %s: %w", name, err)
	}

	return Load(data)
}

// Cursor turns doc into a postfix quad stream wrapped in a
// syntree.BufferCursor, ready to pass as BuildOptions.Cursor. Each
// distinct type name is interned into its own syntree.TypeID, returned
// alongside the cursor as a TypeTagTable for rendering with Tree.String.
func (doc Document) Cursor() (syntree.BufferCursor, *syntree.TypeTagTable[string], error) {
	in := &interner{ids: make(map[string]syntree.TypeID), tags: syntree.NewTypeTagTable[string]()}

	var buf []int32

	var visit func(n Node) (int, error)

	visit = func(n Node) (int, error) {
		if n.End < n.Start {
			return 0, fmt.Errorf("fixture: node %q has end %d before start %d", n.Type, n.End, n.Start)
		}

		childSlots := 0

		for _, c := range n.Children {
			sz, err := visit(c)
			if err != nil {
				return 0, err
			}

			childSlots += sz
		}

		id := in.intern(n.Type, n.tagged())
		size := 4 + childSlots

		buf = append(buf,
			int32(id),
			safeconv.MustIntToInt32(n.Start),
			safeconv.MustIntToInt32(n.End),
			safeconv.MustIntToInt32(size),
		)

		return size, nil
	}

	for _, n := range doc.Nodes {
		if _, err := visit(n); err != nil {
			return nil, nil, err
		}
	}

	return syntree.NewFlatBufferCursor(buf), in.tags, nil
}

// Build parses doc straight into a *syntree.Tree via syntree.Build,
// applying opts the same way a direct Build call would.
func (doc Document) Build(opts ...syntree.BuilderOption) (*syntree.Tree, *syntree.TypeTagTable[string], error) {
	cursor, tags, err := doc.Cursor()
	if err != nil {
		return nil, nil, err
	}

	bOpts := syntree.BuildOptions{Cursor: cursor, Length: doc.Length}
	for _, o := range opts {
		o(&bOpts)
	}

	tree, err := syntree.Build(bOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("fixture: build: %w", err)
	}

	return tree, tags, nil
}

// interner assigns a stable TypeID to every distinct fixture type name.
type interner struct {
	ids  map[string]syntree.TypeID
	tags *syntree.TypeTagTable[string]
	next int32
}

func (in *interner) intern(name string, tagged bool) syntree.TypeID {
	if id, ok := in.ids[name]; ok {
		return id
	}

	in.next += 2

	id := syntree.TypeID(in.next)
	if tagged {
		id |= 1
	}

	in.ids[name] = id
	in.tags.Set(id, name)

	return id
}
