// Package tscursor grounds syntree's BufferCursor contract in a real
// parser: it drives go-tree-sitter-bare over a go-sitter-forest grammar
// and walks the resulting concrete syntax tree into the flat, postfix
// (type, start, end, size) quad stream syntree.Build expects, interning
// each grammar node kind into a TypeID as it goes.
package tscursor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	forest "github.com/alexaandru/go-sitter-forest"
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/salikh-syn/syntree/pkg/safeconv"
	"github.com/salikh-syn/syntree/pkg/syntree"
)

// Sentinel errors for parser construction and parsing.
var (
	ErrLanguageNotAvailable = errors.New("tscursor: tree-sitter language not available")
	ErrNoRootNode           = errors.New("tscursor: parsed tree has no root node")
	errPoolType             = errors.New("tscursor: parser pool returned unexpected type")
)

// Parser parses source text in one tree-sitter grammar and turns each
// parse into a postfix quad stream. A Parser is safe for concurrent use:
// the underlying *sitter.Parser instances are pooled, one checked out per
// call to Parse.
type Parser struct {
	language string
	lang     *sitter.Language
	pool     sync.Pool
}

// NewParser resolves language (a go-sitter-forest grammar name, e.g. "go")
// and returns a Parser ready to use. go-sitter-forest panics instead of
// returning an error for an unknown grammar name, so the lookup runs
// under recover.
func NewParser(language string) (*Parser, error) {
	var lang *sitter.Language

	func() {
		defer func() {
			_ = recover() //nolint:errcheck // recover() returns any, not error
		}()

		lang = forest.GetLanguage(language)
	}()

	if lang == nil {
		return nil, fmt.Errorf("%w: %s", ErrLanguageNotAvailable, language)
	}

	p := &Parser{language: language, lang: lang}
	p.pool = sync.Pool{
		New: func() any {
			tsParser := sitter.NewParser()
			tsParser.SetLanguage(lang)

			return tsParser
		},
	}

	return p, nil
}

// Language returns the grammar name this Parser was built for.
func (p *Parser) Language() string { return p.language }

// Result is one parse's output: a ready-to-build cursor over its postfix
// quad stream, the document length, and the TypeTagTable translating
// interned TypeIDs back to grammar node kind names.
type Result struct {
	Cursor syntree.BufferCursor
	Length int
	Tags   *syntree.TypeTagTable[string]
}

// Parse parses source and returns its postfix quad stream wrapped in a
// syntree.BufferCursor, ready to pass as BuildOptions.Cursor. Each call
// interns node kinds into a fresh TypeTagTable; callers needing stable
// ids across multiple parses (e.g. to diff two revisions) should reuse
// one Interner across Parse calls via ParseWith instead.
func (p *Parser) Parse(ctx context.Context, source []byte) (Result, error) {
	return p.ParseWith(ctx, source, NewInterner())
}

// ParseWith is like Parse but interns node kinds into interner instead of
// a fresh table, so TypeIDs stay stable across parses sharing it (the
// precondition syntree.Tree.Unchanged relies on when comparing two
// revisions of the same grammar).
func (p *Parser) ParseWith(ctx context.Context, source []byte, interner *Interner) (Result, error) {
	tsParser, ok := p.pool.Get().(*sitter.Parser)
	if !ok {
		return Result{}, errPoolType
	}

	defer p.pool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, source)
	if err != nil {
		return Result{}, fmt.Errorf("tscursor: parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return Result{}, ErrNoRootNode
	}

	w := walker{interner: interner}
	w.visit(root)

	return Result{
		Cursor: syntree.NewFlatBufferCursor(w.buf),
		Length: safeconv.MustUintToInt(root.EndByte()),
		Tags:   interner.Tags(),
	}, nil
}

// walker accumulates a postfix quad stream by recursing depth-first over
// a tree-sitter tree, writing each node's own quad only after all of its
// children's quads have already been appended.
type walker struct {
	interner *Interner
	buf      []int32
}

// visit appends node's subtree to w.buf in postfix order and returns the
// total slot footprint (4 plus every descendant's own footprint) that its
// own quad reports as its size field.
func (w *walker) visit(n sitter.Node) int {
	childSlots := 0

	count := n.ChildCount()
	for i := range count {
		childSlots += w.visit(n.Child(i))
	}

	typ := w.interner.intern(n.Type(), n.IsNamed())
	start := safeconv.MustUintToInt(n.StartByte())
	end := safeconv.MustUintToInt(n.EndByte())
	size := 4 + childSlots

	w.buf = append(w.buf, int32(typ), safeconv.MustIntToInt32(start), safeconv.MustIntToInt32(end), safeconv.MustIntToInt32(size))

	return size
}
