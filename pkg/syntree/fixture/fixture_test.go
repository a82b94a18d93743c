package fixture_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salikh-syn/syntree/pkg/syntree/fixture"
)

const sampleYAML = `
length: 20
nodes:
  - type: Statement
    start: 0
    end: 10
  - type: Statement
    start: 10
    end: 20
    children:
      - type: Identifier
        start: 15
        end: 20
`

func TestLoadParsesDocumentShape(t *testing.T) {
	t.Parallel()

	doc, err := fixture.Load([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 20, doc.Length)
	require.Len(t, doc.Nodes, 2)
	assert.Equal(t, "Statement", doc.Nodes[0].Type)
	require.Len(t, doc.Nodes[1].Children, 1)
	assert.Equal(t, "Identifier", doc.Nodes[1].Children[0].Type)
}

func TestLoadFileReadsFromFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"tree.yaml": &fstest.MapFile{Data: []byte(sampleYAML)},
	}

	doc, err := fixture.LoadFile(fsys, "tree.yaml")
	require.NoError(t, err)
	assert.Equal(t, 20, doc.Length)
}

func TestCursorEmitsPostfixSiblingQuads(t *testing.T) {
	t.Parallel()

	doc := fixture.Document{
		Length: 20,
		Nodes: []fixture.Node{
			{Type: "A", Start: 0, End: 10},
			{Type: "B", Start: 10, End: 20},
		},
	}

	cursor, tags, err := doc.Cursor()
	require.NoError(t, err)

	// The stream is postfix (A before B), so the cursor — which starts
	// at the stream's end and walks backward — sees B first.
	kind, ok := tags.Get(cursor.Type())
	require.True(t, ok)
	assert.Equal(t, "B", kind)
	assert.Equal(t, 10, cursor.Start())
	assert.Equal(t, 20, cursor.End())

	cursor.Next()

	kind, ok = tags.Get(cursor.Type())
	require.True(t, ok)
	assert.Equal(t, "A", kind)
	assert.Equal(t, 0, cursor.Start())
	assert.Equal(t, 10, cursor.End())

	cursor.Next()
	assert.Equal(t, 0, cursor.Pos())
}

func TestDocumentBuildResolvesNestedNode(t *testing.T) {
	t.Parallel()

	doc, err := fixture.Load([]byte(sampleYAML))
	require.NoError(t, err)

	tree, tags, err := doc.Build()
	require.NoError(t, err)
	assert.Equal(t, 20, tree.Length())

	inner := tree.Resolve(17)
	require.NotNil(t, inner)

	kind, ok := tags.Get(inner.Type())
	require.True(t, ok)
	assert.Equal(t, "Identifier", kind)

	outer := tree.Resolve(5)
	require.NotNil(t, outer)

	kind, ok = tags.Get(outer.Type())
	require.True(t, ok)
	assert.Equal(t, "Statement", kind)
}

func TestCursorRejectsInvertedSpan(t *testing.T) {
	t.Parallel()

	doc := fixture.Document{
		Length: 10,
		Nodes:  []fixture.Node{{Type: "Broken", Start: 5, End: 2}},
	}

	_, _, err := doc.Cursor()
	require.Error(t, err)
}

func TestNodeTaggedDefaultsTrueAndCanBeOverridden(t *testing.T) {
	t.Parallel()

	untagged := false
	doc := fixture.Document{
		Length: 10,
		Nodes: []fixture.Node{
			{Type: "Grouping", Start: 0, End: 10, Tagged: &untagged},
		},
	}

	cursor, _, err := doc.Cursor()
	require.NoError(t, err)
	assert.False(t, cursor.Type().IsTagged())

	defaultDoc := fixture.Document{Length: 10, Nodes: []fixture.Node{{Type: "Tagged", Start: 0, End: 10}}}

	defaultCursor, _, err := defaultDoc.Cursor()
	require.NoError(t, err)
	assert.True(t, defaultCursor.Type().IsTagged())
}
