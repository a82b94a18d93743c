package syntree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salikh-syn/syntree/pkg/syntree"
)

const (
	typeA syntree.TypeID = 1 // tagged
	typeB syntree.TypeID = 3 // tagged
)

func leaf(typ syntree.TypeID, length int) *syntree.Tree {
	return syntree.NewTree(typ, nil, nil, length)
}

// tenEvenLeaves builds a flat tree of ten individually addressable tagged
// leaf children, spanning [0,100) at 10-unit intervals, without any
// NodeBuffer packing, so editing operations can be tested against exact
// per-child identity.
func tenEvenLeaves() *syntree.Tree {
	children := make([]syntree.Child, 10)
	positions := make([]int, 10)

	for i := 0; i < 10; i++ {
		children[i] = leaf(typeA, 10)
		positions[i] = i * 10
	}

	return syntree.NewTree(syntree.AnonymousRoot, children, positions, 100)
}

func TestTreeCutReturnsReceiverAtFullLength(t *testing.T) {
	t.Parallel()

	tree := tenEvenLeaves()
	assert.Same(t, tree, tree.Cut(tree.Length()))
}

func TestTreeCutBoundsLength(t *testing.T) {
	t.Parallel()

	tree := tenEvenLeaves()
	cut := tree.Cut(45)

	assert.LessOrEqual(t, cut.Length(), 45)
	assert.Equal(t, 45, cut.Length())

	// Children starting before 45 survive; the one straddling 45 ([40,50))
	// is kept too, recursively cut down to a zero-child leaf of length 5.
	require.Len(t, cut.Children(), 5)
}

func TestTreeAppendEmptyIsNoop(t *testing.T) {
	t.Parallel()

	tree := tenEvenLeaves()

	appended, err := tree.Append(syntree.Empty)
	require.NoError(t, err)
	assert.Equal(t, tree.Length(), appended.Length())
	assert.Same(t, tree, appended)
}

func TestTreeAppendRejectsOverlap(t *testing.T) {
	t.Parallel()

	tree := tenEvenLeaves()
	overlapping := syntree.NewTree(syntree.AnonymousRoot, []syntree.Child{leaf(typeA, 10)}, []int{50}, 60)

	_, err := tree.Append(overlapping)
	require.Error(t, err)
	assert.ErrorIs(t, err, syntree.ErrOverlap)
}

func TestTreeAppendConcatenates(t *testing.T) {
	t.Parallel()

	tree := tenEvenLeaves()
	more := syntree.NewTree(syntree.AnonymousRoot, []syntree.Child{leaf(typeA, 10)}, []int{100}, 110)

	appended, err := tree.Append(more)
	require.NoError(t, err)
	assert.Equal(t, 110, appended.Length())
	assert.Len(t, appended.Children(), 11)
}

func TestTreeUnchangedKeepsUntouchedChildrenByReference(t *testing.T) {
	t.Parallel()

	tree := tenEvenLeaves()
	original := make([]syntree.Child, len(tree.Children()))
	copy(original, tree.Children())

	result := tree.Unchanged([]syntree.ChangedRange{{FromA: 40, ToA: 60, FromB: 40, ToB: 50}})

	assert.Equal(t, 90, result.Length())

	var beforeGap, afterGap int

	for i, pos := range result.Positions() {
		child := result.Children()[i]
		end := pos + child.Length()

		switch {
		case end <= 40:
			beforeGap++
			assert.Same(t, original[i], child, "children before the change must be reference-identical")
		case pos >= 50:
			afterGap++
			assert.GreaterOrEqual(t, pos, 50)
			assert.LessOrEqual(t, pos, 90)
		default:
			t.Fatalf("unexpected child spanning the gap at pos=%d end=%d", pos, end)
		}
	}

	// The leaf at [30,40) directly abuts the edit boundary at FromA=40, so
	// the one-unit-short trim excludes it from reuse; only [0,30) survives.
	assert.Equal(t, 3, beforeGap, "children covering [0,30) must survive; the leaf abutting the edit is dropped")
	assert.Equal(t, 4, afterGap, "children originally at [60,100) must survive, shifted")
}

func TestTreeUnchangedNoChangesReturnsReceiver(t *testing.T) {
	t.Parallel()

	tree := tenEvenLeaves()
	assert.Same(t, tree, tree.Unchanged(nil))
}

func TestTreeEmptyUnchangedStaysEmpty(t *testing.T) {
	t.Parallel()

	result := syntree.Empty.Unchanged([]syntree.ChangedRange{{FromA: 0, ToA: 0, FromB: 0, ToB: 5}})
	assert.Equal(t, syntree.Empty.String(nil), result.String(nil))
}

// nestedAB builds tagged node A spanning [0,20) containing tagged child B
// spanning [5,15), matching the resolve-precedence scenario.
func nestedAB() *syntree.Tree {
	b := syntree.NewTree(typeB, nil, nil, 10)
	a := syntree.NewTree(typeA, []syntree.Child{b}, []int{5}, 20)

	return syntree.NewTree(syntree.AnonymousRoot, []syntree.Child{a}, []int{0}, 20)
}

func TestTreeResolvePrecedence(t *testing.T) {
	t.Parallel()

	root := nestedAB()

	atTen := root.Resolve(10)
	assert.Equal(t, typeB, atTen.Type())
	assert.Equal(t, 5, atTen.Start())
	assert.Equal(t, 15, atTen.End())
	require.NotNil(t, atTen.Parent())
	assert.Equal(t, typeA, atTen.Parent().Type())

	atFive := root.Resolve(5)
	assert.Equal(t, typeB, atFive.Type(), "resolve is inclusive on a child's start")

	// 20 is A's exclusive end, so no child of root contains it: resolve
	// falls back to the root view itself.
	atTwenty := root.Resolve(20)
	assert.Equal(t, syntree.AnonymousRoot, atTwenty.Type())
	assert.Nil(t, atTwenty.Parent())
}

func TestTreeIterateSkipOnFalseEnter(t *testing.T) {
	t.Parallel()

	root := nestedAB()

	var entered []syntree.TypeID

	var left []syntree.TypeID

	root.Iterate(0, 20, func(typ syntree.TypeID, start, end int) bool {
		entered = append(entered, typ)

		return typ != typeA
	}, func(typ syntree.TypeID, start, end int) {
		left = append(left, typ)
	})

	assert.Equal(t, []syntree.TypeID{typeA}, entered)
	assert.Empty(t, left, "suppressing descent into A must also suppress its leave call")
}

func TestTreePositionsAreNondecreasingAndWithinLength(t *testing.T) {
	t.Parallel()

	tree := tenEvenLeaves()

	prev := -1

	for i, pos := range tree.Positions() {
		assert.GreaterOrEqual(t, pos, prev)
		assert.LessOrEqual(t, pos+tree.Children()[i].Length(), tree.Length())
		prev = pos
	}
}

func TestTreeChildBeforeAfterBoundaries(t *testing.T) {
	t.Parallel()

	tree := tenEvenLeaves()

	assert.Nil(t, tree.ChildBefore(0), "nothing precedes the very start")
	assert.Nil(t, tree.ChildAfter(100), "nothing follows the very end")

	before := tree.ChildBefore(25)
	require.NotNil(t, before)
	assert.Equal(t, 10, before.Start())

	after := tree.ChildAfter(25)
	require.NotNil(t, after)
	assert.Equal(t, 20, after.Start())
}

func TestTreeStringAnonymousRootIsBareChildList(t *testing.T) {
	t.Parallel()

	root := nestedAB()
	assert.Equal(t, "1(3)", root.String(nil))
}

func TestTreeStringUsesTagNames(t *testing.T) {
	t.Parallel()

	tags := syntree.NewTypeTagTable[string]()
	tags.Set(typeA, "Program")
	tags.Set(typeB, "Statement")

	root := nestedAB()
	assert.Equal(t, "Program(Statement)", root.String(tags))
}
