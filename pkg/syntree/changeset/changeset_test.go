package changeset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/salikh-syn/syntree/pkg/syntree/changeset"
)

func TestComputeIdenticalTextsYieldNoRanges(t *testing.T) {
	t.Parallel()

	ranges := changeset.Compute("package main\n", "package main\n")
	assert.Empty(t, ranges)
}

func TestComputeMiddleSubstitution(t *testing.T) {
	t.Parallel()

	ranges := changeset.Compute("abc", "axc")

	if assert.Len(t, ranges, 1) {
		assert.Equal(t, 1, ranges[0].FromA)
		assert.Equal(t, 2, ranges[0].ToA)
		assert.Equal(t, 1, ranges[0].FromB)
		assert.Equal(t, 2, ranges[0].ToB)
	}
}

func TestComputeRangesOrderedAndNonOverlapping(t *testing.T) {
	t.Parallel()

	oldText := "func a() {}\nfunc b() {}\nfunc c() {}\n"
	newText := "func a() {}\nfunc bee() {}\nfunc cee() {}\n"

	ranges := changeset.Compute(oldText, newText)
	a := assert.New(t)

	a.NotEmpty(ranges)

	prevToA := -1

	for _, r := range ranges {
		a.LessOrEqual(prevToA, r.FromA)
		a.LessOrEqual(r.FromA, r.ToA)
		a.LessOrEqual(r.FromB, r.ToB)
		prevToA = r.ToA
	}
}

func TestComputeRangesAccountForWholeLengthDelta(t *testing.T) {
	t.Parallel()

	oldText := "one two three four five"
	newText := "one TWO three FOUR five six"

	ranges := changeset.Compute(oldText, newText)

	delta := 0
	for _, r := range ranges {
		delta += (r.ToB - r.FromB) - (r.ToA - r.FromA)
	}

	assert.Equal(t, len(newText)-len(oldText), delta)
}

func TestComputeBytesMatchesCompute(t *testing.T) {
	t.Parallel()

	oldText := "package main\n"
	newText := "package demo\n"

	fromStrings := changeset.Compute(oldText, newText)
	fromBytes := changeset.ComputeBytes([]byte(oldText), []byte(newText))

	assert.Equal(t, fromStrings, fromBytes)
}
