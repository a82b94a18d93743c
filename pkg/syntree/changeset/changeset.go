// Package changeset turns a pair of text snapshots into the
// []syntree.ChangedRange list Tree.Unchanged expects, using a Myers diff
// over the two texts' bytes.
package changeset

import (
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/salikh-syn/syntree/pkg/syntree"
)

// Compute diffs oldText against newText and returns the changed spans
// between them, in ascending FromA order with no two ranges overlapping,
// ready to pass to (*syntree.Tree).Unchanged.
//
// Adjacent delete/insert diff runs are merged into a single range: two
// half-open edits that touch at the same position describe one edit to
// Tree.Unchanged, not two, since partial would otherwise see a
// zero-width gap between them and keep a child straddling nothing.
func Compute(oldText, newText string) []syntree.ChangedRange {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldText, newText, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	return fromDiffs(diffs)
}

// ComputeBytes is Compute for []byte inputs, the form tscursor and most
// callers already hold their source in.
func ComputeBytes(oldText, newText []byte) []syntree.ChangedRange {
	return Compute(string(oldText), string(newText))
}

func fromDiffs(diffs []diffmatchpatch.Diff) []syntree.ChangedRange {
	var ranges []syntree.ChangedRange

	posA, posB := 0, 0

	for i := 0; i < len(diffs); {
		d := diffs[i]

		if d.Type == diffmatchpatch.DiffEqual {
			posA += len(d.Text)
			posB += len(d.Text)
			i++

			continue
		}

		change := syntree.ChangedRange{FromA: posA, ToA: posA, FromB: posB, ToB: posB}

		for i < len(diffs) && diffs[i].Type != diffmatchpatch.DiffEqual {
			switch diffs[i].Type {
			case diffmatchpatch.DiffDelete:
				posA += len(diffs[i].Text)
				change.ToA = posA
			case diffmatchpatch.DiffInsert:
				posB += len(diffs[i].Text)
				change.ToB = posB
			case diffmatchpatch.DiffEqual:
				// unreachable: the loop condition excludes DiffEqual
			}

			i++
		}

		ranges = append(ranges, change)
	}

	return ranges
}
