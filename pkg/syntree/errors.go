package syntree

import "errors"

// Sentinel errors returned by the tree construction and editing operations.
var (
	// ErrOverlap is returned by Tree.Append when the argument tree's first
	// child starts before the receiver's length.
	ErrOverlap = errors.New("syntree: appended tree overlaps receiver")

	// ErrMalformedCursor is returned by Build when a reuse record's index
	// falls outside BuildOptions.Reused. Other violations of the postfix
	// quad contract (such as a size that disagrees with the records
	// present) are not detected.
	ErrMalformedCursor = errors.New("syntree: malformed cursor stream")
)
