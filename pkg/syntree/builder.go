package syntree

import (
	"fmt"
	"log/slog"

	"github.com/salikh-syn/syntree/pkg/safeconv"
	"github.com/salikh-syn/syntree/pkg/syntree/metrics"
)

// maxBufferSlots caps how many int32 slots a single NodeBuffer region may
// accumulate regardless of its source span, guarding against pathological
// inputs (a huge count of zero-width tokens) inflating one buffer
// unboundedly even though DefaultMaxBufferLength bounds its span.
const maxBufferSlots = 4 * 4096

// BuildOptions configures a single call to Build.
type BuildOptions struct {
	// Cursor supplies the postfix stream of parse events to consume.
	Cursor BufferCursor

	// Length is the overall document length; the built tree's length is
	// at least this, and at least the end of its last top-level child.
	Length int

	// Reused holds trees addressable by index from the cursor's reuse
	// records (Size() == ReusedValue).
	Reused []*Tree

	// MaxBufferLength overrides DefaultMaxBufferLength when positive.
	MaxBufferLength int

	// Logger, when set, receives debug-level tracing of buffer-versus-
	// pointer packing decisions.
	Logger *slog.Logger

	// Metrics, when set, receives counts of reuse hits, buffer packs and
	// balancing operations.
	Metrics *metrics.BuildMetrics
}

// BuilderOption is unused by Build itself but kept for callers that want
// to assemble BuildOptions functionally instead of via struct literal.
type BuilderOption func(*BuildOptions)

// WithMaxBufferLength sets BuildOptions.MaxBufferLength.
func WithMaxBufferLength(n int) BuilderOption {
	return func(o *BuildOptions) { o.MaxBufferLength = n }
}

// WithLogger sets BuildOptions.Logger.
func WithLogger(l *slog.Logger) BuilderOption {
	return func(o *BuildOptions) { o.Logger = l }
}

// WithMetrics sets BuildOptions.Metrics.
func WithMetrics(m *metrics.BuildMetrics) BuilderOption {
	return func(o *BuildOptions) { o.Metrics = m }
}

// WithReused sets BuildOptions.Reused.
func WithReused(reused []*Tree) BuilderOption {
	return func(o *BuildOptions) { o.Reused = reused }
}

// Build consumes cursor's whole stream and returns the resulting Tree.
// Apply opts to a zero BuildOptions{Cursor: cursor, Length: length} first
// when using the functional options, e.g.:
//
//	opts := syntree.BuildOptions{Cursor: cur, Length: length}
//	for _, o := range options { o(&opts) }
//	tree, err := syntree.Build(opts)
func Build(opts BuildOptions) (*Tree, error) {
	if opts.Cursor == nil {
		return Empty, nil
	}

	maxBufferLength := opts.MaxBufferLength
	if maxBufferLength <= 0 {
		maxBufferLength = DefaultMaxBufferLength
	}

	b := &builder{
		cursor:          opts.Cursor,
		reused:          opts.Reused,
		maxBufferLength: maxBufferLength,
		logger:          opts.Logger,
		metrics:         opts.Metrics,
	}

	var children []Child

	var positions []int

	for b.cursor.Pos() > 0 {
		child, pos, err := b.takeNode(0, 0, true)
		if err != nil {
			return nil, err
		}

		children = append(children, child)
		positions = append(positions, pos)
	}

	reverseChildren(children, positions)

	length := opts.Length

	if len(positions) > 0 {
		last := len(positions) - 1
		if end := positions[last] + children[last].Length(); end > length {
			length = end
		}
	}

	if b.logger != nil {
		b.logger.Debug("syntree: build complete", "children", len(children), "length", length)
	}

	return NewTree(AnonymousRoot, children, positions, length), nil
}

// builder holds the mutable state threaded through one Build call.
type builder struct {
	cursor          BufferCursor
	reused          []*Tree
	maxBufferLength int
	logger          *slog.Logger
	metrics         *metrics.BuildMetrics
}

// takeNode consumes exactly one node (a reuse reference, a packed buffer
// region, or a pointer subtree) from the cursor, returning it alongside
// its position relative to parentStart. minPos bounds how far back any
// nested recursive call may read; distribute enables the top-level
// tagged-root balancing rule for this call only.
func (b *builder) takeNode(parentStart, minPos int, distribute bool) (Child, int, error) {
	cur := b.cursor
	typ := cur.Type()
	start := cur.Start()
	end := cur.End()
	size := cur.Size()

	if size == ReusedValue {
		idx := int(typ)
		if idx < 0 || idx >= len(b.reused) {
			return nil, 0, fmt.Errorf("%w: reuse index %d out of range (have %d)", ErrMalformedCursor, idx, len(b.reused))
		}

		tree := b.reused[idx]
		b.metrics.ReuseHit()
		cur.Next()

		if b.logger != nil {
			b.logger.Debug("syntree: reuse", "index", idx, "start", start)
		}

		return tree, start - parentStart, nil
	}

	if end-start <= b.maxBufferLength {
		if run := b.findBufferSize(maxBufferSlots, parentStart); run != nil && run.size > 4 {
			buf := b.copyToBuffer(run.size, run.start)
			b.metrics.BufferPacked(run.size / 4)

			if b.logger != nil {
				b.logger.Debug("syntree: packed buffer", "records", run.size/4, "start", run.start)
			}

			return buf, run.start - parentStart, nil
		}
	}

	cur.Next()

	var children []Child

	var positions []int

	for cur.Pos() > minPos && cur.Start() >= start {
		child, pos, err := b.takeNode(start, minPos, false)
		if err != nil {
			return nil, 0, err
		}

		children = append(children, child)
		positions = append(positions, pos)
	}

	reverseChildren(children, positions)

	length := end - start

	if !typ.IsTagged() {
		b.metrics.BalanceOp()

		tree := balanceRange(typ, children, positions, length, b.maxBufferLength)

		return tree, start - parentStart, nil
	}

	if distribute && len(children) > BranchFactor {
		tree := balanceRange(typ, children, positions, length, b.maxBufferLength)

		return tree, start - parentStart, nil
	}

	return NewTree(typ, children, positions, length), start - parentStart, nil
}

// bufferRun describes a contiguous run of complete sibling subtrees that
// fit within one NodeBuffer.
type bufferRun struct {
	size  int
	start int
}

// findBufferSize forks the cursor and scans backward from the current
// position, accumulating complete sibling subtrees (the current node plus
// however many immediately preceding siblings fit) into a single run,
// stopping at a reuse record, at parentStart, once the run's span would
// exceed maxBufferLength, or once maxSlots would be exceeded. Returns nil
// if fewer than two records (> 4 slots) qualify.
func (b *builder) findBufferSize(maxSlots, parentStart int) *bufferRun {
	fork := b.cursor.Fork()

	if fork.Pos() == 0 {
		return nil
	}

	groupEnd := fork.End()
	total := 0
	minStart := fork.Start()

	for fork.Pos() > 0 {
		sz := fork.Size()
		if sz == ReusedValue {
			break
		}

		st := fork.Start()
		if st < parentStart {
			break
		}

		if groupEnd-st > b.maxBufferLength {
			break
		}

		if total+sz > maxSlots {
			break
		}

		total += sz
		minStart = st

		for i := 0; i < sz/4; i++ {
			fork.Next()
		}
	}

	if total <= 4 {
		return nil
	}

	return &bufferRun{size: total, start: minStart}
}

// copyToBuffer consumes size slots (possibly spanning several top-level
// sibling subtrees) from the real cursor, converting them from postfix
// to prefix order into a freshly allocated NodeBuffer whose positions are
// relative to bufferStart.
func (b *builder) copyToBuffer(size, bufferStart int) *NodeBuffer {
	buf := make([]int32, size)

	end := size
	for end > 0 {
		end = b.copyOneSubtree(buf, end, bufferStart)
	}

	return NewNodeBuffer(buf)
}

// copyOneSubtree writes the subtree currently under the cursor into buf,
// filling the region ending at endIndex (exclusive) and working backward,
// advancing the real cursor past the node and all of its descendants.
// Returns the slot index marking where the region it wrote begins, so a
// caller can continue placing an earlier sibling before that point.
func (b *builder) copyOneSubtree(buf []int32, endIndex, bufferStart int) int {
	cur := b.cursor
	typ := cur.Type()
	start := cur.Start()
	end := cur.End()
	size := cur.Size()
	cur.Next()

	childCount := 0
	remaining := size - 4
	region := endIndex

	for remaining > 0 {
		sz := cur.Size()
		region = b.copyOneSubtree(buf, region, bufferStart)
		remaining -= sz
		childCount++
	}

	own := region - 4
	buf[own] = int32(typ)
	buf[own+1] = safeconv.MustIntToInt32(start - bufferStart)
	buf[own+2] = safeconv.MustIntToInt32(end - bufferStart)
	buf[own+3] = int32(childCount)

	return own
}

// reverseChildren reverses children and positions in place; takeNode's
// recursive loops collect results from last sibling to first because the
// cursor walks the stream backward, so callers must restore ascending
// position order before handing the slices to NewTree.
func reverseChildren(children []Child, positions []int) {
	for i, j := 0, len(children)-1; i < j; i, j = i+1, j-1 {
		children[i], children[j] = children[j], children[i]
		positions[i], positions[j] = positions[j], positions[i]
	}
}

// balanceRange restructures a flat run of children spanning [0, length)
// (positions already relative to that span) into a tree of roughly
// BranchFactor-ary depth, wrapped in a Tree of type typ. Runs that
// already fit within maxBufferLength are flattened (inlining any child
// that is itself of type typ) rather than grouped.
func balanceRange(typ TypeID, children []Child, positions []int, length, maxBufferLength int) *Tree {
	if length <= maxBufferLength {
		flatChildren, flatPositions := flattenSameType(typ, children, positions)

		return NewTree(typ, flatChildren, flatPositions, length)
	}

	groupSize := maxBufferLength
	if perBranch := ceilDiv(length, BranchFactor); perBranch > groupSize {
		groupSize = perBranch
	}

	var outChildren []Child

	var outPositions []int

	i := 0
	for i < len(children) {
		groupStart := positions[i]
		groupEnd := groupStart + children[i].Length()
		j := i + 1

		for j < len(children) {
			end := positions[j] + children[j].Length()
			if end-groupStart > groupSize {
				break
			}

			groupEnd = end
			j++
		}

		group := buildGroup(typ, children[i:j], positions[i:j], groupStart, groupEnd, groupSize, maxBufferLength)
		outChildren = append(outChildren, group)
		outPositions = append(outPositions, groupStart)
		i = j
	}

	return NewTree(typ, outChildren, outPositions, length)
}

// buildGroup turns one balance group into a single Child: a lone child of
// the same type is kept as-is unless grossly oversized (longer than twice
// maxChild, the group span limit), a lone child of a different type is
// wrapped so later balancing passes can collapse it, and a multi-child
// group is recursively balanced.
func buildGroup(typ TypeID, children []Child, positions []int, groupStart, groupEnd, maxChild, maxBufferLength int) Child {
	groupLength := groupEnd - groupStart

	if len(children) == 1 {
		only := children[0]

		sub, ok := only.(*Tree)
		if !ok {
			return NewTree(typ, children, []int{0}, groupLength)
		}

		if sub.typ != typ {
			return NewTree(typ, []Child{sub}, []int{0}, groupLength)
		}

		if groupLength <= 2*maxChild {
			return sub
		}

		return balanceRange(typ, sub.children, sub.positions, sub.length, maxBufferLength)
	}

	rel := make([]int, len(positions))
	for k, p := range positions {
		rel[k] = p - groupStart
	}

	return balanceRange(typ, children, rel, groupLength, maxBufferLength)
}

func flattenSameType(typ TypeID, children []Child, positions []int) ([]Child, []int) {
	out := make([]Child, 0, len(children))
	outPos := make([]int, 0, len(positions))

	for i, child := range children {
		if sub, ok := child.(*Tree); ok && sub.typ == typ {
			base := positions[i]
			for j, subPos := range sub.positions {
				out = append(out, sub.children[j])
				outPos = append(outPos, base+subPos)
			}

			continue
		}

		out = append(out, child)
		outPos = append(outPos, positions[i])
	}

	return out, outPos
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}

	return (a + b - 1) / b
}
