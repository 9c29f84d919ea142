package parse

// TreeBuilder reconstructs a forest from indentation-coded flat listings.
// Each entry becomes a child of the most recently pushed entry whose level
// is strictly less than its own, or a new top-level root when no such entry
// remains on the stack.
//
// N is the caller's node handle (a pointer type); attach receives the zero
// value of N for roots. The builder does O(1) amortized work per entry and
// keeps O(depth) state.
type TreeBuilder[N comparable] struct {
	attach func(parent N, e Entry) N
	stack  []frame[N]
}

type frame[N comparable] struct {
	level  int
	handle N
}

// NewTreeBuilder returns a builder that calls attach for every entry pushed.
// attach must create the node, link it under parent (or record it as a root
// when parent is the zero value), and return its handle.
func NewTreeBuilder[N comparable](attach func(parent N, e Entry) N) *TreeBuilder[N] {
	return &TreeBuilder[N]{attach: attach}
}

// Push feeds the next entry in file order and returns the handle attach
// produced for it.
//
// A level jump greater than one (a level-3 entry directly after a level-0
// entry) is accepted as-is: the deeper entry attaches to whatever shallower
// ancestor remains on the stack. The reports are not supposed to contain
// such jumps, but the tool's output is not validated here.
func (b *TreeBuilder[N]) Push(e Entry) N {
	for len(b.stack) > 0 && b.stack[len(b.stack)-1].level >= e.Level {
		b.stack = b.stack[:len(b.stack)-1]
	}

	var parent N
	if len(b.stack) > 0 {
		parent = b.stack[len(b.stack)-1].handle
	}

	handle := b.attach(parent, e)
	b.stack = append(b.stack, frame[N]{level: e.Level, handle: handle})
	return handle
}

// Depth returns the current stack depth. Useful for diagnostics only.
func (b *TreeBuilder[N]) Depth() int {
	return len(b.stack)
}

// Reset clears the stack so the builder can be reused for another listing.
func (b *TreeBuilder[N]) Reset() {
	b.stack = b.stack[:0]
}
