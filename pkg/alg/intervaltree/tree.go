// Package intervaltree provides an AVL-balanced, augmented interval tree.
//
// The tree stores distinct closed intervals ordered by (lower, upper) and
// supports exact membership, minimum/maximum, in-order iteration, and
// overlap queries. Insert, Remove and Find run in O(log N). Overlapping runs
// in time proportional to the number of visited nodes: each node caches an
// annotation spanning the smallest lower bound and the largest upper bound
// of its subtree, so subtrees that cannot touch the query are skipped.
//
// A Tree is not safe for concurrent use. Callers must serialize all
// operations, including reads that run while another goroutine mutates.
package intervaltree

import (
	"log/slog"

	"github.com/Sumatoshi-tech/ivtree/pkg/alg/interval"
)

// Tree is an AVL tree of intervals augmented for overlap queries.
// The zero value is not usable; use New.
type Tree[I interval.Value[I]] struct {
	root     *node[I]
	size     int
	listener func(Change[I])
	logger   *slog.Logger
	validate bool
}

// node is an internal AVL node.
type node[I interval.Value[I]] struct {
	interval I

	// maximum spans the smallest lower bound and the largest upper bound
	// found in the subtree rooted at this node.
	maximum I

	left, right *node[I]
	parent      *node[I]

	// height is the longest path to a leaf; a leaf has height 0.
	height int
}

// Option configures a Tree.
type Option[I interval.Value[I]] func(*Tree[I])

// WithChangeListener sets the change listener. See Tree.SetChangeListener.
func WithChangeListener[I interval.Value[I]](fn func(Change[I])) Option[I] {
	return func(t *Tree[I]) {
		t.SetChangeListener(fn)
	}
}

// WithValidation enables the full invariant check after every mutation.
func WithValidation[I interval.Value[I]](enabled bool) Option[I] {
	return func(t *Tree[I]) {
		t.validate = enabled
	}
}

// WithLogger sets a logger used to report recovered listener panics.
func WithLogger[I interval.Value[I]](logger *slog.Logger) Option[I] {
	return func(t *Tree[I]) {
		t.logger = logger
	}
}

// New creates an empty tree.
func New[I interval.Value[I]](opts ...Option[I]) *Tree[I] {
	t := &Tree[I]{listener: discard[I]}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// SetChangeListener replaces the function notified of every structural
// change. A nil fn restores the default no-op listener. The listener runs
// synchronously inside the mutating call; a panic raised by it is recovered
// and dropped so that the mutation always completes.
func (t *Tree[I]) SetChangeListener(fn func(Change[I])) {
	if fn == nil {
		fn = discard[I]
	}

	t.listener = fn
}

// EnableInternalValidation toggles the O(N) invariant check run after every
// mutation. A failed check panics with an *InvariantError.
func (t *Tree[I]) EnableInternalValidation(enabled bool) {
	t.validate = enabled
}

// Len returns the number of intervals in the tree.
func (t *Tree[I]) Len() int {
	return t.size
}

// IsEmpty reports whether the tree holds no intervals.
func (t *Tree[I]) IsEmpty() bool {
	return t.root == nil
}

// Height returns the height of the root node: 0 for a single interval and
// -1 for an empty tree.
func (t *Tree[I]) Height() int {
	return t.root.heightOf()
}

// Insert adds value and reports whether it was added. A value that compares
// Equal to a stored interval is rejected and the tree is left unchanged.
func (t *Tree[I]) Insert(value I) bool {
	pos, parent := t.find(value)
	if *pos != nil {
		return false
	}

	*pos = &node[I]{interval: value, maximum: value, parent: parent}
	t.size++

	t.notify(Created(value))
	t.rebalanceFrom(parent)
	t.check()

	return true
}

// Remove deletes the interval equal to value and reports whether one was found.
func (t *Tree[I]) Remove(value I) bool {
	pos, _ := t.find(value)

	n := *pos
	if n == nil {
		return false
	}

	// With two children, pull the in-order successor's interval into n and
	// splice the successor out of the right subtree instead.
	if n.left != nil && n.right != nil {
		t.notify(Deleted(CaseBranch, n.interval))

		succ := n.right.minNode()
		n.interval = succ.interval
		n = succ
	}

	t.splice(n)
	t.size--
	t.check()

	return true
}

// Find reports whether an interval equal to value is stored.
func (t *Tree[I]) Find(value I) bool {
	pos, _ := t.find(value)

	return *pos != nil
}

// Minimum returns the smallest interval and true, or false if the tree is empty.
func (t *Tree[I]) Minimum() (I, bool) {
	if t.root == nil {
		var zero I

		return zero, false
	}

	return t.root.minNode().interval, true
}

// Maximum returns the largest interval and true, or false if the tree is empty.
func (t *Tree[I]) Maximum() (I, bool) {
	if t.root == nil {
		var zero I

		return zero, false
	}

	return t.root.maxNode().interval, true
}

// Clear removes all intervals. It always emits a single Cleared change,
// even when the tree is already empty.
func (t *Tree[I]) Clear() {
	t.root = nil
	t.size = 0

	t.notify(Cleared[I]())
	t.check()
}

// find reports where a node equal to value is, or would be attached: at *pos.
// parent is the node owning *pos, or nil when pos is &t.root.
func (t *Tree[I]) find(value I) (pos **node[I], parent *node[I]) {
	pos = &t.root

	for x := *pos; x != nil; x = *pos {
		switch value.Compare(x.interval) {
		case interval.Equal:
			return pos, parent
		case interval.LessThan:
			pos = &x.left
		default:
			pos = &x.right
		}

		parent = x
	}

	return pos, parent
}

// splice unlinks n, which has at most one child, and rebalances its ancestors.
func (t *Tree[I]) splice(n *node[I]) {
	child, c := n.left, CaseSingleParentL

	switch {
	case n.left == nil && n.right == nil:
		c = CaseLeaf
	case n.left == nil:
		child, c = n.right, CaseSingleParentR
	}

	parent := n.parent
	t.transplant(n, child)
	n.parent, n.left, n.right = nil, nil, nil

	t.notify(Deleted(c, n.interval))
	t.rebalanceFrom(parent)
}

// transplant replaces node u with node v in u's parent.
func (t *Tree[I]) transplant(u, v *node[I]) {
	switch {
	case u.parent == nil:
		t.root = v
	case u == u.parent.left:
		u.parent.left = v
	default:
		u.parent.right = v
	}

	if v != nil {
		v.parent = u.parent
	}
}

// notify delivers c to the listener, dropping any panic it raises.
func (t *Tree[I]) notify(c Change[I]) {
	defer func() {
		if r := recover(); r != nil && t.logger != nil {
			t.logger.Warn("interval tree listener panicked", "change", c.String(), "panic", r)
		}
	}()

	t.listener(c)
}

// check runs the invariant check when validation is enabled.
func (t *Tree[I]) check() {
	if !t.validate {
		return
	}

	err := t.Validate()
	if err != nil {
		panic(err)
	}
}

// minNode returns the leftmost node in n's subtree. n must not be nil.
func (n *node[I]) minNode() *node[I] {
	for n.left != nil {
		n = n.left
	}

	return n
}

// maxNode returns the rightmost node in n's subtree. n must not be nil.
func (n *node[I]) maxNode() *node[I] {
	for n.right != nil {
		n = n.right
	}

	return n
}

// heightOf returns n.height, or -1 for a nil node.
func (n *node[I]) heightOf() int {
	if n == nil {
		return -1
	}

	return n.height
}

func discard[I interval.Value[I]](Change[I]) {}
