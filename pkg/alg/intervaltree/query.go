package intervaltree

import (
	"iter"

	"github.com/Sumatoshi-tech/ivtree/pkg/alg/interval"
)

// Overlapping returns every stored interval that overlaps query, in
// ascending order. A subtree is visited only when its annotation overlaps
// query; the left and right subtrees are tested independently.
func (t *Tree[I]) Overlapping(query I) []I {
	if t.root == nil {
		return nil
	}

	var results []I

	collectOverlap(t.root, query, &results)

	return results
}

// collectOverlap appends the intervals of n's subtree that overlap query.
func collectOverlap[I interval.Value[I]](n *node[I], query I, results *[]I) {
	if n.left != nil && n.left.maximum.Overlaps(query) {
		collectOverlap(n.left, query, results)
	}

	if query.Overlaps(n.interval) {
		*results = append(*results, n.interval)
	}

	if n.right != nil && n.right.maximum.Overlaps(query) {
		collectOverlap(n.right, query, results)
	}
}

// All returns an iterator over the stored intervals in ascending order.
// The iterator can be ranged over repeatedly. The tree must not be
// modified while an iteration is in progress.
func (t *Tree[I]) All() iter.Seq[I] {
	return func(yield func(I) bool) {
		var stack []*node[I]

		for n := t.root; n != nil || len(stack) > 0; n = n.right {
			for ; n != nil; n = n.left {
				stack = append(stack, n)
			}

			n = stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if !yield(n.interval) {
				return
			}
		}
	}
}

// Backward returns an iterator over the stored intervals in descending order.
// The same restrictions as for All apply.
func (t *Tree[I]) Backward() iter.Seq[I] {
	return func(yield func(I) bool) {
		var stack []*node[I]

		for n := t.root; n != nil || len(stack) > 0; n = n.left {
			for ; n != nil; n = n.right {
				stack = append(stack, n)
			}

			n = stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if !yield(n.interval) {
				return
			}
		}
	}
}
