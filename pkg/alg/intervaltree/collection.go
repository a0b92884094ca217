package intervaltree

import (
	"iter"
)

// Add is Insert under its collection name.
func (t *Tree[I]) Add(value I) bool {
	return t.Insert(value)
}

// AddAll inserts every value and reports whether any was added.
func (t *Tree[I]) AddAll(values iter.Seq[I]) bool {
	changed := false

	for v := range values {
		if t.Insert(v) {
			changed = true
		}
	}

	return changed
}

// Contains is Find under its collection name.
func (t *Tree[I]) Contains(value I) bool {
	return t.Find(value)
}

// ContainsAll reports whether every value is stored.
func (t *Tree[I]) ContainsAll(values iter.Seq[I]) bool {
	for v := range values {
		if !t.Find(v) {
			return false
		}
	}

	return true
}

// RemoveAll removes every value and reports whether any was removed.
func (t *Tree[I]) RemoveAll(values iter.Seq[I]) bool {
	changed := false

	for v := range values {
		if t.Remove(v) {
			changed = true
		}
	}

	return changed
}

// Slice returns the stored intervals in ascending order.
func (t *Tree[I]) Slice() []I {
	out := make([]I, 0, t.size)

	for v := range t.All() {
		out = append(out, v)
	}

	return out
}
