package intervaltree

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/ivtree/pkg/alg/interval"
)

// ErrInvariantViolation is wrapped by every *InvariantError.
var ErrInvariantViolation = errors.New("intervaltree: invariant violation")

// Invariant names reported in InvariantError.
const (
	InvariantOrder     = "order"
	InvariantBalance   = "balance"
	InvariantHeight    = "height"
	InvariantMaximum   = "maximum"
	InvariantStructure = "structure"
	InvariantSize      = "size"
)

// InvariantError describes the first invariant violation found by Validate.
type InvariantError struct {
	Invariant string
	Node      string
	Detail    string
}

// Error implements error.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("%v: %s at %s: %s", ErrInvariantViolation, e.Invariant, e.Node, e.Detail)
}

// Unwrap returns ErrInvariantViolation.
func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}

// Validate checks every structural invariant of the tree in O(N) and
// returns the first violation found, or nil.
func (t *Tree[I]) Validate() error {
	if t.root != nil && t.root.parent != nil {
		return violation(InvariantStructure, t.root, "root has a parent")
	}

	count, err := validateNode(t.root)
	if err != nil {
		return err
	}

	if count != t.size {
		return &InvariantError{
			Invariant: InvariantSize,
			Node:      "root",
			Detail:    fmt.Sprintf("cached size %d, counted %d", t.size, count),
		}
	}

	// In-order strictly ascending covers global BST order and uniqueness.
	var (
		prev    I
		hasPrev bool
	)

	for cur := range t.All() {
		if hasPrev && prev.Compare(cur) != interval.LessThan {
			return &InvariantError{
				Invariant: InvariantOrder,
				Node:      cur.String(),
				Detail:    fmt.Sprintf("follows %s in order", prev),
			}
		}

		prev, hasPrev = cur, true
	}

	return nil
}

// validateNode checks n's subtree and returns its node count.
func validateNode[I interval.Value[I]](n *node[I]) (int, error) {
	if n == nil {
		return 0, nil
	}

	if n.left == n || n.right == n || n.parent == n {
		return 0, violation(InvariantStructure, n, "node references itself")
	}

	if n.left != nil && n.left.parent != n {
		return 0, violation(InvariantStructure, n, "left child's parent does not match")
	}

	if n.right != nil && n.right.parent != n {
		return 0, violation(InvariantStructure, n, "right child's parent does not match")
	}

	if n.left != nil && n.left.interval.Compare(n.interval) != interval.LessThan {
		return 0, violation(InvariantOrder, n, "left child "+n.left.interval.String()+" is not less")
	}

	if n.right != nil && n.right.interval.Compare(n.interval) != interval.MoreThan {
		return 0, violation(InvariantOrder, n, "right child "+n.right.interval.String()+" is not more")
	}

	leftCount, err := validateNode(n.left)
	if err != nil {
		return 0, err
	}

	rightCount, err := validateNode(n.right)
	if err != nil {
		return 0, err
	}

	wantHeight := 1 + max(n.left.heightOf(), n.right.heightOf())
	if n.height != wantHeight {
		return 0, violation(InvariantHeight, n, fmt.Sprintf("cached %d, computed %d", n.height, wantHeight))
	}

	if b := n.balance(); b == leftHeavy || b == rightHeavy {
		return 0, violation(InvariantBalance, n, fmt.Sprintf("%s (factor %d)", b, n.factor()))
	}

	cached := n.maximum
	n.update()

	if cached.Compare(n.maximum) != interval.Equal {
		want := n.maximum
		n.maximum = cached

		return 0, violation(InvariantMaximum, n, fmt.Sprintf("cached %s, computed %s", cached, want))
	}

	return 1 + leftCount + rightCount, nil
}

func violation[I interval.Value[I]](invariant string, n *node[I], detail string) *InvariantError {
	return &InvariantError{Invariant: invariant, Node: n.interval.String(), Detail: detail}
}
