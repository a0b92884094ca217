package intervaltree

// balance classifies a node's balance factor, height(left) - height(right).
type balance int8

const (
	balanced balance = iota
	leaningLeft
	leaningRight
	leftHeavy
	rightHeavy
)

// classify maps a balance factor to its class.
func classify(factor int) balance {
	switch {
	case factor > 1:
		return leftHeavy
	case factor < -1:
		return rightHeavy
	case factor == 1:
		return leaningLeft
	case factor == -1:
		return leaningRight
	default:
		return balanced
	}
}

func (b balance) String() string {
	switch b {
	case balanced:
		return "BALANCED"
	case leaningLeft:
		return "BALANCED_LEANING_LEFT"
	case leaningRight:
		return "BALANCED_LEANING_RIGHT"
	case leftHeavy:
		return "LEFT_HEAVY"
	case rightHeavy:
		return "RIGHT_HEAVY"
	default:
		return "UNKNOWN"
	}
}

// factor returns height(left) - height(right).
func (n *node[I]) factor() int {
	return n.left.heightOf() - n.right.heightOf()
}

// balance returns the class of n's balance factor.
func (n *node[I]) balance() balance {
	return classify(n.factor())
}

// update recomputes n's height and maximum from its interval and children.
func (n *node[I]) update() {
	n.height = 1 + max(n.left.heightOf(), n.right.heightOf())

	// The left child's annotation already starts at the subtree's smallest
	// lower bound; without a left child that bound is n's own.
	lowest := n.interval
	if n.left != nil {
		lowest = n.left.maximum
	}

	m := lowest.UpperMaximum(n.interval)
	if n.right != nil {
		m = m.UpperMaximum(n.right.maximum)
	}

	n.maximum = m
}

// rebalanceFrom walks from n to the root, refreshing each node and
// rotating wherever the AVL balance is violated.
func (t *Tree[I]) rebalanceFrom(n *node[I]) {
	for n != nil {
		n.update()
		n = t.rebalance(n)
		n = n.parent
	}
}

// rebalance restores the balance of n, whose children are balanced, and
// returns the root of the resulting subtree.
func (t *Tree[I]) rebalance(n *node[I]) *node[I] {
	switch n.balance() {
	case leftHeavy:
		if b := n.left.balance(); b == rightHeavy || b == leaningRight {
			t.notify(Balanced(CaseLR, n.interval))
			t.rotate(n.left, true)
		} else {
			t.notify(Balanced(CaseLL, n.interval))
		}

		return t.rotate(n, false)

	case rightHeavy:
		if b := n.right.balance(); b == leftHeavy || b == leaningLeft {
			t.notify(Balanced(CaseRL, n.interval))
			t.rotate(n.right, false)
		} else {
			t.notify(Balanced(CaseRR, n.interval))
		}

		return t.rotate(n, true)

	default:
		return n
	}
}

// rotate performs a rotation at node n and returns the pivot that replaces
// it. When left is true, rotates left; otherwise rotates right. Heights and
// maximums of n and the pivot are recomputed, n first.
func (t *Tree[I]) rotate(n *node[I], left bool) *node[I] {
	var pivot *node[I]

	if left {
		pivot = n.right
		n.right = pivot.left

		if pivot.left != nil {
			pivot.left.parent = n
		}

		pivot.left = n
	} else {
		pivot = n.left
		n.left = pivot.right

		if pivot.right != nil {
			pivot.right.parent = n
		}

		pivot.right = n
	}

	pivot.parent = n.parent

	switch {
	case n.parent == nil:
		t.root = pivot
	case n == n.parent.left:
		n.parent.left = pivot
	default:
		n.parent.right = pivot
	}

	n.parent = pivot

	n.update()
	pivot.update()

	return pivot
}
