package intervaltree

import (
	"fmt"

	"github.com/Sumatoshi-tech/ivtree/pkg/alg/interval"
)

// Kind identifies the type of a structural change.
type Kind uint8

// Change kinds.
const (
	KindCreated Kind = iota + 1
	KindDeleted
	KindBalanced
	KindCleared
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindCreated:
		return "Created"
	case KindDeleted:
		return "Deleted"
	case KindBalanced:
		return "Balanced"
	case KindCleared:
		return "Cleared"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Case tags which deletion or rotation case produced a change.
type Case string

// Deletion cases.
const (
	CaseLeaf          Case = "Leaf"
	CaseSingleParentL Case = "SingleParentL"
	CaseSingleParentR Case = "SingleParentR"
	CaseBranch        Case = "Branch"
)

// Rotation cases.
const (
	CaseLL Case = "LL"
	CaseRR Case = "RR"
	CaseLR Case = "LR"
	CaseRL Case = "RL"
)

// Change describes one discrete structural change to a tree.
// Case is empty for KindCreated and KindCleared; Interval is the zero value
// for KindCleared.
type Change[I interval.Value[I]] struct {
	Interval I
	Case     Case
	Kind     Kind
}

// Created reports a new node holding value.
func Created[I interval.Value[I]](value I) Change[I] {
	return Change[I]{Kind: KindCreated, Interval: value}
}

// Deleted reports the removal of value through deletion case c.
func Deleted[I interval.Value[I]](c Case, value I) Change[I] {
	return Change[I]{Kind: KindDeleted, Case: c, Interval: value}
}

// Balanced reports a rotation of case c at the node holding value.
func Balanced[I interval.Value[I]](c Case, value I) Change[I] {
	return Change[I]{Kind: KindBalanced, Case: c, Interval: value}
}

// Cleared reports that the whole tree was discarded.
func Cleared[I interval.Value[I]]() Change[I] {
	return Change[I]{Kind: KindCleared}
}

// Equal reports whether c and other describe the same change.
// All Cleared changes are equal.
func (c Change[I]) Equal(other Change[I]) bool {
	if c.Kind != other.Kind || c.Case != other.Case {
		return false
	}

	if c.Kind == KindCleared {
		return true
	}

	return c.Interval.Compare(other.Interval) == interval.Equal
}

// String renders the change, e.g. "Deleted(Leaf, [0, 9])".
func (c Change[I]) String() string {
	switch c.Kind {
	case KindCreated:
		return fmt.Sprintf("%s(%s)", c.Kind, c.Interval)
	case KindDeleted, KindBalanced:
		return fmt.Sprintf("%s(%s, %s)", c.Kind, c.Case, c.Interval)
	case KindCleared:
		return "Cleared()"
	default:
		return c.Kind.String()
	}
}
