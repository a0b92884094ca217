package intervaltree

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/ivtree/pkg/alg/interval"
)

// TestCollection_AddAllContainsAllRemoveAll verifies the bulk wrappers.
func TestCollection_AddAllContainsAllRemoveAll(t *testing.T) {
	t.Parallel()

	tree, _ := newTestTree()
	values := []interval.L{iv(4, 6), iv(0, 1), iv(2, 9), iv(0, 1)}

	assert.True(t, tree.AddAll(slices.Values(values)))
	assert.False(t, tree.AddAll(slices.Values(values)))
	assert.Equal(t, 3, tree.Len())

	assert.True(t, tree.ContainsAll(slices.Values(values)))
	assert.False(t, tree.ContainsAll(slices.Values([]interval.L{iv(0, 1), iv(7, 7)})))
	assert.True(t, tree.ContainsAll(slices.Values([]interval.L{})))

	assert.Equal(t, []interval.L{iv(0, 1), iv(2, 9), iv(4, 6)}, tree.Slice())

	assert.True(t, tree.RemoveAll(slices.Values(values)))
	assert.True(t, tree.IsEmpty())
	assert.False(t, tree.RemoveAll(slices.Values(values)))
}

// TestCollection_AddContains verifies the single-value aliases.
func TestCollection_AddContains(t *testing.T) {
	t.Parallel()

	tree, rec := newTestTree()

	require.True(t, tree.Add(iv(1, 2)))
	assert.False(t, tree.Add(iv(1, 2)))
	assert.True(t, tree.Contains(iv(1, 2)))
	assert.False(t, tree.Contains(iv(1, 3)))
	assert.Equal(t, []string{"Created([1, 2])"}, rec.strings())
}

// TestCollection_SliceIsCopy verifies Slice does not alias the tree.
func TestCollection_SliceIsCopy(t *testing.T) {
	t.Parallel()

	tree, _ := newTestTree()
	require.True(t, tree.Add(iv(1, 2)))

	out := tree.Slice()
	out[0] = iv(5, 5)

	assert.True(t, tree.Contains(iv(1, 2)))
	assert.False(t, tree.Contains(iv(5, 5)))
}
