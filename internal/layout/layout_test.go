package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConstants(t *testing.T) {
	cte, err := NewConstants(1000, 8, 32, 256)
	require.NoError(t, err)
	assert.Equal(t, 4, cte.NL1) // 32/8
	assert.GreaterOrEqual(t, cte.NL1InLD, 1)
}

func TestNewConstantsRejectsTooSmallBudgets(t *testing.T) {
	_, err := NewConstants(10, 0, 32, 256)
	assert.Error(t, err, "expected error for non-positive entry byte size")

	_, err = NewConstants(10, 100, 32, 256)
	assert.Error(t, err, "expected error when l1Bytes cannot hold one entry")

	_, err = NewConstants(10, 8, 32, 4)
	assert.Error(t, err, "expected error when diskBytes cannot hold one L1 block")
}

func TestPlanDepthZero(t *testing.T) {
	cte, err := NewConstants(4, 8, 32, 256) // nL1 = 4
	require.NoError(t, err)
	l, err := Plan(cte)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), l.Depth)
	assert.Equal(t, 4, l.NEntriesRoot)
	assert.Equal(t, ShapeL1Leaf, l.RootShape())
}

func TestPlanSingleEntry(t *testing.T) {
	cte, err := NewConstants(1, 8, 32, 256)
	require.NoError(t, err)
	l, err := Plan(cte)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), l.Depth)
	assert.Equal(t, 1, l.NEntriesRoot)
}

func TestPlanExactlyNL1(t *testing.T) {
	cte, err := NewConstants(4, 8, 32, 256) // nL1 == 4
	require.NoError(t, err)
	l, err := Plan(cte)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), l.Depth, "nL1 entries should still fit in one L1 block")
}

func TestPlanOneOverNL1(t *testing.T) {
	cte, err := NewConstants(5, 8, 32, 256) // nL1 == 4, nEntries = nL1+1
	require.NoError(t, err)
	l, err := Plan(cte)
	require.NoError(t, err)
	assert.NotEqual(t, uint8(0), l.Depth, "nL1+1 entries should require depth > 0")
}

func TestPlanWithRemainderGetsRightmostSubtree(t *testing.T) {
	// nL1 = 4; choose an entry count that cannot divide evenly across a
	// depth-1 layout's (nRoot+1) subtrees of nL1 entries each.
	cte, err := NewConstants(23, 8, 32, 256)
	require.NoError(t, err)
	l, err := Plan(cte)
	require.NoError(t, err)
	if l.RightmostSubtree == nil {
		t.Skip("chosen entry count happened to divide evenly; not exercising the remainder path")
	}
	assert.Contains(t, []Shape{ShapeRootL1Node, ShapeRootLDNode}, l.RootShape())
}

func TestPlanOverflow(t *testing.T) {
	cte, err := NewConstants(1, 8, 8, 16) // nL1 = 1, tiny tree
	require.NoError(t, err)
	// An enormous entry count relative to this tiny per-level fanout
	// should exceed MaxDepth and report overflow.
	cte.NEntries = 1 << 62
	_, err = Plan(cte)
	assert.Error(t, err, "expected layout overflow for an astronomically large entry count")
}

func TestShapeString(t *testing.T) {
	tests := []struct {
		s    Shape
		want string
	}{
		{ShapeL1Leaf, "l1leaf"},
		{ShapeL1Node, "l1node"},
		{ShapeLDNode, "ldnode"},
		{ShapeRootL1Node, "rootl1node"},
		{ShapeRootLDNode, "rootldnode"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.s.String())
	}
}
