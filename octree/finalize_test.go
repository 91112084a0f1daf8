package octree

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geoplusplus/poisson-reconstruction/config"
)

func TestFinalizeGivesEveryNodeAFullGrandparentNeighborhood(t *testing.T) {
	tr := NewTree(2, config.Default(), nil)
	pos := [3]float64{0.2, 0.2, 0.2}
	cur := int32(0)
	for d := 0; d < 4; d++ {
		cur = tr.EnsureChildren(cur)
		offset, ok := OffsetForPosition(uint8(d+1), pos)
		assert.True(t, ok)
		idx, ok := tr.DescendCreateByOffset(uint8(d+1), offset)
		assert.True(t, ok)
		cur = idx
	}

	tr.Finalize(0)

	deepNode := tr.Nodes[cur]
	grandparent := tr.Nodes[tr.Nodes[deepNode.Parent].Parent]
	off := toInt64(grandparent.Offset)
	for i := -1; i <= 1; i++ {
		for j := -1; j <= 1; j++ {
			for k := -1; k <= 1; k++ {
				nIdx, ok := tr.FindByOffset(grandparent.Depth, NeighborOffset(off, [3]int{i, j, k}))
				if !ok {
					continue
				}
				assert.False(t, tr.Nodes[nIdx].FirstChild < 0, "neighbor %d,%d,%d should have been refined", i, j, k)
			}
		}
	}
}

func TestRefineBoundaryNoSubdivisionReturnsZero(t *testing.T) {
	tr := NewTree(2, config.Default(), nil)
	sDepth := tr.refineBoundary(0)
	assert.Equal(t, 0, sDepth)
}
