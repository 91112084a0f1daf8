package octree

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geoplusplus/poisson-reconstruction/config"
)

func TestSortedIndexAssignsContiguousNodeIndex(t *testing.T) {
	tr := NewTree(2, config.Default(), nil)
	tr.EnsureChildren(0)
	tr.EnsureChildren(tr.Nodes[0].FirstChild)

	s := tr.BuildSortedIndex()
	assert.Equal(t, int32(len(tr.Nodes)), s.Count())
	for i := range s.Order {
		assert.Equal(t, int32(i), tr.Nodes[s.Order[i]].NodeIndex)
	}
}

func TestSortedIndexDepthSpansAreContiguousAndOrdered(t *testing.T) {
	tr := NewTree(2, config.Default(), nil)
	tr.EnsureChildren(0)

	s := tr.BuildSortedIndex()
	start0, end0 := s.NodesAtDepth(0)
	start1, end1 := s.NodesAtDepth(1)
	assert.Equal(t, int32(0), start0)
	assert.Equal(t, int32(1), end0)
	assert.Equal(t, end0, start1)
	assert.Equal(t, int32(9), end1)

	for i := start0; i < end0; i++ {
		assert.Equal(t, uint8(0), tr.Nodes[s.Order[i]].Depth)
	}
	for i := start1; i < end1; i++ {
		assert.Equal(t, uint8(1), tr.Nodes[s.Order[i]].Depth)
	}
}
