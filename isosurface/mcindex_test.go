package isosurface

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geoplusplus/poisson-reconstruction/config"
	"github.com/geoplusplus/poisson-reconstruction/octree"
)

func TestCornerWorldPosDepthZero(t *testing.T) {
	pos := cornerWorldPos(0, octree.Offset{0, 0, 0}, 7)
	assert.Equal(t, [3]float64{1, 1, 1}, pos)
}

func TestCornerWorldPosDepthOne(t *testing.T) {
	pos := cornerWorldPos(1, octree.Offset{1, 0, 1}, 0)
	assert.Equal(t, [3]float64{0.5, 0, 0.5}, pos)
}

func TestChildIndexOfRoundTripsEveryChild(t *testing.T) {
	for c := 0; c < 8; c++ {
		offset := octree.ChildOffset(octree.Offset{3, 5, 1}, c)
		assert.Equal(t, c, childIndexOf(offset))
	}
}

func TestPropagateMCIndexStopsAtFirstNonMatchingAncestor(t *testing.T) {
	tree := octree.NewTree(2, config.Default(), nil)
	root := int32(0)
	tree.EnsureChildren(root)
	firstChild := tree.Nodes[root].FirstChild
	leaf := firstChild // child 0 of root
	tree.EnsureChildren(leaf)
	grandchild := tree.Nodes[leaf].FirstChild + 3 // child 3 of leaf, not child 0

	propagateMCIndex(tree, grandchild, 1<<3)

	assert.Equal(t, int32(1<<3), tree.Nodes[leaf].MCIndex, "bit should propagate to leaf since grandchild is leaf's child 3")
	assert.Equal(t, int32(0), tree.Nodes[root].MCIndex, "bit should not reach root since leaf is root's child 0, not child 3")
}

func TestPropagateMCIndexReachesRootWhenChainMatches(t *testing.T) {
	tree := octree.NewTree(2, config.Default(), nil)
	root := int32(0)
	tree.EnsureChildren(root)
	child0 := tree.Nodes[root].FirstChild // child 0 of root
	tree.EnsureChildren(child0)
	grandchild0 := tree.Nodes[child0].FirstChild // child 0 of child0

	propagateMCIndex(tree, grandchild0, 1)

	assert.Equal(t, int32(1), tree.Nodes[child0].MCIndex)
	assert.Equal(t, int32(1), tree.Nodes[root].MCIndex)
}
