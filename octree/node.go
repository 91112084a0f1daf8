// Package octree builds the adaptive octree: a node arena refined around
// the input samples, with splatted density/normal payloads and the sorted
// per-depth node index.
package octree

import "gonum.org/v1/gonum/spatial/r3"

// Offset is a node's integer position within its depth's 2^d grid.
type Offset [3]uint32

// Node is one arena element. There is no owning parent/child pointer:
// children are a single contiguous 8-wide block referenced by FirstChild,
// parent is a back-index — the same arena-of-indices idiom
// xiaolingis-cesium-tile-draco's internal/octree/grid_tree uses for its
// tile tree, generalized here to the Poisson node payload.
type Node struct {
	Depth      uint8
	Offset     Offset
	Parent     int32
	FirstChild int32 // -1 for a leaf

	NodeIndex    int32 // dense sorted index, (re)assigned by SortedIndex
	NormalIndex  int32 // -1 if none
	PointIndex   int32 // -1 if none
	Constraint   float64
	Solution     float64
	MCIndex      int32 // corner sign mask + propagated ancestor bits; atomic-OR target
	CenterWeight [2]float64
}

func newNode(depth uint8, offset Offset, parent int32) Node {
	return Node{
		Depth:       depth,
		Offset:      offset,
		Parent:      parent,
		FirstChild:  -1,
		NormalIndex: -1,
		PointIndex:  -1,
	}
}

func (n *Node) IsLeaf() bool { return n.FirstChild < 0 }

// Width returns the node's edge length, 1/2^depth.
func (n *Node) Width() float64 {
	return 1 / float64(uint32(1)<<n.Depth)
}

// Center returns the node's center, (offset+1/2)/2^depth.
func (n *Node) Center() r3.Vec {
	w := n.Width()
	return r3.Vec{
		X: (float64(n.Offset[0]) + 0.5) * w,
		Y: (float64(n.Offset[1]) + 0.5) * w,
		Z: (float64(n.Offset[2]) + 0.5) * w,
	}
}

// ChildOffset returns the offset of child c (c's bits select +x,+y,+z).
func ChildOffset(parent Offset, c int) Offset {
	return Offset{
		parent[0]*2 + uint32(c&1),
		parent[1]*2 + uint32((c>>1)&1),
		parent[2]*2 + uint32((c>>2)&1),
	}
}

