package octree

// SortedIndex is the dense per-depth node index S: every node in the
// arena, ordered depth-major (all depth-d nodes precede all depth-(d+1)
// nodes) and, within a depth, in arena order, with a child block always
// contiguous among its siblings. DepthStart[d] is the index of the first
// depth-d node in Order; DepthStart[maxDepth+1] is len(Order).
type SortedIndex struct {
	Order      []int32
	DepthStart []int32
}

// BuildSortedIndex groups the arena's nodes by depth (in arena order within
// a depth) and assigns each node its position in the resulting depth-major
// order, writing that position
// back into Node.NodeIndex so later passes (up/down-sampling, the
// marching-cubes corner cache) can address nodes by dense index instead
// of arena index.
func (t *Tree) BuildSortedIndex() SortedIndex {
	maxDepth := t.MaxDepth()
	depthNodes := make([][]int32, maxDepth+1)
	for i := range t.Nodes {
		d := t.Nodes[i].Depth
		depthNodes[d] = append(depthNodes[d], int32(i))
	}

	order := make([]int32, 0, len(t.Nodes))
	depthStart := make([]int32, maxDepth+2)
	for d := uint8(0); d <= maxDepth; d++ {
		depthStart[d] = int32(len(order))
		order = append(order, depthNodes[d]...)
	}
	depthStart[maxDepth+1] = int32(len(order))

	for pos, nodeIdx := range order {
		t.Nodes[nodeIdx].NodeIndex = int32(pos)
	}
	return SortedIndex{Order: order, DepthStart: depthStart}
}

// NodesAtDepth returns the dense-index span [start, end) of depth-d
// nodes within Order.
func (s SortedIndex) NodesAtDepth(d uint8) (start, end int32) {
	if int(d) >= len(s.DepthStart)-1 {
		return s.DepthStart[len(s.DepthStart)-1], s.DepthStart[len(s.DepthStart)-1]
	}
	return s.DepthStart[d], s.DepthStart[d+1]
}

// Count returns the total number of indexed nodes.
func (s SortedIndex) Count() int32 { return int32(len(s.Order)) }
