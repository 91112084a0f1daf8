package shared

// cubeEdges lists the 12 cube edges as corner-index pairs, grouped by the
// axis the edge runs along (edges 0-3 run along x, 4-7 along y, 8-11
// along z); within each pair the first corner always has the lower
// coordinate on that axis, so the edge's canonical key never depends on
// which adjacent cell computed it.
var cubeEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// edgeKey canonically identifies a grid edge: its axis and the absolute
// coordinate of its lower-coordinate endpoint.
type edgeKey struct {
	depth   uint8
	axis    int
	x, y, z uint32
}

// EdgeIndex returns the global id of edge e (0..11) of the cell at depth
// with integer offset, assigning a new id on first touch.
func (t *Tables) EdgeIndex(depth uint8, offset [3]uint32, e int) int32 {
	axis := e / 4
	loCorner := cubeEdges[e][0]
	dx, dy, dz := cornerDelta(loCorner)
	k := edgeKey{depth, axis, offset[0] + dx, offset[1] + dy, offset[2] + dz}
	if id, ok := t.edges[k]; ok {
		return id
	}
	id := t.nextEdge
	t.nextEdge++
	t.edges[k] = id
	return id
}

// EdgeCount returns the number of distinct edges assigned so far.
func (t *Tables) EdgeCount() int32 { return t.nextEdge }

// EdgeAxis reports which axis edge e runs along (0=x, 1=y, 2=z).
func EdgeAxis(e int) int { return e / 4 }

// EdgeCorners returns the two corner indices bounding edge e, lower
// coordinate first.
func EdgeCorners(e int) (c0, c1 int) { return cubeEdges[e][0], cubeEdges[e][1] }
