package octree

import (
	"go.uber.org/zap"

	"github.com/geoplusplus/poisson-reconstruction/config"
	"github.com/geoplusplus/poisson-reconstruction/utils"
)

// PointSample is one accumulated screening contribution: a weighted
// centroid and its weight, consumed only when screening is enabled
// (constraintWeight > 0).
type PointSample struct {
	WeightedPosition [3]float64 // sum of w*p
	Weight           float64    // sum of w
}

// Tree is the arena-backed adaptive octree. Nodes, Normals and Points are
// owned exclusively by the Tree; no other package holds a reference into
// these slices across a mutating call.
type Tree struct {
	Nodes   []Node
	Normals []float64 // 3 per entry, flat (x,y,z) triples
	Points  []PointSample

	Degree int
	Cfg    config.PoissonConfig
	Log    *zap.Logger
}

// NewTree creates a tree with a single root node at depth 0.
func NewTree(degree int, cfg config.PoissonConfig, log *zap.Logger) *Tree {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Tree{
		Degree: degree,
		Cfg:    cfg,
		Log:    log,
	}
	t.Nodes = append(t.Nodes, newNode(0, Offset{0, 0, 0}, -1))
	return t
}

// EnsureChildren allocates node's 8 children if it is currently a leaf.
// The 8 siblings are always allocated as a single contiguous block.
func (t *Tree) EnsureChildren(nodeIdx int32) int32 {
	if t.Nodes[nodeIdx].FirstChild >= 0 {
		return t.Nodes[nodeIdx].FirstChild
	}
	depth := t.Nodes[nodeIdx].Depth
	offset := t.Nodes[nodeIdx].Offset
	first := int32(len(t.Nodes))
	for c := 0; c < 8; c++ {
		t.Nodes = append(t.Nodes, newNode(depth+1, ChildOffset(offset, c), nodeIdx))
	}
	t.Nodes[nodeIdx].FirstChild = first
	return first
}

// inBounds reports whether offset is a valid index at depth (each axis in
// [0, 2^depth)).
func inBounds(depth uint8, offset [3]int64) bool {
	n := int64(uint32(1) << depth)
	for axis := 0; axis < 3; axis++ {
		if offset[axis] < 0 || offset[axis] >= n {
			return false
		}
	}
	return true
}

// DescendCreateByOffset walks from the root to the node at (depth,offset),
// creating every ancestor along the way as needed, and returns its arena
// index. It reports ok=false without creating anything if offset lies
// outside [0,2^depth)^3 — the caller treats that as outside the inset
// domain and discards the sample.
func (t *Tree) DescendCreateByOffset(depth uint8, offset [3]int64) (idx int32, ok bool) {
	if !inBounds(depth, offset) {
		return -1, false
	}
	cur := int32(0)
	for d := uint8(0); d < depth; d++ {
		first := t.EnsureChildren(cur)
		shift := depth - d - 1
		c := 0
		for axis := 0; axis < 3; axis++ {
			bit := (offset[axis] >> shift) & 1
			c |= int(bit) << axis
		}
		cur = first + int32(c)
	}
	return cur, true
}

// FindByOffset walks from the root to (depth,offset) without creating
// anything, returning ok=false if any ancestor along the path does not
// exist yet.
func (t *Tree) FindByOffset(depth uint8, offset [3]int64) (idx int32, ok bool) {
	if !inBounds(depth, offset) {
		return -1, false
	}
	cur := int32(0)
	for d := uint8(0); d < depth; d++ {
		if t.Nodes[cur].FirstChild < 0 {
			return -1, false
		}
		shift := depth - d - 1
		c := 0
		for axis := 0; axis < 3; axis++ {
			bit := (offset[axis] >> shift) & 1
			c |= int(bit) << axis
		}
		cur = t.Nodes[cur].FirstChild + int32(c)
	}
	return cur, true
}

// OffsetForPosition returns the integer offset of the cell containing pos
// at depth, or ok=false if pos falls outside [0,1)^3.
func OffsetForPosition(depth uint8, pos [3]float64) (offset [3]int64, ok bool) {
	n := float64(uint32(1) << depth)
	for axis := 0; axis < 3; axis++ {
		if pos[axis] < 0 || pos[axis] >= 1 {
			return offset, false
		}
		offset[axis] = int64(pos[axis] * n)
	}
	return offset, true
}

// NeighborOffset adds a small signed delta (components up to +-4 in the
// divergence child tier) to offset, used by the 3x3x3/5x5x5 stencils in splatting and operator
// assembly.
func NeighborOffset(offset [3]int64, delta [3]int) [3]int64 {
	return [3]int64{
		offset[0] + int64(delta[0]),
		offset[1] + int64(delta[1]),
		offset[2] + int64(delta[2]),
	}
}

// AppendNormal accumulates v into node's normal slot, creating one if the
// node has none yet.
func (t *Tree) AppendNormal(nodeIdx int32, v [3]float64) {
	ni := t.Nodes[nodeIdx].NormalIndex
	if ni < 0 {
		ni = int32(len(t.Normals) / 3)
		t.Normals = append(t.Normals, 0, 0, 0)
		t.Nodes[nodeIdx].NormalIndex = ni
	}
	base := ni * 3
	t.Normals[base] += v[0]
	t.Normals[base+1] += v[1]
	t.Normals[base+2] += v[2]
}

// NormalAt returns the accumulated normal for node, or the zero vector if
// it has none.
func (t *Tree) NormalAt(nodeIdx int32) [3]float64 {
	ni := t.Nodes[nodeIdx].NormalIndex
	if ni < 0 {
		return [3]float64{}
	}
	base := ni * 3
	return [3]float64{t.Normals[base], t.Normals[base+1], t.Normals[base+2]}
}

// AppendPointSample accumulates a screening contribution into node's point
// slot, creating one if needed.
func (t *Tree) AppendPointSample(nodeIdx int32, weightedPos [3]float64, weight float64) {
	pi := t.Nodes[nodeIdx].PointIndex
	if pi < 0 {
		pi = int32(len(t.Points))
		t.Points = append(t.Points, PointSample{})
		t.Nodes[nodeIdx].PointIndex = pi
	}
	p := &t.Points[pi]
	p.WeightedPosition[0] += weightedPos[0]
	p.WeightedPosition[1] += weightedPos[1]
	p.WeightedPosition[2] += weightedPos[2]
	p.Weight += weight
}

// reportInputViolation is the single point all point-skipping diagnostics
// funnel through.
func (t *Tree) reportInputViolation(msg string, fields ...zap.Field) {
	utils.Report(t.Log, utils.InputViolation, msg, fields...)
}
