package octree

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/geoplusplus/poisson-reconstruction/utils"
)

// splatNormalization is the reciprocal of the sum of squared box-spline
// sample weights at the three stencil offsets (-1, 0, +1) for a sample at a
// node center. splatDensityAtNode multiplies axis 0's three weights by it;
// since each axis's weights already sum to 1, a single point splatted
// across its 3x3x3 density stencil contributes a total weight of
// splatNormalization.
const splatNormalization = 1 / (0.125*0.125 + 0.75*0.75 + 0.125*0.125)

// boxWeights returns, for each axis, the degree-2 box-spline weight of the
// three neighbor cells at that axis's offsets -1, 0, +1, evaluated for a
// node centered at center with edge length width and a sample at pos.
func boxWeights(center [3]float64, width float64, pos [3]float64) [3][3]float64 {
	var dx [3][3]float64
	for i := 0; i < 3; i++ {
		x := (center[i] - pos[i] - width) / width
		dx[i][0] = 1.125 + 1.5*x + 0.5*x*x
		x = (center[i] - pos[i]) / width
		dx[i][1] = 0.75 - x*x
		dx[i][2] = 1 - dx[i][1] - dx[i][0]
	}
	return dx
}

func toInt64(o Offset) [3]int64 {
	return [3]int64{int64(o[0]), int64(o[1]), int64(o[2])}
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampU8(v int, lo, hi uint8) uint8 {
	if v < int(lo) {
		return lo
	}
	if v > int(hi) {
		return hi
	}
	return uint8(v)
}

// centerArr and widthOf are small conveniences around Node.Center/Width
// for the [3]float64 form boxWeights wants.
func centerArr(n *Node) [3]float64 {
	c := n.Center()
	return [3]float64{c.X, c.Y, c.Z}
}

// splatDensityAtNode accumulates weight into node's 3x3x3 neighbor
// stencil of CenterWeight[0] slots, creating any neighbor that does not
// exist yet. Only axis 0's three stencil weights carry the manifold-density
// normalization; the other two axes' weights are used unscaled, so the
// factor is applied exactly once to every stencil entry.
func (t *Tree) splatDensityAtNode(nodeIdx int32, pos [3]float64, weight float64) {
	node := t.Nodes[nodeIdx]
	dx := boxWeights(centerArr(&node), node.Width(), pos)
	dx[0][0] *= splatNormalization
	dx[0][1] *= splatNormalization
	dx[0][2] *= splatNormalization
	off := toInt64(node.Offset)
	for i := -1; i <= 1; i++ {
		for j := -1; j <= 1; j++ {
			for k := -1; k <= 1; k++ {
				nIdx, ok := t.DescendCreateByOffset(node.Depth, NeighborOffset(off, [3]int{i, j, k}))
				if !ok {
					continue
				}
				t.Nodes[nIdx].CenterWeight[0] += dx[0][i+1] * dx[1][j+1] * weight * dx[2][k+1]
			}
		}
	}
}

// SplatDensity descends from the root toward pos, splatting weight into
// the 3x3x3 density stencil at every depth from 0 through splatDepth
// inclusive. It is the first of the two point-stream passes and must run
// to completion, sequentially, before SplatNormals is called for any
// point: the normal pass reads back the density field this pass builds.
func (t *Tree) SplatDensity(pos r3.Vec, weight float64, splatDepth uint8) {
	posArr := [3]float64{pos.X, pos.Y, pos.Z}
	cur := int32(0)
	for d := uint8(0); ; d++ {
		t.splatDensityAtNode(cur, posArr, weight)
		if d >= splatDepth {
			return
		}
		offset, ok := OffsetForPosition(d+1, posArr)
		if !ok {
			return
		}
		child, ok := t.DescendCreateByOffset(d+1, offset)
		if !ok {
			return
		}
		cur = child
	}
}

// sampleWeightAt reads back the density accumulated by SplatDensity at
// node's 3x3x3 neighbor stencil. Unlike splatDensityAtNode this never
// creates a neighbor; a neighbor that does not exist contributes zero.
func (t *Tree) sampleWeightAt(nodeIdx int32, pos [3]float64) float64 {
	node := t.Nodes[nodeIdx]
	dx := boxWeights(centerArr(&node), node.Width(), pos)
	off := toInt64(node.Offset)
	var sum float64
	for i := -1; i <= 1; i++ {
		for j := -1; j <= 1; j++ {
			for k := -1; k <= 1; k++ {
				nIdx, ok := t.FindByOffset(node.Depth, NeighborOffset(off, [3]int{i, j, k}))
				if !ok {
					continue
				}
				sum += dx[0][i+1] * dx[1][j+1] * dx[2][k+1] * t.Nodes[nIdx].CenterWeight[0]
			}
		}
	}
	return sum
}

// estimateSampleDepth walks from leafIdx toward the root. If leafIdx's own
// density already meets samplesPerNode it extrapolates to a fractional
// depth finer than leafIdx; otherwise it accumulates density up the
// ancestor chain until the threshold is met and interpolates between the
// two bracketing depths. weight is 4^-depth, the per-depth normalization
// a point splatted at that fractional depth should carry.
func (t *Tree) estimateSampleDepth(leafIdx int32, pos [3]float64, samplesPerNode float64) (depth, weight float64) {
	cur := leafIdx
	w := t.sampleWeightAt(cur, pos)
	if w >= samplesPerNode {
		depth = float64(t.Nodes[cur].Depth) + math.Log(w/samplesPerNode)/math.Log(4)
	} else {
		oldWeight, newWeight := w, w
		for newWeight < samplesPerNode && t.Nodes[cur].Parent >= 0 {
			cur = t.Nodes[cur].Parent
			oldWeight = newWeight
			newWeight = t.sampleWeightAt(cur, pos)
		}
		depth = float64(t.Nodes[cur].Depth) + math.Log(newWeight/samplesPerNode)/math.Log(newWeight/oldWeight)
	}
	weight = math.Pow(4, -depth)
	return depth, weight
}

// splatNormalAtNode distributes normal across node's 3x3x3 neighbor
// stencil, creating any missing neighbor, weighting each by the same
// box-spline triple used for density.
func (t *Tree) splatNormalAtNode(nodeIdx int32, pos [3]float64, normal r3.Vec) {
	node := t.Nodes[nodeIdx]
	dx := boxWeights(centerArr(&node), node.Width(), pos)
	off := toInt64(node.Offset)
	depth := node.Depth
	for i := -1; i <= 1; i++ {
		for j := -1; j <= 1; j++ {
			for k := -1; k <= 1; k++ {
				nIdx, ok := t.DescendCreateByOffset(depth, NeighborOffset(off, [3]int{i, j, k}))
				if !ok {
					continue
				}
				w := dx[0][i+1] * dx[1][j+1] * dx[2][k+1]
				t.AppendNormal(nIdx, [3]float64{normal.X * w, normal.Y * w, normal.Z * w})
			}
		}
	}
}

// SplatScreeningSample descends to splatDepth along pos exactly as
// SplatNormals does, resolves the same terminating node from the density
// field, and accumulates pos (weighted by weight) into that node's point
// sample for later screening-term assembly. Returns false if the point
// falls outside the density tree's inset domain.
func (t *Tree) SplatScreeningSample(pos r3.Vec, weight float64, splatDepth uint8, samplesPerNode float64, minDepth, maxDepth uint8) bool {
	posArr := [3]float64{pos.X, pos.Y, pos.Z}
	cur := int32(0)
	for d := uint8(0); d < splatDepth; d++ {
		if t.Nodes[cur].FirstChild < 0 {
			return false
		}
		offset, ok := OffsetForPosition(d+1, posArr)
		if !ok {
			return false
		}
		child, ok := t.FindByOffset(d+1, offset)
		if !ok {
			return false
		}
		cur = child
	}

	depth, _ := t.estimateSampleDepth(cur, posArr, samplesPerNode)
	depth = clampF(depth, float64(minDepth), float64(maxDepth))
	topDepth := clampU8(int(math.Ceil(depth)), minDepth, maxDepth)

	for t.Nodes[cur].Depth > topDepth {
		cur = t.Nodes[cur].Parent
	}
	for t.Nodes[cur].Depth < topDepth {
		offset, ok := OffsetForPosition(t.Nodes[cur].Depth+1, posArr)
		if !ok {
			break
		}
		child, ok := t.FindByOffset(t.Nodes[cur].Depth+1, offset)
		if !ok {
			break
		}
		cur = child
	}

	t.AppendPointSample(cur, [3]float64{posArr[0] * weight, posArr[1] * weight, posArr[2] * weight}, weight)
	return true
}

// SplatNormals descends to splatDepth along pos, estimates the local
// sample depth from the density field SplatDensity already built, then
// splats the oriented normal into the node at ceil(depth) and, unless
// depth lands exactly on an integer, into its parent too, weighted
// linearly by the fractional part of depth. Returns the density-derived
// weight, used by callers accumulating a point-count diagnostic, or -1 if
// splatDepth descends past a node that was never created (an input point
// outside the inset domain of the density pass).
func (t *Tree) SplatNormals(pos, normal r3.Vec, splatDepth uint8, samplesPerNode float64, minDepth, maxDepth uint8) float64 {
	posArr := [3]float64{pos.X, pos.Y, pos.Z}
	cur := int32(0)
	for d := uint8(0); d < splatDepth; d++ {
		if t.Nodes[cur].FirstChild < 0 {
			t.reportInputViolation("normal splat depth exceeds density tree depth")
			return -1
		}
		offset, ok := OffsetForPosition(d+1, posArr)
		if !ok {
			return -1
		}
		child, ok := t.FindByOffset(d+1, offset)
		if !ok {
			return -1
		}
		cur = child
	}

	depth, weight := t.estimateSampleDepth(cur, posArr, samplesPerNode)
	depth = clampF(depth, float64(minDepth), float64(maxDepth))
	topDepth := clampU8(int(math.Ceil(depth)), minDepth, maxDepth)

	for t.Nodes[cur].Depth > topDepth {
		cur = t.Nodes[cur].Parent
	}
	for t.Nodes[cur].Depth < topDepth {
		offset, ok := OffsetForPosition(t.Nodes[cur].Depth+1, posArr)
		if !ok {
			return weight
		}
		child, ok := t.DescendCreateByOffset(t.Nodes[cur].Depth+1, offset)
		if !ok {
			return weight
		}
		cur = child
	}

	dxFrac := 1 - (float64(topDepth) - depth)
	width := t.Nodes[cur].Width()
	t.splatNormalAtNode(cur, posArr, r3.Scale(weight/(width*width*width)*dxFrac, normal))

	if math.Abs(1-dxFrac) > utils.Tol {
		dxFrac = 1 - dxFrac
		parent := t.Nodes[cur].Parent
		if parent >= 0 {
			pw := t.Nodes[parent].Width()
			t.splatNormalAtNode(parent, posArr, r3.Scale(weight/(pw*pw*pw)*dxFrac, normal))
		}
	}
	return weight
}
