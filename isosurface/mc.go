// Package isosurface extracts the marching-cubes-style polygon mesh I from
// the solved octree (T,X,S): corner values are evaluated once per shared
// corner via shared.Tables, an 8-bit sign mask per leaf is propagated to
// ancestors along matching child slots, active-edge roots are located by a
// quadratic Hermite fit, and each leaf's active faces are assembled into
// directed half-edge loops and triangulated.
package isosurface

import (
	"github.com/geoplusplus/poisson-reconstruction/basis"
	"github.com/geoplusplus/poisson-reconstruction/config"
	"github.com/geoplusplus/poisson-reconstruction/octree"
	"github.com/geoplusplus/poisson-reconstruction/operator"
	"github.com/geoplusplus/poisson-reconstruction/shared"
	"github.com/geoplusplus/poisson-reconstruction/utils"
)

func cornerWorldPos(depth uint8, offset octree.Offset, corner int) [3]float64 {
	n := float64(uint32(1) << depth)
	dx := uint32(corner & 1)
	dy := uint32((corner >> 1) & 1)
	dz := uint32((corner >> 2) & 1)
	return [3]float64{
		(float64(offset[0]) + float64(dx)) / n,
		(float64(offset[1]) + float64(dy)) / n,
		(float64(offset[2]) + float64(dz)) / n,
	}
}

// cornerValue evaluates the reconstructed field at leafIdx's corner c,
// memoizing by the corner's shared global id so a corner touched by
// several cells is only evaluated once.
func cornerValue(tree *octree.Tree, integrator *basis.Integrator, coefficients []float64, tables *shared.Tables, cache map[int32]float64, leafIdx int32, corner int) float64 {
	node := tree.Nodes[leafIdx]
	id := tables.CornerIndex(node.Depth, node.Offset, corner)
	if v, ok := cache[id]; ok {
		return v
	}
	pos := cornerWorldPos(node.Depth, node.Offset, corner)
	v := operator.FieldValue(tree, integrator, coefficients, leafIdx, pos)
	cache[id] = v
	return v
}

// ComputeIsoValue is the volume-weighted average of the reconstructed
// function at every leaf's center, across every depth the adaptive octree
// actually has leaves at (not just the finest), weighted by each leaf's
// accumulated density (Node.CenterWeight[0]), with a 0.5 offset subtracted
// for a Dirichlet boundary (the boundary condition anchors the field half a
// unit away from the natural zero crossing).
func ComputeIsoValue(tree *octree.Tree, sorted octree.SortedIndex, integrator *basis.Integrator, coefficients []float64, boundary config.BoundaryType) float64 {
	var weightedSum, totalWeight float64
	maxDepth := len(sorted.DepthStart) - 2
	for d := 0; d <= maxDepth; d++ {
		start, end := sorted.NodesAtDepth(uint8(d))
		for i := start; i < end; i++ {
			idx := sorted.Order[i]
			if !tree.Nodes[idx].IsLeaf() {
				continue
			}
			w := tree.Nodes[idx].CenterWeight[0]
			if w <= 0 {
				continue
			}
			c := tree.Nodes[idx].Center()
			v := operator.FieldValue(tree, integrator, coefficients, idx, [3]float64{c.X, c.Y, c.Z})
			weightedSum += v * w
			totalWeight += w
		}
	}
	var iso float64
	if totalWeight > 0 {
		iso = weightedSum / totalWeight
	}
	if boundary == config.BoundaryDirichlet {
		iso -= 0.5
	}
	return iso
}

func childIndexOf(offset octree.Offset) int {
	return int(offset[0]&1) | int(offset[1]&1)<<1 | int(offset[2]&1)<<2
}

// propagateMCIndex sets each bit of mask that is present on ancestors whose
// own child-slot equals that corner index, stopping at the first ancestor
// where the chain breaks — a leaf's corner sign is only inherited upward
// while it remains "the same physical corner" of a coarser cell.
func propagateMCIndex(tree *octree.Tree, nodeIdx int32, mask int32) {
	for c := 0; c < 8; c++ {
		bit := int32(1) << uint(c)
		if mask&bit == 0 {
			continue
		}
		cur := nodeIdx
		for {
			node := tree.Nodes[cur]
			if node.Parent < 0 {
				break
			}
			if childIndexOf(node.Offset) != c {
				break
			}
			utils.AtomicOrInt32(&tree.Nodes[node.Parent].MCIndex, bit)
			cur = node.Parent
		}
	}
}

// ComputeMCIndex evaluates leafIdx's 8 corner signs against isoValue,
// records the resulting mask on the node, and propagates it upward.
func ComputeMCIndex(tree *octree.Tree, integrator *basis.Integrator, coefficients []float64, tables *shared.Tables, cache map[int32]float64, leafIdx int32, isoValue float64) (mask int32, cornerVals [8]float64) {
	for c := 0; c < 8; c++ {
		cornerVals[c] = cornerValue(tree, integrator, coefficients, tables, cache, leafIdx, c)
		if cornerVals[c] < isoValue {
			mask |= int32(1) << uint(c)
		}
	}
	tree.Nodes[leafIdx].MCIndex |= mask
	propagateMCIndex(tree, leafIdx, mask)
	return mask, cornerVals
}
