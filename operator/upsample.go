// Package operator assembles the discrete Laplacian and divergence
// right-hand side from the octree's basis functions, and provides the
// linear up-sample / down-sample pair that moves coefficients and
// constraints between adjacent depths.
package operator

import (
	"github.com/geoplusplus/poisson-reconstruction/config"
	"github.com/geoplusplus/poisson-reconstruction/octree"
	"github.com/geoplusplus/poisson-reconstruction/utils"
)

// cornerValueFor is the up-sample weight a domain-edge node borrows from
// its (nonexistent) outside neighbor, per boundary type.
func cornerValueFor(bt config.BoundaryType) float64 {
	switch bt {
	case config.BoundaryDirichlet:
		return 0.5
	case config.BoundaryNeumann:
		return 1
	default:
		return 0.75
	}
}

// upsampleTaps returns the two coarse-offset deltas, relative to the
// fine node's parent, and their linear up-sample weights for one axis:
// a domain-edge node borrows only from the side that exists (weighted by
// cornerValue), an odd-offset interior node leans 0.75 toward its
// aligned parent and 0.25 toward the parent's +1 neighbor, and an
// even-offset node leans the same way toward the -1 neighbor.
func upsampleTaps(off uint32, depth uint8, cornerValue float64) (d0, d1 int, w0, w1 float64) {
	n := uint32(1) << depth
	switch {
	case off == 0:
		return 0, 1, cornerValue, 0
	case off+1 == n:
		return -1, 0, 0, cornerValue
	case off%2 == 1:
		return 0, 1, 0.75, 0.25
	default:
		return -1, 0, 0.25, 0.75
	}
}

// forEachUpsampleTap visits the up-to-8 depth-(d-1) neighbors of fine
// node idx's parent that linear up-sampling draws from, calling fn with
// each coarse node's dense sorted index and the product weight. Taps
// with zero weight, and taps whose coarse neighbor does not exist, are
// skipped.
func forEachUpsampleTap(tree *octree.Tree, idx int32, cornerValue float64, fn func(coarseIdx int32, weight float64)) {
	node := tree.Nodes[idx]
	parent := tree.Nodes[node.Parent]

	var d [3][2]int
	var w [3][2]float64
	for axis := 0; axis < 3; axis++ {
		d0, d1, w0, w1 := upsampleTaps(node.Offset[axis], node.Depth, cornerValue)
		d[axis][0], d[axis][1] = d0, d1
		w[axis][0], w[axis][1] = w0, w1
	}

	for ii := 0; ii < 2; ii++ {
		for jj := 0; jj < 2; jj++ {
			for kk := 0; kk < 2; kk++ {
				weight := w[0][ii] * w[1][jj] * w[2][kk]
				if weight == 0 {
					continue
				}
				coarseOff := [3]int64{
					int64(parent.Offset[0]) + int64(d[0][ii]),
					int64(parent.Offset[1]) + int64(d[1][jj]),
					int64(parent.Offset[2]) + int64(d[2][kk]),
				}
				coarseIdx, ok := tree.FindByOffset(parent.Depth, coarseOff)
				if !ok {
					continue
				}
				fn(coarseIdx, weight)
			}
		}
	}
}

// upsampleActive implements a "skip the coarsest one or two
// depths" guard: with a boundary, depth 0 (the root) has no coarser
// level to draw from; without one (free boundary, which pads the tree by
// an extra level), depths 0-2 are skipped.
func upsampleActive(depth uint8, cfg config.PoissonConfig) bool {
	if cfg.BoundaryType != config.BoundaryFree {
		return depth != 0
	}
	return depth > 2
}

// UpSampleCoefficients adds, into coefficients at every depth-d node's
// dense index, the already-resident depth-(d-1) coefficient at its
// coarse taps, weighted by the linear up-sample stencil. This is the P
// half of the P / Pᵀ up-sample/down-sample pair; coefficients is indexed
// by octree.SortedIndex dense position, not arena index.
func UpSampleCoefficients(tree *octree.Tree, sorted octree.SortedIndex, depth uint8, cfg config.PoissonConfig, coefficients []float64) {
	if !upsampleActive(depth, cfg) {
		return
	}
	cornerValue := cornerValueFor(cfg.BoundaryType)
	start, end := sorted.NodesAtDepth(depth)
	for i := start; i < end; i++ {
		nodeIdx := sorted.Order[i]
		forEachUpsampleTap(tree, nodeIdx, cornerValue, func(coarseIdx int32, weight float64) {
			coarseDense := tree.Nodes[coarseIdx].NodeIndex
			coefficients[i] += coefficients[coarseDense] * weight
		})
	}
}

// DownSampleConstraints is UpSampleCoefficients's adjoint: it scatters
// each depth-d constraint value into its coarse taps at depth d-1,
// weighted by the same stencil. Accumulation uses
// utils.AtomicAddFloat64 rather than a mutex, since many depth-d rows
// can target the same coarse slot concurrently.
func DownSampleConstraints(tree *octree.Tree, sorted octree.SortedIndex, depth uint8, cfg config.PoissonConfig, constraints []float64) {
	if !upsampleActive(depth, cfg) {
		return
	}
	cornerValue := cornerValueFor(cfg.BoundaryType)
	start, end := sorted.NodesAtDepth(depth)
	for i := start; i < end; i++ {
		nodeIdx := sorted.Order[i]
		c := constraints[i]
		if c == 0 {
			continue
		}
		forEachUpsampleTap(tree, nodeIdx, cornerValue, func(coarseIdx int32, weight float64) {
			coarseDense := tree.Nodes[coarseIdx].NodeIndex
			utils.AtomicAddFloat64(&constraints[coarseDense], c*weight)
		})
	}
}
