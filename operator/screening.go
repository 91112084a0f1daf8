package operator

import (
	"github.com/geoplusplus/poisson-reconstruction/basis"
	"github.com/geoplusplus/poisson-reconstruction/config"
	"github.com/geoplusplus/poisson-reconstruction/octree"
	"github.com/geoplusplus/poisson-reconstruction/utils"
)

// screeningWeight rescales a node's accumulated point weight by
// 2^e, e = depth*k - maxDepth*(k-1), k = adaptiveExponent. For k >= 1 the
// exponent grows with depth, so a point terminating at a finer node
// contributes more per-point weight than one terminating at a coarse node;
// at depth == maxDepth the factor is 2^maxDepth for every k.
func screeningWeight(depth, maxDepth, adaptiveExponent int, weight float64) float64 {
	e := depth*adaptiveExponent - maxDepth*(adaptiveExponent-1)
	if e < 0 {
		return weight / float64(int64(1)<<uint(-e))
	}
	return weight * float64(int64(1)<<uint(e))
}

// AddScreening adds the Tikhonov point-fidelity term into m: for every
// depth-d node holding an averaged point sample, and every pair of its
// 5x5x5 same-depth neighbors (i,j) whose basis functions both cover that
// sample, add w_p * phi_i(p) * phi_j(p) — a symmetric, diagonally
// dominant correction, contributing only when
// cfg.ScreeningEnabled().
func AddScreening(tree *octree.Tree, sorted octree.SortedIndex, depth uint8, cfg config.PoissonConfig, integrator *basis.Integrator, m utils.DOK) {
	if !cfg.ScreeningEnabled() {
		return
	}
	start, end := sorted.NodesAtDepth(depth)
	maxDepth := cfg.MaxDepth
	for p := start; p < end; p++ {
		pointNode := tree.Nodes[sorted.Order[p]]
		if pointNode.PointIndex < 0 {
			continue
		}
		sample := tree.Points[pointNode.PointIndex]
		if sample.Weight == 0 {
			continue
		}
		pos := [3]float64{
			sample.WeightedPosition[0] / sample.Weight,
			sample.WeightedPosition[1] / sample.Weight,
			sample.WeightedPosition[2] / sample.Weight,
		}
		w := screeningWeight(int(depth), maxDepth, cfg.AdaptiveExponent, sample.Weight) * cfg.ConstraintWeight
		off := toInt64(pointNode.Offset)
		for dx := -2; dx <= 2; dx++ {
			for dy := -2; dy <= 2; dy++ {
				for dz := -2; dz <= 2; dz++ {
					iIdx, ok := tree.FindByOffset(depth, octree.NeighborOffset(off, [3]int{dx, dy, dz}))
					if !ok {
						continue
					}
					nodeI := tree.Nodes[iIdx]
					phiI := BasisValueAt(integrator, int(depth), nodeI.Offset, pos)
					if phiI == 0 {
						continue
					}
					for ex := -2; ex <= 2; ex++ {
						for ey := -2; ey <= 2; ey++ {
							for ez := -2; ez <= 2; ez++ {
								jIdx, ok := tree.FindByOffset(depth, octree.NeighborOffset(off, [3]int{ex, ey, ez}))
								if !ok {
									continue
								}
								nodeJ := tree.Nodes[jIdx]
								phiJ := BasisValueAt(integrator, int(depth), nodeJ.Offset, pos)
								if phiJ == 0 {
									continue
								}
								m.Add(int(nodeI.NodeIndex), int(nodeJ.NodeIndex), w*phiI*phiJ)
							}
						}
					}
				}
			}
		}
	}
}
