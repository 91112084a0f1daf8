package operator

import (
	"github.com/geoplusplus/poisson-reconstruction/basis"
	"github.com/geoplusplus/poisson-reconstruction/octree"
)

// BasisValueAt evaluates the tensor-product basis function at offset,
// depth against a world-space point, using the integrator's boundary-aware
// 1D evaluator on each axis independently. Shared by screening (point
// fidelity) and by the iso-extractor's corner/gradient evaluation.
func BasisValueAt(integrator *basis.Integrator, depth int, offset [3]uint32, pos [3]float64) float64 {
	v := 1.0
	for axis := 0; axis < 3; axis++ {
		v *= integrator.ValueAt(depth, int(offset[axis]), pos[axis])
		if v == 0 {
			return 0
		}
	}
	return v
}

// BasisGradientAt evaluates the gradient of the tensor-product basis
// function at offset, depth, against pos: each component k takes the
// derivative on axis k and the plain value on the other two.
func BasisGradientAt(integrator *basis.Integrator, depth int, offset [3]uint32, pos [3]float64) [3]float64 {
	var g [3]float64
	for k := 0; k < 3; k++ {
		v := 1.0
		for axis := 0; axis < 3; axis++ {
			if axis == k {
				v *= integrator.DerivAt(depth, int(offset[axis]), pos[axis])
			} else {
				v *= integrator.ValueAt(depth, int(offset[axis]), pos[axis])
			}
		}
		g[k] = v
	}
	return g
}

// FieldValue evaluates the reconstructed scalar field at pos, gathered
// from nodeIdx's own depth-local 5x5x5 same-depth neighborhood plus every
// ancestor's same neighborhood up to the root — the telescoping sum over
// depths that the multi-resolution basis expansion requires, restricted
// per depth to the 5x5x5 window a degree-2 B-spline's support can reach.
// coefficients is indexed by dense sorted position (octree.SortedIndex).
func FieldValue(tree *octree.Tree, integrator *basis.Integrator, coefficients []float64, nodeIdx int32, pos [3]float64) float64 {
	var sum float64
	for cur := nodeIdx; cur >= 0; cur = tree.Nodes[cur].Parent {
		node := tree.Nodes[cur]
		off := toInt64(node.Offset)
		for dx := -2; dx <= 2; dx++ {
			for dy := -2; dy <= 2; dy++ {
				for dz := -2; dz <= 2; dz++ {
					jIdx, ok := tree.FindByOffset(node.Depth, octree.NeighborOffset(off, [3]int{dx, dy, dz}))
					if !ok {
						continue
					}
					nodeJ := tree.Nodes[jIdx]
					c := coefficients[nodeJ.NodeIndex]
					if c == 0 {
						continue
					}
					sum += c * BasisValueAt(integrator, int(node.Depth), nodeJ.Offset, pos)
				}
			}
		}
	}
	return sum
}

// FieldGradient is FieldValue's gradient counterpart, used by the
// iso-extractor's Hermite root fit.
func FieldGradient(tree *octree.Tree, integrator *basis.Integrator, coefficients []float64, nodeIdx int32, pos [3]float64) [3]float64 {
	var sum [3]float64
	for cur := nodeIdx; cur >= 0; cur = tree.Nodes[cur].Parent {
		node := tree.Nodes[cur]
		off := toInt64(node.Offset)
		for dx := -2; dx <= 2; dx++ {
			for dy := -2; dy <= 2; dy++ {
				for dz := -2; dz <= 2; dz++ {
					jIdx, ok := tree.FindByOffset(node.Depth, octree.NeighborOffset(off, [3]int{dx, dy, dz}))
					if !ok {
						continue
					}
					nodeJ := tree.Nodes[jIdx]
					c := coefficients[nodeJ.NodeIndex]
					if c == 0 {
						continue
					}
					g := BasisGradientAt(integrator, int(node.Depth), nodeJ.Offset, pos)
					sum[0] += c * g[0]
					sum[1] += c * g[1]
					sum[2] += c * g[2]
				}
			}
		}
	}
	return sum
}
