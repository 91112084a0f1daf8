package operator

import (
	"gonum.org/v1/gonum/mat"

	"github.com/geoplusplus/poisson-reconstruction/basis"
	"github.com/geoplusplus/poisson-reconstruction/octree"
)

// divergenceContribution returns -integral(V . grad(phi_i)) dx for the
// basis function at offBasis and a point vector field located at
// offNormal, both at depth, using the derivative-on-the-test-function
// separable pattern: exactly one axis carries the basis function's
// derivative, the other two carry its plain value, and the three axis
// terms are dotted against normal componentwise.
func divergenceContribution(integrator *basis.Integrator, depth int, offBasis, offNormal [3]uint32, childParent bool, normal [3]float64) float64 {
	var vv, dv [3]float64
	for k := 0; k < 3; k++ {
		vv[k] = integrator.Dot(depth, int(offBasis[k]), int(offNormal[k]), 0, 0, childParent)
		dv[k] = integrator.Dot(depth, int(offBasis[k]), int(offNormal[k]), 1, 0, childParent)
	}
	return -(dv[0]*vv[1]*vv[2]*normal[0] + vv[0]*dv[1]*vv[2]*normal[1] + vv[0]*vv[1]*dv[2]*normal[2])
}

// divergenceContributionFromChild is divergenceContribution's childParent=true
// counterpart: offNormalChild is a depth+1 normal sample and offBasisParent is
// the depth-d test function it is gathered into, so Integrator.Dot is called
// with childDepth=depth+1 (per its doc, childParent routes o1 to the passed
// depth and o2 to depth-1) and the derivative moved onto the second operand,
// since the basis function is now o2 rather than o1.
func divergenceContributionFromChild(integrator *basis.Integrator, childDepth int, offNormalChild, offBasisParent [3]uint32, normal [3]float64) float64 {
	var vv, dv [3]float64
	for k := 0; k < 3; k++ {
		vv[k] = integrator.Dot(childDepth, int(offNormalChild[k]), int(offBasisParent[k]), 0, 0, true)
		dv[k] = integrator.Dot(childDepth, int(offNormalChild[k]), int(offBasisParent[k]), 0, 1, true)
	}
	return -(dv[0]*vv[1]*vv[2]*normal[0] + vv[0]*dv[1]*vv[2]*normal[1] + vv[0]*vv[1]*dv[2]*normal[2])
}

// Divergence assembles the depth-d right-hand side b_i = integral(div(V)
// . phi_i) dx = -integral(V . grad(phi_i)) dx. Each depth-d node gathers its same-depth 5x5x5 neighborhood's
// splatted normals, plus a second child-parent tier that gathers the
// depth+1 normals splatted directly under it: the normal-splat pass folds
// most finer-depth mass into the same-depth field already (its
// two-adjacent-depth weighting), but a child node's own depth+1 sample still
// carries a genuine depth+1 normal distinct from its depth-d parent's, so
// omitting this tier silently drops part of the divergence this node's
// children contribute.
func Divergence(tree *octree.Tree, sorted octree.SortedIndex, depth uint8, integrator *basis.Integrator) *mat.VecDense {
	n := int(sorted.Count())
	b := mat.NewVecDense(n, nil)
	start, end := sorted.NodesAtDepth(depth)
	for i := start; i < end; i++ {
		nodeI := tree.Nodes[sorted.Order[i]]
		off := toInt64(nodeI.Offset)
		var sum float64
		for dx := -2; dx <= 2; dx++ {
			for dy := -2; dy <= 2; dy++ {
				for dz := -2; dz <= 2; dz++ {
					jIdx, ok := tree.FindByOffset(depth, octree.NeighborOffset(off, [3]int{dx, dy, dz}))
					if !ok {
						continue
					}
					normal := tree.NormalAt(jIdx)
					if normal == ([3]float64{}) {
						continue
					}
					sum += divergenceContribution(integrator, int(depth), nodeI.Offset, tree.Nodes[jIdx].Offset, false, normal)
				}
			}
		}
		if int(depth)+1 < len(sorted.DepthStart)-1 {
			childOff := [3]int64{off[0] * 2, off[1] * 2, off[2] * 2}
			for dx := -4; dx <= 4; dx++ {
				for dy := -4; dy <= 4; dy++ {
					for dz := -4; dz <= 4; dz++ {
						jIdx, ok := tree.FindByOffset(depth+1, octree.NeighborOffset(childOff, [3]int{dx, dy, dz}))
						if !ok {
							continue
						}
						normal := tree.NormalAt(jIdx)
						if normal == ([3]float64{}) {
							continue
						}
						sum += divergenceContributionFromChild(integrator, int(depth)+1, tree.Nodes[jIdx].Offset, nodeI.Offset, normal)
					}
				}
			}
		}
		b.SetVec(int(i), sum)
	}
	return b
}
