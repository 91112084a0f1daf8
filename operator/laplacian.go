package operator

import (
	"github.com/geoplusplus/poisson-reconstruction/basis"
	"github.com/geoplusplus/poisson-reconstruction/octree"
	"github.com/geoplusplus/poisson-reconstruction/utils"
)

func toInt64(o octree.Offset) [3]int64 {
	return [3]int64{int64(o[0]), int64(o[1]), int64(o[2])}
}

// laplacianEntry evaluates the separable bilinear form between the
// basis functions at off1 and off2, L = sum_axis dot'(axis) *
// prod(dot(other axes)): one axis contributes the first-derivative
// pairing (derivative against derivative), the other two contribute the
// plain value pairing.
func laplacianEntry(integrator *basis.Integrator, depth int, off1, off2 [3]uint32) float64 {
	a := [3]int{int(off1[0]), int(off1[1]), int(off1[2])}
	b := [3]int{int(off2[0]), int(off2[1]), int(off2[2])}
	var sum float64
	for k := 0; k < 3; k++ {
		term := integrator.Dot(depth, a[k], b[k], 1, 1, false)
		if term == 0 {
			continue
		}
		for kk := 0; kk < 3; kk++ {
			if kk == k {
				continue
			}
			term *= integrator.Dot(depth, a[kk], b[kk], 0, 0, false)
		}
		sum += term
	}
	return sum
}

// Laplacian assembles the depth-d discrete Laplacian over the tree's
// current dense node indexing as a DOK: for every depth-d node it visits
// its 5x5x5 same-depth neighborhood (the widest offset at which two
// degree-2 B-spline supports can still overlap) and fills both (i,j) and
// (j,i), since the separable stencil is symmetric by construction of the
// integrator.
func Laplacian(tree *octree.Tree, sorted octree.SortedIndex, depth uint8, integrator *basis.Integrator) utils.DOK {
	n := int(sorted.Count())
	m := utils.NewDOK(n)
	start, end := sorted.NodesAtDepth(depth)
	for i := start; i < end; i++ {
		nodeI := tree.Nodes[sorted.Order[i]]
		off := toInt64(nodeI.Offset)
		for dx := -2; dx <= 2; dx++ {
			for dy := -2; dy <= 2; dy++ {
				for dz := -2; dz <= 2; dz++ {
					jIdx, ok := tree.FindByOffset(depth, octree.NeighborOffset(off, [3]int{dx, dy, dz}))
					if !ok {
						continue
					}
					nodeJ := tree.Nodes[jIdx]
					j := nodeJ.NodeIndex
					if j < int32(i) {
						continue
					}
					v := laplacianEntry(integrator, int(depth), nodeI.Offset, nodeJ.Offset)
					if v == 0 {
						continue
					}
					m.Set(int(i), int(j), v)
					if j != int32(i) {
						m.Set(int(j), int(i), v)
					}
				}
			}
		}
	}
	return m
}

// CSRNorm returns the largest absolute entry of m, used by
// TestLaplacianSymmetric for its "1e-8*max|L|" symmetry tolerance, walking the sparse matrix's dimensions
// densely — acceptable for the depth-bounded test matrices this is run
// against, not for production-sized assembled operators.
func CSRNorm(m interface {
	Dims() (int, int)
	At(i, j int) float64
}) float64 {
	r, c := m.Dims()
	var max float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if v < 0 {
				v = -v
			}
			if v > max {
				max = v
			}
		}
	}
	return max
}
