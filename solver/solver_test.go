package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/geoplusplus/poisson-reconstruction/basis"
	"github.com/geoplusplus/poisson-reconstruction/config"
	"github.com/geoplusplus/poisson-reconstruction/octree"
	"github.com/geoplusplus/poisson-reconstruction/operator"
)

// diagMatrix is a trivial SPD Matrix for exercising the CG loop in
// isolation from the octree operator assembly.
type diagMatrix []float64

func (d diagMatrix) Dims() (int, int) { return len(d), len(d) }

func (d diagMatrix) MulVec(out, in *mat.VecDense) {
	for i, v := range d {
		out.SetVec(i, v*in.AtVec(i))
	}
}

func TestConjugateGradientSolvesDiagonalSystem(t *testing.T) {
	a := diagMatrix{2, 4, 8, 1}
	xKnown := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	b := mat.NewVecDense(4, nil)
	a.MulVec(b, xKnown)

	x := mat.NewVecDense(4, nil)
	iters := ConjugateGradient(a, b, x, 50, 1e-12, true, false, 1)

	assert.Greater(t, iters, 0)
	for i := 0; i < 4; i++ {
		assert.InDelta(t, xKnown.AtVec(i), x.AtVec(i), 1e-6)
	}
}

func TestConjugateGradientZeroResidualReturnsImmediately(t *testing.T) {
	a := diagMatrix{1, 1, 1}
	b := mat.NewVecDense(3, nil)
	x := mat.NewVecDense(3, nil)
	iters := ConjugateGradient(a, b, x, 50, 1e-6, true, false, 1)
	assert.Equal(t, 0, iters)
}

func buildSolverTestTree(depth uint8) *octree.Tree {
	tr := octree.NewTree(2, config.Default(), nil)
	frontier := []int32{0}
	for d := uint8(0); d < depth; d++ {
		var next []int32
		for _, idx := range frontier {
			first := tr.EnsureChildren(idx)
			for c := 0; c < 8; c++ {
				next = append(next, first+int32(c))
			}
		}
		frontier = next
	}
	return tr
}

func TestConjugateGradientOnScreenedLaplacian(t *testing.T) {
	tr := buildSolverTestTree(2)
	leaf, _ := tr.FindByOffset(2, [3]int64{1, 1, 1})
	tr.AppendPointSample(leaf, [3]float64{0.375, 0.375, 0.375}, 1)
	sorted := tr.BuildSortedIndex()
	integrator := basis.NewIntegrator(2, basis.Neumann)

	cfg := config.Default()
	cfg.ConstraintWeight = 1
	cfg.MaxDepth = 2

	lap := operator.Laplacian(tr, sorted, 2, integrator)
	operator.AddScreening(tr, sorted, 2, cfg, integrator, lap)
	csr := lap.ToCSR()

	start, end := sorted.NodesAtDepth(2)
	n := int(end - start)
	members := rangeMembers(start, end)
	a := blockMatrix{parent: csr, members: members}

	xKnown := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		xKnown.SetVec(i, float64(i%3)+0.5)
	}
	b := mat.NewVecDense(n, nil)
	a.MulVec(b, xKnown)

	x := mat.NewVecDense(n, nil)
	iters := ConjugateGradient(a, b, x, 200, 1e-10, true, false, 1)
	assert.Greater(t, iters, 0)

	residual := Residual(a, b, x)
	assert.Less(t, residual, 1e-4)
}
