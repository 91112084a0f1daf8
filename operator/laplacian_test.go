package operator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geoplusplus/poisson-reconstruction/basis"
	"github.com/geoplusplus/poisson-reconstruction/config"
	"github.com/geoplusplus/poisson-reconstruction/octree"
)

func TestLaplacianSymmetric(t *testing.T) {
	tr := buildFullDepthTree(3)
	sorted := tr.BuildSortedIndex()
	integrator := basis.NewIntegrator(2, basis.Neumann)

	m := Laplacian(tr, sorted, 3, integrator)
	r, c := m.Dims()
	assert.Equal(t, r, c)

	maxAbs := CSRNorm(m)
	start, end := sorted.NodesAtDepth(3)
	for i := start; i < end; i++ {
		for j := start; j < end; j++ {
			assert.InDelta(t, m.At(int(i), int(j)), m.At(int(j), int(i)), 1e-8*maxAbs+1e-12)
		}
	}
}

func TestLaplacianDiagonalNonZero(t *testing.T) {
	tr := octree.NewTree(2, config.Default(), nil)
	tr.EnsureChildren(0)
	sorted := tr.BuildSortedIndex()
	integrator := basis.NewIntegrator(2, basis.Neumann)

	m := Laplacian(tr, sorted, 1, integrator)
	start, end := sorted.NodesAtDepth(1)
	for i := start; i < end; i++ {
		assert.NotEqual(t, 0.0, m.At(int(i), int(i)))
	}
}
