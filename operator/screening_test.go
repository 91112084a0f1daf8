package operator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geoplusplus/poisson-reconstruction/basis"
	"github.com/geoplusplus/poisson-reconstruction/config"
	"github.com/geoplusplus/poisson-reconstruction/octree"
	"github.com/geoplusplus/poisson-reconstruction/utils"
)

func TestAddScreeningNoOpWhenDisabled(t *testing.T) {
	tr := octree.NewTree(2, config.Default(), nil)
	sorted := tr.BuildSortedIndex()
	integrator := basis.NewIntegrator(2, basis.Neumann)
	m := utils.NewDOK(int(sorted.Count()))

	cfg := config.Default()
	AddScreening(tr, sorted, 0, cfg, integrator, m)
	assert.Equal(t, 0.0, m.At(0, 0))
}

func TestAddScreeningAddsDiagonalMass(t *testing.T) {
	tr := octree.NewTree(2, config.Default(), nil)
	tr.AppendPointSample(0, [3]float64{0.5, 0.5, 0.5}, 1)
	sorted := tr.BuildSortedIndex()
	integrator := basis.NewIntegrator(2, basis.Neumann)
	m := utils.NewDOK(int(sorted.Count()))

	cfg := config.Default()
	cfg.ConstraintWeight = 1
	cfg.MaxDepth = 0
	AddScreening(tr, sorted, 0, cfg, integrator, m)
	assert.NotEqual(t, 0.0, m.At(0, 0))
}

func TestScreeningWeightScalesByDepthGap(t *testing.T) {
	fine := screeningWeight(4, 4, 1, 1)
	coarse := screeningWeight(0, 4, 1, 1)
	assert.Greater(t, fine, coarse)
}
