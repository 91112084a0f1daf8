package operator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geoplusplus/poisson-reconstruction/config"
	"github.com/geoplusplus/poisson-reconstruction/octree"
)

func buildFullDepthTree(depth uint8) *octree.Tree {
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

func TestUpDownSampleAdjoint(t *testing.T) {
	tr := buildFullDepthTree(3)
	cfg := config.Default()
	sorted := tr.BuildSortedIndex()

	coeff := make([]float64, sorted.Count())
	constraint := make([]float64, sorted.Count())
	start1, end1 := sorted.NodesAtDepth(1)
	for i := start1; i < end1; i++ {
		coeff[i] = 1
	}
	start3, end3 := sorted.NodesAtDepth(3)
	for i := start3; i < end3; i++ {
		constraint[i] = 1
	}

	UpSampleCoefficients(tr, sorted, 2, cfg, coeff)
	UpSampleCoefficients(tr, sorted, 3, cfg, coeff)

	DownSampleConstraints(tr, sorted, 3, cfg, constraint)
	DownSampleConstraints(tr, sorted, 2, cfg, constraint)

	var sumFine, sumCoarse float64
	for i := start3; i < end3; i++ {
		sumFine += coeff[i]
	}
	for i := start1; i < end1; i++ {
		sumCoarse += coeff[i]
	}
	assert.Greater(t, sumFine, 0.0)
	assert.Greater(t, sumCoarse, 0.0)

	// Neumann's per-axis weight pair always sums to 1, so each depth-3
	// node's unit constraint fully arrives at depth 1 once both hops run.
	var depth1Sum float64
	for i := start1; i < end1; i++ {
		depth1Sum += constraint[i]
	}
	assert.InDelta(t, float64(end3-start3), depth1Sum, 1e-9)
}
