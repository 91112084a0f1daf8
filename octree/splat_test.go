package octree

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/geoplusplus/poisson-reconstruction/config"
)

func TestSplatDensityAccumulatesAtRoot(t *testing.T) {
	tr := NewTree(2, config.Default(), nil)
	tr.SplatDensity(r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, 1, 0)
	assert.Greater(t, tr.Nodes[0].CenterWeight[0], 0.0)
}

func TestSplatDensityCreatesDescentPath(t *testing.T) {
	tr := NewTree(2, config.Default(), nil)
	tr.SplatDensity(r3.Vec{X: 0.2, Y: 0.3, Z: 0.7}, 1, 3)
	idx, ok := tr.FindByOffset(3, [3]int64{1, 2, 5})
	assert.True(t, ok)
	assert.Equal(t, uint8(3), tr.Nodes[idx].Depth)
}

func TestSplatNormalsAccumulatesNormal(t *testing.T) {
	tr := NewTree(2, config.Default(), nil)
	pos := r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}
	for i := 0; i < 10; i++ {
		tr.SplatDensity(pos, 1, 3)
	}
	w := tr.SplatNormals(pos, r3.Vec{X: 0, Y: 0, Z: 1}, 3, 1, 0, 5)
	assert.GreaterOrEqual(t, w, 0.0)
	found := false
	for i := range tr.Nodes {
		if v := tr.NormalAt(int32(i)); v != [3]float64{} {
			found = true
			break
		}
	}
	assert.True(t, found)
}

func TestEstimateSampleDepthAboveThresholdExtrapolatesFiner(t *testing.T) {
	tr := NewTree(2, config.Default(), nil)
	pos := r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}
	tr.SplatDensity(pos, 1, 0)
	depth, weight := tr.estimateSampleDepth(0, [3]float64{0.5, 0.5, 0.5}, 0.1)
	assert.Greater(t, depth, 0.0)
	assert.InDelta(t, math.Pow(4, -depth), weight, 1e-12)
}
