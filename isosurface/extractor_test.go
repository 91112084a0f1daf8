package isosurface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/geoplusplus/poisson-reconstruction/config"
	"github.com/geoplusplus/poisson-reconstruction/pointio"
)

// fakeSink is a minimal pointio.MeshSink over a fixed vertex slice, used to
// exercise the triangulation helpers without a real octree/solver fixture.
type fakeSink struct {
	verts    []pointio.Vertex
	polygons [][]int
}

func (s *fakeSink) AddInCorePoint(v pointio.Vertex) int {
	s.verts = append(s.verts, v)
	return len(s.verts) - 1
}

func (s *fakeSink) AddOutOfCorePoint(v pointio.Vertex) int {
	return -1
}

func (s *fakeSink) AddPolygon(indices []int) error {
	cp := make([]int, len(indices))
	copy(cp, indices)
	s.polygons = append(s.polygons, cp)
	return nil
}

func (s *fakeSink) InCorePoints(i int) pointio.Vertex { return s.verts[i] }
func (s *fakeSink) InCorePointCount() int             { return len(s.verts) }

func square(sink *fakeSink) []int {
	loop := []int{
		sink.AddInCorePoint(pointio.Vertex{Position: r3.Vec{X: 0, Y: 0}}),
		sink.AddInCorePoint(pointio.Vertex{Position: r3.Vec{X: 1, Y: 0}}),
		sink.AddInCorePoint(pointio.Vertex{Position: r3.Vec{X: 1, Y: 1}}),
		sink.AddInCorePoint(pointio.Vertex{Position: r3.Vec{X: 0, Y: 1}}),
	}
	return loop
}

func TestTriangleArea(t *testing.T) {
	a := triangleArea(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1})
	assert.InDelta(t, 0.5, a, 1e-12)
}

func TestTriangulateMinAreaFanCoversSquareWithTwoTriangles(t *testing.T) {
	sink := &fakeSink{}
	loop := square(sink)
	require.NoError(t, triangulateMinAreaFan(sink, loop))
	assert.Len(t, sink.polygons, 2)
	for _, tri := range sink.polygons {
		assert.Len(t, tri, 3)
	}
}

func TestTriangulateBarycenterFanAddsCenterVertexPerEdge(t *testing.T) {
	sink := &fakeSink{}
	loop := square(sink)
	require.NoError(t, triangulateBarycenterFan(sink, loop))
	assert.Len(t, sink.polygons, len(loop))
	centerIdx := sink.polygons[0][0]
	for _, tri := range sink.polygons {
		assert.Equal(t, centerIdx, tri[0])
	}
	center := sink.InCorePoints(centerIdx).Position
	assert.InDelta(t, 0.5, center.X, 1e-12)
	assert.InDelta(t, 0.5, center.Y, 1e-12)
}

func TestEmitLoopSkipsDegenerateLoops(t *testing.T) {
	sink := &fakeSink{}
	require.NoError(t, emitLoop(sink, []int{0, 1}, config.Default()))
	assert.Empty(t, sink.polygons)
}

func TestEmitLoopEmitsTriangleDirectly(t *testing.T) {
	sink := &fakeSink{}
	sink.AddInCorePoint(pointio.Vertex{})
	sink.AddInCorePoint(pointio.Vertex{})
	sink.AddInCorePoint(pointio.Vertex{})
	require.NoError(t, emitLoop(sink, []int{0, 1, 2}, config.Default()))
	assert.Equal(t, [][]int{{0, 1, 2}}, sink.polygons)
}

func TestEmitLoopKeepsPolygonWhenPolygonMeshEnabled(t *testing.T) {
	sink := &fakeSink{}
	loop := square(sink)
	cfg := config.Default()
	cfg.PolygonMesh = true
	require.NoError(t, emitLoop(sink, loop, cfg))
	assert.Equal(t, [][]int{loop}, sink.polygons)
}

func TestEmitLoopUsesBarycenterFanWhenConfigured(t *testing.T) {
	sink := &fakeSink{}
	loop := square(sink)
	cfg := config.Default()
	cfg.AddBarycenter = true
	require.NoError(t, emitLoop(sink, loop, cfg))
	assert.Len(t, sink.polygons, len(loop))
}

func TestIndexOfEdgeFindsPosition(t *testing.T) {
	edges := [4]int{4, 10, 6, 8}
	assert.Equal(t, 0, indexOfEdge(edges, 4))
	assert.Equal(t, 2, indexOfEdge(edges, 6))
	assert.Equal(t, -1, indexOfEdge(edges, 99))
}

func TestLerpEndpoints(t *testing.T) {
	a := [3]float64{0, 0, 0}
	b := [3]float64{2, 4, 6}
	assert.Equal(t, r3.Vec{}, lerp(a, b, 0))
	assert.Equal(t, r3.Vec{X: 2, Y: 4, Z: 6}, lerp(a, b, 1))
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, lerp(a, b, 0.5))
}
