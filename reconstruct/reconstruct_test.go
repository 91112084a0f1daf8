package reconstruct

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/geoplusplus/poisson-reconstruction/config"
	"github.com/geoplusplus/poisson-reconstruction/pointio"
)

func cubeSurfacePoints(n int, side float64, seed int64) []pointio.Point {
	rnd := rand.New(rand.NewSource(seed))
	half := side / 2
	pts := make([]pointio.Point, n)
	for i := range pts {
		face := rnd.Intn(6)
		u := rnd.Float64()*side - half
		v := rnd.Float64()*side - half
		var pos, normal r3.Vec
		switch face {
		case 0:
			pos, normal = r3.Vec{X: half, Y: u, Z: v}, r3.Vec{X: 1}
		case 1:
			pos, normal = r3.Vec{X: -half, Y: u, Z: v}, r3.Vec{X: -1}
		case 2:
			pos, normal = r3.Vec{X: u, Y: half, Z: v}, r3.Vec{Y: 1}
		case 3:
			pos, normal = r3.Vec{X: u, Y: -half, Z: v}, r3.Vec{Y: -1}
		case 4:
			pos, normal = r3.Vec{X: u, Y: v, Z: half}, r3.Vec{Z: 1}
		default:
			pos, normal = r3.Vec{X: u, Y: v, Z: -half}, r3.Vec{Z: -1}
		}
		pts[i] = pointio.Point{Position: pos, Normal: normal}
	}
	return pts
}

func spherePoints(n int, radius float64, center r3.Vec, seed int64) []pointio.Point {
	rnd := rand.New(rand.NewSource(seed))
	pts := make([]pointio.Point, n)
	for i := range pts {
		z := 2*rnd.Float64() - 1
		theta := rnd.Float64() * 2 * math.Pi
		r := math.Sqrt(1 - z*z)
		dir := r3.Vec{X: r * math.Cos(theta), Y: r * math.Sin(theta), Z: z}
		pts[i] = pointio.Point{
			Position: r3.Add(center, r3.Scale(radius, dir)),
			Normal:   dir,
		}
	}
	return pts
}

func planeStripPoints(n int, seed int64) []pointio.Point {
	rnd := rand.New(rand.NewSource(seed))
	pts := make([]pointio.Point, n)
	for i := range pts {
		pts[i] = pointio.Point{
			Position: r3.Vec{X: rnd.Float64(), Y: rnd.Float64() * 0.2, Z: rnd.Float64()},
			Normal:   r3.Vec{Y: 1},
		}
	}
	return pts
}

func baseConfig() config.PoissonConfig {
	c := config.Default()
	c.MaxDepth = 6
	c.SamplesPerNode = 1
	c.ScaleFactor = 1.1
	c.BoundaryType = config.BoundaryNeumann
	return c
}

func runPipeline(t *testing.T, cfg config.PoissonConfig, pts []pointio.Point) *pointio.MemorySink {
	t.Helper()
	stream := pointio.NewMemoryStream(pts)
	sink := pointio.NewMemorySink()
	p := NewPipeline(cfg, zap.NewNop())
	require.NoError(t, p.Run(stream, sink))
	return sink
}

// edgeUse counts, for every unordered vertex pair appearing in any
// polygon's edge list, how many polygons use that edge; a watertight
// manifold mesh uses every edge exactly twice.
func edgeUse(polys [][]int) map[[2]int]int {
	counts := make(map[[2]int]int)
	for _, poly := range polys {
		n := len(poly)
		for i := 0; i < n; i++ {
			a, b := poly[i], poly[(i+1)%n]
			if a > b {
				a, b = b, a
			}
			counts[[2]int{a, b}]++
		}
	}
	return counts
}

func TestReconstructUnitCubeSurfaceIsWatertight(t *testing.T) {
	if testing.Short() {
		t.Skip("long-running seed scenario")
	}
	cfg := baseConfig()
	pts := cubeSurfacePoints(12000, 0.8, 1)
	sink := runPipeline(t, cfg, pts)

	polys := sink.Polygons()
	require.NotEmpty(t, polys)
	for edge, count := range edgeUse(polys) {
		assert.Equalf(t, 2, count, "edge %v used %d times, want 2", edge, count)
	}

	n := sink.InCorePointCount()
	assert.GreaterOrEqual(t, n, 5000)
	assert.LessOrEqual(t, n, 20000)
}

func TestReconstructUnitSphereHausdorffBound(t *testing.T) {
	if testing.Short() {
		t.Skip("long-running seed scenario")
	}
	cfg := baseConfig()
	cfg.MaxDepth = 7
	pts := spherePoints(40000, 0.5, r3.Vec{}, 2)
	sink := runPipeline(t, cfg, pts)

	require.Greater(t, sink.InCorePointCount(), 0)
	tolerance := 2.0 / math.Pow(2, 7)
	for i := 0; i < sink.InCorePointCount(); i++ {
		v := sink.InCorePoints(i)
		d := math.Abs(r3.Norm(v.Position) - 0.5)
		assert.LessOrEqualf(t, d, tolerance*4, "vertex %d distance %f from sphere exceeds bound", i, d)
	}
}

func TestReconstructTwoDisjointSpheresTwoComponents(t *testing.T) {
	if testing.Short() {
		t.Skip("long-running seed scenario")
	}
	cfg := baseConfig()
	a := spherePoints(8000, 0.2, r3.Vec{X: -0.5}, 3)
	b := spherePoints(8000, 0.2, r3.Vec{X: 0.5}, 4)
	pts := append(a, b...)
	sink := runPipeline(t, cfg, pts)

	polys := sink.Polygons()
	require.NotEmpty(t, polys)
	adj := make(map[int][]int)
	for _, poly := range polys {
		n := len(poly)
		for i := 0; i < n; i++ {
			a, b := poly[i], poly[(i+1)%n]
			adj[a] = append(adj[a], b)
			adj[b] = append(adj[b], a)
		}
	}
	visited := make(map[int]bool)
	var components int
	for v := range adj {
		if visited[v] {
			continue
		}
		components++
		stack := []int{v}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[cur] {
				continue
			}
			visited[cur] = true
			stack = append(stack, adj[cur]...)
		}
	}
	assert.Equal(t, 2, components)
}

func TestReconstructPlaneStripFreeBoundaryProducesPatch(t *testing.T) {
	if testing.Short() {
		t.Skip("long-running seed scenario")
	}
	cfg := baseConfig()
	cfg.BoundaryType = config.BoundaryFree
	cfg.MaxDepth = 6
	pts := planeStripPoints(10000, 5)
	sink := runPipeline(t, cfg, pts)
	assert.Greater(t, sink.InCorePointCount(), 0)
}

func TestReconstructScreeningReducesDeviationFromSphere(t *testing.T) {
	if testing.Short() {
		t.Skip("long-running seed scenario")
	}
	pts := spherePoints(40000, 0.5, r3.Vec{}, 6)

	cfgNoScreen := baseConfig()
	cfgNoScreen.MaxDepth = 6
	sinkNoScreen := runPipeline(t, cfgNoScreen, pts)

	cfgScreen := cfgNoScreen
	cfgScreen.ConstraintWeight = 4

	sinkScreen := runPipeline(t, cfgScreen, pts)

	meanDev := func(s *pointio.MemorySink) float64 {
		var sum float64
		n := s.InCorePointCount()
		if n == 0 {
			return 0
		}
		for i := 0; i < n; i++ {
			sum += math.Abs(r3.Norm(s.InCorePoints(i).Position) - 0.5)
		}
		return sum / float64(n)
	}

	devNoScreen := meanDev(sinkNoScreen)
	devScreen := meanDev(sinkScreen)
	if devNoScreen > 0 {
		assert.LessOrEqualf(t, devScreen, devNoScreen*0.8, "screening did not reduce mean deviation enough: %f vs %f", devScreen, devNoScreen)
	}
}

func TestReconstructParallelDeterminism(t *testing.T) {
	if testing.Short() {
		t.Skip("long-running seed scenario")
	}
	pts := spherePoints(8000, 0.4, r3.Vec{}, 7)

	var counts []int
	for _, threads := range []int{1, 2, 4, 8} {
		cfg := baseConfig()
		cfg.MaxDepth = 5
		cfg.Threads = threads
		cfg.SubdivideDepth = 2
		sink := runPipeline(t, cfg, pts)
		counts = append(counts, sink.InCorePointCount())
	}
	for i := 1; i < len(counts); i++ {
		assert.Equal(t, counts[0], counts[i], "vertex count differs across thread counts")
	}
}
