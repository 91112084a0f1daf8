// Package reconstruct orchestrates the full B->T->S->X->O->V->I pipeline:
// it reads an oriented point stream, builds and finalizes the octree,
// solves the cascaded multigrid system, and extracts the iso-surface into
// a mesh sink. Each stage is implemented in its own package; this package
// only sequences them and handles the external-coordinate transform.
package reconstruct

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/geoplusplus/poisson-reconstruction/basis"
	"github.com/geoplusplus/poisson-reconstruction/config"
	"github.com/geoplusplus/poisson-reconstruction/isosurface"
	"github.com/geoplusplus/poisson-reconstruction/octree"
	"github.com/geoplusplus/poisson-reconstruction/pointio"
	"github.com/geoplusplus/poisson-reconstruction/solver"
)

// degree is fixed at 2 (quadratic B-spline), the only degree the basis
// tables and the up/down-sample weights in this codebase are derived for.
const degree = 2

// Pipeline drives one reconstruction run end to end.
type Pipeline struct {
	Cfg config.PoissonConfig
	Log *zap.Logger
}

// NewPipeline builds a Pipeline over cfg, defaulting to a no-op logger.
func NewPipeline(cfg config.PoissonConfig, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{Cfg: cfg, Log: log}
}

// Run executes the full pipeline: bounding-box normalization, octree
// construction (density, normal, and optional screening passes),
// finalization, the cascaded solve, and mesh extraction into sink.
func (p *Pipeline) Run(stream pointio.Stream, sink pointio.MeshSink) error {
	cfg := p.Cfg
	bounds, err := computeBounds(stream, cfg)
	if err != nil {
		return err
	}

	tree := octree.NewTree(degree, cfg, p.Log)
	splatDepth := uint8(cfg.SplatDepth)
	minDepth := uint8(cfg.MinDepth)
	maxDepth := uint8(cfg.MaxDepth)

	if splatDepth > 0 {
		if err := p.splatDensityPass(stream, tree, bounds, splatDepth); err != nil {
			return err
		}
	}
	if err := p.splatNormalPass(stream, tree, bounds, splatDepth, minDepth, maxDepth); err != nil {
		return err
	}
	if cfg.ScreeningEnabled() {
		if err := p.splatScreeningPass(stream, tree, bounds, splatDepth, minDepth, maxDepth); err != nil {
			return err
		}
	}

	sDepth := tree.Finalize(cfg.SubdivideDepth)
	p.Log.Info("octree finalized", zap.Int("nodes", len(tree.Nodes)), zap.Int("subdomainDepth", sDepth))

	sorted := tree.BuildSortedIndex()
	integrator := basis.NewIntegrator(degree, basisBoundary(cfg.BoundaryType))
	coefficients := solver.Cascade(tree, sorted, cfg, integrator, p.Log)

	return p.extract(tree, sorted, integrator, coefficients, bounds, sink)
}

func basisBoundary(b config.BoundaryType) basis.Type {
	switch b {
	case config.BoundaryDirichlet:
		return basis.Dirichlet
	case config.BoundaryNeumann:
		return basis.Neumann
	default:
		return basis.Free
	}
}

func confidenceWeight(useConfidence bool, normal r3.Vec) (float64, r3.Vec) {
	mag := r3.Norm(normal)
	if mag == 0 {
		return 0, normal
	}
	if useConfidence {
		return mag, normal
	}
	return 1, r3.Scale(1/mag, normal)
}

func (p *Pipeline) splatDensityPass(stream pointio.Stream, tree *octree.Tree, bounds unitCubeTransform, splatDepth uint8) error {
	for {
		pt, ok, err := stream.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		pos := bounds.toUnit(applyXForm(p.Cfg.XForm, pt.Position))
		if !inUnitCube(pos) {
			continue
		}
		weight, _ := confidenceWeight(p.Cfg.UseConfidence, applyXFormLinear(p.Cfg.XForm, pt.Normal))
		tree.SplatDensity(pos, weight, splatDepth)
	}
	return stream.Reset()
}

func (p *Pipeline) splatNormalPass(stream pointio.Stream, tree *octree.Tree, bounds unitCubeTransform, splatDepth, minDepth, maxDepth uint8) error {
	for {
		pt, ok, err := stream.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		pos := bounds.toUnit(applyXForm(p.Cfg.XForm, pt.Position))
		if !inUnitCube(pos) {
			continue
		}
		normal := bounds.toUnitVec(applyXFormLinear(p.Cfg.XForm, pt.Normal))
		_, normal = confidenceWeight(p.Cfg.UseConfidence, normal)
		tree.SplatNormals(pos, normal, splatDepth, p.Cfg.SamplesPerNode, minDepth, maxDepth)
	}
	return stream.Reset()
}

func (p *Pipeline) splatScreeningPass(stream pointio.Stream, tree *octree.Tree, bounds unitCubeTransform, splatDepth, minDepth, maxDepth uint8) error {
	for {
		pt, ok, err := stream.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		pos := bounds.toUnit(applyXForm(p.Cfg.XForm, pt.Position))
		if !inUnitCube(pos) {
			continue
		}
		weight := 1.0
		if p.Cfg.UseNormalWeights {
			weight = r3.Norm(applyXFormLinear(p.Cfg.XForm, pt.Normal))
		}
		tree.SplatScreeningSample(pos, weight, splatDepth, p.Cfg.SamplesPerNode, minDepth, maxDepth)
	}
	return stream.Reset()
}

func inUnitCube(pos r3.Vec) bool {
	return pos.X >= 0 && pos.X < 1 && pos.Y >= 0 && pos.Y < 1 && pos.Z >= 0 && pos.Z < 1
}

// extract runs the iso-surface sweep and maps every emitted vertex back
// out of the unit-cube frame before the caller's sink sees it.
func (p *Pipeline) extract(tree *octree.Tree, sorted octree.SortedIndex, integrator *basis.Integrator, coefficients []float64, bounds unitCubeTransform, sink pointio.MeshSink) error {
	unitSink := &rescalingSink{inner: sink, bounds: bounds}
	isosurface.ExtractMesh(tree, sorted, p.Cfg, integrator, coefficients, unitSink, p.Log)
	return nil
}

// rescalingSink wraps a caller-provided MeshSink, translating every vertex
// position from the internal unit-cube frame back to the xForm-transformed
// world frame before delegating.
type rescalingSink struct {
	inner  pointio.MeshSink
	bounds unitCubeTransform
}

func (s *rescalingSink) AddInCorePoint(v pointio.Vertex) int {
	v.Position = s.bounds.fromUnit(v.Position)
	return s.inner.AddInCorePoint(v)
}

func (s *rescalingSink) AddOutOfCorePoint(v pointio.Vertex) int {
	v.Position = s.bounds.fromUnit(v.Position)
	return s.inner.AddOutOfCorePoint(v)
}

func (s *rescalingSink) AddPolygon(indices []int) error {
	return s.inner.AddPolygon(indices)
}

func (s *rescalingSink) InCorePoints(i int) pointio.Vertex {
	v := s.inner.InCorePoints(i)
	v.Position = s.bounds.toUnit(v.Position)
	return v
}

func (s *rescalingSink) InCorePointCount() int {
	return s.inner.InCorePointCount()
}
