package isosurface

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/geoplusplus/poisson-reconstruction/basis"
	"github.com/geoplusplus/poisson-reconstruction/config"
	"github.com/geoplusplus/poisson-reconstruction/octree"
	"github.com/geoplusplus/poisson-reconstruction/operator"
	"github.com/geoplusplus/poisson-reconstruction/pointio"
	"github.com/geoplusplus/poisson-reconstruction/shared"
	"github.com/geoplusplus/poisson-reconstruction/utils"
)

const fullCornerMask int32 = 0xFF

func toInt64(o octree.Offset) [3]int64 {
	return [3]int64{int64(o[0]), int64(o[1]), int64(o[2])}
}

func lerp(a, b [3]float64, t float64) r3.Vec {
	return r3.Vec{
		X: a[0] + (b[0]-a[0])*t,
		Y: a[1] + (b[1]-a[1])*t,
		Z: a[2] + (b[2]-a[2])*t,
	}
}

// edgeRoot computes the Hermite (or linear) root along edge e of leafIdx's
// cube and adds the resulting vertex to sink, returning its in-core index.
func edgeRoot(tree *octree.Tree, integrator *basis.Integrator, coefficients []float64, leafIdx int32, e, c0, c1 int, v0, v1, isoValue float64, cfg config.PoissonConfig, sink pointio.MeshSink) int {
	node := tree.Nodes[leafIdx]
	axis := shared.EdgeAxis(e)
	p0 := cornerWorldPos(node.Depth, node.Offset, c0)
	p1 := cornerWorldPos(node.Depth, node.Offset, c1)
	g0 := operator.FieldGradient(tree, integrator, coefficients, leafIdx, p0)[axis]
	g1 := operator.FieldGradient(tree, integrator, coefficients, leafIdx, p1)[axis]

	t := hermiteRoot(v0, v1, g0, g1, isoValue, cfg.NonLinearFit)
	return sink.AddInCorePoint(pointio.Vertex{Position: lerp(p0, p1, t)})
}

func triangleArea(a, b, c r3.Vec) float64 {
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
}

// triangulateMinAreaFan fans the loop from whichever vertex minimizes the
// sum of the resulting triangles' areas, the "minimum-area algorithm" for
// closing loops longer than a triangle.
func triangulateMinAreaFan(sink pointio.MeshSink, loop []int) error {
	n := len(loop)
	positions := make([]r3.Vec, n)
	for i, idx := range loop {
		positions[i] = sink.InCorePoints(idx).Position
	}
	best, bestArea := 0, math.Inf(1)
	for apex := 0; apex < n; apex++ {
		var total float64
		for k := 1; k < n-1; k++ {
			total += triangleArea(positions[apex], positions[(apex+k)%n], positions[(apex+k+1)%n])
		}
		if total < bestArea {
			bestArea, best = total, apex
		}
	}
	for k := 1; k < n-1; k++ {
		tri := []int{loop[best], loop[(best+k)%n], loop[(best+k+1)%n]}
		if err := sink.AddPolygon(tri); err != nil {
			return err
		}
	}
	return nil
}

// triangulateBarycenterFan adds a new vertex at the loop's barycenter and
// fans every edge to it, used when cfg.AddBarycenter is set instead of the
// minimum-area fan.
func triangulateBarycenterFan(sink pointio.MeshSink, loop []int) error {
	var sum r3.Vec
	for _, idx := range loop {
		sum = r3.Add(sum, sink.InCorePoints(idx).Position)
	}
	center := r3.Scale(1/float64(len(loop)), sum)
	centerIdx := sink.AddInCorePoint(pointio.Vertex{Position: center})
	for i := range loop {
		tri := []int{centerIdx, loop[i], loop[(i+1)%len(loop)]}
		if err := sink.AddPolygon(tri); err != nil {
			return err
		}
	}
	return nil
}

// emitLoop triangulates a closed vertex loop (dropping anything shorter
// than a triangle), unless cfg.PolygonMesh is set, in which case the loop
// is kept as a single polygon face.
func emitLoop(sink pointio.MeshSink, loop []int, cfg config.PoissonConfig) error {
	if len(loop) < 3 {
		return nil
	}
	if cfg.PolygonMesh {
		return sink.AddPolygon(loop)
	}
	if len(loop) == 3 {
		return sink.AddPolygon(loop)
	}
	if cfg.AddBarycenter {
		return triangulateBarycenterFan(sink, loop)
	}
	return triangulateMinAreaFan(sink, loop)
}

func indexOfEdge(edges [4]int, e int) int {
	for i, v := range edges {
		if v == e {
			return i
		}
	}
	return -1
}

// leafEdgeData is leafIdx's 8 corner values against isoValue and the
// in-core vertex index of every one of its 12 edges that crosses isoValue,
// keyed by cube-local edge number.
type leafEdgeData struct {
	cornerVals  [8]float64
	localVertex map[int]int
}

// extractContext bundles the state ExtractMesh threads through every leaf
// and every cross-depth face delegation: the shared corner/edge id tables
// and vertex caches (so a corner or edge touched by several cells, at the
// same depth or across a resolution boundary, is only evaluated once), plus
// a per-leaf cache of computed corner values and edge roots so a leaf
// visited as a delegation target is not re-evaluated when the sweep
// reaches it directly.
type extractContext struct {
	tree         *octree.Tree
	integrator   *basis.Integrator
	coefficients []float64
	tables       *shared.Tables
	valueCache   map[int32]float64
	edgeVertex   map[int32]int
	leafCache    map[int32]leafEdgeData
	sink         pointio.MeshSink
	cfg          config.PoissonConfig
	isoValue     float64
	log          *zap.Logger
}

// leafData returns leafIdx's corner values and edge roots, computing and
// caching them on first use.
func (ctx *extractContext) leafData(leafIdx int32) leafEdgeData {
	if d, ok := ctx.leafCache[leafIdx]; ok {
		return d
	}
	node := ctx.tree.Nodes[leafIdx]
	_, cornerVals := ComputeMCIndex(ctx.tree, ctx.integrator, ctx.coefficients, ctx.tables, ctx.valueCache, leafIdx, ctx.isoValue)

	localVertex := make(map[int]int, 12)
	for e := 0; e < 12; e++ {
		c0, c1 := shared.EdgeCorners(e)
		neg0 := cornerVals[c0] < ctx.isoValue
		neg1 := cornerVals[c1] < ctx.isoValue
		if neg0 == neg1 {
			continue
		}
		globalID := ctx.tables.EdgeIndex(node.Depth, node.Offset, e)
		v, ok := ctx.edgeVertex[globalID]
		if !ok {
			v = edgeRoot(ctx.tree, ctx.integrator, ctx.coefficients, leafIdx, e, c0, c1, cornerVals[c0], cornerVals[c1], ctx.isoValue, ctx.cfg, ctx.sink)
			ctx.edgeVertex[globalID] = v
		}
		localVertex[e] = v
	}

	d := leafEdgeData{cornerVals: cornerVals, localVertex: localVertex}
	ctx.leafCache[leafIdx] = d
	return d
}

// pairFaceEdges connects the two active edges at face-local positions iA
// and iB into a directed half-edge, oriented by the corner right after iA
// in the face's cyclic walk so the same inside/outside convention holds
// regardless of which pair of the face's edges is active.
func pairFaceEdges(f, iA, iB int, cornerVals [8]float64, isoValue float64, localVertex map[int]int, next map[int]int) {
	fe := shared.FaceEdges[f]
	fc := shared.FaceCorners[f]
	from, to := localVertex[fe[iA]], localVertex[fe[iB]]
	after := fc[(iA+1)%4]
	if cornerVals[after] >= isoValue {
		from, to = to, from
	}
	next[from] = to
}

// cornerFacePairs computes face f's marching-cubes connectivity directly
// from data's own corner signs: 0 active edges means the face is flat, 2
// means the standard single crossing, and 4 is the ambiguous saddle case,
// resolved by the usual asymptotic decider — the bilinear interpolant's
// value at its saddle point, compared against isoValue, decides whether the
// two diagonal corners at face-local position 0 and 2 are joined through
// the face (the segments then cut off corners 1 and 3) or separated (the
// segments cut off corners 0 and 2).
func cornerFacePairs(data leafEdgeData, f int, isoValue float64, next map[int]int) {
	var active []int
	for _, e := range shared.FaceEdges[f] {
		if _, ok := data.localVertex[e]; ok {
			active = append(active, e)
		}
	}
	switch len(active) {
	case 0:
		return
	case 2:
		i0 := indexOfEdge(shared.FaceEdges[f], active[0])
		i1 := indexOfEdge(shared.FaceEdges[f], active[1])
		pairFaceEdges(f, i0, i1, data.cornerVals, isoValue, data.localVertex, next)
	case 4:
		fc := shared.FaceCorners[f]
		v0, v1, v2, v3 := data.cornerVals[fc[0]], data.cornerVals[fc[1]], data.cornerVals[fc[2]], data.cornerVals[fc[3]]
		denom := v0 - v1 + v2 - v3
		center := isoValue
		if denom != 0 {
			center = (v0*v2 - v1*v3) / denom
		}
		if (center < isoValue) != (v0 < isoValue) {
			pairFaceEdges(f, 0, 3, data.cornerVals, isoValue, data.localVertex, next)
			pairFaceEdges(f, 1, 2, data.cornerVals, isoValue, data.localVertex, next)
		} else {
			pairFaceEdges(f, 0, 1, data.cornerVals, isoValue, data.localVertex, next)
			pairFaceEdges(f, 2, 3, data.cornerVals, isoValue, data.localVertex, next)
		}
	}
}

// childSlotsOnFace returns the 4 of a cube's 8 children (in the bit0=+x,
// bit1=+y, bit2=+z numbering ChildOffset uses) that lie against face f —
// those whose f's axis bit equals f's side.
func childSlotsOnFace(f int) []int {
	axis := uint(f / 2)
	side := int32(f % 2)
	out := make([]int, 0, 4)
	for c := 0; c < 8; c++ {
		if (int32(c)>>axis)&1 == side {
			out = append(out, c)
		}
	}
	return out
}

// delegatedFacePairs gathers face f's connectivity from nodeIdx's own
// subtree: a leaf contributes its corner-based pairs directly, a
// subdivided node recurses into whichever of its children lie against f.
// This is how a coarse leaf's face that borders a finer neighbor picks up
// that neighbor's actual crossings instead of guessing from its own, much
// coarser, corner samples — the cross-depth face delegation a multi-depth
// extraction needs for topologically consistent edge sharing across
// resolutions.
func delegatedFacePairs(ctx *extractContext, nodeIdx int32, f int, next map[int]int) {
	node := ctx.tree.Nodes[nodeIdx]
	if node.FirstChild < 0 {
		cornerFacePairs(ctx.leafData(nodeIdx), f, ctx.isoValue, next)
		return
	}
	for _, slot := range childSlotsOnFace(f) {
		delegatedFacePairs(ctx, node.FirstChild+int32(slot), f, next)
	}
}

// facePairs computes leafIdx's connectivity across face f. If the
// same-depth neighbor across f does not exist (a domain boundary, or a
// finer leaf sitting against a coarser, not-yet-subdivided region) or is
// itself a leaf, this is the ordinary uniform-resolution case and the face
// is resolved from leafIdx's own corners. If the neighbor is subdivided and
// its propagated corner-sign mask (Node.MCIndex, written by
// propagateMCIndex) shows a genuine mix of inside/outside rather than a
// uniform block, leafIdx delegates the face to that neighbor's finer
// structure instead of its own coarse approximation of it.
func facePairs(ctx *extractContext, leafIdx int32, f int, next map[int]int) {
	node := ctx.tree.Nodes[leafIdx]
	axis := f / 2
	var delta [3]int
	if f%2 == 0 {
		delta[axis] = -1
	} else {
		delta[axis] = 1
	}
	nIdx, ok := ctx.tree.FindByOffset(node.Depth, octree.NeighborOffset(toInt64(node.Offset), delta))
	if ok {
		nNode := ctx.tree.Nodes[nIdx]
		if nNode.FirstChild >= 0 && nNode.MCIndex != 0 && nNode.MCIndex != fullCornerMask {
			opposite := f ^ 1
			for _, slot := range childSlotsOnFace(opposite) {
				delegatedFacePairs(ctx, nNode.FirstChild+int32(slot), opposite, next)
			}
			return
		}
	}
	cornerFacePairs(ctx.leafData(leafIdx), f, ctx.isoValue, next)
}

// extractLeafFaces assembles leafIdx's 6 faces into directed half-edges
// (delegating to finer neighbors per facePairs where needed), chains them
// into closed loops, and hands each to emitLoop.
func extractLeafFaces(ctx *extractContext, leafIdx int32) {
	next := make(map[int]int, 6)
	for f := 0; f < 6; f++ {
		facePairs(ctx, leafIdx, f, next)
	}

	visited := make(map[int]bool, len(next))
	for start := range next {
		if visited[start] {
			continue
		}
		var loop []int
		cur := start
		for !visited[cur] {
			visited[cur] = true
			loop = append(loop, cur)
			nxt, ok := next[cur]
			if !ok {
				break
			}
			cur = nxt
		}
		if cur != start {
			utils.Report(ctx.log, utils.TopologyWarning, "half-edge loop did not close",
				zap.Int("length", len(loop)), zap.Int32("node", leafIdx))
			continue
		}
		if err := emitLoop(ctx.sink, loop, ctx.cfg); err != nil {
			utils.Report(ctx.log, utils.TopologyWarning, "failed to emit polygon", zap.Error(err))
		}
	}
}

// ExtractMesh walks every leaf at every depth, finest first, and emits its
// iso-surface contribution into sink, using cfg.IsoValue when set or
// ComputeIsoValue otherwise. Processing finest-first ensures a coarser
// leaf's cross-depth face delegation (see facePairs) always sees its finer
// neighbors' propagated corner signs already computed. coefficients is the
// solved field, dense-indexed by sorted (solver.Cascade's return value).
func ExtractMesh(tree *octree.Tree, sorted octree.SortedIndex, cfg config.PoissonConfig, integrator *basis.Integrator, coefficients []float64, sink pointio.MeshSink, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	isoValue := 0.0
	if cfg.IsoValue != nil {
		isoValue = *cfg.IsoValue
	} else {
		isoValue = ComputeIsoValue(tree, sorted, integrator, coefficients, cfg.BoundaryType)
	}

	ctx := &extractContext{
		tree:         tree,
		integrator:   integrator,
		coefficients: coefficients,
		tables:       shared.NewTables(),
		valueCache:   make(map[int32]float64),
		edgeVertex:   make(map[int32]int),
		leafCache:    make(map[int32]leafEdgeData),
		sink:         sink,
		cfg:          cfg,
		isoValue:     isoValue,
		log:          log,
	}

	maxDepth := len(sorted.DepthStart) - 2
	for d := maxDepth; d >= 0; d-- {
		depth := uint8(d)
		start, end := sorted.NodesAtDepth(depth)
		for i := start; i < end; i++ {
			idx := sorted.Order[i]
			if !tree.Nodes[idx].IsLeaf() {
				continue
			}
			extractLeafFaces(ctx, idx)
		}
	}
}
