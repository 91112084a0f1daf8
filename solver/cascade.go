package solver

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/geoplusplus/poisson-reconstruction/basis"
	"github.com/geoplusplus/poisson-reconstruction/config"
	"github.com/geoplusplus/poisson-reconstruction/octree"
	"github.com/geoplusplus/poisson-reconstruction/operator"
	"github.com/geoplusplus/poisson-reconstruction/utils"
)

// blockMatrix restricts a larger Matrix to the square principal submatrix
// indexed by members: MulVec embeds its input at those global indices,
// multiplies with the parent, and reads the result back out at the same
// indices. Couplings into rows outside members are never summed in (the
// embedded input is zero there), which is exact for a depth-local range
// (same-depth stencils never reach another depth) and is a deliberate
// block-Jacobi approximation for a subdomain group (a fine node just
// inside one subdomain can still stencil-touch a neighbor just inside
// another; that coupling is dropped here on the assumption the coarser
// cascade level already fixed the boundary between them).
type blockMatrix struct {
	parent  Matrix
	members []int32
}

func rangeMembers(start, end int32) []int32 {
	m := make([]int32, end-start)
	for i := range m {
		m[i] = start + int32(i)
	}
	return m
}

func (b blockMatrix) Dims() (int, int) {
	return len(b.members), len(b.members)
}

func (b blockMatrix) MulVec(out, in *mat.VecDense) {
	n, _ := b.parent.Dims()
	full := mat.NewVecDense(n, nil)
	for li, gi := range b.members {
		full.SetVec(int(gi), in.AtVec(li))
	}
	fullOut := mat.NewVecDense(n, nil)
	b.parent.MulVec(fullOut, full)
	for li, gi := range b.members {
		out.SetVec(li, fullOut.AtVec(int(gi)))
	}
}

func solveIters(cfg config.PoissonConfig, n int) int {
	if cfg.FixedIters >= 0 {
		return cfg.FixedIters
	}
	if n < cfg.MinIters {
		return cfg.MinIters
	}
	return n
}

// Cascade runs the multigrid solve depth by depth, from cfg.MinDepth
// through cfg.EffectiveMaxSolveDepth(): at each depth it assembles the
// Laplacian, the divergence right-hand side, and (when
// cfg.ScreeningEnabled) the Tikhonov screening correction, seeds the
// unknowns from the coarser depth's already-solved coefficients via
// operator.UpSampleCoefficients, and hands the resulting depth-local
// system to SolveSubdomains. Solved coefficients are written back onto
// tree.Nodes[i].Solution and returned dense-indexed by sorted so the
// caller can seed the next depth or feed isosurface extraction directly.
func Cascade(tree *octree.Tree, sorted octree.SortedIndex, cfg config.PoissonConfig, integrator *basis.Integrator, log *zap.Logger) []float64 {
	if log == nil {
		log = zap.NewNop()
	}
	n := int(sorted.Count())
	coefficients := make([]float64, n)

	maxDepth := uint8(cfg.EffectiveMaxSolveDepth())
	for depth := uint8(cfg.MinDepth); depth <= maxDepth; depth++ {
		start, end := sorted.NodesAtDepth(depth)
		if start == end {
			continue
		}
		operator.UpSampleCoefficients(tree, sorted, depth, cfg, coefficients)

		lap := operator.Laplacian(tree, sorted, depth, integrator)
		operator.AddScreening(tree, sorted, depth, cfg, integrator, lap)
		rhs := operator.Divergence(tree, sorted, depth, integrator)
		csr := lap.ToCSR()

		localN := int(end - start)
		localB := mat.NewVecDense(localN, nil)
		localX := mat.NewVecDense(localN, nil)
		for i := 0; i < localN; i++ {
			localB.SetVec(i, rhs.AtVec(int(start)+i))
			localX.SetVec(i, coefficients[int(start)+i])
		}
		localA := blockMatrix{parent: csr, members: rangeMembers(start, end)}

		iters := SolveSubdomains(tree, sorted, cfg, depth, localA, localB, localX)
		utils.Report(log, utils.NumericWarning, "depth solve",
			zap.Uint8("depth", depth), zap.Int("n", localN), zap.Int("iters", iters))

		for i := 0; i < localN; i++ {
			v := localX.AtVec(i)
			coefficients[int(start)+i] = v
			tree.Nodes[sorted.Order[int(start)+i]].Solution = v
		}
	}
	return coefficients
}

// SolveSubdomains solves localA*localX = localB for depth, in place on
// localX. At or below cfg.SubdivideDepth the depth's system is solved
// whole, as one ConjugateGradient call, since the cascade only starts
// splitting work into independent subdomains once a depth has enough
// nodes to make that worthwhile. Beyond SubdivideDepth, depth's nodes are
// grouped by the offset of their ancestor at depth SubdivideDepth and each
// group's
// restricted system is solved concurrently, bounded to cfg.Threads
// simultaneous solves by a buffered semaphore — a worker-count-bounded
// goroutine-per-partition shape for domain-decomposed solves. It returns
// the total CG iteration count spent (summed across subdomains when
// split).
func SolveSubdomains(tree *octree.Tree, sorted octree.SortedIndex, cfg config.PoissonConfig, depth uint8, localA Matrix, localB, localX *mat.VecDense) int {
	// A pure Neumann Laplacian with no screening term has a one-dimensional
	// null space (constant functions); addDCTerm adds the input's mean to
	// every entry of each matrix-vector product of the whole-depth solve
	// below, which lifts that mode so the solve still converges. Screening
	// adds a diagonally-dominant mass term that already breaks the null
	// space, so the correction is only needed without it. The per-subdomain
	// solves run without it.
	addDC := cfg.BoundaryType == config.BoundaryNeumann && !cfg.ScreeningEnabled()

	if int(depth) <= cfg.SubdivideDepth {
		n, _ := localA.Dims()
		return ConjugateGradient(localA, localB, localX, solveIters(cfg, n), cfg.Accuracy, false, addDC, cfg.Threads)
	}

	groups := partitionBySubdomain(tree, sorted, depth, cfg.SubdivideDepth)

	threads := cfg.Threads
	if threads < 1 {
		threads = 1
	}
	sem := make(chan struct{}, threads)
	var wg sync.WaitGroup
	var totalIters int32

	for _, group := range groups {
		group := group
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			n := len(group)
			subB := mat.NewVecDense(n, nil)
			subX := mat.NewVecDense(n, nil)
			for li, gi := range group {
				subB.SetVec(li, localB.AtVec(int(gi)))
				subX.SetVec(li, localX.AtVec(int(gi)))
			}
			subA := blockMatrix{parent: localA, members: group}
			iters := ConjugateGradient(subA, subB, subX, solveIters(cfg, n), cfg.Accuracy, false, false, 1)
			atomic.AddInt32(&totalIters, int32(iters))
			for li, gi := range group {
				localX.SetVec(int(gi), subX.AtVec(li))
			}
		}()
	}
	wg.Wait()
	return int(totalIters)
}

// partitionBySubdomain groups depth's nodes (as indices local to that
// depth's [0,localN) range, matching localA's indexing) by the offset of
// their ancestor at the fixed depth subdivideDepth, so each group is exactly
// the set of depth-d descendants of one depth-subdivideDepth node. The
// subdomain roots stay at that depth for every solved depth; they do not
// move deeper as depth grows, so every split depth has the same number of
// groups.
func partitionBySubdomain(tree *octree.Tree, sorted octree.SortedIndex, depth uint8, subdivideDepth int) [][]int32 {
	start, end := sorted.NodesAtDepth(depth)
	shift := uint(int(depth) - subdivideDepth)
	groups := make(map[[3]uint32][]int32)
	for i := start; i < end; i++ {
		node := tree.Nodes[sorted.Order[i]]
		key := [3]uint32{node.Offset[0] >> shift, node.Offset[1] >> shift, node.Offset[2] >> shift}
		groups[key] = append(groups[key], i-start)
	}
	out := make([][]int32, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	return out
}
