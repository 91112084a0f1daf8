// Package solver implements the cascaded multigrid conjugate-gradient
// solve: ConjugateGradient drives a single depth's linear system, and
// SolveSubdomains solves the depths at or above cfg.SubdivideDepth as one
// system each and splits every deeper depth across independent subtrees.
// ConjugateGradient and its multiply are translated line-for-line from
// SparseSymmetricMatrix<T>::Solve and ::Multiply, with Notargets-gocfd's
// fork-join idiom (utils.PartitionMap + utils.ForkJoin) standing in for
// the source's raw pthread/OpenMP fan-out.
package solver

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/geoplusplus/poisson-reconstruction/utils"
)

// Matrix is the multiply surface ConjugateGradient needs. utils.CSR (built
// from operator.Laplacian's DOK via ToCSR) satisfies it.
type Matrix interface {
	Dims() (int, int)
	MulVec(out, in *mat.VecDense)
}

func rawOf(v *mat.VecDense) []float64 {
	return v.RawVector().Data
}

// multiply computes out = A*in, then, when addDCTerm is set, adds the same
// scalar dcTerm = mean(in) to every entry of out. addDCTerm compensates for
// the one-dimensional null space a pure-Neumann Laplacian has (constant
// vectors), the same correction SparseSymmetricMatrix<T>::Multiply applies
// via its addDCTerm flag before combining per-thread scratch.
func multiply(a Matrix, in, out *mat.VecDense, addDCTerm bool, pm *utils.PartitionMap) {
	a.MulVec(out, in)
	if !addDCTerm {
		return
	}
	n := in.Len()
	partials := make([]float64, pm.ParallelDegree)
	inData := rawOf(in)
	utils.ForkJoin(pm, func(bucket int) {
		begin, end := pm.Bucket(bucket)
		var s float64
		for i := begin; i < end; i++ {
			s += inData[i]
		}
		partials[bucket] = s
	})
	var total float64
	for _, s := range partials {
		total += s
	}
	dcTerm := total / float64(n)
	outData := rawOf(out)
	utils.ForkJoin(pm, func(bucket int) {
		begin, end := pm.Bucket(bucket)
		for i := begin; i < end; i++ {
			outData[i] += dcTerm
		}
	})
}

func dotParallel(pm *utils.PartitionMap, a, b []float64) float64 {
	partials := make([]float64, pm.ParallelDegree)
	utils.ForkJoin(pm, func(bucket int) {
		begin, end := pm.Bucket(bucket)
		var s float64
		for i := begin; i < end; i++ {
			s += a[i] * b[i]
		}
		partials[bucket] = s
	})
	var total float64
	for _, s := range partials {
		total += s
	}
	return total
}

// ConjugateGradient solves a*x = b in place over iters iterations or until
// the relative residual falls below eps, returning the iteration count
// actually run. It is SparseSymmetricMatrix<T>::Solve translated directly:
// eps is squared internally, reset controls whether x starts at zero (with
// r = b) or is refined from its current value (r = b - A*x), and every 50th
// iteration recomputes the residual from x directly rather than updating it
// incrementally, to bound floating-point drift. addDCTerm is forwarded to
// every matrix-vector product (see multiply).
func ConjugateGradient(a Matrix, b, x *mat.VecDense, iters int, eps float64, reset, addDCTerm bool, threads int) int {
	if threads < 1 {
		threads = 1
	}
	eps *= eps
	n, _ := a.Dims()
	pm := utils.NewPartitionMap(threads, n)

	r := mat.NewVecDense(n, nil)
	d := mat.NewVecDense(n, nil)
	q := mat.NewVecDense(n, nil)

	bData, xData, rData, dData, qData := rawOf(b), rawOf(x), rawOf(r), rawOf(d), rawOf(q)

	if reset {
		for i := range xData {
			xData[i] = 0
		}
		copy(rData, bData)
	} else {
		multiply(a, x, r, addDCTerm, pm)
		for i := range rData {
			rData[i] = bData[i] - rData[i]
		}
	}
	copy(dData, rData)

	deltaNew := dotParallel(pm, rData, rData)
	delta0 := deltaNew
	if deltaNew < eps {
		return 0
	}

	var ii int
	for ii = 0; ii < iters && deltaNew > eps*delta0; ii++ {
		multiply(a, d, q, addDCTerm, pm)
		dDotQ := dotParallel(pm, dData, qData)
		alpha := deltaNew / dDotQ
		deltaOld := deltaNew

		if ii%50 == 49 {
			utils.ForkJoin(pm, func(bucket int) {
				begin, end := pm.Bucket(bucket)
				for i := begin; i < end; i++ {
					xData[i] += dData[i] * alpha
				}
			})
			multiply(a, x, r, addDCTerm, pm)
			partials := make([]float64, pm.ParallelDegree)
			utils.ForkJoin(pm, func(bucket int) {
				begin, end := pm.Bucket(bucket)
				var s float64
				for i := begin; i < end; i++ {
					rData[i] = bData[i] - rData[i]
					s += rData[i] * rData[i]
					// Preserved from SparseMatrix.inl's restart branch: x is
					// advanced by d*alpha a second time here, on top of the
					// advance immediately above, so x ends one step ahead of
					// the r it was just recomputed from; later iterations do
					// not undo this extra step.
					xData[i] += dData[i] * alpha
				}
				partials[bucket] = s
			})
			deltaNew = 0
			for _, s := range partials {
				deltaNew += s
			}
		} else {
			partials := make([]float64, pm.ParallelDegree)
			utils.ForkJoin(pm, func(bucket int) {
				begin, end := pm.Bucket(bucket)
				var s float64
				for i := begin; i < end; i++ {
					rData[i] -= qData[i] * alpha
					s += rData[i] * rData[i]
				}
				partials[bucket] = s
			})
			deltaNew = 0
			for _, s := range partials {
				deltaNew += s
			}
			utils.ForkJoin(pm, func(bucket int) {
				begin, end := pm.Bucket(bucket)
				for i := begin; i < end; i++ {
					xData[i] += dData[i] * alpha
				}
			})
		}

		beta := deltaNew / deltaOld
		utils.ForkJoin(pm, func(bucket int) {
			begin, end := pm.Bucket(bucket)
			for i := begin; i < end; i++ {
				dData[i] = rData[i] + dData[i]*beta
			}
		})
	}
	return ii
}

// Residual returns ||b - A*x|| for diagnostics, not part of the hot solve
// loop; in this module only the tests call it.
func Residual(a Matrix, b, x *mat.VecDense) float64 {
	n, _ := a.Dims()
	r := mat.NewVecDense(n, nil)
	a.MulVec(r, x)
	var sum float64
	for i := 0; i < n; i++ {
		d := b.AtVec(i) - r.AtVec(i)
		sum += d * d
	}
	return math.Sqrt(sum)
}
