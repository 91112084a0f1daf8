package utils

import (
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// DOK and CSR are thin wrappers around github.com/james-bowman/sparse's
// matrix types, trimmed from Notargets-gocfd/utils/sparse.go down to the
// operations the operator package actually needs: scatter assembly into a
// DOK during the single-goroutine row-fill phase, then a single ToCSR conversion
// before the matrix is handed to the solver. Both satisfy gonum's
// mat.Matrix read interface so diagnostics (operator.CSRNorm) can treat
// either representation uniformly.
type DOK struct {
	M *sparse.DOK
}

func NewDOK(n int) DOK {
	return DOK{M: sparse.NewDOK(n, n)}
}

func (d DOK) Dims() (r, c int)    { return d.M.Dims() }
func (d DOK) At(i, j int) float64 { return d.M.At(i, j) }
func (d DOK) T() mat.Matrix       { return mat.Transpose{Matrix: d} }

// Add accumulates value into (i,j), used when two workers' scatter targets
// can legitimately collide (screening contributions from overlapping
// basis supports); sparse.DOK.Set overwrites, so callers that need
// accumulation read-modify-write under the row's owning worker instead of
// calling Add from multiple goroutines concurrently — DOK is not
// goroutine-safe.
func (d DOK) Add(i, j int, v float64) {
	d.M.Set(i, j, d.M.At(i, j)+v)
}

func (d DOK) Set(i, j int, v float64) { d.M.Set(i, j, v) }

func (d DOK) ToCSR() CSR { return CSR{M: d.M.ToCSR()} }

type CSR struct {
	M *sparse.CSR
}

func (c CSR) Dims() (r, c2 int)    { return c.M.Dims() }
func (c CSR) At(i, j int) float64 { return c.M.At(i, j) }
func (c CSR) T() mat.Matrix       { return mat.Transpose{Matrix: c} }

// MulVec computes out = M*in using the underlying sparse matrix's native
// multiply, on a single goroutine. Every solve in this module, whole-depth
// and sub-domain alike, multiplies through this method; there is no
// separate parallel symmetric multiply.
func (c CSR) MulVec(out, in *mat.VecDense) {
	out.MulVec(c.M, in)
}
