package basis

import "math"

// boxSpline evaluates the degree-k uniform cardinal B-spline with support
// [0,k+1] at x, via the standard Cox-de Boor recursion for uniform knots:
//
//	B_0(x) = 1 on [0,1), 0 elsewhere
//	B_k(x) = (x/k)*B_{k-1}(x) + ((k+1-x)/k)*B_{k-1}(x-1)
//
// Degree is small (commonly 2) so the recursion is evaluated directly
// rather than memoized; callers hit it only while filling the dyadic
// sample Table below, never from the per-node assembly hot path.
func boxSpline(k int, x float64) float64 {
	if k == 0 {
		if x >= 0 && x < 1 {
			return 1
		}
		return 0
	}
	fk := float64(k)
	return (x/fk)*boxSpline(k-1, x) + ((fk+1-x)/fk)*boxSpline(k-1, x-1)
}

// boxSplineDerivative uses B_k'(x) = B_{k-1}(x) - B_{k-1}(x-1).
func boxSplineDerivative(k int, x float64) float64 {
	if k == 0 {
		return 0 // the degree-0 box function's derivative is a distribution; never queried here
	}
	return boxSpline(k-1, x) - boxSpline(k-1, x-1)
}

// Value evaluates the degree-D basis function centered on its support,
// i.e. phi(x) = B_D(x + (D+1)/2), support [-(D+1)/2, (D+1)/2].
func Value(degree int, x float64) float64 {
	half := float64(degree+1) / 2
	return boxSpline(degree, x+half)
}

// Derivative evaluates phi'(x) for the centered basis function.
func Derivative(degree int, x float64) float64 {
	half := float64(degree+1) / 2
	return boxSplineDerivative(degree, x+half)
}

// Support returns the half-width of the centered basis function's support:
// phi is zero outside [-Support(degree), Support(degree)].
func Support(degree int) float64 {
	return float64(degree+1) / 2
}

// Table precomputes phi and phi' on a dyadic grid. Samples per unit
// interval is fixed at a power of two so bilinear lookups never fall
// exactly between grid points except at evaluation time, matching the
// teacher's preference for flat precomputed slices over recomputing
// transcendental-free polynomials on every call.
type Table struct {
	Degree        int
	SamplesPerUnit int
	half           float64
	values         []float64 // indexed by sample, covering [-half,half]
	derivs         []float64
}

const defaultSamplesPerUnit = 1024

// NewTable builds the dyadic sample table for the given degree.
func NewTable(degree int) *Table {
	t := &Table{
		Degree:         degree,
		SamplesPerUnit: defaultSamplesPerUnit,
		half:           Support(degree),
	}
	n := int(2*t.half*float64(t.SamplesPerUnit)) + 1
	t.values = make([]float64, n)
	t.derivs = make([]float64, n)
	for i := 0; i < n; i++ {
		x := -t.half + float64(i)/float64(t.SamplesPerUnit)
		t.values[i] = Value(degree, x)
		t.derivs[i] = Derivative(degree, x)
	}
	return t
}

// Eval returns (phi(x), phi'(x)) by linear interpolation into the dyadic
// table, falling back to zero outside the support.
func (t *Table) Eval(x float64) (value, deriv float64) {
	if x <= -t.half || x >= t.half {
		return 0, 0
	}
	pos := (x + t.half) * float64(t.SamplesPerUnit)
	i0 := int(math.Floor(pos))
	if i0 < 0 {
		i0 = 0
	}
	if i0 >= len(t.values)-1 {
		i0 = len(t.values) - 2
	}
	frac := pos - float64(i0)
	value = t.values[i0]*(1-frac) + t.values[i0+1]*frac
	deriv = t.derivs[i0]*(1-frac) + t.derivs[i0+1]*frac
	return
}
