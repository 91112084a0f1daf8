package basis

import "math"

// Integrator memoizes dot(d,o1,o2,deriv1,deriv2,childParent) = integral of
// d^deriv1 phi_{d,o1} * d^deriv2 phi_{d',o2} dx, d' = d (childParent=false)
// or d-1 (childParent=true). Only a handful of (o1-o2) offsets
// are ever non-zero (the basis functions are compactly supported), so the
// memo table is keyed by the full tuple rather than precomputing a dense
// grid — this mirrors how Notargets-gocfd's utils/indexing.go keeps only
// the lookup machinery it needs (its Index type) rather than a generic
// N-d table.
type Integrator struct {
	Degree   int
	Boundary Type
	table    *Table
	memo     map[dotKey]float64
}

type dotKey struct {
	depth                int
	o1, o2               int32
	deriv1, deriv2       int
	childParent          bool
}

// NewIntegrator builds an integrator for the given degree and boundary type.
func NewIntegrator(degree int, boundary Type) *Integrator {
	return &Integrator{
		Degree:   degree,
		Boundary: boundary,
		table:    NewTable(degree),
		memo:     make(map[dotKey]float64),
	}
}

// Dot returns the pairwise integral described above. Results are memoized
// lazily on first request; the memo map has no lock, and every caller in
// this module (operator assembly) runs on a single goroutine.
func (in *Integrator) Dot(depth, o1, o2, deriv1, deriv2 int, childParent bool) float64 {
	key := dotKey{depth, int32(o1), int32(o2), deriv1, deriv2, childParent}
	if v, ok := in.memo[key]; ok {
		return v
	}
	v := in.computeDot(depth, o1, o2, deriv1, deriv2, childParent)
	in.memo[key] = v
	return v
}

// ValueAt evaluates phi_{depth,o}(x) directly, for callers (screening)
// that need the basis function's value at a scattered sample point
// rather than a pairwise integral.
func (in *Integrator) ValueAt(depth, o int, x float64) float64 {
	return in.eval(depth, o, 0, x)
}

// DerivAt evaluates phi_{depth,o}'(x), the companion to ValueAt for callers
// (gradient evaluation at iso-extraction edge roots) that need the 1D
// derivative rather than the value.
func (in *Integrator) DerivAt(depth, o int, x float64) float64 {
	return in.eval(depth, o, 1, x)
}

func (in *Integrator) computeDot(depth, o1, o2, deriv1, deriv2 int, childParent bool) float64 {
	d1, d2 := depth, depth
	if childParent {
		d2 = depth - 1
	}
	half := Support(in.Degree)
	lo1, hi1 := supportBounds(d1, o1, half)
	lo2, hi2 := supportBounds(d2, o2, half)
	lo := math.Max(lo1, lo2)
	hi := math.Min(hi1, hi2)
	if lo >= hi {
		return 0
	}
	f := func(x float64) float64 {
		return in.eval(d1, o1, deriv1, x) * in.eval(d2, o2, deriv2, x)
	}
	return compositeSimpson(f, lo, hi, simpsonSubdivisions(d1, d2))
}

func supportBounds(depth, o int, half float64) (lo, hi float64) {
	scale := math.Pow(2, -float64(depth))
	lo = (float64(o) - half) * scale
	hi = (float64(o) + half) * scale
	return
}

// eval evaluates d^deriv phi_{depth,o}(x), including the boundary
// reflection term when the basis function's support crosses x=0 or x=1 and
// Boundary != Free.
func (in *Integrator) eval(depth, o, deriv int, x float64) float64 {
	v := in.scaledEval(depth, o, deriv, x)
	if in.Boundary == Free {
		return v
	}
	half := Support(in.Degree)
	n := 1 << depth
	if float64(o)-half < 0 {
		mirror := -1 - o
		v += in.Boundary.ReflectSign() * in.scaledEval(depth, mirror, deriv, x)
	}
	if float64(o)+half > float64(n) {
		mirror := 2*n - 1 - o
		v += in.Boundary.ReflectSign() * in.scaledEval(depth, mirror, deriv, x)
	}
	return v
}

func (in *Integrator) scaledEval(depth, o, deriv int, x float64) float64 {
	scale := math.Pow(2, float64(depth))
	u := scale*x - float64(o)
	value, d1 := in.table.Eval(u)
	switch deriv {
	case 0:
		return value
	case 1:
		return scale * d1
	default:
		return 0
	}
}

func simpsonSubdivisions(d1, d2 int) int {
	// Enough subdivisions to resolve the finer depth's unit-width pieces;
	// the basis is piecewise polynomial with breakpoints at every integer
	// in u-space, so >= 8 Simpson panels per unit interval keeps the
	// quadrature error well under the 1e-8 symmetry tolerance targeted for
	// the low polynomial degrees this module handles.
	depth := d1
	if d2 > depth {
		depth = d2
	}
	_ = depth
	return 256
}

// compositeSimpson integrates f over [a,b] using n (even) equal panels.
func compositeSimpson(f func(float64) float64, a, b float64, n int) float64 {
	if n%2 != 0 {
		n++
	}
	h := (b - a) / float64(n)
	sum := f(a) + f(b)
	for i := 1; i < n; i++ {
		x := a + float64(i)*h
		if i%2 == 0 {
			sum += 2 * f(x)
		} else {
			sum += 4 * f(x)
		}
	}
	return sum * h / 3
}
