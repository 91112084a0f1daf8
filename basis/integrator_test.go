package basis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDotSymmetric(t *testing.T) {
	for _, bt := range []Type{Free, Dirichlet, Neumann} {
		in := NewIntegrator(2, bt)
		depth := 3
		n := 1 << depth
		for o1 := 0; o1 < n; o1++ {
			for o2 := 0; o2 < n; o2++ {
				for _, dv := range [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}} {
					a := in.Dot(depth, o1, o2, dv[0], dv[1], false)
					b := in.Dot(depth, o2, o1, dv[1], dv[0], false)
					assert.InDelta(t, a, b, 1e-8, "boundary=%v o1=%d o2=%d deriv=%v", bt, o1, o2, dv)
				}
			}
		}
	}
}

func TestDotZeroBeyondSupport(t *testing.T) {
	in := NewIntegrator(2, Free)
	depth := 4
	v := in.Dot(depth, 0, 10, 0, 0, false)
	assert.Equal(t, 0.0, v)
}

func TestValueTableMatchesClosedForm(t *testing.T) {
	tbl := NewTable(2)
	for _, x := range []float64{-1.5, -1.0, -0.3, 0, 0.3, 1.0, 1.49} {
		got, _ := tbl.Eval(x)
		want := Value(2, x)
		assert.InDelta(t, want, got, 1e-3)
	}
}
