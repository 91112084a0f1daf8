package basis

// Type selects how the 1D basis functions behave at the domain boundary
// x=0 and x=1. Free applies no reflection at all (the domain is
// conceptually embedded in a larger padded cube); Dirichlet reflects the
// neighboring basis function across
// the boundary with a sign flip so the composite function is zero there;
// Neumann reflects without a sign flip so the composite function's
// derivative is zero there.
type Type uint8

const (
	Free Type = iota
	Dirichlet
	Neumann
)

func (t Type) String() string {
	switch t {
	case Free:
		return "free"
	case Dirichlet:
		return "dirichlet"
	case Neumann:
		return "neumann"
	default:
		return "unknown"
	}
}

// CornerValue is the up-sample boundary weight used when a child's
// coefficient at a domain edge has no real parental neighbor on the outside
// of the domain: 0.5 for Dirichlet, 1.0 for Neumann, 0.75 for Free.
func (t Type) CornerValue() float64 {
	switch t {
	case Dirichlet:
		return 0.5
	case Neumann:
		return 1.0
	default: // Free
		return 0.75
	}
}

// ReflectSign is +1 for Neumann (reflect without sign) and -1 for
// Dirichlet (reflect with sign flip). Free never reflects; callers must not
// invoke ReflectSign for Free.
func (t Type) ReflectSign() float64 {
	if t == Dirichlet {
		return -1
	}
	return 1
}
