package utils

import "go.uber.org/zap"

// Kind is one of the four error kinds a reconstruction run can hit: input
// points outside bounds, numeric conditions outside the expected range,
// topology that could not be closed, and internal bookkeeping that should
// never be wrong if the rest of the pipeline is correct.
type Kind uint8

const (
	InputViolation Kind = iota
	NumericWarning
	TopologyWarning
	InternalAssertion
)

func (k Kind) String() string {
	switch k {
	case InputViolation:
		return "input-violation"
	case NumericWarning:
		return "numeric-warning"
	case TopologyWarning:
		return "topology-warning"
	case InternalAssertion:
		return "internal-assertion"
	default:
		return "unknown"
	}
}

// Report logs msg at the severity implied by kind. InputViolation,
// NumericWarning and TopologyWarning are never fatal — the caller is
// expected to skip the offending point/edge/loop and continue, so the
// pipeline always produces a mesh even if partially incomplete.
// InternalAssertion logs and panics: it indicates a programming error,
// not a data condition.
func Report(log *zap.Logger, kind Kind, msg string, fields ...zap.Field) {
	if log == nil {
		log = zap.NewNop()
	}
	all := append([]zap.Field{zap.String("kind", kind.String())}, fields...)
	switch kind {
	case InternalAssertion:
		log.Panic(msg, all...)
	default:
		log.Warn(msg, all...)
	}
}
