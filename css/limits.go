package css

import (
	"go.uber.org/zap"

	"github.com/google/uuid"
)

// Limits bounds the resource usage of Extend/Weave per spec.md §5's
// cancellation clause: implementations may impose a maximum expansion
// size and abort with a dedicated error kind.
type Limits struct {
	// MaxExpansionSize caps the number of alternatives a single Weave
	// call may produce. Zero means unlimited.
	MaxExpansionSize int
	// MaxExtendDepth caps the recursive-extension chase depth used for
	// cycle detection. Zero falls back to defaultExtendMaxDepth.
	MaxExtendDepth int
}

// DefaultLimits returns the limits applied when an ExtendMap carries
// none: unlimited expansion size, the built-in extend-depth bound.
func DefaultLimits() Limits {
	return Limits{MaxExtendDepth: defaultExtendMaxDepth}
}

func (l Limits) extendMaxDepth() int {
	if l.MaxExtendDepth > 0 {
		return l.MaxExtendDepth
	}
	return defaultExtendMaxDepth
}

// SetLimits attaches resource limits to m, consulted by Extend and by
// WeaveTraced.
func (m *ExtendMap) SetLimits(limits Limits) { m.limits = limits }

// WeaveTraced wraps Weave with a per-call github.com/google/uuid trace
// id logged at debug level, and enforces limits.MaxExpansionSize against
// the produced alternative count, per spec.md §5's "safe to invoke from
// many threads" and "dedicated error kind" clauses.
func WeaveTraced(path [][]SequenceMember, limits Limits, log *zap.Logger) ([][]SequenceMember, error) {
	if log == nil {
		log = zap.NewNop()
	}
	callID := uuid.New().String()
	if ce := log.Check(zap.DebugLevel, "weave starting"); ce != nil {
		ce.Write(zap.String("call_id", callID), zap.Int("path_len", len(path)), zap.String("path", renderPathTree(path)))
	}

	result := Weave(path)

	if limits.MaxExpansionSize > 0 && len(result) > limits.MaxExpansionSize {
		log.Debug("weave exceeded expansion limit",
			zap.String("call_id", callID),
			zap.Int("limit", limits.MaxExpansionSize),
			zap.Int("got", len(result)))
		return nil, &ExpansionTooLargeError{Limit: limits.MaxExpansionSize, Got: len(result), What: "weave"}
	}

	log.Debug("weave finished", zap.String("call_id", callID), zap.Int("alternatives", len(result)))
	return result, nil
}
