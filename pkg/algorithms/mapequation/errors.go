package mapequation

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-mapequation/pkg/algorithms"
)

var (
	// ErrInvalidStrategy is returned for an unrecognized parallelization token
	ErrInvalidStrategy = errors.New("invalid parallelization strategy")

	// ErrNilGraph is returned when no input graph is given
	ErrNilGraph = errors.New("graph is nil")

	// ErrNotRun is returned when the partition is requested before Run finished
	ErrNotRun = algorithms.ErrNotRun

	// ErrAlreadyRun is returned by a second call to Run
	ErrAlreadyRun = errors.New("optimizer has already run")

	// ErrInconsistentStatistics is returned in diagnostic mode when the
	// incrementally maintained statistics disagree with a recomputation
	ErrInconsistentStatistics = errors.New("incremental statistics diverged from recomputation")
)

// ConfigError reports an invalid construction parameter
type ConfigError struct {
	Field string
	Value string
	Cause error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Cause)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

const quantityCutExceedsVolume = "cut>volume"

// VerificationError describes the first statistic found inconsistent by the
// diagnostic verification pass
type VerificationError struct {
	Level    int
	Pass     int
	Quantity string // "cut", "volume", "totalCut", "totalVolume" or "cut>volume"
	Cluster  uint64
	Got      float64
	Want     float64
}

func (e *VerificationError) Error() string {
	switch e.Quantity {
	case "totalCut", "totalVolume":
		return fmt.Sprintf("level %d pass %d: %s is %g, recomputed %g",
			e.Level, e.Pass, e.Quantity, e.Got, e.Want)
	case quantityCutExceedsVolume:
		return fmt.Sprintf("level %d pass %d: cut %g of cluster %d exceeds its volume %g",
			e.Level, e.Pass, e.Got, e.Cluster, e.Want)
	default:
		return fmt.Sprintf("level %d pass %d: %s of cluster %d is %g, recomputed %g",
			e.Level, e.Pass, e.Quantity, e.Cluster, e.Got, e.Want)
	}
}

func (e *VerificationError) Unwrap() error {
	return ErrInconsistentStatistics
}
