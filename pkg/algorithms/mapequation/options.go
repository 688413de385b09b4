package mapequation

import (
	"runtime"

	"github.com/dd0wney/cluso-mapequation/pkg/logging"
	"github.com/dd0wney/cluso-mapequation/pkg/metrics"
	"github.com/dd0wney/cluso-mapequation/pkg/validation"
)

// Strategy selects how moves are evaluated and committed in parallel
type Strategy int

const (
	// StrategyNone runs a single worker that commits every move immediately
	StrategyNone Strategy = iota
	// StrategyRelaxMap evaluates against live statistics and commits under
	// per-cluster locks
	StrategyRelaxMap
	// StrategySynchronous evaluates against a frozen snapshot and applies all
	// moves of a pass in one aggregation step
	StrategySynchronous
)

// Defaults applied when an option is not given
const (
	DefaultMaxIterations = 32
	DefaultStrategy      = StrategyRelaxMap
)

// StrategyNames lists the recognized strategy tokens
var StrategyNames = []string{"none", "relaxmap", "synchronous"}

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(StrategyNames) {
		return "unknown"
	}
	return StrategyNames[s]
}

// ParseStrategy converts a token into a Strategy. Tokens are case sensitive.
func ParseStrategy(token string) (Strategy, error) {
	for i, name := range StrategyNames {
		if token == name {
			return Strategy(i), nil
		}
	}
	return 0, &ConfigError{Field: "strategy", Value: token, Cause: ErrInvalidStrategy}
}

type options struct {
	hierarchical  bool
	maxIterations int
	strategy      string
	workers       int
	diagnostics   bool
	logger        logging.Logger
	metrics       *metrics.Registry
}

// Option configures a LouvainMapEquation
type Option func(*options)

// WithHierarchical enables multilevel refinement
func WithHierarchical(enabled bool) Option {
	return func(o *options) { o.hierarchical = enabled }
}

// WithMaxIterations bounds the local moving passes per level. Non-positive
// values select DefaultMaxIterations.
func WithMaxIterations(n int) Option {
	return func(o *options) { o.maxIterations = n }
}

// WithStrategy selects the parallelization strategy by token. The token is
// checked by New.
func WithStrategy(token string) Option {
	return func(o *options) { o.strategy = token }
}

// WithWorkers sets the worker count of the parallel strategies. Non-positive
// values select GOMAXPROCS. StrategyNone always uses one worker.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithDiagnostics recomputes all statistics after every pass and fails the
// run on a mismatch. Also records the map equation after every pass.
func WithDiagnostics(enabled bool) Option {
	return func(o *options) { o.diagnostics = enabled }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics records run metrics in the given registry
func WithMetrics(registry *metrics.Registry) Option {
	return func(o *options) { o.metrics = registry }
}

func defaultOptions() options {
	return options{
		maxIterations: DefaultMaxIterations,
		strategy:      DefaultStrategy.String(),
		logger:        logging.NewNopLogger(),
	}
}

// resolve applies defaults and parses the strategy token
func (o *options) resolve() (Strategy, error) {
	strategy, err := ParseStrategy(o.strategy)
	if err != nil {
		return 0, err
	}

	o.maxIterations = validation.DefaultOrInt(o.maxIterations, DefaultMaxIterations)
	o.workers = validation.DefaultOrInt(o.workers, runtime.GOMAXPROCS(0))
	if strategy == StrategyNone {
		o.workers = 1
	}
	if o.logger == nil {
		o.logger = logging.NewNopLogger()
	}
	return strategy, nil
}
