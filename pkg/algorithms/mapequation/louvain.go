// Package mapequation detects communities by minimizing the map equation with
// Louvain-style local moving.
//
// The map equation measures the description length of a random walk on the
// graph under a partition; lower is better. Starting from singletons, nodes
// move to the neighboring cluster that lowers the codelength most until a pass
// moves nothing. With hierarchical refinement the clusters are contracted into
// a coarser graph that is optimized again, repeatedly.
//
// Three strategies control parallel execution:
//
//	none         one worker, moves applied immediately, deterministic
//	relaxmap     workers read live statistics, commits take two cluster locks
//	synchronous  workers read a frozen snapshot, moves applied after a barrier
package mapequation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-mapequation/pkg/algorithms"
	"github.com/dd0wney/cluso-mapequation/pkg/graph"
	"github.com/dd0wney/cluso-mapequation/pkg/logging"
	"github.com/dd0wney/cluso-mapequation/pkg/metrics"
	"github.com/dd0wney/cluso-mapequation/pkg/parallel"
	"github.com/dd0wney/cluso-mapequation/pkg/partition"
)

var _ algorithms.CommunityDetector = (*LouvainMapEquation)(nil)

// RunStats describes a finished run
type RunStats struct {
	RunID       string
	Strategy    Strategy
	Workers     int
	Levels      []LevelStats
	Clusters    int
	MapEquation float64
	Duration    time.Duration
}

// LouvainMapEquation is a single-use community detector
type LouvainMapEquation struct {
	graph    *graph.Graph
	opts     options
	strategy Strategy

	started   bool
	finished  bool
	partition *partition.Partition
	stats     RunStats
}

// New validates the options and binds an optimizer to g. An unknown strategy
// token fails here with a *ConfigError, before any computation.
func New(g *graph.Graph, opts ...Option) (*LouvainMapEquation, error) {
	if g == nil {
		return nil, ErrNilGraph
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	strategy, err := o.resolve()
	if err != nil {
		return nil, err
	}

	return &LouvainMapEquation{
		graph:    g,
		opts:     o,
		strategy: strategy,
	}, nil
}

// Run executes the optimization. It may be called once; a cancelled context
// is noticed at the next pass boundary and returned.
func (l *LouvainMapEquation) Run(ctx context.Context) error {
	if l.started {
		return ErrAlreadyRun
	}
	l.started = true

	runID := uuid.NewString()
	log := l.opts.logger.With(
		logging.Component("mapequation"),
		logging.RunID(runID),
		logging.Strategy(l.strategy.String()),
	)
	timer := logging.StartTimer(log, "run finished")
	log.Info("run started",
		logging.Nodes(l.graph.NumberOfNodes()),
		logging.Bool("hierarchical", l.opts.hierarchical),
		logging.Int("workers", l.opts.workers),
	)

	var pool *parallel.WorkerPool
	if l.strategy != StrategyNone {
		var err error
		if pool, err = parallel.NewWorkerPool(l.opts.workers); err != nil {
			return err
		}
		defer pool.Close()
	}

	result, levels, err := l.optimize(ctx, pool, log)
	if err != nil {
		timer.EndError(err)
		l.record(runStatus(err), timer.Elapsed(), 0, 0, 0)
		return err
	}

	codelength := MapEquation(l.graph, result)
	clusters := result.NumberOfSubsets()

	l.partition = result
	l.stats = RunStats{
		RunID:       runID,
		Strategy:    l.strategy,
		Workers:     l.opts.workers,
		Levels:      levels,
		Clusters:    clusters,
		MapEquation: codelength,
		Duration:    timer.Elapsed(),
	}
	l.finished = true

	timer.End(logging.Clusters(clusters), logging.Int("levels", len(levels)), logging.Codelength(codelength))
	l.record(metrics.StatusSuccess, l.stats.Duration, len(levels), clusters, codelength)
	return nil
}

func runStatus(err error) string {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return metrics.StatusCancelled
	}
	return metrics.StatusError
}

func (l *LouvainMapEquation) record(status string, d time.Duration, levels, clusters int, codelength float64) {
	if l.opts.metrics == nil {
		return
	}
	l.opts.metrics.RecordRun(l.strategy.String(), status, d, levels, clusters, codelength)
}

// Partition returns the final node to cluster assignment, cluster ids
// compacted to [0, k).
func (l *LouvainMapEquation) Partition() (*partition.Partition, error) {
	if !l.finished {
		return nil, ErrNotRun
	}
	return l.partition, nil
}

// HasFinished reports whether Run completed successfully
func (l *LouvainMapEquation) HasFinished() bool {
	return l.finished
}

// Result returns the statistics of the finished run
func (l *LouvainMapEquation) Result() (RunStats, error) {
	if !l.finished {
		return RunStats{}, ErrNotRun
	}
	return l.stats, nil
}

// MapEquation returns the codelength of the final partition in bits, 0 before Run.
func (l *LouvainMapEquation) MapEquation() float64 {
	return l.stats.MapEquation
}

// Strategy returns the configured parallelization strategy
func (l *LouvainMapEquation) Strategy() Strategy {
	return l.strategy
}

func (l *LouvainMapEquation) String() string {
	return fmt.Sprintf("LouvainMapEquation(hierarchical=%t, maxIterations=%d, strategy=%s)",
		l.opts.hierarchical, l.opts.maxIterations, l.strategy)
}
