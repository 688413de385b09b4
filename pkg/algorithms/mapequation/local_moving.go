package mapequation

import (
	"context"
	"time"

	"github.com/dd0wney/cluso-mapequation/pkg/graph"
	"github.com/dd0wney/cluso-mapequation/pkg/logging"
	"github.com/dd0wney/cluso-mapequation/pkg/metrics"
	"github.com/dd0wney/cluso-mapequation/pkg/parallel"
	"github.com/dd0wney/cluso-mapequation/pkg/partition"
)

// PhaseState is the state of the local moving phase on one level
type PhaseState int

const (
	StateScanning PhaseState = iota
	StateConverged
	StateIterationExhausted
)

func (s PhaseState) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateConverged:
		return "converged"
	case StateIterationExhausted:
		return "iteration-exhausted"
	default:
		return "unknown"
	}
}

// localMoving repeatedly moves single nodes between clusters of one graph
// until a pass moves nothing or the pass limit is reached.
type localMoving struct {
	graph    *graph.Graph
	part     *partition.Partition
	stats    *StatisticsStore
	strategy Strategy
	pool     *parallel.WorkerPool

	evaluators []*moveEvaluator
	locks      clusterLocks
	staged     *partition.Partition
	deferred   *deferredCommitter
	taskMoves  []uint64
	taskStale  []uint64

	maxIterations int
	state         PhaseState
	passes        int
	moves         uint64
	rejected      uint64

	log     logging.Logger
	metrics *metrics.Registry

	// afterPass runs after every completed pass, used for diagnostics
	afterPass func(pass int) error
}

// newLocalMoving binds a phase to g, starting from the singleton partition.
// pool may be nil for StrategyNone.
func newLocalMoving(g *graph.Graph, strategy Strategy, pool *parallel.WorkerPool, maxIterations int) *localMoving {
	lm := &localMoving{
		graph:         g,
		part:          partition.New(g.NumberOfNodes()),
		stats:         NewStatisticsStore(g),
		strategy:      strategy,
		pool:          pool,
		maxIterations: maxIterations,
		log:           logging.NewNopLogger(),
	}

	tasks := 1
	if strategy != StrategyNone {
		tasks = pool.Workers()
	}
	lm.evaluators = make([]*moveEvaluator, tasks)
	for i := range lm.evaluators {
		lm.evaluators[i] = newMoveEvaluator(g, lm.stats)
	}
	lm.taskMoves = make([]uint64, tasks)
	lm.taskStale = make([]uint64, tasks)

	switch strategy {
	case StrategyRelaxMap:
		lm.locks = make(clusterLocks, g.NumberOfNodes())
	case StrategySynchronous:
		lm.staged = lm.part.Clone()
		lm.deferred = newDeferredCommitter(g, lm.stats, tasks)
	}

	return lm
}

// run drives passes until a terminal state. The context is checked between
// passes only.
func (lm *localMoving) run(ctx context.Context) error {
	for lm.state == StateScanning {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		moves, err := lm.pass()
		if err != nil {
			return err
		}
		lm.passes++
		lm.moves += moves

		if lm.metrics != nil {
			lm.metrics.RecordPass(lm.strategy.String(), moves, time.Since(start))
		}
		lm.log.Debug("pass finished", logging.Pass(lm.passes), logging.Moves(moves))

		if lm.afterPass != nil {
			if err := lm.afterPass(lm.passes); err != nil {
				return err
			}
		}

		switch {
		case moves == 0:
			lm.state = StateConverged
		case lm.passes >= lm.maxIterations:
			lm.state = StateIterationExhausted
		}
	}
	return nil
}

// pass visits every node once and returns the number of applied moves
func (lm *localMoving) pass() (uint64, error) {
	switch lm.strategy {
	case StrategyRelaxMap:
		return lm.relaxMapPass()
	case StrategySynchronous:
		return lm.synchronousPass()
	default:
		return lm.sequentialPass(), nil
	}
}

func (lm *localMoving) sequentialPass() uint64 {
	e := lm.evaluators[0]
	moves := uint64(0)

	for u := uint64(0); u < lm.graph.NumberOfNodes(); u++ {
		origin := lm.part.Subset(u)
		e.accumulate(u, lm.part)
		if m, ok := e.evaluate(u, origin); ok {
			commitImmediate(m, lm.stats, lm.part)
			moves++
		}
	}
	return moves
}

func (lm *localMoving) relaxMapPass() (uint64, error) {
	err := lm.pool.ForEachChunk(int(lm.graph.NumberOfNodes()), func(task, lo, hi int) {
		e := lm.evaluators[task]
		moves, stale := uint64(0), uint64(0)

		for u := uint64(lo); u < uint64(hi); u++ {
			origin := lm.part.Subset(u)
			e.accumulate(u, lm.part)
			m, ok := e.evaluate(u, origin)
			if !ok {
				continue
			}
			if commitLocked(m, e, lm.stats, lm.locks, lm.part) {
				moves++
			} else {
				stale++
			}
		}

		lm.taskMoves[task] = moves
		lm.taskStale[task] = stale
	})
	if err != nil {
		return 0, err
	}

	moves, stale := lm.collectTaskCounts()
	lm.reject(metrics.ReasonStale, stale)
	return moves, nil
}

func (lm *localMoving) synchronousPass() (uint64, error) {
	if err := lm.staged.CopyFrom(lm.part); err != nil {
		return 0, err
	}

	err := lm.pool.ForEachChunk(int(lm.graph.NumberOfNodes()), func(task, lo, hi int) {
		e := lm.evaluators[task]

		for u := uint64(lo); u < uint64(hi); u++ {
			origin := lm.part.Subset(u)
			e.accumulate(u, lm.part)
			if m, ok := e.evaluate(u, origin); ok {
				lm.deferred.record(task, m)
			}
		}
	})
	if err != nil {
		return 0, err
	}

	moves, stale := lm.deferred.aggregate(lm.part, lm.staged)
	lm.reject(metrics.ReasonStale, stale)
	return moves, nil
}

func (lm *localMoving) collectTaskCounts() (moves, stale uint64) {
	for i := range lm.taskMoves {
		moves += lm.taskMoves[i]
		stale += lm.taskStale[i]
		lm.taskMoves[i], lm.taskStale[i] = 0, 0
	}
	return moves, stale
}

func (lm *localMoving) reject(reason string, n uint64) {
	lm.rejected += n
	if lm.metrics != nil {
		lm.metrics.RecordRejectedMoves(lm.strategy.String(), reason, n)
	}
}
