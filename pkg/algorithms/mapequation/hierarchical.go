package mapequation

import (
	"context"
	"fmt"

	"github.com/dd0wney/cluso-mapequation/pkg/graph"
	"github.com/dd0wney/cluso-mapequation/pkg/logging"
	"github.com/dd0wney/cluso-mapequation/pkg/parallel"
	"github.com/dd0wney/cluso-mapequation/pkg/partition"
)

// LevelStats summarizes the local moving phase on one hierarchy level
type LevelStats struct {
	Depth    int
	Nodes    uint64
	Clusters int
	Passes   int
	Moves    uint64
	Rejected uint64
	State    PhaseState
	// Codelengths holds the map equation after every pass. Diagnostics only.
	Codelengths []float64
}

// runLevel optimizes one graph from its singleton partition and returns the
// compacted result.
func (l *LouvainMapEquation) runLevel(ctx context.Context, g *graph.Graph, pool *parallel.WorkerPool, depth int, log logging.Logger) (*partition.Partition, LevelStats, error) {
	log = log.With(logging.HierarchyLevel(depth))
	timer := logging.StartTimer(log, "level finished")
	log.Debug("level started", logging.Nodes(g.NumberOfNodes()), logging.Uint64("edges", g.NumberOfEdges()))

	lm := newLocalMoving(g, l.strategy, pool, l.opts.maxIterations)
	lm.log = log
	lm.metrics = l.opts.metrics

	stats := LevelStats{Depth: depth, Nodes: g.NumberOfNodes()}
	if l.opts.diagnostics {
		lm.afterPass = func(pass int) error {
			if err := verifyStatistics(g, lm.part, lm.stats, depth, pass); err != nil {
				log.Error("statistics verification failed", logging.Pass(pass), logging.Error(err))
				return err
			}
			stats.Codelengths = append(stats.Codelengths, MapEquation(g, lm.part))
			return nil
		}
	}

	if err := lm.run(ctx); err != nil {
		timer.EndError(err)
		return nil, stats, err
	}

	stats.Clusters = lm.part.Compact()
	stats.Passes = lm.passes
	stats.Moves = lm.moves
	stats.Rejected = lm.rejected
	stats.State = lm.state

	if lm.state == StateIterationExhausted {
		log.Warn("pass limit reached before convergence", logging.Int("max_iterations", l.opts.maxIterations))
	}
	timer.End(logging.Clusters(stats.Clusters), logging.Int("passes", stats.Passes), logging.String("state", stats.State.String()))

	return lm.part, stats, nil
}

// optimize runs the first level and, when hierarchical refinement is on,
// keeps contracting and re-optimizing until a level merges nothing or one
// cluster remains. Each coarser level gets a fresh local moving phase bound
// to the contracted graph; levels run strictly one after another.
func (l *LouvainMapEquation) optimize(ctx context.Context, pool *parallel.WorkerPool, log logging.Logger) (*partition.Partition, []LevelStats, error) {
	result, first, err := l.runLevel(ctx, l.graph, pool, 0, log)
	if err != nil {
		return nil, nil, err
	}
	levels := []LevelStats{first}

	current, currentPart := l.graph, result
	clusters := first.Clusters

	for depth := 1; l.opts.hierarchical && clusters > 1 && uint64(clusters) < current.NumberOfNodes(); depth++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		// currentPart is compacted, so coarse node ids equal its cluster ids.
		coarse, _ := graph.Contract(current, currentPart)
		coarsePart, stats, err := l.runLevel(ctx, coarse, pool, depth, log)
		if err != nil {
			return nil, nil, fmt.Errorf("level %d: %w", depth, err)
		}
		levels = append(levels, stats)

		if stats.Clusters == clusters {
			break
		}
		result.Compose(coarsePart.Vector())

		current, currentPart = coarse, coarsePart
		clusters = stats.Clusters
	}

	return result, levels, nil
}
