package mapequation

import (
	"math"

	"github.com/dd0wney/cluso-mapequation/pkg/graph"
	"github.com/dd0wney/cluso-mapequation/pkg/partition"
	"github.com/dd0wney/cluso-mapequation/pkg/sparse"
)

// tolerance is the margin by which a candidate must beat the baseline score.
// Scores are normalized by the total volume, so it is scale independent.
const tolerance = 1e-12

func plogp(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return x * math.Log2(x)
}

// moveEvaluator scores moves of single nodes. One per worker: the neighbor
// weight accumulator is reused for every node the worker visits.
type moveEvaluator struct {
	graph   *graph.Graph
	stats   statsView
	weights *sparse.Vector[float64]

	invTotal float64
}

func newMoveEvaluator(g *graph.Graph, stats statsView) *moveEvaluator {
	e := &moveEvaluator{
		graph:   g,
		stats:   stats,
		weights: sparse.NewVector[float64](g.NumberOfNodes()),
	}
	if total := stats.TotalVolume(); total > 0 {
		e.invTotal = 1 / total
	}
	return e
}

func (e *moveEvaluator) p(x float64) float64 {
	return plogp(x * e.invTotal)
}

// accumulate collects the weight from u to every neighboring cluster,
// u's own cluster included. Self-loops are not neighbors.
func (e *moveEvaluator) accumulate(u uint64, part *partition.Partition) {
	e.weights.Reset()
	e.graph.ForNeighborsOf(u, func(v uint64, w float64) {
		e.weights.Add(part.Subset(v), w)
	})
}

// baseline is the score of leaving u in origin. Terms equal for every
// candidate are left out of all scores, so the baseline is not zero and only
// differences between scores of the same node are meaningful.
func (e *moveEvaluator) baseline(origin uint64, degree, volume, toOrigin float64) float64 {
	totalCut := e.stats.TotalCut()
	cut, vol := e.stats.Cut(origin), e.stats.Volume(origin)

	// origin without u
	cutRest := cut + 2*toOrigin - degree
	volRest := vol - volume

	return e.p(totalCut) - 2*e.p(cut) + e.p(cut+vol) + 2*e.p(cutRest) - e.p(cutRest+volRest)
}

// fitness is the score of moving u from its cluster into target.
func (e *moveEvaluator) fitness(target uint64, degree, volume, toOrigin, toTarget float64) float64 {
	totalCut := e.stats.TotalCut() + 2*toOrigin - 2*toTarget
	cut, vol := e.stats.Cut(target), e.stats.Volume(target)

	// target with u
	cutWith := cut + degree - 2*toTarget
	volWith := vol + volume

	return e.p(totalCut) - 2*e.p(cutWith) + e.p(cutWith+volWith) + 2*e.p(cut) - e.p(cut+vol)
}

// evaluate picks the best cluster for u among its neighboring clusters.
// accumulate must have been called for u against the partition that assigns
// u to origin. Equal scores go to the lower cluster id; the move is accepted
// only if it beats the baseline by more than tolerance.
func (e *moveEvaluator) evaluate(u, origin uint64) (Move, bool) {
	if e.weights.Len() == 0 {
		return Move{}, false
	}

	degree, volume := e.graph.WeightedDegree(u), e.graph.Volume(u)
	toOrigin := e.weights.Get(origin)

	best, bestScore, found := uint64(0), math.Inf(1), false
	e.weights.ForEach(func(c uint64, w float64) {
		if c == origin || w <= 0 {
			return
		}
		score := e.fitness(c, degree, volume, toOrigin, w)
		if !found || score < bestScore || (score == bestScore && c < best) {
			best, bestScore, found = c, score, true
		}
	})
	if !found {
		return Move{}, false
	}

	if bestScore >= e.baseline(origin, degree, volume, toOrigin)-tolerance {
		return Move{}, false
	}
	return newMove(u, origin, best, degree, volume, toOrigin, e.weights.Get(best)), true
}

// weightsTo sums the weight from u into clusters a and b under part
func (e *moveEvaluator) weightsTo(u, a, b uint64, part *partition.Partition) (toA, toB float64) {
	e.graph.ForNeighborsOf(u, func(v uint64, w float64) {
		switch part.Subset(v) {
		case a:
			toA += w
		case b:
			toB += w
		}
	})
	return toA, toB
}

// improves re-checks a decided move with fresh weights
func (e *moveEvaluator) improves(m Move, degree, toOrigin, toTarget float64) bool {
	return e.fitness(m.Target, degree, m.Volume, toOrigin, toTarget) <
		e.baseline(m.Origin, degree, m.Volume, toOrigin)-tolerance
}
