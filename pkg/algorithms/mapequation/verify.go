package mapequation

import (
	"math"

	"github.com/dd0wney/cluso-mapequation/pkg/graph"
	"github.com/dd0wney/cluso-mapequation/pkg/partition"
)

// MapEquation computes the two-level map equation of an assignment from
// scratch, in bits. Graphs without edges have codelength 0.
func MapEquation(g *graph.Graph, a graph.Assignment) float64 {
	total := g.TotalVolume()
	if total == 0 {
		return 0
	}

	cut, volume := recompute(g, a)

	totalCut := 0.0
	for _, c := range cut {
		totalCut += c
	}

	p := func(x float64) float64 { return plogp(x / total) }

	codelength := p(totalCut)
	for c, vol := range volume {
		codelength += p(cut[c]+vol) - 2*p(cut[c])
	}
	g.ForNodes(func(u uint64) {
		codelength -= p(g.Volume(u))
	})
	return codelength
}

// recompute derives cluster cut and volume directly from the graph
func recompute(g *graph.Graph, a graph.Assignment) (cut, volume map[uint64]float64) {
	cut = make(map[uint64]float64)
	volume = make(map[uint64]float64)

	g.ForNodes(func(u uint64) {
		volume[a.Subset(u)] += g.Volume(u)
	})
	g.ForEdges(func(u, v uint64, w float64) {
		cu, cv := a.Subset(u), a.Subset(v)
		if cu != cv {
			cut[cu] += w
			cut[cv] += w
		}
	})
	return cut, volume
}

// verifyStatistics compares the incremental statistics against a
// recomputation. Clusters without members must have zero cut and volume.
func verifyStatistics(g *graph.Graph, part *partition.Partition, stats *StatisticsStore, level, pass int) error {
	cut, volume := recompute(g, part)
	tol := 1e-9 * math.Max(1, stats.TotalVolume())

	mismatch := func(quantity string, c uint64, got, want float64) error {
		if math.Abs(got-want) <= tol {
			return nil
		}
		return &VerificationError{Level: level, Pass: pass, Quantity: quantity, Cluster: c, Got: got, Want: want}
	}

	totalCut, totalVolume := 0.0, 0.0
	for c := uint64(0); c < stats.Len(); c++ {
		if err := mismatch("cut", c, stats.Cut(c), cut[c]); err != nil {
			return err
		}
		if err := mismatch("volume", c, stats.Volume(c), volume[c]); err != nil {
			return err
		}
		if stats.Cut(c) > stats.Volume(c)+tol {
			return &VerificationError{Level: level, Pass: pass, Quantity: quantityCutExceedsVolume, Cluster: c, Got: stats.Cut(c), Want: stats.Volume(c)}
		}
		totalCut += stats.Cut(c)
		totalVolume += stats.Volume(c)
	}

	if err := mismatch("totalCut", 0, stats.TotalCut(), totalCut); err != nil {
		return err
	}
	return mismatch("totalVolume", 0, totalVolume, stats.TotalVolume())
}
