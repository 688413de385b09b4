package algorithms

import "github.com/dd0wney/cluso-mapequation/pkg/graph"

// Modularity computes Newman modularity of an assignment on a weighted graph:
//
//	Q = sum_c ( 2*W_c/V - (vol_c/V)^2 )
//
// where W_c is the weight of edges inside c (self-loops included once),
// vol_c the community volume and V the total volume. Empty graphs score 0.
func Modularity(g *graph.Graph, a graph.Assignment) float64 {
	total := g.TotalVolume()
	if total == 0 {
		return 0
	}

	internal := make(map[uint64]float64)
	volume := make(map[uint64]float64)

	g.ForNodes(func(u uint64) {
		volume[a.Subset(u)] += g.Volume(u)
	})
	g.ForEdges(func(u, v uint64, w float64) {
		if c := a.Subset(u); c == a.Subset(v) {
			internal[c] += w
		}
	})

	q := 0.0
	for c, vol := range volume {
		share := vol / total
		q += 2*internal[c]/total - share*share
	}
	return q
}
