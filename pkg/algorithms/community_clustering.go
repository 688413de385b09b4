package algorithms

import "github.com/dd0wney/cluso-mapequation/pkg/graph"

// ClusteringCoefficient computes the local clustering coefficient of every node:
// the fraction of neighbor pairs that are themselves adjacent. Edge weights and
// self-loops are ignored.
func ClusteringCoefficient(g *graph.Graph) []float64 {
	coefficients := make([]float64, g.NumberOfNodes())

	g.ForNodes(func(u uint64) {
		k := g.Degree(u)
		if k < 2 {
			return
		}

		neighbors := make([]uint64, 0, k)
		g.ForNeighborsOf(u, func(v uint64, _ float64) {
			neighbors = append(neighbors, v)
		})

		// EdgeWeight is a binary search over v's sorted row
		triangles := 0
		for i := 0; i < len(neighbors); i++ {
			for j := i + 1; j < len(neighbors); j++ {
				if g.EdgeWeight(neighbors[i], neighbors[j]) > 0 {
					triangles++
				}
			}
		}

		coefficients[u] = float64(triangles) / float64(k*(k-1)/2)
	})

	return coefficients
}

// AverageClusteringCoefficient computes the mean of ClusteringCoefficient over
// all nodes, zero for an empty graph.
func AverageClusteringCoefficient(g *graph.Graph) float64 {
	coefficients := ClusteringCoefficient(g)
	if len(coefficients) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, coef := range coefficients {
		sum += coef
	}
	return sum / float64(len(coefficients))
}
