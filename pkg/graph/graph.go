// Package graph holds the immutable undirected weighted graph the community
// detection algorithms operate on.
//
// Node ids are dense in [0, n). Adjacency is stored in compressed sparse row
// form; self-loops are kept apart from the neighbor lists so that degree and
// volume accounting stay explicit:
//
//	WeightedDegree(u) = sum of weights of non-loop edges at u
//	Volume(u)         = WeightedDegree(u) + 2*SelfLoopWeight(u)
package graph

// MaxNodes bounds the node count of graphs read from edge lists or generated
const MaxNodes = 1 << 26

// Graph is an immutable undirected weighted graph. Safe for concurrent reads.
type Graph struct {
	offsets []uint64 // len n+1, neighbors of u are targets[offsets[u]:offsets[u+1]]
	targets []uint64
	weights []float64

	degree []float64
	loops  []float64

	edges           uint64
	totalEdgeWeight float64
	totalVolume     float64
}

// NumberOfNodes returns n.
func (g *Graph) NumberOfNodes() uint64 {
	return uint64(len(g.degree))
}

// NumberOfEdges returns the number of distinct edges, self-loops included.
func (g *Graph) NumberOfEdges() uint64 {
	return g.edges
}

// WeightedDegree returns the total weight of non-loop edges incident to u.
func (g *Graph) WeightedDegree(u uint64) float64 {
	return g.degree[u]
}

// SelfLoopWeight returns the weight of u's self-loop, zero if absent.
func (g *Graph) SelfLoopWeight(u uint64) float64 {
	return g.loops[u]
}

// Volume returns u's contribution to its cluster's volume.
func (g *Graph) Volume(u uint64) float64 {
	return g.degree[u] + 2*g.loops[u]
}

// TotalVolume returns the sum of Volume over all nodes (twice the total edge weight).
func (g *Graph) TotalVolume() float64 {
	return g.totalVolume
}

// TotalEdgeWeight returns the sum of all edge weights, each edge counted once.
func (g *Graph) TotalEdgeWeight() float64 {
	return g.totalEdgeWeight
}

// Degree returns the number of distinct non-loop neighbors of u.
func (g *Graph) Degree(u uint64) int {
	return int(g.offsets[u+1] - g.offsets[u])
}

// ForNeighborsOf calls fn for every non-loop neighbor of u in ascending id order.
func (g *Graph) ForNeighborsOf(u uint64, fn func(v uint64, w float64)) {
	for i := g.offsets[u]; i < g.offsets[u+1]; i++ {
		fn(g.targets[i], g.weights[i])
	}
}

// ForNodes calls fn for every node id in ascending order.
func (g *Graph) ForNodes(fn func(u uint64)) {
	for u := uint64(0); u < g.NumberOfNodes(); u++ {
		fn(u)
	}
}

// ForEdges calls fn once per edge (u <= v), self-loops included.
func (g *Graph) ForEdges(fn func(u, v uint64, w float64)) {
	for u := uint64(0); u < g.NumberOfNodes(); u++ {
		if g.loops[u] > 0 {
			fn(u, u, g.loops[u])
		}
		for i := g.offsets[u]; i < g.offsets[u+1]; i++ {
			if v := g.targets[i]; v > u {
				fn(u, v, g.weights[i])
			}
		}
	}
}

// EdgeWeight returns the weight between u and v, zero if they are not adjacent.
func (g *Graph) EdgeWeight(u, v uint64) float64 {
	if u == v {
		return g.loops[u]
	}
	lo, hi := g.offsets[u], g.offsets[u+1]
	for lo < hi {
		mid := lo + (hi-lo)/2
		switch t := g.targets[mid]; {
		case t == v:
			return g.weights[mid]
		case t < v:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return 0
}
