package graph

import (
	"math"
	"sort"
)

// Builder accumulates edges for a Graph with a fixed node count.
// Parallel edges are merged by summing their weights.
type Builder struct {
	n     uint64
	adj   []map[uint64]float64
	loops []float64
	built bool
}

// NewBuilder creates a builder for a graph with n nodes.
func NewBuilder(n uint64) *Builder {
	return &Builder{
		n:     n,
		adj:   make([]map[uint64]float64, n),
		loops: make([]float64, n),
	}
}

// AddEdge adds an undirected edge. u == v adds to u's self-loop.
func (b *Builder) AddEdge(u, v uint64, w float64) error {
	if b.built {
		return &GraphError{Op: "AddEdge", Node: u, Cause: ErrGraphBuilt}
	}
	if u >= b.n {
		return &GraphError{Op: "AddEdge", Node: u, Cause: ErrNodeOutOfRange}
	}
	if v >= b.n {
		return &GraphError{Op: "AddEdge", Node: v, Cause: ErrNodeOutOfRange}
	}
	if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return &GraphError{Op: "AddEdge", Node: u, Value: w, Cause: ErrInvalidWeight}
	}

	if u == v {
		b.loops[u] += w
		return nil
	}
	b.neighbors(u)[v] += w
	b.neighbors(v)[u] += w
	return nil
}

func (b *Builder) neighbors(u uint64) map[uint64]float64 {
	if b.adj[u] == nil {
		b.adj[u] = make(map[uint64]float64, 4)
	}
	return b.adj[u]
}

// Build freezes the builder into an immutable Graph. The builder cannot be reused.
func (b *Builder) Build() *Graph {
	b.built = true

	g := &Graph{
		offsets: make([]uint64, b.n+1),
		degree:  make([]float64, b.n),
		loops:   b.loops,
	}

	total := uint64(0)
	for u := uint64(0); u < b.n; u++ {
		total += uint64(len(b.adj[u]))
		g.offsets[u+1] = total
	}
	g.targets = make([]uint64, total)
	g.weights = make([]float64, total)

	for u := uint64(0); u < b.n; u++ {
		start := g.offsets[u]
		neighbors := make([]uint64, 0, len(b.adj[u]))
		for v := range b.adj[u] {
			neighbors = append(neighbors, v)
		}
		sort.Slice(neighbors, func(i, j int) bool { return neighbors[i] < neighbors[j] })

		for i, v := range neighbors {
			w := b.adj[u][v]
			g.targets[start+uint64(i)] = v
			g.weights[start+uint64(i)] = w
			g.degree[u] += w
			if v > u {
				g.edges++
				g.totalEdgeWeight += w
			}
		}

		if g.loops[u] > 0 {
			g.edges++
			g.totalEdgeWeight += g.loops[u]
		}
		g.totalVolume += g.degree[u] + 2*g.loops[u]
	}

	b.adj = nil
	return g
}

// Edge is a weighted undirected edge used by FromEdges.
type Edge struct {
	U, V   uint64
	Weight float64
}

// FromEdges builds a graph with n nodes from an edge list.
func FromEdges(n uint64, edges []Edge) (*Graph, error) {
	b := NewBuilder(n)
	for _, e := range edges {
		if err := b.AddEdge(e.U, e.V, e.Weight); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}
