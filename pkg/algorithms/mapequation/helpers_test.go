package mapequation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-mapequation/pkg/graph"
	"github.com/dd0wney/cluso-mapequation/pkg/parallel"
)

// twoTriangles builds triangles (0,1,2) and (3,4,5) with unit weights, joined
// by edge 2-3 of the given weight. A zero link leaves them disconnected.
func twoTriangles(t *testing.T, link float64) *graph.Graph {
	t.Helper()

	edges := []graph.Edge{
		{U: 0, V: 1, Weight: 1}, {U: 1, V: 2, Weight: 1}, {U: 0, V: 2, Weight: 1},
		{U: 3, V: 4, Weight: 1}, {U: 4, V: 5, Weight: 1}, {U: 3, V: 5, Weight: 1},
	}
	if link > 0 {
		edges = append(edges, graph.Edge{U: 2, V: 3, Weight: link})
	}
	g, err := graph.FromEdges(6, edges)
	require.NoError(t, err)
	return g
}

// fourGroups builds four 5-cliques. Cliques 0 and 1 are fully connected to
// each other with weight between, as are cliques 2 and 3. A single edge of
// weight bridge joins node 4 to node 14.
func fourGroups(t *testing.T, between, bridge float64) *graph.Graph {
	t.Helper()

	b := graph.NewBuilder(20)
	for k := uint64(0); k < 4; k++ {
		for i := uint64(0); i < 5; i++ {
			for j := i + 1; j < 5; j++ {
				require.NoError(t, b.AddEdge(5*k+i, 5*k+j, 1))
			}
		}
	}
	for _, pair := range [][2]uint64{{0, 1}, {2, 3}} {
		for i := uint64(0); i < 5; i++ {
			for j := uint64(0); j < 5; j++ {
				require.NoError(t, b.AddEdge(5*pair[0]+i, 5*pair[1]+j, between))
			}
		}
	}
	require.NoError(t, b.AddEdge(4, 14, bridge))
	return b.Build()
}

var randomWeights = []float64{0.5, 1, 2}

// randomGraph builds a reproducible multigraph with up to 3n edges. Self-loops
// and parallel edges are allowed.
func randomGraph(seed int64, n int) *graph.Graph {
	rng := rand.New(rand.NewSource(seed))
	b := graph.NewBuilder(uint64(n))

	edges := rng.Intn(3*n + 1)
	for i := 0; i < edges; i++ {
		u, v := uint64(rng.Intn(n)), uint64(rng.Intn(n))
		w := rng.Float64() * 3
		if rng.Intn(2) == 0 {
			w = randomWeights[rng.Intn(len(randomWeights))]
		}
		if w == 0 {
			w = 1
		}
		// Only fails on out-of-range nodes or invalid weights.
		_ = b.AddEdge(u, v, w)
	}
	return b.Build()
}

func newTestPool(t *testing.T, workers int) *parallel.WorkerPool {
	t.Helper()

	pool, err := parallel.NewWorkerPool(workers)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

// runPartition runs a fresh optimizer and returns its compacted assignment
func runPartition(t *testing.T, g *graph.Graph, opts ...Option) []uint64 {
	t.Helper()

	l, err := New(g, opts...)
	require.NoError(t, err)
	require.NoError(t, l.Run(t.Context()))

	p, err := l.Partition()
	require.NoError(t, err)
	return p.Vector()
}

// poolFor returns nil for the sequential strategy, which runs without a pool
func poolFor(t *testing.T, strategy Strategy, workers int) *parallel.WorkerPool {
	t.Helper()

	if strategy == StrategyNone {
		return nil
	}
	return newTestPool(t, workers)
}
