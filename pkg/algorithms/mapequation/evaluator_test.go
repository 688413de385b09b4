package mapequation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-mapequation/pkg/graph"
	"github.com/dd0wney/cluso-mapequation/pkg/partition"
)

func TestPlogp(t *testing.T) {
	assert.Zero(t, plogp(0))
	assert.Zero(t, plogp(-1))
	assert.Zero(t, plogp(1))
	assert.InDelta(t, -0.5, plogp(0.5), 1e-15)
	assert.InDelta(t, 8.0, plogp(4), 1e-15)
}

func TestStatisticsStoreSingletons(t *testing.T) {
	b := graph.NewBuilder(3)
	require.NoError(t, b.AddEdge(0, 1, 2))
	require.NoError(t, b.AddEdge(1, 2, 1))
	require.NoError(t, b.AddEdge(2, 2, 0.5))
	g := b.Build()

	s := NewStatisticsStore(g)

	assert.Equal(t, uint64(3), s.Len())
	assert.Equal(t, []float64{2, 3, 1}, s.Cuts())
	assert.Equal(t, []float64{2, 3, 2}, s.Volumes())
	assert.Equal(t, 6.0, s.TotalCut())
	assert.Equal(t, 7.0, s.TotalVolume())
	require.NoError(t, verifyStatistics(g, partition.New(3), s, 0, 0))
}

func TestStatisticsStoreApply(t *testing.T) {
	g := twoTriangles(t, 0.5)
	s := NewStatisticsStore(g)
	part := partition.New(6)

	// 1 joins 0: weight 1 to the target, none left in its own singleton
	m := newMove(1, 1, 0, g.WeightedDegree(1), g.Volume(1), 0, 1)
	commitImmediate(m, s, part)

	assert.Equal(t, 2.0, s.Cut(0))
	assert.Equal(t, 4.0, s.Volume(0))
	assert.Zero(t, s.Cut(1))
	assert.Zero(t, s.Volume(1))
	assert.Equal(t, 11.0, s.TotalCut())
	assert.Equal(t, uint64(0), part.Subset(1))
	require.NoError(t, verifyStatistics(g, part, s, 0, 1))
}

func TestMapEquationKnownValues(t *testing.T) {
	g, err := graph.FromEdges(2, []graph.Edge{{U: 0, V: 1, Weight: 1}})
	require.NoError(t, err)

	assert.InDelta(t, 3.0, MapEquation(g, partition.New(2)), 1e-12)
	assert.InDelta(t, 1.0, MapEquation(g, partition.FromVector([]uint64{0, 0})), 1e-12)
	assert.Zero(t, MapEquation(graph.NewBuilder(3).Build(), partition.New(3)))
}

// Score differences must equal the exact change of the map equation, for
// every node and candidate, from a partition that is not the singleton one.
func TestFitnessMatchesMapEquationDelta(t *testing.T) {
	graphs := map[string]*graph.Graph{
		"triangles":   twoTriangles(t, 0.5),
		"four groups": fourGroups(t, 0.3, 0.05),
		"random":      randomGraph(7, 15),
	}

	for name, g := range graphs {
		t.Run(name, func(t *testing.T) {
			s := NewStatisticsStore(g)
			part := partition.New(g.NumberOfNodes())
			e := newMoveEvaluator(g, s)

			// A few arbitrary moves so clusters have several members.
			for u := uint64(1); u < g.NumberOfNodes(); u += 3 {
				e.accumulate(u, part)
				m := newMove(u, u, u-1, g.WeightedDegree(u), g.Volume(u), e.weights.Get(u), e.weights.Get(u-1))
				commitImmediate(m, s, part)
			}
			require.NoError(t, verifyStatistics(g, part, s, 0, 0))

			before := MapEquation(g, part)
			for u := uint64(0); u < g.NumberOfNodes(); u++ {
				origin := part.Subset(u)
				e.accumulate(u, part)

				degree, volume := g.WeightedDegree(u), g.Volume(u)
				toOrigin := e.weights.Get(origin)
				base := e.baseline(origin, degree, volume, toOrigin)

				e.weights.ForEach(func(c uint64, w float64) {
					if c == origin {
						return
					}
					moved := part.Clone()
					moved.Move(u, c)
					want := MapEquation(g, moved) - before

					got := e.fitness(c, degree, volume, toOrigin, w) - base
					assert.InDelta(t, want, got, 1e-9, "node %d to cluster %d", u, c)
				})
			}
		})
	}
}

func TestEvaluatePicksBestAndLowestOnTies(t *testing.T) {
	// Star: 0 is tied to 1 and 2 with equal weight, so both candidates score
	// the same and the lower id wins.
	g, err := graph.FromEdges(3, []graph.Edge{{U: 0, V: 1, Weight: 1}, {U: 0, V: 2, Weight: 1}})
	require.NoError(t, err)

	s := NewStatisticsStore(g)
	part := partition.New(3)
	e := newMoveEvaluator(g, s)

	e.accumulate(0, part)
	m, ok := e.evaluate(0, 0)
	require.True(t, ok)
	assert.Equal(t, uint64(1), m.Target)
	assert.Equal(t, uint64(0), m.Origin)
	assert.Equal(t, -2.0, m.OriginCutDelta)
	assert.Equal(t, 0.0, m.TargetCutDelta)
}

func TestEvaluateWithoutNeighbors(t *testing.T) {
	g, err := graph.FromEdges(3, []graph.Edge{{U: 0, V: 1, Weight: 1}, {U: 2, V: 2, Weight: 1}})
	require.NoError(t, err)

	s := NewStatisticsStore(g)
	part := partition.New(3)
	e := newMoveEvaluator(g, s)

	// Self-loops are not neighbors.
	e.accumulate(2, part)
	_, ok := e.evaluate(2, 2)
	assert.False(t, ok)
}

func TestEvaluateKeepsGoodCluster(t *testing.T) {
	g := twoTriangles(t, 0.1)
	part := partition.FromVector([]uint64{0, 0, 0, 3, 3, 3})

	e := newMoveEvaluator(g, statsFor(t, g, part))
	for u := uint64(0); u < 6; u++ {
		e.accumulate(u, part)
		_, ok := e.evaluate(u, part.Subset(u))
		assert.False(t, ok, "node %d should stay", u)
	}
}

// statsFor builds a store matching an arbitrary partition by replaying moves
// from singletons.
func statsFor(t *testing.T, g *graph.Graph, target *partition.Partition) *StatisticsStore {
	t.Helper()

	s := NewStatisticsStore(g)
	part := partition.New(g.NumberOfNodes())
	e := newMoveEvaluator(g, s)
	for u := uint64(0); u < g.NumberOfNodes(); u++ {
		c := target.Subset(u)
		if c == u {
			continue
		}
		e.accumulate(u, part)
		m := newMove(u, part.Subset(u), c, g.WeightedDegree(u), g.Volume(u), e.weights.Get(part.Subset(u)), e.weights.Get(c))
		commitImmediate(m, s, part)
	}
	require.True(t, part.Equal(target))
	require.NoError(t, verifyStatistics(g, part, s, 0, 0))
	return s
}
