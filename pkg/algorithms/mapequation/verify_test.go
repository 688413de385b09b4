package mapequation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-mapequation/pkg/partition"
)

func TestVerifyStatisticsDetectsCorruption(t *testing.T) {
	tests := []struct {
		name     string
		corrupt  func(s *StatisticsStore)
		quantity string
		cluster  uint64
	}{
		{"cut", func(s *StatisticsStore) { s.cut[2].Add(0.5) }, "cut", 2},
		{"volume", func(s *StatisticsStore) { s.addVolume(1, 1) }, "volume", 1},
		{"total cut", func(s *StatisticsStore) { s.totalCut.Add(-1) }, "totalCut", 0},
		{"total volume", func(s *StatisticsStore) { s.totalVolume += 3 }, "totalVolume", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := twoTriangles(t, 0.5)
			s := NewStatisticsStore(g)
			tt.corrupt(s)

			err := verifyStatistics(g, partition.New(6), s, 2, 5)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInconsistentStatistics)

			var verr *VerificationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.quantity, verr.Quantity)
			assert.Equal(t, tt.cluster, verr.Cluster)
			assert.Equal(t, 2, verr.Level)
			assert.Equal(t, 5, verr.Pass)
			assert.Contains(t, err.Error(), "level 2 pass 5")
		})
	}
}

func TestVerificationErrorMessages(t *testing.T) {
	tests := []struct {
		err  *VerificationError
		want string
	}{
		{
			&VerificationError{Level: 1, Pass: 2, Quantity: "cut", Cluster: 4, Got: 3, Want: 2},
			"level 1 pass 2: cut of cluster 4 is 3, recomputed 2",
		},
		{
			&VerificationError{Level: 0, Pass: 3, Quantity: "totalVolume", Got: 10, Want: 12},
			"level 0 pass 3: totalVolume is 10, recomputed 12",
		},
		{
			&VerificationError{Quantity: quantityCutExceedsVolume, Cluster: 4, Got: 3, Want: 2},
			"level 0 pass 0: cut 3 of cluster 4 exceeds its volume 2",
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
		assert.ErrorIs(t, tt.err, ErrInconsistentStatistics)
	}
}

func TestVerifyStatisticsToleratesRounding(t *testing.T) {
	g := fourGroups(t, 0.3, 0.05)
	s := NewStatisticsStore(g)
	s.cut[0].Add(1e-12)

	assert.NoError(t, verifyStatistics(g, partition.New(20), s, 0, 0))
}

func TestVerificationFailureStopsLocalMoving(t *testing.T) {
	g := twoTriangles(t, 0.5)
	lm := newLocalMoving(g, StrategyNone, nil, 10)
	lm.afterPass = func(pass int) error {
		lm.stats.addCut(0, 1)
		return verifyStatistics(g, lm.part, lm.stats, 0, pass)
	}

	assert.ErrorIs(t, lm.run(t.Context()), ErrInconsistentStatistics)
	assert.Equal(t, 1, lm.passes)
}

func TestDiagnosticsRecordsCodelengths(t *testing.T) {
	l, err := New(twoTriangles(t, 0.5), WithStrategy("none"), WithDiagnostics(true))
	require.NoError(t, err)
	require.NoError(t, l.Run(t.Context()))

	stats, err := l.Result()
	require.NoError(t, err)
	level := stats.Levels[0]
	require.Len(t, level.Codelengths, level.Passes)
	assert.InDelta(t, l.MapEquation(), level.Codelengths[len(level.Codelengths)-1], 1e-12)

	// Without diagnostics nothing is recorded.
	l, err = New(twoTriangles(t, 0.5), WithStrategy("none"))
	require.NoError(t, err)
	require.NoError(t, l.Run(t.Context()))
	stats, err = l.Result()
	require.NoError(t, err)
	assert.Empty(t, stats.Levels[0].Codelengths)
}
