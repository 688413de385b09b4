package mapequation

import (
	"math"
	"sync/atomic"

	"github.com/dd0wney/cluso-mapequation/pkg/graph"
)

// atomicFloat is a float64 that can be read and accumulated without locks
type atomicFloat struct {
	bits atomic.Uint64
}

func (f *atomicFloat) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

func (f *atomicFloat) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

func (f *atomicFloat) Add(delta float64) {
	for {
		old := f.bits.Load()
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if f.bits.CompareAndSwap(old, next) {
			return
		}
	}
}

// statsView is the read side of the cluster statistics that moves are scored against
type statsView interface {
	Cut(c uint64) float64
	Volume(c uint64) float64
	TotalCut() float64
	TotalVolume() float64
}

// StatisticsStore keeps the cut and volume of every cluster plus their sums.
//
// Cluster ids share the node id space, so the store is sized to the number of
// nodes. Entries are atomic: evaluation may read while another worker commits.
// Consistency between the two clusters of one move is the committer's job.
type StatisticsStore struct {
	cut         []atomicFloat
	volume      []atomicFloat
	totalCut    atomicFloat
	totalVolume float64
}

// NewStatisticsStore initializes the store for the singleton partition of g:
// every cluster's cut is its node's weighted degree and its volume the node's
// volume. Totals are summed from the per-cluster values.
func NewStatisticsStore(g *graph.Graph) *StatisticsStore {
	n := g.NumberOfNodes()
	s := &StatisticsStore{
		cut:    make([]atomicFloat, n),
		volume: make([]atomicFloat, n),
	}

	totalCut, totalVolume := 0.0, 0.0
	for u := uint64(0); u < n; u++ {
		cut, volume := g.WeightedDegree(u), g.Volume(u)
		s.cut[u].Store(cut)
		s.volume[u].Store(volume)
		totalCut += cut
		totalVolume += volume
	}
	s.totalCut.Store(totalCut)
	s.totalVolume = totalVolume

	return s
}

// Len returns the size of the cluster id space
func (s *StatisticsStore) Len() uint64 {
	return uint64(len(s.cut))
}

// Cut returns the weight crossing the boundary of cluster c
func (s *StatisticsStore) Cut(c uint64) float64 {
	return s.cut[c].Load()
}

// Volume returns the summed volume of the members of cluster c
func (s *StatisticsStore) Volume(c uint64) float64 {
	return s.volume[c].Load()
}

// TotalCut returns the sum of all cluster cuts
func (s *StatisticsStore) TotalCut() float64 {
	return s.totalCut.Load()
}

// TotalVolume returns the sum of all cluster volumes. Constant for a graph.
func (s *StatisticsStore) TotalVolume() float64 {
	return s.totalVolume
}

// Cuts returns a copy of all cluster cuts
func (s *StatisticsStore) Cuts() []float64 {
	out := make([]float64, len(s.cut))
	for c := range s.cut {
		out[c] = s.cut[c].Load()
	}
	return out
}

// Volumes returns a copy of all cluster volumes
func (s *StatisticsStore) Volumes() []float64 {
	out := make([]float64, len(s.volume))
	for c := range s.volume {
		out[c] = s.volume[c].Load()
	}
	return out
}

// apply adds the effect of one move. Callers serialize moves touching the
// same clusters.
func (s *StatisticsStore) apply(m Move) {
	s.volume[m.Origin].Add(-m.Volume)
	s.volume[m.Target].Add(m.Volume)
	s.cut[m.Origin].Add(m.OriginCutDelta)
	s.cut[m.Target].Add(m.TargetCutDelta)
	s.totalCut.Add(m.OriginCutDelta + m.TargetCutDelta)
}

// addCut and addVolume apply the net deltas of a deferred aggregation
func (s *StatisticsStore) addCut(c uint64, delta float64) {
	s.cut[c].Add(delta)
	s.totalCut.Add(delta)
}

func (s *StatisticsStore) addVolume(c uint64, delta float64) {
	s.volume[c].Add(delta)
}
