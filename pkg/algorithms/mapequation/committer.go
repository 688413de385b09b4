package mapequation

import (
	"sync"

	"github.com/dd0wney/cluso-mapequation/pkg/graph"
	"github.com/dd0wney/cluso-mapequation/pkg/partition"
	"github.com/dd0wney/cluso-mapequation/pkg/sparse"
)

// Move is one relocation of a node. Cut deltas assume every other node stays
// where it was when the move was evaluated.
type Move struct {
	Node           uint64
	Volume         float64
	Origin         uint64
	Target         uint64
	OriginCutDelta float64
	TargetCutDelta float64
}

func newMove(u, origin, target uint64, degree, volume, toOrigin, toTarget float64) Move {
	return Move{
		Node:           u,
		Volume:         volume,
		Origin:         origin,
		Target:         target,
		OriginCutDelta: 2*toOrigin - degree,
		TargetCutDelta: degree - 2*toTarget,
	}
}

// commitImmediate applies a move whose weights are known to be current.
// Only valid when no other worker moves nodes concurrently.
func commitImmediate(m Move, stats *StatisticsStore, part *partition.Partition) {
	stats.apply(m)
	part.Move(m.Node, m.Target)
}

// clusterLocks guards the statistics of each cluster for the relaxmap strategy
type clusterLocks []sync.Mutex

// lockPair acquires the locks of two distinct clusters in ascending id order
func (l clusterLocks) lockPair(a, b uint64) {
	if a > b {
		a, b = b, a
	}
	l[a].Lock()
	l[b].Lock()
}

func (l clusterLocks) unlockPair(a, b uint64) {
	l[a].Unlock()
	l[b].Unlock()
}

// commitLocked applies a move decided on possibly stale data. While both
// cluster locks are held no node can enter or leave either cluster, so the
// weights from the node to origin and target are rescanned exactly and the
// decision is re-checked. Returns false if the move no longer improves.
func commitLocked(m Move, e *moveEvaluator, stats *StatisticsStore, locks clusterLocks, part *partition.Partition) bool {
	locks.lockPair(m.Origin, m.Target)
	defer locks.unlockPair(m.Origin, m.Target)

	toOrigin, toTarget := e.weightsTo(m.Node, m.Origin, m.Target, part)
	degree := e.graph.WeightedDegree(m.Node)
	if !e.improves(m, degree, toOrigin, toTarget) {
		return false
	}

	commitImmediate(newMove(m.Node, m.Origin, m.Target, degree, m.Volume, toOrigin, toTarget), stats, part)
	return true
}

// pendingStats overlays the moves accepted so far in an aggregation on the
// statistics the pass was evaluated against.
type pendingStats struct {
	base     *StatisticsStore
	cut      *sparse.Vector[float64]
	volume   *sparse.Vector[float64]
	totalCut float64
}

func (p *pendingStats) Cut(c uint64) float64    { return p.base.Cut(c) + p.cut.Get(c) }
func (p *pendingStats) Volume(c uint64) float64 { return p.base.Volume(c) + p.volume.Get(c) }
func (p *pendingStats) TotalCut() float64       { return p.base.TotalCut() + p.totalCut }
func (p *pendingStats) TotalVolume() float64    { return p.base.TotalVolume() }

func (p *pendingStats) add(m Move) {
	p.volume.Add(m.Origin, -m.Volume)
	p.volume.Add(m.Target, m.Volume)
	p.cut.Add(m.Origin, m.OriginCutDelta)
	p.cut.Add(m.Target, m.TargetCutDelta)
	p.totalCut += m.OriginCutDelta + m.TargetCutDelta
}

// flush applies the net delta of every touched cluster to the base store once
func (p *pendingStats) flush() {
	p.volume.ForEach(func(c uint64, delta float64) {
		p.base.addVolume(c, delta)
	})
	p.cut.ForEach(func(c uint64, delta float64) {
		if delta != 0 {
			p.base.addCut(c, delta)
		}
	})
	p.volume.Reset()
	p.cut.Reset()
	p.totalCut = 0
}

// deferredCommitter collects the moves of a synchronous pass and applies them
// after the barrier.
type deferredCommitter struct {
	graph   *graph.Graph
	perTask [][]Move

	pending  *pendingStats
	recheck  *moveEvaluator
	accepted []Move
}

func newDeferredCommitter(g *graph.Graph, stats *StatisticsStore, tasks int) *deferredCommitter {
	n := g.NumberOfNodes()
	pending := &pendingStats{
		base:   stats,
		cut:    sparse.NewVector[float64](n),
		volume: sparse.NewVector[float64](n),
	}
	return &deferredCommitter{
		graph:   g,
		perTask: make([][]Move, tasks),
		pending: pending,
		recheck: newMoveEvaluator(g, pending),
	}
}

// record queues a move of task i. Tasks only append to their own list.
func (d *deferredCommitter) record(i int, m Move) {
	d.perTask[i] = append(d.perTask[i], m)
}

// aggregate applies the queued moves of a pass. part is the assignment the
// pass was evaluated against; staged must start equal to it and ends as the
// new assignment.
//
// Each move was decided as if it were the only one. Moves are replayed in
// task order, which is node order since tasks own contiguous ranges, and each
// is re-scored against staged and the statistics of the moves accepted before
// it. A move that no longer improves is dropped, so every accepted move lowers
// the map equation. Each cluster's net delta is applied to the store once,
// then the accepted moves are copied into part. Returns accepted and dropped
// counts.
func (d *deferredCommitter) aggregate(part, staged *partition.Partition) (moves, stale uint64) {
	d.accepted = d.accepted[:0]
	for i := range d.perTask {
		for _, m := range d.perTask[i] {
			toOrigin, toTarget := d.recheck.weightsTo(m.Node, m.Origin, m.Target, staged)
			degree := d.graph.WeightedDegree(m.Node)
			if !d.recheck.improves(m, degree, toOrigin, toTarget) {
				stale++
				continue
			}

			exact := newMove(m.Node, m.Origin, m.Target, degree, m.Volume, toOrigin, toTarget)
			d.pending.add(exact)
			staged.Move(m.Node, m.Target)
			d.accepted = append(d.accepted, exact)
		}
		d.perTask[i] = d.perTask[i][:0]
	}

	d.pending.flush()
	for _, m := range d.accepted {
		part.Move(m.Node, m.Target)
	}
	return uint64(len(d.accepted)), stale
}
