package algorithms

import (
	"context"
	"fmt"

	"github.com/dd0wney/cluso-mapequation/pkg/graph"
	"github.com/dd0wney/cluso-mapequation/pkg/partition"
)

// Detect runs d on g and summarizes its partition.
func Detect(ctx context.Context, d CommunityDetector, g *graph.Graph) (*CommunityDetectionResult, error) {
	if err := d.Run(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", d.String(), err)
	}
	p, err := d.Partition()
	if err != nil {
		return nil, err
	}

	result := NewCommunityDetectionResult(g, p)
	result.Algorithm = d.String()
	if r, ok := d.(codelengthReporter); ok {
		result.MapEquation = r.MapEquation()
	}
	return result, nil
}

// NewCommunityDetectionResult builds per-community statistics for a partition
// of g. Community ids follow the order of first appearance by node id. p is
// not modified.
func NewCommunityDetectionResult(g *graph.Graph, p *partition.Partition) *CommunityDetectionResult {
	compact := p.Clone()
	k := compact.Compact()

	communities := make([]*Community, k)
	for c := range communities {
		communities[c] = &Community{ID: c, Nodes: make([]uint64, 0)}
	}

	nodeCommunity := make(map[uint64]int, g.NumberOfNodes())
	internal := make([]float64, k)

	g.ForNodes(func(u uint64) {
		c := compact.Subset(u)
		community := communities[c]
		community.Nodes = append(community.Nodes, u)
		community.Volume += g.Volume(u)
		nodeCommunity[u] = int(c)
	})

	g.ForEdges(func(u, v uint64, w float64) {
		cu, cv := compact.Subset(u), compact.Subset(v)
		if cu == cv {
			internal[cu] += w
			return
		}
		communities[cu].Cut += w
		communities[cv].Cut += w
	})

	for c, community := range communities {
		community.Size = len(community.Nodes)
		if community.Size > 1 {
			pairs := float64(community.Size) * float64(community.Size-1) / 2
			community.Density = internal[c] / pairs
		}
	}

	return &CommunityDetectionResult{
		Communities:   communities,
		NodeCommunity: nodeCommunity,
		Modularity:    Modularity(g, compact),
	}
}
