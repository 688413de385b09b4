package graph

// Assignment maps every node to a subset id.
type Assignment interface {
	Subset(u uint64) uint64
}

// Contract builds the quotient graph of g under a node assignment.
//
// Each distinct subset becomes one coarse node, numbered in order of first
// appearance when scanning fine nodes by ascending id. Edges between subsets are
// summed. Edges inside a subset, and the members' own self-loops, become the
// coarse node's self-loop, which keeps Volume(coarse) equal to the subset's
// total fine volume. The returned slice maps every fine node to its coarse node.
func Contract(g *Graph, a Assignment) (*Graph, []uint64) {
	n := g.NumberOfNodes()
	fineToCoarse := make([]uint64, n)
	coarseID := make(map[uint64]uint64)

	for u := uint64(0); u < n; u++ {
		s := a.Subset(u)
		id, ok := coarseID[s]
		if !ok {
			id = uint64(len(coarseID))
			coarseID[s] = id
		}
		fineToCoarse[u] = id
	}

	b := NewBuilder(uint64(len(coarseID)))
	g.ForEdges(func(u, v uint64, w float64) {
		// Inputs come from a valid graph, so AddEdge cannot fail here.
		_ = b.AddEdge(fineToCoarse[u], fineToCoarse[v], w)
	})

	return b.Build(), fineToCoarse
}
