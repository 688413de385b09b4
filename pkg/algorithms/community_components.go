package algorithms

import (
	"container/list"

	"github.com/dd0wney/cluso-mapequation/pkg/graph"
	"github.com/dd0wney/cluso-mapequation/pkg/partition"
)

// ConnectedComponents labels every node with its component. Components are
// numbered 0..k-1 in order of their smallest node id.
func ConnectedComponents(g *graph.Graph) (*partition.Partition, int) {
	n := g.NumberOfNodes()
	components := partition.New(n)
	visited := make([]bool, n)
	componentID := uint64(0)

	// BFS to find each component
	for start := uint64(0); start < n; start++ {
		if visited[start] {
			continue
		}

		queue := list.New()
		queue.PushBack(start)
		visited[start] = true

		for queue.Len() > 0 {
			u, ok := queue.Remove(queue.Front()).(uint64)
			if !ok {
				continue
			}
			components.Move(u, componentID)

			g.ForNeighborsOf(u, func(v uint64, _ float64) {
				if !visited[v] {
					visited[v] = true
					queue.PushBack(v)
				}
			})
		}

		componentID++
	}

	return components, int(componentID)
}
