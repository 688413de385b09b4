package graph

import (
	"math/rand"

	"github.com/dd0wney/cluso-mapequation/pkg/validation"
)

// PlantedPartition builds a graph of groups*size nodes where node u belongs to
// group u/size. Each pair inside a group is linked with probability pIn, each
// pair across groups with pOut. Edges have unit weight. The returned slice is
// the planted group of every node.
func PlantedPartition(groups, size int, pIn, pOut float64, seed int64) (*Graph, []uint64, error) {
	err := validation.NewConfigValidator("PlantedPartition").
		RangeInt("groups", groups, 1, MaxNodes).
		When(groups > 0, func(cv *validation.ConfigValidator) {
			cv.RangeInt("size", size, 1, MaxNodes/groups)
		}).
		Probability("pIn", pIn).
		Probability("pOut", pOut).
		Validate()
	if err != nil {
		return nil, nil, err
	}

	rng := rand.New(rand.NewSource(seed))
	n := uint64(groups * size)
	b := NewBuilder(n)

	planted := make([]uint64, n)
	for u := uint64(0); u < n; u++ {
		planted[u] = u / uint64(size)
	}

	for u := uint64(0); u < n; u++ {
		for v := u + 1; v < n; v++ {
			p := pOut
			if planted[u] == planted[v] {
				p = pIn
			}
			if rng.Float64() >= p {
				continue
			}
			if err := b.AddEdge(u, v, 1); err != nil {
				return nil, nil, err
			}
		}
	}

	return b.Build(), planted, nil
}
