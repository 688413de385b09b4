// Package partition stores a node -> subset assignment.
//
// Entries are read and written with 64-bit atomic operations so a worker may
// look up a neighbor's subset while another worker moves that neighbor. Bulk
// operations (Clone, CopyFrom, Compact, Subsets) are not synchronized and must
// not run while workers are moving nodes.
package partition

import (
	"fmt"
	"sync/atomic"
)

// Partition assigns each element in [0, n) to a subset id.
type Partition struct {
	data []uint64
}

// New creates the singleton partition where every element is its own subset.
func New(n uint64) *Partition {
	p := &Partition{data: make([]uint64, n)}
	for u := range p.data {
		p.data[u] = uint64(u)
	}
	return p
}

// FromVector creates a partition from an explicit assignment. The slice is copied.
func FromVector(assignment []uint64) *Partition {
	p := &Partition{data: make([]uint64, len(assignment))}
	copy(p.data, assignment)
	return p
}

// NumberOfElements returns n.
func (p *Partition) NumberOfElements() uint64 {
	return uint64(len(p.data))
}

// Subset returns the subset of element u.
func (p *Partition) Subset(u uint64) uint64 {
	return atomic.LoadUint64(&p.data[u])
}

// Move assigns element u to subset s.
func (p *Partition) Move(u, s uint64) {
	atomic.StoreUint64(&p.data[u], s)
}

// Clone returns an independent copy.
func (p *Partition) Clone() *Partition {
	return FromVector(p.data)
}

// CopyFrom overwrites p with the assignment of other. Both must have the same size.
func (p *Partition) CopyFrom(other *Partition) error {
	if len(p.data) != len(other.data) {
		return fmt.Errorf("partition size mismatch: %d != %d", len(p.data), len(other.data))
	}
	copy(p.data, other.data)
	return nil
}

// Vector returns a copy of the raw assignment.
func (p *Partition) Vector() []uint64 {
	out := make([]uint64, len(p.data))
	copy(out, p.data)
	return out
}

// NumberOfSubsets counts distinct subset ids.
func (p *Partition) NumberOfSubsets() int {
	seen := make(map[uint64]struct{}, len(p.data))
	for _, s := range p.data {
		seen[s] = struct{}{}
	}
	return len(seen)
}

// Compact relabels subsets to [0, k) in order of first appearance and returns k.
func (p *Partition) Compact() int {
	relabel := make(map[uint64]uint64, len(p.data))
	for u, s := range p.data {
		id, ok := relabel[s]
		if !ok {
			id = uint64(len(relabel))
			relabel[s] = id
		}
		p.data[u] = id
	}
	return len(relabel)
}

// Subsets returns the members of every subset, members in ascending order.
func (p *Partition) Subsets() map[uint64][]uint64 {
	out := make(map[uint64][]uint64)
	for u, s := range p.data {
		out[s] = append(out[s], uint64(u))
	}
	return out
}

// SubsetSizes returns the number of members per subset id.
func (p *Partition) SubsetSizes() map[uint64]int {
	out := make(map[uint64]int)
	for _, s := range p.data {
		out[s]++
	}
	return out
}

// Compose replaces every entry s with coarse[s]. Used to project a coarse
// partition back onto fine elements.
func (p *Partition) Compose(coarse []uint64) {
	for u, s := range p.data {
		p.data[u] = coarse[s]
	}
}

// Equal reports whether two partitions assign identical subset ids.
func (p *Partition) Equal(other *Partition) bool {
	if len(p.data) != len(other.data) {
		return false
	}
	for u := range p.data {
		if p.data[u] != other.data[u] {
			return false
		}
	}
	return true
}
