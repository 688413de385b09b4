package algorithms

import (
	"context"
	"errors"

	"github.com/dd0wney/cluso-mapequation/pkg/partition"
)

// ErrNotRun is returned when a detector's result is requested before Run finished.
var ErrNotRun = errors.New("algorithm has not been run")

// CommunityDetector is the lifecycle shared by the community detection
// algorithms: configure, Run once, then read the partition.
type CommunityDetector interface {
	// Run computes the partition. It may be called at most once.
	Run(ctx context.Context) error
	// Partition returns the result of Run, or ErrNotRun.
	Partition() (*partition.Partition, error)
	// HasFinished reports whether Run completed successfully.
	HasFinished() bool
	// String describes the algorithm and its settings.
	String() string
}

// codelengthReporter is implemented by detectors that minimize the map equation
type codelengthReporter interface {
	MapEquation() float64
}

// Community represents a detected community
type Community struct {
	ID      int
	Nodes   []uint64
	Size    int
	Volume  float64 // Sum of member volumes
	Cut     float64 // Weight of edges leaving the community
	Density float64 // Edge density within community
}

// CommunityDetectionResult contains detected communities
type CommunityDetectionResult struct {
	Algorithm     string
	Communities   []*Community
	Modularity    float64        // Quality measure of the partitioning
	MapEquation   float64        // Codelength in bits, zero for detectors that do not compute it
	NodeCommunity map[uint64]int // Node ID -> Community ID
}
