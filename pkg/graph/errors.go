package graph

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrNodeOutOfRange = errors.New("node out of range")
	ErrInvalidWeight  = errors.New("invalid edge weight")
	ErrGraphBuilt     = errors.New("graph already built")
)

// GraphError provides structured error information for graph operations.
type GraphError struct {
	Op    string  // Operation that failed (e.g., "AddEdge")
	Node  uint64  // Offending node, if applicable
	Value float64 // Offending weight, if applicable
	Cause error   // Underlying error
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	if errors.Is(e.Cause, ErrInvalidWeight) {
		return fmt.Sprintf("%s: weight %v: %v", e.Op, e.Value, e.Cause)
	}
	return fmt.Sprintf("%s node %d: %v", e.Op, e.Node, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *GraphError) Unwrap() error {
	return e.Cause
}
