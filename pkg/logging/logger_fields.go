package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Optimizer field helpers

func Component(name string) Field {
	return String("component", name)
}

func RunID(id string) Field {
	return String("run_id", id)
}

func Strategy(name string) Field {
	return String("strategy", name)
}

// HierarchyLevel is the coarsening depth, 0 for the input graph.
func HierarchyLevel(depth int) Field {
	return Int("level", depth)
}

func Pass(i int) Field {
	return Int("pass", i)
}

func Moves(n uint64) Field {
	return Uint64("moves", n)
}

func Clusters(n int) Field {
	return Int("clusters", n)
}

func Nodes(n uint64) Field {
	return Uint64("nodes", n)
}

// Codelength is the normalized map equation value in bits.
func Codelength(bits float64) Field {
	return Float64("codelength", bits)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}
