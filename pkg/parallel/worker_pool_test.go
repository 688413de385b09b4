package parallel

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestWorkerPoolOverflow tests that extremely large worker counts are rejected
func TestWorkerPoolOverflow(t *testing.T) {
	_, err := NewWorkerPool(math.MaxInt)
	if !errors.Is(err, ErrTooManyWorkers) {
		t.Errorf("Expected ErrTooManyWorkers, got %v", err)
	}
}

// TestWorkerPoolDefaultsToOneWorker tests zero and negative worker counts
func TestWorkerPoolDefaultsToOneWorker(t *testing.T) {
	for _, workers := range []int{0, -5} {
		pool, err := NewWorkerPool(workers)
		if err != nil {
			t.Fatalf("NewWorkerPool(%d) failed: %v", workers, err)
		}
		if pool.Workers() != 1 {
			t.Errorf("Expected 1 worker for input %d, got %d", workers, pool.Workers())
		}
		pool.Close()
	}
}

// TestWorkerPoolSubmitAfterClose tests that submissions after close return false
func TestWorkerPoolSubmitAfterClose(t *testing.T) {
	pool, _ := NewWorkerPool(4)

	success := pool.Submit(func() {
		time.Sleep(time.Millisecond)
	})
	if !success {
		t.Error("Task submission before close should succeed")
	}

	pool.Close()

	success = pool.Submit(func() {
		t.Error("This task should never execute")
	})
	if success {
		t.Error("Task submission after close should return false")
	}
}

// TestWorkerPoolConcurrentClose tests that closing from many goroutines is safe
func TestWorkerPoolConcurrentClose(t *testing.T) {
	pool, _ := NewWorkerPool(4)

	for i := 0; i < 20; i++ {
		pool.Submit(func() {
			time.Sleep(time.Millisecond)
		})
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Close()
		}()
	}
	wg.Wait()
}

// TestRunIsABarrier tests that Run returns only after every task finished
func TestRunIsABarrier(t *testing.T) {
	pool, _ := NewWorkerPool(4)
	defer pool.Close()

	for round := 0; round < 10; round++ {
		var counter int64
		tasks := make([]func(), 32)
		for i := range tasks {
			tasks[i] = func() {
				time.Sleep(100 * time.Microsecond)
				atomic.AddInt64(&counter, 1)
			}
		}
		if err := pool.Run(tasks...); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if got := atomic.LoadInt64(&counter); got != 32 {
			t.Fatalf("round %d: %d tasks done after Run, want 32", round, got)
		}
	}
}

// TestRunReportsPanic tests that a panicking task surfaces as TaskPanicError
func TestRunReportsPanic(t *testing.T) {
	pool, _ := NewWorkerPool(2)
	defer pool.Close()

	var counter int64
	err := pool.Run(
		func() { atomic.AddInt64(&counter, 1) },
		func() { panic("intentional panic") },
		func() { atomic.AddInt64(&counter, 1) },
	)

	var panicErr *TaskPanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected *TaskPanicError, got %v", err)
	}
	if panicErr.Value != "intentional panic" {
		t.Errorf("Unexpected panic value %v", panicErr.Value)
	}
	if counter != 2 {
		t.Errorf("Expected the other 2 tasks to run, got %d", counter)
	}

	// The pool keeps working after a panic.
	if err := pool.Run(func() {}); err != nil {
		t.Errorf("Run after panic failed: %v", err)
	}
}

// TestRunOnClosedPool tests that Run fails fast once the pool is closed
func TestRunOnClosedPool(t *testing.T) {
	pool, _ := NewWorkerPool(2)
	pool.Close()

	if err := pool.Run(func() {}); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Expected ErrPoolClosed, got %v", err)
	}
}

// TestForEachChunkCoversRange tests that chunks partition [0, n) exactly
func TestForEachChunkCoversRange(t *testing.T) {
	tests := []struct {
		workers int
		n       int
	}{
		{1, 10}, {3, 10}, {4, 4}, {8, 3}, {4, 0}, {5, 101},
	}

	for _, tt := range tests {
		pool, _ := NewWorkerPool(tt.workers)

		hits := make([]int32, tt.n)
		seenChunk := make([]int32, tt.workers)
		err := pool.ForEachChunk(tt.n, func(chunk, lo, hi int) {
			atomic.AddInt32(&seenChunk[chunk], 1)
			for i := lo; i < hi; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		pool.Close()

		if err != nil {
			t.Fatalf("ForEachChunk(%d workers, n=%d) failed: %v", tt.workers, tt.n, err)
		}
		for i, h := range hits {
			if h != 1 {
				t.Errorf("workers=%d n=%d: index %d visited %d times", tt.workers, tt.n, i, h)
			}
		}
		for c, s := range seenChunk {
			if s > 1 {
				t.Errorf("workers=%d n=%d: chunk %d ran %d times", tt.workers, tt.n, c, s)
			}
		}
	}
}

func TestChunkBounds(t *testing.T) {
	if DivCeil(10, 3) != 4 || DivCeil(9, 3) != 3 {
		t.Error("DivCeil rounds incorrectly")
	}
	lo, hi := ChunkBounds(2, 10, 4)
	if lo != 8 || hi != 10 {
		t.Errorf("ChunkBounds(2, 10, 4) = [%d, %d), want [8, 10)", lo, hi)
	}
	lo, hi = ChunkBounds(5, 10, 4)
	if lo != 10 || hi != 10 {
		t.Errorf("ChunkBounds past the end = [%d, %d), want [10, 10)", lo, hi)
	}
}

func BenchmarkWorkerPoolRun(b *testing.B) {
	pool, _ := NewWorkerPool(4)
	defer pool.Close()

	tasks := make([]func(), 8)
	for i := range tasks {
		tasks[i] = func() {}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = pool.Run(tasks...)
	}
}
