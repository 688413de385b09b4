package parallel

// DivCeil returns ceil(a / b) for b > 0.
func DivCeil(a, b int) int {
	return (a + b - 1) / b
}

// ChunkBounds returns the half-open range [lo, hi) of chunk i when n items are
// split into chunks of chunkSize. hi is clamped to n; lo may equal hi for
// trailing empty chunks.
func ChunkBounds(i, n, chunkSize int) (lo, hi int) {
	lo = i * chunkSize
	hi = lo + chunkSize
	if lo > n {
		lo = n
	}
	if hi > n {
		hi = n
	}
	return lo, hi
}

// ForEachChunk splits [0, n) into at most wp.Workers() contiguous chunks and
// runs fn for each chunk on the pool. It returns after every chunk is done.
// fn receives the chunk index so callers can address per-worker state.
func (wp *WorkerPool) ForEachChunk(n int, fn func(chunk, lo, hi int)) error {
	if n == 0 {
		return nil
	}

	chunks := wp.workers
	if chunks > n {
		chunks = n
	}
	chunkSize := DivCeil(n, chunks)

	tasks := make([]func(), 0, chunks)
	for i := 0; i < chunks; i++ {
		lo, hi := ChunkBounds(i, n, chunkSize)
		if lo == hi {
			continue
		}
		chunk := i
		tasks = append(tasks, func() { fn(chunk, lo, hi) })
	}
	return wp.Run(tasks...)
}
