package geotree

import (
	"runtime"
	"sync"
)

// MultiThreadThreshold is the minimum pending-point count at which
// BatchedImplicitEvaluator.Flush splits work across the worker pool instead
// of running single-threaded.
const MultiThreadThreshold = 2048

// EvaluatorOptions configures a BatchedImplicitEvaluator.
type EvaluatorOptions struct {
	MultiThreaded bool
	WorkerCount   int
}

// EvaluatorOption configures an EvaluatorOptions value.
type EvaluatorOption func(*EvaluatorOptions)

// WithMultiThreaded enables or disables the worker-pool path.
func WithMultiThreaded(enabled bool) EvaluatorOption {
	return func(o *EvaluatorOptions) { o.MultiThreaded = enabled }
}

// WithWorkerCount overrides the default worker count (runtime.NumCPU()).
func WithWorkerCount(n int) EvaluatorOption {
	return func(o *EvaluatorOptions) {
		if n > 0 {
			o.WorkerCount = n
		}
	}
}

func defaultEvaluatorOptions() EvaluatorOptions {
	return EvaluatorOptions{MultiThreaded: false, WorkerCount: runtime.NumCPU()}
}

// BatchedImplicitEvaluator is a caller-side accumulator: it holds a 3D
// geometry root and a pending vector of query points, processed in fixed
// BatchSize chunks (the trailing partial chunk is padded with the last
// real point, whose result is discarded on Flush).
//
// Concurrency: Flush is synchronous from the caller's goroutine. When
// MultiThreaded is enabled and len(pending) >= MultiThreadThreshold, the
// pending vector is split into per-worker chunks processed by a fixed pool
// of goroutines; the call blocks until every worker completes before
// returning. No goroutine retains a reference to the evaluator's internal
// state after Flush returns.
type BatchedImplicitEvaluator struct {
	Root *Node
	opts EvaluatorOptions

	pending []Vec3
}

// NewBatchedImplicitEvaluator constructs an evaluator over root.
func NewBatchedImplicitEvaluator(root *Node, opts ...EvaluatorOption) *BatchedImplicitEvaluator {
	o := defaultEvaluatorOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &BatchedImplicitEvaluator{Root: root, opts: o}
}

// AddPoint appends p to the pending query set.
func (e *BatchedImplicitEvaluator) AddPoint(p Vec3) {
	e.pending = append(e.pending, p)
}

// Pending returns the number of points queued since the last Flush.
func (e *BatchedImplicitEvaluator) Pending() int { return len(e.pending) }

// Flush evaluates every pending point against Root and returns the
// results in the order points were added, then clears the pending set.
//
// The single- and multi-threaded paths must (and do) return bit-identical
// results for the same Root and point set: both ultimately call
// Sdf3DBatch over BatchSize-wide chunks: the multi-threaded path only
// changes which goroutine executes each chunk, never the per-chunk
// arithmetic.
func (e *BatchedImplicitEvaluator) Flush() []float64 {
	points := e.pending
	e.pending = nil
	results := make([]float64, len(points))
	if len(points) == 0 {
		return results
	}

	useMultiThreaded := e.opts.MultiThreaded && len(points) >= MultiThreadThreshold
	chunks := chunkIndices(len(points), BatchSize)

	if !useMultiThreaded {
		for _, c := range chunks {
			e.evalChunk(points, results, c.start, c.end)
		}
		return results
	}

	workers := e.opts.WorkerCount
	if workers < 1 {
		workers = 1
	}
	if workers > len(chunks) {
		workers = len(chunks)
	}

	chunkCh := make(chan chunkRange, len(chunks))
	for _, c := range chunks {
		chunkCh <- c
	}
	close(chunkCh)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for c := range chunkCh {
				e.evalChunk(points, results, c.start, c.end)
			}
		}()
	}
	wg.Wait()

	return results
}

type chunkRange struct{ start, end int }

// chunkIndices partitions [0,total) into fixed-size ranges of width size
// (the final range may be shorter).
func chunkIndices(total, size int) []chunkRange {
	var out []chunkRange
	for start := 0; start < total; start += size {
		end := start + size
		if end > total {
			end = total
		}
		out = append(out, chunkRange{start, end})
	}
	return out
}

// evalChunk evaluates points[start:end] against e.Root, padding a partial
// tail up to BatchSize with the chunk's own last point so Sdf3DBatch's
// fixed-size contract is honored without affecting real results.
func (e *BatchedImplicitEvaluator) evalChunk(points []Vec3, results []float64, start, end int) {
	var buf [BatchSize]Vec3
	var out [BatchSize]float64

	n := end - start
	copy(buf[:n], points[start:end])
	if n > 0 {
		for i := n; i < BatchSize; i++ {
			buf[i] = points[end-1]
		}
	}

	e.Root.Sdf3DBatch(&buf, &out)
	copy(results[start:end], out[:n])
}
