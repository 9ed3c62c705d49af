package workers

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// ErrNilPool is returned when Do is called with a nil pool.
var ErrNilPool = errors.New("nil worker pool")

// Pool bounds the number of units of work running at once.
type Pool struct {
	sem  *semaphore.Weighted
	size int64
}

// New creates a pool allowing size concurrent units. A non-positive size
// defaults to GOMAXPROCS.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		sem:  semaphore.NewWeighted(int64(size)),
		size: int64(size),
	}
}

// Size reports the concurrency bound.
func (p *Pool) Size() int {
	if p == nil {
		return 0
	}
	return int(p.size)
}

type result[T any] struct {
	value T
	err   error
}

// Do runs fn on a worker goroutine and waits for its result or for ctx to end.
func Do[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	var zero T
	if p == nil {
		return zero, ErrNilPool
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return zero, err
	}

	done := make(chan result[T], 1)
	go func() {
		defer p.sem.Release(1)
		v, err := fn()
		done <- result[T]{value: v, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
