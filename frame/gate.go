package frame

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// Gate bounds the number of frames submitted to the GPU but not yet completed
// Acquire runs on the simulation goroutine, Release on the queue's completion handler
type Gate struct {
	sem         *semaphore.Weighted
	capacity    int64
	outstanding atomic.Int64
	timeout     time.Duration
}

// NewGate creates a gate with capacity permits
// A positive timeout turns an indefinitely blocked Acquire into ErrGateTimeout
func NewGate(capacity int, timeout time.Duration) *Gate {
	if capacity <= 0 {
		capacity = 1
	}
	return &Gate{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: int64(capacity),
		timeout:  timeout,
	}
}

// Acquire blocks until a permit is free
func (g *Gate) Acquire(ctx context.Context) error {
	waitCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	if err := g.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s", ErrGateTimeout, g.timeout)
		}
		return err
	}
	g.outstanding.Add(1)
	return nil
}

// TryAcquire takes a permit without blocking
func (g *Gate) TryAcquire() bool {
	if !g.sem.TryAcquire(1) {
		return false
	}
	g.outstanding.Add(1)
	return true
}

// Release returns one permit
// Releasing more permits than were acquired is reported instead of corrupting the count
func (g *Gate) Release() error {
	for {
		n := g.outstanding.Load()
		if n <= 0 {
			return fmt.Errorf("%w: gate released with no outstanding permits", ErrInvariantViolation)
		}
		if g.outstanding.CompareAndSwap(n, n-1) {
			break
		}
	}
	g.sem.Release(1)
	return nil
}

// Outstanding returns the number of permits currently held
func (g *Gate) Outstanding() int { return int(g.outstanding.Load()) }

// Capacity returns the permit count
func (g *Gate) Capacity() int { return int(g.capacity) }

// Drain waits until every permit is back, then returns them
func (g *Gate) Drain(ctx context.Context) error {
	if err := g.sem.Acquire(ctx, g.capacity); err != nil {
		return err
	}
	g.sem.Release(g.capacity)
	return nil
}
