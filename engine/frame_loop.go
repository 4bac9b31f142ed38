package engine

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultFrameInterval paces frames at 60 Hz
const DefaultFrameInterval = time.Second / 60

// FrameFunc renders one frame at a display timestamp in seconds
type FrameFunc func(ctx context.Context, timestamp float64) error

// LoopOptions configures a FrameLoop
type LoopOptions struct {
	// Interval between frame deadlines; zero runs frames back to back
	Interval time.Duration
	// MaxFrames stops the loop after that many frames; zero runs until cancelled
	MaxFrames uint64
	Logger    *zap.Logger
}

// FrameLoop stands in for a display link: it calls a FrameFunc on a fixed cadence
// Deadlines advance by Interval with drift correction; while the clock is paused the
// cadence halves so frozen frames still pick up the resume intent
type FrameLoop struct {
	clock     *PausableClock
	frame     FrameFunc
	interval  time.Duration
	maxFrames uint64
	logger    *zap.Logger

	frames atomic.Uint64
}

// NewFrameLoop creates a loop reading timestamps from clock
func NewFrameLoop(clock *PausableClock, fn FrameFunc, opts LoopOptions) *FrameLoop {
	if clock == nil {
		clock = NewPausableClock(nil)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FrameLoop{
		clock:     clock,
		frame:     fn,
		interval:  opts.Interval,
		maxFrames: opts.MaxFrames,
		logger:    logger.Named("loop"),
	}
}

// Frames returns the number of completed frames
func (l *FrameLoop) Frames() uint64 { return l.frames.Load() }

// Run blocks until ctx is cancelled, MaxFrames is reached or the frame function fails
// Cancellation is a clean stop and returns nil
func (l *FrameLoop) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	defer timer.Stop()

	deadline := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := l.frame(ctx, l.clock.Seconds()); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.logger.Debug("frame loop stopped", zap.Uint64("frames", l.frames.Load()), zap.Error(err))
			return err
		}

		n := l.frames.Add(1)
		if l.maxFrames > 0 && n >= l.maxFrames {
			return nil
		}

		if l.interval <= 0 {
			continue
		}
		interval := l.interval
		if l.clock.IsPaused() {
			interval *= 2
		}

		now := time.Now()
		deadline = deadline.Add(interval)
		if now.Sub(deadline) > interval*2 {
			// Too far behind; skip ahead instead of bursting
			deadline = now.Add(interval)
		}
		sleep := deadline.Sub(now)
		if sleep <= 0 {
			continue
		}
		timer.Reset(sleep)
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil
		}
	}
}
