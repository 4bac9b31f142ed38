package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// TimeProvider is the wall time source behind a PausableClock
type TimeProvider interface {
	Now() time.Time
}

// MonotonicTimeProvider reads the system clock with its monotonic component
type MonotonicTimeProvider struct{}

func (MonotonicTimeProvider) Now() time.Time { return time.Now() }

// PausableClock measures game time: real time since start minus time spent paused
// Its Seconds value is the display timestamp handed to the coordinator each frame
type PausableClock struct {
	mu sync.RWMutex

	source TimeProvider
	start  time.Time

	paused      atomic.Bool
	pauseStart  time.Time
	totalPaused time.Duration
}

// NewPausableClock starts a clock on source, the system clock when nil
func NewPausableClock(source TimeProvider) *PausableClock {
	if source == nil {
		source = MonotonicTimeProvider{}
	}
	return &PausableClock{source: source, start: source.Now()}
}

// Elapsed returns game time since the clock started, frozen while paused
func (pc *PausableClock) Elapsed() time.Duration {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	if pc.paused.Load() {
		return pc.pauseStart.Sub(pc.start) - pc.totalPaused
	}
	return pc.source.Now().Sub(pc.start) - pc.totalPaused
}

// Seconds returns Elapsed as float seconds
func (pc *PausableClock) Seconds() float64 {
	return pc.Elapsed().Seconds()
}

// Pause stops game time advancement
func (pc *PausableClock) Pause() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.paused.CompareAndSwap(false, true) {
		pc.pauseStart = pc.source.Now()
	}
}

// Resume continues game time advancement
func (pc *PausableClock) Resume() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.paused.CompareAndSwap(true, false) {
		pc.totalPaused += pc.source.Now().Sub(pc.pauseStart)
		pc.pauseStart = time.Time{}
	}
}

// Toggle flips the pause state and reports whether the clock is now paused
func (pc *PausableClock) Toggle() bool {
	if pc.IsPaused() {
		pc.Resume()
		return false
	}
	pc.Pause()
	return true
}

// IsPaused returns current pause state
func (pc *PausableClock) IsPaused() bool {
	return pc.paused.Load()
}

// TotalPauseDuration returns cumulative pause time, including a pause in progress
func (pc *PausableClock) TotalPauseDuration() time.Duration {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	total := pc.totalPaused
	if pc.paused.Load() {
		total += pc.source.Now().Sub(pc.pauseStart)
	}
	return total
}
