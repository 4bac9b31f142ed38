package frame

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/gridshooter/gpu"
	"github.com/lixenwraith/gridshooter/status"
)

const (
	// MaxFramesInFlight is the default ring depth
	MaxFramesInFlight = 3
	// DefaultBumpCapacity is the per-slot scratch size in bytes
	DefaultBumpCapacity = 1024
)

// Options configures a Ring
type Options struct {
	// Depth is the number of slots, MaxFramesInFlight when zero
	Depth int
	// Layout lists the fixed buffers every slot owns
	Layout []BufferSpec
	// BumpCapacity is the per-slot scratch size, DefaultBumpCapacity when zero
	BumpCapacity int
	// GateTimeout bounds the wait for a free slot; zero waits forever
	GateTimeout time.Duration
	Logger      *zap.Logger
	Metrics     *status.Registry
}

// Ring rotates frames over Depth slots of GPU-visible resources
// The CPU writes slot frameCounter%Depth only after that slot's previous frame completed
type Ring struct {
	device  *gpu.Device
	slots   []*Slot
	gate    *Gate
	counter atomic.Uint64
	logger  *zap.Logger

	residency *gpu.ResidencySet

	closeMu  sync.Mutex
	closed   atomic.Bool
	released bool

	acquired  *atomic.Int64
	submitted *atomic.Int64
	completed *atomic.Int64
	inFlight  *atomic.Int64
	highWater *atomic.Int64
	gateWait  *status.AtomicFloat
}

// NewRing creates every slot up front
// Any failure releases what was created and is returned
func NewRing(device *gpu.Device, opts Options) (*Ring, error) {
	depth := opts.Depth
	if depth == 0 {
		depth = MaxFramesInFlight
	}
	if depth < 1 || depth > 255 {
		return nil, fmt.Errorf("frame: invalid ring depth %d", depth)
	}
	capacity := opts.BumpCapacity
	if capacity == 0 {
		capacity = DefaultBumpCapacity
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = status.NewRegistry()
	}

	r := &Ring{
		device:    device,
		gate:      NewGate(depth, opts.GateTimeout),
		logger:    logger.Named("frame"),
		acquired:  metrics.Ints.Get(status.FrameAcquired),
		submitted: metrics.Ints.Get(status.FrameSubmitted),
		completed: metrics.Ints.Get(status.FrameCompleted),
		inFlight:  metrics.Ints.Get(status.FrameInFlight),
		highWater: metrics.Ints.Get(status.BumpHighWater),
		gateWait:  metrics.Floats.Get(status.FrameGateWait),
	}

	for i := 0; i < depth; i++ {
		slot, err := newSlot(device, uint8(i), opts.Layout, capacity)
		if err != nil {
			r.releaseSlots()
			return nil, fmt.Errorf("frame: create ring: %w", err)
		}
		r.slots = append(r.slots, slot)
	}

	if gpu.SupportsResidencySets(device) {
		set, err := device.NewResidencySet("frameResidency")
		if err != nil {
			r.releaseSlots()
			return nil, fmt.Errorf("frame: create residency set: %w", err)
		}
		for _, slot := range r.slots {
			for _, a := range slot.allocations() {
				set.AddAllocation(a)
			}
		}
		set.Commit()
		set.RequestResidency()
		r.residency = set
	}

	r.logger.Debug("ring created",
		zap.Int("depth", depth),
		zap.Int("heap_bytes", HeapSize(device, opts.Layout)),
		zap.Int("bump_capacity", capacity),
		zap.Bool("residency", r.residency != nil),
	)
	return r, nil
}

// Depth returns the number of slots
func (r *Ring) Depth() int { return len(r.slots) }

// FrameCounter returns the number of frames begun so far
func (r *Ring) FrameCounter() uint64 { return r.counter.Load() }

// Slot returns slot i
func (r *Ring) Slot(i int) *Slot { return r.slots[i] }

// Gate exposes the in-flight gate
func (r *Ring) Gate() *Gate { return r.gate }

// ResidencySet returns the set holding every slot allocation, nil when unsupported
func (r *Ring) ResidencySet() *gpu.ResidencySet { return r.residency }

// BeginFrame claims the next slot for CPU writes
// Blocks while Depth frames are in flight; the slot's bump allocator is reset
func (r *Ring) BeginFrame(ctx context.Context) (uint8, *Slot, error) {
	if r.closed.Load() {
		return 0, nil, ErrRingClosed
	}
	frameID := uint8(r.counter.Load() % uint64(len(r.slots)))
	slot := r.slots[frameID]

	start := time.Now()
	if err := r.gate.Acquire(ctx); err != nil {
		return 0, nil, err
	}
	r.gateWait.Add(time.Since(start).Seconds())

	if !slot.transition(StateIdle, StateWriting) {
		state := slot.State()
		_ = r.gate.Release()
		return 0, nil, fmt.Errorf("%w: slot %d is %s at frame start", ErrInvariantViolation, frameID, state)
	}
	slot.bump.Reset()
	r.counter.Add(1)
	r.acquired.Add(1)
	return frameID, slot, nil
}

// SubmitFrame commits cb and hands the slot to the GPU
// The slot returns to Idle and the gate permit is released when cb completes
func (r *Ring) SubmitFrame(frameID uint8, cb *gpu.CommandBuffer) error {
	if int(frameID) >= len(r.slots) {
		return fmt.Errorf("%w: frame id %d out of range", ErrInvariantViolation, frameID)
	}
	slot := r.slots[frameID]
	// A slot outside Writing has already handed its permit back or to a completion handler
	if slot.State() != StateWriting {
		return fmt.Errorf("%w: submit slot %d in state %s", ErrInvariantViolation, frameID, slot.State())
	}
	if cb == nil {
		if err := r.AbandonFrame(frameID); err != nil {
			r.logger.Error("abandon frame", zap.Uint8("frame_id", frameID), zap.Error(err))
		}
		return fmt.Errorf("%w: submit slot %d without a command buffer", ErrInvariantViolation, frameID)
	}

	cb.AddScheduledHandler(func(*gpu.CommandBuffer) {
		slot.transition(StateSubmitted, StateInFlight)
	})
	cb.AddCompletedHandler(func(done *gpu.CommandBuffer) {
		if err := done.Error(); err != nil {
			r.logger.Warn("frame completed with error", zap.Uint8("frame_id", frameID), zap.Error(err))
		}
		slot.state.Store(int32(StateIdle))
		r.inFlight.Add(-1)
		r.completed.Add(1)
		if err := r.gate.Release(); err != nil {
			r.logger.Error("gate release", zap.Error(err))
		}
	})

	status.StoreMax(r.highWater, int64(slot.bump.HighWater()))
	slot.state.Store(int32(StateSubmitted))
	r.inFlight.Add(1)
	if err := cb.Commit(); err != nil {
		slot.state.Store(int32(StateIdle))
		r.inFlight.Add(-1)
		_ = r.gate.Release()
		return fmt.Errorf("frame: commit frame %d: %w", frameID, err)
	}
	r.submitted.Add(1)
	return nil
}

// AbandonFrame returns a slot claimed by BeginFrame without submitting it
func (r *Ring) AbandonFrame(frameID uint8) error {
	if int(frameID) >= len(r.slots) {
		return fmt.Errorf("%w: frame id %d out of range", ErrInvariantViolation, frameID)
	}
	slot := r.slots[frameID]
	if !slot.transition(StateWriting, StateIdle) {
		return fmt.Errorf("%w: abandon slot %d in state %s", ErrInvariantViolation, frameID, slot.State())
	}
	return r.gate.Release()
}

// Close waits for every submitted frame to complete, then frees slot resources
// Safe to call more than once
func (r *Ring) Close(ctx context.Context) error {
	r.closed.Store(true)

	r.closeMu.Lock()
	defer r.closeMu.Unlock()
	if r.released {
		return nil
	}
	if err := r.gate.Drain(ctx); err != nil {
		return fmt.Errorf("frame: drain: %w", err)
	}
	r.releaseSlots()
	r.released = true
	r.logger.Debug("ring closed", zap.Uint64("frames", r.counter.Load()))
	return nil
}

func (r *Ring) releaseSlots() {
	for _, slot := range r.slots {
		slot.release()
	}
}
