package frame

import (
	"fmt"
	"sync/atomic"

	"github.com/lixenwraith/gridshooter/bump"
	"github.com/lixenwraith/gridshooter/gpu"
)

// SlotState tracks a slot through one frame
type SlotState int32

const (
	// StateIdle means no pending GPU work references the slot
	StateIdle SlotState = iota
	// StateWriting means the CPU owns the slot for the current frame
	StateWriting
	// StateSubmitted means the frame was committed and awaits scheduling
	StateSubmitted
	// StateInFlight means the GPU is executing the frame
	StateInFlight
)

func (s SlotState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWriting:
		return "writing"
	case StateSubmitted:
		return "submitted"
	case StateInFlight:
		return "in-flight"
	}
	return "unknown"
}

// BufferSpec names and sizes one per-slot buffer
type BufferSpec struct {
	Name string
	Size int
}

// Slot is one frame's worth of GPU-visible resources
// Nothing in a slot is shared with another slot
type Slot struct {
	index   uint8
	heap    *gpu.Heap
	buffers map[string]*gpu.Buffer
	order   []*gpu.Buffer
	bump    *bump.Allocator
	state   atomic.Int32
}

// HeapSize returns the heap footprint of a layout on device
func HeapSize(device *gpu.Device, layout []BufferSpec) int {
	total := 0
	for _, spec := range layout {
		size, align := device.HeapBufferSizeAndAlign(spec.Size)
		total = alignUp(total, align) + size
	}
	return total
}

func alignUp(n, alignment int) int {
	return (n + alignment - 1) &^ (alignment - 1)
}

func newSlot(device *gpu.Device, index uint8, layout []BufferSpec, bumpCapacity int) (*Slot, error) {
	s := &Slot{index: index, buffers: make(map[string]*gpu.Buffer, len(layout))}

	opts := gpu.ResourceOptions{Storage: gpu.StorageModeShared, HazardTracking: gpu.HazardTrackingUntracked}
	if len(layout) > 0 {
		heap, err := device.NewHeap(gpu.HeapDescriptor{
			Size:    HeapSize(device, layout),
			Options: opts,
			Label:   fmt.Sprintf("frameHeap%d", index),
		})
		if err != nil {
			return nil, fmt.Errorf("slot %d heap: %w", index, err)
		}
		s.heap = heap

		for _, spec := range layout {
			if _, dup := s.buffers[spec.Name]; dup {
				s.release()
				return nil, fmt.Errorf("slot %d: duplicate buffer %q", index, spec.Name)
			}
			buf, err := heap.NewBuffer(spec.Size, opts)
			if err != nil {
				s.release()
				return nil, fmt.Errorf("slot %d buffer %q: %w", index, spec.Name, err)
			}
			buf.SetLabel(spec.Name + "Buf")
			s.buffers[spec.Name] = buf
			s.order = append(s.order, buf)
		}
	}

	alloc, err := bump.New(device, bumpCapacity, gpu.Shared)
	if err != nil {
		s.release()
		return nil, fmt.Errorf("slot %d: %w", index, err)
	}
	s.bump = alloc
	return s, nil
}

// Index returns the slot's position in the ring
func (s *Slot) Index() uint8 { return s.index }

// Heap returns the heap backing the slot's fixed buffers
func (s *Slot) Heap() *gpu.Heap { return s.heap }

// Buffer returns the buffer created for name, nil if the layout has none
func (s *Slot) Buffer(name string) *gpu.Buffer { return s.buffers[name] }

// Buffers returns the fixed buffers in layout order
func (s *Slot) Buffers() []*gpu.Buffer { return s.order }

// Bump returns the slot's scratch allocator
func (s *Slot) Bump() *bump.Allocator { return s.bump }

func (s *Slot) State() SlotState { return SlotState(s.state.Load()) }

func (s *Slot) transition(from, to SlotState) bool {
	return s.state.CompareAndSwap(int32(from), int32(to))
}

func (s *Slot) allocations() []gpu.Allocation {
	var out []gpu.Allocation
	if s.heap != nil {
		out = append(out, s.heap)
	}
	for _, b := range s.order {
		out = append(out, b)
	}
	if s.bump != nil {
		out = append(out, s.bump.BaseBuffer())
	}
	return out
}

func (s *Slot) release() {
	if s.bump != nil {
		s.bump.Release()
	}
	if s.heap != nil {
		s.heap.Release()
	}
}

// Write copies vals into the named buffer starting at element 0
// Returns ErrInvariantViolation if the slot is not being written or the data does not fit
func Write[T any](s *Slot, name string, vals []T) error {
	if s.State() != StateWriting {
		return fmt.Errorf("%w: write to slot %d in state %s", ErrInvariantViolation, s.index, s.State())
	}
	buf := s.buffers[name]
	if buf == nil {
		return fmt.Errorf("%w: slot %d has no buffer %q", ErrInvariantViolation, s.index, name)
	}
	dst, ok := gpu.View[T](buf, 0, len(vals))
	if !ok {
		return fmt.Errorf("%w: %d elements overflow buffer %q", ErrInvariantViolation, len(vals), name)
	}
	copy(dst, vals)
	return nil
}
