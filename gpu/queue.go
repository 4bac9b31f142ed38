package gpu

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/gridshooter/core"
)

// DefaultMaxCommandBufferCount bounds uncompleted command buffers per queue
const DefaultMaxCommandBufferCount = 64

// QueueDescriptor configures a command queue
type QueueDescriptor struct {
	Label                 string
	MaxCommandBufferCount int
	// Latency simulates GPU execution time per command buffer
	Latency time.Duration
}

// CommandQueue executes committed command buffers one at a time, in commit order
type CommandQueue struct {
	device  *Device
	label   string
	latency time.Duration

	mu      sync.Mutex
	closed  bool
	pending chan *CommandBuffer
	done    chan struct{}

	residencyMu sync.Mutex
	residency   []*ResidencySet

	executed atomic.Uint64
}

// NewCommandQueue starts the queue's executor goroutine
func (d *Device) NewCommandQueue(desc QueueDescriptor) *CommandQueue {
	n := desc.MaxCommandBufferCount
	if n <= 0 {
		n = DefaultMaxCommandBufferCount
	}
	q := &CommandQueue{
		device:  d,
		label:   desc.Label,
		latency: desc.Latency,
		pending: make(chan *CommandBuffer, n),
		done:    make(chan struct{}),
	}
	core.Go(q.run)
	return q
}

func (q *CommandQueue) Device() *Device { return q.device }

func (q *CommandQueue) Label() string { return q.label }

// CommandBuffer creates an empty command buffer bound to this queue
func (q *CommandQueue) CommandBuffer() *CommandBuffer {
	return &CommandBuffer{queue: q, done: make(chan struct{})}
}

// AddResidencySet attaches a residency set to every buffer executed on the queue
func (q *CommandQueue) AddResidencySet(r *ResidencySet) {
	q.residencyMu.Lock()
	defer q.residencyMu.Unlock()
	q.residency = append(q.residency, r)
}

// ResidencySets returns the attached sets
func (q *CommandQueue) ResidencySets() []*ResidencySet {
	q.residencyMu.Lock()
	defer q.residencyMu.Unlock()
	return append([]*ResidencySet(nil), q.residency...)
}

// Executed returns the number of command buffers finished so far
func (q *CommandQueue) Executed() uint64 { return q.executed.Load() }

func (q *CommandQueue) enqueue(cb *CommandBuffer) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	q.pending <- cb
	return nil
}

func (q *CommandQueue) run() {
	defer close(q.done)
	for cb := range q.pending {
		cb.execute(q.latency)
		q.executed.Add(1)
	}
}

// Close rejects further commits and waits for committed work to finish
func (q *CommandQueue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.pending)
	}
	q.mu.Unlock()
	<-q.done
}
