package gpu

import (
	"sync"
	"sync/atomic"
	"time"
)

// CommandBufferStatus tracks a command buffer through the queue
type CommandBufferStatus int32

const (
	StatusNotEnqueued CommandBufferStatus = iota
	StatusCommitted
	StatusScheduled
	StatusCompleted
	StatusError
)

func (s CommandBufferStatus) String() string {
	switch s {
	case StatusNotEnqueued:
		return "not-enqueued"
	case StatusCommitted:
		return "committed"
	case StatusScheduled:
		return "scheduled"
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Handler is invoked on the queue goroutine
type Handler func(cb *CommandBuffer)

// CommandBuffer collects encoded work for one submission
// Encoding and handler registration must happen on one goroutine before Commit
type CommandBuffer struct {
	queue     *CommandQueue
	label     string
	commands  []func() error
	scheduled []Handler
	completed []Handler
	status    atomic.Int32
	done      chan struct{}

	errMu sync.Mutex
	err   error
}

func (cb *CommandBuffer) Label() string { return cb.label }

func (cb *CommandBuffer) SetLabel(label string) { cb.label = label }

func (cb *CommandBuffer) Status() CommandBufferStatus {
	return CommandBufferStatus(cb.status.Load())
}

// Error returns the first execution error, if any
func (cb *CommandBuffer) Error() error {
	cb.errMu.Lock()
	defer cb.errMu.Unlock()
	return cb.err
}

func (cb *CommandBuffer) mustBeOpen(what string) {
	if cb.Status() != StatusNotEnqueued {
		panic("gpu: " + what + " after commit")
	}
}

func (cb *CommandBuffer) encode(cmd func() error) {
	cb.mustBeOpen("encode")
	cb.commands = append(cb.commands, cmd)
}

// AddScheduledHandler registers fn to run when the queue starts executing this buffer
func (cb *CommandBuffer) AddScheduledHandler(fn Handler) {
	cb.mustBeOpen("AddScheduledHandler")
	cb.scheduled = append(cb.scheduled, fn)
}

// AddCompletedHandler registers fn to run after every command finished
// Handlers of successive buffers on one queue run in commit order
func (cb *CommandBuffer) AddCompletedHandler(fn Handler) {
	cb.mustBeOpen("AddCompletedHandler")
	cb.completed = append(cb.completed, fn)
}

// PresentDrawable schedules d to be presented after the preceding commands
func (cb *CommandBuffer) PresentDrawable(d Drawable) {
	if d == nil {
		return
	}
	cb.encode(func() error {
		d.Present()
		return nil
	})
}

// Commit enqueues the buffer; it may block while the queue is at capacity
func (cb *CommandBuffer) Commit() error {
	if !cb.status.CompareAndSwap(int32(StatusNotEnqueued), int32(StatusCommitted)) {
		return ErrAlreadyCommitted
	}
	if err := cb.queue.enqueue(cb); err != nil {
		cb.status.Store(int32(StatusNotEnqueued))
		return err
	}
	return nil
}

// WaitUntilCompleted blocks until completed handlers have run
// Returns immediately for an uncommitted buffer
func (cb *CommandBuffer) WaitUntilCompleted() {
	if cb.Status() == StatusNotEnqueued {
		return
	}
	<-cb.done
}

// Done is closed once the buffer finished executing
func (cb *CommandBuffer) Done() <-chan struct{} { return cb.done }

func (cb *CommandBuffer) execute(latency time.Duration) {
	cb.status.Store(int32(StatusScheduled))
	for _, fn := range cb.scheduled {
		fn(cb)
	}
	if latency > 0 {
		time.Sleep(latency)
	}

	for _, cmd := range cb.commands {
		if err := cmd(); err != nil {
			cb.errMu.Lock()
			if cb.err == nil {
				cb.err = err
			}
			cb.errMu.Unlock()
		}
	}

	if cb.Error() != nil {
		cb.status.Store(int32(StatusError))
	} else {
		cb.status.Store(int32(StatusCompleted))
	}
	for _, fn := range cb.completed {
		fn(cb)
	}
	close(cb.done)
}
