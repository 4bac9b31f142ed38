package gpu

import "errors"

var (
	// ErrOutOfMemory is returned when a device or heap cannot satisfy an allocation
	ErrOutOfMemory = errors.New("gpu: out of memory")

	// ErrQueueClosed is returned when committing to a queue that has shut down
	ErrQueueClosed = errors.New("gpu: command queue closed")

	// ErrAlreadyCommitted is returned when a command buffer is committed twice
	ErrAlreadyCommitted = errors.New("gpu: command buffer already committed")

	// ErrBindingOutOfRange is recorded on a command buffer whose draw reads past a buffer end
	ErrBindingOutOfRange = errors.New("gpu: buffer binding out of range")

	// ErrReleased is returned when allocating from a released heap
	ErrReleased = errors.New("gpu: resource released")
)
