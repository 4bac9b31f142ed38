package frame

import "errors"

var (
	// ErrInvariantViolation signals a broken gate or slot state machine
	ErrInvariantViolation = errors.New("frame: invariant violation")

	// ErrGateTimeout is returned when the diagnostic gate timeout elapses
	ErrGateTimeout = errors.New("frame: timed out waiting for a free frame slot")

	// ErrRingClosed is returned by BeginFrame after Close
	ErrRingClosed = errors.New("frame: ring closed")
)
