package game

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is returned when a game is restarted before Initialize
	ErrNotInitialized = errors.New("game: restart before initialize")

	// ErrInvariantViolation reports corrupted simulation bookkeeping
	ErrInvariantViolation = errors.New("game: invariant violation")
)

func invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvariantViolation}, args...)...)
}
