package core

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
)

var (
	crashMu       sync.Mutex
	crashCleanups []func()
	crashLogger   = zap.NewNop()
	crashExit     = os.Exit
)

// OnCrash registers fn to run before the process exits on a panic
// Presenters use it to restore the terminal or close the window
func OnCrash(fn func()) {
	crashMu.Lock()
	defer crashMu.Unlock()
	crashCleanups = append(crashCleanups, fn)
}

// SetCrashLogger routes crash reports to logger in addition to stderr
func SetCrashLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	crashMu.Lock()
	defer crashMu.Unlock()
	crashLogger = logger
}

// HandleCrash is the unified panic handler: runs cleanups, prints the stack trace and exits
func HandleCrash(r any) {
	if r == nil {
		return
	}

	crashMu.Lock()
	cleanups := append([]func(){}, crashCleanups...)
	logger := crashLogger
	crashMu.Unlock()

	// Cleanups run in reverse registration order, last-in restores first
	for i := len(cleanups) - 1; i >= 0; i-- {
		func() {
			defer func() { _ = recover() }()
			cleanups[i]()
		}()
	}

	stack := debug.Stack()
	logger.Error("crash", zap.Any("panic", r), zap.ByteString("stack", stack))
	_ = logger.Sync()

	fmt.Fprintf(os.Stderr, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", stack)
	os.Stderr.Sync()

	crashExit(1)
}

// Go runs a function in a new goroutine with panic recovery.
// Use this instead of the 'go' keyword so a crash anywhere restores the display.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
