//go:build headless

package render

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/lixenwraith/gridshooter/input"
)

// ErrNoWindow is returned when the binary was built without window support
var ErrNoWindow = errors.New("render: window presenter not built (headless tag)")

// WindowConfig sizes the desktop window
type WindowConfig struct {
	Width  int
	Height int
	Title  string
}

// Window is unavailable in headless builds
type Window struct {
	Collector
}

func NewWindow(WindowConfig, *input.Controller, *zap.Logger) (*Window, error) {
	return nil, ErrNoWindow
}

func (w *Window) OnResize(func(width, height float32)) {}

func (w *Window) Size() (width, height float32) { return 0, 0 }

func (w *Window) Present() {}

func (w *Window) Run(context.Context) error { return ErrNoWindow }
