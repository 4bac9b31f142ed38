package render

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/lixenwraith/gridshooter/core"
	"github.com/lixenwraith/gridshooter/gpu"
	"github.com/lixenwraith/gridshooter/input"
)

// CellAspect is the height of a terminal cell relative to its width
const CellAspect = 2

// tcellKeys translates named terminal keys; runes go through the rune table
var tcellKeys = map[tcell.Key]input.Key{
	tcell.KeyLeft:   input.KeyLeft,
	tcell.KeyRight:  input.KeyRight,
	tcell.KeyUp:     input.KeyUp,
	tcell.KeyDown:   input.KeyDown,
	tcell.KeyEnter:  input.KeyEnter,
	tcell.KeyEscape: input.KeyEscape,
	tcell.KeyCtrlC:  input.KeyCtrlC,
	tcell.KeyCtrlQ:  input.KeyCtrlQ,
	tcell.KeyPgUp:   input.KeyPageUp,
	tcell.KeyPgDn:   input.KeyPageDown,
	tcell.KeyTab:    input.KeyTab,
}

// Terminal presents frames as characters on a tcell screen and feeds its key events to a controller
type Terminal struct {
	Collector

	screen     tcell.Screen
	controller *input.Controller
	logger     *zap.Logger

	resizeMu sync.Mutex
	onResize func(width, height float32)

	presents atomic.Uint64
	finiOnce sync.Once
}

var _ gpu.Drawable = (*Terminal)(nil)

// NewTerminal initializes screen, a new terminal screen when nil
// The screen is restored on crash and by Fini
func NewTerminal(screen tcell.Screen, controller *input.Controller, logger *zap.Logger) (*Terminal, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, err
		}
		screen = s
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.SetStyle(tcell.StyleDefault.Background(rgbBackground.Tcell()))
	screen.HideCursor()
	screen.Clear()

	t := &Terminal{
		screen:     screen,
		controller: controller,
		logger:     logger,
	}
	core.OnCrash(t.Fini)
	return t, nil
}

// Screen returns the underlying tcell screen
func (t *Terminal) Screen() tcell.Screen { return t.screen }

// OnResize registers a callback receiving the surface size in cell-width units
func (t *Terminal) OnResize(fn func(width, height float32)) {
	t.resizeMu.Lock()
	t.onResize = fn
	t.resizeMu.Unlock()
}

// Size returns the surface size scaled so width/height is the visual aspect ratio
func (t *Terminal) Size() (width, height float32) {
	cols, rows := t.screen.Size()
	return float32(cols), float32(rows * CellAspect)
}

// Present draws the latest completed frame and flushes the screen
func (t *Terminal) Present() {
	n := t.presents.Add(1)
	f, ok := t.Latest()
	if !ok {
		return
	}
	cols, rows := t.screen.Size()
	grid := Grid{Cols: cols, Rows: rows}

	bg := rgbBackground
	if u, ok := f.Uniforms(); ok {
		bg = Tone(FromVec4(f.ClearColor), u)
	}
	base := tcell.StyleDefault.Background(bg.Tcell())
	t.screen.Fill(' ', base)

	offset := 0
	if t.controller != nil && t.controller.HapticIntensity() > 0 {
		offset = 1
		if n%2 == 0 {
			offset = -1
		}
	}
	Rasterize(f, grid, offset, func(x, y int, glyph rune, fg RGB) {
		t.screen.SetContent(x, y, glyph, nil, base.Foreground(fg.Tcell()))
	})
	t.screen.Show()
}

// Presents is the number of Present calls
func (t *Terminal) Presents() uint64 {
	return t.presents.Load()
}

// Run polls terminal events until ctx is done or the screen is finalized
func (t *Terminal) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 64)
	done := make(chan struct{})
	core.Go(func() {
		defer close(events)
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	})
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			t.Fini()
			return nil
		case ev, ok := <-events:
			if !ok {
				return ErrClosed
			}
			t.handle(ev)
		}
	}
}

func (t *Terminal) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if t.controller == nil {
			return
		}
		if ev.Key() == tcell.KeyRune {
			t.controller.HandleRune(ev.Rune())
			return
		}
		if k, ok := tcellKeys[ev.Key()]; ok {
			t.controller.HandleKey(k)
		}
	case *tcell.EventResize:
		t.screen.Sync()
		w, h := t.Size()
		t.logger.Debug("terminal resized", zap.Float32("width", w), zap.Float32("height", h))
		t.resizeMu.Lock()
		fn := t.onResize
		t.resizeMu.Unlock()
		if fn != nil {
			fn(w, h)
		}
	}
}

// Fini restores the terminal, safe to call more than once
func (t *Terminal) Fini() {
	t.finiOnce.Do(t.screen.Fini)
}
