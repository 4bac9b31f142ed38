//go:build !headless

package render

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	"github.com/lixenwraith/gridshooter/game"
	"github.com/lixenwraith/gridshooter/gpu"
	"github.com/lixenwraith/gridshooter/input"
	"github.com/lixenwraith/gridshooter/vmath"
)

// WindowConfig sizes the desktop window
type WindowConfig struct {
	Width  int
	Height int
	Title  string
}

var ebitenKeys = map[ebiten.Key]input.Key{
	ebiten.KeyArrowLeft:  input.KeyLeft,
	ebiten.KeyArrowRight: input.KeyRight,
	ebiten.KeyArrowUp:    input.KeyUp,
	ebiten.KeyArrowDown:  input.KeyDown,
	ebiten.KeyEnter:      input.KeyEnter,
	ebiten.KeyEscape:     input.KeyEscape,
	ebiten.KeyPageUp:     input.KeyPageUp,
	ebiten.KeyPageDown:   input.KeyPageDown,
	ebiten.KeyTab:        input.KeyTab,
}

var ebitenRuneNames = map[string]rune{
	"Space":     ' ',
	"Semicolon": ';',
	"Backslash": '\\',
}

// Window presents frames in a desktop window drawn with ebiten
// Key presses and releases map to controller Press and Release
type Window struct {
	Collector

	cfg        WindowConfig
	controller *input.Controller
	logger     *zap.Logger

	mu       sync.Mutex
	width    int
	height   int
	onResize func(width, height float32)

	presents atomic.Uint64
	draws    uint64
	closed   atomic.Bool
	keys     []ebiten.Key
}

var _ gpu.Drawable = (*Window)(nil)

// NewWindow creates a window presenter; the window opens on Run
func NewWindow(cfg WindowConfig, controller *input.Controller, logger *zap.Logger) (*Window, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 1280, 720
	}
	if cfg.Title == "" {
		cfg.Title = "gridshooter"
	}
	return &Window{
		cfg:        cfg,
		controller: controller,
		logger:     logger,
		width:      cfg.Width,
		height:     cfg.Height,
	}, nil
}

// OnResize registers a callback receiving the window size in pixels
func (w *Window) OnResize(fn func(width, height float32)) {
	w.mu.Lock()
	w.onResize = fn
	w.mu.Unlock()
}

// Size returns the current window size in pixels
func (w *Window) Size() (width, height float32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return float32(w.width), float32(w.height)
}

// Present marks a frame ready; ebiten redraws the latest frame on its own cadence
func (w *Window) Present() {
	w.presents.Add(1)
}

// Run opens the window and blocks until it closes or ctx is done
// ebiten must own the main goroutine on some platforms
func (w *Window) Run(ctx context.Context) error {
	ebiten.SetWindowSize(w.cfg.Width, w.cfg.Height)
	ebiten.SetWindowTitle(w.cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetRunnableOnUnfocused(true)

	stop := context.AfterFunc(ctx, func() { w.closed.Store(true) })
	defer stop()

	err := ebiten.RunGame(w)
	if errors.Is(err, ebiten.Termination) {
		err = nil
	}
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return nil
	}
	return ErrClosed
}

// Update polls keyboard state
func (w *Window) Update() error {
	if w.closed.Load() || ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	if w.controller == nil {
		return nil
	}
	kt := w.controller.KeyTable()

	w.keys = inpututil.AppendJustPressedKeys(w.keys[:0])
	for _, k := range w.keys {
		if a := lookupEbitenKey(kt, k); a != input.ActionNone {
			w.controller.Press(a)
		}
	}
	w.keys = inpututil.AppendJustReleasedKeys(w.keys[:0])
	for _, k := range w.keys {
		if a := lookupEbitenKey(kt, k); a.IsHeld() {
			w.controller.Release(a)
		}
	}
	return nil
}

func lookupEbitenKey(kt *input.KeyTable, k ebiten.Key) input.Action {
	if named, ok := ebitenKeys[k]; ok {
		return kt.LookupKey(named)
	}
	if r, ok := ebitenKeyRune(k); ok {
		return kt.LookupRune(r)
	}
	return input.ActionNone
}

// ebitenKeyRune resolves letter and punctuation keys through their names
func ebitenKeyRune(k ebiten.Key) (rune, bool) {
	name := k.String()
	if r, ok := ebitenRuneNames[name]; ok {
		return r, true
	}
	if len(name) == 1 {
		return []rune(strings.ToLower(name))[0], true
	}
	if strings.HasPrefix(name, "Digit") && len(name) == 6 {
		return rune(name[5]), true
	}
	return 0, false
}

// Draw paints the latest completed frame
func (w *Window) Draw(screen *ebiten.Image) {
	w.draws++
	f, ok := w.Latest()
	if !ok {
		screen.Fill(rgbBackground.Color())
		return
	}
	u, _ := f.Uniforms()
	screen.Fill(Tone(FromVec4(f.ClearColor), u).Color())

	bounds := screen.Bounds()
	grid := Grid{Cols: bounds.Dx(), Rows: bounds.Dy()}

	var shake float32
	if w.controller != nil {
		if h := w.controller.HapticIntensity(); h > 0 {
			shake = 6 * h
			if w.draws%2 == 0 {
				shake = -shake
			}
		}
	}

	for _, b := range f.Sprites {
		w.drawSprites(screen, grid, b, shake)
	}
	for _, m := range f.Meshes {
		drawMeshLines(screen, grid, m)
	}
	for _, t := range f.Text {
		for _, line := range t.Lines {
			x, y, ok := grid.Cell(t.Uniforms.Projection, vmath.Point(line.Position.X, line.Position.Y, 0))
			if ok {
				ebitenutil.DebugPrintAt(screen, line.Text, x, y)
			}
		}
	}
}

func (w *Window) drawSprites(screen *ebiten.Image, grid Grid, b gpu.SpriteBatch, shake float32) {
	look := Appear(b.Texture)
	clr := Tone(look.Color, b.Uniforms).Color()
	if b.Texture == game.BackgroundTexture {
		rasterizeStars(b, Grid{Cols: grid.Cols / 8, Rows: grid.Rows / 8}, func(x, y int, _ rune, fg RGB) {
			vector.DrawFilledRect(screen, float32(x*8), float32(y*8), 2, 2, fg.Color(), false)
		})
		return
	}
	for _, p := range b.Instances {
		r := grid.SpriteRect(b.Uniforms.Projection, p, b.SpriteSize)
		if r.Empty() {
			continue
		}
		x, y := float32(r.X0)+shake, float32(r.Y0)
		sw, sh := float32(r.X1-r.X0+1), float32(r.Y1-r.Y0+1)
		if b.Texture == game.ExplosionTexture {
			vector.DrawFilledCircle(screen, x+sw/2, y+sh/2, min(sw, sh)/2, clr, true)
			continue
		}
		vector.DrawFilledRect(screen, x, y, sw, sh, clr, false)
	}
}

func drawMeshLines(screen *ebiten.Image, grid Grid, m gpu.MeshBatch) {
	for _, inst := range m.Instances {
		pts := make([][2]float32, len(m.Vertices))
		visible := make([]bool, len(m.Vertices))
		for i, v := range m.Vertices {
			c, r, ok := grid.Project(inst.ModelViewProjection, vmath.Point(v.Position.X, v.Position.Y, v.Position.Z))
			pts[i] = [2]float32{c, r}
			visible[i] = ok
		}
		for t := 0; t+2 < len(m.Indices); t += 3 {
			for e := 0; e < 3; e++ {
				a, b := int(m.Indices[t+e]), int(m.Indices[t+(e+1)%3])
				if a >= len(pts) || b >= len(pts) || !visible[a] || !visible[b] {
					continue
				}
				clr := Average(FromVec(m.Vertices[a].Color), FromVec(m.Vertices[b].Color)).Color()
				vector.StrokeLine(screen, pts[a][0], pts[a][1], pts[b][0], pts[b][1], 1.5, clr, true)
			}
		}
	}
}

// Layout tracks the outside size and reports resizes
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	w.mu.Lock()
	changed := outsideWidth != w.width || outsideHeight != w.height
	w.width, w.height = outsideWidth, outsideHeight
	fn := w.onResize
	w.mu.Unlock()
	if changed && fn != nil && outsideWidth > 0 && outsideHeight > 0 {
		w.logger.Debug("window resized", zap.Int("width", outsideWidth), zap.Int("height", outsideHeight))
		fn(float32(outsideWidth), float32(outsideHeight))
	}
	return outsideWidth, outsideHeight
}

// Presents is the number of Present calls
func (w *Window) Presents() uint64 {
	return w.presents.Load()
}
