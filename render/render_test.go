package render

import (
	"context"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/gridshooter/game"
	"github.com/lixenwraith/gridshooter/gpu"
	"github.com/lixenwraith/gridshooter/input"
	"github.com/lixenwraith/gridshooter/vmath"
)

var canvas = vmath.MakeOrtho(-5, 5, 5, -5, -1, 1)

func uniforms() gpu.FrameUniforms {
	return gpu.FrameUniforms{Projection: canvas, Brightness: ReferenceBrightness, MaxEDR: 1}
}

func testFrame() *Frame {
	return &Frame{
		Label:      "test",
		ClearColor: vmath.V4(0.1, 0.1, 0.1, 1),
		Sprites: []gpu.SpriteBatch{{
			Texture:    game.EnemyTexture,
			Uniforms:   uniforms(),
			SpriteSize: vmath.V2(0.5, 0.5),
			Instances:  []vmath.Vec4{vmath.Point(0.1, 0.1, 0)},
		}},
		Text: []gpu.TextBatch{{
			Uniforms: uniforms(),
			Lines:    []gpu.TextLine{{Position: vmath.V2(-4.8, 4.7), Text: "SCORE 7"}},
		}},
	}
}

type cellMap map[[2]int]rune

func rasterize(f *Frame, grid Grid, offset int) cellMap {
	cells := cellMap{}
	Rasterize(f, grid, offset, func(x, y int, glyph rune, _ RGB) {
		cells[[2]int{x, y}] = glyph
	})
	return cells
}

func TestGrid_FromNDC(t *testing.T) {
	g := Grid{Cols: 80, Rows: 24}
	c, r := g.FromNDC(-1, 1)
	assert.InDelta(t, 0, c, 1e-5)
	assert.InDelta(t, 0, r, 1e-5)
	c, r = g.FromNDC(1, -1)
	assert.InDelta(t, 80, c, 1e-5)
	assert.InDelta(t, 24, r, 1e-5)
	c, r = g.FromNDC(0, 0)
	assert.InDelta(t, 40, c, 1e-5)
	assert.InDelta(t, 12, r, 1e-5)
}

func TestGrid_ProjectBehindEye(t *testing.T) {
	g := Grid{Cols: 10, Rows: 10}
	proj := vmath.MakePerspective(1, 1, 0.1, 10)
	_, _, ok := g.Project(proj, vmath.Point(0, 0, 1))
	assert.False(t, ok)
	_, _, ok = g.Project(proj, vmath.Point(0, 0, -1))
	assert.True(t, ok)
}

func TestGrid_SpriteRect(t *testing.T) {
	g := Grid{Cols: 80, Rows: 40}
	r := g.SpriteRect(canvas, vmath.Point(0.1, 0.1, 0), vmath.V2(0.5, 0.5))
	assert.Equal(t, Rect{X0: 38, Y0: 18, X1: 42, Y1: 20}, r)

	// Clipped at the left edge
	r = g.SpriteRect(canvas, vmath.Point(-5, 0.1, 0), vmath.V2(0.5, 0.5))
	assert.Equal(t, 0, r.X0)
	assert.False(t, r.Empty())

	// Entirely off the grid
	r = g.SpriteRect(canvas, vmath.Point(-8, 0.1, 0), vmath.V2(0.5, 0.5))
	assert.True(t, r.Empty())
}

func TestLine(t *testing.T) {
	var pts [][2]int
	Line(0, 0, 4, 0, func(x, y int) { pts = append(pts, [2]int{x, y}) })
	assert.Len(t, pts, 5)

	pts = pts[:0]
	Line(3, 3, 0, 0, func(x, y int) { pts = append(pts, [2]int{x, y}) })
	assert.Equal(t, [][2]int{{3, 3}, {2, 2}, {1, 1}, {0, 0}}, pts)
}

func TestTone(t *testing.T) {
	u := gpu.FrameUniforms{Brightness: 250, MaxEDR: 1}
	assert.InDelta(t, 0.5, ToneFactor(u), 1e-5)
	assert.Equal(t, RGB{100, 50, 0}, Tone(RGB{200, 100, 0}, u))

	u = gpu.FrameUniforms{Brightness: 1000, MaxEDR: 1}
	assert.InDelta(t, 1, ToneFactor(u), 1e-5)

	u = gpu.FrameUniforms{Brightness: 1000, MaxEDR: 4, EDRBias: 0.5}
	assert.InDelta(t, 2.5, ToneFactor(u), 1e-5)
	assert.Equal(t, RGBWhite, Tone(RGB{200, 200, 200}, u))

	u = gpu.FrameUniforms{Brightness: 0, MaxEDR: 1}
	assert.Equal(t, RGBBlack, Tone(RGBWhite, u))
}

func TestLerpAndAverage(t *testing.T) {
	assert.Equal(t, RGB{50, 50, 50}, Lerp(RGBBlack, RGB{100, 100, 100}, 0.5))
	assert.Equal(t, RGBBlack, Lerp(RGBBlack, RGBWhite, -1))
	assert.Equal(t, RGB{50, 100, 0}, Average(RGB{0, 200, 0}, RGB{100, 0, 0}))
	assert.Equal(t, RGBBlack, Average())
}

func TestCollector_AssemblesPasses(t *testing.T) {
	var c Collector
	_, ok := c.Latest()
	assert.False(t, ok)

	// Draws outside a pass are dropped
	c.DrawSprites(gpu.SpriteBatch{Texture: game.PlayerTexture})
	c.EndPass()
	assert.Zero(t, c.Passes())

	c.BeginPass(gpu.FrameInfo{Label: "frame 0"})
	c.DrawSprites(gpu.SpriteBatch{Texture: game.EnemyTexture, Instances: make([]vmath.Vec4, 3)})
	c.DrawSprites(gpu.SpriteBatch{Texture: game.EnemyTexture, Instances: make([]vmath.Vec4, 2)})
	c.DrawMesh(gpu.MeshBatch{})
	c.DrawText(gpu.TextBatch{Lines: []gpu.TextLine{{Text: "a"}, {Text: "b"}}})

	// Pending frame is not visible until the pass ends
	_, ok = c.Latest()
	assert.False(t, ok)

	c.EndPass()
	f, ok := c.Latest()
	require.True(t, ok)
	assert.Equal(t, "frame 0", f.Label)
	assert.Equal(t, 5, f.SpriteCount(game.EnemyTexture))
	assert.Zero(t, f.SpriteCount(game.PlayerTexture))
	assert.Len(t, f.Meshes, 1)
	assert.Equal(t, []string{"a", "b"}, f.Lines())
	assert.Equal(t, uint64(1), c.Passes())
}

func TestRecorder_KeepsRecentFrames(t *testing.T) {
	r := NewRecorder(2)
	var seen []string
	r.OnPresent(func(f *Frame) { seen = append(seen, f.Label) })

	// Present before any pass records nothing
	r.Present()
	assert.Empty(t, r.Frames())

	for _, label := range []string{"a", "b", "c"} {
		r.BeginPass(gpu.FrameInfo{Label: label})
		r.EndPass()
		r.Present()
	}
	frames := r.Frames()
	require.Len(t, frames, 2)
	assert.Equal(t, "b", frames[0].Label)
	assert.Equal(t, "c", frames[1].Label)
	assert.Equal(t, []string{"a", "b", "c"}, seen)
	assert.Equal(t, uint64(4), r.Presented())
}

func TestRasterize_SpritesAndText(t *testing.T) {
	grid := Grid{Cols: 80, Rows: 24}
	cells := rasterize(testFrame(), grid, 0)

	for i, r := range "SCORE 7" {
		assert.Equal(t, r, cells[[2]int{1 + i, 0}], "text column %d", i)
	}

	enemies := 0
	for pos, g := range cells {
		if g == 'W' {
			enemies++
			assert.True(t, pos[0] >= 38 && pos[0] <= 42, "enemy column %d", pos[0])
			assert.True(t, pos[1] >= 11 && pos[1] <= 12, "enemy row %d", pos[1])
		}
	}
	assert.Equal(t, 10, enemies)
}

func TestRasterize_ShakeOffsetAndClip(t *testing.T) {
	grid := Grid{Cols: 80, Rows: 24}
	cells := rasterize(testFrame(), grid, -1)
	// Text shifted one column left starts at the grid edge
	assert.Equal(t, 'S', cells[[2]int{0, 0}])
	for pos := range cells {
		assert.True(t, grid.Contains(pos[0], pos[1]))
	}
}

func TestRasterize_Mesh(t *testing.T) {
	f := &Frame{Meshes: []gpu.MeshBatch{{
		Vertices: []gpu.Vertex{
			{Position: vmath.V3(-0.5, -0.5, 0), Color: vmath.V3(1, 0, 0)},
			{Position: vmath.V3(0.5, -0.5, 0), Color: vmath.V3(0, 1, 0)},
			{Position: vmath.V3(0, 0.5, 0), Color: vmath.V3(0, 0, 1)},
		},
		Indices:   []uint16{0, 1, 2},
		Instances: []gpu.CubeUniforms{{ModelViewProjection: vmath.Identity(), Model: vmath.Identity()}},
	}}}
	cells := rasterize(f, Grid{Cols: 80, Rows: 24}, 0)
	assert.Equal(t, 'o', cells[[2]int{40, 6}])
	assert.Equal(t, 'o', cells[[2]int{20, 18}])
	assert.Equal(t, 'o', cells[[2]int{60, 18}])
	assert.Equal(t, '·', cells[[2]int{40, 18}])
}

func TestRasterize_StarsScroll(t *testing.T) {
	batch := func(y float32) *Frame {
		return &Frame{Sprites: []gpu.SpriteBatch{{
			Texture:    game.BackgroundTexture,
			Uniforms:   uniforms(),
			SpriteSize: vmath.V2(10, 10),
			Instances:  []vmath.Vec4{vmath.Point(0, y, 0)},
		}}}
	}
	grid := Grid{Cols: 40, Rows: 20}
	still := rasterize(batch(0), grid, 0)
	require.NotEmpty(t, still)

	// Moving the background down one row unit shifts every star down two rows
	moved := rasterize(batch(-1), grid, 0)
	for pos := range still {
		if pos[1]+2 < grid.Rows {
			assert.Equal(t, '.', moved[[2]int{pos[0], pos[1] + 2}])
		}
	}
}

func newSimTerminal(t *testing.T, ctrl *input.Controller) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	term, err := NewTerminal(screen, ctrl, nil)
	require.NoError(t, err)
	screen.SetSize(80, 24)
	t.Cleanup(term.Fini)
	return term, screen
}

func TestTerminal_PresentDrawsLatestFrame(t *testing.T) {
	term, screen := newSimTerminal(t, nil)

	// Present with no frame is a no-op
	term.Present()
	assert.Equal(t, uint64(1), term.Presents())

	f := testFrame()
	term.BeginPass(gpu.FrameInfo{Label: f.Label, ClearColor: f.ClearColor})
	for _, s := range f.Sprites {
		term.DrawSprites(s)
	}
	for _, tb := range f.Text {
		term.DrawText(tb)
	}
	term.EndPass()
	term.Present()

	r, _, _, _ := screen.GetContent(1, 0)
	assert.Equal(t, 'S', r)
	r, _, _, _ = screen.GetContent(40, 11)
	assert.Equal(t, 'W', r)
	r, _, _, _ = screen.GetContent(70, 20)
	assert.Equal(t, ' ', r)
}

func TestTerminal_KeysFeedController(t *testing.T) {
	ctrl := input.NewController(nil, time.Second)
	term, _ := newSimTerminal(t, ctrl)

	term.handle(tcell.NewEventKey(tcell.KeyRune, 'm', tcell.ModNone))
	select {
	case a := <-ctrl.Intents():
		assert.Equal(t, input.ActionToggleMute, a)
	default:
		t.Fatal("expected mute intent")
	}

	term.handle(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone))
	assert.Equal(t, float32(-1), ctrl.State().MoveX)

	term.handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	assert.Equal(t, input.ActionQuit, <-ctrl.Intents())
}

func TestTerminal_ResizeCallback(t *testing.T) {
	term, screen := newSimTerminal(t, nil)
	var gotW, gotH float32
	term.OnResize(func(w, h float32) { gotW, gotH = w, h })

	screen.SetSize(100, 30)
	term.handle(tcell.NewEventResize(100, 30))
	assert.Equal(t, float32(100), gotW)
	assert.Equal(t, float32(60), gotH)
}

func TestTerminal_RunStopsOnCancel(t *testing.T) {
	term, _ := newSimTerminal(t, input.NewController(nil, 0))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- term.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
