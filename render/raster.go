package render

import (
	"github.com/lixenwraith/gridshooter/game"
	"github.com/lixenwraith/gridshooter/gpu"
	"github.com/lixenwraith/gridshooter/vmath"
)

// PlotFunc writes one cell; x and y are always on the grid
type PlotFunc func(x, y int, glyph rune, fg RGB)

// Rasterize draws a frame onto a character grid in submission order
// offsetX shifts everything horizontally, used for haptic shake
func Rasterize(f *Frame, grid Grid, offsetX int, plot PlotFunc) {
	guarded := func(x, y int, glyph rune, fg RGB) {
		x += offsetX
		if grid.Contains(x, y) {
			plot(x, y, glyph, fg)
		}
	}

	for _, b := range f.Sprites {
		if b.Texture == game.BackgroundTexture {
			rasterizeStars(b, grid, guarded)
			continue
		}
		rasterizeSprites(b, grid, guarded)
	}
	for _, m := range f.Meshes {
		rasterizeMesh(m, grid, guarded)
	}
	for _, t := range f.Text {
		rasterizeText(t, grid, guarded)
	}
}

func rasterizeSprites(b gpu.SpriteBatch, grid Grid, plot PlotFunc) {
	look := Appear(b.Texture)
	fg := Tone(look.Color, b.Uniforms)
	for _, p := range b.Instances {
		r := grid.SpriteRect(b.Uniforms.Projection, p, b.SpriteSize)
		if r.Empty() {
			continue
		}
		for y := r.Y0; y <= r.Y1; y++ {
			for x := r.X0; x <= r.X1; x++ {
				plot(x, y, look.Glyph, fg)
			}
		}
	}
}

// rasterizeStars scrolls a fixed star field by the background instance offset
func rasterizeStars(b gpu.SpriteBatch, grid Grid, plot PlotFunc) {
	if len(b.Instances) == 0 {
		return
	}
	look := Appear(game.BackgroundTexture)
	fg := Tone(look.Color, b.Uniforms)
	proj := b.Uniforms.Projection
	_, base, ok0 := grid.Project(proj, vmath.Point(0, 0, 0))
	_, moved, ok1 := grid.Project(proj, vmath.Point(0, b.Instances[0].Y, 0))
	if !ok0 || !ok1 {
		return
	}
	shift := int(moved - base)
	for y := 0; y < grid.Rows; y++ {
		for x := 0; x < grid.Cols; x++ {
			if starAt(x, y-shift) {
				plot(x, y, look.Glyph, fg)
			}
		}
	}
}

func rasterizeMesh(m gpu.MeshBatch, grid Grid, plot PlotFunc) {
	type cell struct {
		x, y int
		ok   bool
	}
	cells := make([]cell, len(m.Vertices))
	colors := make([]RGB, len(m.Vertices))
	for i, v := range m.Vertices {
		colors[i] = FromVec(v.Color)
	}
	// Segments far outside the grid are dropped rather than clipped
	reach := func(c cell) bool {
		return c.ok && c.x > -grid.Cols && c.x < 2*grid.Cols && c.y > -grid.Rows && c.y < 2*grid.Rows
	}

	for _, inst := range m.Instances {
		for i, v := range m.Vertices {
			x, y, ok := grid.Cell(inst.ModelViewProjection, vmath.Point(v.Position.X, v.Position.Y, v.Position.Z))
			cells[i] = cell{x, y, ok}
		}
		for t := 0; t+2 < len(m.Indices); t += 3 {
			tri := [3]uint16{m.Indices[t], m.Indices[t+1], m.Indices[t+2]}
			for e := 0; e < 3; e++ {
				a, b := int(tri[e]), int(tri[(e+1)%3])
				if a >= len(cells) || b >= len(cells) {
					continue
				}
				ca, cb := cells[a], cells[b]
				if !reach(ca) || !reach(cb) {
					continue
				}
				fg := Average(colors[a], colors[b])
				Line(ca.x, ca.y, cb.x, cb.y, func(x, y int) {
					plot(x, y, '·', fg)
				})
			}
		}
		for i, c := range cells {
			if reach(c) && i < len(colors) {
				plot(c.x, c.y, 'o', rgbCubeVertex)
			}
		}
	}
}

func rasterizeText(b gpu.TextBatch, grid Grid, plot PlotFunc) {
	fg := Tone(rgbText, b.Uniforms)
	for _, line := range b.Lines {
		x, y, ok := grid.Cell(b.Uniforms.Projection, vmath.Point(line.Position.X, line.Position.Y, 0))
		if !ok {
			continue
		}
		for i, r := range []rune(line.Text) {
			plot(x+i, y, r, fg)
		}
	}
}
