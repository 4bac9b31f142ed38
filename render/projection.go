package render

import (
	"github.com/chewxy/math32"
	"github.com/lixenwraith/gridshooter/vmath"
)

// Grid maps normalized device coordinates onto a discrete surface of Cols x Rows cells
// Cells are terminal characters or window pixels
type Grid struct {
	Cols, Rows int
}

// FromNDC returns the fractional cell position of an NDC point
// NDC y points up; row 0 is the top of the surface
func (g Grid) FromNDC(x, y float32) (col, row float32) {
	col = (x + 1) * 0.5 * float32(g.Cols)
	row = (1 - y) * 0.5 * float32(g.Rows)
	return col, row
}

// Project transforms p by m and returns its fractional cell position
// ok is false when the point lies behind the eye
func (g Grid) Project(m vmath.Mat4, p vmath.Vec4) (col, row float32, ok bool) {
	clip := m.MulVec(p)
	if clip.W <= 1e-6 {
		return 0, 0, false
	}
	col, row = g.FromNDC(clip.X/clip.W, clip.Y/clip.W)
	return col, row, true
}

// Cell projects p and truncates to an integer cell, which may lie outside the grid
func (g Grid) Cell(m vmath.Mat4, p vmath.Vec4) (x, y int, ok bool) {
	col, row, ok := g.Project(m, p)
	if !ok {
		return 0, 0, false
	}
	return int(math32.Floor(col)), int(math32.Floor(row)), true
}

// Contains reports whether the cell lies on the grid
func (g Grid) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Cols && y < g.Rows
}

// Rect is an inclusive cell rectangle
type Rect struct {
	X0, Y0, X1, Y1 int
}

// Empty reports whether the rectangle covers no cells
func (r Rect) Empty() bool {
	return r.X1 < r.X0 || r.Y1 < r.Y0
}

// SpriteRect returns the cells covered by a quad of size centered on center, clipped to the grid
func (g Grid) SpriteRect(m vmath.Mat4, center vmath.Vec4, size vmath.Vec2) Rect {
	hx, hy := size.X*0.5, size.Y*0.5
	c0, r0, ok0 := g.Project(m, vmath.Point(center.X-hx, center.Y+hy, 0))
	c1, r1, ok1 := g.Project(m, vmath.Point(center.X+hx, center.Y-hy, 0))
	if !ok0 || !ok1 {
		return Rect{0, 0, -1, -1}
	}
	r := Rect{
		X0: int(math32.Floor(min(c0, c1))),
		Y0: int(math32.Floor(min(r0, r1))),
		X1: int(math32.Ceil(max(c0, c1))) - 1,
		Y1: int(math32.Ceil(max(r0, r1))) - 1,
	}
	// Quads thinner than a cell still cover the cell holding their center
	if r.X1 < r.X0 {
		r.X1 = r.X0
	}
	if r.Y1 < r.Y0 {
		r.Y1 = r.Y0
	}
	r.X0 = max(r.X0, 0)
	r.Y0 = max(r.Y0, 0)
	r.X1 = min(r.X1, g.Cols-1)
	r.Y1 = min(r.Y1, g.Rows-1)
	return r
}

// Line calls plot for each cell on the segment between two cells
func Line(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
