package render

import (
	"image/color"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/gridshooter/gpu"
	"github.com/lixenwraith/gridshooter/vmath"
)

// ReferenceBrightness is the brightness in nits that maps to unscaled colors
const ReferenceBrightness float32 = 500

// RGB is an 8-bit per channel color
type RGB struct {
	R, G, B uint8
}

var (
	RGBBlack = RGB{0, 0, 0}
	RGBWhite = RGB{255, 255, 255}
)

// clamp converts float to uint8 efficiently
func clamp(v float32) uint8 {
	if v >= 255.0 {
		return 255
	}
	if v <= 0.0 {
		return 0
	}
	return uint8(v)
}

// FromVec converts a unit-range color vector
func FromVec(v vmath.Vec3) RGB {
	return RGB{R: clamp(v.X * 255), G: clamp(v.Y * 255), B: clamp(v.Z * 255)}
}

// FromVec4 drops alpha and converts a unit-range color vector
func FromVec4(v vmath.Vec4) RGB {
	return FromVec(v.XYZ())
}

// Scale multiplies all channels by factor
func Scale(c RGB, factor float32) RGB {
	// Clamp to not wrap on factor > 1.0
	return RGB{
		R: clamp(float32(c.R) * factor),
		G: clamp(float32(c.G) * factor),
		B: clamp(float32(c.B) * factor),
	}
}

// Lerp linearly interpolates between two colors
// t=0 returns a, t=1 returns b
func Lerp(a, b RGB, t float32) RGB {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return RGB{
		R: uint8(float32(a.R) + t*float32(int(b.R)-int(a.R))),
		G: uint8(float32(a.G) + t*float32(int(b.G)-int(a.G))),
		B: uint8(float32(a.B) + t*float32(int(b.B)-int(a.B))),
	}
}

// Average returns the per-channel mean
func Average(cs ...RGB) RGB {
	if len(cs) == 0 {
		return RGBBlack
	}
	var r, g, b int
	for _, c := range cs {
		r += int(c.R)
		g += int(c.G)
		b += int(c.B)
	}
	n := len(cs)
	return RGB{uint8(r / n), uint8(g / n), uint8(b / n)}
}

// ToneFactor is the linear gain the frame tone parameters apply to a color
// Brightness is relative to ReferenceBrightness, bias is added, and the result is capped at MaxEDR
func ToneFactor(u gpu.FrameUniforms) float32 {
	f := u.Brightness/ReferenceBrightness + u.EDRBias
	limit := u.MaxEDR
	if limit <= 0 {
		limit = 1
	}
	return min(max(f, 0), limit)
}

// Tone applies the frame tone parameters to c
func Tone(c RGB, u gpu.FrameUniforms) RGB {
	return Scale(c, ToneFactor(u))
}

// Tcell converts to a terminal color
func (c RGB) Tcell() tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// Color converts to an opaque image color
func (c RGB) Color() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}
