package vmath

import "github.com/chewxy/math32"

// Vec2 is a float32 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 is a float32 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 is a float32 4D vector, laid out to match a GPU float4
// Game entities store their position in XY; Z carries per-instance data (asset variant), W is 1
type Vec4 struct {
	X, Y, Z, W float32
}

func V2(x, y float32) Vec2 { return Vec2{x, y} }

func V2Sub(a, b Vec2) Vec2 {
	return Vec2{a.X - b.X, a.Y - b.Y}
}

func V2Len(v Vec2) float32 {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y)
}

// V2Distance is the Euclidean distance between two points on the XY plane
func V2Distance(a, b Vec2) float32 {
	return V2Len(V2Sub(a, b))
}

func V3(x, y, z float32) Vec3 { return Vec3{x, y, z} }

func V3Add(a, b Vec3) Vec3 {
	return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func V3Sub(a, b Vec3) Vec3 {
	return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func V3Scale(v Vec3, s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func V3Dot(a, b Vec3) float32 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func V3Cross(a, b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func V3Mag(v Vec3) float32 {
	return math32.Sqrt(V3Dot(v, v))
}

// V3Normalize returns the unit vector of v, zero vector stays zero
func V3Normalize(v Vec3) Vec3 {
	mag := V3Mag(v)
	if mag == 0 {
		return Vec3{}
	}
	inv := 1 / mag
	return Vec3{v.X * inv, v.Y * inv, v.Z * inv}
}

func V4(x, y, z, w float32) Vec4 { return Vec4{x, y, z, w} }

// Point returns a homogeneous position (w = 1)
func Point(x, y, z float32) Vec4 { return Vec4{x, y, z, 1} }

// XY drops Z and W
func (v Vec4) XY() Vec2 { return Vec2{v.X, v.Y} }

// XYZ drops W
func (v Vec4) XYZ() Vec3 { return Vec3{v.X, v.Y, v.Z} }

func V4Add(a, b Vec4) Vec4 {
	return Vec4{a.X + b.X, a.Y + b.Y, a.Z + b.Z, a.W + b.W}
}

func V4Scale(v Vec4, s float32) Vec4 {
	return Vec4{v.X * s, v.Y * s, v.Z * s, v.W * s}
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
