package vmath

import "github.com/chewxy/math32"

// Mat4 is a column-major 4x4 float32 matrix matching the GPU float4x4 layout
type Mat4 [4]Vec4

// Identity returns the identity matrix
func Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// MulVec transforms v by m
func (m Mat4) MulVec(v Vec4) Vec4 {
	return Vec4{
		m[0].X*v.X + m[1].X*v.Y + m[2].X*v.Z + m[3].X*v.W,
		m[0].Y*v.X + m[1].Y*v.Y + m[2].Y*v.Z + m[3].Y*v.W,
		m[0].Z*v.X + m[1].Z*v.Y + m[2].Z*v.Z + m[3].Z*v.W,
		m[0].W*v.X + m[1].W*v.Y + m[2].W*v.Z + m[3].W*v.W,
	}
}

// Mul returns a*b (b applied first)
func (a Mat4) Mul(b Mat4) Mat4 {
	var r Mat4
	for i := range b {
		r[i] = a.MulVec(b[i])
	}
	return r
}

// MakeOrtho builds an orthographic projection mapping depth to [0, 1]
// Argument order follows (left, right, top, bottom, near, far)
func MakeOrtho(left, right, top, bottom, near, far float32) Mat4 {
	return Mat4{
		{2 / (right - left), 0, 0, 0},
		{0, 2 / (top - bottom), 0, 0},
		{0, 0, 1 / (far - near), 0},
		{(left + right) / (left - right), (top + bottom) / (bottom - top), near / (near - far), 1},
	}
}

// MakePerspective builds a right-handed perspective projection with depth in [0, 1]
func MakePerspective(fovY, aspect, near, far float32) Mat4 {
	ys := 1 / math32.Tan(fovY*0.5)
	xs := ys / aspect
	zs := far / (near - far)
	return Mat4{
		{xs, 0, 0, 0},
		{0, ys, 0, 0},
		{0, 0, zs, -1},
		{0, 0, zs * near, 0},
	}
}

// LookAt builds a right-handed view matrix
func LookAt(eye, center, up Vec3) Mat4 {
	f := V3Normalize(V3Sub(center, eye))
	s := V3Normalize(V3Cross(f, up))
	u := V3Cross(s, f)
	return Mat4{
		{s.X, u.X, -f.X, 0},
		{s.Y, u.Y, -f.Y, 0},
		{s.Z, u.Z, -f.Z, 0},
		{-V3Dot(s, eye), -V3Dot(u, eye), V3Dot(f, eye), 1},
	}
}

// RotationY rotates about the Y axis
func RotationY(angle float32) Mat4 {
	c, s := math32.Cos(angle), math32.Sin(angle)
	return Mat4{
		{c, 0, s, 0},
		{0, 1, 0, 0},
		{-s, 0, c, 0},
		{0, 0, 0, 1},
	}
}

// RotationAxis rotates about an arbitrary axis (normalized internally)
func RotationAxis(axis Vec3, angle float32) Mat4 {
	a := V3Normalize(axis)
	c, s := math32.Cos(angle), math32.Sin(angle)
	t := 1 - c
	return Mat4{
		{t*a.X*a.X + c, t*a.X*a.Y + s*a.Z, t*a.X*a.Z - s*a.Y, 0},
		{t*a.X*a.Y - s*a.Z, t*a.Y*a.Y + c, t*a.Y*a.Z + s*a.X, 0},
		{t*a.X*a.Z + s*a.Y, t*a.Y*a.Z - s*a.X, t*a.Z*a.Z + c, 0},
		{0, 0, 0, 1},
	}
}

// Translation moves by t
func Translation(t Vec3) Mat4 {
	m := Identity()
	m[3] = Vec4{t.X, t.Y, t.Z, 1}
	return m
}
