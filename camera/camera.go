package camera

import (
	"github.com/chewxy/math32"

	"github.com/lixenwraith/gridshooter/vmath"
)

// Uniforms are the matrices a frame needs from the camera
type Uniforms struct {
	View           vmath.Mat4
	Projection     vmath.Mat4
	ViewProjection vmath.Mat4
}

// Camera is a right-handed perspective camera
// Not safe for concurrent use
type Camera struct {
	position vmath.Vec3
	forward  vmath.Vec3
	up       vmath.Vec3

	fovY   float32
	aspect float32
	near   float32
	far    float32
}

// Default matches the demo scene: 5 units back, looking down -Z, 60° vertical fov
func Default() *Camera {
	c := &Camera{}
	c.InitPerspective(
		vmath.V3(0, 0, 5),
		vmath.V3(0, 0, -1),
		vmath.V3(0, 1, 0),
		math32.Pi/3,
		1,
		0.1,
		100,
	)
	return c
}

// InitPerspective sets every camera parameter; forward and up are orthonormalized
func (c *Camera) InitPerspective(position, forward, up vmath.Vec3, fovY, aspect, near, far float32) {
	c.position = position
	c.forward = vmath.V3Normalize(forward)
	right := vmath.V3Normalize(vmath.V3Cross(c.forward, up))
	c.up = vmath.V3Cross(right, c.forward)
	c.fovY = fovY
	c.aspect = aspect
	c.near = near
	c.far = far
}

func (c *Camera) Position() vmath.Vec3 { return c.position }

func (c *Camera) SetPosition(p vmath.Vec3) { c.position = p }

func (c *Camera) Forward() vmath.Vec3 { return c.forward }

func (c *Camera) Up() vmath.Vec3 { return c.up }

// Right is forward x up
func (c *Camera) Right() vmath.Vec3 {
	return vmath.V3Normalize(vmath.V3Cross(c.forward, c.up))
}

func (c *Camera) AspectRatio() float32 { return c.aspect }

// SetAspectRatio ignores non-positive values
func (c *Camera) SetAspectRatio(aspect float32) {
	if aspect > 0 {
		c.aspect = aspect
	}
}

// Move translates the camera in world space
func (c *Camera) Move(delta vmath.Vec3) {
	c.position = vmath.V3Add(c.position, delta)
}

// RotateOnAxis rotates the view direction about a world-space axis
func (c *Camera) RotateOnAxis(axis vmath.Vec3, angle float32) {
	if angle == 0 || vmath.V3Mag(axis) == 0 {
		return
	}
	r := vmath.RotationAxis(axis, angle)
	c.forward = vmath.V3Normalize(r.MulVec(vmath.V4(c.forward.X, c.forward.Y, c.forward.Z, 0)).XYZ())
	c.up = vmath.V3Normalize(r.MulVec(vmath.V4(c.up.X, c.up.Y, c.up.Z, 0)).XYZ())
}

// Rotate applies yaw about world Y, then pitch about the camera's right axis
func (c *Camera) Rotate(deltaYaw, deltaPitch float32) {
	c.RotateOnAxis(vmath.V3(0, 1, 0), deltaYaw)
	c.RotateOnAxis(c.Right(), deltaPitch)
}

// ViewMatrix looks from the position along forward
func (c *Camera) ViewMatrix() vmath.Mat4 {
	return vmath.LookAt(c.position, vmath.V3Add(c.position, c.forward), c.up)
}

// ProjectionMatrix is the perspective projection
func (c *Camera) ProjectionMatrix() vmath.Mat4 {
	return vmath.MakePerspective(c.fovY, c.aspect, c.near, c.far)
}

// Uniforms returns view, projection and their product
func (c *Camera) Uniforms() Uniforms {
	view := c.ViewMatrix()
	proj := c.ProjectionMatrix()
	return Uniforms{View: view, Projection: proj, ViewProjection: proj.Mul(view)}
}
