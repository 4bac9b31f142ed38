package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"

	"github.com/lixenwraith/gridshooter/vmath"
)

func assertVec3(t *testing.T, want, got vmath.Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-5)
	assert.InDelta(t, want.Y, got.Y, 1e-5)
	assert.InDelta(t, want.Z, got.Z, 1e-5)
}

func TestDefault(t *testing.T) {
	c := Default()
	assertVec3(t, vmath.V3(0, 0, 5), c.Position())
	assertVec3(t, vmath.V3(0, 0, -1), c.Forward())
	assertVec3(t, vmath.V3(0, 1, 0), c.Up())
	assertVec3(t, vmath.V3(1, 0, 0), c.Right())
	assert.Equal(t, float32(1), c.AspectRatio())
}

func TestMoveAndAspect(t *testing.T) {
	c := Default()
	c.Move(vmath.V3(1, -2, 0.5))
	assertVec3(t, vmath.V3(1, -2, 5.5), c.Position())

	c.SetAspectRatio(16.0 / 9.0)
	assert.InDelta(t, 16.0/9.0, c.AspectRatio(), 1e-6)
	c.SetAspectRatio(0)
	assert.InDelta(t, 16.0/9.0, c.AspectRatio(), 1e-6)
}

func TestRotate_YawQuarterTurn(t *testing.T) {
	c := Default()
	c.Rotate(math32.Pi/2, 0)
	// Counter-clockwise about +Y turns -Z into -X
	assertVec3(t, vmath.V3(-1, 0, 0), c.Forward())
	assertVec3(t, vmath.V3(0, 1, 0), c.Up())
}

func TestRotate_PitchKeepsBasisOrthonormal(t *testing.T) {
	c := Default()
	c.Rotate(0.3, 0.2)
	assert.InDelta(t, 1, vmath.V3Mag(c.Forward()), 1e-5)
	assert.InDelta(t, 0, vmath.V3Dot(c.Forward(), c.Up()), 1e-5)
	assert.Greater(t, c.Forward().Y, float32(0), "positive pitch looks up")
}

func TestUniforms_ProjectsOriginToCenter(t *testing.T) {
	c := Default()
	u := c.Uniforms()
	clip := u.ViewProjection.MulVec(vmath.Point(0, 0, 0))
	assert.InDelta(t, 0, clip.X/clip.W, 1e-5)
	assert.InDelta(t, 0, clip.Y/clip.W, 1e-5)
	depth := clip.Z / clip.W
	assert.True(t, depth > 0 && depth < 1, "depth %v in (0,1)", depth)
}
