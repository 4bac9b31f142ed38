package vmath

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

const eps = 1e-5

func TestV2Distance(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec2
		want float32
	}{
		{"same point", V2(1, 1), V2(1, 1), 0},
		{"horizontal", V2(0, 0), V2(0.3, 0), 0.3},
		{"3-4-5", V2(0, 0), V2(3, 4), 5},
		{"negative", V2(-1, -1), V2(2, 3), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, V2Distance(tt.a, tt.b), eps)
		})
	}
}

func TestV3Normalize_Zero(t *testing.T) {
	assert.Equal(t, Vec3{}, V3Normalize(Vec3{}))
	n := V3Normalize(V3(0, 3, 4))
	assert.InDelta(t, 1, V3Mag(n), eps)
}

func TestMakeOrtho_MapsCanvasCorners(t *testing.T) {
	m := MakeOrtho(-5, 5, 3, -3, -1, 1)

	tr := m.MulVec(Point(5, 3, 0))
	assert.InDelta(t, 1, tr.X, eps)
	assert.InDelta(t, 1, tr.Y, eps)

	bl := m.MulVec(Point(-5, -3, 0))
	assert.InDelta(t, -1, bl.X, eps)
	assert.InDelta(t, -1, bl.Y, eps)

	center := m.MulVec(Point(0, 0, 0))
	assert.InDelta(t, 0, center.X, eps)
	assert.InDelta(t, 0, center.Y, eps)
	assert.InDelta(t, 0.5, center.Z, eps)
}

func TestRotationY_Quarter(t *testing.T) {
	m := RotationY(math32.Pi / 2)
	v := m.MulVec(Point(1, 0, 0))
	assert.InDelta(t, 0, v.X, eps)
	assert.InDelta(t, 1, v.Z, eps)
}

func TestRotationAxis_MatchesRotationY(t *testing.T) {
	angle := float32(0.7)
	a := RotationAxis(V3(0, 1, 0), angle)
	b := RotationY(angle)
	p := Point(0.3, -1.2, 2.5)
	va, vb := a.MulVec(p), b.MulVec(p)
	assert.InDelta(t, vb.X, va.X, eps)
	assert.InDelta(t, vb.Y, va.Y, eps)
	assert.InDelta(t, vb.Z, va.Z, eps)
}

func TestMul_IdentityAndTranslation(t *testing.T) {
	tr := Translation(V3(1, 2, 3))
	assert.Equal(t, tr, Identity().Mul(tr))
	assert.Equal(t, tr, tr.Mul(Identity()))

	v := tr.Mul(Translation(V3(1, 1, 1))).MulVec(Point(0, 0, 0))
	assert.Equal(t, Point(2, 3, 4), v)
}

func TestLookAt_EyeToOrigin(t *testing.T) {
	view := LookAt(V3(0, 0, 5), V3(0, 0, 0), V3(0, 1, 0))
	v := view.MulVec(Point(0, 0, 0))
	assert.InDelta(t, 0, v.X, eps)
	assert.InDelta(t, 0, v.Y, eps)
	assert.InDelta(t, -5, v.Z, eps)
}

func TestFastRand_BitAndSeed(t *testing.T) {
	r := NewFastRand(0)
	seen := map[uint64]bool{}
	for i := 0; i < 64; i++ {
		b := r.Bit()
		assert.LessOrEqual(t, b, uint64(1))
		seen[b] = true
	}
	assert.Len(t, seen, 2)
	assert.Equal(t, 0, r.Intn(0))
}
