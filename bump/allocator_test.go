package bump

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/gridshooter/gpu"
	"github.com/lixenwraith/gridshooter/vmath"
)

func newAllocator(t *testing.T, capacity int) *Allocator {
	t.Helper()
	a, err := New(gpu.DefaultDevice(), capacity, gpu.Shared)
	require.NoError(t, err)
	t.Cleanup(a.Release)
	return a
}

func TestAlignUp(t *testing.T) {
	tests := []struct {
		n, want uint64
	}{
		{0, 0}, {1, 8}, {7, 8}, {8, 8}, {9, 16}, {12, 16}, {64, 64},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AlignUp(tt.n, Alignment), "AlignUp(%d)", tt.n)
	}
}

func TestAllocate_OffsetsAreAligned(t *testing.T) {
	a := newAllocator(t, 1024)

	_, off0, err := Allocate[uint8](a, 3)
	require.NoError(t, err)
	_, off1, err := Allocate[vmath.Vec3](a, 1)
	require.NoError(t, err)
	_, off2, err := Allocate[vmath.Vec4](a, 2)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), off0)
	assert.Equal(t, uint64(8), off1)
	assert.Equal(t, uint64(24), off2)
	assert.Equal(t, uint64(56), a.Offset())
	for _, off := range []uint64{off0, off1, off2, a.Offset()} {
		assert.Zero(t, off%Alignment)
	}
}

func TestAllocate_ExactCapacityThenOverflow(t *testing.T) {
	a := newAllocator(t, 1024)

	block, off, err := Allocate[byte](a, 1024)
	require.NoError(t, err)
	assert.Len(t, block, 1024)
	assert.Equal(t, uint64(0), off)
	assert.Equal(t, a.Capacity(), a.Offset())

	_, _, err = Allocate[byte](a, 1)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, uint64(1024), a.Offset(), "offset unchanged on failure")
}

func TestAllocate_HugeRequestsDoNotWrap(t *testing.T) {
	a := newAllocator(t, 1024)
	_, _, err := Allocate[byte](a, 16)
	require.NoError(t, err)

	tests := []struct {
		name  string
		alloc func() error
	}{
		{"bytes near max", func() error { _, _, err := a.AllocateBytes(math.MaxUint64 - 3); return err }},
		{"bytes past remaining", func() error { _, _, err := a.AllocateBytes(1024 - 15); return err }},
		{"count times size wraps", func() error { _, _, err := Allocate[uint64](a, 1<<61); return err }},
		{"count past remaining", func() error { _, _, err := Allocate[vmath.Vec4](a, 64); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.alloc(), ErrCapacityExceeded)
			assert.Equal(t, uint64(16), a.Offset())
		})
	}
}

func TestAllocate_ViewAliasesBaseBuffer(t *testing.T) {
	a := newAllocator(t, 256)

	_, _, err := Allocate[uint64](a, 1)
	require.NoError(t, err)
	pts, off, err := Allocate[vmath.Vec4](a, 2)
	require.NoError(t, err)
	pts[1] = vmath.Point(1, 2, 3)

	view, ok := gpu.View[vmath.Vec4](a.BaseBuffer(), off, 2)
	require.True(t, ok)
	assert.Equal(t, vmath.Point(1, 2, 3), view[1])
}

func TestReset_ReproducesOffsets(t *testing.T) {
	a := newAllocator(t, 1024)

	sequence := func() []uint64 {
		var offs []uint64
		for _, n := range []int{1, 5, 17, 3} {
			_, off, err := Allocate[float32](a, n)
			require.NoError(t, err)
			offs = append(offs, off)
		}
		return offs
	}

	first := sequence()
	a.Reset()
	assert.Equal(t, uint64(0), a.Offset())
	assert.Equal(t, first, sequence())
	assert.Equal(t, a.Offset(), a.HighWater())
}

func TestMustAllocate_PanicsOnExhaustion(t *testing.T) {
	a := newAllocator(t, 16)
	assert.NotPanics(t, func() { MustAllocate[uint64](a, 2) })
	assert.Panics(t, func() { MustAllocate[uint64](a, 1) })
}

func TestNew_RejectsPrivateStorage(t *testing.T) {
	_, err := New(gpu.DefaultDevice(), 1024, gpu.ResourceOptions{Storage: gpu.StorageModePrivate})
	assert.ErrorIs(t, err, ErrPrivateStorage)

	_, err = New(gpu.DefaultDevice(), 0, gpu.Shared)
	assert.Error(t, err)
}

func TestNew_DeviceOutOfMemory(t *testing.T) {
	d := gpu.NewDevice(gpu.DeviceDescriptor{MemoryLimit: 512})
	_, err := New(d, 1024, gpu.Shared)
	assert.ErrorIs(t, err, gpu.ErrOutOfMemory)
}
