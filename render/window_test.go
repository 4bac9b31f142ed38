//go:build !headless

package render

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/gridshooter/input"
)

func TestEbitenKeyLookup(t *testing.T) {
	kt := input.DefaultKeyTable()
	tests := []struct {
		key  ebiten.Key
		want input.Action
	}{
		{ebiten.KeyArrowLeft, input.ActionMoveLeft},
		{ebiten.KeyArrowUp, input.ActionFire},
		{ebiten.KeySpace, input.ActionFire},
		{ebiten.KeyM, input.ActionToggleMute},
		{ebiten.KeySemicolon, input.ActionCameraYawRight},
		{ebiten.KeyEscape, input.ActionQuit},
		{ebiten.KeyF1, input.ActionNone},
	}
	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, lookupEbitenKey(kt, tt.key))
		})
	}
}

func TestWindow_LayoutReportsResize(t *testing.T) {
	w, err := NewWindow(WindowConfig{Width: 640, Height: 480}, nil, nil)
	require.NoError(t, err)

	calls := 0
	w.OnResize(func(width, height float32) {
		calls++
		assert.Equal(t, float32(800), width)
		assert.Equal(t, float32(600), height)
	})

	gw, gh := w.Layout(640, 480)
	assert.Equal(t, 640, gw)
	assert.Equal(t, 480, gh)
	assert.Zero(t, calls)

	w.Layout(800, 600)
	w.Layout(800, 600)
	assert.Equal(t, 1, calls)

	width, height := w.Size()
	assert.Equal(t, float32(800), width)
	assert.Equal(t, float32(600), height)
}
