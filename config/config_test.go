package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/gridshooter/input"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint8(4), cfg.Game.EnemyRows)
	assert.Equal(t, 1024, cfg.Frame.BumpCapacity)
	assert.Equal(t, time.Second/60, cfg.Interval())
	assert.Equal(t, float32(500), cfg.Tone().Brightness)
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Game, cfg.Game)
}

func TestParse_OverridesSections(t *testing.T) {
	data := []byte(`
[game]
enemy_rows = 2
enemy_cols = 3
enemy_speed = 2.5

[frame]
bump_capacity = 2048
gate_timeout = "250ms"
tick_rate = 0

[display]
brightness = 800

[camera]
position = [1.0, 2.0, 8.0]

[status]
metrics_addr = ":9090"

[keys]
f = "fire"
h = "none"

[special_keys]
down = "toggle_pause"
`)
	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, uint8(2), cfg.Game.EnemyRows)
	assert.Equal(t, uint8(3), cfg.Game.EnemyCols)
	assert.Equal(t, float32(2.5), cfg.Game.EnemySpeed)
	// Unset fields keep their defaults
	assert.Equal(t, float32(5), cfg.Game.PlayerSpeed)

	assert.Equal(t, 2048, cfg.Frame.BumpCapacity)
	assert.Equal(t, 250*time.Millisecond, cfg.FrameOptions().GateTimeout)
	assert.Zero(t, cfg.Interval())
	assert.Equal(t, float32(800), cfg.Tone().Brightness)
	assert.Equal(t, ":9090", cfg.Status.MetricsAddr)

	cam := cfg.NewCamera()
	assert.Equal(t, float32(8), cam.Position().Z)

	kt, err := cfg.KeyTable()
	require.NoError(t, err)
	assert.Equal(t, input.ActionFire, kt.LookupRune('f'))
	assert.Equal(t, input.ActionNone, kt.LookupRune('h'))
	assert.Equal(t, input.ActionMoveLeft, kt.LookupRune('a'))
	assert.Equal(t, input.ActionTogglePause, kt.LookupKey(input.KeyDown))
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", `[game`},
		{"enemy grid overflow", "[game]\nenemy_rows = 16\nenemy_cols = 16"},
		{"unaligned bump", "[frame]\nbump_capacity = 1000"},
		{"bump below frame need", "[frame]\nbump_capacity = 64"},
		{"bad duration", "[frame]\ngate_timeout = \"soon\""},
		{"bad fov", "[camera]\nfov_degrees = 0"},
		{"unknown action", "[keys]\nf = \"teleport\""},
		{"unknown key name", "[special_keys]\nf13 = \"fire\""},
		{"volume", "[audio]\nmaster_volume = 2.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridshooter.toml")
	require.NoError(t, os.WriteFile(path, []byte("[window]\nwidth = 800\n"), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
