package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lixenwraith/gridshooter/config"
	"github.com/lixenwraith/gridshooter/input"
)

func setFlag[T any](t *testing.T, p *T, v T) {
	t.Helper()
	old := *p
	*p = v
	t.Cleanup(func() { *p = old })
}

func TestApplyFlags(t *testing.T) {
	setFlag(t, assetsFlag, "/srv/sfx")
	setFlag(t, debugFlag, true)
	setFlag(t, metricsFlag, ":9100")
	setFlag(t, highScoreFlag, "/tmp/hs.toml")

	cfg := config.Default()
	applyFlags(&cfg)
	assert.Equal(t, "/srv/sfx", cfg.Audio.AssetDir)
	assert.True(t, cfg.Logging.Debug)
	assert.Equal(t, ":9100", cfg.Status.MetricsAddr)
	assert.Equal(t, "/tmp/hs.toml", cfg.HighScore.Path)
}

func TestNewPresenter_Headless(t *testing.T) {
	setFlag(t, frontendFlag, "headless")
	cfg := config.Default()
	p, err := newPresenter(cfg, input.NewController(nil, 0), zap.NewNop())
	require.NoError(t, err)

	w, h := p.Size()
	assert.Equal(t, float32(1920), w)
	assert.Equal(t, float32(1080), h)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.NoError(t, p.Run(ctx))
}

func TestNewPresenter_Unknown(t *testing.T) {
	setFlag(t, frontendFlag, "hologram")
	_, err := newPresenter(config.Default(), nil, zap.NewNop())
	assert.Error(t, err)
}

func TestPlay_HeadlessRunsFrames(t *testing.T) {
	setFlag(t, frontendFlag, "headless")
	setFlag(t, framesFlag, uint64(30))
	setFlag(t, muteFlag, true)

	cfg := config.Default()
	cfg.Frame.TickRate = 0
	cfg.Audio.Enabled = false
	cfg.Audio.AssetDir = t.TempDir()
	cfg.HighScore.Path = t.TempDir() + "/highscore.toml"
	require.NoError(t, play(cfg, "test-session", zap.NewNop()))
}
