// Package config loads the gridshooter TOML configuration
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/chewxy/math32"
	"github.com/pelletier/go-toml/v2"

	"github.com/lixenwraith/gridshooter/audio"
	"github.com/lixenwraith/gridshooter/bump"
	"github.com/lixenwraith/gridshooter/camera"
	"github.com/lixenwraith/gridshooter/engine"
	"github.com/lixenwraith/gridshooter/frame"
	"github.com/lixenwraith/gridshooter/game"
	"github.com/lixenwraith/gridshooter/input"
	"github.com/lixenwraith/gridshooter/logging"
	"github.com/lixenwraith/gridshooter/vmath"
)

// Duration decodes TOML strings such as "250ms"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// FrameConfig tunes the frame ring and the frame loop
type FrameConfig struct {
	BumpCapacity int      `toml:"bump_capacity"`
	GateTimeout  Duration `toml:"gate_timeout"`
	// TickRate is frames per second; zero runs frames back to back
	TickRate     int      `toml:"tick_rate"`
	QueueLatency Duration `toml:"queue_latency"`
}

type CameraConfig struct {
	Position   [3]float32 `toml:"position"`
	FovDegrees float32    `toml:"fov_degrees"`
	Near       float32    `toml:"near"`
	Far        float32    `toml:"far"`
}

type DisplayConfig struct {
	Brightness float32 `toml:"brightness"`
	MaxEDR     float32 `toml:"max_edr"`
	EDRBias    float32 `toml:"edr_bias"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

type StatusConfig struct {
	// MetricsAddr serves /metrics when set, e.g. ":9090"
	MetricsAddr string `toml:"metrics_addr"`
}

type HighScoreConfig struct {
	Path string `toml:"path"`
}

// Config is the whole configuration file
type Config struct {
	Game      game.Config     `toml:"game"`
	Frame     FrameConfig     `toml:"frame"`
	Audio     audio.Config    `toml:"audio"`
	Camera    CameraConfig    `toml:"camera"`
	Display   DisplayConfig   `toml:"display"`
	Window    WindowConfig    `toml:"window"`
	Status    StatusConfig    `toml:"status"`
	Logging   logging.Config  `toml:"logging"`
	HighScore HighScoreConfig `toml:"highscore"`

	// Keys binds runes to action names, SpecialKeys binds named keys
	Keys        map[string]string `toml:"keys"`
	SpecialKeys map[string]string `toml:"special_keys"`
}

// Default returns the standard configuration
func Default() Config {
	tone := game.DefaultTone()
	return Config{
		Game: game.DefaultConfig(),
		Frame: FrameConfig{
			BumpCapacity: frame.DefaultBumpCapacity,
			TickRate:     60,
		},
		Audio: audio.DefaultConfig(),
		Camera: CameraConfig{
			Position:   [3]float32{0, 0, 5},
			FovDegrees: 60,
			Near:       0.1,
			Far:        100,
		},
		Display: DisplayConfig{
			Brightness: tone.Brightness,
			MaxEDR:     tone.MaxEDR,
			EDRBias:    tone.EDRBias,
		},
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "gridshooter",
		},
		Logging:   logging.DefaultConfig(),
		HighScore: HighScoreConfig{Path: "highscore.toml"},
	}
}

// Load decodes path over Default and validates the result
// An empty path returns the defaults
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML data over Default and validates the result
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Config{}, fmt.Errorf("parse at %d:%d: %w", row, col, err)
		}
		return Config{}, fmt.Errorf("parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section
func (c Config) Validate() error {
	if err := c.Game.Validate(); err != nil {
		return err
	}
	switch {
	case c.Frame.BumpCapacity < bump.Alignment || c.Frame.BumpCapacity%bump.Alignment != 0:
		return fmt.Errorf("config: frame.bump_capacity %d must be a positive multiple of %d", c.Frame.BumpCapacity, bump.Alignment)
	case c.Frame.BumpCapacity < engine.MinBumpCapacity():
		return fmt.Errorf("config: frame.bump_capacity %d below the %d bytes a frame needs", c.Frame.BumpCapacity, engine.MinBumpCapacity())
	case c.Frame.GateTimeout.Duration < 0 || c.Frame.QueueLatency.Duration < 0:
		return fmt.Errorf("config: negative frame duration")
	case c.Frame.TickRate < 0:
		return fmt.Errorf("config: frame.tick_rate %d is negative", c.Frame.TickRate)
	case c.Camera.FovDegrees <= 0 || c.Camera.FovDegrees >= 180:
		return fmt.Errorf("config: camera.fov_degrees %g out of range", c.Camera.FovDegrees)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("config: camera near %g far %g", c.Camera.Near, c.Camera.Far)
	case c.Display.Brightness < 0 || c.Display.MaxEDR <= 0:
		return fmt.Errorf("config: display brightness %g max_edr %g", c.Display.Brightness, c.Display.MaxEDR)
	case c.Audio.MasterVolume < 0 || c.Audio.MasterVolume > 1:
		return fmt.Errorf("config: audio.master_volume %g outside [0,1]", c.Audio.MasterVolume)
	}
	if _, err := c.KeyTable(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Interval is the frame loop pacing derived from TickRate
func (c Config) Interval() time.Duration {
	if c.Frame.TickRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.Frame.TickRate)
}

// FrameOptions returns ring sizing; layout, logger and metrics are filled in by the caller
func (c Config) FrameOptions() frame.Options {
	return frame.Options{
		BumpCapacity: c.Frame.BumpCapacity,
		GateTimeout:  c.Frame.GateTimeout.Duration,
	}
}

// Tone returns the display settings
func (c Config) Tone() game.Tone {
	return game.Tone{
		Brightness: c.Display.Brightness,
		MaxEDR:     c.Display.MaxEDR,
		EDRBias:    c.Display.EDRBias,
	}
}

// NewCamera builds the demo camera looking down -Z
func (c Config) NewCamera() *camera.Camera {
	cam := &camera.Camera{}
	p := c.Camera.Position
	cam.InitPerspective(
		vmath.V3(p[0], p[1], p[2]),
		vmath.V3(0, 0, -1),
		vmath.V3(0, 1, 0),
		c.Camera.FovDegrees*math32.Pi/180,
		1,
		c.Camera.Near,
		c.Camera.Far,
	)
	return cam
}

// KeyTable merges the configured bindings over the defaults
func (c Config) KeyTable() (*input.KeyTable, error) {
	override, err := input.KeyTableFromMaps(c.Keys, c.SpecialKeys)
	if err != nil {
		return nil, err
	}
	return input.MergeKeyTable(input.DefaultKeyTable(), override), nil
}
