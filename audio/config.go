package audio

import (
	"os"
	"strconv"
)

// DefaultSampleRate is the mixer rate; decoded assets are resampled to it
const DefaultSampleRate = 48000

// Config controls the audio engine
type Config struct {
	// Enabled false starts muted
	Enabled      bool    `toml:"enabled"`
	AssetDir     string  `toml:"asset_dir"`
	MasterVolume float64 `toml:"master_volume"`
	SampleRate   int     `toml:"sample_rate"`
	// BufferMillis is the speaker buffer length
	BufferMillis int `toml:"buffer_ms"`
}

// DefaultConfig returns the standard audio settings
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		AssetDir:     "assets",
		MasterVolume: 0.8,
		SampleRate:   DefaultSampleRate,
		BufferMillis: 100,
	}
}

// ApplyEnv overrides cfg from GRIDSHOOTER_AUDIO_* environment variables
func (cfg Config) ApplyEnv() Config {
	if v := os.Getenv("GRIDSHOOTER_AUDIO_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Enabled = b
		}
	}
	// 0-100 mapped to 0.0-1.0
	if v := os.Getenv("GRIDSHOOTER_AUDIO_VOLUME"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MasterVolume = clampVolume(float64(n) / 100)
		}
	}
	if v := os.Getenv("GRIDSHOOTER_AUDIO_ASSETS"); v != "" {
		cfg.AssetDir = v
	}
	if v := os.Getenv("GRIDSHOOTER_AUDIO_SAMPLE_RATE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SampleRate = n
		}
	}
	return cfg
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
