package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
	"go.uber.org/zap"

	"github.com/lixenwraith/gridshooter/status"
)

// resampleQuality trades CPU for fidelity when asset and mixer rates differ
const resampleQuality = 4

// Deps are the engine's collaborators; nil members select defaults
type Deps struct {
	Output  Output
	Logger  *zap.Logger
	Metrics *status.Registry
}

// Engine plays named sound cues through a beep mixer
// Cues are decoded once into stereo buffers at the mixer rate
// Without a usable device the engine runs silent and drops cues
type Engine struct {
	cfg    Config
	rate   beep.SampleRate
	output Output
	logger *zap.Logger

	mixer  *beep.Mixer
	volume *effects.Volume

	mu     sync.RWMutex
	sounds map[string]*beep.Buffer

	running atomic.Bool
	muted   atomic.Bool
	silent  atomic.Bool

	played  atomic.Uint64
	dropped atomic.Uint64
	enabled *atomic.Bool
}

// NewEngine creates a stopped engine
func NewEngine(cfg Config, deps Deps) *Engine {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.BufferMillis <= 0 {
		cfg.BufferMillis = DefaultConfig().BufferMillis
	}
	cfg.MasterVolume = clampVolume(cfg.MasterVolume)

	out := deps.Output
	if out == nil {
		out = SpeakerOutput{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = status.NewRegistry()
	}

	mixer := &beep.Mixer{}
	e := &Engine{
		cfg:     cfg,
		rate:    beep.SampleRate(cfg.SampleRate),
		output:  out,
		logger:  logger.Named("audio"),
		mixer:   mixer,
		volume:  newVolume(mixer, cfg.MasterVolume),
		sounds:  make(map[string]*beep.Buffer),
		enabled: metrics.Bools.Get(status.AudioEnabled),
	}
	e.muted.Store(!cfg.Enabled)
	e.publish()
	return e
}

// SampleRate returns the mixer rate
func (e *Engine) SampleRate() beep.SampleRate { return e.rate }

// Start opens the output device
// A missing or failing device switches to silent mode and is not an error
func (e *Engine) Start() error {
	if !e.running.CompareAndSwap(false, true) {
		return nil
	}
	bufferSize := e.rate.N(time.Duration(e.cfg.BufferMillis) * time.Millisecond)
	if err := e.output.Init(e.rate, bufferSize); err != nil {
		e.silent.Store(true)
		e.logger.Warn("audio disabled", zap.Error(err))
		e.publish()
		return nil
	}
	e.output.Play(e.volume)
	e.logger.Debug("audio started", zap.Int("sample_rate", int(e.rate)), zap.Int("buffer", bufferSize))
	e.publish()
	return nil
}

// Stop silences all cues and closes the device; safe to call repeatedly
func (e *Engine) Stop() {
	if !e.running.CompareAndSwap(true, false) {
		return
	}
	if !e.silent.Load() {
		e.output.Lock()
		e.mixer.Clear()
		e.output.Unlock()
		e.output.Close()
	}
	e.publish()
}

// LoadStereoSound decodes an mp3 or wav stream into a stereo cue buffer named name
// The format is taken from the name's extension; rc is closed
func (e *Engine) LoadStereoSound(name string, rc io.ReadCloser) error {
	defer rc.Close()

	var (
		stream beep.StreamSeekCloser
		format beep.Format
		err    error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3":
		stream, format, err = mp3.Decode(rc)
	case ".wav":
		stream, format, err = wav.Decode(rc)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	if err != nil {
		return fmt.Errorf("audio: decode %s: %w", name, err)
	}
	defer stream.Close()

	var src beep.Streamer = stream
	if format.SampleRate != e.rate {
		src = beep.Resample(resampleQuality, format.SampleRate, e.rate, stream)
	}
	e.store(name, src)
	if err := stream.Err(); err != nil {
		return fmt.Errorf("audio: decode %s: %w", name, err)
	}
	return nil
}

// LoadSynth renders a finite synthesized cue under name
func (e *Engine) LoadSynth(name string, synth Synth) {
	e.store(name, synth(e.rate))
}

func (e *Engine) store(name string, s beep.Streamer) {
	buf := beep.NewBuffer(beep.Format{SampleRate: e.rate, NumChannels: 2, Precision: 2})
	buf.Append(s)
	e.mu.Lock()
	e.sounds[name] = buf
	e.mu.Unlock()
}

// LoadAssets loads each named cue from dir, falling back to its synth when the file is
// missing or unreadable; cues with neither are reported together
func (e *Engine) LoadAssets(dir string, cues map[string]Synth) error {
	var errs []error
	for name, synth := range cues {
		f, err := os.Open(filepath.Join(dir, name))
		if err == nil {
			err = e.LoadStereoSound(name, f)
		}
		if err == nil {
			continue
		}
		if synth == nil {
			errs = append(errs, err)
			continue
		}
		e.logger.Debug("using synthesized cue", zap.String("sound", name), zap.Error(err))
		e.LoadSynth(name, synth)
	}
	return errors.Join(errs...)
}

// Loaded reports whether a cue named name is available
func (e *Engine) Loaded(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.sounds[name]
	return ok
}

// Play starts cue name and reports whether it was mixed
func (e *Engine) Play(name string) bool {
	if !e.IsEnabled() {
		return false
	}
	e.mu.RLock()
	buf, ok := e.sounds[name]
	e.mu.RUnlock()
	if !ok {
		e.dropped.Add(1)
		e.logger.Debug("unknown sound", zap.String("sound", name))
		return false
	}

	e.output.Lock()
	e.mixer.Add(buf.Streamer(0, buf.Len()))
	e.output.Unlock()
	e.played.Add(1)
	return true
}

// PlaySoundEvent plays a cue, ignoring whether it was mixed
func (e *Engine) PlaySoundEvent(name string) {
	e.Play(name)
}

// ToggleMute flips mute and returns the new muted state
func (e *Engine) ToggleMute() bool {
	muted := !e.muted.Load()
	e.muted.Store(muted)
	e.output.Lock()
	e.volume.Silent = muted || e.cfg.MasterVolume <= 0
	e.output.Unlock()
	e.publish()
	return muted
}

// SetVolume sets master volume in [0, 1]
func (e *Engine) SetVolume(v float64) {
	v = clampVolume(v)
	e.output.Lock()
	e.cfg.MasterVolume = v
	e.volume.Silent = e.muted.Load() || v <= 0
	if v > 0 {
		e.volume.Volume = math.Log2(v)
	}
	e.output.Unlock()
}

// IsMuted returns current mute state
func (e *Engine) IsMuted() bool { return e.muted.Load() }

// IsRunning returns true after Start, even in silent mode
func (e *Engine) IsRunning() bool { return e.running.Load() }

// IsEnabled returns true if running on a device and unmuted
func (e *Engine) IsEnabled() bool {
	return e.running.Load() && !e.muted.Load() && !e.silent.Load()
}

// Active returns the number of cues still playing
func (e *Engine) Active() int {
	e.output.Lock()
	defer e.output.Unlock()
	return e.mixer.Len()
}

// Stats returns played and dropped cue counts
func (e *Engine) Stats() (played, dropped uint64) {
	return e.played.Load(), e.dropped.Load()
}

func (e *Engine) publish() {
	e.enabled.Store(e.IsEnabled())
}
