package audio

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Service wraps Engine as a service.Service
// Handles graceful degradation: when audio cannot start, cues become no-ops
type Service struct {
	cfg  Config
	cues map[string]Synth
	deps Deps

	engine   *Engine
	disabled atomic.Bool
}

// NewService creates an audio service that loads cues on Init
// cues maps asset file names to their synthesized fallbacks
func NewService(cfg Config, cues map[string]Synth, deps Deps) *Service {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Service{cfg: cfg, cues: cues, deps: deps}
}

// Name implements service.Service
func (s *Service) Name() string { return "audio" }

// Dependencies implements service.Service
func (s *Service) Dependencies() []string { return nil }

// Init implements service.Service
// args[0]: bool, true starts muted regardless of config
func (s *Service) Init(args ...any) error {
	cfg := s.cfg
	if len(args) > 0 {
		if muted, ok := args[0].(bool); ok && muted {
			cfg.Enabled = false
		}
	}
	s.engine = NewEngine(cfg, s.deps)
	if err := s.engine.LoadAssets(cfg.AssetDir, s.cues); err != nil {
		s.deps.Logger.Warn("some sounds unavailable", zap.Error(err))
	}
	return nil
}

// Start implements service.Service
func (s *Service) Start() error {
	if s.engine == nil {
		s.disabled.Store(true)
		return nil
	}
	if err := s.engine.Start(); err != nil {
		s.disabled.Store(true)
	}
	return nil
}

// Stop implements service.Service
func (s *Service) Stop() error {
	if s.engine != nil {
		s.engine.Stop()
	}
	return nil
}

// IsDisabled returns true if audio is unavailable
func (s *Service) IsDisabled() bool {
	return s.disabled.Load() || s.engine == nil
}

// Engine returns the underlying engine, nil before Init
func (s *Service) Engine() *Engine { return s.engine }

// PlaySoundEvent plays a cue when audio is available
func (s *Service) PlaySoundEvent(name string) {
	if s.IsDisabled() {
		return
	}
	s.engine.PlaySoundEvent(name)
}

// ToggleMute flips mute and returns the new muted state; always muted when disabled
func (s *Service) ToggleMute() bool {
	if s.IsDisabled() {
		return true
	}
	return s.engine.ToggleMute()
}
