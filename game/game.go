package game

import (
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/gridshooter/frame"
	"github.com/lixenwraith/gridshooter/input"
	"github.com/lixenwraith/gridshooter/vmath"
)

// SoundPlayer plays a named audio cue
type SoundPlayer interface {
	PlaySoundEvent(name string)
}

// Controller supplies polled input and receives rumble
type Controller interface {
	State() input.ControllerState
	SetHapticIntensity(v float32)
}

// Deps are the game's collaborators; nil members are replaced by no-ops
type Deps struct {
	Sound      SoundPlayer
	Controller Controller
	Logger     *zap.Logger
	// Seed for the explosion variant generator; zero seeds from the clock
	Seed uint64
}

// Tone carries display settings written into every frame's uniforms
type Tone struct {
	Brightness float32
	MaxEDR     float32
	EDRBias    float32
}

// DefaultTone matches a standard dynamic range display
func DefaultTone() Tone {
	return Tone{Brightness: 500, MaxEDR: 1, EDRBias: 0}
}

type nopSound struct{}

func (nopSound) PlaySoundEvent(string) {}

type idleController struct{}

func (idleController) State() input.ControllerState { return input.ControllerState{} }
func (idleController) SetHapticIntensity(float32)   {}

// Game owns the simulation state and writes it into frame slots
// All methods run on the simulation goroutine
type Game struct {
	baseConfig Config
	config     Config
	state      State
	level      uint32

	sound      SoundPlayer
	controller Controller
	logger     *zap.Logger
	rng        *vmath.FastRand

	projection vmath.Mat4
	tone       Tone

	initialized   bool
	firstFrame    bool
	prevTimestamp float64
}

// New creates a game; call Initialize then RestartGame before simulating
func New(cfg Config, deps Deps) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Game{
		baseConfig: cfg,
		config:     cfg,
		state:      newState(cfg),
		sound:      deps.Sound,
		controller: deps.Controller,
		logger:     deps.Logger,
		tone:       DefaultTone(),
		firstFrame: true,
	}
	if g.sound == nil {
		g.sound = nopSound{}
	}
	if g.controller == nil {
		g.controller = idleController{}
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	g.logger = g.logger.Named("game")
	seed := deps.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	g.rng = vmath.NewFastRand(seed)
	return g, nil
}

// Initialize prepares the game for rendering into ring
// A nil ring runs the simulation without GPU output
func (g *Game) Initialize(ring *frame.Ring) error {
	if ring != nil {
		for i := 0; i < ring.Depth(); i++ {
			slot := ring.Slot(i)
			for _, spec := range BufferLayout(g.baseConfig) {
				buf := slot.Buffer(spec.Name)
				if buf == nil || buf.Length() < spec.Size {
					return invariantf("slot %d buffer %q missing or smaller than %d bytes", i, spec.Name, spec.Size)
				}
			}
		}
	}
	w, h := g.baseConfig.CanvasSize()
	g.projection = vmath.MakeOrtho(-w/2, w/2, h/2, -h/2, -1, 1)
	g.initialized = true
	return nil
}

// RestartGame starts a new round at the current level with the given score
// Enemy speed grows by 25% per level
func (g *Game) RestartGame(startingScore int) error {
	if !g.initialized {
		return ErrNotInitialized
	}
	g.config = g.baseConfig
	g.config.EnemySpeed *= 1 + float32(g.level)*0.25

	s := &g.state
	s.Reset()
	s.EnemiesAlive = g.config.EnemyCount()
	s.GameStatus = StatusOngoing
	s.PlayerScore = startingScore

	_, h := g.config.CanvasSize()
	rows, cols := int(g.config.EnemyRows), int(g.config.EnemyCols)
	spacing := SpriteSize * 1.5
	left := -float32(cols-1) * spacing / 2
	top := h/2 - SpriteSize*1.5
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			s.EnemyPositions[r*cols+c] = vmath.Point(left+float32(c)*spacing, top-float32(r)*spacing, 0)
		}
	}
	s.PlayerPosition = vmath.Point(0, -h/2+SpriteSize*2, 0)

	g.logger.Debug("game restarted",
		zap.Uint32("level", g.level),
		zap.Int("score", startingScore),
		zap.Float32("enemy_speed", g.config.EnemySpeed),
	)
	return nil
}

// Simulate advances the game by elapsed seconds
func (g *Game) Simulate(elapsed float32) (Snapshot, error) {
	s := &g.state
	if err := s.checkInvariants(); err != nil {
		return g.snapshot(elapsed), err
	}

	g.advanceCooldowns(elapsed)

	if s.GameStatus == StatusOngoing {
		in := g.controller.State()
		g.movePlayer(in, elapsed)
		g.fire(in)
		g.moveBullets(elapsed)
		g.moveEnemies(elapsed)
		g.scrollBackground(elapsed)

		g.updateCollisions()

		if s.GameStatus == StatusOngoing && s.EnemiesAlive == 0 {
			s.GameStatus = StatusPlayerWon
			g.level++
			g.logger.Info("level cleared", zap.Uint32("next_level", g.level), zap.Int("score", s.PlayerScore))
		}
	}

	if err := s.checkInvariants(); err != nil {
		return g.snapshot(elapsed), err
	}
	return g.snapshot(elapsed), nil
}

// Update derives elapsed time from the display timestamp, simulates, and writes slot
func (g *Game) Update(targetTimestamp float64, slot *frame.Slot) (Snapshot, error) {
	var elapsed float32
	if g.firstFrame {
		g.firstFrame = false
	} else {
		elapsed = float32(targetTimestamp - g.prevTimestamp)
	}
	g.prevTimestamp = targetTimestamp

	snap, err := g.Simulate(elapsed)
	if err != nil {
		return snap, err
	}
	if slot != nil {
		if err := g.WriteFrame(slot); err != nil {
			return snap, err
		}
	}
	return snap, nil
}

func (g *Game) snapshot(elapsed float32) Snapshot {
	s := &g.state
	return Snapshot{
		Status:          s.GameStatus,
		Score:           s.PlayerScore,
		Level:           g.level,
		EnemiesAlive:    s.EnemiesAlive,
		BulletsAlive:    s.PlayerBulletsAlive,
		ExplosionsAlive: s.ExplosionsAlive,
		PlayerPosition:  s.PlayerPosition,
		Elapsed:         elapsed,
	}
}

// State exposes the simulation state for read-only use
func (g *Game) State() *State { return &g.state }

// Level returns the current difficulty level
func (g *Game) Level() uint32 { return g.level }

// Config returns the configuration of the running round
func (g *Game) Config() Config { return g.config }

// SetTone sets display settings for subsequent frames
func (g *Game) SetTone(t Tone) { g.tone = t }

// Projection returns the canvas projection
func (g *Game) Projection() vmath.Mat4 { return g.projection }
