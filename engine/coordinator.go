package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/gridshooter/camera"
	"github.com/lixenwraith/gridshooter/frame"
	"github.com/lixenwraith/gridshooter/game"
	"github.com/lixenwraith/gridshooter/gpu"
	"github.com/lixenwraith/gridshooter/input"
	"github.com/lixenwraith/gridshooter/status"
	"github.com/lixenwraith/gridshooter/vmath"
)

// ErrQuit is returned by Draw after a quit intent
var ErrQuit = errors.New("engine: quit requested")

const (
	cameraStep     = 0.1
	cameraTurn     = 0.05
	brightnessStep = 50
)

var clearColor = vmath.V4(0.1, 0.1, 0.1, 1)

// Muter is implemented by sound players that can be silenced at runtime
type Muter interface {
	ToggleMute() bool
}

// Options configures a Coordinator; zero values select defaults
type Options struct {
	Game  game.Config
	Frame frame.Options
	// QueueLatency simulates GPU execution time per frame
	QueueLatency time.Duration
	Camera       *camera.Camera
	Tone         *game.Tone

	Target   gpu.RenderTarget
	Drawable gpu.Drawable

	Sound      game.SoundPlayer
	Controller game.Controller
	Actions    <-chan input.Action
	Clock      *PausableClock

	HighScores HighScoreStore
	Session    string

	Logger  *zap.Logger
	Metrics *status.Registry
	Seed    uint64
}

// Coordinator owns the device-side resources and runs one frame per Draw call
// Draw and the camera/tone setters belong to the frame goroutine; the high score
// accessors and ResizeDrawable are safe from any goroutine
type Coordinator struct {
	device *gpu.Device
	queue  *gpu.CommandQueue
	ring   *frame.Ring
	game   *game.Game
	camera *camera.Camera
	cube   *cubeMesh
	tone   game.Tone

	target   gpu.RenderTarget
	drawable gpu.Drawable
	sound    game.SoundPlayer
	actions  <-chan input.Action
	clock    *PausableClock

	restartDelay float64
	lastStatus   game.Status
	endedAt      float64

	pendingAspect atomic.Uint32

	scoreMu         sync.Mutex
	highScore       int
	highScoreSource HighScoreSource
	prevScore       int
	store           HighScoreStore
	session         string

	logger      *zap.Logger
	mScore      *atomic.Int64
	mLevel      *atomic.Int64
	mHighScore  *atomic.Int64
	mGameStatus *status.AtomicString

	closeOnce sync.Once
	closeErr  error
}

// NewCoordinator builds the frame ring, command queue, cube tables and game, and starts the first round
func NewCoordinator(device *gpu.Device, opts Options) (*Coordinator, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = status.NewRegistry()
	}
	cfg := opts.Game
	if cfg == (game.Config{}) {
		cfg = game.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	frameOpts := opts.Frame
	if frameOpts.BumpCapacity != 0 && frameOpts.BumpCapacity < MinBumpCapacity() {
		return nil, fmt.Errorf("engine: bump capacity %d below the %d bytes a frame needs", frameOpts.BumpCapacity, MinBumpCapacity())
	}
	frameOpts.Layout = game.BufferLayout(cfg)
	frameOpts.Logger = logger
	frameOpts.Metrics = metrics
	ring, err := frame.NewRing(device, frameOpts)
	if err != nil {
		return nil, err
	}

	queue := device.NewCommandQueue(gpu.QueueDescriptor{
		Label:   "gameQueue",
		Latency: opts.QueueLatency,
	})

	cube, err := newCubeMesh(device)
	if err != nil {
		queue.Close()
		ring.Close(context.Background())
		return nil, err
	}
	if set := ring.ResidencySet(); set != nil {
		set.AddAllocation(cube.vertices)
		set.AddAllocation(cube.indices)
		set.Commit()
		queue.AddResidencySet(set)
	}

	g, err := game.New(cfg, game.Deps{
		Sound:      opts.Sound,
		Controller: opts.Controller,
		Logger:     logger,
		Seed:       opts.Seed,
	})
	if err == nil {
		err = g.Initialize(ring)
	}
	if err == nil {
		err = g.RestartGame(0)
	}
	if err != nil {
		cube.release()
		queue.Close()
		ring.Close(context.Background())
		return nil, fmt.Errorf("engine: start game: %w", err)
	}

	tone := game.DefaultTone()
	if opts.Tone != nil {
		tone = *opts.Tone
	}
	g.SetTone(tone)

	cam := opts.Camera
	if cam == nil {
		cam = camera.Default()
	}
	sw, sh := float32(cfg.ScreenWidth), float32(cfg.ScreenHeight)
	cam.SetAspectRatio(sw / sh)

	c := &Coordinator{
		device:       device,
		queue:        queue,
		ring:         ring,
		game:         g,
		camera:       cam,
		cube:         cube,
		tone:         tone,
		target:       opts.Target,
		drawable:     opts.Drawable,
		sound:        opts.Sound,
		actions:      opts.Actions,
		clock:        opts.Clock,
		restartDelay: float64(cfg.RestartDelaySecs),
		lastStatus:   game.StatusOngoing,
		store:        opts.HighScores,
		session:      opts.Session,
		logger:       logger.Named("engine"),
		mScore:       metrics.Ints.Get(status.GameScore),
		mLevel:       metrics.Ints.Get(status.GameLevel),
		mHighScore:   metrics.Ints.Get(status.GameHighScore),
		mGameStatus:  metrics.Strings.Get(status.GameStatus),
	}
	c.mGameStatus.Store(game.StatusOngoing.String())
	c.loadHighScore()
	return c, nil
}

func (c *Coordinator) loadHighScore() {
	if c.store == nil {
		return
	}
	rec, err := c.store.Load()
	if err != nil {
		c.logger.Warn("high score unavailable", zap.Error(err))
		return
	}
	source := HighScoreLocal
	if rec.Source == HighScoreCloud.String() {
		source = HighScoreCloud
	}
	c.scoreMu.Lock()
	c.highScore = rec.Score
	c.highScoreSource = source
	c.scoreMu.Unlock()
	c.mHighScore.Store(int64(rec.Score))
}

// Draw runs one frame at the given display timestamp in seconds
// Blocks while all slots are in flight
func (c *Coordinator) Draw(ctx context.Context, targetTimestamp float64) (game.Snapshot, error) {
	if err := c.drainActions(); err != nil {
		return game.Snapshot{}, err
	}
	c.applyAspect()

	frameID, slot, err := c.ring.BeginFrame(ctx)
	if err != nil {
		return game.Snapshot{}, err
	}

	snap, cb, err := c.encode(frameID, slot, targetTimestamp)
	if err != nil {
		if abandonErr := c.ring.AbandonFrame(frameID); abandonErr != nil {
			c.logger.Error("abandon frame", zap.Uint8("frame_id", frameID), zap.Error(abandonErr))
		}
		return snap, err
	}
	if err := c.ring.SubmitFrame(frameID, cb); err != nil {
		if slot.State() == frame.StateWriting {
			if abandonErr := c.ring.AbandonFrame(frameID); abandonErr != nil {
				c.logger.Error("abandon frame", zap.Uint8("frame_id", frameID), zap.Error(abandonErr))
			}
		}
		return snap, err
	}

	c.afterFrame(snap, targetTimestamp)
	return snap, nil
}

func (c *Coordinator) encode(frameID uint8, slot *frame.Slot, ts float64) (game.Snapshot, *gpu.CommandBuffer, error) {
	snap, err := c.game.Update(ts, slot)
	if err != nil {
		return snap, nil, err
	}

	c.cube.advance()
	instances, err := c.cube.uniforms(slot, c.camera.Uniforms())
	if err != nil {
		return snap, nil, err
	}

	cb := c.queue.CommandBuffer()
	enc := cb.RenderCommandEncoder(gpu.RenderPassDescriptor{
		Label:      "gameFrame",
		Target:     c.target,
		ClearColor: clearColor,
	})
	c.game.Draw(enc, slot)
	c.cube.draw(enc, instances)
	if err := c.game.DrawUI(enc, slot); err != nil {
		return snap, nil, err
	}
	enc.EndEncoding()
	cb.PresentDrawable(c.drawable)
	return snap, cb, nil
}

// afterFrame publishes metrics, records finished rounds and restarts after the delay
func (c *Coordinator) afterFrame(snap game.Snapshot, ts float64) {
	c.mScore.Store(int64(snap.Score))
	c.mLevel.Store(int64(snap.Level))
	c.mGameStatus.Store(snap.Status.String())

	switch {
	case snap.Status == game.StatusOngoing:
	case c.lastStatus == game.StatusOngoing:
		c.finishRound(snap, ts)
	case ts-c.endedAt >= c.restartDelay:
		c.restartRound(snap.Status, snap.Score)
		return
	}
	c.lastStatus = snap.Status
}

func (c *Coordinator) finishRound(snap game.Snapshot, ts float64) {
	c.endedAt = ts
	c.scoreMu.Lock()
	c.prevScore = snap.Score
	c.scoreMu.Unlock()
	c.SetHighScore(snap.Score, HighScoreLocal)
	c.logger.Info("round finished",
		zap.Stringer("status", snap.Status),
		zap.Int("score", snap.Score),
		zap.Uint32("level", snap.Level),
	)
}

// restartRound keeps the score after a win and starts from zero otherwise
func (c *Coordinator) restartRound(st game.Status, score int) {
	if st != game.StatusPlayerWon {
		score = 0
	}
	if err := c.game.RestartGame(score); err != nil {
		c.logger.Error("restart", zap.Error(err))
		return
	}
	c.lastStatus = game.StatusOngoing
}

func (c *Coordinator) drainActions() error {
	for {
		select {
		case a, ok := <-c.actions:
			if !ok {
				c.actions = nil
				return nil
			}
			if err := c.HandleAction(a); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// HandleAction applies a one-shot input intent
func (c *Coordinator) HandleAction(a input.Action) error {
	switch a {
	case input.ActionQuit:
		return ErrQuit
	case input.ActionRestart:
		s := c.game.State()
		c.restartRound(s.GameStatus, s.PlayerScore)
	case input.ActionToggleMute:
		if m, ok := c.sound.(Muter); ok {
			c.logger.Info("audio", zap.Bool("muted", m.ToggleMute()))
		}
	case input.ActionTogglePause:
		if c.clock != nil {
			c.logger.Info("clock", zap.Bool("paused", c.clock.Toggle()))
		}
	case input.ActionCameraForward:
		c.MoveCamera(vmath.V3Scale(c.camera.Forward(), cameraStep))
	case input.ActionCameraBack:
		c.MoveCamera(vmath.V3Scale(c.camera.Forward(), -cameraStep))
	case input.ActionCameraLeft:
		c.MoveCamera(vmath.V3Scale(c.camera.Right(), -cameraStep))
	case input.ActionCameraRight:
		c.MoveCamera(vmath.V3Scale(c.camera.Right(), cameraStep))
	case input.ActionCameraUp:
		c.MoveCamera(vmath.V3(0, cameraStep, 0))
	case input.ActionCameraDown:
		c.MoveCamera(vmath.V3(0, -cameraStep, 0))
	case input.ActionCameraYawLeft:
		c.RotateCamera(cameraTurn, 0)
	case input.ActionCameraYawRight:
		c.RotateCamera(-cameraTurn, 0)
	case input.ActionCameraPitchUp:
		c.RotateCamera(0, cameraTurn)
	case input.ActionCameraPitchDown:
		c.RotateCamera(0, -cameraTurn)
	case input.ActionBrightnessUp:
		c.SetBrightness(c.tone.Brightness + brightnessStep)
	case input.ActionBrightnessDown:
		c.SetBrightness(max(c.tone.Brightness-brightnessStep, 0))
	}
	return nil
}

// MoveCamera translates the cube camera
func (c *Coordinator) MoveCamera(translation vmath.Vec3) {
	c.camera.Move(translation)
}

// RotateCamera yaws about world up, then pitches about the camera's right axis
func (c *Coordinator) RotateCamera(deltaYaw, deltaPitch float32) {
	c.camera.Rotate(deltaYaw, deltaPitch)
}

// SetCameraAspectRatio sets the cube projection aspect
func (c *Coordinator) SetCameraAspectRatio(aspect float32) {
	c.camera.SetAspectRatio(aspect)
}

// ResizeDrawable records a new surface size; the aspect applies on the next Draw
func (c *Coordinator) ResizeDrawable(width, height float32) {
	if width <= 0 || height <= 0 {
		return
	}
	c.pendingAspect.Store(math.Float32bits(width / height))
}

func (c *Coordinator) applyAspect() {
	if bits := c.pendingAspect.Swap(0); bits != 0 {
		c.camera.SetAspectRatio(math.Float32frombits(bits))
	}
}

// SetBrightness sets the display brightness in nits
func (c *Coordinator) SetBrightness(nits float32) {
	c.tone.Brightness = nits
	c.game.SetTone(c.tone)
}

// SetMaxEDRValue sets the display's extended dynamic range headroom
func (c *Coordinator) SetMaxEDRValue(v float32) {
	c.tone.MaxEDR = v
	c.game.SetTone(c.tone)
}

// SetEDRBias sets the tone-mapping bias
func (c *Coordinator) SetEDRBias(v float32) {
	c.tone.EDRBias = v
	c.game.SetTone(c.tone)
}

// Tone returns the current display settings
func (c *Coordinator) Tone() game.Tone { return c.tone }

// SetHighScore records score if it beats the current best and reports whether it did
// Local scores are persisted; cloud scores are only adopted
func (c *Coordinator) SetHighScore(score int, source HighScoreSource) bool {
	c.scoreMu.Lock()
	if score <= c.highScore {
		c.scoreMu.Unlock()
		return false
	}
	c.highScore = score
	c.highScoreSource = source
	c.scoreMu.Unlock()

	c.mHighScore.Store(int64(score))
	if source == HighScoreLocal && c.store != nil {
		rec := HighScoreRecord{
			Score:     score,
			Source:    source.String(),
			Session:   c.session,
			UpdatedAt: time.Now().UTC().Truncate(time.Second),
		}
		if err := c.store.Save(rec); err != nil {
			c.logger.Warn("save high score", zap.Error(err))
		}
	}
	c.logger.Info("new high score", zap.Int("score", score), zap.Stringer("source", source))
	return true
}

// HighScore returns the best score and where it came from
func (c *Coordinator) HighScore() (int, HighScoreSource) {
	c.scoreMu.Lock()
	defer c.scoreMu.Unlock()
	return c.highScore, c.highScoreSource
}

// PrevScore returns the final score of the last finished round
func (c *Coordinator) PrevScore() int {
	c.scoreMu.Lock()
	defer c.scoreMu.Unlock()
	return c.prevScore
}

func (c *Coordinator) Game() *game.Game { return c.game }

func (c *Coordinator) Ring() *frame.Ring { return c.ring }

func (c *Coordinator) Queue() *gpu.CommandQueue { return c.queue }

func (c *Coordinator) Camera() *camera.Camera { return c.camera }

// Rotation returns the cube's current yaw in radians
func (c *Coordinator) Rotation() float32 { return c.cube.rotation }

// Close waits for in-flight frames, then releases the queue and all buffers
func (c *Coordinator) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		err := c.ring.Close(ctx)
		c.queue.Close()
		// Committed frames have completed once the queue is closed; only a frame
		// still being encoded can hold a permit now
		if err != nil && c.ring.Gate().Outstanding() == 0 {
			c.logger.Warn("ring drain retried after queue close", zap.Error(err))
			err = c.ring.Close(context.Background())
		}
		c.cube.release()
		c.closeErr = err
	})
	return c.closeErr
}
