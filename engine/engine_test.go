package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/gridshooter/frame"
	"github.com/lixenwraith/gridshooter/game"
	"github.com/lixenwraith/gridshooter/gpu"
	"github.com/lixenwraith/gridshooter/input"
	"github.com/lixenwraith/gridshooter/status"
)

func TestPausableClock_ExcludesPauses(t *testing.T) {
	mock := NewMockTimeProvider(time.Unix(1000, 0))
	clock := NewPausableClock(mock)

	mock.Advance(time.Second)
	assert.Equal(t, time.Second, clock.Elapsed())

	clock.Pause()
	mock.Advance(2 * time.Second)
	assert.True(t, clock.IsPaused())
	assert.Equal(t, time.Second, clock.Elapsed())
	assert.Equal(t, 2*time.Second, clock.TotalPauseDuration())

	clock.Resume()
	mock.Advance(500 * time.Millisecond)
	assert.InDelta(t, 1.5, clock.Seconds(), 1e-9)

	assert.True(t, clock.Toggle())
	assert.False(t, clock.Toggle())
}

func TestFrameLoop_MaxFramesAndTimestamps(t *testing.T) {
	mock := NewMockTimeProvider(time.Unix(0, 0))
	clock := NewPausableClock(mock)
	var stamps []float64
	loop := NewFrameLoop(clock, func(_ context.Context, ts float64) error {
		stamps = append(stamps, ts)
		mock.Advance(10 * time.Millisecond)
		return nil
	}, LoopOptions{MaxFrames: 5})

	require.NoError(t, loop.Run(context.Background()))
	assert.Equal(t, uint64(5), loop.Frames())
	require.Len(t, stamps, 5)
	for i, ts := range stamps {
		assert.InDelta(t, float64(i)*0.01, ts, 1e-9)
	}
}

func TestFrameLoop_StopsOnErrorAndCancel(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	loop := NewFrameLoop(nil, func(context.Context, float64) error {
		calls++
		if calls == 3 {
			return boom
		}
		return nil
	}, LoopOptions{})
	assert.ErrorIs(t, loop.Run(context.Background()), boom)
	assert.Equal(t, uint64(2), loop.Frames())

	ctx, cancel := context.WithCancel(context.Background())
	paced := NewFrameLoop(nil, func(context.Context, float64) error { return nil }, LoopOptions{Interval: time.Millisecond})
	done := make(chan error, 1)
	go func() { done <- paced.Run(ctx) }()
	assert.Eventually(t, func() bool { return paced.Frames() > 2 }, time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop on cancel")
	}
}

func TestFileHighScoreStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores", "highscore.toml")
	store := NewFileHighScoreStore(path)

	rec, err := store.Load()
	require.NoError(t, err)
	assert.Zero(t, rec.Score)

	want := HighScoreRecord{Score: 420, Source: "local", Session: "abc", UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	require.NoError(t, store.Save(want))
	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want.Score, got.Score)
	assert.Equal(t, want.Session, got.Session)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))

	require.NoError(t, os.WriteFile(path, []byte("score = ["), 0o644))
	_, err = store.Load()
	assert.Error(t, err)
}

type recordTarget struct {
	mu      sync.Mutex
	passes  int
	meshes  []gpu.MeshBatch
	sprites int
	text    []gpu.TextLine
}

func (r *recordTarget) BeginPass(gpu.FrameInfo) {
	r.mu.Lock()
	r.passes++
	r.text = nil
	r.mu.Unlock()
}
func (r *recordTarget) DrawSprites(gpu.SpriteBatch) {
	r.mu.Lock()
	r.sprites++
	r.mu.Unlock()
}
func (r *recordTarget) DrawMesh(b gpu.MeshBatch) {
	r.mu.Lock()
	r.meshes = append(r.meshes, b)
	r.mu.Unlock()
}
func (r *recordTarget) DrawText(b gpu.TextBatch) {
	r.mu.Lock()
	r.text = append(r.text, b.Lines...)
	r.mu.Unlock()
}
func (r *recordTarget) EndPass() {}

type countDrawable struct{ n atomic.Int32 }

func (d *countDrawable) Present() { d.n.Add(1) }

type muteSound struct {
	muted  bool
	events []string
}

func (m *muteSound) PlaySoundEvent(name string) { m.events = append(m.events, name) }
func (m *muteSound) ToggleMute() bool {
	m.muted = !m.muted
	return m.muted
}

type harness struct {
	coord    *Coordinator
	target   *recordTarget
	drawable *countDrawable
	actions  chan input.Action
	sound    *muteSound
	store    *MemoryHighScoreStore
	metrics  *status.Registry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		target:   &recordTarget{},
		drawable: &countDrawable{},
		actions:  make(chan input.Action, 8),
		sound:    &muteSound{},
		store:    &MemoryHighScoreStore{},
		metrics:  status.NewRegistry(),
	}
	coord, err := NewCoordinator(gpu.DefaultDevice(), Options{
		Target:     h.target,
		Drawable:   h.drawable,
		Sound:      h.sound,
		Actions:    h.actions,
		HighScores: h.store,
		Session:    "test-session",
		Metrics:    h.metrics,
		Seed:       1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { coord.Close(context.Background()) })
	h.coord = coord
	return h
}

func (h *harness) draw(t *testing.T, ts float64) game.Snapshot {
	t.Helper()
	snap, err := h.coord.Draw(context.Background(), ts)
	require.NoError(t, err)
	return snap
}

func TestCoordinator_DrawsFramesThroughRing(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 10; i++ {
		h.draw(t, float64(i)/60)
	}
	require.NoError(t, h.coord.Close(context.Background()))

	assert.Equal(t, uint64(10), h.coord.Ring().FrameCounter())
	assert.InDelta(t, 10*RotationStep, h.coord.Rotation(), 1e-5)
	assert.Equal(t, int32(10), h.drawable.n.Load())
	assert.Equal(t, int64(10), h.metrics.Ints.Get(status.FrameCompleted).Load())

	h.target.mu.Lock()
	defer h.target.mu.Unlock()
	assert.Equal(t, 10, h.target.passes)
	require.Len(t, h.target.meshes, 10)
	mesh := h.target.meshes[9]
	assert.Len(t, mesh.Vertices, 8)
	assert.Len(t, mesh.Indices, 36)
	require.Len(t, mesh.Instances, 1)
	assert.NotEqual(t, h.target.meshes[0].Instances[0].Model, mesh.Instances[0].Model)
	require.Len(t, h.target.text, 2)
	assert.Equal(t, "SCORE 0", h.target.text[0].Text)
}

func TestNewCoordinator_RejectsUndersizedBump(t *testing.T) {
	assert.Equal(t, 128+3*48, MinBumpCapacity())

	_, err := NewCoordinator(gpu.DefaultDevice(), Options{
		Frame: frame.Options{BumpCapacity: 64},
	})
	assert.ErrorContains(t, err, "bump capacity 64")

	coord, err := NewCoordinator(gpu.DefaultDevice(), Options{
		Target:   &recordTarget{},
		Drawable: &countDrawable{},
		Frame:    frame.Options{BumpCapacity: MinBumpCapacity()},
	})
	require.NoError(t, err)
	defer coord.Close(context.Background())
	_, err = coord.Draw(context.Background(), 0)
	assert.NoError(t, err)
}

func TestCoordinator_CloseFreesSlotsAfterDrainTimeout(t *testing.T) {
	coord, err := NewCoordinator(gpu.DefaultDevice(), Options{
		Target:       &recordTarget{},
		Drawable:     &countDrawable{},
		QueueLatency: 50 * time.Millisecond,
		Seed:         1,
	})
	require.NoError(t, err)
	_, err = coord.Draw(context.Background(), 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, coord.Close(ctx))
	for i := range coord.Ring().Depth() {
		assert.True(t, coord.Ring().Slot(i).Bump().BaseBuffer().Released(), "slot %d", i)
	}
	assert.NoError(t, coord.Close(context.Background()))
}

func TestCoordinator_RotationWraps(t *testing.T) {
	h := newHarness(t)
	h.coord.cube.rotation = 2*3.14159265 - 0.004
	h.draw(t, 0)
	assert.InDelta(t, 0.004, h.coord.Rotation(), 1e-4)
}

func TestCoordinator_Actions(t *testing.T) {
	h := newHarness(t)
	z := h.coord.Camera().Position().Z

	h.actions <- input.ActionCameraForward
	h.actions <- input.ActionBrightnessUp
	h.actions <- input.ActionToggleMute
	h.draw(t, 0)
	assert.InDelta(t, z-cameraStep, h.coord.Camera().Position().Z, 1e-5)
	assert.Equal(t, float32(550), h.coord.Tone().Brightness)
	assert.True(t, h.sound.muted)

	h.actions <- input.ActionQuit
	_, err := h.coord.Draw(context.Background(), 0.1)
	assert.ErrorIs(t, err, ErrQuit)
	assert.Equal(t, uint64(1), h.coord.Ring().FrameCounter(), "no frame after quit")
}

func TestCoordinator_RoundEndRecordsHighScoreAndRestarts(t *testing.T) {
	h := newHarness(t)
	h.draw(t, 0)

	s := h.coord.Game().State()
	s.EnemiesAlive = 0
	s.PlayerScore = 120
	snap := h.draw(t, 0.01)
	require.Equal(t, game.StatusPlayerWon, snap.Status)

	best, source := h.coord.HighScore()
	assert.Equal(t, 120, best)
	assert.Equal(t, HighScoreLocal, source)
	assert.Equal(t, 120, h.coord.PrevScore())
	rec, _ := h.store.Load()
	assert.Equal(t, 120, rec.Score)
	assert.Equal(t, "test-session", rec.Session)
	assert.Equal(t, "won", h.metrics.Strings.Get(status.GameStatus).Load())

	// Still within the restart delay
	snap = h.draw(t, 1)
	assert.Equal(t, game.StatusPlayerWon, snap.Status)

	h.draw(t, 2.02)
	snap = h.draw(t, 2.03)
	assert.Equal(t, game.StatusOngoing, snap.Status)
	assert.Equal(t, 120, snap.Score)
	assert.Equal(t, uint32(1), snap.Level)
	assert.Equal(t, game.DefaultConfig().EnemyCount(), snap.EnemiesAlive)
}

func TestCoordinator_SetHighScore(t *testing.T) {
	h := newHarness(t)
	assert.True(t, h.coord.SetHighScore(50, HighScoreCloud))
	assert.False(t, h.coord.SetHighScore(40, HighScoreLocal))
	best, source := h.coord.HighScore()
	assert.Equal(t, 50, best)
	assert.Equal(t, HighScoreCloud, source)
	rec, _ := h.store.Load()
	assert.Zero(t, rec.Score, "cloud scores are not persisted")
	assert.Equal(t, int64(50), h.metrics.Ints.Get(status.GameHighScore).Load())
}

func TestCoordinator_LoadsStoredHighScore(t *testing.T) {
	store := &MemoryHighScoreStore{}
	require.NoError(t, store.Save(HighScoreRecord{Score: 900, Source: "cloud"}))
	coord, err := NewCoordinator(gpu.DefaultDevice(), Options{HighScores: store})
	require.NoError(t, err)
	defer coord.Close(context.Background())

	best, source := coord.HighScore()
	assert.Equal(t, 900, best)
	assert.Equal(t, HighScoreCloud, source)
}

func TestCoordinator_ResizeAppliesOnNextDraw(t *testing.T) {
	h := newHarness(t)
	h.coord.ResizeDrawable(800, 400)
	assert.InDelta(t, 1920.0/1080.0, h.coord.Camera().AspectRatio(), 1e-5)
	h.draw(t, 0)
	assert.InDelta(t, 2, h.coord.Camera().AspectRatio(), 1e-6)
}
