package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/gridshooter/audio"
	"github.com/lixenwraith/gridshooter/config"
	"github.com/lixenwraith/gridshooter/core"
	"github.com/lixenwraith/gridshooter/engine"
	"github.com/lixenwraith/gridshooter/game"
	"github.com/lixenwraith/gridshooter/gpu"
	"github.com/lixenwraith/gridshooter/input"
	"github.com/lixenwraith/gridshooter/logging"
	"github.com/lixenwraith/gridshooter/render"
	"github.com/lixenwraith/gridshooter/service"
	"github.com/lixenwraith/gridshooter/status"
)

var (
	configPath    = flag.String("config", "", "TOML configuration file")
	frontendFlag  = flag.String("frontend", "terminal", "Presenter: terminal, window, headless")
	assetsFlag    = flag.String("assets", "", "Sound asset directory, overrides [audio] asset_dir")
	muteFlag      = flag.Bool("mute", false, "Start with audio disabled")
	debugFlag     = flag.Bool("debug", false, "Write JSON logs to logs/gridshooter.log")
	metricsFlag   = flag.String("metrics-addr", "", "Serve Prometheus /metrics on this address")
	framesFlag    = flag.Uint64("frames", 0, "Stop after this many frames; zero runs until quit")
	highScoreFlag = flag.String("highscore", "", "High score file, overrides [highscore] path")
)

// soundCues are the synthesized fallbacks for the game's sound assets
var soundCues = map[string]audio.Synth{
	game.SoundImpact:  audio.ImpactSynth,
	game.SoundFailure: audio.FailureSynth,
}

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	applyFlags(&cfg)

	logs, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logs.Close()

	session := uuid.NewString()
	logger := logs.With(zap.String("session", session))
	core.SetCrashLogger(logger)
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	if err := play(cfg, session, logger); err != nil {
		logger.Error("exit", zap.Error(err))
		fmt.Fprintln(os.Stderr, "gridshooter:", err)
		return 1
	}
	return 0
}

func applyFlags(cfg *config.Config) {
	cfg.Audio = cfg.Audio.ApplyEnv()
	if *assetsFlag != "" {
		cfg.Audio.AssetDir = *assetsFlag
	}
	if *debugFlag {
		cfg.Logging.Debug = true
	}
	if *metricsFlag != "" {
		cfg.Status.MetricsAddr = *metricsFlag
	}
	if *highScoreFlag != "" {
		cfg.HighScore.Path = *highScoreFlag
	}
}

// presenter is a render target that owns the display surface and its input events
type presenter interface {
	gpu.RenderTarget
	gpu.Drawable
	Run(ctx context.Context) error
	OnResize(fn func(width, height float32))
	Size() (width, height float32)
}

// headless records frames and idles until the run ends
type headless struct {
	*render.Recorder
	width, height float32
}

func (h *headless) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (h *headless) OnResize(func(width, height float32)) {}

func (h *headless) Size() (width, height float32) { return h.width, h.height }

func newPresenter(cfg config.Config, controller *input.Controller, logger *zap.Logger) (presenter, error) {
	switch *frontendFlag {
	case "terminal":
		return render.NewTerminal(nil, controller, logger.Named("terminal"))
	case "window":
		return render.NewWindow(render.WindowConfig{
			Width:  cfg.Window.Width,
			Height: cfg.Window.Height,
			Title:  cfg.Window.Title,
		}, controller, logger.Named("window"))
	case "headless":
		return &headless{
			Recorder: render.NewRecorder(1),
			width:    float32(cfg.Game.ScreenWidth),
			height:   float32(cfg.Game.ScreenHeight),
		}, nil
	}
	return nil, fmt.Errorf("unknown frontend %q", *frontendFlag)
}

func play(cfg config.Config, session string, logger *zap.Logger) (err error) {
	keys, err := cfg.KeyTable()
	if err != nil {
		return err
	}
	controller := input.NewController(keys, 0)

	hub := service.NewHub(logger.Named("services"))
	statusSvc := status.NewService(logger.Named("status"))
	audioSvc := audio.NewService(cfg.Audio, soundCues, audio.Deps{
		Logger:  logger.Named("audio"),
		Metrics: statusSvc.Registry(),
	})
	for _, svc := range []service.Service{statusSvc, audioSvc} {
		if err := hub.Register(svc); err != nil {
			return err
		}
	}
	if err := hub.InitAll(map[string][]any{
		"status": {cfg.Status.MetricsAddr},
		"audio":  {*muteFlag},
	}); err != nil {
		return err
	}
	if err := hub.StartAll(); err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, hub.StopAll())
	}()

	pres, err := newPresenter(cfg, controller, logger)
	if err != nil {
		return err
	}
	statusSvc.Registry().Strings.Get(status.PresenterBackend).Store(*frontendFlag)
	if t, ok := pres.(*render.Terminal); ok {
		defer t.Fini()
	}

	tone := cfg.Tone()
	clock := engine.NewPausableClock(nil)
	coord, err := engine.NewCoordinator(gpu.DefaultDevice(), engine.Options{
		Game:         cfg.Game,
		Frame:        cfg.FrameOptions(),
		QueueLatency: cfg.Frame.QueueLatency.Duration,
		Camera:       cfg.NewCamera(),
		Tone:         &tone,
		Target:       pres,
		Drawable:     pres,
		Sound:        audioSvc,
		Controller:   controller,
		Actions:      controller.Intents(),
		Clock:        clock,
		HighScores:   engine.NewFileHighScoreStore(cfg.HighScore.Path),
		Session:      session,
		Logger:       logger.Named("engine"),
		Metrics:      statusSvc.Registry(),
	})
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err = errors.Join(err, coord.Close(ctx))
	}()

	pres.OnResize(coord.ResizeDrawable)
	if w, h := pres.Size(); w > 0 && h > 0 {
		coord.ResizeDrawable(w, h)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	var last game.Snapshot
	loop := engine.NewFrameLoop(clock, func(ctx context.Context, ts float64) error {
		snap, err := coord.Draw(ctx, ts)
		if err == nil {
			last = snap
		}
		return err
	}, engine.LoopOptions{
		Interval:  cfg.Interval(),
		MaxFrames: *framesFlag,
		Logger:    logger.Named("loop"),
	})
	g.Go(func() error {
		defer cancel()
		if err := loop.Run(gctx); !errors.Is(err, engine.ErrQuit) {
			return err
		}
		return nil
	})

	// The presenter owns the main goroutine; ebiten requires it
	presErr := pres.Run(gctx)
	cancel()
	loopErr := g.Wait()
	if errors.Is(presErr, render.ErrClosed) {
		presErr = nil
	}

	high, source := coord.HighScore()
	logger.Info("session ended",
		zap.Uint64("frames", loop.Frames()),
		zap.Int("score", last.Score),
		zap.Uint32("level", last.Level+1),
		zap.Int("high_score", high),
		zap.Stringer("high_score_source", source),
	)
	if *frontendFlag == "headless" {
		fmt.Printf("frames=%d status=%s score=%d level=%d high_score=%d\n",
			loop.Frames(), last.Status, last.Score, last.Level+1, high)
	}
	return errors.Join(loopErr, presErr)
}
