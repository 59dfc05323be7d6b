/*
Desktop preview of the watch face: a GLFW window with a GL ES 2.0 context
standing in for the watch surface. Press A to toggle ambient mode, R to
rebuild the scene and Escape to quit.
*/
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spaghettifunk/anima-wear/engine"
	"github.com/spaghettifunk/anima-wear/engine/assets"
	"github.com/spaghettifunk/anima-wear/engine/config"
	"github.com/spaghettifunk/anima-wear/engine/core"
	"github.com/spaghettifunk/anima-wear/engine/platform"
	"github.com/spf13/pflag"
	"golang.org/x/mobile/gl"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := pflag.StringP("config", "c", config.FileName, "watch face configuration file")
	preset := pflag.StringP("preset", "p", "", "built-in scene to show instead of the configuration ("+strings.Join(config.PresetNames(), ", ")+")")
	assetsDir := pflag.String("assets", "", "asset directory, overrides app.assets_dir")
	watch := pflag.Bool("watch", false, "rebuild the scene when assets change")
	debug := pflag.Bool("debug", false, "check GL errors after every operation and log at debug level")
	pflag.Parse()

	cfg, err := loadConfig(*configPath, *preset)
	if err != nil {
		core.LogFatal("config: %s", err)
	}
	if *assetsDir != "" {
		cfg.App.AssetsDir = *assetsDir
	}
	if *watch {
		cfg.App.WatchAssets = true
	}
	if *debug {
		cfg.App.Debug = true
		cfg.App.LogLevel = core.DebugLevel.String()
	}

	e, err := engine.New(cfg, assets.DirSource{Root: cfg.App.AssetsDir})
	if err != nil {
		core.LogFatal("engine: %s", err)
	}

	p := platform.New()
	if err := p.Startup(cfg.App.Name, cfg.App.Width, cfg.App.Height); err != nil {
		core.LogFatal("window: %s", err)
	}
	defer p.Shutdown()

	if err := run(p, e, cfg.App.FPS); err != nil {
		core.LogError("%s", err)
		p.Shutdown()
		os.Exit(1)
	}
}

func loadConfig(path, preset string) (*config.Config, error) {
	if preset != "" {
		return config.Preset(preset)
	}
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) && path == config.FileName {
		core.LogInfo("no %s found, using the default watch face", config.FileName)
		return config.Default(), nil
	}
	return cfg, err
}

// run owns the main thread. GL calls made by the render loop are queued by
// the x/mobile context and executed here, where the window's context is
// current.
func run(p *platform.Platform, e *engine.Engine, fps int) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	glctx, worker := gl.NewContext()
	frames := make(chan struct{})
	swapped := make(chan struct{}, 1)

	g, gctx := errgroup.WithContext(ctx)
	width, height := p.FramebufferSize()
	g.Go(func() error {
		return renderLoop(gctx, e, glctx, p.Events(), width, height, fps, frames, swapped)
	})
	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	core.LogInfo("preview started in %.2fs", platform.GetAbsoluteTime())
	workAvailable := worker.WorkAvailable()
	poll := time.NewTicker(10 * time.Millisecond)
	defer poll.Stop()
	for {
		select {
		case <-workAvailable:
			worker.DoWork()
		case <-frames:
			worker.DoWork()
			p.SwapBuffers()
			swapped <- struct{}{}
		case <-poll.C:
			if !p.PumpMessages() {
				stop()
			}
		case err := <-done:
			return err
		}
	}
}

// renderLoop drives the engine at the configured frame rate until the
// context is cancelled or the window asks to quit.
func renderLoop(ctx context.Context, e *engine.Engine, glctx gl.Context, events <-chan platform.Event, width, height, fps int, frames chan<- struct{}, swapped <-chan struct{}) error {
	defer e.Shutdown()

	if err := e.OnGLContextCreated(glctx); err != nil {
		return err
	}
	e.OnSurfaceChanged(width, height)
	if err := e.OnTimeTick(time.Now()); err != nil {
		core.LogWarn("time tick: %s", err)
	}

	frameTicker := time.NewTicker(time.Second / time.Duration(fps))
	defer frameTicker.Stop()
	// The clock face only re-uploads when the text changes, so polling each
	// second keeps it within a second of the minute boundary.
	timeTicker := time.NewTicker(time.Second)
	defer timeTicker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			switch ev.Type {
			case platform.EventQuit:
				return nil
			case platform.EventResize:
				e.OnSurfaceChanged(ev.Width, ev.Height)
			case platform.EventAmbient:
				e.OnAmbientModeChanged(ev.Ambient)
			case platform.EventReload:
				if err := e.Reload(); err != nil {
					core.LogError("reload: %s", err)
				}
			}
		case now := <-timeTicker.C:
			if err := e.OnTimeTick(now); err != nil {
				core.LogWarn("time tick: %s", err)
			}
		case now := <-frameTicker.C:
			delta := now.Sub(last).Seconds()
			last = now
			if err := e.OnDraw(delta); errors.Is(err, core.ErrNotReady) {
				return err
			}
			select {
			case frames <- struct{}{}:
			case <-ctx.Done():
				return nil
			}
			select {
			case <-swapped:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
