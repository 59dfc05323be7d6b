// Command watchface is the on-device host, packaged with gomobile. Assets
// and watchface.toml are read from the application bundle.
package main

import (
	"errors"
	"time"

	"github.com/spaghettifunk/anima-wear/engine"
	"github.com/spaghettifunk/anima-wear/engine/assets"
	"github.com/spaghettifunk/anima-wear/engine/config"
	"github.com/spaghettifunk/anima-wear/engine/core"
	"golang.org/x/mobile/app"
	"golang.org/x/mobile/asset"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/gl"
)

// timeTick carries the wall clock into the app event loop so the scene is
// only touched from one goroutine.
type timeTick time.Time

func main() {
	app.Main(func(a app.App) {
		cfg, err := loadConfig()
		if err != nil {
			core.LogFatal("config: %s", err)
		}
		e, err := engine.New(cfg, assets.BundleSource{})
		if err != nil {
			core.LogFatal("engine: %s", err)
		}
		defer e.Shutdown()

		go func() {
			for now := range time.Tick(time.Second) {
				a.Send(timeTick(now))
			}
		}()

		framePeriod := time.Second / time.Duration(cfg.App.FPS)
		var glctx gl.Context
		var ambient bool
		var last time.Time
		for ev := range a.Events() {
			switch ev := a.Filter(ev).(type) {
			case lifecycle.Event:
				switch ev.Crosses(lifecycle.StageVisible) {
				case lifecycle.CrossOn:
					glctx, _ = ev.DrawContext.(gl.Context)
					if err := e.OnGLContextCreated(glctx); err != nil {
						core.LogError("%s", err)
						glctx = nil
						continue
					}
					if err := e.OnTimeTick(time.Now()); err != nil {
						core.LogWarn("time tick: %s", err)
					}
					last = time.Now()
					a.Send(paint.Event{})
				case lifecycle.CrossOff:
					e.OnGLContextLost()
					glctx = nil
				}
				// A watch without focus is in ambient mode.
				switch ev.Crosses(lifecycle.StageFocused) {
				case lifecycle.CrossOn:
					ambient = false
					e.OnAmbientModeChanged(false)
					a.Send(paint.Event{})
				case lifecycle.CrossOff:
					ambient = true
					e.OnAmbientModeChanged(true)
				}
			case size.Event:
				e.OnSurfaceChanged(ev.WidthPx, ev.HeightPx)
			case paint.Event:
				if glctx == nil || ev.External {
					continue
				}
				now := time.Now()
				if err := e.OnDraw(now.Sub(last).Seconds()); errors.Is(err, core.ErrNotReady) {
					continue
				}
				last = now
				a.Publish()
				// Ambient mode redraws once per time tick only.
				if !ambient {
					wait := framePeriod - time.Since(now)
					time.AfterFunc(wait, func() { a.Send(paint.Event{}) })
				}
			case timeTick:
				if err := e.OnTimeTick(time.Time(ev)); err != nil {
					core.LogWarn("time tick: %s", err)
				}
				if ambient && glctx != nil {
					a.Send(paint.Event{})
				}
			}
		}
	})
}

// loadConfig reads watchface.toml from the bundle, falling back to the
// default face when the bundle has none.
func loadConfig() (*config.Config, error) {
	f, err := asset.Open(config.FileName)
	if err != nil {
		// The Android asset manager does not report fs.ErrNotExist, so every
		// open failure is treated as a missing file.
		core.LogInfo("no %s in bundle (%s), using the default watch face", config.FileName, err)
		return config.Default(), nil
	}
	defer f.Close()
	return config.Decode(f)
}
