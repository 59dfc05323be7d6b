package engine

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/fzipp/bmfont"
	"github.com/spaghettifunk/anima-wear/engine/assets"
	"github.com/spaghettifunk/anima-wear/engine/assets/loaders"
	"github.com/spaghettifunk/anima-wear/engine/config"
	"github.com/spaghettifunk/anima-wear/engine/core"
	"github.com/spaghettifunk/anima-wear/engine/renderer/gles"
	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-wear/engine/renderer/text"
	"github.com/spaghettifunk/anima-wear/engine/scene"
	"golang.org/x/image/font"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Assets are indexed, waiting for a GL context
	EngineStageInitialized
	// A GL context is live and the scene is built
	EngineStageRunning
	// The GL context went away; every GL object it held is gone with it
	EngineStageContextLost
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

func (s Stage) String() string {
	switch s {
	case EngineStageUninitialized:
		return "uninitialized"
	case EngineStageInitialized:
		return "initialized"
	case EngineStageRunning:
		return "running"
	case EngineStageContextLost:
		return "context-lost"
	case EngineStageShuttingDown:
		return "shutting-down"
	}
	return "unknown"
}

// Engine is the surface a host drives: it receives GL context, surface,
// frame, ambient and time callbacks and forwards them to the scene. All
// methods must be called from the thread that owns the GL context.
type Engine struct {
	currentStage  Stage
	config        *config.Config
	assetManager  *assets.AssetManager
	clockFace     *text.ClockRenderer
	clockFont     *metadata.Resource
	clockFontType metadata.ResourceType
	renderContext *gles.RenderContext
	driver        *scene.Driver
	clock         *core.Clock
	metrics       *core.Metrics
	width         int
	height        int
	ambient       bool
}

// New indexes the assets of source and prepares the clock face. No GL call
// is made before OnGLContextCreated.
func New(cfg *config.Config, source loaders.Source) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	core.SetLogLevel(cfg.LogLevel())

	am := assets.NewAssetManager(source)
	if err := am.Initialize(cfg.App.WatchAssets); err != nil {
		core.LogError("asset manager: %s", err)
		return nil, err
	}

	e := &Engine{
		currentStage: EngineStageInitialized,
		config:       cfg,
		assetManager: am,
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		width:        cfg.App.Width,
		height:       cfg.App.Height,
	}
	e.clockFace = e.newClockFace()
	core.LogInfo("%s initialized: %d objects, skybox %t", cfg.App.Name, len(cfg.Objects), cfg.Skybox.Enabled)
	return e, nil
}

// newClockFace loads the configured clock font. A font that fails to load
// falls back to the built-in face.
func (e *Engine) newClockFace() *text.ClockRenderer {
	opts := text.ClockOptions{Size: e.config.Clock.Size, Format: e.config.Clock.Format}
	name := e.config.Clock.Font
	if name == "" {
		return text.NewClockRenderer(opts)
	}

	if strings.ToLower(path.Ext(name)) == ".fnt" {
		res, err := e.assetManager.LoadAsset(name, metadata.ResourceTypeBitmapFont, nil)
		if err != nil {
			core.LogWarn("clock font: %s", err)
			return text.NewClockRenderer(opts)
		}
		opts.Bitmap = res.Data.(*bmfont.BitmapFont)
		e.clockFont, e.clockFontType = res, metadata.ResourceTypeBitmapFont
		return text.NewClockRenderer(opts)
	}

	res, err := e.assetManager.LoadAsset(name, metadata.ResourceTypeSystemFont, &loaders.SystemFontParams{Size: e.config.Clock.FontSize})
	if err != nil {
		core.LogWarn("clock font: %s", err)
		return text.NewClockRenderer(opts)
	}
	opts.Face = res.Data.(font.Face)
	e.clockFont, e.clockFontType = res, metadata.ResourceTypeSystemFont
	return text.NewClockRenderer(opts)
}

// OnGLContextCreated builds the scene on a fresh context. It is also the
// recovery path after OnGLContextLost.
func (e *Engine) OnGLContextCreated(g gles.GL) error {
	switch e.currentStage {
	case EngineStageShuttingDown:
		return core.ErrDestroyed
	case EngineStageRunning:
		e.driver.Destroy()
		e.driver = nil
	}
	e.renderContext = gles.NewRenderContext(g, e.config.App.Debug)
	driver, err := e.buildScene()
	if err != nil {
		e.renderContext = nil
		return err
	}
	e.driver = driver
	e.clock.Start()
	e.currentStage = EngineStageRunning
	return nil
}

func (e *Engine) buildScene() (*scene.Driver, error) {
	driver, err := scene.NewDriver(e.renderContext, e.config, e.assetManager, e.clockFace)
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}
	driver.OnSurfaceResized(e.width, e.height)
	driver.OnAmbientModeChanged(e.ambient)
	return driver, nil
}

// OnSurfaceChanged records the size and, when a scene exists, recomputes the
// projection. A zero-sized surface is ignored.
func (e *Engine) OnSurfaceChanged(width, height int) {
	if width <= 0 || height <= 0 {
		core.LogDebug("surface %dx%d ignored", width, height)
		return
	}
	e.width, e.height = width, height
	core.LogDebug("surface resized: %d, %d", width, height)
	if e.driver != nil {
		e.driver.OnSurfaceResized(width, height)
	}
}

// OnDraw renders one frame. delta is the time since the previous frame in
// seconds. Draw errors are logged by the scene and returned; the frame is
// still complete.
func (e *Engine) OnDraw(delta float64) error {
	if e.currentStage != EngineStageRunning {
		return core.ErrNotReady
	}
	e.clock.Update()
	frameStartTime := e.clock.Elapsed()

	if changed := e.assetManager.Changed(); len(changed) > 0 {
		core.LogInfo("assets changed: %s", strings.Join(changed, ", "))
		if err := e.Reload(); err != nil {
			core.LogError("reload: %s", err)
		}
	}

	err := e.driver.OnFrame(delta)

	e.clock.Update()
	if e.metrics.Update(e.clock.Elapsed() - frameStartTime) {
		fps, frameTime := e.metrics.Frame()
		core.LogDebug("fps %.0f, frame %.3fms, gl errors %d", fps, frameTime, e.renderContext.ErrorCount())
	}
	return err
}

// Reload rebuilds the scene from the current assets. The running scene is
// kept when the rebuild fails.
func (e *Engine) Reload() error {
	if e.currentStage != EngineStageRunning {
		return core.ErrNotReady
	}
	driver, err := e.buildScene()
	if err != nil {
		return err
	}
	e.driver.Destroy()
	e.driver = driver
	core.LogInfo("scene reloaded")
	return nil
}

func (e *Engine) OnAmbientModeChanged(ambient bool) {
	e.ambient = ambient
	core.LogDebug("ambient mode: %t", ambient)
	if e.driver != nil {
		e.driver.OnAmbientModeChanged(ambient)
	}
}

// OnTimeTick refreshes clock textures. Hosts call it at least once a minute.
func (e *Engine) OnTimeTick(t time.Time) error {
	if e.driver == nil {
		return nil
	}
	return e.driver.OnTimeTick(t)
}

// OnGLContextLost forgets the scene without issuing GL calls, since the
// objects died with the context.
func (e *Engine) OnGLContextLost() {
	if e.currentStage != EngineStageRunning {
		return
	}
	core.LogWarn("GL context lost, dropping scene")
	e.driver = nil
	e.renderContext = nil
	e.clock.Stop()
	e.currentStage = EngineStageContextLost
}

// Shutdown releases the scene and stops the asset watcher. Safe to call more
// than once.
func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShuttingDown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	if e.driver != nil {
		e.driver.Destroy()
		e.driver = nil
	}
	if e.clockFont != nil {
		if err := e.assetManager.UnloadAsset(e.clockFontType, e.clockFont); err != nil {
			core.LogWarn("unload clock font: %s", err)
		}
		e.clockFont = nil
	}
	e.assetManager.Shutdown()
	e.clock.Stop()
	core.LogInfo("engine shut down")
	return nil
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Config() *config.Config {
	return e.config
}

// Driver is nil unless the engine is running.
func (e *Engine) Driver() *scene.Driver {
	return e.driver
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

// GetFramebufferSize returns the width and height (in this order) of the
// last surface reported by the host.
func (e *Engine) GetFramebufferSize() (int, int) {
	return e.width, e.height
}
