package platform

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/anima-wear/engine/core"
)

var startTime float64 = 0

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

type EventType int

const (
	EventResize EventType = iota
	EventAmbient
	EventReload
	EventQuit
)

// Event is a window callback forwarded to the render loop.
type Event struct {
	Type    EventType
	Width   int
	Height  int
	Ambient bool
}

// Platform is the desktop preview window: a GLFW window with a GL ES 2.0
// context and a 16-bit depth buffer, the closest match to a watch surface.
type Platform struct {
	Window  *glfw.Window
	events  chan Event
	ambient bool
}

func New() *Platform {
	return &Platform{
		Window: nil,
		events: make(chan Event, 16),
	}
}

func (p *Platform) Startup(applicationName string, width, height int) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.OpenGLESAPI)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 0)
	glfw.WindowHint(glfw.DepthBits, 16)

	window, err := glfw.CreateWindow(width, height, applicationName, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		glfw.Terminate()
		return err
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)
	p.Window = window

	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetFocusCallback(p.focusCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetCloseCallback(p.closeCallback)

	startTime = glfw.GetTime()
	return nil
}

// FramebufferSize is the drawable size in pixels, which differs from the
// window size on HiDPI screens.
func (p *Platform) FramebufferSize() (int, int) {
	return p.Window.GetFramebufferSize()
}

// Events delivers window input to the render loop.
func (p *Platform) Events() <-chan Event {
	return p.events
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages processes pending window events. It returns false once the
// window was asked to close.
func (p *Platform) PumpMessages() bool {
	glfw.PollEvents()
	return !p.Window.ShouldClose()
}

func (p *Platform) SwapBuffers() {
	p.Window.SwapBuffers()
}

// GetAbsoluteTime returns the seconds since Startup.
func GetAbsoluteTime() float64 {
	return glfw.GetTime() - startTime
}

func (p *Platform) send(e Event) {
	select {
	case p.events <- e:
	default:
		core.LogWarn("event queue full, dropping event %d", e.Type)
	}
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.KeyEscape:
		w.SetShouldClose(true)
		p.send(Event{Type: EventQuit})
	case glfw.KeyA:
		p.ambient = !p.ambient
		p.send(Event{Type: EventAmbient, Ambient: p.ambient})
	case glfw.KeyR:
		p.send(Event{Type: EventReload})
	}
}

// focusCallback mirrors the watch: losing focus is ambient mode.
func (p *Platform) focusCallback(w *glfw.Window, focused bool) {
	p.ambient = !focused
	p.send(Event{Type: EventAmbient, Ambient: p.ambient})
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	p.send(Event{Type: EventResize, Width: width, Height: height})
}

func (p *Platform) closeCallback(w *glfw.Window) {
	p.send(Event{Type: EventQuit})
}
