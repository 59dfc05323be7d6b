package gles

import (
	"github.com/spaghettifunk/anima-wear/engine/core"
	"golang.org/x/mobile/gl"
)

// maxDrainedErrors bounds the glGetError loop; a lost context can report forever.
const maxDrainedErrors = 16

type textureSlot struct {
	unit   int
	target gl.Enum
}

// RenderContext wraps the GL context together with the global pipeline state
// the renderer changes: current program, active texture unit, bound textures
// and depth function. Every draw re-establishes the state it needs through it.
type RenderContext struct {
	gl         GL
	debug      bool
	program    gl.Program
	activeUnit int
	bound      map[textureSlot]gl.Texture
	depthFunc  gl.Enum
	errorCount int
}

func NewRenderContext(g GL, debug bool) *RenderContext {
	return &RenderContext{
		gl:        g,
		debug:     debug,
		bound:     make(map[textureSlot]gl.Texture),
		depthFunc: gl.LESS,
	}
}

func (rc *RenderContext) GL() GL {
	return rc.gl
}

func (rc *RenderContext) Debug() bool {
	return rc.debug
}

// UseProgram always issues the call. Another component may have changed the
// current program behind the tracker's back (hosts, overlays).
func (rc *RenderContext) UseProgram(p gl.Program) {
	rc.gl.UseProgram(p)
	rc.program = p
}

func (rc *RenderContext) CurrentProgram() gl.Program {
	return rc.program
}

// BindTexture selects the unit and binds t to target on it.
func (rc *RenderContext) BindTexture(unit int, target gl.Enum, t gl.Texture) {
	rc.gl.ActiveTexture(gl.Enum(gl.TEXTURE0 + unit))
	rc.activeUnit = unit
	rc.gl.BindTexture(target, t)
	rc.bound[textureSlot{unit: unit, target: target}] = t
}

func (rc *RenderContext) ActiveUnit() int {
	return rc.activeUnit
}

func (rc *RenderContext) BoundTexture(unit int, target gl.Enum) gl.Texture {
	return rc.bound[textureSlot{unit: unit, target: target}]
}

// forgetTexture drops t from the tracked bindings once it has been deleted.
func (rc *RenderContext) forgetTexture(t gl.Texture) {
	for slot, bound := range rc.bound {
		if bound == t {
			delete(rc.bound, slot)
		}
	}
}

func (rc *RenderContext) forgetProgram(p gl.Program) {
	if rc.program == p {
		rc.program = gl.Program{}
	}
}

func (rc *RenderContext) SetDepthFunc(fn gl.Enum) {
	rc.gl.DepthFunc(fn)
	rc.depthFunc = fn
}

func (rc *RenderContext) DepthFunc() gl.Enum {
	return rc.depthFunc
}

// BeginFrame enables depth testing with LESS and clears colour and depth.
func (rc *RenderContext) BeginFrame(r, g, b, a float32) {
	rc.gl.Enable(gl.DEPTH_TEST)
	rc.SetDepthFunc(gl.LESS)
	rc.gl.ClearColor(r, g, b, a)
	rc.gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (rc *RenderContext) Viewport(width, height int) {
	rc.gl.Viewport(0, 0, width, height)
}

// CheckError drains the GL error queue when debug checks are on and returns
// the first error found. It is a no-op otherwise.
func (rc *RenderContext) CheckError(op string) error {
	if !rc.debug {
		return nil
	}
	var first error
	for i := 0; i < maxDrainedErrors; i++ {
		code := rc.gl.GetError()
		if code == gl.NO_ERROR {
			break
		}
		rc.errorCount++
		if first == nil {
			first = &GLError{Op: op, Code: code}
		}
	}
	return first
}

// ReportError logs the result of CheckError instead of returning it. Used on
// the draw path, where a GL error must not abort the frame.
func (rc *RenderContext) ReportError(op string) bool {
	if err := rc.CheckError(op); err != nil {
		core.LogError("%s", err)
		return true
	}
	return false
}

// ErrorCount is the number of GL errors drained so far.
func (rc *RenderContext) ErrorCount() int {
	return rc.errorCount
}
