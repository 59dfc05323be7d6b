// Package fakegl is an in-memory stand-in for an OpenGL ES 2.0 context. It
// tracks object lifetimes and pipeline state so renderer code can be tested
// without a GPU.
package fakegl

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/mobile/gl"
)

// Compile and link fail when a source contains these tokens.
const (
	CompileErrorToken = "FAKEGL_COMPILE_ERROR"
	LinkErrorToken    = "FAKEGL_LINK_ERROR"
)

var declRe = regexp.MustCompile(`(?m)\b(attribute|uniform)\s+(?:(?:lowp|mediump|highp)\s+)?\w+\s+(\w+)\s*(?:\[[^\]]*\])?\s*;`)

type shader struct {
	ty       gl.Enum
	source   string
	compiled bool
	infoLog  string
}

type program struct {
	shaders  []uint32
	bound    map[string]int
	attribs  map[string]int
	uniforms map[string]int32
	linked   bool
	infoLog  string
}

// TexImage records one TexImage2D call.
type TexImage struct {
	Target  gl.Enum
	Texture uint32
	Width   int
	Height  int
	Bytes   int
}

// AttribPointer is the state set by VertexAttribPointer.
type AttribPointer struct {
	Buffer uint32
	Size   int
	Stride int
	Offset int
}

// DrawCall is a snapshot of the pipeline at DrawArrays/DrawElements time.
type DrawCall struct {
	Mode      gl.Enum
	Count     int
	Indexed   bool
	Program   uint32
	DepthFunc gl.Enum
	Texture2D uint32
	CubeMap   uint32
	Enabled   []uint
}

// UniformWrite records one glUniform* call.
type UniformWrite struct {
	Program  uint32
	Location int32
	Values   []float32
}

// Context implements the GL calls the renderer uses.
type Context struct {
	// FailTextureAlloc makes CreateTexture return the zero texture.
	FailTextureAlloc bool
	// FailBufferAlloc makes CreateBuffer return the zero buffer.
	FailBufferAlloc bool

	Calls     []string
	TexImages []TexImage
	Draws     []DrawCall
	Uniforms  []UniformWrite

	next     uint32
	shaders  map[uint32]*shader
	programs map[uint32]*program
	buffers  map[uint32][]byte
	textures map[uint32]gl.Enum
	mipmaps  map[uint32]int
	params   map[uint32]map[gl.Enum]int

	boundBuffers  map[gl.Enum]uint32
	boundTextures map[[2]uint32]uint32
	activeUnit    uint32
	current       uint32
	enabled       map[uint]bool
	pointers      map[uint]AttribPointer
	depthFunc     gl.Enum
	caps          map[gl.Enum]bool
	clearColor    [4]float32
	viewport      [4]int
	errors        []gl.Enum
}

func New() *Context {
	return &Context{
		shaders:       make(map[uint32]*shader),
		programs:      make(map[uint32]*program),
		buffers:       make(map[uint32][]byte),
		textures:      make(map[uint32]gl.Enum),
		mipmaps:       make(map[uint32]int),
		params:        make(map[uint32]map[gl.Enum]int),
		boundBuffers:  make(map[gl.Enum]uint32),
		boundTextures: make(map[[2]uint32]uint32),
		enabled:       make(map[uint]bool),
		pointers:      make(map[uint]AttribPointer),
		depthFunc:     gl.LESS,
		caps:          make(map[gl.Enum]bool),
	}
}

func (c *Context) record(format string, args ...interface{}) {
	c.Calls = append(c.Calls, fmt.Sprintf(format, args...))
}

func (c *Context) id() uint32 {
	c.next++
	return c.next
}

func (c *Context) setError(code gl.Enum) {
	c.errors = append(c.errors, code)
}

// PushError queues code for the next GetError calls.
func (c *Context) PushError(code gl.Enum) {
	c.setError(code)
}

// ResetCalls clears the call log, keeping object state.
func (c *Context) ResetCalls() {
	c.Calls = nil
	c.Draws = nil
	c.Uniforms = nil
	c.TexImages = nil
}

// CallNames returns the recorded call names without arguments.
func (c *Context) CallNames() []string {
	names := make([]string, len(c.Calls))
	for i, call := range c.Calls {
		if p := strings.IndexByte(call, '('); p >= 0 {
			call = call[:p]
		}
		names[i] = call
	}
	return names
}

func (c *Context) LiveTextures() int { return len(c.textures) }
func (c *Context) LiveBuffers() int  { return len(c.buffers) }
func (c *Context) LivePrograms() int { return len(c.programs) }
func (c *Context) LiveShaders() int  { return len(c.shaders) }

// BufferContents returns the bytes last uploaded to buffer b.
func (c *Context) BufferContents(b gl.Buffer) []byte {
	return c.buffers[b.Value]
}

// TextureParam returns a TexParameteri value set on t.
func (c *Context) TextureParam(t gl.Texture, pname gl.Enum) int {
	return c.params[t.Value][pname]
}

// Mipmaps counts GenerateMipmap calls that hit t.
func (c *Context) Mipmaps(t gl.Texture) int {
	return c.mipmaps[t.Value]
}

func (c *Context) CurrentProgram() uint32      { return c.current }
func (c *Context) DepthFuncValue() gl.Enum     { return c.depthFunc }
func (c *Context) Enabled(cap gl.Enum) bool    { return c.caps[cap] }
func (c *Context) ClearColorValue() [4]float32 { return c.clearColor }
func (c *Context) ViewportValue() [4]int       { return c.viewport }

// AttribEnabled reports whether the vertex attribute array at loc is enabled.
func (c *Context) AttribEnabled(loc uint) bool { return c.enabled[loc] }

func (c *Context) Pointer(loc uint) AttribPointer { return c.pointers[loc] }

// UniformLocation resolves name in a linked program, -1 if absent.
func (c *Context) UniformLocation(p gl.Program, name string) int32 {
	prog, ok := c.programs[p.Value]
	if !ok {
		return -1
	}
	if loc, ok := prog.uniforms[name]; ok {
		return loc
	}
	return -1
}

// LastUniform returns the last values written to name in program p.
func (c *Context) LastUniform(p gl.Program, name string) []float32 {
	loc := c.UniformLocation(p, name)
	for i := len(c.Uniforms) - 1; i >= 0; i-- {
		u := c.Uniforms[i]
		if u.Program == p.Value && u.Location == loc {
			return u.Values
		}
	}
	return nil
}

func (c *Context) ActiveTexture(texture gl.Enum) {
	c.record("ActiveTexture(%d)", texture-gl.TEXTURE0)
	c.activeUnit = uint32(texture - gl.TEXTURE0)
}

func (c *Context) AttachShader(p gl.Program, s gl.Shader) {
	c.record("AttachShader(%d, %d)", p.Value, s.Value)
	prog, ok := c.programs[p.Value]
	if !ok {
		c.setError(gl.INVALID_VALUE)
		return
	}
	prog.shaders = append(prog.shaders, s.Value)
}

func (c *Context) BindAttribLocation(p gl.Program, a gl.Attrib, name string) {
	c.record("BindAttribLocation(%d, %d, %s)", p.Value, a.Value, name)
	if prog, ok := c.programs[p.Value]; ok {
		prog.bound[name] = int(a.Value)
	}
}

func (c *Context) BindBuffer(target gl.Enum, b gl.Buffer) {
	c.record("BindBuffer(0x%x, %d)", target, b.Value)
	c.boundBuffers[target] = b.Value
}

func (c *Context) BindTexture(target gl.Enum, t gl.Texture) {
	c.record("BindTexture(0x%x, %d)", target, t.Value)
	if t.Value != 0 {
		if _, ok := c.textures[t.Value]; !ok {
			c.setError(gl.INVALID_OPERATION)
			return
		}
		c.textures[t.Value] = target
	}
	c.boundTextures[[2]uint32{c.activeUnit, uint32(target)}] = t.Value
}

func (c *Context) BufferData(target gl.Enum, src []byte, usage gl.Enum) {
	c.record("BufferData(0x%x, %d)", target, len(src))
	b := c.boundBuffers[target]
	if _, ok := c.buffers[b]; !ok || b == 0 {
		c.setError(gl.INVALID_OPERATION)
		return
	}
	c.buffers[b] = append([]byte(nil), src...)
}

func (c *Context) Clear(mask gl.Enum) {
	c.record("Clear(0x%x)", mask)
}

func (c *Context) ClearColor(red, green, blue, alpha float32) {
	c.record("ClearColor(%g, %g, %g, %g)", red, green, blue, alpha)
	c.clearColor = [4]float32{red, green, blue, alpha}
}

func (c *Context) CompileShader(s gl.Shader) {
	c.record("CompileShader(%d)", s.Value)
	sh, ok := c.shaders[s.Value]
	if !ok {
		c.setError(gl.INVALID_VALUE)
		return
	}
	if strings.Contains(sh.source, CompileErrorToken) {
		sh.compiled = false
		sh.infoLog = "ERROR: 0:1: syntax error"
		return
	}
	sh.compiled = true
	sh.infoLog = ""
}

func (c *Context) CreateBuffer() gl.Buffer {
	c.record("CreateBuffer()")
	if c.FailBufferAlloc {
		return gl.Buffer{}
	}
	id := c.id()
	c.buffers[id] = nil
	return gl.Buffer{Value: id}
}

func (c *Context) CreateProgram() gl.Program {
	c.record("CreateProgram()")
	id := c.id()
	c.programs[id] = &program{
		bound:    make(map[string]int),
		attribs:  make(map[string]int),
		uniforms: make(map[string]int32),
	}
	return gl.Program{Init: true, Value: id}
}

func (c *Context) CreateShader(ty gl.Enum) gl.Shader {
	c.record("CreateShader(0x%x)", ty)
	id := c.id()
	c.shaders[id] = &shader{ty: ty}
	return gl.Shader{Value: id}
}

func (c *Context) CreateTexture() gl.Texture {
	c.record("CreateTexture()")
	if c.FailTextureAlloc {
		return gl.Texture{}
	}
	id := c.id()
	c.textures[id] = 0
	c.params[id] = make(map[gl.Enum]int)
	return gl.Texture{Value: id}
}

func (c *Context) DeleteBuffer(v gl.Buffer) {
	c.record("DeleteBuffer(%d)", v.Value)
	delete(c.buffers, v.Value)
}

func (c *Context) DeleteProgram(p gl.Program) {
	c.record("DeleteProgram(%d)", p.Value)
	delete(c.programs, p.Value)
	if c.current == p.Value {
		c.current = 0
	}
}

func (c *Context) DeleteShader(s gl.Shader) {
	c.record("DeleteShader(%d)", s.Value)
	delete(c.shaders, s.Value)
}

func (c *Context) DeleteTexture(v gl.Texture) {
	c.record("DeleteTexture(%d)", v.Value)
	delete(c.textures, v.Value)
	delete(c.params, v.Value)
	delete(c.mipmaps, v.Value)
	for slot, t := range c.boundTextures {
		if t == v.Value {
			delete(c.boundTextures, slot)
		}
	}
}

func (c *Context) DepthFunc(fn gl.Enum) {
	c.record("DepthFunc(0x%x)", fn)
	c.depthFunc = fn
}

func (c *Context) Disable(cap gl.Enum) {
	c.record("Disable(0x%x)", cap)
	c.caps[cap] = false
}

func (c *Context) DisableVertexAttribArray(a gl.Attrib) {
	c.record("DisableVertexAttribArray(%d)", a.Value)
	c.enabled[a.Value] = false
}

func (c *Context) snapshot(mode gl.Enum, count int, indexed bool) {
	if c.current == 0 {
		c.setError(gl.INVALID_OPERATION)
	}
	var enabled []uint
	for loc, on := range c.enabled {
		if on {
			enabled = append(enabled, loc)
		}
	}
	c.Draws = append(c.Draws, DrawCall{
		Mode:      mode,
		Count:     count,
		Indexed:   indexed,
		Program:   c.current,
		DepthFunc: c.depthFunc,
		Texture2D: c.boundTextures[[2]uint32{c.activeUnit, gl.TEXTURE_2D}],
		CubeMap:   c.boundTextures[[2]uint32{c.activeUnit, gl.TEXTURE_CUBE_MAP}],
		Enabled:   enabled,
	})
}

func (c *Context) DrawArrays(mode gl.Enum, first, count int) {
	c.record("DrawArrays(0x%x, %d, %d)", mode, first, count)
	c.snapshot(mode, count, false)
}

func (c *Context) DrawElements(mode gl.Enum, count int, ty gl.Enum, offset int) {
	c.record("DrawElements(0x%x, %d, 0x%x, %d)", mode, count, ty, offset)
	if c.boundBuffers[gl.ELEMENT_ARRAY_BUFFER] == 0 {
		c.setError(gl.INVALID_OPERATION)
	}
	c.snapshot(mode, count, true)
}

func (c *Context) Enable(cap gl.Enum) {
	c.record("Enable(0x%x)", cap)
	c.caps[cap] = true
}

func (c *Context) EnableVertexAttribArray(a gl.Attrib) {
	c.record("EnableVertexAttribArray(%d)", a.Value)
	c.enabled[a.Value] = true
}

func (c *Context) GenerateMipmap(target gl.Enum) {
	c.record("GenerateMipmap(0x%x)", target)
	t := c.boundTextures[[2]uint32{c.activeUnit, uint32(target)}]
	if t == 0 {
		c.setError(gl.INVALID_OPERATION)
		return
	}
	c.mipmaps[t]++
}

func (c *Context) GetAttribLocation(p gl.Program, name string) gl.Attrib {
	c.record("GetAttribLocation(%d, %s)", p.Value, name)
	prog, ok := c.programs[p.Value]
	if !ok || !prog.linked {
		c.setError(gl.INVALID_OPERATION)
		return gl.Attrib{Value: ^uint(0)}
	}
	loc, ok := prog.attribs[name]
	if !ok {
		return gl.Attrib{Value: ^uint(0)}
	}
	return gl.Attrib{Value: uint(loc)}
}

func (c *Context) GetError() gl.Enum {
	if len(c.errors) == 0 {
		return gl.NO_ERROR
	}
	code := c.errors[0]
	c.errors = c.errors[1:]
	return code
}

func (c *Context) GetProgrami(p gl.Program, pname gl.Enum) int {
	prog, ok := c.programs[p.Value]
	if !ok {
		c.setError(gl.INVALID_VALUE)
		return 0
	}
	if pname == gl.LINK_STATUS && prog.linked {
		return gl.TRUE
	}
	return gl.FALSE
}

func (c *Context) GetProgramInfoLog(p gl.Program) string {
	if prog, ok := c.programs[p.Value]; ok {
		return prog.infoLog
	}
	return ""
}

func (c *Context) GetShaderi(s gl.Shader, pname gl.Enum) int {
	sh, ok := c.shaders[s.Value]
	if !ok {
		c.setError(gl.INVALID_VALUE)
		return 0
	}
	switch pname {
	case gl.COMPILE_STATUS:
		if sh.compiled {
			return gl.TRUE
		}
		return gl.FALSE
	case gl.SHADER_TYPE:
		return int(sh.ty)
	}
	return 0
}

func (c *Context) GetShaderInfoLog(s gl.Shader) string {
	if sh, ok := c.shaders[s.Value]; ok {
		return sh.infoLog
	}
	return ""
}

func (c *Context) GetUniformLocation(p gl.Program, name string) gl.Uniform {
	c.record("GetUniformLocation(%d, %s)", p.Value, name)
	prog, ok := c.programs[p.Value]
	if !ok || !prog.linked {
		c.setError(gl.INVALID_OPERATION)
		return gl.Uniform{Value: -1}
	}
	loc, ok := prog.uniforms[name]
	if !ok {
		return gl.Uniform{Value: -1}
	}
	return gl.Uniform{Value: loc}
}

// LinkProgram succeeds when a compiled vertex and fragment shader are attached.
// Attribute locations honour BindAttribLocation; the rest are assigned in
// declaration order. Uniform locations follow declaration order.
func (c *Context) LinkProgram(p gl.Program) {
	c.record("LinkProgram(%d)", p.Value)
	prog, ok := c.programs[p.Value]
	if !ok {
		c.setError(gl.INVALID_VALUE)
		return
	}
	prog.linked = false
	var vertex, fragment *shader
	for _, id := range prog.shaders {
		sh, ok := c.shaders[id]
		if !ok {
			continue
		}
		switch sh.ty {
		case gl.VERTEX_SHADER:
			vertex = sh
		case gl.FRAGMENT_SHADER:
			fragment = sh
		}
	}
	switch {
	case vertex == nil || fragment == nil:
		prog.infoLog = "ERROR: program needs a vertex and a fragment shader"
		return
	case !vertex.compiled || !fragment.compiled:
		prog.infoLog = "ERROR: attached shader not compiled"
		return
	case strings.Contains(vertex.source, LinkErrorToken) || strings.Contains(fragment.source, LinkErrorToken):
		prog.infoLog = "ERROR: varying mismatch between stages"
		return
	}

	prog.attribs = make(map[string]int)
	prog.uniforms = make(map[string]int32)
	used := make(map[int]bool)
	for _, loc := range prog.bound {
		used[loc] = true
	}
	nextAttrib := 0
	var nextUniform int32
	for _, m := range declRe.FindAllStringSubmatch(vertex.source+"\n"+fragment.source, -1) {
		kind, name := m[1], m[2]
		switch kind {
		case "attribute":
			if _, seen := prog.attribs[name]; seen {
				continue
			}
			if loc, ok := prog.bound[name]; ok {
				prog.attribs[name] = loc
				continue
			}
			for used[nextAttrib] {
				nextAttrib++
			}
			used[nextAttrib] = true
			prog.attribs[name] = nextAttrib
		case "uniform":
			if _, seen := prog.uniforms[name]; seen {
				continue
			}
			prog.uniforms[name] = nextUniform
			nextUniform++
		}
	}
	prog.linked = true
	prog.infoLog = ""
}

func (c *Context) ShaderSource(s gl.Shader, src string) {
	c.record("ShaderSource(%d)", s.Value)
	if sh, ok := c.shaders[s.Value]; ok {
		sh.source = src
	}
}

func (c *Context) TexImage2D(target gl.Enum, level int, internalFormat int, width, height int, format gl.Enum, ty gl.Enum, data []byte) {
	c.record("TexImage2D(0x%x, %d, %dx%d)", target, level, width, height)
	bindTarget := target
	if target >= gl.TEXTURE_CUBE_MAP_POSITIVE_X && target <= gl.TEXTURE_CUBE_MAP_NEGATIVE_Z {
		bindTarget = gl.TEXTURE_CUBE_MAP
	}
	t := c.boundTextures[[2]uint32{c.activeUnit, uint32(bindTarget)}]
	if t == 0 {
		c.setError(gl.INVALID_OPERATION)
		return
	}
	if len(data) != width*height*4 {
		c.setError(gl.INVALID_VALUE)
	}
	c.TexImages = append(c.TexImages, TexImage{Target: target, Texture: t, Width: width, Height: height, Bytes: len(data)})
}

func (c *Context) TexParameteri(target, pname gl.Enum, param int) {
	c.record("TexParameteri(0x%x, 0x%x, 0x%x)", target, pname, param)
	t := c.boundTextures[[2]uint32{c.activeUnit, uint32(target)}]
	if t == 0 {
		c.setError(gl.INVALID_OPERATION)
		return
	}
	c.params[t][pname] = param
}

func (c *Context) uniform(dst gl.Uniform, values ...float32) {
	if c.current == 0 {
		c.setError(gl.INVALID_OPERATION)
		return
	}
	c.Uniforms = append(c.Uniforms, UniformWrite{Program: c.current, Location: dst.Value, Values: values})
}

func (c *Context) Uniform1i(dst gl.Uniform, v int) {
	c.record("Uniform1i(%d, %d)", dst.Value, v)
	c.uniform(dst, float32(v))
}

func (c *Context) Uniform3f(dst gl.Uniform, v0, v1, v2 float32) {
	c.record("Uniform3f(%d, %g, %g, %g)", dst.Value, v0, v1, v2)
	c.uniform(dst, v0, v1, v2)
}

func (c *Context) UniformMatrix4fv(dst gl.Uniform, src []float32) {
	c.record("UniformMatrix4fv(%d)", dst.Value)
	c.uniform(dst, append([]float32(nil), src...)...)
}

func (c *Context) UseProgram(p gl.Program) {
	c.record("UseProgram(%d)", p.Value)
	if prog, ok := c.programs[p.Value]; p.Value != 0 && (!ok || !prog.linked) {
		c.setError(gl.INVALID_OPERATION)
		return
	}
	c.current = p.Value
}

func (c *Context) VertexAttribPointer(dst gl.Attrib, size int, ty gl.Enum, normalized bool, stride, offset int) {
	c.record("VertexAttribPointer(%d, %d, %d, %d)", dst.Value, size, stride, offset)
	c.pointers[dst.Value] = AttribPointer{
		Buffer: c.boundBuffers[gl.ARRAY_BUFFER],
		Size:   size,
		Stride: stride,
		Offset: offset,
	}
}

func (c *Context) Viewport(x, y, width, height int) {
	c.record("Viewport(%d, %d, %d, %d)", x, y, width, height)
	c.viewport = [4]int{x, y, width, height}
}
