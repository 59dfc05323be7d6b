package gles

import (
	"fmt"

	"github.com/spaghettifunk/anima-wear/engine/math"
	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
	"golang.org/x/mobile/gl"
)

// ShaderProgram owns a linked program, its two shader objects and the
// locations resolved for it.
type ShaderProgram struct {
	name       string
	rc         *RenderContext
	program    gl.Program
	vertex     gl.Shader
	fragment   gl.Shader
	attributes map[string]gl.Attrib
	uniforms   map[string]gl.Uniform
	destroyed  bool
}

// CompileProgram compiles both stages, binds bindings.Attributes[i] to
// location i, links, then resolves every attribute and uniform in bindings.
// On failure every GL object created so far is released.
func CompileProgram(rc *RenderContext, src metadata.ShaderSource, bindings metadata.ShaderBindings) (*ShaderProgram, error) {
	g := rc.GL()

	vs, err := compileShader(g, src.Name, metadata.ShaderStageVertex, src.Vertex)
	if err != nil {
		return nil, err
	}
	fs, err := compileShader(g, src.Name, metadata.ShaderStageFragment, src.Fragment)
	if err != nil {
		g.DeleteShader(vs)
		return nil, err
	}

	p := g.CreateProgram()
	g.AttachShader(p, vs)
	g.AttachShader(p, fs)
	for i, name := range bindings.Attributes {
		g.BindAttribLocation(p, gl.Attrib{Value: uint(i)}, name)
	}
	g.LinkProgram(p)

	sp := &ShaderProgram{
		name:       src.Name,
		rc:         rc,
		program:    p,
		vertex:     vs,
		fragment:   fs,
		attributes: make(map[string]gl.Attrib, len(bindings.Attributes)),
		uniforms:   make(map[string]gl.Uniform, len(bindings.Uniforms)),
	}

	if g.GetProgrami(p, gl.LINK_STATUS) == 0 {
		infoLog := g.GetProgramInfoLog(p)
		sp.Destroy()
		return nil, &LinkError{Program: src.Name, InfoLog: infoLog}
	}
	if err := rc.CheckError(fmt.Sprintf("link %s", src.Name)); err != nil {
		sp.Destroy()
		return nil, err
	}
	if err := sp.Resolve(bindings.Attributes, bindings.Uniforms); err != nil {
		sp.Destroy()
		return nil, err
	}
	return sp, nil
}

func compileShader(g GL, program string, stage metadata.ShaderStage, source string) (gl.Shader, error) {
	ty := gl.Enum(gl.VERTEX_SHADER)
	if stage == metadata.ShaderStageFragment {
		ty = gl.FRAGMENT_SHADER
	}
	s := g.CreateShader(ty)
	if s.Value == 0 {
		return gl.Shader{}, &ShaderCompileError{Program: program, Stage: stage, InfoLog: "glCreateShader returned 0"}
	}
	g.ShaderSource(s, source)
	g.CompileShader(s)
	if g.GetShaderi(s, gl.COMPILE_STATUS) == 0 {
		infoLog := g.GetShaderInfoLog(s)
		g.DeleteShader(s)
		return gl.Shader{}, &ShaderCompileError{Program: program, Stage: stage, InfoLog: infoLog}
	}
	return s, nil
}

// Resolve looks up every name once. A name the program does not expose is an
// *AttributeNotFoundError.
func (sp *ShaderProgram) Resolve(attributes, uniforms []string) error {
	g := sp.rc.GL()
	for _, name := range attributes {
		a := g.GetAttribLocation(sp.program, name)
		if attribMissing(a) {
			return &AttributeNotFoundError{Program: sp.name, Name: name, Kind: LocationAttribute}
		}
		sp.attributes[name] = a
	}
	for _, name := range uniforms {
		u := g.GetUniformLocation(sp.program, name)
		if uniformMissing(u) {
			return &AttributeNotFoundError{Program: sp.name, Name: name, Kind: LocationUniform}
		}
		sp.uniforms[name] = u
	}
	return nil
}

func (sp *ShaderProgram) Name() string {
	return sp.name
}

func (sp *ShaderProgram) Program() gl.Program {
	return sp.program
}

// Attribute returns a handle resolved by Resolve.
func (sp *ShaderProgram) Attribute(name string) (gl.Attrib, error) {
	a, ok := sp.attributes[name]
	if !ok {
		return gl.Attrib{}, &AttributeNotFoundError{Program: sp.name, Name: name, Kind: LocationAttribute}
	}
	return a, nil
}

// Uniform returns a handle resolved by Resolve.
func (sp *ShaderProgram) Uniform(name string) (gl.Uniform, error) {
	u, ok := sp.uniforms[name]
	if !ok {
		return gl.Uniform{}, &AttributeNotFoundError{Program: sp.name, Name: name, Kind: LocationUniform}
	}
	return u, nil
}

// Use makes this the current program.
func (sp *ShaderProgram) Use() {
	sp.rc.UseProgram(sp.program)
}

func (sp *ShaderProgram) SetMat4(u gl.Uniform, m math.Mat4) {
	sp.rc.GL().UniformMatrix4fv(u, m.Slice())
}

func (sp *ShaderProgram) SetVec3(u gl.Uniform, x, y, z float32) {
	sp.rc.GL().Uniform3f(u, x, y, z)
}

func (sp *ShaderProgram) SetInt(u gl.Uniform, v int) {
	sp.rc.GL().Uniform1i(u, v)
}

// Destroy releases the program and both shaders. Safe to call twice.
func (sp *ShaderProgram) Destroy() {
	if sp.destroyed {
		return
	}
	sp.destroyed = true
	g := sp.rc.GL()
	g.DeleteShader(sp.vertex)
	g.DeleteShader(sp.fragment)
	g.DeleteProgram(sp.program)
	sp.rc.forgetProgram(sp.program)
}
