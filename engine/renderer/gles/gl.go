package gles

import "golang.org/x/mobile/gl"

// GL is the part of an OpenGL ES 2.0 context the renderer issues calls on.
// A gl.Context from golang.org/x/mobile satisfies it; tests use fakegl.
type GL interface {
	ActiveTexture(texture gl.Enum)
	AttachShader(p gl.Program, s gl.Shader)
	BindAttribLocation(p gl.Program, a gl.Attrib, name string)
	BindBuffer(target gl.Enum, b gl.Buffer)
	BindTexture(target gl.Enum, t gl.Texture)
	BufferData(target gl.Enum, src []byte, usage gl.Enum)
	Clear(mask gl.Enum)
	ClearColor(red, green, blue, alpha float32)
	CompileShader(s gl.Shader)
	CreateBuffer() gl.Buffer
	CreateProgram() gl.Program
	CreateShader(ty gl.Enum) gl.Shader
	CreateTexture() gl.Texture
	DeleteBuffer(v gl.Buffer)
	DeleteProgram(p gl.Program)
	DeleteShader(s gl.Shader)
	DeleteTexture(v gl.Texture)
	DepthFunc(fn gl.Enum)
	Disable(cap gl.Enum)
	DisableVertexAttribArray(a gl.Attrib)
	DrawArrays(mode gl.Enum, first, count int)
	DrawElements(mode gl.Enum, count int, ty gl.Enum, offset int)
	Enable(cap gl.Enum)
	EnableVertexAttribArray(a gl.Attrib)
	GenerateMipmap(target gl.Enum)
	GetAttribLocation(p gl.Program, name string) gl.Attrib
	GetError() gl.Enum
	GetProgrami(p gl.Program, pname gl.Enum) int
	GetProgramInfoLog(p gl.Program) string
	GetShaderi(s gl.Shader, pname gl.Enum) int
	GetShaderInfoLog(s gl.Shader) string
	GetUniformLocation(p gl.Program, name string) gl.Uniform
	LinkProgram(p gl.Program)
	ShaderSource(s gl.Shader, src string)
	TexImage2D(target gl.Enum, level int, internalFormat int, width, height int, format gl.Enum, ty gl.Enum, data []byte)
	TexParameteri(target, pname gl.Enum, param int)
	Uniform1i(dst gl.Uniform, v int)
	Uniform3f(dst gl.Uniform, v0, v1, v2 float32)
	UniformMatrix4fv(dst gl.Uniform, src []float32)
	UseProgram(p gl.Program)
	VertexAttribPointer(dst gl.Attrib, size int, ty gl.Enum, normalized bool, stride, offset int)
	Viewport(x, y, width, height int)
}

var _ GL = (gl.Context)(nil)

// attribMissing reports the -1 sentinel GetAttribLocation returns for unknown names.
func attribMissing(a gl.Attrib) bool {
	return int32(a.Value) == -1
}

func uniformMissing(u gl.Uniform) bool {
	return u.Value == -1
}
