package gles

import (
	"encoding/binary"
	"errors"
	gomath "math"
	"testing"

	"github.com/spaghettifunk/anima-wear/engine/core"
	"github.com/spaghettifunk/anima-wear/engine/math"
	"github.com/spaghettifunk/anima-wear/engine/renderer/gles/fakegl"
	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mobile/gl"
)

var _ GL = (*fakegl.Context)(nil)

const testVertex = `uniform mat4 model;
uniform mat4 view;
attribute vec4 vPosition;
attribute vec2 aTexCoord;
varying vec2 TexCoord;
void main() {
	gl_Position = view * model * vPosition;
	TexCoord = aTexCoord;
}`

const testFragment = `precision mediump float;
varying vec2 TexCoord;
uniform sampler2D texture1;
void main() {
	gl_FragColor = texture2D(texture1, TexCoord);
}`

var testBindings = metadata.ShaderBindings{
	Attributes: []string{"vPosition", "aTexCoord"},
	Uniforms:   []string{"model", "view", "texture1"},
}

func newTestContext(debug bool) (*fakegl.Context, *RenderContext) {
	fake := fakegl.New()
	return fake, NewRenderContext(fake, debug)
}

func newImage(name string, w, h int) *metadata.ImageData {
	return &metadata.ImageData{Name: name, Width: w, Height: h, Pixels: make([]uint8, w*h*4)}
}

func TestUploadGeometryCube(t *testing.T) {
	fake, rc := newTestContext(true)

	buf, err := UploadGeometry(rc, &metadata.CubeTextured)
	require.NoError(t, err)
	assert.Equal(t, 36, buf.VertexCount())
	assert.Equal(t, 20, buf.Stride())
	assert.Equal(t, 36, buf.DrawCount())
	assert.Equal(t, 1, fake.LiveBuffers())

	data := fake.BufferContents(buf.vbo)
	require.Len(t, data, len(metadata.CubeTextured.Vertices)*4)
	first := binary.NativeEndian.Uint32(data[:4])
	assert.Equal(t, metadata.CubeTextured.Vertices[0], gomath.Float32frombits(first))

	buf.Destroy()
	buf.Destroy()
	assert.Equal(t, 0, fake.LiveBuffers())
}

func TestUploadGeometryHostByteOrder(t *testing.T) {
	for _, table := range []*metadata.GeometryTable{&metadata.CubeTextured, &metadata.CubeNormals, &metadata.SkyBoxCube, &metadata.SquareQuad} {
		t.Run(table.Name, func(t *testing.T) {
			fake, rc := newTestContext(true)
			buf, err := UploadGeometry(rc, table)
			require.NoError(t, err)
			defer buf.Destroy()

			data := fake.BufferContents(buf.vbo)
			require.Len(t, data, 4*len(table.Vertices))
			for i, want := range table.Vertices {
				got := gomath.Float32frombits(binary.NativeEndian.Uint32(data[4*i:]))
				require.Equal(t, want, got, "vertex float %d", i)
			}

			if table.Indexed() {
				idx := fake.BufferContents(buf.ibo)
				require.Len(t, idx, 2*len(table.Indices))
				for i, want := range table.Indices {
					assert.Equal(t, uint16(want), binary.NativeEndian.Uint16(idx[2*i:]))
				}
			}
		})
	}
}

func TestUploadGeometryIndexed(t *testing.T) {
	fake, rc := newTestContext(true)

	buf, err := UploadGeometry(rc, &metadata.SquareQuad)
	require.NoError(t, err)
	assert.Equal(t, 4, buf.VertexCount())
	assert.Equal(t, 6, buf.IndexCount())
	assert.Equal(t, 2, fake.LiveBuffers())
	assert.Len(t, fake.BufferContents(buf.ibo), 12)

	sp, err := CompileProgram(rc, metadata.ShaderSource{Name: "square", Vertex: testVertex, Fragment: testFragment}, testBindings)
	require.NoError(t, err)
	sp.Use()
	require.NoError(t, buf.BindLayout(sp))
	buf.Draw()

	require.Len(t, fake.Draws, 1)
	assert.True(t, fake.Draws[0].Indexed)
	assert.Equal(t, 6, fake.Draws[0].Count)
	assert.Equal(t, 20, fake.Pointer(1).Stride)
	assert.Equal(t, 12, fake.Pointer(1).Offset)
	assert.NoError(t, rc.CheckError("draw"))
}

func TestUploadGeometryRejectsWideIndices(t *testing.T) {
	fake, rc := newTestContext(true)
	table := &metadata.GeometryTable{
		Name:     "wide",
		Layout:   metadata.PositionLayout,
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Indices:  []uint32{0, 1, 70000},
	}

	_, err := UploadGeometry(rc, table)
	assert.ErrorIs(t, err, core.ErrIndexOutOfRange)
	assert.Equal(t, 0, fake.LiveBuffers())
}

func TestUploadGeometryMalformed(t *testing.T) {
	_, rc := newTestContext(true)
	table := &metadata.GeometryTable{
		Name:     "ragged",
		Layout:   metadata.TexturedLayout,
		Vertices: []float32{0, 0, 0, 1},
	}

	_, err := UploadGeometry(rc, table)
	assert.ErrorIs(t, err, core.ErrMalformedGeometry)
}

func TestUploadGeometryAllocationFailure(t *testing.T) {
	fake, rc := newTestContext(false)
	fake.FailBufferAlloc = true

	_, err := UploadGeometry(rc, &metadata.CubeTextured)
	assert.ErrorIs(t, err, core.ErrBufferAllocation)
}

func TestCompileProgram(t *testing.T) {
	fake, rc := newTestContext(true)

	sp, err := CompileProgram(rc, metadata.ShaderSource{Name: "cube", Vertex: testVertex, Fragment: testFragment}, testBindings)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.LivePrograms())
	assert.Equal(t, 2, fake.LiveShaders())

	pos, err := sp.Attribute("vPosition")
	require.NoError(t, err)
	assert.Equal(t, uint(0), pos.Value)
	tex, err := sp.Attribute("aTexCoord")
	require.NoError(t, err)
	assert.Equal(t, uint(1), tex.Value)

	_, err = sp.Uniform("view")
	require.NoError(t, err)
	_, err = sp.Uniform("nope")
	var notFound *AttributeNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, LocationUniform, notFound.Kind)

	sp.Use()
	model, _ := sp.Uniform("model")
	sp.SetMat4(model, math.NewMat4Translation(math.NewVec3(1, 2, 3)))
	assert.Equal(t, []float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 1, 2, 3, 1}, fake.LastUniform(sp.Program(), "model"))

	sp.Destroy()
	sp.Destroy()
	assert.Equal(t, 0, fake.LivePrograms())
	assert.Equal(t, 0, fake.LiveShaders())
	assert.Equal(t, gl.Program{}, rc.CurrentProgram())
}

func TestCompileProgramCompileError(t *testing.T) {
	fake, rc := newTestContext(true)

	_, err := CompileProgram(rc, metadata.ShaderSource{
		Name:     "broken",
		Vertex:   testVertex,
		Fragment: testFragment + "\n" + fakegl.CompileErrorToken,
	}, testBindings)

	var compileErr *ShaderCompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, metadata.ShaderStageFragment, compileErr.Stage)
	assert.NotEmpty(t, compileErr.InfoLog)
	assert.Equal(t, 0, fake.LiveShaders())
	assert.Equal(t, 0, fake.LivePrograms())
}

func TestCompileProgramLinkError(t *testing.T) {
	fake, rc := newTestContext(true)

	_, err := CompileProgram(rc, metadata.ShaderSource{
		Name:     "mismatch",
		Vertex:   testVertex + "\n// " + fakegl.LinkErrorToken,
		Fragment: testFragment,
	}, testBindings)

	var linkErr *LinkError
	require.ErrorAs(t, err, &linkErr)
	assert.Equal(t, "mismatch", linkErr.Program)
	assert.Equal(t, 0, fake.LiveShaders())
	assert.Equal(t, 0, fake.LivePrograms())
}

func TestCompileProgramMissingAttribute(t *testing.T) {
	fake, rc := newTestContext(true)
	bindings := metadata.ShaderBindings{
		Attributes: []string{"vPosition", "aNormal"},
		Uniforms:   []string{"model"},
	}

	_, err := CompileProgram(rc, metadata.ShaderSource{Name: "cube", Vertex: testVertex, Fragment: testFragment}, bindings)

	var notFound *AttributeNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "aNormal", notFound.Name)
	assert.Equal(t, LocationAttribute, notFound.Kind)
	assert.Equal(t, 0, fake.LivePrograms())
}

func TestLoad2D(t *testing.T) {
	fake, rc := newTestContext(true)
	img := newImage("wall", 4, 2)

	tex, err := Load2D(rc, img, metadata.DefaultTexture2DConfig())
	require.NoError(t, err)
	assert.True(t, img.Released())
	assert.Equal(t, 1, fake.LiveTextures())
	assert.Equal(t, 1, fake.Mipmaps(tex.Handle()))
	assert.Equal(t, gl.REPEAT, fake.TextureParam(tex.Handle(), gl.TEXTURE_WRAP_S))
	assert.Equal(t, gl.LINEAR, fake.TextureParam(tex.Handle(), gl.TEXTURE_MAG_FILTER))
	w, h := tex.Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 2, h)

	tex.Destroy()
	assert.Equal(t, 0, fake.LiveTextures())
	assert.Equal(t, gl.Texture{}, rc.BoundTexture(0, gl.TEXTURE_2D))
}

func TestLoad2DSkipsMipmapsForNPOT(t *testing.T) {
	fake, rc := newTestContext(true)
	config := metadata.TextureConfig{
		Wrap:      metadata.TextureWrapClampToEdge,
		MinFilter: metadata.TextureFilterLinear,
		MagFilter: metadata.TextureFilterLinear,
	}

	tex, err := Load2D(rc, newImage("label", 3, 5), config)
	require.NoError(t, err)
	assert.Equal(t, 0, fake.Mipmaps(tex.Handle()))

	require.NoError(t, tex.Replace(newImage("label", 4, 4)))
	assert.Equal(t, 1, fake.Mipmaps(tex.Handle()))
}

func TestBindTextureTracksUnit(t *testing.T) {
	_, rc := newTestContext(false)
	tex := gl.Texture{Value: 7}

	rc.BindTexture(1, gl.TEXTURE_CUBE_MAP, tex)
	assert.Equal(t, 1, rc.ActiveUnit())
	assert.Equal(t, tex, rc.BoundTexture(1, gl.TEXTURE_CUBE_MAP))
	assert.Equal(t, gl.Texture{}, rc.BoundTexture(1, gl.TEXTURE_2D))
}

func TestLoad2DRejectsBadInput(t *testing.T) {
	_, rc := newTestContext(true)

	_, err := Load2D(rc, &metadata.ImageData{Name: "short", Width: 2, Height: 2, Pixels: make([]uint8, 3)}, metadata.DefaultTexture2DConfig())
	assert.ErrorIs(t, err, core.ErrInvalidImage)

	_, err = Load2D(rc, nil, metadata.DefaultTexture2DConfig())
	assert.ErrorIs(t, err, core.ErrInvalidImage)
}

func TestTextureReplaceReusesObject(t *testing.T) {
	fake, rc := newTestContext(true)

	tex, err := Load2D(rc, newImage("a", 2, 2), metadata.DefaultTexture2DConfig())
	require.NoError(t, err)
	handle := tex.Handle()

	require.NoError(t, tex.Replace(newImage("b", 2, 2)))
	require.NoError(t, tex.Replace(newImage("c", 8, 8)))

	assert.Equal(t, 1, fake.LiveTextures())
	assert.Equal(t, handle, tex.Handle())
	assert.Equal(t, 3, tex.Uploads())
	w, _ := tex.Size()
	assert.Equal(t, 8, w)

	tex.Destroy()
	assert.ErrorIs(t, tex.Replace(newImage("d", 2, 2)), core.ErrDestroyed)
}

func TestLoadCubeMap(t *testing.T) {
	fake, rc := newTestContext(true)
	var faces [metadata.CubeFaceCount]*metadata.ImageData
	for i := range faces {
		faces[i] = newImage(metadata.CubeFace(i).String(), 16, 16)
	}

	tex, err := LoadCubeMap(rc, faces, metadata.DefaultCubeMapConfig())
	require.NoError(t, err)
	assert.Equal(t, metadata.TextureTypeCube, tex.Type())

	require.Len(t, fake.TexImages, 6)
	for i, img := range fake.TexImages {
		assert.Equal(t, gl.Enum(gl.TEXTURE_CUBE_MAP_POSITIVE_X+i), img.Target)
		assert.Equal(t, tex.Handle().Value, img.Texture)
		assert.True(t, faces[i].Released())
	}
	assert.Equal(t, 0, fake.Mipmaps(tex.Handle()))
	assert.Equal(t, gl.CLAMP_TO_EDGE, fake.TextureParam(tex.Handle(), gl.TEXTURE_WRAP_T))
	assert.ErrorIs(t, tex.Replace(newImage("x", 16, 16)), core.ErrInvalidTextureConfig)
}

func TestLoadCubeMapRejectsMismatchedFaces(t *testing.T) {
	fake, rc := newTestContext(true)
	var faces [metadata.CubeFaceCount]*metadata.ImageData
	for i := range faces {
		faces[i] = newImage("face", 16, 16)
	}
	faces[3] = newImage("odd", 16, 8)

	_, err := LoadCubeMap(rc, faces, metadata.DefaultCubeMapConfig())
	assert.ErrorIs(t, err, core.ErrInvalidImage)
	assert.Equal(t, 0, fake.LiveTextures())

	faces[3] = newImage("face", 16, 16)
	_, err = LoadCubeMap(rc, faces, metadata.TextureConfig{
		Wrap:      metadata.TextureWrapClampToEdge,
		MinFilter: metadata.TextureFilterLinearMipmap,
		MagFilter: metadata.TextureFilterLinear,
	})
	assert.ErrorIs(t, err, core.ErrInvalidTextureConfig)
}

func TestTextureAllocationFailure(t *testing.T) {
	fake, rc := newTestContext(true)
	fake.FailTextureAlloc = true

	_, err := Load2D(rc, newImage("a", 2, 2), metadata.DefaultTexture2DConfig())
	var allocErr *TextureAllocationError
	require.ErrorAs(t, err, &allocErr)
	assert.Equal(t, metadata.TextureType2d, allocErr.Type)
}

func TestCheckErrorDebugOnly(t *testing.T) {
	fake, rc := newTestContext(false)
	fake.PushError(gl.INVALID_ENUM)
	assert.NoError(t, rc.CheckError("quiet"))
	assert.Equal(t, 0, rc.ErrorCount())

	fake, rc = newTestContext(true)
	fake.PushError(gl.INVALID_ENUM)
	fake.PushError(gl.OUT_OF_MEMORY)
	err := rc.CheckError("loud")
	var glErr *GLError
	require.True(t, errors.As(err, &glErr))
	assert.Equal(t, gl.Enum(gl.INVALID_ENUM), glErr.Code)
	assert.Contains(t, err.Error(), "INVALID_ENUM")
	assert.Equal(t, 2, rc.ErrorCount())
	assert.NoError(t, rc.CheckError("drained"))

	core.SetLogOutput(discard{})
	fake.PushError(gl.INVALID_VALUE)
	assert.True(t, rc.ReportError("report"))
	assert.False(t, rc.ReportError("report"))
}

func TestRenderContextState(t *testing.T) {
	fake, rc := newTestContext(false)

	rc.BeginFrame(0.5, 0.2, 1, 1)
	assert.True(t, fake.Enabled(gl.DEPTH_TEST))
	assert.Equal(t, gl.Enum(gl.LESS), fake.DepthFuncValue())
	assert.Equal(t, [4]float32{0.5, 0.2, 1, 1}, fake.ClearColorValue())

	rc.SetDepthFunc(gl.LEQUAL)
	assert.Equal(t, gl.Enum(gl.LEQUAL), rc.DepthFunc())

	rc.Viewport(454, 454)
	assert.Equal(t, [4]int{0, 0, 454, 454}, fake.ViewportValue())
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
