package primitives

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/anima-wear/engine/core"
	"github.com/spaghettifunk/anima-wear/engine/math"
	"github.com/spaghettifunk/anima-wear/engine/renderer/gles"
	"github.com/spaghettifunk/anima-wear/engine/renderer/gles/fakegl"
	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mobile/gl"
)

func newTestContext() (*fakegl.Context, *gles.RenderContext) {
	fake := fakegl.New()
	return fake, gles.NewRenderContext(fake, true)
}

func newImage(w, h int) *metadata.ImageData {
	return &metadata.ImageData{Name: "test", Width: w, Height: h, Pixels: make([]uint8, w*h*4)}
}

func newFaces(size int) [metadata.CubeFaceCount]*metadata.ImageData {
	var faces [metadata.CubeFaceCount]*metadata.ImageData
	for i := range faces {
		faces[i] = newImage(size, size)
	}
	return faces
}

func testView() math.Mat4 {
	return math.NewMat4LookAt(math.NewVec3(0, 0, -3), math.NewVec3Zero(), math.NewVec3Up())
}

func testProjection() math.Mat4 {
	return math.NewMat4Perspective(45, 1, 0.1, 100)
}

func indexOf(names []string, name string, from int) int {
	for i := from; i < len(names); i++ {
		if names[i] == name {
			return i
		}
	}
	return -1
}

func TestParseKind(t *testing.T) {
	for _, kind := range []Kind{KindCube, KindTextureCube, KindSquare, KindMirrorCube, KindSkyBox} {
		parsed, err := ParseKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}
	_, err := ParseKind("teapot")
	assert.ErrorIs(t, err, core.ErrUnknownPrimitive)
}

func TestDefaultShadersDeclareBindings(t *testing.T) {
	for _, kind := range []Kind{KindCube, KindTextureCube, KindSquare, KindMirrorCube, KindSkyBox} {
		src := DefaultShader(kind)
		bindings := Bindings(kind)
		for _, name := range bindings.Attributes {
			assert.Contains(t, src.Vertex, name, "%s attribute", kind)
		}
		for _, name := range bindings.Uniforms {
			assert.Contains(t, src.Vertex+src.Fragment, name, "%s uniform", kind)
		}
	}
}

func TestCubeDrawSequence(t *testing.T) {
	fake, rc := newTestContext()
	cube, err := NewCube(rc, Options{Texture: newImage(2, 2)})
	require.NoError(t, err)
	assert.Equal(t, StageReady, cube.Stage())
	assert.Equal(t, KindCube, cube.Kind())

	fake.ResetCalls()
	model := math.ComposeModel(30, math.NewVec3(1, 0, 0), math.NewVec3Zero())
	require.NoError(t, cube.Draw(rc, model, testView(), testProjection()))

	names := fake.CallNames()
	use := indexOf(names, "UseProgram", 0)
	bind := indexOf(names, "BindTexture", use)
	attrib := indexOf(names, "VertexAttribPointer", bind)
	uniform := indexOf(names, "UniformMatrix4fv", attrib)
	draw := indexOf(names, "DrawArrays", uniform)
	disable := indexOf(names, "DisableVertexAttribArray", draw)
	assert.Equal(t, 0, use)
	for _, i := range []int{bind, attrib, uniform, draw, disable} {
		assert.Greater(t, i, 0)
	}

	require.Len(t, fake.Draws, 1)
	assert.Equal(t, 36, fake.Draws[0].Count)
	assert.False(t, fake.Draws[0].Indexed)
	assert.NotZero(t, fake.Draws[0].Texture2D)
	assert.False(t, fake.AttribEnabled(0))
	assert.True(t, fake.AttribEnabled(1))

	assert.Equal(t, model.Data[:], fake.LastUniform(cube.program.Program(), "model"))
	assert.Equal(t, 0, rc.ErrorCount())
}

func TestCubeSpinWrapsAfter180Draws(t *testing.T) {
	_, rc := newTestContext()
	cube, err := NewCube(rc, Options{})
	require.NoError(t, err)

	for i := 0; i < 180; i++ {
		require.NoError(t, cube.Draw(rc, math.NewMat4Identity(), testView(), testProjection()))
		assert.GreaterOrEqual(t, cube.Angle(), float32(0))
		assert.Less(t, cube.Angle(), float32(360))
	}
	assert.Equal(t, float32(0), cube.Angle())
}

func TestTextureCubeSetTextureKeepsOneObject(t *testing.T) {
	fake, rc := newTestContext()
	cube, err := NewTextureCube(rc, Options{})
	require.NoError(t, err)
	assert.Nil(t, cube.Texture())
	assert.Equal(t, 0, fake.LiveTextures())

	require.NoError(t, cube.SetTexture(rc, newImage(4, 4)))
	handle := cube.Texture().Handle()
	require.NoError(t, cube.SetTexture(rc, newImage(4, 4)))

	assert.Equal(t, 1, fake.LiveTextures())
	assert.Equal(t, handle, cube.Texture().Handle())
	assert.Equal(t, 2, cube.Texture().Uploads())

	require.NoError(t, cube.Draw(rc, math.NewMat4Identity(), testView(), testProjection()))
	assert.Equal(t, handle.Value, fake.Draws[0].Texture2D)
}

func TestSquareIgnoresCameraMatrices(t *testing.T) {
	fake, rc := newTestContext()
	square, err := NewSquare(rc, Options{Texture: newImage(2, 2)})
	require.NoError(t, err)
	assert.True(t, square.Quirks().IgnoresCameraMatrices)

	garbage := math.NewMat4Translation(math.NewVec3(9, 9, 9))
	require.NoError(t, square.Draw(rc, garbage, garbage, garbage))
	require.NoError(t, square.Draw(rc, garbage, garbage, garbage))

	require.Len(t, fake.Draws, 2)
	assert.True(t, fake.Draws[0].Indexed)
	assert.Equal(t, 6, fake.Draws[0].Count)

	expected := math.NewMat4Rotation(2, squareAxis)
	assert.Equal(t, expected.Data[:], fake.LastUniform(square.program.Program(), "u_MVPMatrix"))
	assert.Equal(t, float32(4), square.Angle())
}

func TestMirrorCubeCameraPos(t *testing.T) {
	fake, rc := newTestContext()
	faces := newFaces(8)
	mirror, err := NewMirrorCube(rc, Options{Faces: faces})
	require.NoError(t, err)
	assert.True(t, mirror.Quirks().CameraPosFromViewRow)
	for _, face := range faces {
		assert.True(t, face.Released())
	}

	view := testView()
	require.NoError(t, mirror.Draw(rc, math.NewMat4Identity(), view, testProjection()))

	assert.Equal(t, view.Data[:3], fake.LastUniform(mirror.program.Program(), "cameraPos"))
	require.Len(t, fake.Draws, 1)
	assert.NotZero(t, fake.Draws[0].CubeMap)
	assert.Equal(t, 36, fake.Draws[0].Count)
	assert.Equal(t, 24, fake.Pointer(1).Stride)
	assert.Equal(t, 0, fake.Mipmaps(mirror.texture.Handle()))
}

func TestSkyBoxDepthFunc(t *testing.T) {
	fake, rc := newTestContext()
	sky, err := NewSkyBox(rc, Options{Faces: newFaces(8)})
	require.NoError(t, err)

	view := testView()
	require.NoError(t, sky.Draw(rc, math.NewMat4Identity(), view, testProjection()))

	require.Len(t, fake.Draws, 1)
	assert.Equal(t, gl.Enum(gl.LEQUAL), fake.Draws[0].DepthFunc)
	assert.Equal(t, gl.Enum(gl.LESS), fake.DepthFuncValue())
	assert.Equal(t, gl.Enum(gl.LESS), rc.DepthFunc())

	uploaded := fake.LastUniform(sky.program.Program(), "view")
	require.Len(t, uploaded, 16)
	assert.Equal(t, []float32{0, 0, 0}, uploaded[12:15])
	assert.Equal(t, view.Data[:12], uploaded[:12])
}

func TestSkyBoxRejectsMissingFace(t *testing.T) {
	fake, rc := newTestContext()
	faces := newFaces(8)
	faces[2] = nil

	_, err := NewSkyBox(rc, Options{Faces: faces})
	assert.ErrorIs(t, err, core.ErrInvalidImage)
	assert.Equal(t, 0, fake.LivePrograms())
	assert.Equal(t, 0, fake.LiveBuffers())
	assert.Equal(t, 0, fake.LiveTextures())
}

func TestDestroyReleasesEverything(t *testing.T) {
	fake, rc := newTestContext()
	cube, err := NewTextureCube(rc, Options{Texture: newImage(2, 2)})
	require.NoError(t, err)

	cube.Destroy()
	cube.Destroy()
	assert.Equal(t, StageDestroyed, cube.Stage())
	assert.Equal(t, 0, fake.LivePrograms())
	assert.Equal(t, 0, fake.LiveShaders())
	assert.Equal(t, 0, fake.LiveBuffers())
	assert.Equal(t, 0, fake.LiveTextures())

	fake.ResetCalls()
	assert.ErrorIs(t, cube.Draw(rc, math.NewMat4Identity(), testView(), testProjection()), core.ErrDestroyed)
	assert.ErrorIs(t, cube.SetTexture(rc, newImage(2, 2)), core.ErrDestroyed)
	assert.Empty(t, fake.Calls)
}

func TestDrawBeforeReady(t *testing.T) {
	fake, rc := newTestContext()
	var cube Cube
	assert.ErrorIs(t, cube.Draw(rc, math.NewMat4Identity(), testView(), testProjection()), core.ErrNotReady)
	var sky SkyBox
	assert.ErrorIs(t, sky.Draw(rc, math.NewMat4Identity(), testView(), testProjection()), core.ErrNotReady)
	assert.Empty(t, fake.Calls)
}

func TestConstructionFailures(t *testing.T) {
	t.Run("compile error", func(t *testing.T) {
		fake, rc := newTestContext()
		src := DefaultShader(KindCube)
		src.Fragment += "\n" + fakegl.CompileErrorToken
		_, err := NewCube(rc, Options{Shader: &src})
		var compileErr *gles.ShaderCompileError
		require.ErrorAs(t, err, &compileErr)
		assert.Equal(t, 0, fake.LiveShaders())
	})

	t.Run("texture allocation", func(t *testing.T) {
		fake, rc := newTestContext()
		fake.FailTextureAlloc = true
		_, err := New(rc, KindTextureCube, Options{Texture: newImage(2, 2)})
		var allocErr *gles.TextureAllocationError
		require.ErrorAs(t, err, &allocErr)
		assert.Equal(t, 0, fake.LivePrograms())
		assert.Equal(t, 0, fake.LiveBuffers())
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, rc := newTestContext()
		_, err := New(rc, Kind(42), Options{})
		assert.ErrorIs(t, err, core.ErrUnknownPrimitive)
	})
}

func TestDrawDisablesPositionOnError(t *testing.T) {
	fake, rc := newTestContext()
	cube, err := NewCube(rc, Options{Texture: newImage(2, 2)})
	require.NoError(t, err)
	fake.ResetCalls()

	failed := errors.New("uniform upload failed")
	err = cube.draw(rc, func(*gles.ShaderProgram) error { return failed })
	assert.ErrorIs(t, err, failed)
	assert.Empty(t, fake.Draws)
	assert.Contains(t, fake.CallNames(), "DisableVertexAttribArray")
	assert.False(t, fake.AttribEnabled(0))
}

func TestDrawLogsGLErrorsAndContinues(t *testing.T) {
	core.SetLogOutput(discard{})
	fake, rc := newTestContext()
	cube, err := NewCube(rc, Options{})
	require.NoError(t, err)

	fake.PushError(gl.INVALID_VALUE)
	require.NoError(t, cube.Draw(rc, math.NewMat4Identity(), testView(), testProjection()))
	assert.Equal(t, 1, rc.ErrorCount())
	require.NoError(t, cube.Draw(rc, math.NewMat4Identity(), testView(), testProjection()))
	assert.Equal(t, 1, rc.ErrorCount())
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
