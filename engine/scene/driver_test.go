package scene

import (
	"fmt"
	"io/fs"
	"testing"
	"time"

	"github.com/spaghettifunk/anima-wear/engine/assets"
	"github.com/spaghettifunk/anima-wear/engine/config"
	"github.com/spaghettifunk/anima-wear/engine/core"
	"github.com/spaghettifunk/anima-wear/engine/math"
	"github.com/spaghettifunk/anima-wear/engine/renderer/gles"
	"github.com/spaghettifunk/anima-wear/engine/renderer/gles/fakegl"
	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-wear/engine/renderer/primitives"
	"github.com/spaghettifunk/anima-wear/engine/renderer/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mobile/gl"
)

// memAssets serves images by name and shader text from a map. Every
// DecodeImage call returns fresh pixels since uploads release them.
type memAssets struct {
	text   map[string]string
	images map[string]int
	reads  []string
}

func newMemAssets() *memAssets {
	return &memAssets{
		text: map[string]string{},
		images: map[string]int{
			"textures/bg.png":      4,
			"textures/checker.png": 2,
			"textures/npot.png":    3,
			"skybox/right.png":     2,
			"skybox/left.png":      2,
			"skybox/top.png":       2,
			"skybox/bottom.png":    2,
			"skybox/front.png":     2,
			"skybox/back.png":      2,
		},
	}
}

func (m *memAssets) missing(name string) error {
	return &assets.ResourceLoadError{Name: name, Err: fs.ErrNotExist}
}

func (m *memAssets) ReadTextAsset(name string) (string, error) {
	m.reads = append(m.reads, name)
	s, ok := m.text[name]
	if !ok {
		return "", m.missing(name)
	}
	return s, nil
}

func (m *memAssets) DecodeImage(name string) (*metadata.ImageData, error) {
	m.reads = append(m.reads, name)
	size, ok := m.images[name]
	if !ok {
		return nil, m.missing(name)
	}
	return &metadata.ImageData{Name: name, Width: size, Height: size, Pixels: make([]uint8, size*size*4)}, nil
}

func (m *memAssets) LoadShader(base string) (metadata.ShaderSource, error) {
	vertex, err := m.ReadTextAsset(base + ".vert")
	if err != nil {
		return metadata.ShaderSource{}, err
	}
	fragment, err := m.ReadTextAsset(base + ".frag")
	if err != nil {
		return metadata.ShaderSource{}, err
	}
	return metadata.ShaderSource{Name: base, Vertex: vertex, Fragment: fragment}, nil
}

func (m *memAssets) LoadCubeMap(faces [metadata.CubeFaceCount]string) ([metadata.CubeFaceCount]*metadata.ImageData, error) {
	var out [metadata.CubeFaceCount]*metadata.ImageData
	for i, name := range faces {
		img, err := m.DecodeImage(name)
		if err != nil {
			return out, err
		}
		out[i] = img
	}
	return out, nil
}

var _ Assets = (*assets.AssetManager)(nil)

func newTestDriver(t *testing.T, cfg *config.Config) (*fakegl.Context, *Driver) {
	t.Helper()
	fake := fakegl.New()
	d, err := NewDriver(gles.NewRenderContext(fake, true), cfg, newMemAssets(), nil)
	require.NoError(t, err)
	return fake, d
}

func preset(t *testing.T, name string) *config.Config {
	t.Helper()
	cfg, err := config.Preset(name)
	require.NoError(t, err)
	return cfg
}

func TestDriverDefaultScene(t *testing.T) {
	fake, d := newTestDriver(t, config.Default())
	require.Len(t, d.Objects(), 1)
	assert.Equal(t, primitives.KindSquare, d.Objects()[0].Primitive.Kind())
	assert.Nil(t, d.Skybox())

	d.OnSurfaceResized(454, 454)
	assert.Equal(t, [4]int{0, 0, 454, 454}, fake.ViewportValue())

	require.NoError(t, d.OnFrame(1.0/60))
	require.Len(t, fake.Draws, 1)
	assert.True(t, fake.Draws[0].Indexed)
	assert.Equal(t, [4]float32{0.5, 0.2, 1.0, 1}, fake.ClearColorValue())
	assert.True(t, fake.Enabled(gl.DEPTH_TEST))
	assert.Equal(t, uint64(1), d.Frames())
	assert.Equal(t, float32(2), d.Angle())

	d.OnAmbientModeChanged(true)
	require.NoError(t, d.OnFrame(1.0/60))
	assert.True(t, d.Ambient())
	assert.Equal(t, [4]float32{0, 0, 0, 1}, fake.ClearColorValue())
}

func TestDriverDrawsObjectsThenSkybox(t *testing.T) {
	fake, d := newTestDriver(t, preset(t, "skybox"))
	require.Len(t, d.Objects(), 2)
	require.NotNil(t, d.Skybox())

	fake.ResetCalls()
	require.NoError(t, d.OnFrame(0.1))
	require.Len(t, fake.Draws, 3)
	assert.Equal(t, gl.Enum(gl.LESS), fake.Draws[0].DepthFunc)
	assert.Equal(t, gl.Enum(gl.LESS), fake.Draws[1].DepthFunc)
	sky := fake.Draws[2]
	assert.Equal(t, gl.Enum(gl.LEQUAL), sky.DepthFunc)
	assert.NotZero(t, sky.CubeMap)
	assert.Equal(t, gl.Enum(gl.LESS), fake.DepthFuncValue())
}

func TestDriverModelMatrices(t *testing.T) {
	_, d := newTestDriver(t, preset(t, "skybox"))
	left, right := d.Objects()[0], d.Objects()[1]
	assert.True(t, left.SpinScaledByX)

	axis := math.NewVec3(0.5, 1, 0)
	assert.True(t, left.Model(90).Compare(math.ComposeSpinModel(90, axis, math.NewVec3(-1, 0, 0)), 1e-6))
	assert.True(t, right.Model(90).Compare(math.ComposeModel(90, axis, math.NewVec3(1, 0, 0)), 1e-6))

	for i := 0; i < 3; i++ {
		require.NoError(t, d.OnFrame(0))
	}
	// The last model drawn belongs to the last object, at the angle of frame three.
	assert.True(t, d.Transform().Model.Compare(right.Model(4), 1e-5))
	assert.Equal(t, float32(6), d.Angle())
}

func TestDriverAngleWraps(t *testing.T) {
	_, d := newTestDriver(t, config.Default())
	for i := 0; i < 180; i++ {
		require.NoError(t, d.OnFrame(0))
		assert.GreaterOrEqual(t, d.Angle(), float32(0))
		assert.Less(t, d.Angle(), float32(360))
	}
	assert.Equal(t, float32(0), d.Angle())
}

func TestDriverProjection(t *testing.T) {
	cfg := config.Default()
	_, d := newTestDriver(t, cfg)
	d.OnSurfaceResized(200, 100)
	expected := math.NewMat4Perspective(45, 2, 0.1, 100)
	assert.True(t, d.Transform().Projection.Compare(expected, 1e-6))

	cfg = config.Default()
	cfg.Camera.Projection = config.ProjectionFrustum
	_, d = newTestDriver(t, cfg)
	d.OnSurfaceResized(200, 100)
	expected = math.NewMat4Frustum(-2, 2, -1, 1, 0.1, 100)
	assert.True(t, d.Transform().Projection.Compare(expected, 1e-6))

	before := d.Transform().Projection
	d.OnSurfaceResized(0, 100)
	assert.Equal(t, before, d.Transform().Projection)
}

func TestDriverCameraOrbit(t *testing.T) {
	cfg := config.Default()
	cfg.Camera.OrbitSpeed = 90
	_, d := newTestDriver(t, cfg)

	require.NoError(t, d.OnFrame(1))
	assert.True(t, d.Camera().GetPosition().Compare(math.NewVec3(-3, 0, 0), 1e-4))
	expected := math.NewMat4LookAt(math.NewVec3(-3, 0, 0), math.NewVec3Zero(), math.NewVec3Up())
	assert.True(t, d.Transform().View.Compare(expected, 1e-4))
}

func TestDriverSkipsTextureAllocationFailure(t *testing.T) {
	cfg := config.Default()
	cfg.Objects = []config.ObjectConfig{
		{Kind: "cube", Texture: "textures/bg.png"},
		{Kind: "cube"},
	}
	fake := fakegl.New()
	fake.FailTextureAlloc = true
	d, err := NewDriver(gles.NewRenderContext(fake, true), cfg, newMemAssets(), nil)
	require.NoError(t, err)
	require.Len(t, d.Objects(), 1)
	assert.Equal(t, 1, fake.LivePrograms())
	assert.Equal(t, 0, fake.LiveTextures())
}

func TestDriverScalesRepeatTexturesToPowerOfTwo(t *testing.T) {
	cfg := config.Default()
	cfg.Objects = []config.ObjectConfig{
		{Kind: "cube", Texture: "textures/npot.png"},
		{Kind: "cube", Texture: "textures/npot.png", Wrap: "clamp_to_edge"},
	}
	fake, _ := newTestDriver(t, cfg)
	require.Len(t, fake.TexImages, 2)
	assert.Equal(t, 4, fake.TexImages[0].Width)
	assert.Equal(t, 4, fake.TexImages[0].Height)
	assert.Equal(t, 3, fake.TexImages[1].Width)
}

func TestDriverFailsOnMissingAsset(t *testing.T) {
	cfg := config.Default()
	cfg.Objects = []config.ObjectConfig{
		{Kind: "cube", Texture: "textures/bg.png"},
		{Kind: "square", Texture: "textures/missing.png"},
	}
	fake := fakegl.New()
	_, err := NewDriver(gles.NewRenderContext(fake, true), cfg, newMemAssets(), nil)
	require.Error(t, err)

	var loadErr *assets.ResourceLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "textures/missing.png", loadErr.Name)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "objects[1]")

	assert.Zero(t, fake.LivePrograms())
	assert.Zero(t, fake.LiveBuffers())
	assert.Zero(t, fake.LiveTextures())
}

func TestDriverShaderOverride(t *testing.T) {
	cfg := config.Default()
	cfg.Objects = []config.ObjectConfig{{
		Kind:           "cube",
		VertexShader:   "shaders/custom.vert",
		FragmentShader: "shaders/custom.frag",
	}}
	mem := newMemAssets()
	def := primitives.DefaultShader(primitives.KindCube)
	mem.text["shaders/custom.vert"] = def.Vertex
	mem.text["shaders/custom.frag"] = def.Fragment

	fake := fakegl.New()
	d, err := NewDriver(gles.NewRenderContext(fake, true), cfg, mem, nil)
	require.NoError(t, err)
	assert.Len(t, d.Objects(), 1)
	assert.Equal(t, []string{"shaders/custom.vert", "shaders/custom.frag"}, mem.reads)

	mem.text["shaders/custom.frag"] = def.Fragment + "\n// " + fakegl.CompileErrorToken
	_, err = NewDriver(gles.NewRenderContext(fake, true), cfg, mem, nil)
	var compileErr *gles.ShaderCompileError
	assert.ErrorAs(t, err, &compileErr)
}

func TestDriverSkyboxShaders(t *testing.T) {
	cfg := preset(t, "mirror")
	cfg.Skybox.Shaders = "shaders/sky"
	mem := newMemAssets()
	def := primitives.DefaultShader(primitives.KindSkyBox)
	mem.text["shaders/sky.vert"] = def.Vertex
	mem.text["shaders/sky.frag"] = def.Fragment

	fake := fakegl.New()
	d, err := NewDriver(gles.NewRenderContext(fake, true), cfg, mem, nil)
	require.NoError(t, err)
	require.NotNil(t, d.Skybox())
	assert.Equal(t, primitives.KindMirrorCube, d.Objects()[0].Primitive.Kind())
	// One environment map for the mirror, one for the skybox.
	assert.Equal(t, 2, fake.LiveTextures())

	delete(mem.text, "shaders/sky.frag")
	_, err = NewDriver(gles.NewRenderContext(fake, true), cfg, mem, nil)
	assert.ErrorContains(t, err, "skybox")
}

func TestDriverClockTick(t *testing.T) {
	cfg := preset(t, "texture-cube")
	cfg.Objects[0].Texture = ""
	clock := text.NewClockRenderer(text.ClockOptions{Size: 32})
	fake := fakegl.New()
	d, err := NewDriver(gles.NewRenderContext(fake, true), cfg, newMemAssets(), clock)
	require.NoError(t, err)
	require.Len(t, d.Objects(), 1)
	assert.True(t, d.Objects()[0].ClockText)
	assert.Equal(t, 1, fake.LiveTextures())

	t1 := time.Date(2020, 1, 2, 10, 0, 5, 0, time.UTC)
	require.NoError(t, d.OnTimeTick(t1))
	uploads := len(fake.TexImages)

	require.NoError(t, d.OnTimeTick(t1.Add(30*time.Second)))
	assert.Len(t, fake.TexImages, uploads)

	require.NoError(t, d.OnTimeTick(t1.Add(time.Minute)))
	require.Len(t, fake.TexImages, uploads+1)
	assert.Equal(t, 32, fake.TexImages[uploads].Width)
	assert.Equal(t, 1, fake.LiveTextures())
}

func TestDriverClockTickUpdatesEveryClockObject(t *testing.T) {
	cfg := preset(t, "texture-cube")
	cfg.Objects[0].Texture = ""
	second := cfg.Objects[0]
	second.Translation = [3]float32{1, 0, 0}
	cfg.Objects = append(cfg.Objects, second)
	clock := text.NewClockRenderer(text.ClockOptions{Size: 32})
	fake := fakegl.New()
	d, err := NewDriver(gles.NewRenderContext(fake, true), cfg, newMemAssets(), clock)
	require.NoError(t, err)
	require.Len(t, d.Objects(), 2)
	assert.Equal(t, 2, fake.LiveTextures())

	tick := time.Date(2020, 1, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, d.OnTimeTick(tick))
	require.NoError(t, d.OnTimeTick(tick.Add(time.Minute)))
	for _, obj := range d.Objects() {
		tc, ok := obj.Primitive.(*primitives.TextureCube)
		require.True(t, ok)
		assert.Equal(t, 3, tc.Texture().Uploads())
	}
	assert.Equal(t, 2, fake.LiveTextures())
	assert.Zero(t, d.rc.ErrorCount())
}

func TestDriverClockTexturesPowerOfTwo(t *testing.T) {
	cfg := preset(t, "texture-cube")
	cfg.Objects[0].Texture = ""
	clamped := cfg.Objects[0]
	clamped.Wrap = "clamp_to_edge"
	cfg.Objects = append(cfg.Objects, clamped)
	clock := text.NewClockRenderer(text.ClockOptions{Size: 24})
	fake := fakegl.New()
	d, err := NewDriver(gles.NewRenderContext(fake, true), cfg, newMemAssets(), clock)
	require.NoError(t, err)
	require.Len(t, fake.TexImages, 2)
	assert.Equal(t, 32, fake.TexImages[0].Width)
	assert.Equal(t, 32, fake.TexImages[0].Height)
	assert.Equal(t, 24, fake.TexImages[1].Width)

	require.NoError(t, d.OnTimeTick(time.Date(2020, 1, 2, 10, 0, 0, 0, time.UTC)))
	require.Len(t, fake.TexImages, 4)
	assert.Equal(t, 32, fake.TexImages[2].Width)
	assert.Equal(t, 24, fake.TexImages[3].Width)

	npot := d.Objects()[1].Primitive.(*primitives.TextureCube)
	assert.Zero(t, fake.Mipmaps(npot.Texture().Handle()))
}

func TestDriverClockIgnoredWithoutClockObjects(t *testing.T) {
	fake, d := newTestDriver(t, config.Default())
	fake.ResetCalls()
	require.NoError(t, d.OnTimeTick(time.Now()))
	assert.Empty(t, fake.TexImages)
}

func TestDriverDestroy(t *testing.T) {
	fake, d := newTestDriver(t, preset(t, "mirror"))
	assert.NotZero(t, fake.LivePrograms())

	d.Destroy()
	d.Destroy()
	assert.Zero(t, fake.LivePrograms())
	assert.Zero(t, fake.LiveBuffers())
	assert.Zero(t, fake.LiveTextures())
	assert.Empty(t, d.Objects())
	assert.Nil(t, d.Skybox())
}

func TestDriverDrawErrorsContinue(t *testing.T) {
	fake, d := newTestDriver(t, preset(t, "skybox"))
	d.Objects()[0].Primitive.Destroy()
	fake.ResetCalls()

	err := d.OnFrame(0)
	assert.ErrorIs(t, err, core.ErrDestroyed)
	// The second cube and the skybox still draw.
	assert.Len(t, fake.Draws, 2)
}

func TestDriverRequiresContext(t *testing.T) {
	_, err := NewDriver(nil, config.Default(), newMemAssets(), nil)
	assert.ErrorIs(t, err, core.ErrNoContext)
}

func ExampleObject_Model() {
	obj := &Object{Axis: math.NewVec3(0, 1, 0), Translation: math.NewVec3(2, 0, 0)}
	m := obj.Model(0)
	fmt.Println(m.Data[12], m.Data[13], m.Data[14])
	// Output: 2 0 0
}
