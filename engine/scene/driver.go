package scene

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spaghettifunk/anima-wear/engine/assets/loaders"
	"github.com/spaghettifunk/anima-wear/engine/config"
	"github.com/spaghettifunk/anima-wear/engine/core"
	"github.com/spaghettifunk/anima-wear/engine/math"
	"github.com/spaghettifunk/anima-wear/engine/renderer/components"
	"github.com/spaghettifunk/anima-wear/engine/renderer/gles"
	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-wear/engine/renderer/primitives"
	"github.com/spaghettifunk/anima-wear/engine/renderer/text"
)

// Assets is what the driver needs from the asset layer. *assets.AssetManager
// satisfies it.
type Assets interface {
	ReadTextAsset(name string) (string, error)
	DecodeImage(name string) (*metadata.ImageData, error)
	LoadShader(base string) (metadata.ShaderSource, error)
	LoadCubeMap(faces [metadata.CubeFaceCount]string) ([metadata.CubeFaceCount]*metadata.ImageData, error)
}

// Object is one configured primitive and where it sits in the world.
type Object struct {
	Primitive     primitives.Primitive
	Axis          math.Vec3
	Translation   math.Vec3
	SpinScaledByX bool
	// ClockText objects get the clock face uploaded on every minute change.
	ClockText bool
}

// Model composes the object's model matrix for the driver angle.
func (o *Object) Model(angle float32) math.Mat4 {
	if o.SpinScaledByX {
		return math.ComposeSpinModel(angle, o.Axis, o.Translation)
	}
	return math.ComposeModel(angle, o.Axis, o.Translation)
}

// Driver owns the primitives of one scene and the matrices they are drawn
// with. Every method must run on the thread owning the GL context.
type Driver struct {
	rc        *gles.RenderContext
	cfg       *config.Config
	camera    *components.Camera
	transform math.TransformState
	spin      *math.Spin
	clock     *text.ClockRenderer

	objects []*Object
	skybox  primitives.Primitive

	width, height int
	ambient       bool
	frames        uint64
}

// NewDriver builds every configured object and the skybox. An object whose
// texture cannot be allocated is logged and left out; any other failure
// destroys what was built and is returned.
func NewDriver(rc *gles.RenderContext, cfg *config.Config, assets Assets, clock *text.ClockRenderer) (*Driver, error) {
	if rc == nil {
		return nil, core.ErrNoContext
	}
	if clock == nil {
		clock = text.NewClockRenderer(text.ClockOptions{Size: cfg.Clock.Size, Format: cfg.Clock.Format})
	}
	d := &Driver{
		rc:        rc,
		cfg:       cfg,
		camera:    components.NewCamera(vec3(cfg.Camera.Eye), vec3(cfg.Camera.Center), vec3(cfg.Camera.Up)),
		transform: math.NewTransformState(),
		spin:      math.NewSpin(math.DefaultSpinStep),
		clock:     clock,
		width:     cfg.App.Width,
		height:    cfg.App.Height,
	}
	d.camera.OrbitSpeed = cfg.Camera.OrbitSpeed
	d.transform.View = d.camera.GetView()
	d.updateProjection()

	for i, oc := range cfg.Objects {
		obj, err := d.buildObject(assets, oc)
		if err != nil {
			var allocErr *gles.TextureAllocationError
			if errors.As(err, &allocErr) {
				core.LogWarn("objects[%d] (%s) skipped: %s", i, oc.Kind, err)
				continue
			}
			d.Destroy()
			return nil, fmt.Errorf("objects[%d] (%s): %w", i, oc.Kind, err)
		}
		d.objects = append(d.objects, obj)
	}

	if cfg.Skybox.Enabled {
		sky, err := d.buildSkybox(assets)
		if err != nil {
			var allocErr *gles.TextureAllocationError
			if !errors.As(err, &allocErr) {
				d.Destroy()
				return nil, fmt.Errorf("skybox: %w", err)
			}
			core.LogWarn("skybox skipped: %s", err)
		} else {
			d.skybox = sky
		}
	}
	core.LogInfo("scene ready: %d objects, skybox %t", len(d.objects), d.skybox != nil)
	return d, nil
}

func (d *Driver) buildObject(assets Assets, oc config.ObjectConfig) (*Object, error) {
	kind, err := primitives.ParseKind(oc.Kind)
	if err != nil {
		return nil, err
	}
	texCfg, err := oc.TextureConfig()
	if err != nil {
		return nil, err
	}
	opts := primitives.Options{TextureConfig: texCfg}

	if oc.VertexShader != "" {
		src, err := readShaderPair(assets, oc.VertexShader, oc.FragmentShader)
		if err != nil {
			return nil, err
		}
		opts.Shader = src
	}

	switch {
	case oc.Texture != "":
		img, err := assets.DecodeImage(oc.Texture)
		if err != nil {
			return nil, err
		}
		opts.Texture = fitTexture(img, texCfg)
	case oc.ClockText:
		opts.Texture = fitTexture(d.clock.Render(time.Now()), texCfg)
	}

	if kind == primitives.KindMirrorCube {
		if opts.Faces, err = assets.LoadCubeMap(d.cfg.Skybox.Faces); err != nil {
			return nil, err
		}
	}

	p, err := primitives.New(d.rc, kind, opts)
	if err != nil {
		return nil, err
	}
	return &Object{
		Primitive:     p,
		Axis:          vec3(oc.Axis),
		Translation:   vec3(oc.Translation),
		SpinScaledByX: oc.SpinScaledByX,
		ClockText:     oc.ClockText,
	}, nil
}

func (d *Driver) buildSkybox(assets Assets) (primitives.Primitive, error) {
	var opts primitives.Options
	if d.cfg.Skybox.Shaders != "" {
		src, err := assets.LoadShader(d.cfg.Skybox.Shaders)
		if err != nil {
			return nil, err
		}
		opts.Shader = &src
	}
	faces, err := assets.LoadCubeMap(d.cfg.Skybox.Faces)
	if err != nil {
		return nil, err
	}
	opts.Faces = faces
	return primitives.New(d.rc, primitives.KindSkyBox, opts)
}

// fitTexture scales img up to power-of-two edges when cfg needs them. GL ES
// 2.0 leaves NPOT textures with repeat wrap or mipmaps incomplete.
func fitTexture(img *metadata.ImageData, cfg metadata.TextureConfig) *metadata.ImageData {
	if !cfg.RequiresPowerOfTwo() || img.IsPowerOfTwo() {
		return img
	}
	core.LogDebug("%s is %dx%d, scaling to a power of two", img.Name, img.Width, img.Height)
	return loaders.ResizePowerOfTwo(img)
}

func readShaderPair(assets Assets, vertexName, fragmentName string) (*metadata.ShaderSource, error) {
	vertex, err := assets.ReadTextAsset(vertexName)
	if err != nil {
		return nil, err
	}
	fragment, err := assets.ReadTextAsset(fragmentName)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(vertexName, ".vert")
	return &metadata.ShaderSource{Name: name, Vertex: vertex, Fragment: fragment}, nil
}

// OnSurfaceResized sets the viewport and recomputes the projection for the
// new aspect ratio.
func (d *Driver) OnSurfaceResized(width, height int) {
	if width <= 0 || height <= 0 {
		core.LogWarn("ignoring surface size %dx%d", width, height)
		return
	}
	d.width, d.height = width, height
	d.rc.Viewport(width, height)
	d.updateProjection()
}

func (d *Driver) updateProjection() {
	aspect := float32(d.width) / float32(d.height)
	cam := d.cfg.Camera
	if cam.Projection == config.ProjectionFrustum {
		d.transform.Projection = math.NewMat4Frustum(-aspect, aspect, -1, 1, cam.Near, cam.Far)
		return
	}
	d.transform.Projection = math.NewMat4Perspective(cam.FOV, aspect, cam.Near, cam.Far)
}

// OnFrame clears the surface and draws every object in order, then the
// skybox. delta is the time since the previous frame in seconds. Draw errors
// are logged and the rest of the frame still runs; the first one is returned.
func (d *Driver) OnFrame(delta float64) error {
	c := d.cfg.ClearColor(d.ambient)
	d.rc.BeginFrame(c[0], c[1], c[2], c[3])

	d.camera.Update(delta)
	d.transform.View = d.camera.GetView()
	angle := d.spin.Angle

	var first error
	for _, obj := range d.objects {
		d.transform.Model = obj.Model(angle)
		d.transform.UpdateMVP()
		if err := obj.Primitive.Draw(d.rc, d.transform.Model, d.transform.View, d.transform.Projection); err != nil {
			core.LogError("draw %s %s: %s", obj.Primitive.Kind(), obj.Primitive.ID().Short(), err)
			if first == nil {
				first = err
			}
		}
	}
	if d.skybox != nil {
		if err := d.skybox.Draw(d.rc, math.NewMat4Identity(), d.transform.View, d.transform.Projection); err != nil {
			core.LogError("draw skybox: %s", err)
			if first == nil {
				first = err
			}
		}
	}

	d.spin.Advance()
	d.frames++
	return first
}

// OnAmbientModeChanged only switches the clear colour.
func (d *Driver) OnAmbientModeChanged(ambient bool) {
	d.ambient = ambient
}

// OnTimeTick re-renders the clock face into every clock object when the
// displayed text changed.
func (d *Driver) OnTimeTick(t time.Time) error {
	if !d.hasClock() || !d.clock.Changed(t) {
		return nil
	}
	var errs []error
	for _, obj := range d.objects {
		if !obj.ClockText {
			continue
		}
		tc, ok := obj.Primitive.(*primitives.TextureCube)
		if !ok {
			continue
		}
		// Uploads release the pixels, so every cube gets its own image.
		img := fitTexture(d.clock.Render(t), tc.TextureConfig())
		if err := tc.SetTexture(d.rc, img); err != nil {
			errs = append(errs, fmt.Errorf("clock texture %s: %w", tc.ID().Short(), err))
		}
	}
	if len(errs) > 0 {
		// Retry on the next tick.
		d.clock.Reset()
	}
	return errors.Join(errs...)
}

func (d *Driver) hasClock() bool {
	for _, obj := range d.objects {
		if obj.ClockText {
			return true
		}
	}
	return false
}

// Destroy releases every primitive. It is safe to call more than once.
func (d *Driver) Destroy() {
	for _, obj := range d.objects {
		obj.Primitive.Destroy()
	}
	d.objects = nil
	if d.skybox != nil {
		d.skybox.Destroy()
		d.skybox = nil
	}
}

func (d *Driver) Objects() []*Object {
	return d.objects
}

func (d *Driver) Skybox() primitives.Primitive {
	return d.skybox
}

func (d *Driver) Camera() *components.Camera {
	return d.camera
}

// Transform returns the matrices used by the last frame.
func (d *Driver) Transform() math.TransformState {
	return d.transform
}

// Angle is the rotation, in degrees, the next frame will use.
func (d *Driver) Angle() float32 {
	return d.spin.Angle
}

func (d *Driver) Ambient() bool {
	return d.ambient
}

func (d *Driver) Frames() uint64 {
	return d.frames
}

func vec3(v [3]float32) math.Vec3 {
	return math.NewVec3(v[0], v[1], v[2])
}
