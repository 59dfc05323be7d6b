package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/anima-wear/engine/core"
	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-wear/engine/renderer/primitives"
)

// FileName is the configuration file looked up by the hosts.
const FileName = "watchface.toml"

type Config struct {
	App     AppConfig      `toml:"app"`
	Display DisplayConfig  `toml:"display"`
	Camera  CameraConfig   `toml:"camera"`
	Objects []ObjectConfig `toml:"objects"`
	Skybox  SkyboxConfig   `toml:"skybox"`
	Clock   ClockConfig    `toml:"clock"`
}

type AppConfig struct {
	Name        string `toml:"name"`
	FPS         int    `toml:"fps"`
	Debug       bool   `toml:"debug"`
	LogLevel    string `toml:"log_level"`
	AssetsDir   string `toml:"assets_dir"`
	WatchAssets bool   `toml:"watch_assets"`
	Width       int    `toml:"width"`
	Height      int    `toml:"height"`
}

type DisplayConfig struct {
	InteractiveClear [4]float32 `toml:"interactive_clear"`
	AmbientClear     [4]float32 `toml:"ambient_clear"`
}

type CameraConfig struct {
	Eye        [3]float32 `toml:"eye"`
	Center     [3]float32 `toml:"center"`
	Up         [3]float32 `toml:"up"`
	FOV        float32    `toml:"fov"`
	Near       float32    `toml:"near"`
	Far        float32    `toml:"far"`
	Projection string     `toml:"projection"`
	OrbitSpeed float32    `toml:"orbit_speed"`
}

// ObjectConfig places one primitive in the scene. Objects draw in file order.
type ObjectConfig struct {
	Kind           string     `toml:"kind"`
	Translation    [3]float32 `toml:"translation"`
	Axis           [3]float32 `toml:"axis"`
	SpinScaledByX  bool       `toml:"spin_scaled_by_x"`
	Texture        string     `toml:"texture"`
	Wrap           string     `toml:"wrap"`
	MinFilter      string     `toml:"min_filter"`
	MagFilter      string     `toml:"mag_filter"`
	VertexShader   string     `toml:"vertex_shader"`
	FragmentShader string     `toml:"fragment_shader"`
	ClockText      bool       `toml:"clock_text"`
}

// SkyboxConfig is drawn after every object. Its faces double as the
// environment map of mirror cubes.
type SkyboxConfig struct {
	Enabled bool      `toml:"enabled"`
	Faces   [6]string `toml:"faces"`
	// Shaders names a <base>.vert/<base>.frag pair; empty uses the built-in one.
	Shaders string `toml:"shaders"`
}

type ClockConfig struct {
	Font     string  `toml:"font"`
	FontSize float64 `toml:"font_size"`
	Format   string  `toml:"format"`
	Size     int     `toml:"size"`
}

const (
	ProjectionPerspective = "perspective"
	ProjectionFrustum     = "frustum"
)

// Default is the stock watch face: camera at (0,0,-3)
// looking at the origin, 45 degree perspective over 0.1..100, a purple
// interactive background and a black ambient one, 60 FPS.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:      "anima-wear",
			FPS:       60,
			LogLevel:  "info",
			AssetsDir: "assets",
			Width:     454,
			Height:    454,
		},
		Display: DisplayConfig{
			InteractiveClear: [4]float32{0.5, 0.2, 1.0, 1},
			AmbientClear:     [4]float32{0, 0, 0, 1},
		},
		Camera: CameraConfig{
			Eye:        [3]float32{0, 0, -3},
			Center:     [3]float32{0, 0, 0},
			Up:         [3]float32{0, 1, 0},
			FOV:        45,
			Near:       0.1,
			Far:        100,
			Projection: ProjectionPerspective,
		},
		Objects: []ObjectConfig{
			{
				Kind:    "square",
				Axis:    [3]float32{0.5, 1, 0},
				Texture: "textures/bg.png",
			},
		},
		Clock: ClockConfig{
			Format: "15:04",
			Size:   256,
		},
	}
}

// Load reads and validates a TOML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over Default() and validates the result. Unknown keys
// are errors.
func Parse(data []byte) (*Config, error) {
	return Decode(bytes.NewReader(data))
}

func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	hasObjects, err := decodeStrict(r, cfg)
	if err != nil {
		return nil, err
	}
	if !hasObjects {
		cfg.Objects = Default().Objects
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeStrict decodes into cfg. A file that declares [[objects]] replaces
// the default object list instead of merging into it.
func decodeStrict(r io.Reader, cfg *Config) (bool, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return false, err
	}
	cfg.Objects = nil
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return false, fmt.Errorf("unknown configuration keys:\n%s", strict.String())
		}
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return false, fmt.Errorf("line %d, column %d: %w", row, col, err)
		}
		return false, err
	}
	return len(cfg.Objects) > 0, nil
}

// Validate checks ranges and cross references between sections.
func (c *Config) Validate() error {
	var errs []error
	if c.App.FPS <= 0 {
		errs = append(errs, fmt.Errorf("app.fps must be positive, got %d", c.App.FPS))
	}
	if _, err := core.ParseLogLevel(c.App.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("app.log_level: %w", err))
	}
	if c.App.Width <= 0 || c.App.Height <= 0 {
		errs = append(errs, fmt.Errorf("app.width and app.height must be positive"))
	}
	for name, rgba := range map[string][4]float32{
		"display.interactive_clear": c.Display.InteractiveClear,
		"display.ambient_clear":     c.Display.AmbientClear,
	} {
		for _, v := range rgba {
			if v < 0 || v > 1 {
				errs = append(errs, fmt.Errorf("%s components must be in [0, 1]", name))
				break
			}
		}
	}

	switch c.Camera.Projection {
	case ProjectionPerspective, ProjectionFrustum:
	default:
		errs = append(errs, fmt.Errorf("camera.projection %q, want %s or %s", c.Camera.Projection, ProjectionPerspective, ProjectionFrustum))
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		errs = append(errs, fmt.Errorf("camera.fov must be in (0, 180), got %g", c.Camera.FOV))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("camera planes need 0 < near < far, got %g..%g", c.Camera.Near, c.Camera.Far))
	}
	if c.Camera.Eye == c.Camera.Center {
		errs = append(errs, fmt.Errorf("camera.eye and camera.center coincide"))
	}
	if c.Camera.Up == [3]float32{} {
		errs = append(errs, fmt.Errorf("camera.up is the zero vector"))
	}

	needsFaces := c.Skybox.Enabled
	for i, o := range c.Objects {
		prefix := fmt.Sprintf("objects[%d]", i)
		kind, err := primitives.ParseKind(o.Kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s.kind: %w", prefix, err))
			continue
		}
		if kind == primitives.KindSkyBox {
			errs = append(errs, fmt.Errorf("%s.kind %q: the skybox is configured in [skybox]: %w", prefix, o.Kind, core.ErrUnknownPrimitive))
			continue
		}
		if kind == primitives.KindMirrorCube {
			needsFaces = true
		}
		if o.ClockText && kind != primitives.KindTextureCube {
			errs = append(errs, fmt.Errorf("%s: clock_text needs kind texture-cube", prefix))
		}
		if (o.VertexShader == "") != (o.FragmentShader == "") {
			errs = append(errs, fmt.Errorf("%s: vertex_shader and fragment_shader go together", prefix))
		}
		if _, err := o.TextureConfig(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", prefix, err))
		}
	}
	if needsFaces {
		for i, face := range c.Skybox.Faces {
			if face == "" {
				errs = append(errs, fmt.Errorf("skybox.faces[%d] (%s) is empty", i, metadata.CubeFace(i)))
			}
		}
	}
	if c.Clock.Size < 0 {
		errs = append(errs, fmt.Errorf("clock.size must not be negative"))
	}
	return errors.Join(errs...)
}

// TextureConfig parses the object's sampling settings.
func (o ObjectConfig) TextureConfig() (metadata.TextureConfig, error) {
	var cfg metadata.TextureConfig
	var err error
	if cfg.Wrap, err = metadata.ParseTextureWrap(o.Wrap); err != nil {
		return cfg, err
	}
	if cfg.MinFilter, err = metadata.ParseTextureFilter(o.MinFilter); err != nil {
		return cfg, err
	}
	if cfg.MagFilter, err = metadata.ParseTextureFilter(o.MagFilter); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate(metadata.TextureType2d)
}

// LogLevel returns the parsed app.log_level. Validate has already checked it.
func (c *Config) LogLevel() core.LogLevel {
	level, _ := core.ParseLogLevel(c.App.LogLevel)
	return level
}

// Aspect returns width/height of the preview window.
func (c *Config) Aspect() float32 {
	return float32(c.App.Width) / float32(c.App.Height)
}

// ClearColor picks the background for the display mode.
func (c *Config) ClearColor(ambient bool) [4]float32 {
	if ambient {
		return c.Display.AmbientClear
	}
	return c.Display.InteractiveClear
}
