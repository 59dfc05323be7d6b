package primitives

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/anima-wear/engine/core"
	"github.com/spaghettifunk/anima-wear/engine/math"
	"github.com/spaghettifunk/anima-wear/engine/renderer/gles"
	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
)

type Kind int

const (
	KindCube Kind = iota
	KindTextureCube
	KindSquare
	KindMirrorCube
	KindSkyBox
)

func (k Kind) String() string {
	switch k {
	case KindCube:
		return "cube"
	case KindTextureCube:
		return "texture-cube"
	case KindSquare:
		return "square"
	case KindMirrorCube:
		return "mirror-cube"
	case KindSkyBox:
		return "skybox"
	}
	return "unknown"
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "cube":
		return KindCube, nil
	case "texture-cube", "texture_cube", "texturecube":
		return KindTextureCube, nil
	case "square":
		return KindSquare, nil
	case "mirror-cube", "mirror_cube", "mirrorcube", "mirror":
		return KindMirrorCube, nil
	case "skybox", "sky-box", "sky_box":
		return KindSkyBox, nil
	}
	return 0, fmt.Errorf("primitive kind %q: %w", s, core.ErrUnknownPrimitive)
}

/**
 * @brief Construction progress of a primitive. Draw is only legal in Ready.
 */
type Stage int

const (
	StageUninitialized Stage = iota
	StageShadersCompiled
	StageBuffersUploaded
	/** @brief Reached trivially by primitives that carry no texture. */
	StageTextureLoaded
	StageReady
	StageDestroyed
)

func (s Stage) String() string {
	switch s {
	case StageUninitialized:
		return "uninitialized"
	case StageShadersCompiled:
		return "shaders-compiled"
	case StageBuffersUploaded:
		return "buffers-uploaded"
	case StageTextureLoaded:
		return "texture-loaded"
	case StageReady:
		return "ready"
	case StageDestroyed:
		return "destroyed"
	}
	return "unknown"
}

/**
 * @brief Behaviours kept from the first watch-face prototypes that a
 * caller may not expect.
 */
type Quirks struct {
	/** @brief The view and projection passed to Draw are not used. */
	IgnoresCameraMatrices bool
	/** @brief cameraPos is filled from view[0..2], the first column of the view matrix. */
	CameraPosFromViewRow bool
}

// Primitive is a drawable object owning its program, buffer and texture.
type Primitive interface {
	ID() core.UniqueID
	Kind() Kind
	Stage() Stage
	Quirks() Quirks
	Draw(rc *gles.RenderContext, model, view, projection math.Mat4) error
	Destroy()
}

/**
 * @brief Construction inputs shared by every variant.
 */
type Options struct {
	/** @brief Overrides the built-in GLSL for the kind. Nil keeps the default. */
	Shader *metadata.ShaderSource
	/** @brief 2D texture for cube, texture-cube and square. Nil leaves the object untextured. */
	Texture *metadata.ImageData
	/** @brief Sampling for Texture. The zero value is repeat + linear. */
	TextureConfig metadata.TextureConfig
	/** @brief Environment cube map faces for mirror-cube and skybox, +X..-Z. */
	Faces [metadata.CubeFaceCount]*metadata.ImageData
	/** @brief Degrees added per draw by self-rotating variants. Zero means math.DefaultSpinStep. */
	SpinStep float32
}

func (o Options) spinStep() float32 {
	if o.SpinStep == 0 {
		return math.DefaultSpinStep
	}
	return o.SpinStep
}

// New builds a primitive of the given kind.
func New(rc *gles.RenderContext, kind Kind, opts Options) (Primitive, error) {
	switch kind {
	case KindCube:
		return NewCube(rc, opts)
	case KindTextureCube:
		return NewTextureCube(rc, opts)
	case KindSquare:
		return NewSquare(rc, opts)
	case KindMirrorCube:
		return NewMirrorCube(rc, opts)
	case KindSkyBox:
		return NewSkyBox(rc, opts)
	}
	return nil, fmt.Errorf("primitive kind %d: %w", kind, core.ErrUnknownPrimitive)
}
