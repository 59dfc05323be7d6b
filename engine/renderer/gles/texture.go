package gles

import (
	"fmt"

	"github.com/spaghettifunk/anima-wear/engine/core"
	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
	"golang.org/x/mobile/gl"
)

// Texture owns one GL texture object, 2D or cube map.
type Texture struct {
	rc          *RenderContext
	handle      gl.Texture
	textureType metadata.TextureType
	config      metadata.TextureConfig
	width       int
	height      int
	uploads     int
	destroyed   bool
}

// Load2D uploads img, generates mipmaps for power-of-two images and releases
// img's pixels.
func Load2D(rc *RenderContext, img *metadata.ImageData, config metadata.TextureConfig) (*Texture, error) {
	if err := config.Validate(metadata.TextureType2d); err != nil {
		return nil, err
	}
	if err := validateImage(img); err != nil {
		return nil, err
	}
	t, err := allocateTexture(rc, metadata.TextureType2d, config)
	if err != nil {
		return nil, err
	}
	if err := t.upload2D(img); err != nil {
		t.Destroy()
		return nil, err
	}
	return t, nil
}

// LoadCubeMap uploads faces in +X, -X, +Y, -Y, +Z, -Z order to
// TEXTURE_CUBE_MAP_POSITIVE_X+i. No mipmaps are generated.
func LoadCubeMap(rc *RenderContext, faces [metadata.CubeFaceCount]*metadata.ImageData, config metadata.TextureConfig) (*Texture, error) {
	if err := config.Validate(metadata.TextureTypeCube); err != nil {
		return nil, err
	}
	for i, face := range faces {
		if err := validateImage(face); err != nil {
			return nil, fmt.Errorf("cube face %s: %w", metadata.CubeFace(i), err)
		}
		if face.Width != face.Height || face.Width != faces[0].Width {
			return nil, fmt.Errorf("cube face %s is %dx%d, faces must be square and equal: %w",
				metadata.CubeFace(i), face.Width, face.Height, core.ErrInvalidImage)
		}
	}

	t, err := allocateTexture(rc, metadata.TextureTypeCube, config)
	if err != nil {
		return nil, err
	}
	g := rc.GL()
	for i, face := range faces {
		g.TexImage2D(gl.Enum(gl.TEXTURE_CUBE_MAP_POSITIVE_X+i), 0, gl.RGBA, face.Width, face.Height, gl.RGBA, gl.UNSIGNED_BYTE, face.Pixels)
		face.Release()
	}
	t.width, t.height = faces[0].Width, faces[0].Height
	t.uploads++
	if err := rc.CheckError("upload cube map"); err != nil {
		t.Destroy()
		return nil, err
	}
	return t, nil
}

func validateImage(img *metadata.ImageData) error {
	if img == nil {
		return fmt.Errorf("nil image: %w", core.ErrInvalidImage)
	}
	if img.Width <= 0 || img.Height <= 0 || len(img.Pixels) != img.Width*img.Height*4 {
		return fmt.Errorf("image %q %dx%d with %d bytes: %w", img.Name, img.Width, img.Height, len(img.Pixels), core.ErrInvalidImage)
	}
	return nil
}

func allocateTexture(rc *RenderContext, textureType metadata.TextureType, config metadata.TextureConfig) (*Texture, error) {
	g := rc.GL()
	handle := g.CreateTexture()
	if handle.Value == 0 {
		return nil, &TextureAllocationError{Type: textureType}
	}
	t := &Texture{
		rc:          rc,
		handle:      handle,
		textureType: textureType,
		config:      config,
	}
	target := t.Target()
	rc.BindTexture(0, target, handle)
	g.TexParameteri(target, gl.TEXTURE_WRAP_S, wrapParam(config.Wrap))
	g.TexParameteri(target, gl.TEXTURE_WRAP_T, wrapParam(config.Wrap))
	g.TexParameteri(target, gl.TEXTURE_MIN_FILTER, filterParam(config.MinFilter))
	g.TexParameteri(target, gl.TEXTURE_MAG_FILTER, filterParam(config.MagFilter))
	return t, nil
}

func wrapParam(w metadata.TextureWrap) int {
	if w == metadata.TextureWrapClampToEdge {
		return gl.CLAMP_TO_EDGE
	}
	return gl.REPEAT
}

func filterParam(f metadata.TextureFilter) int {
	if f == metadata.TextureFilterLinearMipmap {
		return gl.LINEAR_MIPMAP_LINEAR
	}
	return gl.LINEAR
}

func (t *Texture) upload2D(img *metadata.ImageData) error {
	g := t.rc.GL()
	g.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, img.Width, img.Height, gl.RGBA, gl.UNSIGNED_BYTE, img.Pixels)
	// GL ES 2.0 rejects mipmap generation on NPOT textures.
	if img.IsPowerOfTwo() {
		g.GenerateMipmap(gl.TEXTURE_2D)
	}
	t.width, t.height = img.Width, img.Height
	t.uploads++
	img.Release()
	return t.rc.CheckError(fmt.Sprintf("upload texture %s", img.Name))
}

// Replace re-uploads img into the same texture object. The previous pixels
// are overwritten in place; no second texture object is ever created.
func (t *Texture) Replace(img *metadata.ImageData) error {
	if t.destroyed {
		return core.ErrDestroyed
	}
	if t.textureType != metadata.TextureType2d {
		return fmt.Errorf("replace on a cube map: %w", core.ErrInvalidTextureConfig)
	}
	if err := validateImage(img); err != nil {
		return err
	}
	t.rc.BindTexture(0, gl.TEXTURE_2D, t.handle)
	return t.upload2D(img)
}

// Bind binds the texture on the given unit.
func (t *Texture) Bind(unit int) {
	t.rc.BindTexture(unit, t.Target(), t.handle)
}

func (t *Texture) Handle() gl.Texture {
	return t.handle
}

func (t *Texture) Type() metadata.TextureType {
	return t.textureType
}

func (t *Texture) Target() gl.Enum {
	if t.textureType == metadata.TextureTypeCube {
		return gl.TEXTURE_CUBE_MAP
	}
	return gl.TEXTURE_2D
}

func (t *Texture) Size() (int, int) {
	return t.width, t.height
}

// Uploads counts pixel uploads into this object, including replacements.
func (t *Texture) Uploads() int {
	return t.uploads
}

func (t *Texture) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	t.rc.GL().DeleteTexture(t.handle)
	t.rc.forgetTexture(t.handle)
}
