package primitives

import (
	"github.com/spaghettifunk/anima-wear/engine/core"
	"github.com/spaghettifunk/anima-wear/engine/math"
	"github.com/spaghettifunk/anima-wear/engine/renderer/gles"
	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
)

var mvpUniforms = []string{"model", "view", "projection"}

// Cube is a textured unit cube. It keeps its own rotation angle, advanced on
// every draw, but the model matrix it uploads is the caller's.
type Cube struct {
	base
}

func NewCube(rc *gles.RenderContext, opts Options) (*Cube, error) {
	c := &Cube{}
	if err := c.build(rc, KindCube, &metadata.CubeTextured, opts, load2D(opts.Texture, opts.TextureConfig)); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cube) Draw(rc *gles.RenderContext, model, view, projection math.Mat4) error {
	err := c.draw(rc, func(sp *gles.ShaderProgram) error {
		return setMatrices(sp, mvpUniforms, model, view, projection)
	})
	if err != nil {
		return err
	}
	c.spin.Advance()
	return nil
}

// TextureCube is a Cube whose texture can be swapped at run time, e.g. with a
// freshly rendered clock face.
type TextureCube struct {
	Cube
	config metadata.TextureConfig
}

func NewTextureCube(rc *gles.RenderContext, opts Options) (*TextureCube, error) {
	c := &TextureCube{config: opts.TextureConfig}
	if err := c.build(rc, KindTextureCube, &metadata.CubeTextured, opts, load2D(opts.Texture, opts.TextureConfig)); err != nil {
		return nil, err
	}
	return c, nil
}

// SetTexture uploads img into the cube's texture object, creating it on
// first use. Later calls overwrite the same object.
func (c *TextureCube) SetTexture(rc *gles.RenderContext, img *metadata.ImageData) error {
	if err := c.ready(); err != nil {
		return err
	}
	if c.texture != nil {
		return c.texture.Replace(img)
	}
	texture, err := gles.Load2D(rc, img, c.config)
	if err != nil {
		return err
	}
	c.texture = texture
	core.LogDebug("%s: texture created", c.id.Short())
	return nil
}

// TextureConfig is the sampling setup every SetTexture upload uses.
func (c *TextureCube) TextureConfig() metadata.TextureConfig {
	return c.config
}

// Texture exposes the current texture, nil before the first SetTexture on an
// untextured cube.
func (c *TextureCube) Texture() *gles.Texture {
	return c.texture
}
