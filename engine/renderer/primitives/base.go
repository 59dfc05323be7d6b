package primitives

import (
	"fmt"

	"github.com/spaghettifunk/anima-wear/engine/core"
	"github.com/spaghettifunk/anima-wear/engine/math"
	"github.com/spaghettifunk/anima-wear/engine/renderer/gles"
	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
	"golang.org/x/mobile/gl"
)

// textureLoader creates the primitive's texture. A nil loader or a nil
// result means the primitive draws untextured.
type textureLoader func(rc *gles.RenderContext) (*gles.Texture, error)

// base holds what every variant owns and runs the shared construction and
// draw sequence.
type base struct {
	id       core.UniqueID
	kind     Kind
	quirks   Quirks
	stage    Stage
	program  *gles.ShaderProgram
	buffer   *gles.GpuBuffer
	texture  *gles.Texture
	position gl.Attrib
	spin     *math.Spin
}

func (b *base) build(rc *gles.RenderContext, kind Kind, table *metadata.GeometryTable, opts Options, loadTexture textureLoader) error {
	b.id = core.NewUniqueID(kind.String())
	b.kind = kind
	b.spin = math.NewSpin(opts.spinStep())

	program, err := gles.CompileProgram(rc, shaderFor(kind, opts), Bindings(kind))
	if err != nil {
		return err
	}
	b.program = program
	b.position, err = program.Attribute(table.Layout.Position().Name)
	if err != nil {
		b.release()
		return err
	}
	b.stage = StageShadersCompiled

	buffer, err := gles.UploadGeometry(rc, table)
	if err != nil {
		b.release()
		return err
	}
	b.buffer = buffer
	b.stage = StageBuffersUploaded

	if loadTexture != nil {
		texture, err := loadTexture(rc)
		if err != nil {
			b.release()
			return err
		}
		b.texture = texture
	}
	b.stage = StageTextureLoaded

	b.stage = StageReady
	core.LogDebug("%s built: %d vertices, program %s", b.id.Short(), buffer.DrawCount(), program.Name())
	return nil
}

func (b *base) release() {
	if b.texture != nil {
		b.texture.Destroy()
		b.texture = nil
	}
	if b.buffer != nil {
		b.buffer.Destroy()
		b.buffer = nil
	}
	if b.program != nil {
		b.program.Destroy()
		b.program = nil
	}
}

func (b *base) ID() core.UniqueID {
	return b.id
}

func (b *base) Kind() Kind {
	return b.kind
}

func (b *base) Stage() Stage {
	return b.stage
}

func (b *base) Quirks() Quirks {
	return b.quirks
}

// Angle is the self-rotation in degrees, in [0, 360).
func (b *base) Angle() float32 {
	if b.spin == nil {
		return 0
	}
	return b.spin.Angle
}

func (b *base) ready() error {
	switch b.stage {
	case StageReady:
		return nil
	case StageDestroyed:
		return core.ErrDestroyed
	}
	return core.ErrNotReady
}

// draw runs the per-frame sequence: program, texture on unit 0, layout
// attributes, uniforms, the draw itself, then disables the position array,
// also when a step before the draw fails.
// GL errors raised by the draw are logged and do not fail it.
func (b *base) draw(rc *gles.RenderContext, setUniforms func(sp *gles.ShaderProgram) error) error {
	if err := b.ready(); err != nil {
		return err
	}
	b.program.Use()
	if b.texture != nil {
		b.texture.Bind(0)
	}
	if err := b.buffer.BindLayout(b.program); err != nil {
		b.buffer.DisableAttribute(b.position)
		return err
	}
	if err := setUniforms(b.program); err != nil {
		b.buffer.DisableAttribute(b.position)
		return err
	}
	b.buffer.Draw()
	b.buffer.DisableAttribute(b.position)
	rc.ReportError(fmt.Sprintf("draw %s", b.id.Short()))
	return nil
}

// Destroy releases the program, buffer and texture. Safe to call twice.
func (b *base) Destroy() {
	if b.stage == StageDestroyed {
		return
	}
	b.release()
	b.stage = StageDestroyed
}

func setMatrices(sp *gles.ShaderProgram, names []string, matrices ...math.Mat4) error {
	for i, name := range names {
		u, err := sp.Uniform(name)
		if err != nil {
			return err
		}
		sp.SetMat4(u, matrices[i])
	}
	return nil
}

func load2D(img *metadata.ImageData, config metadata.TextureConfig) textureLoader {
	if img == nil {
		return nil
	}
	return func(rc *gles.RenderContext) (*gles.Texture, error) {
		return gles.Load2D(rc, img, config)
	}
}

func loadCubeMap(faces [metadata.CubeFaceCount]*metadata.ImageData) textureLoader {
	return func(rc *gles.RenderContext) (*gles.Texture, error) {
		return gles.LoadCubeMap(rc, faces, metadata.DefaultCubeMapConfig())
	}
}
