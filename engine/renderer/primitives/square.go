package primitives

import (
	"github.com/spaghettifunk/anima-wear/engine/math"
	"github.com/spaghettifunk/anima-wear/engine/renderer/gles"
	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
)

// squareAxis is the fixed rotation axis of the square, normalized on use.
var squareAxis = math.NewVec3(0.5, 1, 0)

// Square is an indexed textured quad. Its only matrix uniform is its own
// rotation; the camera matrices given to Draw are ignored.
type Square struct {
	base
}

func NewSquare(rc *gles.RenderContext, opts Options) (*Square, error) {
	s := &Square{}
	s.quirks = Quirks{IgnoresCameraMatrices: true}
	if err := s.build(rc, KindSquare, &metadata.SquareQuad, opts, load2D(opts.Texture, opts.TextureConfig)); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Square) Draw(rc *gles.RenderContext, model, view, projection math.Mat4) error {
	rotation := math.NewMat4Rotation(s.Angle(), squareAxis)
	err := s.draw(rc, func(sp *gles.ShaderProgram) error {
		return setMatrices(sp, []string{"u_MVPMatrix"}, rotation)
	})
	if err != nil {
		return err
	}
	s.spin.Advance()
	return nil
}
