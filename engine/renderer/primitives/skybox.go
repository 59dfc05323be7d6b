package primitives

import (
	"github.com/spaghettifunk/anima-wear/engine/math"
	"github.com/spaghettifunk/anima-wear/engine/renderer/gles"
	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
	"golang.org/x/mobile/gl"
)

// SkyBox draws a cube map around the camera at maximum depth. Draw it last.
type SkyBox struct {
	base
}

func NewSkyBox(rc *gles.RenderContext, opts Options) (*SkyBox, error) {
	s := &SkyBox{}
	if err := s.build(rc, KindSkyBox, &metadata.SkyBoxCube, opts, loadCubeMap(opts.Faces)); err != nil {
		return nil, err
	}
	return s, nil
}

// Draw ignores model and strips the translation from view. The depth function
// is LEQUAL for the draw and LESS again once Draw returns.
func (s *SkyBox) Draw(rc *gles.RenderContext, model, view, projection math.Mat4) error {
	if err := s.ready(); err != nil {
		return err
	}
	rc.SetDepthFunc(gl.LEQUAL)
	defer rc.SetDepthFunc(gl.LESS)

	direction := math.StripTranslation(view)
	return s.draw(rc, func(sp *gles.ShaderProgram) error {
		return setMatrices(sp, []string{"view", "projection"}, direction, projection)
	})
}
