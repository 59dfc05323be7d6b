package primitives

import (
	"github.com/spaghettifunk/anima-wear/engine/math"
	"github.com/spaghettifunk/anima-wear/engine/renderer/gles"
	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
)

// MirrorCube reflects an environment cube map using per-vertex normals.
type MirrorCube struct {
	base
}

func NewMirrorCube(rc *gles.RenderContext, opts Options) (*MirrorCube, error) {
	m := &MirrorCube{}
	m.quirks = Quirks{CameraPosFromViewRow: true}
	if err := m.build(rc, KindMirrorCube, &metadata.CubeNormals, opts, loadCubeMap(opts.Faces)); err != nil {
		return nil, err
	}
	return m, nil
}

// Draw uploads view[0], view[1], view[2] as the camera position. That is the
// first column of the view matrix, not the eye; reflections lean with the
// camera's right vector.
func (m *MirrorCube) Draw(rc *gles.RenderContext, model, view, projection math.Mat4) error {
	err := m.draw(rc, func(sp *gles.ShaderProgram) error {
		if err := setMatrices(sp, mvpUniforms, model, view, projection); err != nil {
			return err
		}
		cameraPos, err := sp.Uniform("cameraPos")
		if err != nil {
			return err
		}
		sp.SetVec3(cameraPos, view.Data[0], view.Data[1], view.Data[2])
		return nil
	})
	if err != nil {
		return err
	}
	m.spin.Advance()
	return nil
}
