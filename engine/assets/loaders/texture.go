package loaders

import (
	"fmt"

	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
)

// CubeMapLoader decodes the six faces of a cube map. params is a
// [6]string of face names in +X, -X, +Y, -Y, +Z, -Z order.
type CubeMapLoader struct {
	Images ImageLoader
}

func (cl *CubeMapLoader) Load(src Source, name string, params interface{}) (*metadata.Resource, error) {
	names, ok := params.([metadata.CubeFaceCount]string)
	if !ok {
		return nil, fmt.Errorf("failed to cast params in cube map loader")
	}

	var faces [metadata.CubeFaceCount]*metadata.ImageData
	var size uint64
	for i, faceName := range names {
		res, err := cl.Images.Load(src, faceName, &metadata.ImageResourceParams{})
		if err != nil {
			return nil, fmt.Errorf("cube face %s: %w", metadata.CubeFace(i), err)
		}
		faces[i] = res.Data.(*metadata.ImageData)
		size += res.DataSize
	}

	return &metadata.Resource{
		Name:     name,
		FullPath: src.Path(names[0]),
		DataSize: size,
		Data:     faces,
	}, nil
}

func (cl *CubeMapLoader) Unload(resource *metadata.Resource) error {
	if faces, ok := resource.Data.([metadata.CubeFaceCount]*metadata.ImageData); ok {
		for _, face := range faces {
			if face != nil {
				face.Release()
			}
		}
	}
	resource.Data = nil
	resource.DataSize = 0
	return nil
}
