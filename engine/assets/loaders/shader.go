package loaders

import (
	"fmt"
	"path"

	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
)

// ShaderLoader reads a GLSL pair: <name>.vert and <name>.frag.
type ShaderLoader struct{}

func (sl *ShaderLoader) Load(src Source, name string, params interface{}) (*metadata.Resource, error) {
	vertex, err := readAll(src, name+".vert")
	if err != nil {
		return nil, err
	}
	fragment, err := readAll(src, name+".frag")
	if err != nil {
		return nil, err
	}
	if len(vertex) == 0 || len(fragment) == 0 {
		return nil, fmt.Errorf("shader %s has an empty stage", name)
	}
	return &metadata.Resource{
		Name:     path.Base(name),
		FullPath: src.Path(name),
		DataSize: uint64(len(vertex) + len(fragment)),
		Data: metadata.ShaderSource{
			Name:     path.Base(name),
			Vertex:   string(vertex),
			Fragment: string(fragment),
		},
	}, nil
}

func (sl *ShaderLoader) Unload(resource *metadata.Resource) error {
	resource.Data = nil
	resource.DataSize = 0
	return nil
}
