package loaders

import (
	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
)

// TextLoader reads a whole file as a string.
type TextLoader struct{}

func (tl *TextLoader) Load(src Source, name string, params interface{}) (*metadata.Resource, error) {
	data, err := readAll(src, name)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		Name:     name,
		FullPath: src.Path(name),
		DataSize: uint64(len(data)),
		Data:     string(data),
	}, nil
}

func (tl *TextLoader) Unload(resource *metadata.Resource) error {
	resource.Data = nil
	resource.DataSize = 0
	return nil
}
