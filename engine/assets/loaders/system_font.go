package loaders

import (
	"fmt"

	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// DefaultFontSize is used when no SystemFontParams are given, in points at 72 DPI.
const DefaultFontSize = 48

type SystemFontParams struct {
	Size float64
}

// SystemFontLoader parses a TrueType or OpenType file into a font.Face.
type SystemFontLoader struct{}

func (fl *SystemFontLoader) Load(src Source, name string, params interface{}) (*metadata.Resource, error) {
	size := float64(DefaultFontSize)
	if p, ok := params.(*SystemFontParams); ok && p != nil && p.Size > 0 {
		size = p.Size
	}

	fontBytes, err := readAll(src, name)
	if err != nil {
		return nil, err
	}
	f, err := opentype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", name, err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}

	return &metadata.Resource{
		Name:     name,
		FullPath: src.Path(name),
		DataSize: uint64(len(fontBytes)),
		Data:     face,
	}, nil
}

func (fl *SystemFontLoader) Unload(resource *metadata.Resource) error {
	if face, ok := resource.Data.(font.Face); ok {
		face.Close()
	}
	resource.Data = nil
	resource.DataSize = 0
	return nil
}
