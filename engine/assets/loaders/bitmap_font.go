package loaders

import (
	"fmt"
	"path"

	"github.com/fzipp/bmfont"
	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
)

// BitmapFontLoader loads an AngelCode .fnt descriptor together with its page
// images. bmfont resolves pages relative to the descriptor, so the source
// must expose filesystem paths.
type BitmapFontLoader struct{}

func (fl *BitmapFontLoader) Load(src Source, name string, params interface{}) (*metadata.Resource, error) {
	if path.Ext(name) != ".fnt" {
		return nil, fmt.Errorf("bitmap font %s: only .fnt descriptors are supported", name)
	}
	fullPath := src.Path(name)
	if fullPath == "" {
		return nil, fmt.Errorf("bitmap font %s: the asset source has no filesystem paths", name)
	}

	font, err := bmfont.Load(fullPath)
	if err != nil {
		return nil, err
	}
	if len(font.Descriptor.Chars) == 0 {
		return nil, fmt.Errorf("bitmap font %s has no glyphs", name)
	}

	return &metadata.Resource{
		Name:     font.Descriptor.Info.Face,
		FullPath: fullPath,
		DataSize: uint64(len(font.Descriptor.Chars)),
		Data:     font,
	}, nil
}

func (fl *BitmapFontLoader) Unload(resource *metadata.Resource) error {
	resource.Data = nil
	resource.DataSize = 0
	resource.FullPath = ""
	return nil
}
