package loaders

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	"github.com/nfnt/resize"
	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ImageLoader decodes png, jpeg, gif, bmp and webp files into tightly
// packed RGBA8 pixels.
type ImageLoader struct{}

func (il *ImageLoader) Load(src Source, name string, params interface{}) (*metadata.Resource, error) {
	typedParams, ok := params.(*metadata.ImageResourceParams)
	if !ok || typedParams == nil {
		typedParams = &metadata.ImageResourceParams{}
	}

	f, err := src.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	if typedParams.PowerOfTwo {
		img = scaleToPowerOfTwo(img)
	}

	var rgba *image.RGBA
	if typedParams.FlipY {
		rgba = transform.FlipV(img)
	} else {
		rgba = clone.AsRGBA(img)
	}
	data := metadata.NewImageDataFromRGBA(name, rgba)

	return &metadata.Resource{
		Name:     format,
		FullPath: src.Path(name),
		DataSize: uint64(len(data.Pixels)),
		Data:     data,
	}, nil
}

func (il *ImageLoader) Unload(resource *metadata.Resource) error {
	if data, ok := resource.Data.(*metadata.ImageData); ok {
		data.Release()
	}
	resource.Data = nil
	resource.DataSize = 0
	return nil
}

// ResizePowerOfTwo scales img up to power-of-two dimensions. Images that
// already qualify are returned unchanged.
func ResizePowerOfTwo(img *metadata.ImageData) *metadata.ImageData {
	if img.IsPowerOfTwo() || img.Released() {
		return img
	}
	src := &image.RGBA{
		Pix:    img.Pixels,
		Stride: img.Width * 4,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
	return metadata.NewImageDataFromRGBA(img.Name, clone.AsRGBA(scaleToPowerOfTwo(src)))
}

func scaleToPowerOfTwo(img image.Image) image.Image {
	b := img.Bounds()
	w, h := metadata.NextPowerOfTwo(b.Dx()), metadata.NextPowerOfTwo(b.Dy())
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	return resize.Resize(uint(w), uint(h), img, resize.Bilinear)
}
