package metadata

import "image"

/**
 * @brief Decoded RGBA8 pixels ready for upload. Rows run top to bottom.
 */
type ImageData struct {
	/** @brief The asset name the pixels came from, for logs. */
	Name string
	/** @brief The width of the image. */
	Width int
	/** @brief The height of the image. */
	Height int
	/** @brief Tightly packed RGBA bytes, Width*Height*4 long. Nil once released. */
	Pixels []uint8
}

// NewImageDataFromRGBA copies img into a tightly packed buffer.
func NewImageDataFromRGBA(name string, img *image.RGBA) *ImageData {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pixels := make([]uint8, w*h*4)
	for y := 0; y < h; y++ {
		src := img.Pix[(y)*img.Stride : (y)*img.Stride+w*4]
		copy(pixels[y*w*4:], src)
	}
	return &ImageData{Name: name, Width: w, Height: h, Pixels: pixels}
}

// Release drops the host copy of the pixels. Call once the GPU owns the data.
func (i *ImageData) Release() {
	i.Pixels = nil
}

func (i *ImageData) Released() bool {
	return i.Pixels == nil
}

/** @brief Parameters used when loading an image. */
type ImageResourceParams struct {
	/** @brief Indicates if the image should be flipped on the y-axis when loaded. */
	FlipY bool
	/** @brief Scales the image up to the next power of two on each axis. */
	PowerOfTwo bool
}

// IsPowerOfTwo reports whether both dimensions are powers of two, which GL ES
// 2.0 requires for repeat wrapping and mipmaps.
func (i *ImageData) IsPowerOfTwo() bool {
	return isPowerOfTwo(i.Width) && isPowerOfTwo(i.Height)
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= n.
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
