package text

import (
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/fzipp/bmfont"
	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	DefaultClockSize   = 256
	DefaultClockFormat = "15:04"
)

/**
 * @brief Settings for the clock face texture.
 */
type ClockOptions struct {
	/** @brief Square texture edge in pixels. */
	Size int
	/** @brief A time.Format layout. */
	Format     string
	Background color.Color
	Foreground color.Color
	/** @brief Vector or bitmap face to draw with. Nil with a nil Bitmap uses basicfont. */
	Face font.Face
	/** @brief An AngelCode bitmap font. Takes precedence over Face. */
	Bitmap *bmfont.BitmapFont
}

// ClockRenderer draws the current time into an RGBA image, to be uploaded
// as a texture each time the displayed text changes.
type ClockRenderer struct {
	size       int
	format     string
	background image.Image
	foreground image.Image
	face       font.Face
	bitmap     *bmfont.BitmapFont
	last       string
}

func NewClockRenderer(opts ClockOptions) *ClockRenderer {
	c := &ClockRenderer{
		size:       opts.Size,
		format:     opts.Format,
		background: image.NewUniform(color.Black),
		foreground: image.NewUniform(color.White),
		face:       opts.Face,
		bitmap:     opts.Bitmap,
	}
	if c.size <= 0 {
		c.size = DefaultClockSize
	}
	if c.format == "" {
		c.format = DefaultClockFormat
	}
	if opts.Background != nil {
		c.background = image.NewUniform(opts.Background)
	}
	if opts.Foreground != nil {
		c.foreground = image.NewUniform(opts.Foreground)
	}
	if c.face == nil {
		c.face = basicfont.Face7x13
	}
	return c
}

// Text formats t with the configured layout.
func (c *ClockRenderer) Text(t time.Time) string {
	return t.Format(c.format)
}

// Changed reports whether t formats differently from the last rendered time.
func (c *ClockRenderer) Changed(t time.Time) bool {
	return c.Text(t) != c.last
}

// Reset forgets the last rendered text so the next Changed reports true.
func (c *ClockRenderer) Reset() {
	c.last = ""
}

// Render draws t centred on the background.
func (c *ClockRenderer) Render(t time.Time) *metadata.ImageData {
	s := c.Text(t)
	dst := image.NewRGBA(image.Rect(0, 0, c.size, c.size))
	draw.Draw(dst, dst.Bounds(), c.background, image.Point{}, draw.Src)

	if c.bitmap != nil {
		c.drawBitmap(dst, s)
	} else {
		c.drawFace(dst, s)
	}
	c.last = s
	return metadata.NewImageDataFromRGBA("clock "+s, dst)
}

func (c *ClockRenderer) drawFace(dst *image.RGBA, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  c.foreground,
		Face: c.face,
	}
	width := d.MeasureString(s)
	metrics := c.face.Metrics()
	x := (fixed.I(c.size) - width) / 2
	y := (fixed.I(c.size) + metrics.Ascent - metrics.Descent) / 2
	d.Dot = fixed.Point26_6{X: x, Y: y}
	d.DrawString(s)
}

func (c *ClockRenderer) drawBitmap(dst *image.RGBA, s string) {
	advances := make(map[rune]int, len(c.bitmap.Descriptor.Chars))
	for _, ch := range c.bitmap.Descriptor.Chars {
		advances[rune(ch.ID)] = int(ch.XAdvance)
	}
	width := 0
	for _, r := range s {
		width += advances[r]
	}
	lineHeight := int(c.bitmap.Descriptor.Common.LineHeight)
	pos := image.Pt((c.size-width)/2, (c.size-lineHeight)/2)
	c.bitmap.DrawText(dst, pos, s)
}
