package text

import (
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockText(t *testing.T) {
	c := NewClockRenderer(ClockOptions{})
	at := time.Date(2024, 3, 1, 9, 5, 59, 0, time.UTC)
	assert.Equal(t, "09:05", c.Text(at))

	seconds := NewClockRenderer(ClockOptions{Format: "15:04:05"})
	assert.Equal(t, "09:05:59", seconds.Text(at))
}

func TestClockRender(t *testing.T) {
	c := NewClockRenderer(ClockOptions{Size: 64, Background: color.Black, Foreground: color.White})
	at := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	require.True(t, c.Changed(at))

	img := c.Render(at)
	assert.Equal(t, 64, img.Width)
	assert.Equal(t, 64, img.Height)
	require.Len(t, img.Pixels, 64*64*4)

	lit := 0
	for i := 0; i < len(img.Pixels); i += 4 {
		if img.Pixels[i] > 0 {
			lit++
		}
		assert.Equal(t, uint8(255), img.Pixels[i+3])
	}
	assert.Greater(t, lit, 0)
	assert.Equal(t, uint8(0), img.Pixels[0])

	assert.False(t, c.Changed(at.Add(10*time.Second)))
	assert.True(t, c.Changed(at.Add(time.Minute)))

	c.Reset()
	assert.True(t, c.Changed(at))
}

func TestClockDefaults(t *testing.T) {
	c := NewClockRenderer(ClockOptions{})
	img := c.Render(time.Now())
	assert.Equal(t, DefaultClockSize, img.Width)
}
