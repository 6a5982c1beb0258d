package images

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestToHWCBytes checks the height-width-channel flattening order.
func TestToHWCBytes(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 128, 255, 255})

	buf := ToHWCBytes(img)
	require.Len(t, buf, 6)

	assert.Equal(t, []uint8{255, 0, 0}, buf[0:3], "first pixel RGB")
	assert.Equal(t, []uint8{0, 128, 255}, buf[3:6], "second pixel RGB")
}

// TestToHWCFloats checks the [0, 1] normalization.
func TestToHWCFloats(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(0, 1, color.RGBA{51, 102, 204, 255})

	buf := ToHWCFloats(img)
	require.Len(t, buf, 6)

	assert.InDelta(t, 1.0, buf[0], 0.001)
	assert.InDelta(t, 0.0, buf[1], 0.001)
	assert.InDelta(t, 0.2, buf[3], 0.001)
	assert.InDelta(t, 0.4, buf[4], 0.001)
	assert.InDelta(t, 0.8, buf[5], 0.001)
}
