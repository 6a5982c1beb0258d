package yolov4

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgevision-labs/go-yolov4/models/model"
)

// testConfig is a single-head two-class configuration small enough to reason
// about by hand: 256-pixel input, stride 32, one 0.1x0.1 anchor.
func testConfig() *ModelConfig {
	return &ModelConfig{
		Name:       model.ModelNameYOLOv4,
		Family:     model.ModelFamilyYOLO,
		InputSize:  256,
		NumClasses: 2,
		Heads: []HeadConfig{
			{Stride: 32, Anchors: [][2]float32{{0.1, 0.1}}, ScaleXY: 1.05},
		},
	}
}

// TestDecodeZeroLogits checks the decode math at the neutral point: with all
// logits zero the center sits in the middle of its cell, the box takes the
// anchor's size in input pixels, and every probability is exactly 0.5.
func TestDecodeZeroLogits(t *testing.T) {
	cfg := testConfig()
	grid := cfg.Grid(0) // 8
	raw := make([]float32, grid*grid*1*7)

	out, err := cfg.Decode(0, raw, false)
	require.NoError(t, err)
	require.Len(t, out, len(raw), "decode preserves the buffer shape")

	// Cell (row 0, col 0): center at half a cell, anchor scaled to the input.
	assert.InDelta(t, 16.0, out[0], 0.0001, "x")
	assert.InDelta(t, 16.0, out[1], 0.0001, "y")
	assert.InDelta(t, 25.6, out[2], 0.0001, "w = 0.1 * 256")
	assert.InDelta(t, 25.6, out[3], 0.0001, "h = 0.1 * 256")
	assert.InDelta(t, 0.5, out[4], 0.0001, "objectness sigmoid(0)")
	assert.InDelta(t, 0.5, out[5], 0.0001, "class 0 sigmoid(0)")
	assert.InDelta(t, 0.5, out[6], 0.0001, "class 1 sigmoid(0)")

	// Cell (row 2, col 3): the column lands on x and the row on y.
	base := (2*grid + 3) * 7
	assert.InDelta(t, 112.0, out[base], 0.0001, "x = (0.5 + col) * stride")
	assert.InDelta(t, 80.0, out[base+1], 0.0001, "y = (0.5 + row) * stride")
}

// TestDecodeGridSensitivity checks that scale_x_y lets a saturated center
// offset cross the nominal cell boundary instead of being clamped.
func TestDecodeGridSensitivity(t *testing.T) {
	cfg := testConfig()
	grid := cfg.Grid(0)
	raw := make([]float32, grid*grid*1*7)
	raw[0] = 10 // dx saturates sigmoid toward 1

	out, err := cfg.Decode(0, raw, false)
	require.NoError(t, err)

	// (1.0 - 0.5) * 1.05 + 0.5 = 1.025 cells, just past the boundary.
	assert.Greater(t, out[0], float32(32.0), "center may cross into the next cell")
	assert.Less(t, out[0], float32(33.0))
}

// TestDecodeTrainingMode checks that objectness and class logits stay raw
// when decoding for training.
func TestDecodeTrainingMode(t *testing.T) {
	cfg := testConfig()
	grid := cfg.Grid(0)
	raw := make([]float32, grid*grid*1*7)
	raw[4] = 1.7
	raw[5] = -0.3

	out, err := cfg.Decode(0, raw, true)
	require.NoError(t, err)
	assert.Equal(t, float32(1.7), out[4], "training keeps the raw objectness logit")
	assert.Equal(t, float32(-0.3), out[5], "training keeps the raw class logit")

	out, err = cfg.Decode(0, raw, false)
	require.NoError(t, err)
	assert.InDelta(t, 0.84553, out[4], 0.0001, "inference applies sigmoid")
}

// TestDecodeShapeMismatch checks that a tensor whose length does not match
// the configured head is rejected.
func TestDecodeShapeMismatch(t *testing.T) {
	cfg := testConfig()

	_, err := cfg.Decode(0, make([]float32, 10), false)
	assert.Error(t, err, "short buffer must be rejected")

	_, err = cfg.Decode(2, make([]float32, 448), false)
	assert.Error(t, err, "head index out of range must be rejected")

	_, err = cfg.Decode(-1, make([]float32, 448), false)
	assert.Error(t, err)
}
