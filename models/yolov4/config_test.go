package yolov4

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgevision-labs/go-yolov4/models/postprocess"
)

// TestStockConfigsValidate checks that the shipped COCO configurations pass
// their own validation at the common input sizes.
func TestStockConfigsValidate(t *testing.T) {
	for _, size := range []int{416, 512, 608} {
		assert.NoError(t, COCOConfig(size).Validate())
		assert.NoError(t, TinyCOCOConfig(size).Validate())
	}
}

// TestCOCOConfigLayout checks the head layout of the stock configuration.
func TestCOCOConfigLayout(t *testing.T) {
	cfg := COCOConfig(416)
	require.Len(t, cfg.Heads, 3)

	assert.Equal(t, 52, cfg.Grid(0))
	assert.Equal(t, 26, cfg.Grid(1))
	assert.Equal(t, 13, cfg.Grid(2))

	// Anchors are stored normalized to the training net size.
	assert.InDelta(t, 12.0/608.0, cfg.Heads[0].Anchors[0][0], 0.0001)
	assert.InDelta(t, 16.0/608.0, cfg.Heads[0].Anchors[0][1], 0.0001)
	assert.InDelta(t, 459.0/608.0, cfg.Heads[2].Anchors[2][0], 0.0001)

	tiny := TinyCOCOConfig(416)
	require.Len(t, tiny.Heads, 2)
	assert.Equal(t, 26, tiny.Grid(0))
	assert.Equal(t, 13, tiny.Grid(1))
}

// TestValidateRejections checks each configuration invariant.
func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ModelConfig)
	}{
		{"zero input size", func(c *ModelConfig) { c.InputSize = 0 }},
		{"zero classes", func(c *ModelConfig) { c.NumClasses = 0 }},
		{"no heads", func(c *ModelConfig) { c.Heads = nil }},
		{"stride does not divide input", func(c *ModelConfig) { c.Heads[0].Stride = 48 }},
		{"zero stride", func(c *ModelConfig) { c.Heads[0].Stride = 0 }},
		{"no anchors", func(c *ModelConfig) { c.Heads[0].Anchors = nil }},
		{"anchor above one", func(c *ModelConfig) { c.Heads[0].Anchors[0][0] = 1.5 }},
		{"non-positive anchor", func(c *ModelConfig) { c.Heads[0].Anchors[0][1] = 0 }},
		{"scale_x_y below one", func(c *ModelConfig) { c.Heads[0].ScaleXY = 0.9 }},
		{"score threshold at one", func(c *ModelConfig) {
			c.NMS = &postprocess.Config{ScoreThreshold: 1.0, BetaNMS: 0.6}
		}},
		{"non-positive beta", func(c *ModelConfig) {
			c.NMS = &postprocess.Config{ScoreThreshold: 0.25, BetaNMS: 0}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := COCOConfig(416)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

// TestNMSConfigDefaults checks the nil-means-defaults behavior.
func TestNMSConfigDefaults(t *testing.T) {
	cfg := testConfig()
	cfg.NMS = nil
	got := cfg.NMSConfig()
	assert.Equal(t, postprocess.DefaultConfig(), got)

	custom := &postprocess.Config{ScoreThreshold: 0.5, BetaNMS: 0.8}
	cfg.NMS = custom
	assert.Same(t, custom, cfg.NMSConfig())
}
