// Package yolov4 - YOLOv4 decode and post-processing pipeline.
package yolov4

import (
	"fmt"

	"github.com/edgevision-labs/go-yolov4/models/model"
	"github.com/edgevision-labs/go-yolov4/models/postprocess"
)

// HeadConfig describes one detection head (one spatial scale).
type HeadConfig struct {
	// Stride is the downsampling factor of this head. The head's grid is
	// InputSize/Stride cells wide and each cell covers Stride input pixels.
	Stride int `json:"stride" yaml:"stride"`
	// Anchors are the (width, height) box templates assigned to this head by
	// the anchor mask, normalized to the network input size. Fixed at
	// configuration time, immutable thereafter.
	Anchors [][2]float32 `json:"anchors" yaml:"anchors"`
	// ScaleXY is the grid sensitivity factor applied to the decoded box
	// center (scale_x_y in the darknet configuration).
	ScaleXY float32 `json:"scaleXY" yaml:"scaleXY"`
}

// ModelConfig is the full detector configuration. It must match the loaded
// model artifact exactly; the interpreter wrapper verifies it against the
// actual tensor shapes at load time and refuses to run on any mismatch.
type ModelConfig struct {
	Name   model.Name   `json:"name" yaml:"name"`
	Family model.Family `json:"family" yaml:"family"`
	// InputSize is the square network input resolution in pixels.
	InputSize int `json:"inputSize" yaml:"inputSize"`
	// NumClasses is the number of object classes the model predicts.
	NumClasses int `json:"numClasses" yaml:"numClasses"`
	// Heads are the detection heads, in model output-tensor order.
	Heads []HeadConfig `json:"heads" yaml:"heads"`
	// NMS holds the post-processing parameters. Nil means defaults.
	NMS *postprocess.Config `json:"nms" yaml:"nms"`
}

// Grid returns the grid size of head i.
func (c *ModelConfig) Grid(i int) int {
	return c.InputSize / c.Heads[i].Stride
}

// NMSConfig returns the configured post-processing parameters, or the
// defaults when none were set.
func (c *ModelConfig) NMSConfig() *postprocess.Config {
	if c.NMS != nil {
		return c.NMS
	}
	return postprocess.DefaultConfig()
}

// Validate checks the configuration for internal consistency. Any violation
// is a configuration error: fatal, not recoverable.
func (c *ModelConfig) Validate() error {
	if c.InputSize <= 0 {
		return fmt.Errorf("invalid input size %d", c.InputSize)
	}
	if c.NumClasses < 1 {
		return fmt.Errorf("invalid class count %d", c.NumClasses)
	}
	if len(c.Heads) == 0 {
		return fmt.Errorf("at least one detection head is required")
	}
	for i, head := range c.Heads {
		if head.Stride <= 0 || c.InputSize%head.Stride != 0 {
			return fmt.Errorf("head %d: stride %d does not divide input size %d",
				i, head.Stride, c.InputSize)
		}
		if len(head.Anchors) == 0 {
			return fmt.Errorf("head %d: no anchors assigned", i)
		}
		for j, anchor := range head.Anchors {
			if anchor[0] <= 0 || anchor[0] > 1 || anchor[1] <= 0 || anchor[1] > 1 {
				return fmt.Errorf("head %d anchor %d: (%f, %f) is not normalized to (0, 1]",
					i, j, anchor[0], anchor[1])
			}
		}
		if head.ScaleXY < 1 {
			return fmt.Errorf("head %d: scale_x_y %f must be >= 1", i, head.ScaleXY)
		}
	}
	if c.NMS != nil {
		if c.NMS.ScoreThreshold < 0 || c.NMS.ScoreThreshold >= 1 {
			return fmt.Errorf("score threshold %f out of range [0, 1)", c.NMS.ScoreThreshold)
		}
		if c.NMS.BetaNMS <= 0 {
			return fmt.Errorf("beta_nms %f must be positive", c.NMS.BetaNMS)
		}
	}
	return nil
}

// normalizeAnchors converts pixel anchors from a darknet configuration into
// input-size fractions.
func normalizeAnchors(px [][2]float32, netSize float32) [][2]float32 {
	out := make([][2]float32, len(px))
	for i, a := range px {
		out[i] = [2]float32{a[0] / netSize, a[1] / netSize}
	}
	return out
}

// COCOConfig returns the stock YOLOv4 COCO configuration: the darknet
// yolov4.cfg anchors and masks for a 608-pixel network, three heads at
// strides 8/16/32 with scale_x_y 1.2/1.1/1.05, beta_nms 0.6.
//
// Arguments:
//   - inputSize: The network input resolution of the converted artifact
//     (must be a multiple of 32, typically 416, 512 or 608).
//
// Returns:
//   - The model configuration.
func COCOConfig(inputSize int) *ModelConfig {
	// Anchor pixels are relative to the 608 net the model was trained at.
	const net = 608.0
	return &ModelConfig{
		Name:       model.ModelNameYOLOv4,
		Family:     model.ModelFamilyYOLO,
		InputSize:  inputSize,
		NumClasses: 80,
		Heads: []HeadConfig{
			{
				Stride:  8,
				Anchors: normalizeAnchors([][2]float32{{12, 16}, {19, 36}, {40, 28}}, net),
				ScaleXY: 1.2,
			},
			{
				Stride:  16,
				Anchors: normalizeAnchors([][2]float32{{36, 75}, {76, 55}, {72, 146}}, net),
				ScaleXY: 1.1,
			},
			{
				Stride:  32,
				Anchors: normalizeAnchors([][2]float32{{142, 110}, {192, 243}, {459, 401}}, net),
				ScaleXY: 1.05,
			},
		},
		NMS: postprocess.DefaultConfig(),
	}
}

// TinyCOCOConfig returns the YOLOv4-tiny COCO configuration: two heads at
// strides 16/32 with the yolov4-tiny.cfg anchors for a 416-pixel network.
func TinyCOCOConfig(inputSize int) *ModelConfig {
	const net = 416.0
	return &ModelConfig{
		Name:       model.ModelNameYOLOv4Tiny,
		Family:     model.ModelFamilyYOLO,
		InputSize:  inputSize,
		NumClasses: 80,
		Heads: []HeadConfig{
			{
				Stride:  16,
				Anchors: normalizeAnchors([][2]float32{{23, 27}, {37, 58}, {81, 82}}, net),
				ScaleXY: 1.05,
			},
			{
				Stride:  32,
				Anchors: normalizeAnchors([][2]float32{{81, 82}, {135, 169}, {344, 319}}, net),
				ScaleXY: 1.05,
			},
		},
		NMS: postprocess.DefaultConfig(),
	}
}
