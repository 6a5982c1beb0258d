package yolov4

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// sigmoid is the logistic function in float32, matching the model's own
// activation precision.
func sigmoid(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}

// Decode transforms one detection head's raw output into candidate boxes.
//
// raw is the head's tensor flattened in (row, col, anchor, attribute) order,
// attribute being (dx, dy, dw, dh, objectness, class logits...). The decoded
// candidates come back as a flat (grid*grid*anchors, 5+classes) buffer in
// network-input pixel space:
//
//	x = ((sigmoid(dx)-0.5)*scaleXY + 0.5 + col) * stride
//	y = ((sigmoid(dy)-0.5)*scaleXY + 0.5 + row) * stride
//	w = anchorW * exp(dw) * inputSize
//	h = anchorH * exp(dh) * inputSize
//
// The column index lands on x and the row index on y. With scaleXY > 1 the
// decoded center can cross the nominal cell boundary; that is the grid
// sensitivity design of this detector family and is not clamped.
//
// At inference (training == false) objectness and the class logits pass
// through sigmoid; during training they stay raw.
//
// A buffer whose length does not match the head's configured grid and anchor
// count is a configuration mismatch and returns an error.
func (c *ModelConfig) Decode(head int, raw []float32, training bool) ([]float32, error) {
	if head < 0 || head >= len(c.Heads) {
		return nil, errors.Errorf("head index %d out of range (model has %d heads)", head, len(c.Heads))
	}
	h := c.Heads[head]
	grid := c.Grid(head)
	numAnchors := len(h.Anchors)
	stride := 5 + c.NumClasses

	want := grid * grid * numAnchors * stride
	if len(raw) != want {
		return nil, errors.Errorf(
			"head %d: tensor has %d values, configuration (grid %d, anchors %d, classes %d) requires %d",
			head, len(raw), grid, numAnchors, c.NumClasses, want)
	}

	cellWidth := float32(h.Stride)
	inputSize := float32(c.InputSize)
	out := make([]float32, want)

	for row := 0; row < grid; row++ {
		for col := 0; col < grid; col++ {
			for a := 0; a < numAnchors; a++ {
				base := ((row*grid+col)*numAnchors + a) * stride
				in := raw[base : base+stride]
				dst := out[base : base+stride]

				dst[0] = ((sigmoid(in[0])-0.5)*h.ScaleXY + 0.5 + float32(col)) * cellWidth
				dst[1] = ((sigmoid(in[1])-0.5)*h.ScaleXY + 0.5 + float32(row)) * cellWidth
				dst[2] = h.Anchors[a][0] * math32.Exp(in[2]) * inputSize
				dst[3] = h.Anchors[a][1] * math32.Exp(in[3]) * inputSize

				if training {
					copy(dst[4:], in[4:])
					continue
				}
				for k := 4; k < stride; k++ {
					dst[k] = sigmoid(in[k])
				}
			}
		}
	}
	return out, nil
}
