package yolov4

import (
	"github.com/pkg/errors"

	"github.com/edgevision-labs/go-yolov4/images"
	"github.com/edgevision-labs/go-yolov4/models/postprocess"
)

// Aggregate concatenates per-head candidate buffers into one flat
// (total, 5+classes) buffer. Pure concat; no filtering happens here.
func Aggregate(perHead ...[]float32) []float32 {
	total := 0
	for _, candidates := range perHead {
		total += len(candidates)
	}
	out := make([]float32, 0, total)
	for _, candidates := range perHead {
		out = append(out, candidates...)
	}
	return out
}

// PostProcess aggregates the decoded per-head candidates and reduces them to
// final detections with DIoU NMS. One buffer per configured head is
// required; the detections are still in network-input pixel space and need
// FitToOriginal before they refer to the source frame.
func (c *ModelConfig) PostProcess(perHead [][]float32) ([]postprocess.Detection, error) {
	if len(perHead) != len(c.Heads) {
		return nil, errors.Errorf("got %d candidate buffers for %d heads", len(perHead), len(c.Heads))
	}
	return postprocess.DIoUNMS(Aggregate(perHead...), c.NumClasses, c.NMSConfig())
}

// FitToOriginal remaps detections from network-input pixel space into the
// original frame's pixel space (origin top-left), undoing the recorded
// letterbox resize in place.
func FitToOriginal(dets []postprocess.Detection, lb images.Letterbox) {
	for i := range dets {
		dets[i].X = (dets[i].X - float32(lb.PadLeft)) / lb.Scale
		dets[i].Y = (dets[i].Y - float32(lb.PadTop)) / lb.Scale
		dets[i].W /= lb.Scale
		dets[i].H /= lb.Scale
	}
}
