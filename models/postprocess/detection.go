// Package postprocess - Candidate filtering and DIoU Non-Maximum Suppression.
package postprocess

import "github.com/edgevision-labs/go-yolov4/images"

// ClassScore is one class prediction attached to a detection.
type ClassScore struct {
	// ID is the class index, or -1 when the slot is unused.
	ID int
	// Prob is the class probability (post-sigmoid, independent per class).
	Prob float32
}

// Detection is one final detected object.
//
// X,Y are the box center and W,H its extent. Straight out of DIoUNMS they
// are in network-input pixel space; after the coordinate remap they are in
// the original frame's pixel space, origin top-left.
type Detection struct {
	X, Y, W, H float32
	// Objectness is the model's object confidence, independent of class.
	Objectness float32
	// Classes holds the top-2 class predictions. The schema is a fixed
	// two-slot tuple: consumers never see a variable-length list. The
	// second slot is {-1, 0} when the model has a single class.
	Classes [2]ClassScore
}

// Score is the combined confidence used for ranking and suppression:
// objectness times the best class probability.
func (d *Detection) Score() float32 {
	return d.Objectness * d.Classes[0].Prob
}

// Rect converts the center-format box to an integer corner-format rectangle.
func (d *Detection) Rect() images.Rect {
	return images.Rect{
		X1: int(d.X - d.W/2),
		Y1: int(d.Y - d.H/2),
		X2: int(d.X + d.W/2),
		Y2: int(d.Y + d.H/2),
	}
}
