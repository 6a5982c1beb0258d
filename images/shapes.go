// Package images - Image and frame plumbing for the detector.
package images

// Rect is a lightweight bounding box.
type Rect struct {
	// X2,Y2 are exclusive (like image.Rectangle).
	X1, Y1, X2, Y2 int
}

// CalculateIoU returns the Intersection over Union of two boxes.
//
// IoU = intersection area / union area, a value in [0, 1]. 1.0 means the
// boxes are identical, 0.0 means they do not overlap at all. The union is
// computed by inclusion-exclusion so the intersection is not double counted.
//
// Arguments:
//   - r: The first rectangle.
//   - o: The other rectangle to compare against.
//
// Returns:
//   - float32: The IoU score between 0.0 and 1.0.
func CalculateIoU(r, o Rect) float32 {
	// The overlap cannot start before both boxes have begun, nor extend
	// past the point where the first of them ends.
	ix1 := max(r.X1, o.X1)
	iy1 := max(r.Y1, o.Y1)
	ix2 := min(r.X2, o.X2)
	iy2 := min(r.Y2, o.Y2)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0.0
	}
	interArea := interW * interH

	areaR := (r.X2 - r.X1) * (r.Y2 - r.Y1)
	areaO := (o.X2 - o.X1) * (o.Y2 - o.Y1)
	unionArea := areaR + areaO - interArea

	return float32(interArea) / float32(unionArea)
}
