package images

import "image"

// ToHWCBytes flattens an RGB image into a height-width-channel uint8 buffer,
// the layout TFLite image models take as input.
func ToHWCBytes(img image.Image) []uint8 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	buf := make([]uint8, width*height*3)
	idx := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			buf[idx] = uint8(r >> 8)
			buf[idx+1] = uint8(g >> 8)
			buf[idx+2] = uint8(b >> 8)
			idx += 3
		}
	}
	return buf
}

// ToHWCFloats flattens an RGB image into a height-width-channel float32
// buffer normalized to [0, 1], for float-input models.
func ToHWCFloats(img image.Image) []float32 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	buf := make([]float32, width*height*3)
	idx := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			buf[idx] = float32(r>>8) / 255.0
			buf[idx+1] = float32(g>>8) / 255.0
			buf[idx+2] = float32(b>>8) / 255.0
			idx += 3
		}
	}
	return buf
}
