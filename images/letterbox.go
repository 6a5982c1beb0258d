package images

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// letterboxFill is the padding color used around the resized frame. The gray
// value matches what the detector family trains against for padded borders.
var letterboxFill = color.RGBA{114, 114, 114, 255}

// Letterbox records the aspect-ratio-preserving resize applied to a frame
// before inference. The coordinate remap after post-processing consumes it
// to map detections back into the original frame's pixel space.
type Letterbox struct {
	// Scale is the uniform factor the original frame was scaled by.
	Scale float32
	// PadLeft and PadTop are the padding offsets, in network-input pixels.
	PadLeft int
	PadTop  int
	// InputSize is the square network input resolution.
	InputSize int
	// OrigWidth and OrigHeight are the original frame dimensions.
	OrigWidth  int
	OrigHeight int
}

// LetterboxImage resizes a frame to the square network input resolution,
// preserving aspect ratio and padding the remainder, and records the
// transform for the later coordinate remap.
//
// Arguments:
//   - img: The input frame.
//   - inputSize: The square network input resolution in pixels.
//
// Returns:
//   - image.Image: The letterboxed inputSize x inputSize image.
//   - Letterbox: The recorded resize/pad transform.
//   - error: An error for a nil or zero-sized frame.
func LetterboxImage(img image.Image, inputSize int) (image.Image, Letterbox, error) {
	if img == nil {
		return nil, Letterbox{}, errors.New("frame is nil")
	}
	if inputSize <= 0 {
		return nil, Letterbox{}, errors.Errorf("invalid network input size %d", inputSize)
	}

	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()
	if srcWidth <= 0 || srcHeight <= 0 {
		return nil, Letterbox{}, errors.Errorf("invalid frame dimensions %dx%d", srcWidth, srcHeight)
	}

	scaleX := float32(inputSize) / float32(srcWidth)
	scaleY := float32(inputSize) / float32(srcHeight)
	scale := min(scaleX, scaleY)

	newWidth := int(float32(srcWidth) * scale)
	newHeight := int(float32(srcHeight) * scale)

	resized := resize.Resize(uint(newWidth), uint(newHeight), img, resize.Bilinear)

	// Center the resized frame and pad the rest.
	padLeft := (inputSize - newWidth) / 2
	padTop := (inputSize - newHeight) / 2

	letterboxed := image.NewRGBA(image.Rect(0, 0, inputSize, inputSize))
	draw.Draw(letterboxed, letterboxed.Bounds(), &image.Uniform{letterboxFill}, image.Point{}, draw.Src)
	draw.Draw(letterboxed, image.Rect(padLeft, padTop, padLeft+newWidth, padTop+newHeight),
		resized, image.Point{}, draw.Over)

	return letterboxed, Letterbox{
		Scale:      scale,
		PadLeft:    padLeft,
		PadTop:     padTop,
		InputSize:  inputSize,
		OrigWidth:  srcWidth,
		OrigHeight: srcHeight,
	}, nil
}
