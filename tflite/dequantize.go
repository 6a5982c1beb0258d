package tflite

import (
	"fmt"

	"github.com/mattn/go-tflite"
	"github.com/pkg/errors"
)

// Dequantize maps affine-quantized uint8 tensor values back to float32:
// value = scale * (q - zeroPoint).
func Dequantize(data []uint8, scale float32, zeroPoint int) []float32 {
	out := make([]float32, len(data))
	for i, q := range data {
		out[i] = scale * float32(int(q)-zeroPoint)
	}
	return out
}

// tensorToFloats copies a tensor's values out as float32, dequantizing
// uint8 tensors with their affine quantization parameters.
func tensorToFloats(t *tflite.Tensor) ([]float32, error) {
	switch t.Type() {
	case tflite.Float32:
		src := t.Float32s()
		out := make([]float32, len(src))
		copy(out, src)
		return out, nil
	case tflite.UInt8:
		q := t.QuantizationParams()
		if q.Scale == 0 {
			return nil, errors.Errorf("tensor %s is uint8 but carries no quantization scale", t.Name())
		}
		return Dequantize(t.UInt8s(), float32(q.Scale), q.ZeroPoint), nil
	default:
		return nil, errors.Errorf("unsupported output tensor type %v", t.Type())
	}
}

// tensorLen returns the number of elements in a tensor.
func tensorLen(t *tflite.Tensor) int {
	n := 1
	for i := 0; i < t.NumDims(); i++ {
		n *= t.Dim(i)
	}
	return n
}

// tensorShape formats a tensor's dimensions for error messages.
func tensorShape(t *tflite.Tensor) string {
	shape := make([]int, t.NumDims())
	for i := range shape {
		shape[i] = t.Dim(i)
	}
	return fmt.Sprintf("%v", shape)
}
