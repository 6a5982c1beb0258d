// Package tflite - TFLite interpreter wrapper around the YOLOv4 pipeline.
//
// The interpreter itself is an opaque collaborator: it consumes the
// letterboxed frame buffer and produces the raw per-head tensors that the
// decode + NMS pipeline in models/yolov4 turns into detections.
package tflite

import (
	"image"
	"log"

	"github.com/mattn/go-tflite"
	"github.com/mattn/go-tflite/delegates"
	"github.com/pkg/errors"

	"github.com/edgevision-labs/go-yolov4/images"
	"github.com/edgevision-labs/go-yolov4/models/postprocess"
	"github.com/edgevision-labs/go-yolov4/models/yolov4"
)

// Config configures a Detector.
type Config struct {
	// ModelPath is the path to the compiled/quantized .tflite artifact.
	ModelPath string
	// Model describes the detection heads the artifact was built with. It is
	// verified against the actual tensor shapes at load time.
	Model *yolov4.ModelConfig
	// NumThreads is passed to the interpreter. Zero means the default (4).
	NumThreads int
	// EdgeTPU requests the EdgeTPU delegate. A missing device or runtime is
	// a fatal load error, never a silent CPU fallback.
	EdgeTPU bool
	// Delegate overrides EdgeTPU with a caller-supplied delegate.
	Delegate delegates.Delegater
}

// Detector loads a YOLOv4 TFLite artifact and runs detection on frames.
//
// A Detector is NOT safe for concurrent use: the underlying interpreter is
// not re-entrant, so concurrent Predict calls on one instance must be
// serialized by the caller.
type Detector struct {
	cfg        Config
	model      *tflite.Model
	options    *tflite.InterpreterOptions
	interp     *tflite.Interpreter
	inputFloat bool
}

// NewDetector loads the model artifact and verifies the declared
// configuration against the interpreter's actual tensors.
//
// Any mismatch between the configured heads and the model's tensor shapes is
// fatal here: the pipeline cannot safely assume an anchor/grid layout the
// artifact does not have.
func NewDetector(cfg Config) (*Detector, error) {
	if cfg.Model == nil {
		return nil, errors.New("model configuration is required")
	}
	if err := cfg.Model.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model configuration")
	}

	model := tflite.NewModelFromFile(cfg.ModelPath)
	if model == nil {
		return nil, errors.Errorf("cannot load model %s", cfg.ModelPath)
	}

	options := tflite.NewInterpreterOptions()
	if options == nil {
		model.Delete()
		return nil, errors.New("cannot create interpreter options")
	}
	threads := cfg.NumThreads
	if threads <= 0 {
		threads = 4
	}
	options.SetNumThread(threads)

	switch {
	case cfg.Delegate != nil:
		options.AddDelegate(cfg.Delegate)
	case cfg.EdgeTPU:
		delegate, err := newEdgeTPUDelegate()
		if err != nil {
			options.Delete()
			model.Delete()
			return nil, errors.Wrap(err, "EdgeTPU delegate unavailable")
		}
		options.AddDelegate(delegate)
	}

	interp := tflite.NewInterpreter(model, options)
	if interp == nil {
		options.Delete()
		model.Delete()
		return nil, errors.Errorf("cannot create interpreter for %s", cfg.ModelPath)
	}
	if status := interp.AllocateTensors(); status != tflite.OK {
		interp.Delete()
		options.Delete()
		model.Delete()
		return nil, errors.New("tensor allocation failed")
	}

	d := &Detector{
		cfg:     cfg,
		model:   model,
		options: options,
		interp:  interp,
	}
	if err := d.validateTensors(); err != nil {
		d.Close()
		return nil, err
	}

	log.Printf("loaded %s: input %dx%d, %d heads, %d classes, float input %v",
		cfg.ModelPath, cfg.Model.InputSize, cfg.Model.InputSize,
		len(cfg.Model.Heads), cfg.Model.NumClasses, d.inputFloat)
	return d, nil
}

// validateTensors checks the interpreter's tensors against the configured
// input size and detection heads.
func (d *Detector) validateTensors() error {
	m := d.cfg.Model

	if d.interp.GetInputTensorCount() != 1 {
		return errors.Errorf("model has %d input tensors, expected 1", d.interp.GetInputTensorCount())
	}
	input := d.interp.GetInputTensor(0)
	if input.NumDims() != 4 ||
		input.Dim(0) != 1 ||
		input.Dim(1) != m.InputSize ||
		input.Dim(2) != m.InputSize ||
		input.Dim(3) != 3 {
		return errors.Errorf("input tensor shape %s does not match configured (1, %d, %d, 3)",
			tensorShape(input), m.InputSize, m.InputSize)
	}
	switch input.Type() {
	case tflite.Float32:
		d.inputFloat = true
	case tflite.UInt8:
		d.inputFloat = false
	default:
		return errors.Errorf("unsupported input tensor type %v", input.Type())
	}

	if d.interp.GetOutputTensorCount() != len(m.Heads) {
		return errors.Errorf("model has %d output tensors, configuration declares %d heads",
			d.interp.GetOutputTensorCount(), len(m.Heads))
	}
	attrs := 5 + m.NumClasses
	for i := range m.Heads {
		out := d.interp.GetOutputTensor(i)
		grid := m.Grid(i)
		numAnchors := len(m.Heads[i].Anchors)

		want := grid * grid * numAnchors * attrs
		if n := tensorLen(out); n != want {
			return errors.Errorf("head %d: output tensor %s has %d values, configuration requires %d",
				i, tensorShape(out), n, want)
		}
		// The head may come out as (1, g, g, a*(5+C)) or (1, g, g, a, 5+C);
		// either way the spatial dims must match the configured grid.
		if out.NumDims() >= 3 && (out.Dim(1) != grid || out.Dim(2) != grid) {
			return errors.Errorf("head %d: output grid %dx%d does not match configured %d (stride %d)",
				i, out.Dim(1), out.Dim(2), grid, m.Heads[i].Stride)
		}
	}
	return nil
}

// Predict runs detection on one frame and returns final detections in the
// frame's own pixel coordinate system, origin top-left.
//
// An empty result simply means nothing cleared the score threshold. Predict
// runs to completion or returns an error; there are no timeout or
// cancellation semantics.
func (d *Detector) Predict(frame image.Image) ([]postprocess.Detection, error) {
	m := d.cfg.Model

	letterboxed, lb, err := images.LetterboxImage(frame, m.InputSize)
	if err != nil {
		return nil, errors.Wrap(err, "resizing frame")
	}

	input := d.interp.GetInputTensor(0)
	if d.inputFloat {
		copy(input.Float32s(), images.ToHWCFloats(letterboxed))
	} else {
		copy(input.UInt8s(), images.ToHWCBytes(letterboxed))
	}

	if status := d.interp.Invoke(); status != tflite.OK {
		return nil, errors.New("interpreter invocation failed")
	}

	perHead := make([][]float32, len(m.Heads))
	for i := range m.Heads {
		raw, err := tensorToFloats(d.interp.GetOutputTensor(i))
		if err != nil {
			return nil, errors.Wrapf(err, "reading head %d", i)
		}
		perHead[i], err = m.Decode(i, raw, false)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding head %d", i)
		}
	}

	detections, err := m.PostProcess(perHead)
	if err != nil {
		return nil, err
	}
	yolov4.FitToOriginal(detections, lb)
	return detections, nil
}

// Close releases the interpreter and model. The Detector must not be used
// afterwards.
func (d *Detector) Close() {
	if d.interp != nil {
		d.interp.Delete()
		d.interp = nil
	}
	if d.options != nil {
		d.options.Delete()
		d.options = nil
	}
	if d.model != nil {
		d.model.Delete()
		d.model = nil
	}
}
