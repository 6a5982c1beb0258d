// Command webcam runs the YOLOv4 detector on a live camera feed and draws
// the detections.
package main

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"time"

	"github.com/akamensky/argparse"
	"gocv.io/x/gocv"

	"github.com/edgevision-labs/go-yolov4/models/model"
	"github.com/edgevision-labs/go-yolov4/models/yolov4"
	"github.com/edgevision-labs/go-yolov4/tflite"
)

func main() {
	parser := argparse.NewParser("webcam", "Run YOLOv4 TFLite detection on a camera feed")
	modelPath := parser.String("m", "model", &argparse.Options{Help: "TFLite model file", Required: true})
	inputSize := parser.Int("s", "size", &argparse.Options{Help: "Network input size", Default: 416})
	deviceID := parser.Int("d", "device", &argparse.Options{Help: "Video capture device ID", Default: 0})
	useTPU := parser.Flag("t", "edgetpu", &argparse.Options{Help: "Use the EdgeTPU delegate"})
	tiny := parser.Flag("", "tiny", &argparse.Options{Help: "Model uses the YOLOv4-tiny head layout"})
	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	cfg := yolov4.COCOConfig(*inputSize)
	if *tiny {
		cfg = yolov4.TinyCOCOConfig(*inputSize)
	}

	detector, err := tflite.NewDetector(tflite.Config{
		ModelPath: *modelPath,
		Model:     cfg,
		EdgeTPU:   *useTPU,
	})
	if err != nil {
		log.Fatalf("loading detector: %v", err)
	}
	defer detector.Close()

	webcam, err := gocv.OpenVideoCapture(*deviceID)
	if err != nil {
		log.Fatalf("opening capture device %d: %v", *deviceID, err)
	}
	defer webcam.Close()

	window := gocv.NewWindow("YOLOv4")
	defer window.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	green := color.RGBA{0, 255, 0, 0}

	// FPS tracking
	fps := 0.0
	frameCount := 0
	lastTime := time.Now()

	log.Printf("reading camera device %d", *deviceID)
	for {
		if ok := webcam.Read(&frame); !ok {
			log.Printf("cannot read device %d", *deviceID)
			return
		}
		if frame.Empty() {
			continue
		}

		img, err := frame.ToImage()
		if err != nil {
			log.Fatalf("converting frame: %v", err)
		}

		detections, err := detector.Predict(img)
		if err != nil {
			log.Fatalf("predict: %v", err)
		}

		frameCount++
		if elapsed := time.Since(lastTime).Seconds(); elapsed >= 1.0 {
			fps = float64(frameCount) / elapsed
			frameCount = 0
			lastTime = time.Now()
		}

		for i := range detections {
			det := &detections[i]
			r := det.Rect()
			gocv.Rectangle(&frame, image.Rect(r.X1, r.Y1, r.X2, r.Y2), green, 2)
			label := fmt.Sprintf("%s %.2f",
				model.ClassName(model.COCOClasses, det.Classes[0].ID), det.Classes[0].Prob)
			gocv.PutText(&frame, label, image.Pt(r.X1, r.Y1-5),
				gocv.FontHersheySimplex, 0.5, green, 1)
		}
		gocv.PutText(&frame, fmt.Sprintf("FPS: %.1f", fps), image.Pt(10, 20),
			gocv.FontHersheySimplex, 0.6, green, 2)

		window.IMShow(frame)
		if window.WaitKey(1) == 27 { // ESC
			return
		}
	}
}
