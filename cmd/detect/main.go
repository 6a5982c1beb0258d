// Command detect runs the YOLOv4 detector over a directory of recorded
// frames and prints the detections.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/akamensky/argparse"

	"github.com/edgevision-labs/go-yolov4/models/model"
	"github.com/edgevision-labs/go-yolov4/models/yolov4"
	"github.com/edgevision-labs/go-yolov4/tflite"
	"github.com/edgevision-labs/go-yolov4/util"
)

func main() {
	parser := argparse.NewParser("detect", "Run YOLOv4 TFLite detection on a directory of images")
	modelPath := parser.String("m", "model", &argparse.Options{Help: "TFLite model file", Required: true})
	imageDir := parser.String("i", "images", &argparse.Options{Help: "Directory of jpg/png frames", Required: true})
	inputSize := parser.Int("s", "size", &argparse.Options{Help: "Network input size", Default: 416})
	threads := parser.Int("n", "threads", &argparse.Options{Help: "Interpreter threads", Default: 4})
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
		ModelPath:  *modelPath,
		Model:      cfg,
		NumThreads: *threads,
		EdgeTPU:    *useTPU,
	})
	if err != nil {
		log.Fatalf("loading detector: %v", err)
	}
	defer detector.Close()

	frames, err := util.LoadDirectoryImageFiles(*imageDir)
	if err != nil {
		log.Fatalf("loading images: %v", err)
	}
	if len(frames) == 0 {
		log.Fatalf("no images found in %s", *imageDir)
	}

	for i := range frames {
		img, err := frames[i].Decode()
		if err != nil {
			log.Fatalf("decode: %v", err)
		}
		detections, err := detector.Predict(img)
		if err != nil {
			log.Fatalf("predict %s: %v", frames[i].Path, err)
		}

		fmt.Printf("%s: %d detections\n", frames[i].Path, len(detections))
		for j := range detections {
			det := &detections[j]
			r := det.Rect()
			fmt.Printf("  %-16s %.3f  [%d,%d %d,%d]\n",
				model.ClassName(model.COCOClasses, det.Classes[0].ID),
				det.Score(), r.X1, r.Y1, r.X2, r.Y2)
			if det.Classes[1].ID >= 0 {
				fmt.Printf("    also %s %.3f\n",
					model.ClassName(model.COCOClasses, det.Classes[1].ID),
					det.Classes[1].Prob)
			}
		}
	}
}
