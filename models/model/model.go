// Package model - Model identity types shared by configurations.
package model

// Family is the family of models.
type Family string

const (
	// ModelFamilyYOLO is the YOLO single-shot detector family.
	ModelFamilyYOLO Family = "yolo"
)

// Name is the unique identifier of a model.
type Name string

const (
	// ModelNameYOLOv4 is the name of the YOLOv4 model.
	ModelNameYOLOv4 Name = "yolov4"
	// ModelNameYOLOv4Tiny is the name of the YOLOv4-tiny model.
	ModelNameYOLOv4Tiny Name = "yolov4-tiny"
)
