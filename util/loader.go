// Package util - Helpers for feeding recorded frames through the detector.
package util

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ImageFile represents one recorded frame on disk.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Data is the raw bytes of the image file.
	Data []byte
	// Frame is the frame number parsed from the file name, or -1 when the
	// name carries no number.
	Frame int
}

// Decode decodes the raw bytes into an image.Image.
func (f *ImageFile) Decode() (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", f.Path)
	}
	return img, nil
}

// LoadDirectoryImageFiles reads all image files from a directory, ordered by
// frame number when the names follow the frame-N convention and by name
// otherwise.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", dir)
	}

	var frames []ImageFile
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(file.Name()))
		switch ext {
		case ".jpg", ".jpeg", ".png":
		default:
			continue
		}

		imgPath := filepath.Join(dir, file.Name())
		data, err := os.ReadFile(imgPath)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", imgPath)
		}
		frames = append(frames, ImageFile{
			Path:  imgPath,
			Data:  data,
			Frame: frameNumber(file.Name(), ext),
		})
	}

	sort.Slice(frames, func(i, j int) bool {
		if frames[i].Frame != frames[j].Frame {
			return frames[i].Frame < frames[j].Frame
		}
		return frames[i].Path < frames[j].Path
	})

	return frames, nil
}

// frameNumber extracts N from names like frame-N.jpg or N.png.
func frameNumber(name, ext string) int {
	stem := strings.TrimSuffix(name, ext)
	stem = strings.TrimPrefix(stem, "frame-")
	n, err := strconv.Atoi(stem)
	if err != nil {
		return -1
	}
	return n
}
