package util

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writePNG drops a tiny PNG into dir under the given name.
func writePNG(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644))
}

// TestLoadDirectoryImageFiles checks filtering and frame ordering.
func TestLoadDirectoryImageFiles(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "frame-10.png", 2, 2)
	writePNG(t, dir, "frame-2.png", 2, 2)
	writePNG(t, dir, "snapshot.png", 2, 2)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	files, err := LoadDirectoryImageFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 3, "only image files are loaded")

	// Unnumbered names sort first (frame -1), then by frame number.
	assert.Equal(t, -1, files[0].Frame)
	assert.Equal(t, filepath.Join(dir, "snapshot.png"), files[0].Path)
	assert.Equal(t, 2, files[1].Frame)
	assert.Equal(t, 10, files[2].Frame)
}

// TestImageFileDecode checks the bytes-to-image round trip.
func TestImageFileDecode(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "frame-1.png", 3, 2)

	files, err := LoadDirectoryImageFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)

	img, err := files[0].Decode()
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())

	files[0].Data = []byte("not an image")
	_, err = files[0].Decode()
	assert.Error(t, err)
}

// TestLoadDirectoryImageFilesMissingDir checks the error path.
func TestLoadDirectoryImageFilesMissingDir(t *testing.T) {
	_, err := LoadDirectoryImageFiles(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
