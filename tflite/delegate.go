package tflite

import (
	"runtime"

	"github.com/mattn/go-tflite/delegates"
	"github.com/mattn/go-tflite/delegates/edgetpu"
	"github.com/pkg/errors"
)

// edgeTPULib names the EdgeTPU delegate shared library the host operating
// system resolves.
func edgeTPULib() string {
	switch runtime.GOOS {
	case "darwin":
		return "libedgetpu.1.dylib"
	case "windows":
		return "edgetpu.dll"
	default:
		return "libedgetpu.so.1"
	}
}

// newEdgeTPUDelegate resolves an attached EdgeTPU device and creates the
// delegate for it. Absence of the runtime or of a device is an error the
// load path treats as fatal.
func newEdgeTPUDelegate() (delegates.Delegater, error) {
	devices, err := edgetpu.DeviceList()
	if err != nil {
		return nil, errors.Wrapf(err, "enumerating EdgeTPU devices (is %s installed?)", edgeTPULib())
	}
	if len(devices) == 0 {
		return nil, errors.Errorf("no EdgeTPU device attached (delegate %s)", edgeTPULib())
	}
	delegate := edgetpu.New(devices[0])
	if delegate == nil {
		return nil, errors.Errorf("cannot create EdgeTPU delegate for device %s", devices[0].Path)
	}
	return delegate, nil
}
