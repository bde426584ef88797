package calib

import (
	"fmt"
	"io"

	"github.com/banshee-data/stereo-depth/internal/monitoring"
)

// SourceKind tags where a camera model comes from.
type SourceKind int

const (
	// SourceFile loads the rig from a calibration file.
	SourceFile SourceKind = iota
	// SourceDriver takes the rig exposed by a rectifying camera driver.
	SourceDriver
)

func (k SourceKind) String() string {
	switch k {
	case SourceDriver:
		return "driver"
	case SourceFile:
		return "file"
	}
	return fmt.Sprintf("SourceKind(%d)", int(k))
}

// ModelSource selects the camera model once at startup: either a rig handed
// over by a rectifying driver or the path of a calibration file.
type ModelSource struct {
	Kind SourceKind
	Rig  *Rig   // set when Kind == SourceDriver
	Path string // set when Kind == SourceFile; may be empty
}

// FromDriver selects the already-rectified rig of a camera driver.
func FromDriver(rig *Rig) ModelSource {
	return ModelSource{Kind: SourceDriver, Rig: rig}
}

// FromFile selects a calibration file. An empty path is accepted here and
// rejected by Resolve with ErrCalibrationRequired.
func FromFile(path string) ModelSource {
	return ModelSource{Kind: SourceFile, Path: path}
}

// Resolve produces the stereo camera pair for src and prints the camera
// matrix and baseline to out.
func Resolve(src ModelSource, out io.Writer) (CameraPair, error) {
	var rig *Rig
	switch src.Kind {
	case SourceDriver:
		monitoring.Opsf("Rectified driver detected. Extracting new camera model.")
		rig = src.Rig
	case SourceFile:
		if src.Path == "" {
			return CameraPair{}, ErrCalibrationRequired
		}
		var err error
		if rig, err = ReadXMLRig(src.Path); err != nil {
			return CameraPair{}, err
		}
	default:
		return CameraPair{}, fmt.Errorf("unknown model source %v", src.Kind)
	}

	pair, err := NewPair(rig)
	if err != nil {
		return CameraPair{}, err
	}
	for i, c := range rig.Cameras {
		monitoring.Diagf("camera %d %q (%s) %dx%d fx=%.3f fy=%.3f cx=%.3f cy=%.3f",
			i, c.Name, c.Type, c.Width, c.Height, c.K.Fx, c.K.Fy, c.K.Cx, c.K.Cy)
	}
	if out != nil {
		pair.Print(out)
	}
	return pair, nil
}
