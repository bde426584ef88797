package calib

import (
	"errors"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrCalibrationRequired is returned when no rectifying driver is
	// attached and no calibration file was supplied.
	ErrCalibrationRequired = errors.New("camera models file is required")

	// ErrCameraCount is returned when a rig does not hold exactly two cameras.
	ErrCameraCount = errors.New("two camera models are required")

	// ErrDegenerateBaseline is returned when the two cameras share a centre.
	ErrDegenerateBaseline = errors.New("stereo baseline must be strictly positive")
)

// Intrinsics holds the pinhole parameters of one camera.
type Intrinsics struct {
	Fx, Fy float64 // focal lengths in pixels
	Cx, Cy float64 // principal point
}

// Matrix returns the 3x3 camera matrix K.
func (in Intrinsics) Matrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		in.Fx, 0, in.Cx,
		0, in.Fy, in.Cy,
		0, 0, 1,
	})
}

// CameraModel is one calibrated camera of a rig.
type CameraModel struct {
	Name   string
	Type   string
	Width  int
	Height int
	K      Intrinsics
	RDF    [9]float64 // right/down/forward axis convention, row-major
	Pose   Pose       // camera to world
}

// Rig is a set of calibrated cameras sharing a world frame.
type Rig struct {
	Cameras []CameraModel
}

// NumCams returns the number of cameras in the rig.
func (r *Rig) NumCams() int {
	if r == nil {
		return 0
	}
	return len(r.Cameras)
}

// CameraPair is the resolved stereo model. It is built once at startup and
// never modified afterwards.
type CameraPair struct {
	K        [2]Intrinsics
	Pose     [2]Pose
	Baseline float64
}

// Focal returns the focal length used for depth conversion (camera 0, x).
func (p CameraPair) Focal() float64 {
	return p.K[0].Fx
}

// NewPair validates a rig and derives the stereo pair from it.
func NewPair(rig *Rig) (CameraPair, error) {
	if n := rig.NumCams(); n != 2 {
		return CameraPair{}, fmt.Errorf("%w: rig has %d", ErrCameraCount, n)
	}
	c0, c1 := rig.Cameras[0], rig.Cameras[1]
	b, err := Baseline(c0.Pose, c1.Pose)
	if err != nil {
		return CameraPair{}, err
	}
	if !(b > 0) || math.IsInf(b, 0) {
		return CameraPair{}, fmt.Errorf("%w: got %g", ErrDegenerateBaseline, b)
	}
	return CameraPair{
		K:        [2]Intrinsics{c0.K, c1.K},
		Pose:     [2]Pose{c0.Pose, c1.Pose},
		Baseline: b,
	}, nil
}

// Print writes the operator summary of the pair: camera 0's matrix and the
// baseline.
func (p CameraPair) Print(w io.Writer) {
	fmt.Fprintf(w, "Camera Model used: \n%v\n", mat.Formatted(p.K[0].Matrix(), mat.Squeeze()))
	fmt.Fprintf(w, "Baseline is: %g\n", p.Baseline)
}
