package camera

import (
	"fmt"

	"github.com/banshee-data/stereo-depth/internal/calib"
)

// rectify wraps a child driver whose images are already row-aligned and
// publishes the matching rectified rig. Pixels are passed through unchanged.
type rectify struct {
	Driver
}

func newRectify(u URI, opts Options) (Driver, *calib.Rig, error) {
	file := u.Get("file", "")
	if file == "" {
		return nil, nil, fmt.Errorf("rectify driver needs file=<rig.xml>")
	}
	if u.Path == "" {
		return nil, nil, fmt.Errorf("rectify driver needs a child camera URI")
	}

	raw, err := calib.ReadXMLRig(file)
	if err != nil {
		return nil, nil, err
	}
	rig, err := RectifiedRig(raw)
	if err != nil {
		return nil, nil, err
	}

	child, err := Open(u.Path, opts)
	if err != nil {
		return nil, nil, err
	}
	for i, c := range rig.Cameras {
		if c.Width != 0 && (c.Width != child.Width() || c.Height != child.Height()) {
			child.Close()
			return nil, nil, fmt.Errorf("camera %d calibrated for %dx%d, child captures %dx%d",
				i, c.Width, c.Height, child.Width(), child.Height())
		}
	}
	return &rectify{Driver: child}, rig, nil
}

// RectifiedRig returns the ideal rectified model of raw: every camera takes
// camera 0's intrinsics and sits on camera 0's x axis at its original
// distance, with no rotation.
func RectifiedRig(raw *calib.Rig) (*calib.Rig, error) {
	if raw.NumCams() == 0 {
		return nil, fmt.Errorf("rig has no cameras")
	}
	ref := raw.Cameras[0]
	out := &calib.Rig{Cameras: make([]calib.CameraModel, len(raw.Cameras))}
	for i, c := range raw.Cameras {
		dist, err := calib.Baseline(ref.Pose, c.Pose)
		if err != nil {
			return nil, fmt.Errorf("camera %d: %w", i, err)
		}
		pose := calib.IdentityPose()
		pose[3] = dist
		out.Cameras[i] = calib.CameraModel{
			Name:   c.Name,
			Type:   "rectified_" + ref.Type,
			Width:  ref.Width,
			Height: ref.Height,
			K:      ref.K,
			RDF:    ref.RDF,
			Pose:   pose,
		}
	}
	return out, nil
}
