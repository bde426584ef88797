package camera

import (
	"fmt"

	"github.com/banshee-data/stereo-depth/internal/calib"
	"github.com/banshee-data/stereo-depth/internal/timeutil"
)

// Driver produces stereo pairs of a fixed size.
type Driver interface {
	// Width and Height give the size of every captured image.
	Width() int
	Height() int

	// Capture fills f with the next pair. It returns ErrEndOfStream once
	// the source is exhausted or disconnected.
	Capture(f *StereoFrame) error

	// Close releases the device.
	Close() error
}

// Options configures drivers opened by Open.
type Options struct {
	// Clock stamps captures. Defaults to timeutil.RealClock.
	Clock timeutil.Clock
}

func (o Options) clock() timeutil.Clock {
	if o.Clock == nil {
		return timeutil.RealClock{}
	}
	return o.Clock
}

// Camera is an opened driver plus what the pipeline needs to know about it.
type Camera struct {
	Driver
	URI URI

	// Rectified is the rig of a rectifying driver, nil for raw drivers.
	Rectified *calib.Rig
}

// Open parses uri and opens the matching driver.
func Open(uri string, opts Options) (*Camera, error) {
	u, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	return OpenURI(u, opts)
}

// OpenURI opens an already parsed URI.
func OpenURI(u URI, opts Options) (*Camera, error) {
	var (
		drv Driver
		rig *calib.Rig
		err error
	)
	switch u.Driver {
	case "synthetic":
		drv, err = newSynthetic(u, opts.clock())
	case "files":
		drv, err = newFiles(u, opts.clock())
	case "rectify":
		drv, rig, err = newRectify(u, opts)
	default:
		return nil, fmt.Errorf("unknown camera driver %q", u.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s camera: %w", u.Driver, err)
	}
	return &Camera{Driver: drv, URI: u, Rectified: rig}, nil
}
