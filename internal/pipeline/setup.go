package pipeline

import (
	"fmt"
	"io"

	"github.com/banshee-data/stereo-depth/internal/calib"
	"github.com/banshee-data/stereo-depth/internal/camera"
	"github.com/banshee-data/stereo-depth/internal/config"
	"github.com/banshee-data/stereo-depth/internal/device"
	"github.com/banshee-data/stereo-depth/internal/disparity"
	"github.com/banshee-data/stereo-depth/internal/export"
	"github.com/banshee-data/stereo-depth/internal/fsutil"
	"github.com/banshee-data/stereo-depth/internal/monitoring"
	"github.com/banshee-data/stereo-depth/internal/timeutil"
)

// Options are the startup inputs of a run.
type Options struct {
	CameraURI  string
	CalibPath  string
	SkipFrames int
	ExportTime bool
	OutDir     string

	Tuning *config.TuningConfig
	FS     fsutil.FileSystem
	Stdout io.Writer
	Clock  timeutil.Clock
}

// Session is an initialised pipeline and the camera it reads from.
type Session struct {
	*Driver
	Camera *camera.Camera
}

// Close releases the camera.
func (s *Session) Close() error {
	return s.Camera.Close()
}

// New opens the camera, resolves the stereo model and builds the engine,
// device and exporter. Any error here aborts before the driver runs.
func New(opts Options) (*Session, error) {
	if opts.Tuning == nil {
		opts.Tuning = config.EmptyTuningConfig()
	}
	if opts.FS == nil {
		opts.FS = fsutil.OSFileSystem{}
	}
	if opts.Clock == nil {
		opts.Clock = timeutil.RealClock{}
	}

	cam, err := camera.Open(opts.CameraURI, camera.Options{Clock: opts.Clock})
	if err != nil {
		return nil, err
	}
	monitoring.Diagf("camera %s opened: %dx%d", cam.URI, cam.Width(), cam.Height())

	sess, err := build(cam, opts)
	if err != nil {
		cam.Close()
		return nil, err
	}
	return sess, nil
}

func build(cam *camera.Camera, opts Options) (*Session, error) {
	src := calib.FromFile(opts.CalibPath)
	if cam.Rectified != nil {
		src = calib.FromDriver(cam.Rectified)
	}
	pair, err := calib.Resolve(src, opts.Stdout)
	if err != nil {
		return nil, err
	}

	bm, err := disparity.NewBlockMatcher(opts.Tuning.DisparityParams())
	if err != nil {
		return nil, fmt.Errorf("disparity engine: %w", err)
	}
	p := bm.Params()
	monitoring.Diagf("block matcher: disp=[%d,%d] radius=%d texture=%d lr=%d only_left=%v invalid=%g workers=%d",
		p.DispMin, p.DispMax, p.WindowRadius, p.SupportTexture, p.LRThreshold, p.PostprocessOnlyLeft, p.InvalidDisparity, p.Workers)
	adapter, err := disparity.NewAdapter(bm, cam.Width(), cam.Height())
	if err != nil {
		return nil, err
	}

	dev := device.NewHostDevice(opts.Tuning.GetDeviceWorkers())
	monitoring.Diagf("host device: %d workers", dev.Workers())

	exp, err := export.NewExporter(opts.FS, opts.OutDir, opts.Stdout, opts.ExportTime)
	if err != nil {
		return nil, err
	}

	return &Session{
		Driver: &Driver{
			Source:    camera.NewSource(cam, opts.SkipFrames),
			Adapter:   adapter,
			Converter: device.NewConverter(dev),
			Exporter:  exp,
			Pair:      pair,
			Stdout:    opts.Stdout,
			Clock:     opts.Clock,
		},
		Camera: cam,
	}, nil
}
