// Command elas captures stereo pairs from a camera, computes dense
// disparity, converts it to metric depth and writes one depth file and one
// grey image per processed frame.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/stereo-depth/internal/calib"
	"github.com/banshee-data/stereo-depth/internal/config"
	"github.com/banshee-data/stereo-depth/internal/depthstats"
	"github.com/banshee-data/stereo-depth/internal/fsutil"
	"github.com/banshee-data/stereo-depth/internal/manifest"
	"github.com/banshee-data/stereo-depth/internal/monitoring"
	"github.com/banshee-data/stereo-depth/internal/pipeline"
	"github.com/banshee-data/stereo-depth/internal/timeutil"
	"github.com/banshee-data/stereo-depth/internal/version"
)

var (
	skipFrames   = flag.Int("skip_frames", 0, "Frames to discard before each processed capture")
	exportTime   = flag.Bool("export_time", false, "Name output files by capture timestamp instead of a frame counter")
	camURI       = flag.String("cam", "", "Camera URI, e.g. synthetic:[frames=10]// or files://recordings")
	cmodPath     = flag.String("cmod", "", "Camera models file (required unless the camera is rectified)")
	outDir       = flag.String("out", ".", "Directory for depth and grey files")
	configPath   = flag.String("config", "", "Optional JSON tuning file")
	manifestPath = flag.String("manifest", "", "Optional SQLite manifest of runs and frames")
	plotDir      = flag.String("plot", "", "Optional directory for end-of-run depth plots")
	debug        = flag.Bool("debug", false, "Enable diag and trace logging on stderr")
	showVersion  = flag.Bool("version", false, "Print version and exit")
)

// options is the parsed command line.
type options struct {
	SkipFrames   int
	ExportTime   bool
	Camera       string
	CameraModel  string
	OutDir       string
	ConfigPath   string
	ManifestPath string
	PlotDir      string
	Debug        bool
}

func optionsFromFlags() options {
	return options{
		SkipFrames:   *skipFrames,
		ExportTime:   *exportTime,
		Camera:       *camURI,
		CameraModel:  *cmodPath,
		OutDir:       *outDir,
		ConfigPath:   *configPath,
		ManifestPath: *manifestPath,
		PlotDir:      *plotDir,
		Debug:        *debug,
	}
}

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(version.String("elas"))
		return
	}
	os.Exit(exitCode(run(optionsFromFlags(), os.Stdout, os.Stderr), os.Stderr))
}

// exitCode reports err to the operator and maps it to a process exit code.
func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, calib.ErrCalibrationRequired):
		fmt.Fprintln(stderr, "Camera models file is required!")
	case errors.Is(err, calib.ErrCameraCount):
		fmt.Fprintln(stderr, "Two camera models are required to run this program!")
	default:
		fmt.Fprintf(stderr, "elas: %v\n", err)
	}
	return 1
}

func run(opts options, stdout, stderr io.Writer) error {
	lw := monitoring.LogWriters{Ops: stderr}
	if opts.Debug {
		lw.Diag, lw.Trace = stderr, stderr
	}
	monitoring.SetLogWriters(lw)

	if opts.Camera == "" {
		return errors.New("-cam is required")
	}

	tuning := config.EmptyTuningConfig()
	if opts.ConfigPath != "" {
		var err error
		if tuning, err = config.LoadTuningConfig(opts.ConfigPath); err != nil {
			return err
		}
	}

	clock := timeutil.RealClock{}
	startedAt := clock.Now()
	sess, err := pipeline.New(pipeline.Options{
		CameraURI:  opts.Camera,
		CalibPath:  opts.CameraModel,
		SkipFrames: opts.SkipFrames,
		ExportTime: opts.ExportTime,
		OutDir:     opts.OutDir,
		Tuning:     tuning,
		FS:         fsutil.OSFileSystem{},
		Stdout:     stdout,
		Clock:      clock,
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	var (
		db    *manifest.DB
		runID string
	)
	if opts.ManifestPath != "" {
		if db, err = manifest.Open(opts.ManifestPath); err != nil {
			return fmt.Errorf("open manifest: %w", err)
		}
		defer db.Close()
		runID, err = db.StartRun(manifest.RunInfo{
			StartedAt:   startedAt,
			CameraURI:   sess.Camera.URI.String(),
			Calibration: opts.CameraModel,
			Width:       sess.Camera.Width(),
			Height:      sess.Camera.Height(),
			Focal:       sess.Pair.Focal(),
			Baseline:    sess.Pair.Baseline,
			SkipFrames:  opts.SkipFrames,
			ExportTime:  opts.ExportTime,
			OutputDir:   opts.OutDir,
		})
		if err != nil {
			return err
		}
		sess.Observers = append(sess.Observers, &pipeline.ManifestRecorder{DB: db, RunID: runID})
		monitoring.Opsf("manifest run %s in %s", runID, opts.ManifestPath)
	}

	var plots *depthstats.Plotter
	if opts.PlotDir != "" {
		plots = depthstats.NewPlotter()
		sess.Observers = append(sess.Observers, &pipeline.PlotRecorder{Plotter: plots})
	}

	res, runErr := sess.Run()

	if db != nil {
		if err := db.FinishRun(runID, clock.Now()); err != nil {
			monitoring.Opsf("failed to finish manifest run: %v", err)
		}
	}
	if plots != nil {
		n, err := plots.Save(opts.PlotDir)
		if err != nil {
			monitoring.Opsf("failed to save plots: %v", err)
		} else {
			monitoring.Diagf("wrote %d plots to %s", n, opts.PlotDir)
		}
	}
	if runErr != nil {
		return runErr
	}
	monitoring.Diagf("%d frames exported", res.Frames)
	return nil
}
