// Package pipeline runs the capture, match, convert and export loop.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/banshee-data/stereo-depth/internal/calib"
	"github.com/banshee-data/stereo-depth/internal/camera"
	"github.com/banshee-data/stereo-depth/internal/depthstats"
	"github.com/banshee-data/stereo-depth/internal/device"
	"github.com/banshee-data/stereo-depth/internal/disparity"
	"github.com/banshee-data/stereo-depth/internal/export"
	"github.com/banshee-data/stereo-depth/internal/monitoring"
	"github.com/banshee-data/stereo-depth/internal/timeutil"
)

// State is the driver lifecycle state.
type State int32

const (
	// Running is entered once the camera, model and engine are initialised.
	Running State = iota
	// Stopped is terminal: no further captures or exports happen.
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// FrameEvent is delivered to observers after a frame has been exported.
type FrameEvent struct {
	Seq       uint64
	Timestamp float64
	Depth     []float32
	Exported  export.Exported
	Summary   depthstats.Summary
}

// Observer receives every exported frame. An observer error stops the run.
type Observer interface {
	FrameExported(ev FrameEvent) error
}

// Result summarizes a finished run.
type Result struct {
	Frames   uint64
	Captured uint64
	Skipped  uint64

	// StreamErr is the capture error that ended the stream, nil on a clean
	// end of stream.
	StreamErr error
}

// Driver owns the per-run resources and processes frames strictly one at
// a time: frame N+1 is not captured until frame N has been exported.
type Driver struct {
	Source    *camera.Source
	Adapter   *disparity.Adapter
	Converter *device.Converter
	Exporter  *export.Exporter
	Pair      calib.CameraPair

	// Stdout receives the operator progress lines. Nil discards them.
	Stdout    io.Writer
	Observers []Observer
	Clock     timeutil.Clock

	state atomic.Int32
}

// State returns the current lifecycle state.
func (d *Driver) State() State {
	return State(d.state.Load())
}

// Run processes frames until the source ends. Per-frame failures stop the
// run and are returned; the end of the stream is not an error.
func (d *Driver) Run() (Result, error) {
	if d.State() == Stopped {
		return Result{}, errors.New("pipeline: driver already stopped")
	}
	defer d.state.Store(int32(Stopped))

	clock := d.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	d.printf("Processing ... \n")

	var res Result
	for seq := uint64(0); ; seq++ {
		t0 := clock.Now()
		f, ok := d.Source.Capture()
		if !ok {
			break
		}
		t1 := clock.Now()

		ev, err := d.process(seq, f, clock, t1)
		if err != nil {
			d.fill(&res)
			return res, fmt.Errorf("frame %d: %w", seq, err)
		}
		res.Frames++

		for _, o := range d.Observers {
			if err := o.FrameExported(ev); err != nil {
				d.fill(&res)
				return res, fmt.Errorf("frame %d observer: %w", seq, err)
			}
		}
		monitoring.Tracef("frame %d (%s): capture=%v total=%v valid=%d/%d",
			seq, ev.Exported.Index, t1.Sub(t0), clock.Since(t0), ev.Summary.Valid, ev.Summary.Total)
	}

	d.fill(&res)
	if res.StreamErr != nil {
		monitoring.Opsf("capture stopped after %d frames: %v", res.Frames, res.StreamErr)
	}
	monitoring.Diagf("run finished: %d frames exported, %d captured, %d skipped",
		res.Frames, res.Captured, res.Skipped)
	d.printf("... done!\n")
	return res, nil
}

func (d *Driver) process(seq uint64, f *camera.StereoFrame, clock timeutil.Clock, start time.Time) (FrameEvent, error) {
	disp, err := d.Adapter.Compute(f)
	if err != nil {
		return FrameEvent{}, err
	}
	tMatch := clock.Now()

	depth := make([]float32, len(disp.Left))
	if err := d.Converter.ToDepth(disp.Left, d.Pair.Focal(), d.Pair.Baseline, depth); err != nil {
		return FrameEvent{}, fmt.Errorf("depth conversion: %w", err)
	}
	tDepth := clock.Now()

	exp, err := d.Exporter.Export(depth, f.Left, seq, f.Timestamp)
	if err != nil {
		return FrameEvent{}, err
	}
	monitoring.Tracef("frame %d: match=%v depth=%v export=%v",
		seq, tMatch.Sub(start), tDepth.Sub(tMatch), clock.Since(tDepth))

	return FrameEvent{
		Seq:       seq,
		Timestamp: f.Timestamp,
		Depth:     depth,
		Exported:  exp,
		Summary:   depthstats.Summarize(depth),
	}, nil
}

func (d *Driver) fill(res *Result) {
	res.Captured = d.Source.Captured
	res.Skipped = d.Source.Skipped
	if err := d.Source.Err(); err != nil && !errors.Is(err, camera.ErrEndOfStream) {
		res.StreamErr = err
	}
}

func (d *Driver) printf(format string, args ...any) {
	if d.Stdout != nil {
		fmt.Fprintf(d.Stdout, format, args...)
	}
}
