package depthstats

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Sample is one frame's summary on the run timeline.
type Sample struct {
	Seq       uint64
	Timestamp float64
	Summary   Summary
}

// Plotter accumulates per-frame summaries during a run and renders them
// as PNG time series once the run ends.
type Plotter struct {
	mu      sync.Mutex
	samples []Sample
}

// NewPlotter returns an empty plotter.
func NewPlotter() *Plotter {
	return &Plotter{}
}

// Add records one frame.
func (p *Plotter) Add(seq uint64, timestamp float64, s Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.samples = append(p.samples, Sample{Seq: seq, Timestamp: timestamp, Summary: s})
}

// Samples returns a copy of the recorded samples.
func (p *Plotter) Samples() []Sample {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Sample(nil), p.samples...)
}

// Save writes depth_mean.png, valid_ratio.png and the HTML run report into
// dir and returns the number of files written. Nothing is written for an
// empty run.
func (p *Plotter) Save(dir string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.samples) == 0 {
		return 0, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output dir: %w", err)
	}

	mean := make(plotter.XYs, 0, len(p.samples))
	lo := make(plotter.XYs, 0, len(p.samples))
	hi := make(plotter.XYs, 0, len(p.samples))
	ratio := make(plotter.XYs, len(p.samples))
	for i, s := range p.samples {
		x := float64(s.Seq)
		ratio[i] = plotter.XY{X: x, Y: s.Summary.ValidRatio()}
		if s.Summary.Valid == 0 {
			continue
		}
		mean = append(mean, plotter.XY{X: x, Y: s.Summary.Mean})
		lo = append(lo, plotter.XY{X: x, Y: s.Summary.Mean - s.Summary.StdDev})
		hi = append(hi, plotter.XY{X: x, Y: s.Summary.Mean + s.Summary.StdDev})
	}

	pMean := plot.New()
	pMean.Title.Text = "Mean Depth"
	pMean.X.Label.Text = "Frame"
	pMean.Y.Label.Text = "Depth (m)"
	if len(mean) > 0 {
		for _, series := range []struct {
			name string
			pts  plotter.XYs
			c    color.Color
		}{
			{"mean", mean, color.RGBA{R: 31, G: 119, B: 180, A: 255}},
			{"mean - sd", lo, color.RGBA{R: 150, G: 150, B: 150, A: 255}},
			{"mean + sd", hi, color.RGBA{R: 150, G: 150, B: 150, A: 255}},
		} {
			line, err := plotter.NewLine(series.pts)
			if err != nil {
				return 0, fmt.Errorf("%s line: %w", series.name, err)
			}
			line.Color = series.c
			line.Width = vg.Points(1)
			pMean.Add(line)
			pMean.Legend.Add(series.name, line)
		}
		pMean.Legend.Top = true
	}

	pRatio := plot.New()
	pRatio.Title.Text = "Valid Depth Ratio"
	pRatio.X.Label.Text = "Frame"
	pRatio.Y.Label.Text = "Valid / Total"
	pRatio.Y.Min, pRatio.Y.Max = 0, 1
	ratioLine, err := plotter.NewLine(ratio)
	if err != nil {
		return 0, fmt.Errorf("ratio line: %w", err)
	}
	ratioLine.Width = vg.Points(1)
	pRatio.Add(ratioLine)

	written := 0
	for _, out := range []struct {
		p    *plot.Plot
		name string
	}{{pMean, "depth_mean.png"}, {pRatio, "valid_ratio.png"}} {
		if err := out.p.Save(14*vg.Inch, 6*vg.Inch, filepath.Join(dir, out.name)); err != nil {
			return written, fmt.Errorf("failed to save %s: %w", out.name, err)
		}
		written++
	}

	if err := writeReport(filepath.Join(dir, ReportName), p.samples); err != nil {
		return written, err
	}
	return written + 1, nil
}

func writeReport(path string, samples []Sample) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return renderReport(f, samples)
}
