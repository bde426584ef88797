package pipeline

import (
	"github.com/banshee-data/stereo-depth/internal/depthstats"
	"github.com/banshee-data/stereo-depth/internal/manifest"
)

// ManifestRecorder stores each exported frame in the run manifest.
type ManifestRecorder struct {
	DB    *manifest.DB
	RunID string
}

func (m *ManifestRecorder) FrameExported(ev FrameEvent) error {
	s := ev.Summary
	return m.DB.RecordFrame(manifest.FrameRecord{
		RunID:       m.RunID,
		Seq:         ev.Seq,
		Index:       ev.Exported.Index,
		Timestamp:   ev.Timestamp,
		DepthPath:   ev.Exported.DepthPath,
		GreyPath:    ev.Exported.GreyPath,
		TotalPixels: s.Total,
		ValidPixels: s.Valid,
		MinDepth:    s.Min,
		MaxDepth:    s.Max,
		MeanDepth:   s.Mean,
		StdDev:      s.StdDev,
	})
}

// PlotRecorder feeds frame summaries to a depth plotter.
type PlotRecorder struct {
	Plotter *depthstats.Plotter
}

func (p *PlotRecorder) FrameExported(ev FrameEvent) error {
	p.Plotter.Add(ev.Seq, ev.Timestamp, ev.Summary)
	return nil
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(FrameEvent) error

func (f ObserverFunc) FrameExported(ev FrameEvent) error { return f(ev) }
