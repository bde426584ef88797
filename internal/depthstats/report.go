package depthstats

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ReportName is the HTML run report written next to the PNG plots.
const ReportName = "run_report.html"

// RenderReport writes an interactive HTML page with the mean depth (and
// its ±sd band) and the valid ratio per frame. Frames without valid depth
// leave a gap in the depth series.
func (p *Plotter) RenderReport(w io.Writer) error {
	return renderReport(w, p.Samples())
}

func renderReport(w io.Writer, samples []Sample) error {
	x := make([]string, len(samples))
	mean := make([]opts.LineData, len(samples))
	lo := make([]opts.LineData, len(samples))
	hi := make([]opts.LineData, len(samples))
	ratio := make([]opts.LineData, len(samples))
	for i, s := range samples {
		x[i] = strconv.FormatUint(s.Seq, 10)
		ratio[i] = opts.LineData{Value: s.Summary.ValidRatio()}
		if s.Summary.Valid == 0 {
			mean[i], lo[i], hi[i] = opts.LineData{Value: "-"}, opts.LineData{Value: "-"}, opts.LineData{Value: "-"}
			continue
		}
		mean[i] = opts.LineData{Value: s.Summary.Mean}
		lo[i] = opts.LineData{Value: s.Summary.Mean - s.Summary.StdDev}
		hi[i] = opts.LineData{Value: s.Summary.Mean + s.Summary.StdDev}
	}

	depth := charts.NewLine()
	depth.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Stereo Depth Run", Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Mean Depth", Subtitle: fmt.Sprintf("frames=%d", len(samples))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Frame", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Depth (m)"}),
	)
	depth.SetXAxis(x).
		AddSeries("mean", mean).
		AddSeries("mean - sd", lo).
		AddSeries("mean + sd", hi)

	valid := charts.NewLine()
	valid.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Valid Depth Ratio"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Frame", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Valid / Total", Min: 0, Max: 1}),
	)
	valid.SetXAxis(x).AddSeries("valid", ratio)

	page := components.NewPage()
	page.SetPageTitle("Stereo Depth Run")
	page.AddCharts(depth, valid)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}
