// Package depthstats summarizes depth maps and plots the summaries of a run.
package depthstats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the valid depths of one map. A depth is valid when it
// is finite and positive; invalid disparity markers convert to negative
// depths and zero disparity to +Inf, so neither is counted.
type Summary struct {
	Total  int
	Valid  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// ValidRatio returns Valid/Total, 0 for an empty map.
func (s Summary) ValidRatio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Valid) / float64(s.Total)
}

// Summarize computes the summary of depth. Min, Max, Mean and StdDev are
// zero when no value is valid.
func Summarize(depth []float32) Summary {
	s := Summary{Total: len(depth)}
	valid := make([]float64, 0, len(depth))
	for _, v := range depth {
		d := float64(v)
		if d > 0 && !math.IsInf(d, 0) {
			valid = append(valid, d)
		}
	}
	s.Valid = len(valid)
	if s.Valid == 0 {
		return s
	}
	s.Min = floats.Min(valid)
	s.Max = floats.Max(valid)
	if s.Valid == 1 {
		s.Mean = valid[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(valid, nil)
	return s
}
