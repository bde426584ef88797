package depthstats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	inf := float32(math.Inf(1))
	nan := float32(math.NaN())

	tests := []struct {
		name  string
		depth []float32
		want  Summary
	}{
		{"empty", nil, Summary{}},
		{"all invalid", []float32{-10, 0, inf, nan}, Summary{Total: 4}},
		{"single", []float32{-1, 2.5}, Summary{Total: 2, Valid: 1, Min: 2.5, Max: 2.5, Mean: 2.5}},
		{"mixed", []float32{1, 2, 3, -10, inf, 4}, Summary{Total: 6, Valid: 4, Min: 1, Max: 4, Mean: 2.5, StdDev: math.Sqrt(5.0 / 3.0)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Summarize(tc.depth)
			assert.Equal(t, tc.want.Total, got.Total)
			assert.Equal(t, tc.want.Valid, got.Valid)
			assert.InDelta(t, tc.want.Min, got.Min, 1e-12)
			assert.InDelta(t, tc.want.Max, got.Max, 1e-12)
			assert.InDelta(t, tc.want.Mean, got.Mean, 1e-12)
			assert.InDelta(t, tc.want.StdDev, got.StdDev, 1e-12)
		})
	}
}

func TestValidRatio(t *testing.T) {
	assert.Equal(t, 0.0, Summary{}.ValidRatio())
	assert.Equal(t, 0.25, Summary{Total: 8, Valid: 2}.ValidRatio())
}
