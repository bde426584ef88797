package depthstats

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlotter_Save(t *testing.T) {
	p := NewPlotter()
	p.Add(0, 0.1, Summary{Total: 10, Valid: 8, Min: 1, Max: 5, Mean: 3, StdDev: 1})
	p.Add(1, 0.2, Summary{Total: 10})
	p.Add(2, 0.3, Summary{Total: 10, Valid: 10, Min: 2, Max: 6, Mean: 4, StdDev: 0.5})
	assert.Len(t, p.Samples(), 3)

	dir := filepath.Join(t.TempDir(), "plots")
	n, err := p.Save(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, name := range []string{"depth_mean.png", "valid_ratio.png", ReportName} {
		fi, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, fi.Size())
	}
}

func TestPlotter_EmptyRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	n, err := NewPlotter().Save(dir)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestPlotter_NoValidDepth(t *testing.T) {
	p := NewPlotter()
	p.Add(0, 0, Summary{Total: 4})
	n, err := p.Save(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestPlotter_RenderReport(t *testing.T) {
	p := NewPlotter()
	p.Add(0, 0.1, Summary{Total: 10, Valid: 8, Mean: 3.25, StdDev: 1})
	p.Add(1, 0.2, Summary{Total: 10})
	p.Add(2, 0.3, Summary{Total: 10, Valid: 10, Mean: 4.5, StdDev: 0.5})

	var buf bytes.Buffer
	require.NoError(t, p.RenderReport(&buf))
	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Mean Depth")
	assert.Contains(t, html, "Valid Depth Ratio")
	assert.Contains(t, html, "3.25")
	assert.Contains(t, html, "4.5")
}
