package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/stereo-depth/internal/calib"
	"github.com/banshee-data/stereo-depth/internal/manifest"
	"github.com/banshee-data/stereo-depth/internal/testutil"
)

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestRun_SyntheticThreeFrames(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	var stdout, stderr bytes.Buffer

	err := run(options{
		Camera:      "synthetic:[width=64,height=48,frames=3]//",
		CameraModel: testutil.WriteRigXML(t, dir, 2, 520, 0.12, 64, 48),
		OutDir:      out,
	}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	assert.Equal(t, 0, exitCode(err, &stderr))

	want := []string{
		"ELAS-00000.pdm", "ELAS-00001.pdm", "ELAS-00002.pdm",
		"Grey-00000.pgm", "Grey-00001.pgm", "Grey-00002.pgm",
	}
	if diff := cmp.Diff(want, listDir(t, out)); diff != "" {
		t.Errorf("output files mismatch (-want +got):\n%s", diff)
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	assert.Equal(t, "Camera Model used: ", lines[0])
	assert.Contains(t, stdout.String(), "Baseline is: 0.12\n")
	assert.Contains(t, stdout.String(), "Processing ... \n")
	assert.Equal(t, "... done!", lines[len(lines)-1])
}

func TestRun_ManifestAndPlots(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "runs.db")
	plots := filepath.Join(dir, "plots")
	cfgPath := filepath.Join(dir, "tuning.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"disp_max": 16, "device_workers": 2}`), 0o644))

	var stdout, stderr bytes.Buffer
	err := run(options{
		Camera:       "synthetic:[width=32,height=16,frames=4]//",
		CameraModel:  testutil.WriteRigXML(t, dir, 2, 400, 0.2, 32, 16),
		OutDir:       filepath.Join(dir, "out"),
		ConfigPath:   cfgPath,
		ManifestPath: dbPath,
		PlotDir:      plots,
		SkipFrames:   1,
		ExportTime:   true,
		Debug:        true,
	}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	assert.Contains(t, stderr.String(), "block matcher: disp=[0,16]")

	db, err := manifest.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	var runID string
	require.NoError(t, db.QueryRow(`SELECT run_id FROM runs`).Scan(&runID))
	info, err := db.Run(runID)
	require.NoError(t, err)
	assert.Equal(t, 2, info.FramesExported)
	assert.True(t, info.ExportTime)
	assert.Equal(t, 1, info.SkipFrames)
	assert.False(t, info.FinishedAt.IsZero())

	frames, err := db.Frames(runID)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Len(t, frames[0].Index, 15)

	assert.Equal(t, []string{"depth_mean.png", "run_report.html", "valid_ratio.png"}, listDir(t, plots))
}

func TestRun_StartupFailures(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		opts    options
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing calibration",
			opts:    options{Camera: "synthetic:[frames=1]//", OutDir: dir},
			wantErr: calib.ErrCalibrationRequired,
			wantMsg: "Camera models file is required!",
		},
		{
			name: "three cameras",
			opts: options{
				Camera:      "synthetic:[frames=1]//",
				CameraModel: testutil.WriteRigXML(t, t.TempDir(), 3, 500, 0.1, 64, 48),
				OutDir:      dir,
			},
			wantErr: calib.ErrCameraCount,
			wantMsg: "Two camera models are required to run this program!",
		},
		{
			name:    "no camera",
			opts:    options{OutDir: dir},
			wantMsg: "-cam is required",
		},
		{
			name:    "bad tuning file",
			opts:    options{Camera: "synthetic://", ConfigPath: filepath.Join(dir, "missing.json")},
			wantMsg: "failed to stat config file",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(tc.opts, &stdout, &stderr)
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
			assert.Equal(t, 1, exitCode(err, &stderr))
			assert.Contains(t, stderr.String(), tc.wantMsg)
		})
	}
	assert.Empty(t, listDir(t, dir))
}

func TestExitCode(t *testing.T) {
	var stderr bytes.Buffer
	assert.Equal(t, 0, exitCode(nil, &stderr))
	assert.Empty(t, stderr.String())
	assert.Equal(t, 1, exitCode(errors.New("disk full"), &stderr))
	assert.Equal(t, "elas: disk full\n", stderr.String())
}
