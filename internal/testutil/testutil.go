// Package testutil provides shared test utilities and fixtures.
//
// This package centralises calibration and image fixtures used by the
// calib, camera, pipeline and cmd tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// RigXML renders a calibration document with the given number of identical
// pinhole cameras spaced baseline metres apart along x.
func RigXML(cameras int, focal, baseline float64, width, height int) string {
	doc := "<rig>\n"
	for i := 0; i < cameras; i++ {
		doc += fmt.Sprintf(`  <camera>
    <camera_model name="cam%d" index="%d" type="calibu_fu_fv_u0_v0">
      <width> %d </width>
      <height> %d </height>
      <params> [ %g; %g; %g; %g ] </params>
    </camera_model>
    <T_wc> [ %g; 0; 0; 0; 0; 0 ] </T_wc>
  </camera>
`, i, i, width, height, focal, focal, float64(width)/2, float64(height)/2, float64(i)*baseline)
	}
	return doc + "</rig>\n"
}

// WriteRigXML writes RigXML into dir and returns the file path.
func WriteRigXML(t *testing.T, dir string, cameras int, focal, baseline float64, width, height int) string {
	t.Helper()
	path := filepath.Join(dir, "cameras.xml")
	if err := os.WriteFile(path, []byte(RigXML(cameras, focal, baseline, width, height)), 0o644); err != nil {
		t.Fatalf("write rig: %v", err)
	}
	return path
}

// GreyRamp returns a width×height 8-bit image whose value increases along
// each row, wrapping at 256.
func GreyRamp(width, height int) []byte {
	pix := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pix[y*width+x] = byte(x + y)
		}
	}
	return pix
}
