package testutil

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func TestAssertNoError(t *testing.T) {
	t.Parallel()
	AssertNoError(t, nil)
}

func TestAssertError(t *testing.T) {
	t.Parallel()
	AssertError(t, errors.New("test error"))
}

func TestRigXML(t *testing.T) {
	doc := RigXML(2, 500, 0.12, 64, 48)
	if got := strings.Count(doc, "<camera>"); got != 2 {
		t.Errorf("expected 2 cameras, got %d", got)
	}
	if !strings.Contains(doc, "[ 500; 500; 32; 24 ]") {
		t.Errorf("missing intrinsics in %s", doc)
	}
	if !strings.Contains(doc, "[ 0.12; 0; 0; 0; 0; 0 ]") {
		t.Errorf("missing second camera pose in %s", doc)
	}
}

func TestWriteRigXML(t *testing.T) {
	path := WriteRigXML(t, t.TempDir(), 1, 100, 0.1, 8, 8)
	data, err := os.ReadFile(path)
	AssertNoError(t, err)
	if !strings.HasPrefix(string(data), "<rig>") {
		t.Errorf("unexpected content %q", data)
	}
}

func TestGreyRamp(t *testing.T) {
	pix := GreyRamp(300, 2)
	if len(pix) != 600 {
		t.Fatalf("len = %d, want 600", len(pix))
	}
	if pix[0] != 0 || pix[1] != 1 || pix[256] != 0 || pix[300] != 1 {
		t.Errorf("unexpected ramp values %d %d %d %d", pix[0], pix[1], pix[256], pix[300])
	}
}
