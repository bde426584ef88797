package main

import (
	"flag"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFlagDefaults(t *testing.T) {
	want := options{OutDir: "."}
	if diff := cmp.Diff(want, optionsFromFlags()); diff != "" {
		t.Errorf("default options mismatch (-want +got):\n%s", diff)
	}
}

func TestFlagNames(t *testing.T) {
	for _, name := range []string{
		"skip_frames", "export_time", "cam", "cmod",
		"out", "config", "manifest", "plot", "debug", "version",
	} {
		if flag.Lookup(name) == nil {
			t.Errorf("flag -%s not defined", name)
		}
	}
}
