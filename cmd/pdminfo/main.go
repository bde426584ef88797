// Command pdminfo prints the header and depth statistics of .pdm files.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/stereo-depth/internal/depthstats"
	"github.com/banshee-data/stereo-depth/internal/export"
	"github.com/banshee-data/stereo-depth/internal/version"
)

var versionFlag = flag.Bool("version", false, "Print version information and exit")

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: pdminfo file.pdm...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.String("pdminfo"))
		return
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	failed := false
	for _, path := range flag.Args() {
		if err := describe(os.Stdout, path); err != nil {
			fmt.Fprintf(os.Stderr, "pdminfo: %s: %v\n", path, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func describe(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	p, err := export.ReadPDM(f)
	if err != nil {
		return err
	}
	s := depthstats.Summarize(p.Data)

	fmt.Fprintf(w, "%s\n", path)
	fmt.Fprintf(w, "  size:     %dx%d\n", p.Width, p.Height)
	fmt.Fprintf(w, "  max:      %d\n", p.MaxValue)
	fmt.Fprintf(w, "  payload:  %d bytes\n", p.PayloadBytes())
	fmt.Fprintf(w, "  valid:    %d/%d (%.1f%%)\n", s.Valid, s.Total, 100*s.ValidRatio())
	if s.Valid > 0 {
		fmt.Fprintf(w, "  depth:    min %.4f max %.4f mean %.4f sd %.4f\n", s.Min, s.Max, s.Mean, s.StdDev)
	}
	return nil
}
