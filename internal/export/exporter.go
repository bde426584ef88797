package export

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spakin/netpbm"

	"github.com/banshee-data/stereo-depth/internal/camera"
	"github.com/banshee-data/stereo-depth/internal/fsutil"
)

// ErrIndexCollision is returned when two frames of one run would share a
// file name, e.g. two captures with the same timestamp.
var ErrIndexCollision = errors.New("export: frame index already used in this run")

// Exported describes the files written for one frame.
type Exported struct {
	Index     string
	DepthPath string
	GreyPath  string
}

// Exporter writes ELAS-<index>.pdm and Grey-<index>.pgm for each frame
// and prints both names to Stdout. Writes are not atomic; a failure can
// leave a truncated file behind.
type Exporter struct {
	FS           fsutil.FileSystem
	Dir          string
	Stdout       io.Writer
	UseTimestamp bool

	used map[string]struct{}
}

// NewExporter creates the output directory and returns an exporter for it.
func NewExporter(fs fsutil.FileSystem, dir string, stdout io.Writer, useTimestamp bool) (*Exporter, error) {
	if dir == "" {
		dir = "."
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &Exporter{FS: fs, Dir: dir, Stdout: stdout, UseTimestamp: useTimestamp}, nil
}

// Export writes one frame. grey is the left reference image and fixes the
// depth map dimensions.
func (e *Exporter) Export(depth []float32, grey camera.Image, seq uint64, timestamp float64) (Exported, error) {
	if len(depth) != grey.Width*grey.Height {
		return Exported{}, fmt.Errorf("export: depth map holds %d values, image is %dx%d",
			len(depth), grey.Width, grey.Height)
	}

	index := FrameIndex(seq, timestamp, e.UseTimestamp)
	if e.used == nil {
		e.used = make(map[string]struct{})
	}
	if _, dup := e.used[index]; dup {
		return Exported{}, fmt.Errorf("%w: %s", ErrIndexCollision, index)
	}
	e.used[index] = struct{}{}

	out := Exported{
		Index:     index,
		DepthPath: filepath.Join(e.Dir, DepthName(index)),
		GreyPath:  filepath.Join(e.Dir, GreyName(index)),
	}

	e.printf("Depth File: %s\n", out.DepthPath)
	if err := e.write(out.DepthPath, func(w io.Writer) error {
		return WritePDM(w, grey.Width, grey.Height, depth)
	}); err != nil {
		return Exported{}, err
	}

	e.printf("Grey File: %s\n", out.GreyPath)
	if err := e.write(out.GreyPath, func(w io.Writer) error {
		return netpbm.Encode(w, grey.Gray(), &netpbm.EncodeOptions{Format: netpbm.PGM, MaxValue: 255})
	}); err != nil {
		return Exported{}, err
	}
	return out, nil
}

func (e *Exporter) write(path string, fn func(io.Writer) error) error {
	f, err := e.FS.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func (e *Exporter) printf(format string, args ...any) {
	if e.Stdout != nil {
		fmt.Fprintf(e.Stdout, format, args...)
	}
}
