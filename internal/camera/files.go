package camera

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spakin/netpbm"

	"github.com/banshee-data/stereo-depth/internal/fsutil"
	"github.com/banshee-data/stereo-depth/internal/timeutil"
)

// files replays a recorded sequence of PGM pairs from a directory. Left and
// right files are matched by their position in sorted order.
type files struct {
	left, right   []string
	width, height int

	clock timeutil.Clock
	start time.Time
	next  int
}

func newFiles(u URI, clock timeutil.Clock) (*files, error) {
	dir := u.Path
	if dir == "" {
		dir = "."
	}
	leftGlob := u.Get("left", "left*.pgm")
	rightGlob := u.Get("right", "right*.pgm")

	left, err := filepath.Glob(filepath.Join(dir, leftGlob))
	if err != nil {
		return nil, fmt.Errorf("left pattern: %w", err)
	}
	right, err := filepath.Glob(filepath.Join(dir, rightGlob))
	if err != nil {
		return nil, fmt.Errorf("right pattern: %w", err)
	}
	sort.Strings(left)
	sort.Strings(right)
	for _, p := range append(append([]string(nil), left...), right...) {
		if err := fsutil.WithinDir(p, dir); err != nil {
			return nil, err
		}
	}
	if len(left) == 0 {
		return nil, fmt.Errorf("no images match %s in %s", leftGlob, dir)
	}
	if len(left) != len(right) {
		return nil, fmt.Errorf("%d left images but %d right images in %s", len(left), len(right), dir)
	}

	// The first left image fixes the size of the whole sequence.
	first, err := readGray(left[0])
	if err != nil {
		return nil, err
	}
	return &files{
		left:   left,
		right:  right,
		width:  first.Width,
		height: first.Height,
		clock:  clock,
		start:  clock.Now(),
	}, nil
}

func (d *files) Width() int   { return d.width }
func (d *files) Height() int  { return d.height }
func (d *files) Close() error { return nil }

func (d *files) Capture(f *StereoFrame) error {
	if d.next >= len(d.left) {
		return ErrEndOfStream
	}
	i := d.next
	d.next++

	l, err := readGray(d.left[i])
	if err != nil {
		return err
	}
	r, err := readGray(d.right[i])
	if err != nil {
		return err
	}
	for _, im := range []struct {
		name string
		img  Image
	}{{d.left[i], l}, {d.right[i], r}} {
		if im.img.Width != d.width || im.img.Height != d.height {
			return fmt.Errorf("%s is %dx%d, sequence is %dx%d",
				im.name, im.img.Width, im.img.Height, d.width, d.height)
		}
	}

	f.Left, f.Right = l, r
	f.Timestamp = timeutil.Seconds(d.clock.Now().Sub(d.start))
	return nil
}

// readGray decodes a Netpbm file into an 8-bit image.
func readGray(path string) (Image, error) {
	fh, err := os.Open(path)
	if err != nil {
		return Image{}, err
	}
	defer fh.Close()

	img, err := netpbm.Decode(fh, &netpbm.DecodeOptions{Target: netpbm.PGM})
	if err != nil {
		return Image{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return toGray(img), nil
}

func toGray(img image.Image) Image {
	b := img.Bounds()
	out := NewImage(b.Dx(), b.Dy())
	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < out.Height; y++ {
			copy(out.Pix[y*out.Width:(y+1)*out.Width], g.Pix[y*g.Stride:])
		}
		return out
	}
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			out.Pix[y*out.Width+x] = color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y
		}
	}
	return out
}
