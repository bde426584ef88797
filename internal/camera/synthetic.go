package camera

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/banshee-data/stereo-depth/internal/timeutil"
)

// synthetic renders random-dot stereo pairs in which every left pixel x
// matches right pixel x-shift, i.e. a uniform left-reference disparity.
type synthetic struct {
	width, height int
	frames        int // 0 means unbounded
	shift         int
	seed          uint64

	clock timeutil.Clock
	start time.Time
	n     int
}

func newSynthetic(u URI, clock timeutil.Clock) (*synthetic, error) {
	s := &synthetic{clock: clock}
	var err error
	if s.width, err = u.Int("width", 64); err != nil {
		return nil, err
	}
	if s.height, err = u.Int("height", 48); err != nil {
		return nil, err
	}
	if s.frames, err = u.Int("frames", 0); err != nil {
		return nil, err
	}
	if s.shift, err = u.Int("shift", 4); err != nil {
		return nil, err
	}
	seed, err := u.Int("seed", 1)
	if err != nil {
		return nil, err
	}
	s.seed = uint64(seed)

	if s.width <= 0 || s.height <= 0 {
		return nil, fmt.Errorf("invalid size %dx%d", s.width, s.height)
	}
	if s.frames < 0 {
		return nil, fmt.Errorf("frames must be non-negative, got %d", s.frames)
	}
	if s.shift < 0 || s.shift >= s.width {
		return nil, fmt.Errorf("shift %d out of range for width %d", s.shift, s.width)
	}
	s.start = clock.Now()
	return s, nil
}

func (s *synthetic) Width() int  { return s.width }
func (s *synthetic) Height() int { return s.height }
func (s *synthetic) Close() error { return nil }

func (s *synthetic) Capture(f *StereoFrame) error {
	if s.frames > 0 && s.n >= s.frames {
		return ErrEndOfStream
	}
	ensureSize(f, s.width, s.height)
	RandomDotPair(f.Left.Pix, f.Right.Pix, s.width, s.height, s.shift, s.seed+uint64(s.n))
	f.Timestamp = timeutil.Seconds(s.clock.Now().Sub(s.start))
	s.n++
	return nil
}

// RandomDotPair fills left with seeded noise and right with the same noise
// shifted so that right(x-shift) == left(x). Columns with no source in the
// left image get fresh noise.
func RandomDotPair(left, right []byte, width, height, shift int, seed uint64) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range left {
		left[i] = byte(rng.IntN(256))
	}
	for y := 0; y < height; y++ {
		row := y * width
		for x := 0; x < width; x++ {
			if x+shift < width {
				right[row+x] = left[row+x+shift]
			} else {
				right[row+x] = byte(rng.IntN(256))
			}
		}
	}
}

// ensureSize reallocates f's images when they do not match the driver size.
func ensureSize(f *StereoFrame, width, height int) {
	if f.Left.Width != width || f.Left.Height != height || len(f.Left.Pix) != width*height {
		f.Left = NewImage(width, height)
	}
	if f.Right.Width != width || f.Right.Height != height || len(f.Right.Pix) != width*height {
		f.Right = NewImage(width, height)
	}
}
