package disparity

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// BlockMatcher is a winner-take-all SAD block matcher. Pixels whose window
// leaves the image, whose left window is too flat to match reliably, or
// which fail the left-right check get the invalid marker.
type BlockMatcher struct {
	p Params
}

// NewBlockMatcher validates p and returns a matcher that can be reused for
// every frame of a run.
func NewBlockMatcher(p Params) (*BlockMatcher, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &BlockMatcher{p: p}, nil
}

// Params returns the matcher configuration.
func (m *BlockMatcher) Params() Params { return m.p }

// Process implements Engine. It blocks until both maps are complete.
func (m *BlockMatcher) Process(left, right []byte, dims [3]int, dispL, dispR []float32) error {
	if err := checkDims(left, right, dims, dispL, dispR); err != nil {
		return err
	}
	img := stereoImage{left: left, right: right, w: dims[0], h: dims[1], bpl: dims[2]}

	if err := m.rows(img.h, func(y int) { m.matchRow(img, y, dispL, false) }); err != nil {
		return err
	}
	if err := m.rows(img.h, func(y int) { m.matchRow(img, y, dispR, true) }); err != nil {
		return err
	}

	// Both checks read the unfiltered maps.
	thr := float32(m.p.LRThreshold)
	badL := inconsistent(img.w, img.h, dispL, dispR, thr, -1)
	var badR []int
	if !m.p.PostprocessOnlyLeft {
		badR = inconsistent(img.w, img.h, dispR, dispL, thr, 1)
	}
	for _, i := range badL {
		dispL[i] = m.p.InvalidDisparity
	}
	for _, i := range badR {
		dispR[i] = m.p.InvalidDisparity
	}
	return nil
}

func (m *BlockMatcher) rows(h int, fn func(y int)) error {
	workers := m.p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for y := 0; y < h; y++ {
		g.Go(func() error {
			fn(y)
			return nil
		})
	}
	return g.Wait()
}

type stereoImage struct {
	left, right []byte
	w, h, bpl   int
}

// matchRow fills row y of out. With rightRef false the reference is the
// left image and candidates lie at x-d in the right image; with rightRef
// true the reference is the right image and candidates lie at x+d.
func (m *BlockMatcher) matchRow(img stereoImage, y int, out []float32, rightRef bool) {
	r := m.p.WindowRadius
	row := out[y*img.w : (y+1)*img.w]
	invalid := m.p.InvalidDisparity
	if y < r || y >= img.h-r {
		for x := range row {
			row[x] = invalid
		}
		return
	}

	ref, other, sign := img.left, img.right, -1
	if rightRef {
		ref, other, sign = img.right, img.left, 1
	}

	for x := 0; x < img.w; x++ {
		row[x] = invalid
		if x < r || x >= img.w-r {
			continue
		}
		if texture(ref, img.bpl, x, y, r) < m.p.SupportTexture {
			continue
		}
		best, bestCost := -1, math.MaxInt
		for d := m.p.DispMin; d <= m.p.DispMax; d++ {
			xo := x + sign*d
			if xo < r || xo >= img.w-r {
				break
			}
			c := sad(ref, other, img.bpl, x, xo, y, r)
			if c < bestCost {
				best, bestCost = d, c
			}
		}
		if best >= 0 {
			row[x] = float32(best)
		}
	}
}

// sad is the sum of absolute differences between the windows centred on
// (xa, y) in a and (xb, y) in b.
func sad(a, b []byte, bpl, xa, xb, y, r int) int {
	s := 0
	for dy := -r; dy <= r; dy++ {
		ra := a[(y+dy)*bpl:]
		rb := b[(y+dy)*bpl:]
		for dx := -r; dx <= r; dx++ {
			v := int(ra[xa+dx]) - int(rb[xb+dx])
			if v < 0 {
				v = -v
			}
			s += v
		}
	}
	return s
}

// texture is the mean absolute horizontal gradient inside the window.
func texture(img []byte, bpl, x, y, r int) int {
	if r == 0 {
		return math.MaxInt
	}
	s, n := 0, 0
	for dy := -r; dy <= r; dy++ {
		row := img[(y+dy)*bpl:]
		for dx := -r; dx < r; dx++ {
			v := int(row[x+dx+1]) - int(row[x+dx])
			if v < 0 {
				v = -v
			}
			s += v
			n++
		}
	}
	return s / n
}

// inconsistent lists the valid values of ref whose match in other is
// invalid or disagrees by more than thr. sign is -1 when ref is the left map.
func inconsistent(w, h int, ref, other []float32, thr float32, sign int) []int {
	var bad []int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			d := ref[i]
			if d < 0 {
				continue
			}
			xo := x + sign*int(d+0.5)
			if xo < 0 || xo >= w {
				bad = append(bad, i)
				continue
			}
			do := other[y*w+xo]
			if do < 0 || float32(math.Abs(float64(d-do))) > thr {
				bad = append(bad, i)
			}
		}
	}
	return bad
}
