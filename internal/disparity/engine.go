package disparity

import (
	"errors"
	"fmt"
)

// Engine computes dense disparity for a rectified 8-bit stereo pair.
//
// dims is {width, height, bytes per line}. dispL and dispR must hold at
// least width*height values; the engine writes left and right reference
// disparity into them, using its invalid marker where no match was found.
type Engine interface {
	Process(left, right []byte, dims [3]int, dispL, dispR []float32) error
}

// ErrBadDims is returned when buffers do not match the declared dimensions.
var ErrBadDims = errors.New("disparity: buffer does not match dimensions")

// Params configures BlockMatcher. The names follow the usual ELAS
// parameter set so tuning files carry over.
type Params struct {
	DispMin        int
	DispMax        int
	WindowRadius   int
	SupportTexture int
	LRThreshold    int

	// PostprocessOnlyLeft restricts the left-right consistency check to the
	// left map. The right map is still computed.
	PostprocessOnlyLeft bool

	InvalidDisparity float32

	// Workers bounds row parallelism; 0 means GOMAXPROCS.
	Workers int
}

// DefaultParams returns the parameter set used when no tuning file is given.
func DefaultParams() Params {
	return Params{
		DispMin:             0,
		DispMax:             255,
		WindowRadius:        2,
		SupportTexture:      10,
		LRThreshold:         2,
		PostprocessOnlyLeft: false,
		InvalidDisparity:    -10,
	}
}

// Validate reports the first inconsistent parameter.
func (p Params) Validate() error {
	switch {
	case p.DispMin < 0:
		return fmt.Errorf("disp_min must be non-negative, got %d", p.DispMin)
	case p.DispMax < p.DispMin:
		return fmt.Errorf("disp_max %d below disp_min %d", p.DispMax, p.DispMin)
	case p.WindowRadius < 0:
		return fmt.Errorf("window_radius must be non-negative, got %d", p.WindowRadius)
	case p.SupportTexture < 0:
		return fmt.Errorf("support_texture must be non-negative, got %d", p.SupportTexture)
	case p.LRThreshold < 0:
		return fmt.Errorf("lr_threshold must be non-negative, got %d", p.LRThreshold)
	case p.InvalidDisparity >= 0:
		return fmt.Errorf("invalid_disparity must be negative, got %g", p.InvalidDisparity)
	case p.Workers < 0:
		return fmt.Errorf("workers must be non-negative, got %d", p.Workers)
	}
	return nil
}

func checkDims(left, right []byte, dims [3]int, dispL, dispR []float32) error {
	w, h, bpl := dims[0], dims[1], dims[2]
	if w <= 0 || h <= 0 || bpl < w {
		return fmt.Errorf("%w: dims %v", ErrBadDims, dims)
	}
	need := bpl*(h-1) + w
	if len(left) < need || len(right) < need {
		return fmt.Errorf("%w: images hold %d/%d bytes, need %d", ErrBadDims, len(left), len(right), need)
	}
	if len(dispL) < w*h || len(dispR) < w*h {
		return fmt.Errorf("%w: disparity maps hold %d/%d values, need %d", ErrBadDims, len(dispL), len(dispR), w*h)
	}
	return nil
}
