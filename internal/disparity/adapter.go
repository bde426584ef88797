package disparity

import (
	"fmt"

	"github.com/banshee-data/stereo-depth/internal/camera"
)

// DisparityPair holds the left and right reference maps of one frame.
type DisparityPair struct {
	Width, Height int
	Left, Right   []float32
}

// Adapter owns the matching engine for a run. The engine is configured once
// and reused for every frame; the adapter keeps no state between frames
// beyond its packing buffers.
type Adapter struct {
	engine        Engine
	width, height int

	left, right []byte
}

// NewAdapter binds engine to images of the given size.
func NewAdapter(engine Engine, width, height int) (*Adapter, error) {
	if engine == nil {
		return nil, fmt.Errorf("disparity: nil engine")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("disparity: invalid image size %dx%d", width, height)
	}
	return &Adapter{
		engine: engine,
		width:  width,
		height: height,
		left:   make([]byte, width*height),
		right:  make([]byte, width*height),
	}, nil
}

// Compute packs f into dense row-major 8-bit buffers and runs the engine on
// them. The returned maps are freshly allocated.
func (a *Adapter) Compute(f *camera.StereoFrame) (DisparityPair, error) {
	if err := a.pack(a.left, f.Left); err != nil {
		return DisparityPair{}, fmt.Errorf("left image: %w", err)
	}
	if err := a.pack(a.right, f.Right); err != nil {
		return DisparityPair{}, fmt.Errorf("right image: %w", err)
	}

	n := a.width * a.height
	out := DisparityPair{
		Width:  a.width,
		Height: a.height,
		Left:   make([]float32, n),
		Right:  make([]float32, n),
	}
	dims := [3]int{a.width, a.height, a.width}
	if err := a.engine.Process(a.left, a.right, dims, out.Left, out.Right); err != nil {
		return DisparityPair{}, fmt.Errorf("disparity engine: %w", err)
	}
	return out, nil
}

func (a *Adapter) pack(dst []byte, img camera.Image) error {
	if img.Width != a.width || img.Height != a.height || len(img.Pix) < a.width*a.height {
		return fmt.Errorf("%w: got %dx%d, engine configured for %dx%d",
			ErrBadDims, img.Width, img.Height, a.width, a.height)
	}
	copy(dst, img.Pix[:a.width*a.height])
	return nil
}
