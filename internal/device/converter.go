package device

import (
	"errors"
	"fmt"
)

// Converter turns disparity maps into metric depth maps on a Device.
type Converter struct {
	Dev Device
}

// NewConverter returns a converter running on dev.
func NewConverter(dev Device) *Converter {
	return &Converter{Dev: dev}
}

// ToDepth writes focal*baseline/disp into out. Values are not clamped:
// negative invalid markers stay negative, zero disparity becomes +Inf and
// NaN stays NaN. Device buffers are acquired per call and released before
// it returns.
func (c *Converter) ToDepth(disp []float32, focal, baseline float64, out []float32) (err error) {
	if len(out) != len(disp) {
		return fmt.Errorf("%w: depth map holds %d values, disparity %d", ErrSize, len(out), len(disp))
	}
	if len(disp) == 0 {
		return nil
	}

	in, err := c.Dev.Alloc(len(disp))
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, c.Dev.Free(in)) }()

	res, err := c.Dev.Alloc(len(disp))
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, c.Dev.Free(res)) }()

	if err := c.Dev.Upload(in, disp); err != nil {
		return fmt.Errorf("upload disparity: %w", err)
	}
	if err := c.Dev.Disp2Depth(res, in, float32(focal), float32(baseline)); err != nil {
		return fmt.Errorf("disp2depth: %w", err)
	}
	if err := c.Dev.Download(out, res); err != nil {
		return fmt.Errorf("download depth: %w", err)
	}
	return nil
}
