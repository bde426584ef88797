package camera

import (
	"errors"
	"image"
)

// ErrEndOfStream is returned by a driver when no further pairs can be
// captured: the device went away or a recorded sequence is exhausted.
var ErrEndOfStream = errors.New("end of stream")

// Image is an 8-bit single-channel image stored row-major with no padding.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

// NewImage allocates a zeroed image.
func NewImage(width, height int) Image {
	return Image{Width: width, Height: height, Pix: make([]byte, width*height)}
}

// Gray wraps the pixels as an *image.Gray without copying.
func (im Image) Gray() *image.Gray {
	return &image.Gray{
		Pix:    im.Pix,
		Stride: im.Width,
		Rect:   image.Rect(0, 0, im.Width, im.Height),
	}
}

// StereoFrame is one synchronized capture: left and right images of the same
// size and the capture time in seconds since the camera was opened.
type StereoFrame struct {
	Left      Image
	Right     Image
	Timestamp float64
}

// NewStereoFrame allocates a frame for the given image size.
func NewStereoFrame(width, height int) *StereoFrame {
	return &StereoFrame{
		Left:  NewImage(width, height),
		Right: NewImage(width, height),
	}
}
