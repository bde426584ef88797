package camera

import (
	"errors"

	"github.com/banshee-data/stereo-depth/internal/monitoring"
)

// Source hands out stereo frames, discarding Skip captures before each one
// it returns. It decimates the frame rate without buffering.
type Source struct {
	drv  Driver
	Skip int

	scratch *StereoFrame
	err     error

	// Captured counts every driver capture, Skipped the discarded ones.
	Captured uint64
	Skipped  uint64
}

// NewSource wraps drv. Negative skip counts are treated as zero.
func NewSource(drv Driver, skip int) *Source {
	if skip < 0 {
		skip = 0
	}
	return &Source{drv: drv, Skip: skip}
}

// Capture returns the next kept frame, or false at end of stream. Every
// returned frame is freshly allocated; callers may keep it for the
// duration of their processing without it being overwritten.
func (s *Source) Capture() (*StereoFrame, bool) {
	if s.err != nil {
		return nil, false
	}
	if s.scratch == nil && s.Skip > 0 {
		s.scratch = NewStereoFrame(s.drv.Width(), s.drv.Height())
	}
	for i := 0; i < s.Skip; i++ {
		if !s.capture(s.scratch) {
			return nil, false
		}
		s.Skipped++
	}

	f := NewStereoFrame(s.drv.Width(), s.drv.Height())
	if !s.capture(f) {
		return nil, false
	}
	return f, true
}

func (s *Source) capture(f *StereoFrame) bool {
	if err := s.drv.Capture(f); err != nil {
		s.err = err
		if !errors.Is(err, ErrEndOfStream) {
			monitoring.Opsf("capture failed, treating as end of stream: %v", err)
		}
		return false
	}
	s.Captured++
	return true
}

// Err returns the capture error that ended the stream, or nil while frames
// are still flowing. ErrEndOfStream indicates a clean end.
func (s *Source) Err() error {
	return s.err
}
