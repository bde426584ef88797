// Package export writes the per-frame depth and grey artifacts.
package export

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	pdmMagic = "P7"
	// PDMMaxValue is the fixed maximum-value field of every depth file.
	PDMMaxValue uint64 = 4294967295

	// maxPDMPixels caps width*height of a decoded file (1 GiB of float32).
	maxPDMPixels = 1 << 28
	// pdmChunk is the number of values read per payload read.
	pdmChunk = 1 << 16
)

// ErrBadHeader is returned when a depth file header cannot be parsed.
var ErrBadHeader = errors.New("export: bad pdm header")

// PDM is a decoded depth file.
type PDM struct {
	Width, Height int
	MaxValue      uint64
	Data          []float32
}

// WritePDM writes "P7\n<w> <h>\n4294967295\n" followed by the depth values
// as raw native-endian float32, row-major.
func WritePDM(w io.Writer, width, height int, data []float32) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("export: invalid depth size %dx%d", width, height)
	}
	if len(data) != width*height {
		return fmt.Errorf("export: depth map holds %d values, want %d", len(data), width*height)
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n%d %d\n%d\n", pdmMagic, width, height, PDMMaxValue)
	if err := binary.Write(bw, binary.NativeEndian, data); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadPDM decodes a depth file. The payload must be exactly width*height*4
// bytes.
func ReadPDM(r io.Reader) (*PDM, error) {
	br := bufio.NewReader(r)

	magic, err := headerLine(br)
	if err != nil {
		return nil, err
	}
	if magic != pdmMagic {
		return nil, fmt.Errorf("%w: magic %q", ErrBadHeader, magic)
	}

	dims, err := headerLine(br)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(dims)
	if len(fields) != 2 {
		return nil, fmt.Errorf("%w: size line %q", ErrBadHeader, dims)
	}
	p := &PDM{}
	if p.Width, err = strconv.Atoi(fields[0]); err != nil || p.Width <= 0 {
		return nil, fmt.Errorf("%w: width %q", ErrBadHeader, fields[0])
	}
	if p.Height, err = strconv.Atoi(fields[1]); err != nil || p.Height <= 0 {
		return nil, fmt.Errorf("%w: height %q", ErrBadHeader, fields[1])
	}

	if p.Width > maxPDMPixels/p.Height {
		return nil, fmt.Errorf("%w: size %dx%d too large", ErrBadHeader, p.Width, p.Height)
	}

	maxv, err := headerLine(br)
	if err != nil {
		return nil, err
	}
	if p.MaxValue, err = strconv.ParseUint(maxv, 10, 64); err != nil {
		return nil, fmt.Errorf("%w: max value %q", ErrBadHeader, maxv)
	}

	if p.Data, err = readFloats(br, p.Width*p.Height); err != nil {
		return nil, fmt.Errorf("export: short pdm payload for %dx%d: %w", p.Width, p.Height, err)
	}
	if _, err := br.ReadByte(); err != io.EOF {
		return nil, fmt.Errorf("export: trailing bytes after %dx%d pdm payload", p.Width, p.Height)
	}
	return p, nil
}

// PayloadBytes is the size of the raw depth data.
func (p *PDM) PayloadBytes() int {
	return len(p.Data) * 4
}

// readFloats reads n native-endian float32 values, at most pdmChunk per read.
// Memory grows only as the payload actually arrives.
func readFloats(r io.Reader, n int) ([]float32, error) {
	chunk := make([]float32, min(n, pdmChunk))
	out := make([]float32, 0, len(chunk))
	for len(out) < n {
		c := chunk[:min(n-len(out), len(chunk))]
		if err := binary.Read(r, binary.NativeEndian, c); err != nil {
			return nil, err
		}
		out = append(out, c...)
	}
	return out, nil
}

func headerLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
