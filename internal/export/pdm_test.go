package export

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePDM_Layout(t *testing.T) {
	data := []float32{1.5, -10, float32(math.Inf(1)), 0.25, 3, 4}
	var buf bytes.Buffer
	require.NoError(t, WritePDM(&buf, 3, 2, data))

	const header = "P7\n3 2\n4294967295\n"
	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, []byte(header)), "header: %q", raw[:min(len(raw), 24)])
	payload := raw[len(header):]
	assert.Len(t, payload, 3*2*4)
	assert.Equal(t, math.Float32bits(-10), binary.NativeEndian.Uint32(payload[4:8]))
}

func TestPDM_RoundTrip(t *testing.T) {
	for _, dims := range [][2]int{{1, 1}, {7, 3}, {64, 48}} {
		w, h := dims[0], dims[1]
		data := make([]float32, w*h)
		for i := range data {
			data[i] = float32(i) * 0.5
		}
		var buf bytes.Buffer
		require.NoError(t, WritePDM(&buf, w, h, data))

		p, err := ReadPDM(&buf)
		require.NoError(t, err)
		assert.Equal(t, w, p.Width)
		assert.Equal(t, h, p.Height)
		assert.Equal(t, PDMMaxValue, p.MaxValue)
		assert.Equal(t, w*h*4, p.PayloadBytes())
		assert.Equal(t, data, p.Data)
	}
}

func TestWritePDM_Rejects(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WritePDM(&buf, 0, 2, nil))
	assert.Error(t, WritePDM(&buf, 2, 2, make([]float32, 3)))
	assert.Zero(t, buf.Len())
}

func TestReadPDM_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"wrong magic", "P5\n1 1\n255\n\x00"},
		{"one dimension", "P7\n4\n4294967295\n"},
		{"bad width", "P7\nx 1\n4294967295\n"},
		{"zero height", "P7\n1 0\n4294967295\n"},
		{"bad max", "P7\n1 1\nmax\n\x00\x00\x00\x00"},
		{"short payload", "P7\n2 1\n4294967295\n\x00\x00\x00\x00"},
		{"trailing bytes", "P7\n1 1\n4294967295\n\x00\x00\x00\x00\x00"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadPDM(strings.NewReader(tc.input))
			assert.Error(t, err)
		})
	}

	_, err := ReadPDM(strings.NewReader("P6\n1 1\n1\n"))
	assert.ErrorIs(t, err, ErrBadHeader)
}

func TestReadPDM_OversizedHeader(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"product overflows int", "P7\n4000000000 4000000000\n4294967295\nxxxx", ErrBadHeader},
		{"above pixel cap", "P7\n65536 65536\n4294967295\nxxxx", ErrBadHeader},
		{"large header short payload", "P7\n8192 8192\n4294967295\nxxxx", io.ErrUnexpectedEOF},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() {
				_, err = ReadPDM(strings.NewReader(tc.input))
			})
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestPDM_RoundTripAcrossChunks(t *testing.T) {
	w, h := pdmChunk/4+3, 5
	data := make([]float32, w*h)
	for i := range data {
		data[i] = float32(i)
	}
	var buf bytes.Buffer
	require.NoError(t, WritePDM(&buf, w, h, data))

	p, err := ReadPDM(&buf)
	require.NoError(t, err)
	assert.Equal(t, data, p.Data)
}
