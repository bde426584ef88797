package camera

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/spakin/netpbm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePGM(t *testing.T, path string, w, h int, fill byte) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = fill + byte(i)
	}
	fh, err := os.Create(path)
	require.NoError(t, err)
	defer fh.Close()
	require.NoError(t, netpbm.Encode(fh, img, &netpbm.EncodeOptions{Format: netpbm.PGM, MaxValue: 255}))
}

func TestFiles_ReplaysPairsInOrder(t *testing.T) {
	dir := t.TempDir()
	for i, name := range []string{"000", "001"} {
		writePGM(t, filepath.Join(dir, "left"+name+".pgm"), 6, 4, byte(10*i))
		writePGM(t, filepath.Join(dir, "right"+name+".pgm"), 6, 4, byte(10*i+5))
	}

	cam, err := Open("files://"+dir, Options{})
	require.NoError(t, err)
	defer cam.Close()
	assert.Equal(t, 6, cam.Width())
	assert.Equal(t, 4, cam.Height())

	f := &StereoFrame{}
	require.NoError(t, cam.Capture(f))
	assert.Equal(t, byte(0), f.Left.Pix[0])
	assert.Equal(t, byte(5), f.Right.Pix[0])
	assert.Equal(t, byte(3), f.Left.Pix[3])

	require.NoError(t, cam.Capture(f))
	assert.Equal(t, byte(10), f.Left.Pix[0])
	assert.Equal(t, byte(15), f.Right.Pix[0])

	assert.True(t, errors.Is(cam.Capture(f), ErrEndOfStream))
}

func TestFiles_CustomPatterns(t *testing.T) {
	dir := t.TempDir()
	writePGM(t, filepath.Join(dir, "cam0_a.pgm"), 3, 3, 1)
	writePGM(t, filepath.Join(dir, "cam1_a.pgm"), 3, 3, 2)

	cam, err := Open("files:[left=cam0_*.pgm,right=cam1_*.pgm]//"+dir, Options{})
	require.NoError(t, err)
	f := &StereoFrame{}
	require.NoError(t, cam.Capture(f))
	assert.Equal(t, byte(2), f.Right.Pix[0])
}

func TestFiles_Errors(t *testing.T) {
	t.Run("empty directory", func(t *testing.T) {
		_, err := Open("files://"+t.TempDir(), Options{})
		assert.ErrorContains(t, err, "no images match")
	})

	t.Run("unbalanced", func(t *testing.T) {
		dir := t.TempDir()
		writePGM(t, filepath.Join(dir, "left0.pgm"), 3, 3, 0)
		writePGM(t, filepath.Join(dir, "left1.pgm"), 3, 3, 0)
		writePGM(t, filepath.Join(dir, "right0.pgm"), 3, 3, 0)
		_, err := Open("files://"+dir, Options{})
		assert.ErrorContains(t, err, "2 left images but 1 right images")
	})

	t.Run("size change mid sequence", func(t *testing.T) {
		dir := t.TempDir()
		writePGM(t, filepath.Join(dir, "left0.pgm"), 3, 3, 0)
		writePGM(t, filepath.Join(dir, "right0.pgm"), 4, 3, 0)
		cam, err := Open("files://"+dir, Options{})
		require.NoError(t, err)
		err = cam.Capture(&StereoFrame{})
		assert.ErrorContains(t, err, "sequence is 3x3")
	})

	t.Run("pattern escapes directory", func(t *testing.T) {
		root := t.TempDir()
		dir := filepath.Join(root, "seq")
		require.NoError(t, os.Mkdir(dir, 0o755))
		writePGM(t, filepath.Join(root, "left0.pgm"), 3, 3, 0)
		writePGM(t, filepath.Join(dir, "right0.pgm"), 3, 3, 0)
		_, err := Open("files:[left=../left*.pgm]//"+dir, Options{})
		assert.ErrorContains(t, err, "path traversal")
	})

	t.Run("not an image", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "left0.pgm"), []byte("junk"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "right0.pgm"), []byte("junk"), 0o644))
		_, err := Open("files://"+dir, Options{})
		assert.ErrorContains(t, err, "decode")
	})
}
