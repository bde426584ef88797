package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/stereo-depth/internal/calib"
	"github.com/banshee-data/stereo-depth/internal/testutil"
)

func TestRectify_PublishesIdealRig(t *testing.T) {
	path := testutil.WriteRigXML(t, t.TempDir(), 2, 400, 0.12, 32, 16)

	cam, err := Open("rectify:[file="+path+"]//synthetic:[width=32,height=16,frames=1]//", Options{})
	require.NoError(t, err)
	defer cam.Close()

	require.NotNil(t, cam.Rectified)
	require.Equal(t, 2, cam.Rectified.NumCams())
	assert.Equal(t, 32, cam.Width())

	pair, err := calib.Resolve(calib.FromDriver(cam.Rectified), nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.12, pair.Baseline, 1e-12)
	assert.InDelta(t, 400, pair.Focal(), 1e-12)

	f := NewStereoFrame(32, 16)
	require.NoError(t, cam.Capture(f))
	assert.ErrorIs(t, cam.Capture(f), ErrEndOfStream)
}

func TestRectifiedRig_RemovesRotation(t *testing.T) {
	right := calib.PoseFromCart(0.3, 0.4, 0, 0.1, 0.2, 0.05)
	raw := &calib.Rig{Cameras: []calib.CameraModel{
		{Name: "l", Type: "calibu_fu_fv_u0_v0", Width: 10, Height: 5, K: calib.Intrinsics{Fx: 100, Fy: 110, Cx: 5, Cy: 2.5}, Pose: calib.IdentityPose()},
		{Name: "r", Type: "calibu_fu_fv_u0_v0", Width: 10, Height: 5, K: calib.Intrinsics{Fx: 90, Fy: 95, Cx: 4, Cy: 2}, Pose: right},
	}}

	rig, err := RectifiedRig(raw)
	require.NoError(t, err)
	r := rig.Cameras[1]
	assert.Equal(t, raw.Cameras[0].K, r.K)
	assert.Equal(t, "rectified_calibu_fu_fv_u0_v0", r.Type)
	assert.InDelta(t, 0.5, r.Pose[3], 1e-12)
	for _, i := range []int{0, 5, 10, 15} {
		assert.Equal(t, 1.0, r.Pose[i])
	}
	assert.Equal(t, 0.0, r.Pose[1])
}

func TestRectify_Errors(t *testing.T) {
	path := testutil.WriteRigXML(t, t.TempDir(), 2, 400, 0.12, 32, 16)
	for name, uri := range map[string]string{
		"no file":       "rectify://synthetic://",
		"no child":      "rectify:[file=" + path + "]//",
		"size mismatch": "rectify:[file=" + path + "]//synthetic:[width=16,height=16]//",
		"missing rig":   "rectify:[file=/does/not/exist.xml]//synthetic://",
	} {
		_, err := Open(uri, Options{})
		assert.Error(t, err, name)
	}
}
