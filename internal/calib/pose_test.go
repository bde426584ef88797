package calib

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func translation(x, y, z float64) Pose {
	p := IdentityPose()
	p[3], p[7], p[11] = x, y, z
	return p
}

func TestBaseline_PureTranslation(t *testing.T) {
	b, err := Baseline(IdentityPose(), translation(0.12, 0, 0))
	require.NoError(t, err)
	assert.InDelta(t, 0.12, b, 1e-12)
}

func TestBaseline_InvariantToCommonMotion(t *testing.T) {
	// Moving the whole rig must not change the baseline.
	world := PoseFromCart(1, -2, 3, 0.1, -0.2, 0.3)
	pose0 := world
	pose1 := world.Mul(translation(0.3, 0.4, 0))

	b, err := Baseline(pose0, pose1)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, b, 1e-9)
}

func TestRelativePose_IsInverseTimesOther(t *testing.T) {
	pose0 := PoseFromCart(0.5, 0, 0, 0, 0, math.Pi/2)
	pose1 := PoseFromCart(0.5, 1, 0, 0, 0, math.Pi/2)

	rel, err := RelativePose(pose0, pose1)
	require.NoError(t, err)

	// pose0 · rel must give back pose1.
	back := pose0.Mul(rel)
	for i := range back {
		assert.InDelta(t, pose1[i], back[i], 1e-9, "element %d", i)
	}
	assert.InDelta(t, 1.0, math.Hypot(rel[3], math.Hypot(rel[7], rel[11])), 1e-9)
}

func TestPose_InverseSingular(t *testing.T) {
	var zero Pose
	_, err := zero.Inverse()
	assert.Error(t, err)
}

func TestPoseFromValues(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		wantT   [3]float64
		wantErr bool
	}{
		{name: "cartesian", values: []float64{1, 2, 3, 0, 0, 0}, wantT: [3]float64{1, 2, 3}},
		{name: "3x4", values: []float64{1, 0, 0, 4, 0, 1, 0, 5, 0, 0, 1, 6}, wantT: [3]float64{4, 5, 6}},
		{name: "4x4", values: []float64{1, 0, 0, 7, 0, 1, 0, 8, 0, 0, 1, 9, 0, 0, 0, 1}, wantT: [3]float64{7, 8, 9}},
		{name: "bad length", values: []float64{1, 2, 3}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := PoseFromValues(tc.values)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantT, [3]float64{p[3], p[7], p[11]})
			assert.Equal(t, 1.0, p[15])
		})
	}
}

func TestPoseFromCart_RotationIsOrthonormal(t *testing.T) {
	p := PoseFromCart(0, 0, 0, 0.3, -0.7, 1.1)
	inv, err := p.Inverse()
	require.NoError(t, err)
	// For a rotation the inverse equals the transpose.
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			assert.InDelta(t, p[c*4+r], inv[r*4+c], 1e-9)
		}
	}
}
