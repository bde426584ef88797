package calib

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Pose is a 4x4 homogeneous rigid transform stored row-major:
// m00,m01,m02,m03, m10,... The translation lives in elements 3, 7 and 11.
type Pose [16]float64

// IdentityPose returns the identity transform.
func IdentityPose() Pose {
	return Pose{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// PoseFromCart builds a pose from x, y, z and roll, pitch, yaw (radians).
// The rotation is Rz(yaw)·Ry(pitch)·Rx(roll).
func PoseFromCart(x, y, z, roll, pitch, yaw float64) Pose {
	cr, sr := math.Cos(roll), math.Sin(roll)
	cp, sp := math.Cos(pitch), math.Sin(pitch)
	cy, sy := math.Cos(yaw), math.Sin(yaw)
	return Pose{
		cy * cp, cy*sp*sr - sy*cr, cy*sp*cr + sy*sr, x,
		sy * cp, sy*sp*sr + cy*cr, sy*sp*cr - cy*sr, y,
		-sp, cp * sr, cp * cr, z,
		0, 0, 0, 1,
	}
}

// PoseFromValues interprets a flat list of calibration values as a pose.
// Six values are x, y, z, roll, pitch, yaw; twelve are a 3x4 row-major
// [R|t]; sixteen are a full 4x4 row-major matrix.
func PoseFromValues(v []float64) (Pose, error) {
	switch len(v) {
	case 6:
		return PoseFromCart(v[0], v[1], v[2], v[3], v[4], v[5]), nil
	case 12:
		var p Pose
		copy(p[:12], v)
		p[15] = 1
		return p, nil
	case 16:
		var p Pose
		copy(p[:], v)
		return p, nil
	default:
		return Pose{}, fmt.Errorf("pose needs 6, 12 or 16 values, got %d", len(v))
	}
}

// Dense returns the pose as a gonum matrix backed by a copy of its values.
func (p Pose) Dense() *mat.Dense {
	data := make([]float64, 16)
	copy(data, p[:])
	return mat.NewDense(4, 4, data)
}

func poseFromDense(m *mat.Dense) Pose {
	var p Pose
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			p[r*4+c] = m.At(r, c)
		}
	}
	return p
}

// Inverse returns p⁻¹. It fails for singular matrices.
func (p Pose) Inverse() (Pose, error) {
	var inv mat.Dense
	if err := inv.Inverse(p.Dense()); err != nil {
		return Pose{}, fmt.Errorf("invert pose: %w", err)
	}
	return poseFromDense(&inv), nil
}

// Mul returns the composition p·q.
func (p Pose) Mul(q Pose) Pose {
	var r mat.Dense
	r.Mul(p.Dense(), q.Dense())
	return poseFromDense(&r)
}

// Translation returns the translation component.
func (p Pose) Translation() *mat.VecDense {
	return mat.NewVecDense(3, []float64{p[3], p[7], p[11]})
}

// RelativePose returns pose0⁻¹·pose1, the pose of camera 1 in camera 0's frame.
func RelativePose(pose0, pose1 Pose) (Pose, error) {
	inv, err := pose0.Inverse()
	if err != nil {
		return Pose{}, err
	}
	return inv.Mul(pose1), nil
}

// Baseline returns ‖translation(pose0⁻¹·pose1)‖.
func Baseline(pose0, pose1 Pose) (float64, error) {
	rel, err := RelativePose(pose0, pose1)
	if err != nil {
		return 0, err
	}
	return mat.Norm(rel.Translation(), 2), nil
}
