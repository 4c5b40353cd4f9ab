package transform

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Rigid represents a rigid body transform between two reference frames, a
// rotation followed by a translation with no scaling
type Rigid struct {
	// Translation is the frame origin offset in meters
	Translation r3.Vec
	// Rotation is the quaternion rotating source frame coordinates into
	// the target frame.  It is assumed to be of unit length as produced by
	// the transform source and is not re-normalized here
	Rotation quat.Number
}

// Identity returns the transform that leaves coordinates unchanged
func Identity() Rigid {
	return Rigid{
		Rotation: quat.Number{Real: 1},
	}
}

// Inverse returns the transform mapping target frame coordinates back into
// the source frame
func (t Rigid) Inverse() Rigid {

	conj := quat.Conj(t.Rotation)

	return Rigid{
		Translation: r3.Scale(-1, rotate(conj, t.Translation)),
		Rotation:    conj,
	}
}

// Rotate applies only the rotation component of the transform to v
func (t Rigid) Rotate(v r3.Vec) r3.Vec {
	return rotate(t.Rotation, v)
}

// Apply rotates v and translates it into the target frame
func (t Rigid) Apply(v r3.Vec) r3.Vec {
	return r3.Add(rotate(t.Rotation, v), t.Translation)
}

// rotate applies the quaternion rotation to v in Rodrigues form,
// v + 2*(q0*(qv x v) + qv x (qv x v)), which avoids converting the
// quaternion to a rotation matrix
func rotate(q quat.Number, v r3.Vec) r3.Vec {

	qvec := r3.Vec{X: q.Imag, Y: q.Jmag, Z: q.Kmag}

	uv := r3.Cross(qvec, v)
	uuv := r3.Cross(qvec, uv)

	return r3.Add(v, r3.Add(r3.Scale(2*q.Real, uv), r3.Scale(2, uuv)))
}
