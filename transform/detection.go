package transform

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/swdee/go-detect3d/result"
)

// Box transforms a camera frame bounding box into the target frame.  The
// center is rotated and translated.  The size vector is rotated and the
// component-wise absolute value taken: size is a direction free extent, so
// for rotations that mix axes this yields an approximate extent rather
// than an exact rotated one.  That approximation is the established
// behaviour of this transform and is kept as is
func Box(b result.BoundingBox3D, t Rigid, targetFrame string) result.BoundingBox3D {

	size := t.Rotate(b.Size)

	return result.BoundingBox3D{
		Center: t.Apply(b.Center),
		Size: r3.Vec{
			X: math.Abs(size.X),
			Y: math.Abs(size.Y),
			Z: math.Abs(size.Z),
		},
		FrameID: targetFrame,
	}
}

// KeyPoints transforms every keypoint position in the array into the target
// frame independently.  Keypoint ids and scores pass through unchanged
func KeyPoints(k result.KeyPoint3DArray, t Rigid, targetFrame string) result.KeyPoint3DArray {

	out := result.KeyPoint3DArray{
		Data:    make([]result.KeyPoint3D, len(k.Data)),
		FrameID: targetFrame,
	}

	for i, kp := range k.Data {
		out.Data[i] = result.KeyPoint3D{
			ID:    kp.ID,
			Point: t.Apply(kp.Point),
			Score: kp.Score,
		}
	}

	return out
}
