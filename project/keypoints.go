package project

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/swdee/go-detect3d/camera"
	"github.com/swdee/go-detect3d/result"
)

// ProjectKeyPoints back projects a detection's 2D keypoints into camera
// frame 3D coordinates, a batch application of the pinhole point mapping.
// Each keypoint's pixel coordinates are clamped to the frame bounds before
// sampling depth.  A keypoint whose projected position contains a NaN
// component, from undefined source depth, is omitted from the output.  The
// id and score of surviving keypoints carry over unchanged and input order
// is preserved
func (p *Projector) ProjectKeyPoints(depth *camera.DepthFrame,
	info camera.Intrinsics, keyPoints []result.KeyPoint) result.KeyPoint3DArray {

	out := result.KeyPoint3DArray{
		Data: make([]result.KeyPoint3D, 0, len(keyPoints)),
	}

	div := float64(p.Params.DepthUnitsDivisor)

	for _, kp := range keyPoints {

		u := clampInt(int(kp.X), 0, info.Width-1)
		v := clampInt(int(kp.Y), 0, info.Height-1)

		// project with the raw depth sample, then convert the whole point
		// to meters
		z := float64(depth.At(u, v))
		pt := r3.Scale(1/div, PixelToCamera(info, float64(u), float64(v), z))

		if math.IsNaN(pt.X) || math.IsNaN(pt.Y) || math.IsNaN(pt.Z) {
			continue
		}

		out.Data = append(out.Data, result.KeyPoint3D{
			ID:    kp.ID,
			Point: pt,
			Score: kp.Score,
		})
	}

	return out
}

// clampInt restricts the value to be within the range min and max
func clampInt(val, min, max int) int {

	if val < min {
		return min
	}

	if val > max {
		return max
	}

	return val
}
