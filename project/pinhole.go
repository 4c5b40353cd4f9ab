package project

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/swdee/go-detect3d/camera"
)

// PixelToCamera maps the pixel coordinate (u,v) at depth z through the
// inverse pinhole model to a 3D point in the camera frame.  Depth z is in
// meters and the returned point is in meters with Z equal to z
func PixelToCamera(info camera.Intrinsics, u, v, z float64) r3.Vec {
	return r3.Vec{
		X: z * (u - info.Px) / info.Fx,
		Y: z * (v - info.Py) / info.Fy,
		Z: z,
	}
}

// ExtentAtDepth converts a pixel extent into a metric extent at depth z.
// An extent is a size, not an offset, so the principal point does not
// apply.  Used for box width and height, never for positions
func ExtentAtDepth(info camera.Intrinsics, sizeU, sizeV, z float64) (float64, float64) {
	return z * sizeU / info.Fx, z * sizeV / info.Fy
}
