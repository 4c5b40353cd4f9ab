package project

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/swdee/go-detect3d/camera"
	"github.com/swdee/go-detect3d/result"
)

// Params defines the configuration used for projecting detections into 3D
type Params struct {
	// MaximumDetectionThreshold is the depth consensus tolerance in meters.
	// ROI samples further than this from the robust mean are discarded
	// before deriving the box depth extent
	MaximumDetectionThreshold float64
	// DepthUnitsDivisor converts raw depth sensor units to meters, eg: 1000
	// for sensors reporting millimeters
	DepthUnitsDivisor int
	// Anchors maps torso landmarks to candidate keypoint ids used to
	// override the depth sampling anchor for articulated subjects
	Anchors AnchorMap
}

// DefaultParams returns an instance of Params configured with default
// values:
// - Maximum Detection Threshold: 0.3 meters
// - Depth Units Divisor: 1000 (millimeters to meters)
// - Anchors: COCO 17 keypoint layout
func DefaultParams() Params {
	return Params{
		MaximumDetectionThreshold: 0.3,
		DepthUnitsDivisor:         1000,
		Anchors:                   COCOAnchorMap(),
	}
}

// Projector lifts a detection's 2D bounding box and keypoints into camera
// frame 3D coordinates using a depth frame and the camera intrinsics.  A
// Projector holds only read-only configuration and is safe for use across
// frames
type Projector struct {
	// Params are the projection configuration parameters
	Params Params
}

// NewProjector returns an instance of the detection Projector
func NewProjector(p Params) *Projector {
	return &Projector{
		Params: p,
	}
}

// ProjectBox derives a camera frame 3D bounding box for the detection.
// The box center depth is the robust mean of the detection's depth ROI and
// the depth extent is the spread of ROI samples within the consensus
// threshold.  The second return value is false when no box could be
// resolved: empty or all zero ROI, anchor outside the image, unusable
// center depth, no positive finite samples, or no depth consensus.  An
// unresolved detection is a normal outcome, not an error
func (p *Projector) ProjectBox(depth *camera.DepthFrame, info camera.Intrinsics,
	det result.Detection) (result.BoundingBox3D, bool) {

	centerX := int(det.Box.CenterX)
	centerY := int(det.Box.CenterY)
	sizeX := int(det.Box.SizeX)
	sizeY := int(det.Box.SizeY)

	// crop the depth ROI covered by the 2D box, converted to meters
	roi := cropROI(depth, centerX, centerY, sizeX, sizeY, p.Params.DepthUnitsDivisor)

	if !anyNonZero(roi) {
		// no usable depth in the region
		return result.BoundingBox3D{}, false
	}

	// move the sampling anchor onto the subject's torso when pose
	// keypoints are available
	anchorX, anchorY := p.Params.Anchors.Resolve(det.KeyPoints,
		det.Box.CenterX, det.Box.CenterY)

	u := int(anchorX)
	v := int(anchorY)

	if !depth.Contains(u, v) {
		return result.BoundingBox3D{}, false
	}

	// the single anchor sample acts as a sanity gate only, the box depth
	// itself comes from the robust mean below
	anchorZ := float64(depth.At(u, v)) / float64(p.Params.DepthUnitsDivisor)

	if math.IsNaN(anchorZ) || anchorZ == 0 || math.IsInf(anchorZ, 0) {
		return result.BoundingBox3D{}, false
	}

	meanZ, ok := robustMean(roi)

	if !ok {
		return result.BoundingBox3D{}, false
	}

	zMin, zMax, ok := consensusRange(roi, meanZ, p.Params.MaximumDetectionThreshold)

	if !ok {
		// detection has no depth consensus
		return result.BoundingBox3D{}, false
	}

	// project from image to camera frame coordinates
	center := PixelToCamera(info, float64(u), float64(v), meanZ)
	width, height := ExtentAtDepth(info, float64(sizeX), float64(sizeY), meanZ)

	return result.BoundingBox3D{
		Center: center,
		Size: r3.Vec{
			X: width,
			Y: height,
			Z: zMax - zMin,
		},
	}, true
}

// cropROI extracts the depth samples covered by the 2D box, clipped to the
// image bounds and converted to meters.  The returned slice is row major
// and may be empty when the clipped region has no area
func cropROI(depth *camera.DepthFrame, centerX, centerY, sizeX, sizeY,
	divisor int) []float32 {

	uMin := max(centerX-sizeX/2, 0)
	uMax := min(centerX+sizeX/2, depth.Width()-1)
	vMin := max(centerY-sizeY/2, 0)
	vMax := min(centerY+sizeY/2, depth.Height()-1)

	if uMax <= uMin || vMax <= vMin {
		return nil
	}

	div := float32(divisor)
	roi := make([]float32, 0, (uMax-uMin)*(vMax-vMin))

	for y := vMin; y < vMax; y++ {
		for x := uMin; x < uMax; x++ {
			roi = append(roi, depth.At(x, y)/div)
		}
	}

	return roi
}

// anyNonZero reports whether any sample differs from zero.  NaN samples
// count as nonzero, they are rejected later by the robust mean
func anyNonZero(samples []float32) bool {

	for _, s := range samples {
		if s != 0 {
			return true
		}
	}

	return false
}

// robustMean returns the mean of the strictly positive finite samples,
// resisting sensor noise holes (zeros) and invalid readings.  The second
// return value is false when no such sample exists
func robustMean(samples []float32) (float64, bool) {

	valid := make([]float64, 0, len(samples))

	for _, s := range samples {
		z := float64(s)

		if z > 0 && !math.IsInf(z, 0) {
			valid = append(valid, z)
		}
	}

	if len(valid) == 0 {
		return 0, false
	}

	return stat.Mean(valid, nil), true
}

// consensusRange returns the minimum and maximum of the finite samples
// whose absolute difference from the mean is within the threshold.  The
// third return value is false when no sample is within consensus
func consensusRange(samples []float32, mean, threshold float64) (float64, float64, bool) {

	zMin := math.Inf(1)
	zMax := math.Inf(-1)
	found := false

	for _, s := range samples {
		z := float64(s)

		if math.IsNaN(z) || math.IsInf(z, 0) {
			continue
		}

		if math.Abs(z-mean) > threshold {
			continue
		}

		zMin = math.Min(zMin, z)
		zMax = math.Max(zMax, z)
		found = true
	}

	if !found {
		return 0, 0, false
	}

	return zMin, zMax, true
}
