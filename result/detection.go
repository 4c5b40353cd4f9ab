package result

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// KeyPoint represents a single 2D skeletal keypoint of a detection
type KeyPoint struct {
	// ID is the keypoint id within the skeletal layout the pose model was
	// trained on, eg: 0-16 for the COCO 17 keypoint layout
	ID int
	// X and Y are the keypoint pixel coordinates
	X, Y float64
	// Score is the confidence score of the keypoint
	Score float32
}

// Box2D represents a detection bounding box in pixel space defined by its
// center point and size
type Box2D struct {
	// CenterX and CenterY are the pixel coordinates of the box center
	CenterX, CenterY float64
	// SizeX and SizeY are the box width and height in pixels
	SizeX, SizeY float64
}

// BoundingBox3D represents a detection bounding box in 3D space expressed
// in the reference frame given by FrameID
type BoundingBox3D struct {
	// Center is the box center position in meters
	Center r3.Vec
	// Size is the box extent in meters.  Size components are non-negative.
	// The Z extent is derived from the spread of valid depth samples in the
	// detection's depth ROI, not from projection of the pixel box size
	Size r3.Vec
	// FrameID is the name of the reference frame the box is expressed in
	FrameID string
}

// KeyPoint3D represents a single skeletal keypoint back projected into 3D
type KeyPoint3D struct {
	// ID is the keypoint id carried over from the 2D keypoint
	ID int
	// Point is the keypoint position in meters
	Point r3.Vec
	// Score is the confidence score carried over from the 2D keypoint
	Score float32
}

// KeyPoint3DArray holds a detection's 3D keypoints in the same order as the
// 2D keypoints they were projected from, with unresolvable keypoints removed
type KeyPoint3DArray struct {
	Data []KeyPoint3D
	// FrameID is the name of the reference frame the keypoints are
	// expressed in
	FrameID string
}

// Detection represents a single object detection.  The 2D fields come from
// the image space detector.  BBox3D and KeyPoints3D are set once the
// detection has been resolved against a depth frame, and remain nil for
// detections that have not been
type Detection struct {
	// ID is a unique number identifying the detection
	ID int64
	// Class is the object class index of the detection
	Class int
	// Score is the confidence score of the detection
	Score float32
	// Box is the detection bounding box in pixel space
	Box Box2D
	// KeyPoints are the detection's 2D skeletal keypoints, empty for
	// models that do not predict a pose
	KeyPoints []KeyPoint
	// BBox3D is the detection bounding box resolved into 3D
	BBox3D *BoundingBox3D
	// KeyPoints3D are the skeletal keypoints resolved into 3D
	KeyPoints3D *KeyPoint3DArray
}
