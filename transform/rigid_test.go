package transform

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/swdee/go-detect3d/result"
)

// vecEqual compares vectors within epsilon
func vecEqual(a, b r3.Vec, epsilon float64) bool {
	return math.Abs(a.X-b.X) <= epsilon &&
		math.Abs(a.Y-b.Y) <= epsilon &&
		math.Abs(a.Z-b.Z) <= epsilon
}

// zRotation returns a rotation of the given angle about the Z axis
func zRotation(angle float64) quat.Number {
	return quat.Number{
		Real: math.Cos(angle / 2),
		Kmag: math.Sin(angle / 2),
	}
}

func TestIdentityLeavesBoxUnchanged(t *testing.T) {

	box := result.BoundingBox3D{
		Center: r3.Vec{X: 0.4, Y: 0.4, Z: 2.0},
		Size:   r3.Vec{X: 0.16, Y: 0.16, Z: 0.1},
	}

	out := Box(box, Identity(), "base_link")

	if !vecEqual(out.Center, box.Center, 1e-9) {
		t.Errorf("expected center unchanged, got %+v", out.Center)
	}

	if !vecEqual(out.Size, box.Size, 1e-9) {
		t.Errorf("expected size unchanged, got %+v", out.Size)
	}

	if out.FrameID != "base_link" {
		t.Errorf("expected frame id base_link, got %q", out.FrameID)
	}
}

func TestRotateQuarterTurn(t *testing.T) {

	// 90 degrees about Z maps x onto y
	tf := Rigid{Rotation: zRotation(math.Pi / 2)}

	out := tf.Rotate(r3.Vec{X: 1})

	if !vecEqual(out, r3.Vec{Y: 1}, 1e-9) {
		t.Errorf("expected (0,1,0), got %+v", out)
	}
}

func TestApplyRoundTrip(t *testing.T) {

	// a non-trivial rotation combined with a translation must invert
	// exactly back to the original point
	tf := Rigid{
		Translation: r3.Vec{X: 0.3, Y: -1.2, Z: 0.5},
		Rotation:    zRotation(math.Pi / 3),
	}

	p := r3.Vec{X: 0.7, Y: 0.2, Z: 2.4}

	back := tf.Inverse().Apply(tf.Apply(p))

	if !vecEqual(back, p, 1e-9) {
		t.Errorf("expected round trip to %+v, got %+v", p, back)
	}
}

func TestBoxSizeAbsoluteValue(t *testing.T) {

	// a half turn about Z negates the x and y size components, the
	// transformed extent must stay non-negative
	tf := Rigid{Rotation: zRotation(math.Pi)}

	box := result.BoundingBox3D{
		Center: r3.Vec{X: 1, Y: 2, Z: 3},
		Size:   r3.Vec{X: 0.5, Y: 0.7, Z: 0.2},
	}

	out := Box(box, tf, "map")

	if !vecEqual(out.Size, box.Size, 1e-9) {
		t.Errorf("expected size %+v, got %+v", box.Size, out.Size)
	}

	if !vecEqual(out.Center, r3.Vec{X: -1, Y: -2, Z: 3}, 1e-9) {
		t.Errorf("expected center rotated to (-1,-2,3), got %+v", out.Center)
	}
}

func TestKeyPointsTransform(t *testing.T) {

	tf := Rigid{
		Translation: r3.Vec{X: 1},
		Rotation:    zRotation(math.Pi / 2),
	}

	kps := result.KeyPoint3DArray{
		Data: []result.KeyPoint3D{
			{ID: 5, Point: r3.Vec{X: 1}, Score: 0.9},
			{ID: 6, Point: r3.Vec{Y: 1}, Score: 0.3},
		},
	}

	out := KeyPoints(kps, tf, "map")

	if out.FrameID != "map" {
		t.Errorf("expected frame id map, got %q", out.FrameID)
	}

	if len(out.Data) != 2 {
		t.Fatalf("expected 2 keypoints, got %d", len(out.Data))
	}

	// ids and scores pass through unchanged
	if out.Data[0].ID != 5 || out.Data[0].Score != 0.9 {
		t.Errorf("unexpected keypoint fields %+v", out.Data[0])
	}

	if !vecEqual(out.Data[0].Point, r3.Vec{X: 1, Y: 1}, 1e-9) {
		t.Errorf("expected (1,1,0), got %+v", out.Data[0].Point)
	}

	if !vecEqual(out.Data[1].Point, r3.Vec{X: 0}, 1e-9) {
		t.Errorf("expected (0,0,0), got %+v", out.Data[1].Point)
	}
}

func TestStaticLookup(t *testing.T) {

	lookup := StaticLookup{
		"camera_depth_optical_frame": {Translation: r3.Vec{X: 1}},
	}

	if _, err := lookup.Lookup("base_link", "camera_depth_optical_frame"); err != nil {
		t.Errorf("expected lookup to succeed, got %v", err)
	}

	if _, err := lookup.Lookup("base_link", "unknown_frame"); err == nil {
		t.Error("expected lookup failure for unknown frame")
	}
}
