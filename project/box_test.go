package project

import (
	"math"
	"testing"

	"github.com/swdee/go-detect3d/camera"
	"github.com/swdee/go-detect3d/result"
)

// newUniformDepth creates a depth frame with every sample set to the given
// raw value
func newUniformDepth(t *testing.T, width, height int, val float32) *camera.DepthFrame {
	t.Helper()

	data := make([]float32, width*height)

	for i := range data {
		data[i] = val
	}

	frame, err := camera.NewDepthFrame(width, height, data)

	if err != nil {
		t.Fatalf("failed to create depth frame: %v", err)
	}

	return frame
}

// newDepthFromData creates a depth frame wrapping the given samples
func newDepthFromData(t *testing.T, width, height int, data []float32) *camera.DepthFrame {
	t.Helper()

	frame, err := camera.NewDepthFrame(width, height, data)

	if err != nil {
		t.Fatalf("failed to create depth frame: %v", err)
	}

	return frame
}

func testIntrinsics() camera.Intrinsics {
	return camera.Intrinsics{
		Fx: 500, Fy: 500,
		Px: 0, Py: 0,
		Width: 640, Height: 480,
	}
}

func TestProjectBoxUniformDepth(t *testing.T) {

	// a 40x40 box around (100,100) over uniform raw depth of 2000 with
	// divisor 1000 resolves to 2 meters with no depth spread
	depth := newUniformDepth(t, 640, 480, 2000)
	proj := NewProjector(DefaultParams())

	det := result.Detection{
		Box: result.Box2D{CenterX: 100, CenterY: 100, SizeX: 40, SizeY: 40},
	}

	box, ok := proj.ProjectBox(depth, testIntrinsics(), det)

	if !ok {
		t.Fatal("expected box to resolve")
	}

	if !floatEqual(box.Center.Z, 2.0, 1e-6) {
		t.Errorf("expected center.Z=2.0, got %f", box.Center.Z)
	}

	if !floatEqual(box.Center.X, 0.4, 1e-6) {
		t.Errorf("expected center.X=0.4, got %f", box.Center.X)
	}

	if !floatEqual(box.Center.Y, 0.4, 1e-6) {
		t.Errorf("expected center.Y=0.4, got %f", box.Center.Y)
	}

	if !floatEqual(box.Size.X, 0.16, 1e-6) {
		t.Errorf("expected size.X=0.16, got %f", box.Size.X)
	}

	if !floatEqual(box.Size.Y, 0.16, 1e-6) {
		t.Errorf("expected size.Y=0.16, got %f", box.Size.Y)
	}

	if box.Size.Z != 0 {
		t.Errorf("expected size.Z=0 for uniform depth, got %f", box.Size.Z)
	}
}

func TestProjectBoxDepthSpread(t *testing.T) {

	// two depth bands 0.2 meters apart, both within the consensus
	// threshold of their mean
	width, height := 100, 100
	data := make([]float32, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if y < 50 {
				data[y*width+x] = 2000
			} else {
				data[y*width+x] = 2200
			}
		}
	}

	depth := newDepthFromData(t, width, height, data)
	proj := NewProjector(DefaultParams())

	det := result.Detection{
		Box: result.Box2D{CenterX: 50, CenterY: 50, SizeX: 40, SizeY: 40},
	}

	info := camera.Intrinsics{Fx: 500, Fy: 500, Width: width, Height: height}

	box, ok := proj.ProjectBox(depth, info, det)

	if !ok {
		t.Fatal("expected box to resolve")
	}

	if !floatEqual(box.Center.Z, 2.1, 1e-6) {
		t.Errorf("expected center.Z=2.1, got %f", box.Center.Z)
	}

	if !floatEqual(box.Size.Z, 0.2, 1e-6) {
		t.Errorf("expected size.Z=0.2, got %f", box.Size.Z)
	}
}

func TestProjectBoxAllZeroDepth(t *testing.T) {

	depth := newUniformDepth(t, 640, 480, 0)
	proj := NewProjector(DefaultParams())

	det := result.Detection{
		Box: result.Box2D{CenterX: 100, CenterY: 100, SizeX: 40, SizeY: 40},
	}

	if _, ok := proj.ProjectBox(depth, testIntrinsics(), det); ok {
		t.Error("expected no box for all zero depth region")
	}
}

func TestProjectBoxZeroCenterDepth(t *testing.T) {

	// ROI has usable depth but the anchor pixel itself reads zero
	data := make([]float32, 640*480)

	for i := range data {
		data[i] = 2000
	}

	data[100*640+100] = 0
	depth := newDepthFromData(t, 640, 480, data)

	proj := NewProjector(DefaultParams())

	det := result.Detection{
		Box: result.Box2D{CenterX: 100, CenterY: 100, SizeX: 40, SizeY: 40},
	}

	if _, ok := proj.ProjectBox(depth, testIntrinsics(), det); ok {
		t.Error("expected no box when center depth is zero")
	}
}

func TestProjectBoxNaNCenterDepth(t *testing.T) {

	data := make([]float32, 640*480)

	for i := range data {
		data[i] = 2000
	}

	data[100*640+100] = float32(math.NaN())
	depth := newDepthFromData(t, 640, 480, data)

	proj := NewProjector(DefaultParams())

	det := result.Detection{
		Box: result.Box2D{CenterX: 100, CenterY: 100, SizeX: 40, SizeY: 40},
	}

	if _, ok := proj.ProjectBox(depth, testIntrinsics(), det); ok {
		t.Error("expected no box when center depth is NaN")
	}
}

func TestProjectBoxNoDepthConsensus(t *testing.T) {

	// two bands too far apart for either to sit within the threshold of
	// their mean
	width, height := 100, 100
	data := make([]float32, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if y < 50 {
				data[y*width+x] = 1000
			} else {
				data[y*width+x] = 10000
			}
		}
	}

	depth := newDepthFromData(t, width, height, data)
	proj := NewProjector(DefaultParams())

	det := result.Detection{
		Box: result.Box2D{CenterX: 50, CenterY: 50, SizeX: 40, SizeY: 40},
	}

	info := camera.Intrinsics{Fx: 500, Fy: 500, Width: width, Height: height}

	if _, ok := proj.ProjectBox(depth, info, det); ok {
		t.Error("expected no box without depth consensus")
	}
}

func TestProjectBoxRobustMeanSkipsHoles(t *testing.T) {

	// sensor holes read zero and must not drag the mean down
	width, height := 100, 100
	data := make([]float32, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x%2 == 0 {
				data[y*width+x] = 2000
			}
		}
	}

	depth := newDepthFromData(t, width, height, data)
	proj := NewProjector(DefaultParams())

	det := result.Detection{
		Box: result.Box2D{CenterX: 50, CenterY: 50, SizeX: 40, SizeY: 40},
	}

	info := camera.Intrinsics{Fx: 500, Fy: 500, Width: width, Height: height}

	box, ok := proj.ProjectBox(depth, info, det)

	if !ok {
		t.Fatal("expected box to resolve")
	}

	if !floatEqual(box.Center.Z, 2.0, 1e-6) {
		t.Errorf("expected center.Z=2.0 ignoring holes, got %f", box.Center.Z)
	}
}

func TestProjectBoxAnchorOutOfBounds(t *testing.T) {

	depth := newUniformDepth(t, 640, 480, 2000)
	proj := NewProjector(DefaultParams())

	tests := []struct {
		name string
		x, y float64
	}{
		{"at width", 640, 100},
		{"negative x", -1, 100},
		{"at height", 100, 480},
	}

	for _, tc := range tests {

		// a high confidence shoulder keypoint forces the anchor onto the
		// out of bounds pixel
		det := result.Detection{
			Box: result.Box2D{CenterX: 100, CenterY: 100, SizeX: 40, SizeY: 40},
			KeyPoints: []result.KeyPoint{
				{ID: 5, X: tc.x, Y: tc.y, Score: 0.9},
			},
		}

		if _, ok := proj.ProjectBox(depth, testIntrinsics(), det); ok {
			t.Errorf("%s: expected no box for out of bounds anchor", tc.name)
		}
	}
}

func TestProjectBoxAnchorOverrideUsesTorsoDepth(t *testing.T) {

	// the box center reads far depth but the subject's torso keypoints sit
	// over near depth, the anchor gate must sample the torso pixel
	width, height := 200, 200
	data := make([]float32, width*height)

	for i := range data {
		data[i] = 2000
	}

	// the geometric box center lies over a hole
	data[100*width+100] = 0

	depth := newDepthFromData(t, width, height, data)
	proj := NewProjector(DefaultParams())

	det := result.Detection{
		Box: result.Box2D{CenterX: 100, CenterY: 100, SizeX: 40, SizeY: 40},
		KeyPoints: []result.KeyPoint{
			{ID: 5, X: 90, Y: 90, Score: 0.9},
			{ID: 12, X: 92, Y: 110, Score: 0.8},
		},
	}

	info := camera.Intrinsics{Fx: 500, Fy: 500, Width: width, Height: height}

	box, ok := proj.ProjectBox(depth, info, det)

	if !ok {
		t.Fatal("expected box to resolve via torso anchor")
	}

	// anchor is the midpoint (91,100), projected at the robust mean depth
	if !floatEqual(box.Center.Z, 2.0, 1e-3) {
		t.Errorf("expected center.Z near 2.0, got %f", box.Center.Z)
	}
}
