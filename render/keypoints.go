package render

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/swdee/go-detect3d/result"
)

/* skeleton keypoints
0: Nose
1: Left Eye
2: Right Eye
3: Left Ear
4: Right Ear
5: Left Shoulder
6: Right Shoulder
7: Left Elbow
8: Right Elbow
9: Left Wrist
10: Right Wrist
11: Left Hip
12: Right Hip
13: Left Knee
14: Right Knee
15: Left Ankle
16: Right Ankle
*/

// skeleton defines the pose skeleton points to draw lines between.  The
// numbers are paired, so (16,14) means draw line from right ankle to
// right knee
var skeleton = [38]int{16, 14, 14, 12, 17, 15, 15, 13, 12, 13, 6, 12, 7, 13, 6, 7, 6, 8,
	7, 9, 8, 10, 9, 11, 2, 3, 1, 2, 1, 3, 2, 4, 3, 5, 4, 6, 5, 7}

// PoseKeyPoints renders the pose estimation keypoints of each detection.
// Keypoint sets may be sparse, skeleton limbs are only drawn when both of
// their joints are present
func PoseKeyPoints(img *gocv.Mat, detections []result.Detection,
	lineThickness int) {

	for _, det := range detections {

		if len(det.KeyPoints) == 0 {
			continue
		}

		// index this object's keypoints by id
		byID := make(map[int]result.KeyPoint, len(det.KeyPoints))

		for _, kp := range det.KeyPoints {
			byID[kp.ID] = kp
		}

		// draw skeleton lines
		for j := 0; j < len(skeleton)/2; j++ {

			a, aOK := byID[skeleton[2*j]-1]
			b, bOK := byID[skeleton[2*j+1]-1]

			if !aOK || !bOK {
				continue
			}

			gocv.Line(img, image.Pt(int(a.X), int(a.Y)),
				image.Pt(int(b.X), int(b.Y)), limbColors[j], lineThickness)
		}

		// draw circles at skeleton joints
		for _, kp := range det.KeyPoints {

			clr := Pink

			if kp.ID >= 0 && kp.ID < len(keyPointColors) {
				clr = keyPointColors[kp.ID]
			}

			gocv.Circle(img, image.Pt(int(kp.X), int(kp.Y)), 3, clr, -1)
		}
	}
}
