package project

import (
	"github.com/swdee/go-detect3d/result"
)

// AnchorMap maps the torso landmarks of a skeletal layout to the candidate
// keypoint ids that represent them.  The landmarks are used to move the
// depth sampling anchor of an articulated subject onto its torso, since the
// geometric center of a person's bounding box often lies over empty space
type AnchorMap struct {
	// UpperIDs are the candidate ids of the upper torso landmark, the
	// left and right shoulders
	UpperIDs []int
	// LowerIDs are the candidate ids of the lower torso landmark, the
	// left and right hips
	LowerIDs []int
}

// COCOAnchorMap returns an AnchorMap for models trained on the COCO 17
// keypoint skeletal layout, where ids 5 and 6 are the shoulders and ids
// 11 and 12 are the hips
func COCOAnchorMap() AnchorMap {
	return AnchorMap{
		UpperIDs: []int{5, 6},
		LowerIDs: []int{11, 12},
	}
}

// Resolve returns the pixel anchor at which to sample a detection's center
// depth.  For each landmark side only the highest confidence candidate
// keypoint is kept.  When both sides are present the anchor is their
// midpoint, when one side is present the anchor is that point, and when
// neither is present the given box center is retained
func (m AnchorMap) Resolve(keyPoints []result.KeyPoint,
	centerX, centerY float64) (float64, float64) {

	up, upFound := bestCandidate(keyPoints, m.UpperIDs)
	down, downFound := bestCandidate(keyPoints, m.LowerIDs)

	switch {
	case upFound && downFound:
		return (up.X + down.X) / 2, (up.Y + down.Y) / 2

	case upFound:
		return up.X, up.Y

	case downFound:
		return down.X, down.Y
	}

	return centerX, centerY
}

// bestCandidate returns the highest scoring keypoint whose id is in the
// candidate list
func bestCandidate(keyPoints []result.KeyPoint, ids []int) (result.KeyPoint, bool) {

	var best result.KeyPoint
	found := false

	for _, kp := range keyPoints {
		for _, id := range ids {

			if kp.ID != id {
				continue
			}

			if !found || kp.Score > best.Score {
				best = kp
				found = true
			}
		}
	}

	return best, found
}
