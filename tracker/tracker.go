package tracker

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/swdee/go-detect3d/result"
)

// Params defines the struct containing the Tracker parameters to use
type Params struct {
	// MaxAge is the number of consecutive frames a track may go unmatched
	// before it is removed
	MaxAge int
	// MinHits is the number of matches a track needs before it is reported,
	// suppressing single frame false positives
	MinHits int
	// GateDistance is the maximum distance in meters between a track's
	// predicted position and a detection center for the two to be associated
	GateDistance float64
	// TrailLength is the maximum number of most recent pixel center points
	// kept per track for rendering trails
	TrailLength int
	// StdWeightPosition and StdWeightVelocity are the Kalman filter noise
	// weights in meters
	StdWeightPosition float64
	StdWeightVelocity float64
}

// DefaultParams returns an instance of Params configured with default
// values for tracking people and vehicles at walking to driving speeds
func DefaultParams() Params {
	return Params{
		MaxAge:            30,
		MinHits:           3,
		GateDistance:      1.0,
		TrailLength:       50,
		StdWeightPosition: 1.0 / 20,
		StdWeightVelocity: 1.0 / 160,
	}
}

// Point represents the pixel coordinates of a track's 2D box center kept
// in the trail history
type Point struct {
	X, Y int
}

// Track represents one object followed across frames
type Track struct {
	id        int64
	class     int
	score     float32
	state     *State
	age       int
	hits      int
	detection result.Detection
	trail     []Point
}

// GetTrackID returns the unique id assigned to this track
func (t *Track) GetTrackID() int64 {
	return t.id
}

// GetClass returns the object class of the most recent matched detection
func (t *Track) GetClass() int {
	return t.class
}

// GetScore returns the confidence score of the most recent matched detection
func (t *Track) GetScore() float32 {
	return t.score
}

// GetPosition returns the track's estimated position in meters in the
// target frame
func (t *Track) GetPosition() r3.Vec {
	return t.state.Position()
}

// GetVelocity returns the track's estimated velocity in meters per frame
func (t *Track) GetVelocity() r3.Vec {
	return t.state.Velocity()
}

// GetDetection returns the most recent detection matched to this track
func (t *Track) GetDetection() result.Detection {
	return t.detection
}

// GetTrail returns the history of the track's 2D box center points, oldest
// first
func (t *Track) GetTrail() []Point {
	return t.trail
}

// addTrailPoint appends the detection's 2D box center to the trail history,
// dropping the oldest point once the configured length is exceeded
func (t *Track) addTrailPoint(det result.Detection, maxLen int) {

	t.trail = append(t.trail, Point{
		X: int(det.Box.CenterX),
		Y: int(det.Box.CenterY),
	})

	if len(t.trail) > maxLen {
		t.trail = t.trail[1:]
	}
}

// Tracker follows enriched detections across frames by their 3D box
// centers.  Association is gated nearest neighbor on the distance between
// a detection center and each track's Kalman predicted position.  Tracker
// is not safe for concurrent use, feed it frames in order from one
// goroutine
type Tracker struct {
	// Params are the tracker configuration parameters
	Params Params

	kf     *KalmanFilter
	tracks []*Track
	nextID int64
}

// NewTracker returns an instance of the 3D detection Tracker
func NewTracker(p Params) *Tracker {
	return &Tracker{
		Params: p,
		kf:     NewKalmanFilter(p.StdWeightPosition, p.StdWeightVelocity),
	}
}

// candidate is a possible track to detection assignment
type candidate struct {
	track, det int
	dist       float64
}

// Update feeds the tracker one frame of detections and returns the tracks
// matched in this frame that have reached MinHits.  Detections without a
// resolved 3D box are ignored
func (tr *Tracker) Update(detections []result.Detection) []*Track {

	// advance all track states one frame
	for _, t := range tr.tracks {
		tr.kf.Predict(t.state)
		t.age++
	}

	// only detections carrying a 3D box can be tracked
	boxed := make([]result.Detection, 0, len(detections))

	for _, det := range detections {
		if det.BBox3D != nil {
			boxed = append(boxed, det)
		}
	}

	// build gated candidate pairs between predicted tracks and detections
	candidates := make([]candidate, 0, len(tr.tracks)*len(boxed))

	for ti, t := range tr.tracks {
		pos := t.state.Position()

		for di, det := range boxed {
			dist := r3.Norm(r3.Sub(det.BBox3D.Center, pos))

			if dist > tr.Params.GateDistance {
				continue
			}

			candidates = append(candidates, candidate{track: ti, det: di, dist: dist})
		}
	}

	// greedy assignment, closest pairs first
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})

	usedTrack := make(map[int]bool)
	usedDet := make(map[int]bool)

	for _, c := range candidates {

		if usedTrack[c.track] || usedDet[c.det] {
			continue
		}

		usedTrack[c.track] = true
		usedDet[c.det] = true

		t := tr.tracks[c.track]
		det := boxed[c.det]

		if err := tr.kf.Update(t.state, det.BBox3D.Center); err != nil {
			// degenerate covariance, reinitialize from the measurement
			t.state = tr.kf.Initiate(det.BBox3D.Center)
		}

		t.age = 0
		t.hits++
		t.class = det.Class
		t.score = det.Score
		t.detection = det
		t.addTrailPoint(det, tr.Params.TrailLength)
	}

	// start new tracks for unmatched detections
	for di, det := range boxed {

		if usedDet[di] {
			continue
		}

		tr.nextID++

		t := &Track{
			id:        tr.nextID,
			class:     det.Class,
			score:     det.Score,
			state:     tr.kf.Initiate(det.BBox3D.Center),
			hits:      1,
			detection: det,
		}
		t.addTrailPoint(det, tr.Params.TrailLength)

		tr.tracks = append(tr.tracks, t)
	}

	// prune tracks that have gone unmatched too long
	kept := tr.tracks[:0]

	for _, t := range tr.tracks {
		if t.age <= tr.Params.MaxAge {
			kept = append(kept, t)
		}
	}

	tr.tracks = kept

	// report tracks matched this frame that are established
	active := make([]*Track, 0, len(tr.tracks))

	for _, t := range tr.tracks {
		if t.age == 0 && t.hits >= tr.Params.MinHits {
			active = append(active, t)
		}
	}

	return active
}

// Reset removes all tracks and restarts track id numbering
func (tr *Tracker) Reset() {
	tr.tracks = nil
	tr.nextID = 0
}
