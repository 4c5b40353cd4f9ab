package detect3d

import (
	"log"

	"gocv.io/x/gocv"

	"github.com/swdee/go-detect3d/camera"
	"github.com/swdee/go-detect3d/project"
	"github.com/swdee/go-detect3d/result"
	"github.com/swdee/go-detect3d/transform"
)

// DepthDecoder decodes a raw depth image Mat into a DepthFrame.  It is
// injected into the Pipeline so frame decoding can be substituted in
// testing, camera.MatDecoder is the standard implementation
type DepthDecoder interface {
	Decode(img gocv.Mat) (*camera.DepthFrame, error)
}

// Params defines the configuration parameters of the detection Pipeline.
// Params are read once at pipeline creation and immutable thereafter
type Params struct {
	// TargetFrame is the name of the reference frame detections are
	// expressed in after projection
	TargetFrame string
	// MaximumDetectionThreshold is the depth consensus tolerance in meters
	// used when deriving a detection's depth extent
	MaximumDetectionThreshold float64
	// DepthUnitsDivisor converts raw depth sensor units to meters, eg:
	// 1000 for sensors reporting millimeters
	DepthUnitsDivisor int
	// Anchors maps torso landmarks to candidate keypoint ids used to
	// refine the depth sampling anchor of articulated subjects
	Anchors project.AnchorMap
	// Logger receives frame level failure reports.  When nil the standard
	// logger is used
	Logger *log.Logger
}

// DefaultParams returns an instance of Params configured with default
// values:
// - Target Frame: base_link
// - Maximum Detection Threshold: 0.3 meters
// - Depth Units Divisor: 1000
// - Anchors: COCO 17 keypoint layout
func DefaultParams() Params {
	return Params{
		TargetFrame:               "base_link",
		MaximumDetectionThreshold: 0.3,
		DepthUnitsDivisor:         1000,
		Anchors:                   project.COCOAnchorMap(),
	}
}

// Pipeline lifts 2D detections into 3D per synchronized sensor frame.  For
// each detection it derives a camera frame 3D bounding box, back projects
// the detection's keypoints when present, and transforms both into the
// configured target frame.  A Pipeline holds only read-only configuration
// and its collaborators, all per frame state is created fresh on each call
type Pipeline struct {
	params    Params
	projector *project.Projector
	lookup    transform.Lookup
	decoder   DepthDecoder
	log       *log.Logger
}

// NewPipeline returns a detection Pipeline using the given transform
// lookup and depth decoder collaborators
func NewPipeline(p Params, lookup transform.Lookup, decoder DepthDecoder) *Pipeline {

	logger := p.Logger

	if logger == nil {
		logger = log.Default()
	}

	return &Pipeline{
		params: p,
		projector: project.NewProjector(project.Params{
			MaximumDetectionThreshold: p.MaximumDetectionThreshold,
			DepthUnitsDivisor:         p.DepthUnitsDivisor,
			Anchors:                   p.Anchors,
		}),
		lookup:  lookup,
		decoder: decoder,
		log:     logger,
	}
}

// Process projects the frame's detections into the target frame using the
// given depth frame and intrinsics.  sourceFrame is the reference frame of
// the depth camera.  Detections whose depth cannot be resolved are dropped
// from the output, survivors keep their input order.  When the transform
// lookup fails the whole frame yields an empty output: no detection beats
// a wrongly placed one.  The failure is logged, never raised
func (p *Pipeline) Process(detections []result.Detection, depth *camera.DepthFrame,
	info camera.Intrinsics, sourceFrame string) []result.Detection {

	if len(detections) == 0 {
		return nil
	}

	tf, err := p.lookup.Lookup(p.params.TargetFrame, sourceFrame)

	if err != nil {
		p.log.Printf("could not transform %s to %s: %v",
			sourceFrame, p.params.TargetFrame, err)
		return nil
	}

	out := make([]result.Detection, 0, len(detections))

	for _, det := range detections {

		bbox, ok := p.projector.ProjectBox(depth, info, det)

		if !ok {
			// unresolvable depth, drop the detection
			continue
		}

		bbox3d := transform.Box(bbox, tf, p.params.TargetFrame)
		det.BBox3D = &bbox3d

		if len(det.KeyPoints) > 0 {
			kps := p.projector.ProjectKeyPoints(depth, info, det.KeyPoints)
			kps3d := transform.KeyPoints(kps, tf, p.params.TargetFrame)
			det.KeyPoints3D = &kps3d
		}

		out = append(out, det)
	}

	return out
}

// ProcessMat decodes the depth image Mat with the pipeline's decoder and
// then projects the detections as Process does.  A decode failure yields
// an empty output for the frame and is logged
func (p *Pipeline) ProcessMat(detections []result.Detection, depthImg gocv.Mat,
	info camera.Intrinsics, sourceFrame string) []result.Detection {

	if len(detections) == 0 {
		return nil
	}

	depth, err := p.decoder.Decode(depthImg)

	if err != nil {
		p.log.Printf("could not decode depth image: %v", err)
		return nil
	}

	return p.Process(detections, depth, info, sourceFrame)
}
