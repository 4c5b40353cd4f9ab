package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/swdee/go-detect3d"
	"github.com/swdee/go-detect3d/camera"
	"github.com/swdee/go-detect3d/render"
	"github.com/swdee/go-detect3d/result"
	"github.com/swdee/go-detect3d/tracker"
	"github.com/swdee/go-detect3d/transform"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	seqFile := flag.String("j", "../data/sequence.json", "JSON file listing the frame sequence to track over")
	labelFile := flag.String("l", "../data/coco_80_labels_list.txt", "Text file containing model labels")
	saveFile := flag.String("o", "../data/track-out.jpg", "The output JPG of the last frame with track markers")

	fx := flag.Float64("fx", 570.3, "Depth camera focal length x in pixels")
	fy := flag.Float64("fy", 570.3, "Depth camera focal length y in pixels")
	px := flag.Float64("px", 319.5, "Depth camera principal point x in pixels")
	py := flag.Float64("py", 239.5, "Depth camera principal point y in pixels")

	targetFrame := flag.String("t", "base_link", "Target reference frame name")
	camFrame := flag.String("c", "camera_depth_optical_frame", "Depth camera reference frame name")
	tx := flag.Float64("tx", 0, "Camera to target frame translation x in meters")
	ty := flag.Float64("ty", 0, "Camera to target frame translation y in meters")
	tz := flag.Float64("tz", 0, "Camera to target frame translation z in meters")
	qw := flag.Float64("qw", 1, "Camera to target frame rotation quaternion w")
	qx := flag.Float64("qx", 0, "Camera to target frame rotation quaternion x")
	qy := flag.Float64("qy", 0, "Camera to target frame rotation quaternion y")
	qz := flag.Float64("qz", 0, "Camera to target frame rotation quaternion z")

	flag.Parse()

	classNames, err := detect3d.LoadLabels(*labelFile)

	if err != nil {
		log.Fatal("Error loading model labels: ", err)
	}

	frames, err := loadSequence(*seqFile)

	if err != nil {
		log.Fatal("Error loading frame sequence: ", err)
	}

	lookup := transform.StaticLookup{
		*camFrame: transform.Rigid{
			Translation: r3.Vec{X: *tx, Y: *ty, Z: *tz},
			Rotation:    quat.Number{Real: *qw, Imag: *qx, Jmag: *qy, Kmag: *qz},
		},
	}

	params := detect3d.DefaultParams()
	params.TargetFrame = *targetFrame

	pipeline := detect3d.NewPipeline(params, lookup, camera.MatDecoder{})

	trackParams := tracker.DefaultParams()
	// report tracks from their second match so short clips still show
	// results
	trackParams.MinHits = 2

	objTracker := tracker.NewTracker(trackParams)

	var lastTracks []*tracker.Track

	lastImg := gocv.NewMat()
	defer lastImg.Close()

	for i, frame := range frames {

		depthImg := gocv.IMRead(frame.Depth, gocv.IMReadAnyDepth)

		if depthImg.Empty() {
			log.Fatal("Error reading depth image from: ", frame.Depth)
		}

		info := camera.Intrinsics{
			Fx:     *fx,
			Fy:     *fy,
			Px:     *px,
			Py:     *py,
			Width:  depthImg.Cols(),
			Height: depthImg.Rows(),
		}

		detections3d := pipeline.ProcessMat(frame.Detections, depthImg, info, *camFrame)
		depthImg.Close()

		tracks := objTracker.Update(detections3d)

		log.Printf("frame %d: %d detections, %d tracks\n",
			i, len(detections3d), len(tracks))

		for _, t := range tracks {
			pos := t.GetPosition()
			vel := t.GetVelocity()
			log.Printf("  track %d %s at (%.2f, %.2f, %.2f) velocity (%.2f, %.2f, %.2f)\n",
				t.GetTrackID(), className(classNames, t.GetClass()),
				pos.X, pos.Y, pos.Z, vel.X, vel.Y, vel.Z)
		}

		lastTracks = tracks

		if i == len(frames)-1 && frame.Image != "" {
			lastImg.Close()
			lastImg = gocv.IMRead(frame.Image, gocv.IMReadColor)
		}
	}

	// annotate the final frame with the tracking results
	if !lastImg.Empty() {
		render.TrackBoxes(&lastImg, lastTracks, classNames, render.DefaultFont(), 2)
		render.TrackTrails(&lastImg, lastTracks, render.DefaultTrailStyle())

		if ok := gocv.IMWrite(*saveFile, lastImg); !ok {
			log.Fatal("Failed to save image to: ", *saveFile)
		}

		log.Println("Saved annotated image to:", *saveFile)
	}
}

// jsonFrame is the on disk representation of one synchronized frame
type jsonFrame struct {
	// Depth is the path of the frame's depth image
	Depth string `json:"depth"`
	// Image is the optional path of the frame's color image
	Image string `json:"image"`
	// Detections are the 2D detector outputs for the frame
	Detections []struct {
		Class int     `json:"class"`
		Score float32 `json:"score"`
		Box   struct {
			CX float64 `json:"cx"`
			CY float64 `json:"cy"`
			W  float64 `json:"w"`
			H  float64 `json:"h"`
		} `json:"box"`
		KeyPoints []struct {
			ID    int     `json:"id"`
			X     float64 `json:"x"`
			Y     float64 `json:"y"`
			Score float32 `json:"score"`
		} `json:"keypoints"`
	} `json:"detections"`
}

// frame is one synchronized frame ready for processing
type frame struct {
	Depth      string
	Image      string
	Detections []result.Detection
}

// loadSequence reads the frame sequence description from a JSON file.
// Relative image paths are resolved against the JSON file's directory
func loadSequence(file string) ([]frame, error) {

	buf, err := os.ReadFile(file)

	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	var raw []jsonFrame

	if err := json.Unmarshal(buf, &raw); err != nil {
		return nil, fmt.Errorf("error parsing sequence: %w", err)
	}

	dir := filepath.Dir(file)

	frames := make([]frame, len(raw))

	for i, f := range raw {

		frames[i].Depth = resolvePath(dir, f.Depth)

		if f.Image != "" {
			frames[i].Image = resolvePath(dir, f.Image)
		}

		for j, d := range f.Detections {

			det := result.Detection{
				ID:    int64(j + 1),
				Class: d.Class,
				Score: d.Score,
				Box: result.Box2D{
					CenterX: d.Box.CX,
					CenterY: d.Box.CY,
					SizeX:   d.Box.W,
					SizeY:   d.Box.H,
				},
			}

			for _, kp := range d.KeyPoints {
				det.KeyPoints = append(det.KeyPoints, result.KeyPoint{
					ID:    kp.ID,
					X:     kp.X,
					Y:     kp.Y,
					Score: kp.Score,
				})
			}

			frames[i].Detections = append(frames[i].Detections, det)
		}
	}

	return frames, nil
}

// resolvePath resolves a possibly relative path against the base directory
func resolvePath(dir, path string) string {

	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(dir, path)
}

// className returns the class name for the given index
func className(classNames []string, class int) string {

	if class >= 0 && class < len(classNames) {
		return classNames[class]
	}

	return fmt.Sprintf("%d", class)
}
