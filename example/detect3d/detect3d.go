package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/swdee/go-detect3d"
	"github.com/swdee/go-detect3d/camera"
	"github.com/swdee/go-detect3d/render"
	"github.com/swdee/go-detect3d/result"
	"github.com/swdee/go-detect3d/transform"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// TTFFontSize is the size of the optional TTF font used for range
	// labels
	TTFFontSize = 20
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	depthFile := flag.String("d", "../data/room-depth.png", "Depth image file (16 bit PNG in raw sensor units)")
	imgFile := flag.String("i", "../data/room.jpg", "Color image file to annotate")
	jsonFile := flag.String("j", "../data/room-detections.json", "JSON file of 2D detections from the object detector")
	labelFile := flag.String("l", "../data/coco_80_labels_list.txt", "Text file containing model labels")
	saveFile := flag.String("o", "../data/room-out.jpg", "The output JPG file with detection markers")
	ttfFont := flag.String("f", "", "Optional TTF font file for drawing range labels")

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

	// load in Model class names
	classNames, err := detect3d.LoadLabels(*labelFile)

	if err != nil {
		log.Fatal("Error loading model labels: ", err)
	}

	// load detections produced by the 2D detector
	detections, err := loadDetections(*jsonFile)

	if err != nil {
		log.Fatal("Error loading detections: ", err)
	}

	// load depth image preserving its bit depth
	depthImg := gocv.IMRead(*depthFile, gocv.IMReadAnyDepth)

	if depthImg.Empty() {
		log.Fatal("Error reading depth image from: ", *depthFile)
	}

	defer depthImg.Close()

	info := camera.Intrinsics{
		Fx:     *fx,
		Fy:     *fy,
		Px:     *px,
		Py:     *py,
		Width:  depthImg.Cols(),
		Height: depthImg.Rows(),
	}

	// the camera is statically mounted so a fixed transform supplied on
	// the command line stands in for a live transform tree
	lookup := transform.StaticLookup{
		*camFrame: transform.Rigid{
			Translation: r3.Vec{X: *tx, Y: *ty, Z: *tz},
			Rotation:    quat.Number{Real: *qw, Imag: *qx, Jmag: *qy, Kmag: *qz},
		},
	}

	params := detect3d.DefaultParams()
	params.TargetFrame = *targetFrame

	pipeline := detect3d.NewPipeline(params, lookup, camera.MatDecoder{})

	// project the detections into the target frame
	detections3d := pipeline.ProcessMat(detections, depthImg, info, *camFrame)

	log.Printf("resolved %d of %d detections\n", len(detections3d), len(detections))

	for _, det := range detections3d {
		box := det.BBox3D
		log.Printf("  %s %.2f at (%.2f, %.2f, %.2f) size (%.2f, %.2f, %.2f) in %s\n",
			className(classNames, det.Class), det.Score,
			box.Center.X, box.Center.Y, box.Center.Z,
			box.Size.X, box.Size.Y, box.Size.Z, box.FrameID)

		if det.KeyPoints3D != nil {
			log.Printf("    %d of %d keypoints resolved\n",
				len(det.KeyPoints3D.Data), len(det.KeyPoints))
		}
	}

	// annotate the color image
	img := gocv.IMRead(*imgFile, gocv.IMReadColor)

	if img.Empty() {
		log.Fatal("Error reading image from: ", *imgFile)
	}

	defer img.Close()

	render.DetectionBoxes(&img, detections3d, classNames, render.DefaultFont(), 2)
	render.PoseKeyPoints(&img, detections3d, 1)

	// optionally draw range labels with a TTF font below each box
	if *ttfFont != "" {

		ttf, err := render.LoadTTF(*ttfFont, TTFFontSize)

		if err != nil {
			log.Fatal("Error initializing font face: ", err)
		}

		for _, det := range detections3d {
			text := fmt.Sprintf("%.2fm", det.BBox3D.Center.Z)
			x := int(det.Box.CenterX - det.Box.SizeX/2)
			y := int(det.Box.CenterY+det.Box.SizeY/2) + int(ttf.Size())

			if err := ttf.PutText(&img, text, x, y, render.White); err != nil {
				log.Fatal("Error drawing label: ", err)
			}
		}
	}

	if ok := gocv.IMWrite(*saveFile, img); !ok {
		log.Fatal("Failed to save image to: ", *saveFile)
	}

	log.Println("Saved annotated image to:", *saveFile)
}

// jsonKeyPoint is the on disk representation of a 2D keypoint
type jsonKeyPoint struct {
	ID    int     `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score float32 `json:"score"`
}

// jsonDetection is the on disk representation of a 2D detection
type jsonDetection struct {
	Class int     `json:"class"`
	Score float32 `json:"score"`
	Box   struct {
		CX float64 `json:"cx"`
		CY float64 `json:"cy"`
		W  float64 `json:"w"`
		H  float64 `json:"h"`
	} `json:"box"`
	KeyPoints []jsonKeyPoint `json:"keypoints"`
}

// loadDetections reads the 2D detector output from a JSON file
func loadDetections(file string) ([]result.Detection, error) {

	buf, err := os.ReadFile(file)

	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	var raw []jsonDetection

	if err := json.Unmarshal(buf, &raw); err != nil {
		return nil, fmt.Errorf("error parsing detections: %w", err)
	}

	detections := make([]result.Detection, len(raw))

	for i, d := range raw {

		detections[i] = result.Detection{
			ID:    int64(i + 1),
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
			detections[i].KeyPoints = append(detections[i].KeyPoints,
				result.KeyPoint{
					ID:    kp.ID,
					X:     kp.X,
					Y:     kp.Y,
					Score: kp.Score,
				})
		}
	}

	return detections, nil
}

// className returns the class name for the given index
func className(classNames []string, class int) string {

	if class >= 0 && class < len(classNames) {
		return classNames[class]
	}

	return fmt.Sprintf("%d", class)
}

