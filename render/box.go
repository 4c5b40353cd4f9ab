package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/swdee/go-detect3d/result"
	"github.com/swdee/go-detect3d/tracker"
)

// boxLabel holds the details for rendering a text label above a bounding
// box
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// DetectionBoxes renders the bounding boxes around the objects detected.
// Detections carrying a resolved 3D box get their range in meters appended
// to the class and score label
func DetectionBoxes(img *gocv.Mat, detections []result.Detection,
	classNames []string, font Font, lineThickness int) {

	// keep a record of all box labels for later rendering
	boxLabels := make([]boxLabel, 0)

	// draw detection boxes
	for i, det := range detections {

		// Get the color for this object
		colorIndex := i % len(classColors)
		useClr := classColors[colorIndex]

		rect := boxRect(det.Box)
		gocv.Rectangle(img, rect, useClr, lineThickness)

		// create text for label
		text := fmt.Sprintf("%s %.2f", className(classNames, det.Class), det.Score)

		if det.BBox3D != nil {
			text = fmt.Sprintf("%s %.2fm", text, det.BBox3D.Center.Z)
		}

		boxLabels = append(boxLabels,
			newBoxLabel(rect, text, useClr, font, lineThickness))
	}

	drawBoxLabels(img, boxLabels, font)
}

// TrackBoxes renders the bounding boxes around the objects being tracked,
// labelled with the class name, track id, and range in meters
func TrackBoxes(img *gocv.Mat, tracks []*tracker.Track,
	classNames []string, font Font, lineThickness int) {

	// keep a record of all box labels for later rendering
	boxLabels := make([]boxLabel, 0)

	for _, t := range tracks {

		// Get the color for this object, keyed by track id so it stays
		// stable across frames
		colorIndex := int(t.GetTrackID()) % len(classColors)
		useClr := classColors[colorIndex]

		rect := boxRect(t.GetDetection().Box)
		gocv.Rectangle(img, rect, useClr, lineThickness)

		// create text for label
		text := fmt.Sprintf("%s %d %.2fm", className(classNames, t.GetClass()),
			t.GetTrackID(), t.GetPosition().Z)

		boxLabels = append(boxLabels,
			newBoxLabel(rect, text, useClr, font, lineThickness))
	}

	drawBoxLabels(img, boxLabels, font)
}

// boxRect converts a center and size pixel box into an image.Rectangle
func boxRect(box result.Box2D) image.Rectangle {
	return image.Rect(
		int(box.CenterX-box.SizeX/2),
		int(box.CenterY-box.SizeY/2),
		int(box.CenterX+box.SizeX/2),
		int(box.CenterY+box.SizeY/2),
	)
}

// className returns the class name for the given index, falling back to
// the index number when no name list was provided
func className(classNames []string, class int) string {

	if class >= 0 && class < len(classNames) {
		return classNames[class]
	}

	return fmt.Sprintf("%d", class)
}

// newBoxLabel calculates the label text placement above the bounding box
func newBoxLabel(rect image.Rectangle, text string, clr color.RGBA,
	font Font, lineThickness int) boxLabel {

	textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

	// Calculate the alignment of text label
	var centerX int

	switch font.Alignment {
	case Center:
		centerX = (rect.Min.X + rect.Max.X) / 2

	case Right:
		centerX = rect.Max.X - (textSize.X / 2) - font.RightPad + (lineThickness / 2)

	case Left:
		fallthrough
	default:
		centerX = rect.Min.X + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
	}

	// Adjust the label position so the text is centered horizontally
	labelPosition := image.Pt(centerX-textSize.X/2, rect.Min.Y-font.BottomPad)

	// create box for placing text on
	bRect := image.Rect(centerX-textSize.X/2-font.LeftPad,
		rect.Min.Y-textSize.Y-font.TopPad-font.BottomPad,
		centerX+textSize.X/2+font.RightPad, rect.Min.Y)

	return boxLabel{
		rect:    bRect,
		clr:     clr,
		text:    text,
		textPos: labelPosition,
	}
}

// drawBoxLabels draws all precalculated box labels so they are the top most
// layer on the image and don't get overlapped by skeleton or trail lines
func drawBoxLabels(img *gocv.Mat, boxLabels []boxLabel, font Font) {

	for _, box := range boxLabels {
		// draw box text gets written on
		gocv.Rectangle(img, box.rect, box.clr, -1)

		// Draw the label over box
		gocv.PutTextWithParams(img, box.text, box.textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}
