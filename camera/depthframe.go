package camera

import (
	"fmt"
)

// DepthFrame is a single channel image of depth samples in raw sensor
// units, stored row major.  Conversion of raw units to meters is done by
// the consumer using its configured units divisor.  A DepthFrame is read
// only once created
type DepthFrame struct {
	width  int
	height int
	data   []float32
}

// NewDepthFrame creates a DepthFrame of the given dimensions wrapping the
// provided row major sample data
func NewDepthFrame(width, height int, data []float32) (*DepthFrame, error) {

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid depth frame dimensions %dx%d", width, height)
	}

	if len(data) != width*height {
		return nil, fmt.Errorf("depth data length %d does not match dimensions %dx%d",
			len(data), width, height)
	}

	return &DepthFrame{
		width:  width,
		height: height,
		data:   data,
	}, nil
}

// Width returns the frame width in pixels
func (f *DepthFrame) Width() int {
	return f.width
}

// Height returns the frame height in pixels
func (f *DepthFrame) Height() int {
	return f.height
}

// At returns the raw depth sample at column x and row y.  Coordinates must
// be inside the frame bounds
func (f *DepthFrame) At(x, y int) float32 {
	return f.data[y*f.width+x]
}

// Contains reports whether the pixel coordinate lies inside the frame bounds
func (f *DepthFrame) Contains(x, y int) bool {
	return x >= 0 && x < f.width && y >= 0 && y < f.height
}
