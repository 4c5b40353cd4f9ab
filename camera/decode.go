package camera

import (
	"encoding/binary"
	"fmt"
	"math"

	"gocv.io/x/gocv"
)

// Depth image encodings supported by DecodeRaw, matching the encoding
// strings declared by common depth camera drivers
const (
	// Encoding16UC1 is unsigned 16 bit integer depth, little endian
	Encoding16UC1 = "16UC1"
	// Encoding32FC1 is IEEE single precision float depth
	Encoding32FC1 = "32FC1"
	// Encoding16FC1 is IEEE half precision float depth
	Encoding16FC1 = "16FC1"
)

// DecodeRaw converts a raw depth image buffer in the given encoding into a
// DepthFrame of raw sensor units
func DecodeRaw(encoding string, width, height int, buf []byte) (*DepthFrame, error) {

	var sampleSize int

	switch encoding {
	case Encoding16UC1, Encoding16FC1:
		sampleSize = 2
	case Encoding32FC1:
		sampleSize = 4
	default:
		return nil, fmt.Errorf("unsupported depth encoding %q", encoding)
	}

	if len(buf) != width*height*sampleSize {
		return nil, fmt.Errorf("depth buffer length %d does not match %dx%d %s image",
			len(buf), width, height, encoding)
	}

	data := make([]float32, width*height)

	switch encoding {
	case Encoding16UC1:
		for i := range data {
			data[i] = float32(binary.LittleEndian.Uint16(buf[i*2:]))
		}

	case Encoding16FC1:
		for i := range data {
			data[i] = f16LookupTable[binary.LittleEndian.Uint16(buf[i*2:])]
		}

	case Encoding32FC1:
		for i := range data {
			data[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		}
	}

	return NewDepthFrame(width, height, data)
}

// MatDecoder decodes a gocv.Mat holding a depth image into a DepthFrame.
// It satisfies the pipeline's DepthDecoder collaborator interface
type MatDecoder struct{}

// Decode converts the depth Mat into a DepthFrame of raw sensor units.
// 16 bit unsigned and 32 bit float single channel Mats are supported, the
// formats depth cameras commonly deliver
func (MatDecoder) Decode(img gocv.Mat) (*DepthFrame, error) {

	if img.Empty() {
		return nil, fmt.Errorf("depth image is empty")
	}

	width := img.Cols()
	height := img.Rows()

	switch img.Type() {
	case gocv.MatTypeCV16U:
		raw, err := img.DataPtrUint16()

		if err != nil {
			return nil, fmt.Errorf("error reading 16 bit depth data: %w", err)
		}

		data := make([]float32, len(raw))

		for i, s := range raw {
			data[i] = float32(s)
		}

		return NewDepthFrame(width, height, data)

	case gocv.MatTypeCV32F:
		raw, err := img.DataPtrFloat32()

		if err != nil {
			return nil, fmt.Errorf("error reading float depth data: %w", err)
		}

		// copy out of the Mat's backing buffer so the frame stays valid
		// after the Mat is closed
		data := make([]float32, len(raw))
		copy(data, raw)

		return NewDepthFrame(width, height, data)
	}

	return nil, fmt.Errorf("unsupported depth Mat type %d", img.Type())
}
