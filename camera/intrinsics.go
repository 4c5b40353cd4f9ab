package camera

// Intrinsics holds the pinhole calibration parameters of the depth camera
// used to relate pixel coordinates to camera frame 3D coordinates.  Values
// are supplied per frame by the camera driver and are immutable
type Intrinsics struct {
	// Fx and Fy are the focal lengths in pixels
	Fx, Fy float64
	// Px and Py are the principal point coordinates in pixels
	Px, Py float64
	// Width and Height are the image dimensions in pixels
	Width, Height int
}
