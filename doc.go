/*
go-detect3d lifts 2D object detections into 3D positions using a
co-registered depth image and the depth camera's pinhole calibration.
Detections produced by an image space detector (bounding boxes and optional
skeletal keypoints) are combined with a depth frame to estimate a metric 3D
bounding box and 3D keypoints, which are then expressed in a chosen target
reference frame through a rigid body transform.

The Pipeline in this package orchestrates the per frame work.  The numeric
kernels live in the subpackages: camera holds the depth frame and intrinsic
calibration types, project performs depth ROI sampling, robust center
estimation and pinhole back projection, and transform applies the
quaternion rotation and translation into the target frame.  The tracker and
render subpackages follow objects across frames and draw annotated output
images.

See example code and usage in the example subdirectory.
*/
package detect3d
