package tracker

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// State holds a track's estimated state, the mean vector
// [x y z vx vy vz] in meters and meters per frame, and its covariance
type State struct {
	mean *mat.VecDense
	cov  *mat.Dense
}

// Position returns the estimated position in meters
func (s *State) Position() r3.Vec {
	return r3.Vec{
		X: s.mean.AtVec(0),
		Y: s.mean.AtVec(1),
		Z: s.mean.AtVec(2),
	}
}

// Velocity returns the estimated velocity in meters per frame
func (s *State) Velocity() r3.Vec {
	return r3.Vec{
		X: s.mean.AtVec(3),
		Y: s.mean.AtVec(4),
		Z: s.mean.AtVec(5),
	}
}

// KalmanFilter implements a constant velocity Kalman filter over 3D
// positions used to smooth and predict track motion between frames
type KalmanFilter struct {
	stdWeightPosition float64
	stdWeightVelocity float64
	motionMat         *mat.Dense
	updateMat         *mat.Dense
}

// NewKalmanFilter initializes and returns a new KalmanFilter
func NewKalmanFilter(stdWeightPosition, stdWeightVelocity float64) *KalmanFilter {

	ndim := 3
	dt := 1.0

	// create the constant velocity motion matrix, identity with dt terms
	// coupling position to velocity
	motionMat := mat.NewDense(6, 6, nil)

	for i := 0; i < 6; i++ {
		motionMat.Set(i, i, 1.0)
	}

	for i := 0; i < ndim; i++ {
		motionMat.Set(i, ndim+i, dt)
	}

	// create updateMat as a 3x6 matrix projecting state to measurement
	// space, only positions are observed
	updateMat := mat.NewDense(3, 6, nil)

	for i := 0; i < 3; i++ {
		updateMat.Set(i, i, 1.0)
	}

	return &KalmanFilter{
		stdWeightPosition: stdWeightPosition,
		stdWeightVelocity: stdWeightVelocity,
		motionMat:         motionMat,
		updateMat:         updateMat,
	}
}

// Initiate creates a track state from an initial position measurement
func (kf *KalmanFilter) Initiate(measurement r3.Vec) *State {

	mean := mat.NewVecDense(6, []float64{
		measurement.X, measurement.Y, measurement.Z,
		0, 0, 0,
	})

	// initialize the standard deviations for the state variables
	std := [6]float64{
		2 * kf.stdWeightPosition,
		2 * kf.stdWeightPosition,
		2 * kf.stdWeightPosition,
		10 * kf.stdWeightVelocity,
		10 * kf.stdWeightVelocity,
		10 * kf.stdWeightVelocity,
	}

	// set the diagonal elements of the covariance matrix to the variances
	cov := mat.NewDense(6, 6, nil)

	for i, v := range std {
		cov.Set(i, i, v*v)
	}

	return &State{
		mean: mean,
		cov:  cov,
	}
}

// Predict advances the state mean and covariance one frame through the
// constant velocity motion model
func (kf *KalmanFilter) Predict(s *State) {

	// motion noise variances for position and velocity components
	std := [6]float64{
		kf.stdWeightPosition,
		kf.stdWeightPosition,
		kf.stdWeightPosition,
		kf.stdWeightVelocity,
		kf.stdWeightVelocity,
		kf.stdWeightVelocity,
	}

	motionCov := mat.NewDense(6, 6, nil)

	for i, v := range std {
		motionCov.Set(i, i, v*v)
	}

	// predict the next state mean using the motion model
	next := mat.NewVecDense(6, nil)
	next.MulVec(kf.motionMat, s.mean)
	s.mean = next

	// predict the next state covariance using the motion model
	cov := mat.NewDense(6, 6, nil)
	cov.Mul(kf.motionMat, s.cov)
	cov.Mul(cov, kf.motionMat.T())
	cov.Add(cov, motionCov)
	s.cov = cov
}

// Update corrects the state mean and covariance with a position measurement
func (kf *KalmanFilter) Update(s *State, measurement r3.Vec) error {

	// project the state mean and covariance to measurement space
	projectedMean, projectedCov := kf.project(s)

	// perform Cholesky factorization of the projected covariance matrix
	chol := mat.Cholesky{}

	if ok := chol.Factorize(projectedCov); !ok {
		return errors.New("failed to factorize projected covariance")
	}

	// compute the matrix B for Kalman gain calculation
	B := mat.NewDense(6, 3, nil)
	B.Mul(s.cov, kf.updateMat.T())

	// compute the Kalman gain using the Cholesky factorization
	var kalmanGain mat.Dense
	err := chol.SolveTo(&kalmanGain, B.T())

	if err != nil {
		return fmt.Errorf("failed to compute kalman gain: %w", err)
	}

	// compute the innovation (measurement residual)
	innovation := mat.NewVecDense(3, []float64{
		measurement.X - projectedMean.AtVec(0),
		measurement.Y - projectedMean.AtVec(1),
		measurement.Z - projectedMean.AtVec(2),
	})

	// update the state mean with the innovation
	corr := mat.NewVecDense(6, nil)
	corr.MulVec(kalmanGain.T(), innovation)
	s.mean.AddVec(s.mean, corr)

	// update the state covariance
	temp := mat.NewDense(6, 3, nil)
	temp.Mul(kalmanGain.T(), projectedCov)

	temp2 := mat.NewDense(6, 6, nil)
	temp2.Mul(temp, &kalmanGain)

	newCov := mat.NewDense(6, 6, nil)
	newCov.Sub(s.cov, temp2)
	s.cov = newCov

	return nil
}

// project projects the state mean and covariance to measurement space
func (kf *KalmanFilter) project(s *State) (*mat.VecDense, *mat.SymDense) {

	// measurement noise variances
	v := kf.stdWeightPosition * kf.stdWeightPosition

	innovationCov := mat.NewSymDense(3, nil)

	for i := 0; i < 3; i++ {
		innovationCov.SetSym(i, i, v)
	}

	// project the state mean to measurement space
	projectedMean := mat.NewVecDense(3, nil)
	projectedMean.MulVec(kf.updateMat, s.mean)

	// project the state covariance to measurement space
	temp := mat.NewDense(3, 6, nil)
	temp.Mul(kf.updateMat, s.cov)

	temp2 := mat.NewDense(3, 3, nil)
	temp2.Mul(temp, kf.updateMat.T())

	projectedCov := mat.NewSymDense(3, nil)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			projectedCov.SetSym(i, j, temp2.At(i, j))
		}
	}

	// add the measurement noise to the projected covariance
	projectedCov.AddSym(projectedCov, innovationCov)

	return projectedMean, projectedCov
}
