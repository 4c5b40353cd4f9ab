package tracker

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestInitiate(t *testing.T) {

	kf := NewKalmanFilter(1.0/20, 1.0/160)

	s := kf.Initiate(r3.Vec{X: 1, Y: 2, Z: 3})

	pos := s.Position()

	if pos.X != 1 || pos.Y != 2 || pos.Z != 3 {
		t.Errorf("expected position (1,2,3), got %+v", pos)
	}

	vel := s.Velocity()

	if vel.X != 0 || vel.Y != 0 || vel.Z != 0 {
		t.Errorf("expected zero velocity, got %+v", vel)
	}
}

func TestPredictConstantVelocity(t *testing.T) {

	kf := NewKalmanFilter(1.0/20, 1.0/160)

	s := kf.Initiate(r3.Vec{X: 1})

	// give the state a velocity and step it forward
	s.mean.SetVec(3, 0.5)

	kf.Predict(s)

	pos := s.Position()

	if math.Abs(pos.X-1.5) > 1e-9 {
		t.Errorf("expected x position 1.5 after predict, got %f", pos.X)
	}

	if math.Abs(pos.Y) > 1e-9 || math.Abs(pos.Z) > 1e-9 {
		t.Errorf("expected y and z unchanged, got %+v", pos)
	}
}

func TestUpdatePullsTowardMeasurement(t *testing.T) {

	kf := NewKalmanFilter(1.0/20, 1.0/160)

	s := kf.Initiate(r3.Vec{X: 1})

	kf.Predict(s)

	if err := kf.Update(s, r3.Vec{X: 2}); err != nil {
		t.Fatalf("expected update to succeed, got %v", err)
	}

	pos := s.Position()

	// corrected position lies strictly between the prediction and the
	// measurement
	if pos.X <= 1 || pos.X >= 2 {
		t.Errorf("expected x between 1 and 2, got %f", pos.X)
	}
}

func TestUpdateConvergesToStationaryMeasurement(t *testing.T) {

	kf := NewKalmanFilter(1.0/20, 1.0/160)

	target := r3.Vec{X: 2, Y: -1, Z: 4}

	s := kf.Initiate(r3.Vec{X: 1})

	for i := 0; i < 50; i++ {
		kf.Predict(s)

		if err := kf.Update(s, target); err != nil {
			t.Fatalf("update %d failed: %v", i, err)
		}
	}

	pos := s.Position()

	if r3.Norm(r3.Sub(pos, target)) > 0.05 {
		t.Errorf("expected convergence to %+v, got %+v", target, pos)
	}
}

func TestUpdateEstimatesVelocity(t *testing.T) {

	kf := NewKalmanFilter(1.0/20, 1.0/160)

	// feed a target moving 0.1m per frame along x
	s := kf.Initiate(r3.Vec{})

	for i := 1; i <= 50; i++ {
		kf.Predict(s)

		if err := kf.Update(s, r3.Vec{X: 0.1 * float64(i)}); err != nil {
			t.Fatalf("update %d failed: %v", i, err)
		}
	}

	vel := s.Velocity()

	if math.Abs(vel.X-0.1) > 0.02 {
		t.Errorf("expected x velocity near 0.1, got %f", vel.X)
	}
}
