package tracker

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
)

// ErrFactorize is returned when the projected covariance of a track is not
// positive definite
var ErrFactorize = errors.New("failed to factorize projected covariance")

// Track is the Kalman state of one point, a 1x4 mean [x y vx vy] and its
// 4x4 covariance
type Track struct {
	mean *mat.VecDense
	cov  *mat.Dense
}

// Position returns the filtered location of the track
func (t *Track) Position() r2.Vec {
	return r2.Vec{X: t.mean.AtVec(0), Y: t.mean.AtVec(1)}
}

// Velocity returns the estimated movement per frame
func (t *Track) Velocity() r2.Vec {
	return r2.Vec{X: t.mean.AtVec(2), Y: t.mean.AtVec(3)}
}

// KalmanFilter is a constant velocity Kalman filter over a 2D point
type KalmanFilter struct {
	stdWeightPosition float64
	stdWeightVelocity float64
	motionMat         *mat.Dense
	updateMat         *mat.Dense
}

// NewKalmanFilter initializes and returns a new KalmanFilter.  The weights
// are the standard deviation of position and velocity noise per frame in
// the units of the measured points.
func NewKalmanFilter(stdWeightPosition, stdWeightVelocity float64) *KalmanFilter {

	ndim := 2
	dt := 1.0

	// identity with velocity added to position each step
	motionMat := mat.NewDense(4, 4, nil)

	for i := 0; i < 4; i++ {
		motionMat.Set(i, i, 1.0)
	}

	for i := 0; i < ndim; i++ {
		motionMat.Set(i, ndim+i, dt)
	}

	// updateMat observes position only
	updateMat := mat.NewDense(2, 4, nil)

	for i := 0; i < ndim; i++ {
		updateMat.Set(i, i, 1.0)
	}

	return &KalmanFilter{
		stdWeightPosition: stdWeightPosition,
		stdWeightVelocity: stdWeightVelocity,
		motionMat:         motionMat,
		updateMat:         updateMat,
	}
}

// Initiate starts a track at measurement with zero velocity
func (kf *KalmanFilter) Initiate(measurement r2.Vec) *Track {

	mean := mat.NewVecDense(4, []float64{measurement.X, measurement.Y, 0, 0})

	std := []float64{
		2 * kf.stdWeightPosition,  // x position
		2 * kf.stdWeightPosition,  // y position
		10 * kf.stdWeightVelocity, // x velocity
		10 * kf.stdWeightVelocity, // y velocity
	}

	cov := mat.NewDense(4, 4, nil)

	for i, v := range std {
		cov.Set(i, i, v*v)
	}

	return &Track{mean: mean, cov: cov}
}

// Predict advances the track one frame
func (kf *KalmanFilter) Predict(t *Track) {

	std := []float64{
		kf.stdWeightPosition,
		kf.stdWeightPosition,
		kf.stdWeightVelocity,
		kf.stdWeightVelocity,
	}

	// motion noise covariance with variances on the diagonal
	motionCov := mat.NewDense(4, 4, nil)

	for i, v := range std {
		motionCov.Set(i, i, v*v)
	}

	mean := mat.NewVecDense(4, nil)
	mean.MulVec(kf.motionMat, t.mean)
	t.mean = mean

	var cov mat.Dense
	cov.Mul(kf.motionMat, t.cov)
	cov.Mul(&cov, kf.motionMat.T())
	cov.Add(&cov, motionCov)

	t.cov = &cov
}

// Update corrects the track with a new measurement
func (kf *KalmanFilter) Update(t *Track, measurement r2.Vec) error {

	projectedMean, projectedCov := kf.project(t)

	chol := mat.Cholesky{}

	if ok := chol.Factorize(projectedCov); !ok {
		return ErrFactorize
	}

	// B = P H^T, solving S X = B^T gives X = K^T
	var B mat.Dense
	B.Mul(t.cov, kf.updateMat.T())

	var kalmanGainT mat.Dense

	if err := chol.SolveTo(&kalmanGainT, B.T()); err != nil {
		return fmt.Errorf("failed to compute kalman gain: %w", err)
	}

	innovation := mat.NewVecDense(2, []float64{
		measurement.X - projectedMean.AtVec(0),
		measurement.Y - projectedMean.AtVec(1),
	})

	var correction mat.VecDense
	correction.MulVec(kalmanGainT.T(), innovation)

	mean := mat.NewVecDense(4, nil)
	mean.AddVec(t.mean, &correction)
	t.mean = mean

	// P = P - K S K^T
	var ks mat.Dense
	ks.Mul(kalmanGainT.T(), projectedCov)

	var kskt mat.Dense
	kskt.Mul(&ks, &kalmanGainT)

	var cov mat.Dense
	cov.Sub(t.cov, &kskt)
	t.cov = &cov

	return nil
}

// project maps the track state into measurement space
func (kf *KalmanFilter) project(t *Track) (*mat.VecDense, *mat.SymDense) {

	projectedMean := mat.NewVecDense(2, nil)
	projectedMean.MulVec(kf.updateMat, t.mean)

	var temp mat.Dense
	temp.Mul(kf.updateMat, t.cov)

	var temp2 mat.Dense
	temp2.Mul(&temp, kf.updateMat.T())

	projectedCov := mat.NewSymDense(2, nil)

	for i := 0; i < 2; i++ {
		for j := i; j < 2; j++ {
			projectedCov.SetSym(i, j, temp2.At(i, j))
		}
		// measurement noise
		projectedCov.SetSym(i, i, projectedCov.At(i, i)+kf.stdWeightPosition*kf.stdWeightPosition)
	}

	return projectedMean, projectedCov
}
