package tracker

import (
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
)

// floatsEqual compares slices of float64
func floatsEqual(a, b []float64, epsilon float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if diff := a[i] - b[i]; diff > epsilon || diff < -epsilon {
			return false
		}
	}
	return true
}

// matricesEqual compare matrices
func matricesEqual(a, b mat.Matrix, epsilon float64) bool {
	r1, c1 := a.Dims()
	r2, c2 := b.Dims()

	if r1 != r2 || c1 != c2 {
		return false
	}

	for i := 0; i < r1; i++ {
		for j := 0; j < c1; j++ {
			if diff := a.At(i, j) - b.At(i, j); diff > epsilon || diff < -epsilon {
				return false
			}
		}
	}

	return true
}

// TestKalmanFilter checks one initiate, predict and update cycle against
// values worked out by hand, each axis is independent
func TestKalmanFilter(t *testing.T) {
	kf := NewKalmanFilter(0.05, 0.0125)

	track := kf.Initiate(r2.Vec{X: 0.5, Y: 0.4})

	expectedCovarianceInit := mat.NewDense(4, 4, []float64{
		0.01, 0, 0, 0,
		0, 0.01, 0, 0,
		0, 0, 0.015625, 0,
		0, 0, 0, 0.015625,
	})

	if !floatsEqual(track.mean.RawVector().Data, []float64{0.5, 0.4, 0, 0}, 1e-9) {
		t.Errorf("expected initial mean [0.5 0.4 0 0], got %v", track.mean.RawVector().Data)
	}

	if !matricesEqual(track.cov, expectedCovarianceInit, 1e-9) {
		t.Errorf("expected covariance %v, got %v",
			mat.Formatted(expectedCovarianceInit, mat.Prefix(""), mat.Excerpt(0)),
			mat.Formatted(track.cov, mat.Prefix(""), mat.Excerpt(0)),
		)
	}

	kf.Predict(track)

	expectedCovariancePredict := mat.NewDense(4, 4, []float64{
		0.028125, 0, 0.015625, 0,
		0, 0.028125, 0, 0.015625,
		0.015625, 0, 0.01578125, 0,
		0, 0.015625, 0, 0.01578125,
	})

	if !floatsEqual(track.mean.RawVector().Data, []float64{0.5, 0.4, 0, 0}, 1e-9) {
		t.Errorf("predict with zero velocity moved the mean: %v", track.mean.RawVector().Data)
	}

	if !matricesEqual(track.cov, expectedCovariancePredict, 1e-9) {
		t.Errorf("expected covariance %v, got %v",
			mat.Formatted(expectedCovariancePredict, mat.Prefix(""), mat.Excerpt(0)),
			mat.Formatted(track.cov, mat.Prefix(""), mat.Excerpt(0)),
		)
	}

	if err := kf.Update(track, r2.Vec{X: 0.52, Y: 0.38}); err != nil {
		t.Fatalf("failed to update: %v", err)
	}

	expectedMeanUpdate := []float64{0.518367347, 0.381632653, 0.010204082, -0.010204082}

	expectedCovarianceUpdate := mat.NewDense(4, 4, []float64{
		0.002295918, 0, 0.001275510, 0,
		0, 0.002295918, 0, 0.001275510,
		0.001275510, 0, 0.007809311, 0,
		0, 0.001275510, 0, 0.007809311,
	})

	if !floatsEqual(track.mean.RawVector().Data, expectedMeanUpdate, 1e-6) {
		t.Errorf("expected mean %v, got %v", expectedMeanUpdate, track.mean.RawVector().Data)
	}

	if !matricesEqual(track.cov, expectedCovarianceUpdate, 1e-6) {
		t.Errorf("expected covariance %v, got %v",
			mat.Formatted(expectedCovarianceUpdate, mat.Prefix(""), mat.Excerpt(0)),
			mat.Formatted(track.cov, mat.Prefix(""), mat.Excerpt(0)),
		)
	}

	if v := track.Velocity(); v.X <= 0 || v.Y >= 0 {
		t.Errorf("velocity should follow the measurement, got %v", v)
	}
}
