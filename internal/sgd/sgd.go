// Package sgd implements differentially private stochastic gradient descent
// for logistic regression.
//
// Each iteration samples a batch without replacement, clips every
// per-example gradient to L2 norm ClipNorm, adds Gaussian noise with standard
// deviation NoiseMultiplier*ClipNorm to each coordinate of the clipped sum,
// averages over the batch and takes one descent step. The parameter vector
// has an intercept in position 0.
package sgd

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/roach88/dpvalidate/internal/errs"
)

// Config holds the DP-SGD hyperparameters.
type Config struct {
	LearningRate    float64
	NoiseMultiplier float64
	ClipNorm        float64
	BatchSize       int
	Iterations      int
}

// Validate checks every hyperparameter against a dataset of n records.
func (c Config) Validate(n int) error {
	switch {
	case !(c.LearningRate > 0) || math.IsInf(c.LearningRate, 0):
		return errs.Prepend("learning_rate", errs.Invalid("must be positive and finite, got %v", c.LearningRate))
	case !(c.NoiseMultiplier >= 0) || math.IsInf(c.NoiseMultiplier, 0):
		return errs.Prepend("noise_multiplier", errs.Invalid("must be non-negative and finite, got %v", c.NoiseMultiplier))
	case !(c.ClipNorm > 0) || math.IsInf(c.ClipNorm, 0):
		return errs.Prepend("clip_norm", errs.Invalid("must be positive and finite, got %v", c.ClipNorm))
	case c.BatchSize < 1 || c.BatchSize > n:
		return errs.Prepend("batch_size", errs.Invalid("must be between 1 and %d, got %d", n, c.BatchSize))
	case c.Iterations < 1:
		return errs.Prepend("iterations", errs.Invalid("must be positive, got %d", c.Iterations))
	}
	return nil
}

// Dataset is a row-major feature matrix with binary labels.
type Dataset struct {
	X [][]float64
	Y []float64
}

// NumFeatures returns the number of feature columns.
func (d Dataset) NumFeatures() int {
	if len(d.X) == 0 {
		return 0
	}
	return len(d.X[0])
}

// Validate checks that the dataset is non-empty, rectangular and finite,
// with one label in [0, 1] per row.
func (d Dataset) Validate() error {
	if len(d.X) == 0 {
		return errs.Prepend("data", errs.Shape("dataset is empty"))
	}
	if len(d.Y) != len(d.X) {
		return errs.Prepend("labels", errs.Shape("got %d labels for %d rows", len(d.Y), len(d.X)))
	}
	width := len(d.X[0])
	for i, row := range d.X {
		if len(row) != width {
			return errs.Prepend("data", errs.Shape("row %d has %d features, expected %d", i, len(row), width))
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errs.Prepend("data", errs.Invalid("row %d contains a non-finite feature", i))
			}
		}
	}
	for i, y := range d.Y {
		if !(y >= 0 && y <= 1) {
			return errs.Prepend("labels", errs.Invalid("label %d is %v, must be in [0, 1]", i, y))
		}
	}
	return nil
}

// Run trains a logistic regression from theta0 and returns the parameter
// vector after every iteration.
//
// theta0 must have NumFeatures()+1 entries. The same rng state always
// yields the same trajectory.
func Run(data Dataset, theta0 []float64, cfg Config, rng *rand.Rand) ([][]float64, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if want := data.NumFeatures() + 1; len(theta0) != want {
		return nil, errs.Prepend("theta", errs.Shape("has %d entries, expected %d", len(theta0), want))
	}
	if err := cfg.Validate(len(data.X)); err != nil {
		return nil, err
	}

	sigma := cfg.NoiseMultiplier * cfg.ClipNorm
	theta := slices.Clone(theta0)
	trajectory := make([][]float64, 0, cfg.Iterations)
	sum := make([]float64, len(theta))
	grad := make([]float64, len(theta))

	for range cfg.Iterations {
		clear(sum)
		for _, i := range rng.Perm(len(data.X))[:cfg.BatchSize] {
			gradient(grad, theta, data.X[i], data.Y[i])
			clip(grad, cfg.ClipNorm)
			for j := range sum {
				sum[j] += grad[j]
			}
		}
		for j := range theta {
			noisy := sum[j]
			if sigma > 0 {
				noisy += rng.NormFloat64() * sigma
			}
			theta[j] -= cfg.LearningRate * noisy / float64(cfg.BatchSize)
		}
		trajectory = append(trajectory, slices.Clone(theta))
	}
	return trajectory, nil
}

// Predict returns the modelled probability that the label of x is 1.
func Predict(theta, x []float64) float64 {
	return sigmoid(linear(theta, x))
}

// gradient writes the gradient of the negative log-likelihood of one
// example into out: (sigmoid(theta.x~) - y) * x~, where x~ = [1, x...].
func gradient(out, theta, x []float64, y float64) {
	residual := sigmoid(linear(theta, x)) - y
	out[0] = residual
	for j, v := range x {
		out[j+1] = residual * v
	}
}

// clip scales g in place so its L2 norm is at most bound.
func clip(g []float64, bound float64) {
	var sq float64
	for _, v := range g {
		sq += v * v
	}
	norm := math.Sqrt(sq)
	if norm <= bound {
		return
	}
	scale := bound / norm
	for j := range g {
		g[j] *= scale
	}
}

func linear(theta, x []float64) float64 {
	z := theta[0]
	for j, v := range x {
		z += theta[j+1] * v
	}
	return z
}

// sigmoid avoids overflow of exp for large |z|.
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
