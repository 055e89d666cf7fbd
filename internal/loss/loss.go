// Package loss provides the loss used to train Q-value networks.
package loss

import "gonum.org/v1/gonum/floats"

// BackwardInPlacer is an optional interface for loss functions that support
// in-place gradient computation to avoid allocations.
type BackwardInPlacer interface {
	BackwardInPlace(yPred, yTrue, grad []float64)
}

// Loss is a loss function with derivative.
type Loss interface {
	// Forward computes the loss between predicted and true values.
	Forward(yPred, yTrue []float64) float64

	// Backward computes the gradient of the loss w.r.t. prediction.
	Backward(yPred, yTrue []float64) []float64
}

// MSE (Mean Squared Error) loss.
//
// The gradient is the unnormalised 2 * (y_pred - y_true); the 1/n factor of
// the loss itself is not carried into backpropagation.
type MSE struct{}

// Forward computes mean squared error: (1/n) * sum((y_true - y_pred)^2)
func (m MSE) Forward(yPred, yTrue []float64) float64 {
	n := len(yPred)
	if n != len(yTrue) {
		panic("MSE: prediction and target must have same length")
	}
	if n == 0 {
		return 0
	}

	diff := make([]float64, n)
	floats.SubTo(diff, yTrue, yPred)
	return floats.Dot(diff, diff) / float64(n)
}

// Backward computes gradient: dL/dy_pred = 2 * (y_pred - y_true)
func (m MSE) Backward(yPred, yTrue []float64) []float64 {
	grad := make([]float64, len(yPred))
	m.BackwardInPlace(yPred, yTrue, grad)
	return grad
}

// BackwardInPlace computes gradient and stores it in the grad slice.
func (m MSE) BackwardInPlace(yPred, yTrue, grad []float64) {
	n := len(yPred)
	if n != len(yTrue) || n != len(grad) {
		panic("MSE: slices must have same length")
	}

	floats.SubTo(grad, yPred, yTrue)
	floats.Scale(2, grad)
}
