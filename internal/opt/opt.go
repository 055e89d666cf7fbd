// Package opt provides the fixed-learning-rate, clipped gradient descent
// update used by trainable layers.
package opt

// DefaultClipValue bounds every gradient element before it is applied.
const DefaultClipValue = 5.0

// Clip limits x to [-limit, limit].
func Clip(x, limit float64) float64 {
	if x > limit {
		return limit
	}
	if x < -limit {
		return -limit
	}
	return x
}

// SGD (Stochastic Gradient Descent) optimizer.
// A ClipValue <= 0 disables clipping.
type SGD struct {
	LearningRate float64
	ClipValue    float64
}

// NewSGD returns an SGD step clipped to DefaultClipValue.
func NewSGD(learningRate float64) SGD {
	return SGD{LearningRate: learningRate, ClipValue: DefaultClipValue}
}

func (s SGD) clip(g float64) float64 {
	if s.ClipValue <= 0 {
		return g
	}
	return Clip(g, s.ClipValue)
}

// Step computes updated parameters: params - lr * clip(gradients)
// Returns a new slice with updated values.
func (s SGD) Step(params, gradients []float64) []float64 {
	result := make([]float64, len(params))
	copy(result, params)
	s.StepInPlace(result, gradients)
	return result
}

// StepInPlace updates params in-place: params = params - lr * clip(gradients)
func (s SGD) StepInPlace(params, gradients []float64) {
	if len(params) != len(gradients) {
		panic("SGD: params and gradients must have same length")
	}
	for i := range params {
		params[i] -= s.LearningRate * s.clip(gradients[i])
	}
}
