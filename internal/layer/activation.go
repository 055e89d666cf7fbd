package layer

import (
	"math"

	"github.com/pkg/errors"
)

// scalar is an elementwise function paired with its derivative.
type scalar struct {
	f  func(x float64) float64
	df func(x float64) float64
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

var scalars = map[Kind]scalar{
	KindRelu: {
		f: func(x float64) float64 {
			if x > 0 {
				return x
			}
			return 0
		},
		df: func(x float64) float64 {
			if x > 0 {
				return 1
			}
			return 0
		},
	},
	KindSigmoid: {
		f: sigmoid,
		df: func(x float64) float64 {
			s := sigmoid(x)
			return s * (1 - s)
		},
	},
	KindTanh: {
		f: math.Tanh,
		df: func(x float64) float64 {
			t := math.Tanh(x)
			return 1 - t*t
		},
	},
}

// Activation is a parameter-free layer applying a scalar function
// elementwise. It accepts inputs of any length.
type Activation struct {
	kind Kind
	fn   scalar

	// Saved pre-activation input; derivatives are evaluated here.
	input []float64
}

func NewRelu() *Activation    { return &Activation{kind: KindRelu, fn: scalars[KindRelu]} }
func NewSigmoid() *Activation { return &Activation{kind: KindSigmoid, fn: scalars[KindSigmoid]} }
func NewTanh() *Activation    { return &Activation{kind: KindTanh, fn: scalars[KindTanh]} }

// NewActivation returns the activation layer for kind.
func NewActivation(kind Kind) (*Activation, error) {
	fn, ok := scalars[kind]
	if !ok {
		return nil, errors.Errorf("%q is not an activation layer", kind)
	}
	return &Activation{kind: kind, fn: fn}, nil
}

// Kind returns the activation kind.
func (a *Activation) Kind() Kind { return a.kind }

// InSize returns 0: activations pass any size through.
func (a *Activation) InSize() int { return 0 }

// OutSize returns 0: activations pass any size through.
func (a *Activation) OutSize() int { return 0 }

// NumParams returns 0.
func (a *Activation) NumParams() int { return 0 }

// Forward applies the activation to every element.
func (a *Activation) Forward(x []float64) []float64 {
	if a.input == nil {
		a.input = make([]float64, 0, len(x))
	}
	a.input = append(a.input[:0], x...)
	output := make([]float64, len(x))
	for i, v := range x {
		output[i] = a.fn.f(v)
	}
	return output
}

// Backward multiplies grad by the derivative at the cached input.
func (a *Activation) Backward(grad []float64, learningRate float64) []float64 {
	if a.input == nil {
		panic(string(a.kind) + ": Backward called before Forward")
	}
	checkLen(a.kind, "gradient", len(grad), len(a.input))

	gradIn := make([]float64, len(grad))
	for i, g := range grad {
		gradIn[i] = g * a.fn.df(a.input[i])
	}
	return gradIn
}

// Mutate is a no-op: activations have no parameters.
func (a *Activation) Mutate(learningRate, chance float64) {}

// Clone returns a fresh activation of the same kind.
func (a *Activation) Clone() Layer {
	return &Activation{kind: a.kind, fn: a.fn}
}
