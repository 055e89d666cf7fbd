// Package layer provides the layer kinds a Q-value network is assembled from.
package layer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Kind names a layer type. The value doubles as the layer header in the
// text persistence format.
type Kind string

const (
	KindDense        Kind = "Dense"
	KindConv2D       Kind = "Conv2D"
	KindMaxPooling2D Kind = "MaxPooling2D"
	KindRelu         Kind = "Relu"
	KindSigmoid      Kind = "Sigmoid"
	KindTanh         Kind = "Tanh"
)

// IsActivation reports whether k is a parameter-free activation kind.
func (k Kind) IsActivation() bool {
	return k == KindRelu || k == KindSigmoid || k == KindTanh
}

// Layer is a neural network layer.
//
// A layer caches a copy of the last input it received; Backward is only
// meaningful right after a Forward on the same layer and updates the layer's
// own parameters as a side effect. Layers are not safe for concurrent use.
type Layer interface {
	Kind() Kind

	// InSize and OutSize return 0 for activations, which pass any size through.
	InSize() int
	OutSize() int

	Forward(x []float64) []float64
	Backward(grad []float64, learningRate float64) []float64

	// Mutate randomly perturbs trainable parameters. No-op for layers without any.
	Mutate(learningRate, chance float64)

	// NumParams returns the number of trainable parameters.
	NumParams() int

	// Clone returns a deep copy with independent parameter storage and an
	// empty input cache.
	Clone() Layer
}

// sanitize replaces NaN and infinities with 0.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func checkLen(kind Kind, what string, got, want int) {
	if got != want {
		panic(fmt.Sprintf("%s: %s length %d, want %d", kind, what, got, want))
	}
}

// xavierFill draws every element of data uniformly from [-limit, limit].
func xavierFill(data []float64, limit float64) {
	u := distuv.Uniform{Min: -limit, Max: limit}
	for i := range data {
		data[i] = u.Rand()
	}
}

// mutateFill adds U[-lr, lr] noise to each element with probability chance.
func mutateFill(data []float64, learningRate, chance float64) {
	coin := distuv.Bernoulli{P: chance}
	noise := distuv.Uniform{Min: -learningRate, Max: learningRate}
	for i := range data {
		if coin.Rand() == 1 {
			data[i] += noise.Rand()
		}
	}
}
