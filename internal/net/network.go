// Package net provides the Network type: an ordered stack of layers with
// training, mutation, deep copy and text persistence.
package net

import (
	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/GoSnakeQ/internal/layer"
	"github.com/FlavioCFOliveira/GoSnakeQ/internal/loss"
)

// Network is a collection of layers that can be forwarded and backwarded.
//
// A Network is not safe for concurrent use: every layer caches the input of
// the last forward pass, and Backward relies on it.
type Network struct {
	layers    []layer.Layer
	loss      loss.MSE
	callbacks []Callback

	// Per-layer input snapshots of the last forward pass, for diagnostics.
	inputs [][]float64

	// Pre-allocated gradient buffer for training
	lossGradBuf []float64
}

// New creates a new neural network with the given layers.
func New(layers ...layer.Layer) *Network {
	return &Network{layers: layers}
}

// Add appends a layer to the end of the network.
func (n *Network) Add(l layer.Layer) {
	n.layers = append(n.layers, l)
}

// Layers returns the network's layers slice.
func (n *Network) Layers() []layer.Layer {
	return n.layers
}

// Len returns the number of layers.
func (n *Network) Len() int {
	return len(n.layers)
}

// SetCallbacks replaces the training callbacks.
func (n *Network) SetCallbacks(callbacks ...Callback) {
	n.callbacks = callbacks
}

// Inputs returns the input each layer received during the last forward pass,
// followed by the network output.
func (n *Network) Inputs() [][]float64 {
	return n.inputs
}

// InSize returns the input size of the first sized layer, or 0.
func (n *Network) InSize() int {
	for _, l := range n.layers {
		if !l.Kind().IsActivation() {
			return l.InSize()
		}
	}
	return 0
}

// OutSize returns the output size of the last sized layer, or 0.
func (n *Network) OutSize() int {
	for i := len(n.layers) - 1; i >= 0; i-- {
		if !n.layers[i].Kind().IsActivation() {
			return n.layers[i].OutSize()
		}
	}
	return 0
}

// Validate checks that every sized layer accepts the output of the previous
// sized layer. Activations are skipped since they preserve size.
func (n *Network) Validate() error {
	var prev layer.Layer
	prevIdx := -1
	for i, l := range n.layers {
		if l.Kind().IsActivation() {
			continue
		}
		if prev != nil && prev.OutSize() != l.InSize() {
			return errors.Errorf("layer %d (%s) outputs %d values but layer %d (%s) expects %d",
				prevIdx, prev.Kind(), prev.OutSize(), i, l.Kind(), l.InSize())
		}
		prev, prevIdx = l, i
	}
	return nil
}

// Forward performs a forward pass through all layers.
func (n *Network) Forward(x []float64) []float64 {
	n.inputs = n.inputs[:0]
	curr := x
	for _, l := range n.layers {
		n.inputs = append(n.inputs, append([]float64(nil), curr...))
		curr = l.Forward(curr)
	}
	n.inputs = append(n.inputs, append([]float64(nil), curr...))
	return curr
}

// Backward performs a backward pass through all layers in reverse order.
// Each trainable layer updates its own parameters.
func (n *Network) Backward(grad []float64, learningRate float64) []float64 {
	curr := grad
	for i := len(n.layers) - 1; i >= 0; i-- {
		curr = n.layers[i].Backward(curr, learningRate)
	}
	return curr
}

// trainSample runs one forward/backward step and returns the sample loss.
func (n *Network) trainSample(x, y []float64, learningRate float64) float64 {
	yPred := n.Forward(x)
	l := n.loss.Forward(yPred, y)

	if cap(n.lossGradBuf) < len(yPred) {
		n.lossGradBuf = make([]float64, len(yPred))
	}
	grad := n.lossGradBuf[:len(yPred)]
	n.loss.BackwardInPlace(yPred, y, grad)

	n.Backward(grad, learningRate)
	return l
}

// Train runs plain per-sample gradient descent over the batch, in order,
// for the given number of episodes. The mean loss of each episode is
// reported to the registered callbacks.
func (n *Network) Train(episodes int, learningRate float64, batchX, batchY [][]float64) {
	if len(batchX) != len(batchY) {
		panic("Network: batchX and batchY must have same length")
	}

	for _, cb := range n.callbacks {
		cb.OnTrainBegin(n)
	}

	for e := 0; e < episodes; e++ {
		for _, cb := range n.callbacks {
			cb.OnEpochBegin(e, n)
		}

		var totalLoss float64
		for i := range batchX {
			totalLoss += n.trainSample(batchX[i], batchY[i], learningRate)
		}
		if len(batchX) > 0 {
			totalLoss /= float64(len(batchX))
		}

		for _, cb := range n.callbacks {
			cb.OnEpochEnd(e, totalLoss, n)
		}
	}

	for _, cb := range n.callbacks {
		cb.OnTrainEnd(n)
	}
}

// Evaluate calculates the average loss on a dataset without training.
func (n *Network) Evaluate(x, y [][]float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var total float64
	for i := range x {
		total += n.loss.Forward(n.Forward(x[i]), y[i])
	}
	return total / float64(len(x))
}

// Mutate randomly perturbs the parameters of every trainable layer.
func (n *Network) Mutate(learningRate, chance float64) {
	for _, l := range n.layers {
		l.Mutate(learningRate, chance)
	}
}

// LoadFrom replaces this network's layers with deep copies of other's.
// other is only read.
func (n *Network) LoadFrom(other *Network) {
	layers := make([]layer.Layer, len(other.layers))
	for i, l := range other.layers {
		layers[i] = l.Clone()
	}
	n.layers = layers
	n.inputs = nil
}

// NumParams returns the total number of trainable parameters.
func (n *Network) NumParams() int {
	total := 0
	for _, l := range n.layers {
		total += l.NumParams()
	}
	return total
}
