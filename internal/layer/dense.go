package layer

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/GoSnakeQ/internal/opt"
)

// Dense is a fully connected affine layer.
// Weights are stored as an [in x out] matrix: weights.At(i, j) connects input
// i to output j.
type Dense struct {
	weights *mat.Dense
	biases  []float64
	inSize  int
	outSize int

	// Saved input for backward pass
	input []float64
}

// NewDense creates a new dense layer with Xavier/Glorot uniform weights and
// zero biases.
func NewDense(in, out int) *Dense {
	d := &Dense{
		weights: mat.NewDense(in, out, nil),
		biases:  make([]float64, out),
		inSize:  in,
		outSize: out,
	}

	limit := math.Sqrt(6.0 / float64(in+out))
	xavierFill(d.weights.RawMatrix().Data, limit)

	return d
}

// Kind returns KindDense.
func (d *Dense) Kind() Kind { return KindDense }

// InSize returns the input size of the layer.
func (d *Dense) InSize() int { return d.inSize }

// OutSize returns the output size of the layer.
func (d *Dense) OutSize() int { return d.outSize }

// NumParams returns in*out weights plus out biases.
func (d *Dense) NumParams() int { return d.inSize*d.outSize + d.outSize }

// Forward computes output[j] = bias[j] + sum_i weights[i][j] * x[i].
// Non-finite sums are replaced with 0.
func (d *Dense) Forward(x []float64) []float64 {
	checkLen(KindDense, "input", len(x), d.inSize)
	d.input = append(d.input[:0], x...)

	var sum mat.VecDense
	sum.MulVec(d.weights.T(), mat.NewVecDense(d.inSize, d.input))

	output := make([]float64, d.outSize)
	for j := range output {
		output[j] = sanitize(sum.AtVec(j) + d.biases[j])
	}
	return output
}

// Backward computes the input gradient with the current weights, then applies
// a clipped gradient step to weights and biases.
func (d *Dense) Backward(grad []float64, learningRate float64) []float64 {
	if d.input == nil {
		panic("Dense: Backward called before Forward")
	}
	checkLen(KindDense, "gradient", len(grad), d.outSize)

	g := mat.NewVecDense(d.outSize, grad)

	gradIn := mat.NewVecDense(d.inSize, nil)
	gradIn.MulVec(d.weights, g)

	var gradW mat.Dense
	gradW.Outer(1, mat.NewVecDense(d.inSize, d.input), g)

	sgd := opt.NewSGD(learningRate)
	sgd.StepInPlace(d.weights.RawMatrix().Data, gradW.RawMatrix().Data)
	sgd.StepInPlace(d.biases, grad)

	return gradIn.RawVector().Data
}

// Mutate perturbs each weight with probability chance by U[-lr, lr].
// Biases are left untouched.
func (d *Dense) Mutate(learningRate, chance float64) {
	mutateFill(d.weights.RawMatrix().Data, learningRate, chance)
}

// Clone creates a deep copy of the dense layer.
func (d *Dense) Clone() Layer {
	return &Dense{
		weights: mat.DenseCopyOf(d.weights),
		biases:  append([]float64(nil), d.biases...),
		inSize:  d.inSize,
		outSize: d.outSize,
	}
}

// Weights returns a copy of the [in x out] weight matrix.
func (d *Dense) Weights() *mat.Dense {
	return mat.DenseCopyOf(d.weights)
}

// SetWeights copies w into the layer. w must be [in x out].
func (d *Dense) SetWeights(w mat.Matrix) {
	r, c := w.Dims()
	checkLen(KindDense, "weight rows", r, d.inSize)
	checkLen(KindDense, "weight columns", c, d.outSize)
	d.weights.Copy(w)
}

// Biases returns a copy of the bias vector.
func (d *Dense) Biases() []float64 {
	return append([]float64(nil), d.biases...)
}

// SetBiases copies b into the layer.
func (d *Dense) SetBiases(b []float64) {
	checkLen(KindDense, "bias", len(b), d.outSize)
	copy(d.biases, b)
}

// Weight gets a single weight connecting input i to output j.
func (d *Dense) Weight(i, j int) float64 {
	return d.weights.At(i, j)
}

// SetWeight sets a single weight connecting input i to output j.
func (d *Dense) SetWeight(i, j int, val float64) {
	d.weights.Set(i, j, val)
}

// Bias gets a single bias.
func (d *Dense) Bias(j int) float64 {
	return d.biases[j]
}

// SetBias sets a single bias.
func (d *Dense) SetBias(j int, val float64) {
	d.biases[j] = val
}
