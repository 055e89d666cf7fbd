package layer

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/GoSnakeQ/internal/opt"
)

// Conv2D implements a single-channel 2D convolution producing numKernels
// feature maps, concatenated kernel-major in the flat output.
//
// Backward updates kernels and biases but returns a zero input gradient, so a
// Conv2D must be the first layer of a network: anything placed before it
// receives no training signal.
type Conv2D struct {
	inputHeight  int
	inputWidth   int
	kernelHeight int
	kernelWidth  int
	numKernels   int
	stride       int

	outHeight int
	outWidth  int

	kernels []*mat.Dense // numKernels x [kernelHeight x kernelWidth]
	biases  []float64

	// Saved input reshaped to [inputHeight x inputWidth] for backward pass
	input2D *mat.Dense
}

// NewConv2D creates a new 2D convolutional layer.
// inputHeight, inputWidth: spatial size of the flat input
// kernelHeight, kernelWidth: kernel size
// numKernels: number of output feature maps
// stride: step between windows (values <= 0 mean 1)
func NewConv2D(inputHeight, inputWidth, kernelHeight, kernelWidth, numKernels, stride int) *Conv2D {
	if stride <= 0 {
		stride = 1
	}

	c := &Conv2D{
		inputHeight:  inputHeight,
		inputWidth:   inputWidth,
		kernelHeight: kernelHeight,
		kernelWidth:  kernelWidth,
		numKernels:   numKernels,
		stride:       stride,
		outHeight:    (inputHeight-kernelHeight)/stride + 1,
		outWidth:     (inputWidth-kernelWidth)/stride + 1,
		kernels:      make([]*mat.Dense, numKernels),
		biases:       make([]float64, numKernels),
	}

	// Xavier/Glorot initialization
	limit := math.Sqrt(6.0 / float64(kernelHeight*kernelWidth+numKernels))
	for k := range c.kernels {
		c.kernels[k] = mat.NewDense(kernelHeight, kernelWidth, nil)
		xavierFill(c.kernels[k].RawMatrix().Data, limit)
	}

	return c
}

// Kind returns KindConv2D.
func (c *Conv2D) Kind() Kind { return KindConv2D }

// InSize returns inputHeight * inputWidth.
func (c *Conv2D) InSize() int { return c.inputHeight * c.inputWidth }

// OutSize returns numKernels * outHeight * outWidth.
func (c *Conv2D) OutSize() int { return c.numKernels * c.outHeight * c.outWidth }

// NumParams returns the kernel cells plus one bias per kernel.
func (c *Conv2D) NumParams() int {
	return c.numKernels*c.kernelHeight*c.kernelWidth + c.numKernels
}

func (c *Conv2D) window(i, j int) mat.Matrix {
	return c.input2D.Slice(i, i+c.kernelHeight, j, j+c.kernelWidth)
}

// Forward slides every kernel over the input.
// Output order: kernel, then window row, then window column.
func (c *Conv2D) Forward(input []float64) []float64 {
	checkLen(KindConv2D, "input", len(input), c.InSize())
	c.input2D = mat.NewDense(c.inputHeight, c.inputWidth, append([]float64(nil), input...))

	output := make([]float64, 0, c.OutSize())
	var prod mat.Dense
	for k, kernel := range c.kernels {
		for i := 0; i <= c.inputHeight-c.kernelHeight; i += c.stride {
			for j := 0; j <= c.inputWidth-c.kernelWidth; j += c.stride {
				prod.MulElem(kernel, c.window(i, j))
				output = append(output, sanitize(mat.Sum(&prod)+c.biases[k]))
			}
		}
	}
	return output
}

// Backward applies kernel -= lr * clip(g) * window and bias -= lr * clip(g)
// for every output position, in forward order. The returned input gradient
// is always zero.
func (c *Conv2D) Backward(grad []float64, learningRate float64) []float64 {
	if c.input2D == nil {
		panic("Conv2D: Backward called before Forward")
	}
	checkLen(KindConv2D, "gradient", len(grad), c.OutSize())

	pos := 0
	var step mat.Dense
	for k, kernel := range c.kernels {
		for i := 0; i <= c.inputHeight-c.kernelHeight; i += c.stride {
			for j := 0; j <= c.inputWidth-c.kernelWidth; j += c.stride {
				g := opt.Clip(grad[pos], opt.DefaultClipValue)
				pos++

				step.Scale(learningRate*g, c.window(i, j))
				kernel.Sub(kernel, &step)
				c.biases[k] -= learningRate * g
			}
		}
	}

	return make([]float64, c.InSize())
}

// Mutate perturbs every kernel cell and every bias with probability chance
// by U[-lr, lr].
func (c *Conv2D) Mutate(learningRate, chance float64) {
	for _, kernel := range c.kernels {
		mutateFill(kernel.RawMatrix().Data, learningRate, chance)
	}
	mutateFill(c.biases, learningRate, chance)
}

// Clone creates a deep copy of the convolutional layer.
func (c *Conv2D) Clone() Layer {
	newC := *c
	newC.input2D = nil
	newC.kernels = make([]*mat.Dense, len(c.kernels))
	for k, kernel := range c.kernels {
		newC.kernels[k] = mat.DenseCopyOf(kernel)
	}
	newC.biases = append([]float64(nil), c.biases...)
	return &newC
}

// Kernel returns a copy of kernel k.
func (c *Conv2D) Kernel(k int) *mat.Dense {
	return mat.DenseCopyOf(c.kernels[k])
}

// SetKernel copies m into kernel k. m must be [kernelHeight x kernelWidth].
func (c *Conv2D) SetKernel(k int, m mat.Matrix) {
	r, cols := m.Dims()
	checkLen(KindConv2D, "kernel rows", r, c.kernelHeight)
	checkLen(KindConv2D, "kernel columns", cols, c.kernelWidth)
	c.kernels[k].Copy(m)
}

// Biases returns a copy of the per-kernel biases.
func (c *Conv2D) Biases() []float64 {
	return append([]float64(nil), c.biases...)
}

// SetBiases copies b into the layer.
func (c *Conv2D) SetBiases(b []float64) {
	checkLen(KindConv2D, "bias", len(b), c.numKernels)
	copy(c.biases, b)
}

// InputHeight returns the input grid height.
func (c *Conv2D) InputHeight() int { return c.inputHeight }

// InputWidth returns the input grid width.
func (c *Conv2D) InputWidth() int { return c.inputWidth }

// KernelHeight returns the kernel height.
func (c *Conv2D) KernelHeight() int { return c.kernelHeight }

// KernelWidth returns the kernel width.
func (c *Conv2D) KernelWidth() int { return c.kernelWidth }

// NumKernels returns the number of kernels.
func (c *Conv2D) NumKernels() int { return c.numKernels }

// Stride returns the stride.
func (c *Conv2D) Stride() int { return c.stride }
