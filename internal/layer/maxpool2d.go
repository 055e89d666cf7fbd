package layer

import (
	"gonum.org/v1/gonum/mat"
)

// MaxPooling2D implements single-channel 2D max pooling.
// It stores the argmax index of every window so the backward pass routes
// each gradient value to the input cell that won the forward maximum.
type MaxPooling2D struct {
	inputHeight int
	inputWidth  int
	poolHeight  int
	poolWidth   int
	stride      int

	outHeight int
	outWidth  int

	input  []float64
	argmax []int // flat input index of the max for each output cell
}

// NewMaxPooling2D creates a new 2D max pooling layer.
// A stride <= 0 defaults to poolHeight.
func NewMaxPooling2D(inputHeight, inputWidth, poolHeight, poolWidth, stride int) *MaxPooling2D {
	if stride <= 0 {
		stride = poolHeight
	}
	return &MaxPooling2D{
		inputHeight: inputHeight,
		inputWidth:  inputWidth,
		poolHeight:  poolHeight,
		poolWidth:   poolWidth,
		stride:      stride,
		outHeight:   (inputHeight-poolHeight)/stride + 1,
		outWidth:    (inputWidth-poolWidth)/stride + 1,
	}
}

// Kind returns KindMaxPooling2D.
func (m *MaxPooling2D) Kind() Kind { return KindMaxPooling2D }

// InSize returns inputHeight * inputWidth.
func (m *MaxPooling2D) InSize() int { return m.inputHeight * m.inputWidth }

// OutSize returns outHeight * outWidth.
func (m *MaxPooling2D) OutSize() int { return m.outHeight * m.outWidth }

// NumParams returns 0.
func (m *MaxPooling2D) NumParams() int { return 0 }

// Forward takes the maximum of every pooling window. On ties the first cell
// in row-major window order wins.
func (m *MaxPooling2D) Forward(input []float64) []float64 {
	checkLen(KindMaxPooling2D, "input", len(input), m.InSize())
	m.input = append(m.input[:0], input...)
	grid := mat.NewDense(m.inputHeight, m.inputWidth, m.input)

	output := make([]float64, m.OutSize())
	m.argmax = make([]int, m.OutSize())

	for oi := 0; oi < m.outHeight; oi++ {
		i := oi * m.stride
		for oj := 0; oj < m.outWidth; oj++ {
			j := oj * m.stride

			maxVal := grid.At(i, j)
			maxIdx := i*m.inputWidth + j
			for pi := 0; pi < m.poolHeight; pi++ {
				for pj := 0; pj < m.poolWidth; pj++ {
					if v := grid.At(i+pi, j+pj); v > maxVal {
						maxVal = v
						maxIdx = (i+pi)*m.inputWidth + (j + pj)
					}
				}
			}

			pos := oi*m.outWidth + oj
			output[pos] = maxVal
			m.argmax[pos] = maxIdx
		}
	}
	return output
}

// Backward passes each output gradient only to the max input position.
func (m *MaxPooling2D) Backward(grad []float64, learningRate float64) []float64 {
	if m.argmax == nil {
		panic("MaxPooling2D: Backward called before Forward")
	}
	checkLen(KindMaxPooling2D, "gradient", len(grad), m.OutSize())

	gradIn := make([]float64, m.InSize())
	for pos, g := range grad {
		gradIn[m.argmax[pos]] += g
	}
	return gradIn
}

// Mutate is a no-op: max pooling has no parameters.
func (m *MaxPooling2D) Mutate(learningRate, chance float64) {}

// Clone creates a copy of the pooling configuration.
func (m *MaxPooling2D) Clone() Layer {
	return NewMaxPooling2D(m.inputHeight, m.inputWidth, m.poolHeight, m.poolWidth, m.stride)
}

// Argmax returns a copy of the argmax indices from the last forward pass.
func (m *MaxPooling2D) Argmax() []int {
	return append([]int(nil), m.argmax...)
}

// InputHeight returns the input grid height.
func (m *MaxPooling2D) InputHeight() int { return m.inputHeight }

// InputWidth returns the input grid width.
func (m *MaxPooling2D) InputWidth() int { return m.inputWidth }

// PoolHeight returns the pooling window height.
func (m *MaxPooling2D) PoolHeight() int { return m.poolHeight }

// PoolWidth returns the pooling window width.
func (m *MaxPooling2D) PoolWidth() int { return m.poolWidth }

// Stride returns the stride.
func (m *MaxPooling2D) Stride() int { return m.stride }
