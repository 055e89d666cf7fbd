package layer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestConv2DOutputSize(t *testing.T) {
	tests := []struct {
		h, w, kh, kw, k, stride int
		want                    int
	}{
		{7, 7, 3, 3, 8, 1, 200},
		{5, 5, 3, 3, 1, 2, 4},
		{4, 6, 2, 3, 2, 1, 2 * 3 * 4},
		{3, 3, 3, 3, 4, 1, 4},
	}

	for _, tt := range tests {
		c := NewConv2D(tt.h, tt.w, tt.kh, tt.kw, tt.k, tt.stride)
		assert.Equal(t, tt.want, c.OutSize())
		assert.Equal(t, tt.h*tt.w, c.InSize())
		assert.Len(t, c.Forward(make([]float64, tt.h*tt.w)), tt.want)
	}
}

func TestConv2DForward(t *testing.T) {
	c := NewConv2D(3, 3, 2, 2, 2, 1)
	c.SetKernel(0, mat.NewDense(2, 2, []float64{1, 1, 1, 1}))
	c.SetKernel(1, mat.NewDense(2, 2, []float64{1, 0, 0, -1}))
	c.SetBiases([]float64{0, 10})

	// 1 2 3
	// 4 5 6
	// 7 8 9
	output := c.Forward([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9})

	// Kernel-major, then row, then column.
	want := []float64{
		12, 16, 24, 28,
		6, 6, 6, 6,
	}
	assert.InDeltaSlice(t, want, output, 1e-12)
}

func TestConv2DForwardStride(t *testing.T) {
	c := NewConv2D(4, 4, 2, 2, 1, 2)
	c.SetKernel(0, mat.NewDense(2, 2, []float64{1, 1, 1, 1}))
	c.SetBiases([]float64{0})

	input := make([]float64, 16)
	for i := range input {
		input[i] = float64(i + 1)
	}
	output := c.Forward(input)

	assert.InDeltaSlice(t, []float64{14, 22, 46, 54}, output, 1e-12)
}

func TestConv2DForwardSanitizes(t *testing.T) {
	c := NewConv2D(2, 2, 2, 2, 1, 1)
	output := c.Forward([]float64{math.NaN(), 1, 1, 1})
	assert.Equal(t, []float64{0}, output)
}

func TestConv2DBackward(t *testing.T) {
	c := NewConv2D(2, 2, 2, 2, 1, 1)
	c.SetKernel(0, mat.NewDense(2, 2, []float64{0, 0, 0, 0}))
	c.SetBiases([]float64{0})

	c.Forward([]float64{1, 2, 3, 4})
	gradIn := c.Backward([]float64{1}, 0.1)

	assert.Equal(t, make([]float64, 4), gradIn, "Conv2D returns a zero input gradient")
	assert.InDeltaSlice(t, []float64{-0.1, -0.2, -0.3, -0.4}, c.Kernel(0).RawMatrix().Data, 1e-12)
	assert.InDeltaSlice(t, []float64{-0.1}, c.Biases(), 1e-12)
}

func TestConv2DBackwardClipsGradient(t *testing.T) {
	a := NewConv2D(3, 3, 2, 2, 1, 1)
	b := a.Clone().(*Conv2D)
	input := []float64{1, -1, 0.5, 2, 0, -3, 1, 1, 1}

	a.Forward(input)
	a.Backward([]float64{100, -100, 7, -7}, 0.01)
	b.Forward(input)
	b.Backward([]float64{5, -5, 5, -5}, 0.01)

	assert.InDeltaSlice(t, b.Kernel(0).RawMatrix().Data, a.Kernel(0).RawMatrix().Data, 1e-12)
	assert.InDeltaSlice(t, b.Biases(), a.Biases(), 1e-12)
}

func TestConv2DBackwardBeforeForwardPanics(t *testing.T) {
	c := NewConv2D(3, 3, 2, 2, 1, 1)
	assert.Panics(t, func() { c.Backward(make([]float64, 4), 0.1) })
}

func TestConv2DXavierInit(t *testing.T) {
	c := NewConv2D(7, 7, 3, 3, 8, 1)
	limit := math.Sqrt(6.0 / float64(3*3+8))

	for k := 0; k < c.NumKernels(); k++ {
		for _, v := range c.Kernel(k).RawMatrix().Data {
			assert.LessOrEqual(t, math.Abs(v), limit)
		}
	}
	assert.Equal(t, make([]float64, 8), c.Biases())
	assert.Equal(t, 8*9+8, c.NumParams())
}

func TestConv2DMutateAndClone(t *testing.T) {
	c := NewConv2D(5, 5, 3, 3, 2, 1)
	original := c.Kernel(0)
	clone := c.Clone().(*Conv2D)

	clone.Mutate(0.5, 1)

	require.True(t, mat.Equal(original, c.Kernel(0)), "mutating a clone must not touch the source")
	assert.False(t, mat.Equal(c.Kernel(0), clone.Kernel(0)))
	assert.Equal(t, make([]float64, 2), c.Biases())
	assert.NotEqual(t, make([]float64, 2), clone.Biases(), "Conv2D.Mutate also perturbs biases")
}

func TestConv2DDefaultStride(t *testing.T) {
	c := NewConv2D(4, 4, 2, 2, 1, 0)
	assert.Equal(t, 1, c.Stride())
	assert.Equal(t, 9, c.OutSize())
}
