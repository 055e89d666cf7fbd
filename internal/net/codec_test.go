package net

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/GoSnakeQ/internal/layer"
)

func TestEncodeDense(t *testing.T) {
	d := layer.NewDense(2, 1)
	d.SetWeights(mat.NewDense(2, 1, []float64{0.5, -1.25}))
	d.SetBiases([]float64{0.1})

	var buf bytes.Buffer
	require.NoError(t, New(d, layer.NewRelu()).Encode(&buf))

	assert.Equal(t, "Dense\n2 1\n0.5\n-1.25\n\n0.1\nRelu\n", buf.String())
}

func TestEncodeConv2DAndPooling(t *testing.T) {
	c := layer.NewConv2D(2, 2, 2, 2, 1, 1)
	c.SetKernel(0, mat.NewDense(2, 2, []float64{1, 2, 3, 4}))
	c.SetBiases([]float64{0.5})

	var buf bytes.Buffer
	require.NoError(t, New(c).Encode(&buf))
	assert.Equal(t, "Conv2D\n4 1\n2 2 2 2 1 1\n1,2\n3,4\n\n0.5\n", buf.String())

	buf.Reset()
	require.NoError(t, New(layer.NewMaxPooling2D(4, 4, 2, 2, 0), layer.NewSigmoid(), layer.NewTanh()).Encode(&buf))
	assert.Equal(t, "MaxPooling2D\n16 4\n4 4 2 2 2\nSigmoid\nTanh\n", buf.String())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	n := New(
		layer.NewConv2D(7, 7, 3, 3, 8, 1),
		layer.NewRelu(),
		layer.NewDense(200, 16),
		layer.NewTanh(),
		layer.NewMaxPooling2D(4, 4, 2, 2, 0),
		layer.NewSigmoid(),
		layer.NewDense(4, 4),
	)
	require.NoError(t, n.Validate())
	// Train a little so biases are non-zero.
	n.Train(2, 0.01, [][]float64{grid(2)}, [][]float64{{1, 0, -1, 0.5}})

	input := grid(5)
	want := n.Forward(input)

	path := filepath.Join(t.TempDir(), "net.txt")
	require.NoError(t, n.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, n.Len(), loaded.Len())
	for i, l := range loaded.Layers() {
		assert.Equal(t, n.Layers()[i].Kind(), l.Kind())
	}
	assert.Equal(t, snapshot(t, n), snapshot(t, loaded))
	assert.Equal(t, want, loaded.Forward(input))
}

func TestDecodeReplacesLayers(t *testing.T) {
	n := New(layer.NewDense(3, 3), layer.NewDense(3, 3))

	require.NoError(t, n.Decode(strings.NewReader("Tanh\n")))
	require.Equal(t, 1, n.Len())
	assert.Equal(t, layer.KindTanh, n.Layers()[0].Kind())
}

func TestDecodeForeignFormatting(t *testing.T) {
	// CRLF endings, exponent notation and blank lines between layers.
	text := "\r\nDense\r\n2 2\r\n1E-05, 2\r\n-3.5,4\r\n\r\n0,1\r\n\r\nRelu\r\n"

	n := New()
	require.NoError(t, n.Decode(strings.NewReader(text)))
	require.Equal(t, 2, n.Len())

	d := n.Layers()[0].(*layer.Dense)
	assert.Equal(t, 1e-05, d.Weight(0, 0))
	assert.Equal(t, 2.0, d.Weight(0, 1))
	assert.Equal(t, -3.5, d.Weight(1, 0))
	assert.Equal(t, []float64{0, 1}, d.Biases())
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"Unknown layer", "Softmax\n"},
		{"Bad number", "Dense\n1 1\nabc\n\n0\n"},
		{"Bad size", "Dense\n1 x\n"},
		{"Zero size", "Dense\n0 1\n"},
		{"Truncated weights", "Dense\n2 1\n0.5\n"},
		{"Missing bias", "Dense\n1 1\n0.5\n\n"},
		{"Missing separator", "Dense\n1 1\n0.5\n0.1\n"},
		{"Short row", "Dense\n1 2\n0.5\n\n0,0\n"},
		{"Conv truncated", "Conv2D\n4 1\n2 2 2 2 1 1\n1,2\n"},
		{"Conv geometry", "Conv2D\n4 1\n2 2 2 2 1\n"},
		{"Conv declared size", "Conv2D\n9 1\n2 2 2 2 1 1\n1,2\n3,4\n\n0\n"},
		{"Conv kernel too large", "Conv2D\n4 1\n2 2 3 3 1 1\n"},
		{"Pool declared size", "MaxPooling2D\n16 9\n4 4 2 2 2\n"},
		{"Pool truncated", "MaxPooling2D\n16 4\n"},
		{"Dense oversized header", "Dense\n3037000500 3037000500\n1\n"},
		{"Dense header past limit", "Dense\n5000 5000\n1\n"},
		{"Dense truncated large header", "Dense\n4000 4000\n1\n"},
		{"Conv oversized kernel count", "Conv2D\n9 9\n3 3 1 1 3037000500 1\n"},
		{"Conv oversized input", "Conv2D\n1 1\n3037000500 3037000500 1 1 1 1\n"},
		{"Pool oversized input", "MaxPooling2D\n1 1\n3037000500 3037000500 2 2 2\n"},
		{"Chain mismatch", "Dense\n1 2\n1,1\n\n0,0\nDense\n3 1\n1\n1\n1\n\n0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New(layer.NewRelu())

			err := n.Decode(strings.NewReader(tt.text))

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFormat), "got %v", err)
			require.Equal(t, 1, n.Len(), "failed decode must keep previous layers")
			assert.Equal(t, layer.KindRelu, n.Layers()[0].Kind())
		})
	}
}

func TestDecodeErrorHasLineNumber(t *testing.T) {
	err := New().Decode(strings.NewReader("Relu\nDense\n1 1\nnope\n\n0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 4")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestDecodeEmpty(t *testing.T) {
	n := New(layer.NewRelu())
	require.NoError(t, n.Decode(strings.NewReader("")))
	assert.Equal(t, 0, n.Len())
}
