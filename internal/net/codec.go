package net

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/GoSnakeQ/internal/layer"
)

// ErrFormat is wrapped by every error caused by malformed network text.
var ErrFormat = errors.New("malformed network file")

// Save writes the network to filename in the text format (see Encode).
func (n *Network) Save(filename string) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "failed to close file")
		}
	}()

	return n.Encode(file)
}

// Load replaces the network's layers with the ones stored in filename.
// On error the current layers are kept.
func (n *Network) Load(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	if err := n.Decode(file); err != nil {
		return errors.Wrapf(err, "failed to load %s", filename)
	}
	return nil
}

// Load reads a network from filename.
func Load(filename string) (*Network, error) {
	n := New()
	if err := n.Load(filename); err != nil {
		return nil, err
	}
	return n, nil
}

// Encode writes the network as text, one block per layer in order:
//
//	Relu | Sigmoid | Tanh              kind line only
//	Dense                              "<in> <out>", in weight rows, blank line, bias row
//	Conv2D                             "<in> <out>", "<h> <w> <kh> <kw> <k> <stride>",
//	                                   per kernel kh rows then a blank line, bias row
//	MaxPooling2D                       "<in> <out>", "<h> <w> <ph> <pw> <stride>"
//
// Rows are comma-separated reals.
func (n *Network) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)

	for i, l := range n.layers {
		if err := encodeLayer(bw, l); err != nil {
			return errors.Wrapf(err, "failed to encode layer %d", i)
		}
	}
	return errors.Wrap(bw.Flush(), "failed to flush network")
}

func encodeLayer(w *bufio.Writer, l layer.Layer) error {
	lines := []string{string(l.Kind())}

	switch l := l.(type) {
	case *layer.Dense:
		lines = append(lines, ints(l.InSize(), l.OutSize()))
		weights := l.Weights()
		for i := 0; i < l.InSize(); i++ {
			lines = append(lines, reals(mat.Row(nil, i, weights)))
		}
		lines = append(lines, "", reals(l.Biases()))

	case *layer.Conv2D:
		lines = append(lines,
			ints(l.InSize(), l.OutSize()),
			ints(l.InputHeight(), l.InputWidth(), l.KernelHeight(), l.KernelWidth(), l.NumKernels(), l.Stride()))
		for k := 0; k < l.NumKernels(); k++ {
			kernel := l.Kernel(k)
			for i := 0; i < l.KernelHeight(); i++ {
				lines = append(lines, reals(mat.Row(nil, i, kernel)))
			}
			lines = append(lines, "")
		}
		lines = append(lines, reals(l.Biases()))

	case *layer.MaxPooling2D:
		lines = append(lines,
			ints(l.InSize(), l.OutSize()),
			ints(l.InputHeight(), l.InputWidth(), l.PoolHeight(), l.PoolWidth(), l.Stride()))

	case *layer.Activation:

	default:
		return errors.Errorf("unsupported layer type %T", l)
	}

	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

func ints(vals ...int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}

func reals(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// Decode replaces the network's layers with the ones read from r.
// Blank lines between layers are ignored; inside a Dense or Conv2D block the
// blank separators are required. On error the current layers are kept.
func (n *Network) Decode(r io.Reader) error {
	d := &decoder{sc: bufio.NewScanner(r)}
	d.sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var layers []layer.Layer
	for d.sc.Scan() {
		d.line++
		header := strings.TrimSpace(d.sc.Text())
		if header == "" {
			continue
		}

		l, err := d.layer(layer.Kind(header))
		if err != nil {
			return err
		}
		layers = append(layers, l)
	}
	if err := d.sc.Err(); err != nil {
		return errors.Wrap(err, "failed to read network")
	}

	candidate := New(layers...)
	if err := candidate.Validate(); err != nil {
		return errors.Wrapf(ErrFormat, "%v", err)
	}

	n.layers = layers
	n.inputs = nil
	return nil
}

type decoder struct {
	sc   *bufio.Scanner
	line int
}

func (d *decoder) errorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrFormat, "line %d: "+format, append([]interface{}{d.line}, args...)...)
}

// next returns the next line, trimmed. Blank lines are returned as "".
func (d *decoder) next() (string, error) {
	if !d.sc.Scan() {
		if err := d.sc.Err(); err != nil {
			return "", errors.Wrap(err, "failed to read network")
		}
		d.line++
		return "", d.errorf("unexpected end of file")
	}
	d.line++
	return strings.TrimSpace(d.sc.Text()), nil
}

// ints reads a line of exactly count space-separated positive integers.
func (d *decoder) ints(count int) ([]int, error) {
	line, err := d.next()
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(line)
	if len(fields) != count {
		return nil, d.errorf("expected %d integers, got %q", count, line)
	}
	vals := make([]int, count)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, d.errorf("%q is not an integer", f)
		}
		if v <= 0 {
			return nil, d.errorf("%d must be positive", v)
		}
		vals[i] = v
	}
	return vals, nil
}

// reals reads a line of exactly count comma-separated reals.
func (d *decoder) reals(count int) ([]float64, error) {
	line, err := d.next()
	if err != nil {
		return nil, err
	}
	fields := strings.Split(line, ",")
	if len(fields) != count {
		return nil, d.errorf("expected %d values, got %d", count, len(fields))
	}
	vals := make([]float64, count)
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, d.errorf("%q is not a number", f)
		}
		vals[i] = v
	}
	return vals, nil
}

// blank consumes a separator line, which must be empty.
func (d *decoder) blank() error {
	line, err := d.next()
	if err != nil {
		return err
	}
	if line != "" {
		return d.errorf("expected blank separator, got %q", line)
	}
	return nil
}

func (d *decoder) layer(kind layer.Kind) (layer.Layer, error) {
	switch kind {
	case layer.KindDense:
		return d.dense()
	case layer.KindConv2D:
		return d.conv2D()
	case layer.KindMaxPooling2D:
		return d.maxPooling2D()
	case layer.KindRelu, layer.KindSigmoid, layer.KindTanh:
		return layer.NewActivation(kind)
	}
	return nil, d.errorf("unknown layer type %q", kind)
}

// maxValues bounds any size declared in a layer header, so a corrupt header
// is rejected before anything is allocated for it.
const maxValues = 1 << 24

// product multiplies vals and reports false once the result exceeds maxValues.
func product(vals ...int) (int, bool) {
	p := 1
	for _, v := range vals {
		if v > maxValues/p {
			return 0, false
		}
		p *= v
	}
	return p, true
}

func (d *decoder) dense() (layer.Layer, error) {
	dims, err := d.ints(2)
	if err != nil {
		return nil, err
	}
	in, out := dims[0], dims[1]
	if _, ok := product(in, out); !ok {
		return nil, d.errorf("Dense %dx%d exceeds %d weights", in, out, maxValues)
	}

	var weights []float64
	for i := 0; i < in; i++ {
		row, err := d.reals(out)
		if err != nil {
			return nil, err
		}
		weights = append(weights, row...)
	}
	if err := d.blank(); err != nil {
		return nil, err
	}
	biases, err := d.reals(out)
	if err != nil {
		return nil, err
	}

	l := layer.NewDense(in, out)
	l.SetWeights(mat.NewDense(in, out, weights))
	l.SetBiases(biases)
	return l, nil
}

func (d *decoder) conv2D() (layer.Layer, error) {
	dims, err := d.ints(2)
	if err != nil {
		return nil, err
	}
	g, err := d.ints(6)
	if err != nil {
		return nil, err
	}
	h, w, kh, kw, nk, stride := g[0], g[1], g[2], g[3], g[4], g[5]
	if kh > h || kw > w {
		return nil, d.errorf("kernel %dx%d larger than input %dx%d", kh, kw, h, w)
	}

	inSize, okIn := product(h, w)
	outSize, okOut := product(nk, (h-kh)/stride+1, (w-kw)/stride+1)
	_, okParams := product(nk, kh, kw)
	if !okIn || !okOut || !okParams {
		return nil, d.errorf("Conv2D geometry %v exceeds %d values", g, maxValues)
	}
	if dims[0] != inSize || dims[1] != outSize {
		return nil, errors.Wrapf(ErrFormat, "line %d: Conv2D declares %dx%d but its geometry gives %dx%d",
			d.line-1, dims[0], dims[1], inSize, outSize)
	}

	var kernels [][]float64
	for k := 0; k < nk; k++ {
		var kernel []float64
		for i := 0; i < kh; i++ {
			row, err := d.reals(kw)
			if err != nil {
				return nil, err
			}
			kernel = append(kernel, row...)
		}
		if err := d.blank(); err != nil {
			return nil, err
		}
		kernels = append(kernels, kernel)
	}
	biases, err := d.reals(nk)
	if err != nil {
		return nil, err
	}

	l := layer.NewConv2D(h, w, kh, kw, nk, stride)
	for k, kernel := range kernels {
		l.SetKernel(k, mat.NewDense(kh, kw, kernel))
	}
	l.SetBiases(biases)
	return l, nil
}

func (d *decoder) maxPooling2D() (layer.Layer, error) {
	dims, err := d.ints(2)
	if err != nil {
		return nil, err
	}
	g, err := d.ints(5)
	if err != nil {
		return nil, err
	}
	h, w, ph, pw, stride := g[0], g[1], g[2], g[3], g[4]
	if ph > h || pw > w {
		return nil, d.errorf("pool %dx%d larger than input %dx%d", ph, pw, h, w)
	}
	if _, ok := product(h, w); !ok {
		return nil, d.errorf("MaxPooling2D input %dx%d exceeds %d values", h, w, maxValues)
	}

	l := layer.NewMaxPooling2D(h, w, ph, pw, stride)
	if dims[0] != l.InSize() || dims[1] != l.OutSize() {
		return nil, errors.Wrapf(ErrFormat, "line %d: MaxPooling2D declares %dx%d but its geometry gives %dx%d",
			d.line-1, dims[0], dims[1], l.InSize(), l.OutSize())
	}
	return l, nil
}
