// Package full implements a fully connected layer
package full

import "math"
import "math/rand"

import "github.com/pkg/errors"
import "gonum.org/v1/gonum/floats"
import "gonum.org/v1/gonum/mat"

import "github.com/neurlang/deepview/layer"

// Full is a fully connected layer with an optional ReLU activation.
type Full struct {
	in, out int
	relu    bool

	w  *mat.Dense // out x in, row n holds the incoming weights of neuron n
	b  []float64
	gw *mat.Dense
	gb []float64
	sw layer.State
	sb layer.State

	x *mat.Dense
	z *mat.Dense
}

// MustNew creates a new full layer with in inputs and out neurons
func MustNew(in, out int, relu bool, r *rand.Rand) *Full {
	o, err := New(in, out, relu, r)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new full layer with in inputs and out neurons, initialized
// uniformly in ±1/sqrt(in).
func New(in, out int, relu bool, r *rand.Rand) (o *Full, err error) {
	if in <= 0 || out <= 0 {
		return nil, errors.Errorf("full layer needs positive dimensions, got %dx%d", in, out)
	}
	o = &Full{in: in, out: out, relu: relu}
	bound := 1 / math.Sqrt(float64(in))
	var w = make([]float64, out*in)
	for i := range w {
		w[i] = (r.Float64()*2 - 1) * bound
	}
	o.b = make([]float64, out)
	for i := range o.b {
		o.b[i] = (r.Float64()*2 - 1) * bound
	}
	o.w = mat.NewDense(out, in, w)
	o.gw = mat.NewDense(out, in, nil)
	o.gb = make([]float64, out)
	return o, nil
}

// Dims returns the input and output width.
func (f *Full) Dims() (in, out int) {
	return f.in, f.out
}

// Forward computes x·Wᵀ + b, then ReLU if enabled.
func (f *Full) Forward(x *mat.Dense) *mat.Dense {
	rows, _ := x.Dims()
	var z = mat.NewDense(rows, f.out, nil)
	z.Mul(x, f.w.T())
	for i := 0; i < rows; i++ {
		floats.Add(z.RawRowView(i), f.b)
	}
	f.x, f.z = x, z
	if !f.relu {
		return z
	}
	var a = mat.DenseCopyOf(z)
	a.Apply(func(_, _ int, v float64) float64 {
		return math.Max(0, v)
	}, a)
	return a
}

// Backward accumulates the weight and bias gradients and returns the input gradient.
func (f *Full) Backward(grad *mat.Dense) *mat.Dense {
	var g = grad
	if f.relu {
		g = mat.DenseCopyOf(grad)
		g.Apply(func(i, j int, v float64) float64 {
			if f.z.At(i, j) > 0 {
				return v
			}
			return 0
		}, g)
	}
	var gw mat.Dense
	gw.Mul(g.T(), f.x)
	f.gw.Add(f.gw, &gw)
	rows, _ := g.Dims()
	for i := 0; i < rows; i++ {
		floats.Add(f.gb, g.RawRowView(i))
	}
	var dx = mat.NewDense(rows, f.in, nil)
	dx.Mul(g, f.w)
	return dx
}

// Update applies and clears the accumulated gradients.
func (f *Full) Update(opt layer.Optimizer) {
	opt.Update(f.w.RawMatrix().Data, f.gw.RawMatrix().Data, &f.sw)
	opt.Update(f.b, f.gb, &f.sb)
	f.gw.Zero()
	for i := range f.gb {
		f.gb[i] = 0
	}
	f.x, f.z = nil, nil
}

// Weights returns a copy of the incoming weights of each neuron.
func (f *Full) Weights() [][]float64 {
	var o = make([][]float64, f.out)
	for n := range o {
		o[n] = mat.Row(nil, n, f.w)
	}
	return o
}

// Biases returns a copy of the biases.
func (f *Full) Biases() []float64 {
	return append([]float64(nil), f.b...)
}

// SetParameters replaces the weights and biases.
func (f *Full) SetParameters(w [][]float64, b []float64) error {
	if len(w) != f.out || len(b) != f.out {
		return errors.Errorf("full layer has %d neurons, got %d weight rows and %d biases", f.out, len(w), len(b))
	}
	for n, row := range w {
		if len(row) != f.in {
			return errors.Errorf("neuron %d has %d weights, want %d", n, len(row), f.in)
		}
	}
	for n, row := range w {
		f.w.SetRow(n, row)
	}
	copy(f.b, b)
	return nil
}

var _ layer.Layer = (*Full)(nil)
