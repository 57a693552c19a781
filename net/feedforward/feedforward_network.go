// Package feedforward implements a feedforward classifier network type
package feedforward

import "math"
import "math/rand"

import "github.com/pkg/errors"
import "gonum.org/v1/gonum/mat"

import "github.com/neurlang/deepview/datasets"
import "github.com/neurlang/deepview/layer"
import "github.com/neurlang/deepview/layer/full"
import "github.com/neurlang/deepview/weights"

// FeedforwardNetwork is a stack of fully connected layers with ReLU between
// them, trained with softmax cross-entropy.
type FeedforwardNetwork struct {
	layers []layer.Layer
	opt    layer.Optimizer
	input  int
	output int
}

// New builds a network with the given hidden widths between inputDim inputs
// and outputDim classes.
func New(hidden []int, inputDim, outputDim int, opt layer.Optimizer, r *rand.Rand) (*FeedforwardNetwork, error) {
	if opt == nil {
		return nil, errors.New("optimizer is mandatory")
	}
	if r == nil {
		r = rand.New(rand.NewSource(rand.Int63()))
	}
	var f = &FeedforwardNetwork{opt: opt, input: inputDim, output: outputDim}
	var prev = inputDim
	for i, size := range append(append([]int(nil), hidden...), outputDim) {
		l, err := full.New(prev, size, i < len(hidden), r)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %d", i)
		}
		f.layers = append(f.layers, l)
		prev = size
	}
	return f, nil
}

// LenLayers returns the number of weight layers, the output layer included.
func (f *FeedforwardNetwork) LenLayers() int {
	return len(f.layers)
}

// Forward returns the logits of the batch x.
func (f *FeedforwardNetwork) Forward(x *mat.Dense) *mat.Dense {
	var out = x
	for _, l := range f.layers {
		out = l.Forward(out)
	}
	return out
}

// Infer returns the most likely class of one sample.
func (f *FeedforwardNetwork) Infer(sample []float64) int {
	logits := f.Forward(mat.NewDense(1, len(sample), append([]float64(nil), sample...)))
	return argmax(logits.RawRowView(0))
}

// TrainStep runs forward and backward passes on the batch, updates the
// parameters and returns the mean cross-entropy loss.
func (f *FeedforwardNetwork) TrainStep(b datasets.Batch) (float64, error) {
	if b.Inputs == nil || b.Len() == 0 {
		return 0, errors.New("empty batch")
	}
	rows, cols := b.Inputs.Dims()
	if cols != f.input {
		return 0, errors.Errorf("batch has %d features, network expects %d", cols, f.input)
	}
	if rows != len(b.Labels) {
		return 0, errors.Errorf("batch has %d rows and %d labels", rows, len(b.Labels))
	}
	logits := f.Forward(b.Inputs)
	loss, grad, err := crossEntropy(logits, b.Labels)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return 0, errors.Errorf("loss diverged: %v", loss)
	}
	for i := len(f.layers) - 1; i >= 0; i-- {
		grad = f.layers[i].Backward(grad)
	}
	for _, l := range f.layers {
		l.Update(f.opt)
	}
	return loss, nil
}

// Parameters returns a snapshot of every layer's weights.
func (f *FeedforwardNetwork) Parameters() weights.Snapshot {
	var s = make(weights.Snapshot, len(f.layers))
	for i, l := range f.layers {
		s[i] = l.Weights()
	}
	return s
}

// Accuracy returns the fraction of samples of one pass classified correctly.
func (f *FeedforwardNetwork) Accuracy(ds datasets.Dataset) (float64, error) {
	var good, total int
	it := ds.Epoch(nil)
	for {
		b, ok, err := it.Next()
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		logits := f.Forward(b.Inputs)
		for i, y := range b.Labels {
			if argmax(logits.RawRowView(i)) == y {
				good++
			}
		}
		total += b.Len()
	}
	if total == 0 {
		return 0, nil
	}
	return float64(good) / float64(total), nil
}

func argmax(v []float64) (o int) {
	for i := range v {
		if v[i] > v[o] {
			o = i
		}
	}
	return
}

// crossEntropy returns the mean softmax cross-entropy and its gradient with respect to the logits.
func crossEntropy(logits *mat.Dense, labels []int) (float64, *mat.Dense, error) {
	rows, cols := logits.Dims()
	var grad = mat.NewDense(rows, cols, nil)
	var loss float64
	for i := 0; i < rows; i++ {
		y := labels[i]
		if y < 0 || y >= cols {
			return 0, nil, errors.Errorf("label %d out of range [0, %d)", y, cols)
		}
		row := logits.RawRowView(i)
		max := row[argmax(row)]
		var sum float64
		for _, v := range row {
			sum += math.Exp(v - max)
		}
		lse := max + math.Log(sum)
		loss += lse - row[y]
		g := grad.RawRowView(i)
		for j, v := range row {
			g[j] = math.Exp(v-lse) / float64(rows)
		}
		g[y] -= 1 / float64(rows)
	}
	return loss / float64(rows), grad, nil
}
