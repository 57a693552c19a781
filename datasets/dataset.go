// Package datasets implements the labelled sample sets and their batching
package datasets

import "math/rand"

import "github.com/pkg/errors"
import "gonum.org/v1/gonum/mat"

// Batch is one training step worth of samples. Rows of Inputs are samples.
type Batch struct {
	Inputs *mat.Dense
	Labels []int
}

// Len returns the number of samples in the batch.
func (b Batch) Len() int {
	return len(b.Labels)
}

// Samples is an indexed collection of labelled samples of equal dimension.
type Samples interface {
	Len() int
	Dim() int

	// Sample writes sample n into dst (of length Dim) and returns its label.
	Sample(n int, dst []float64) (label int)
}

// Iterator yields the batches of one pass over a dataset.
type Iterator interface {

	// Next returns the next batch, or false at the end of the pass.
	Next() (Batch, bool, error)
}

// Dataset is a source of batches.
type Dataset interface {

	// Batches returns the number of batches in one pass.
	Batches() int

	// Epoch starts one pass. When r is not nil the sample order is shuffled using r.
	Epoch(r *rand.Rand) Iterator
}

// Batched splits Samples into batches of Size samples. The last batch may be smaller.
type Batched struct {
	Samples Samples
	Size    int
}

// NewBatched returns samples split into batches of size.
func NewBatched(s Samples, size int) (*Batched, error) {
	if s == nil || s.Len() == 0 {
		return nil, errors.New("no samples")
	}
	if size <= 0 {
		return nil, errors.Errorf("batch size must be positive, got %d", size)
	}
	return &Batched{Samples: s, Size: size}, nil
}

// Batches returns the number of batches in one pass.
func (b *Batched) Batches() int {
	return (b.Samples.Len() + b.Size - 1) / b.Size
}

// Epoch starts one pass over the samples.
func (b *Batched) Epoch(r *rand.Rand) Iterator {
	var order = make([]int, b.Samples.Len())
	for i := range order {
		order[i] = i
	}
	if r != nil {
		r.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	return &batchIterator{b: b, order: order}
}

type batchIterator struct {
	b     *Batched
	order []int
	pos   int
}

func (it *batchIterator) Next() (Batch, bool, error) {
	if it.pos >= len(it.order) {
		return Batch{}, false, nil
	}
	end := it.pos + it.b.Size
	if end > len(it.order) {
		end = len(it.order)
	}
	var dim = it.b.Samples.Dim()
	var rows = end - it.pos
	var data = make([]float64, rows*dim)
	var labels = make([]int, rows)
	for i := 0; i < rows; i++ {
		labels[i] = it.b.Samples.Sample(it.order[it.pos+i], data[i*dim:(i+1)*dim])
	}
	it.pos = end
	return Batch{Inputs: mat.NewDense(rows, dim, data), Labels: labels}, true, nil
}

// Memory is an in-memory sample set.
type Memory struct {
	X [][]float64
	Y []int
}

// Len returns the number of samples.
func (m *Memory) Len() int {
	return len(m.Y)
}

// Dim returns the sample dimension.
func (m *Memory) Dim() int {
	if len(m.X) == 0 {
		return 0
	}
	return len(m.X[0])
}

// Sample copies sample n into dst.
func (m *Memory) Sample(n int, dst []float64) int {
	copy(dst, m.X[n])
	return m.Y[n]
}

// Synthetic generates n noisy samples around one random prototype per class.
// The set is learnable and deterministic for a given seed.
func Synthetic(n, dim, classes int, seed int64) *Memory {
	var r = rand.New(rand.NewSource(seed))
	var protos = make([][]float64, classes)
	for c := range protos {
		protos[c] = make([]float64, dim)
		for i := range protos[c] {
			protos[c][i] = r.Float64()*2 - 1
		}
	}
	var m = &Memory{X: make([][]float64, n), Y: make([]int, n)}
	for i := 0; i < n; i++ {
		c := i % classes
		m.Y[i] = c
		m.X[i] = make([]float64, dim)
		for j := range m.X[i] {
			m.X[i][j] = protos[c][j] + 0.3*r.NormFloat64()
		}
	}
	return m
}
