// Package grid projects network weights into 28x28 grids, one per neuron,
// so that deeper neurons can be viewed in the input image space.
package grid

import "math"

import "github.com/pkg/errors"
import "gonum.org/v1/gonum/floats"

import "github.com/neurlang/deepview/parallel"
import "github.com/neurlang/deepview/weights"

// Side is the grid side, Cells the number of values in a grid.
const Side = 28
const Cells = Side * Side

// ErrDimensionMismatch is returned when a weight vector has the wrong length for its layer.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// Grid is a row-major 28x28 grid with values in [-1, 1].
type Grid []float64

// At returns the value at row y and column x.
func (g Grid) At(y, x int) float64 {
	return g[y*Side+x]
}

// Hierarchy holds, for each weight layer, the grid of each neuron.
type Hierarchy [][]Grid

// Initial returns the grids of the first layer, or nil.
func (h Hierarchy) Initial() []Grid {
	if len(h) == 0 {
		return nil
	}
	return h[0]
}

// Normalize scales g in place so that its largest magnitude is 1. All-zero grids stay zero.
func Normalize(g Grid) {
	if len(g) == 0 {
		return
	}
	max := floats.Norm(g, math.Inf(1))
	if max > 0 {
		for i := range g {
			g[i] /= max
		}
	}
}

// Project computes the grid hierarchy of the weights. Layer 0 vectors are
// reshaped directly, every later neuron is the weighted sum of the previous
// layer's normalized grids. It returns ErrDimensionMismatch (wrapped) when a
// vector length disagrees with its layer.
func Project(w weights.Snapshot) (Hierarchy, error) {
	var h = make(Hierarchy, 0, len(w))
	for l, layer := range w {
		var prev []Grid
		var want = Cells
		if l > 0 {
			prev = h[l-1]
			want = len(prev)
		}
		for n, v := range layer {
			if len(v) != want {
				return nil, errors.Wrapf(ErrDimensionMismatch,
					"layer %d neuron %d has %d weights, want %d", l, n, len(v), want)
			}
		}
		var grids = make([]Grid, len(layer))
		parallel.ForEach(len(layer), parallel.Threads(), func(n int) {
			grids[n] = neuron(layer[n], prev)
		})
		h = append(h, grids)
	}
	return h, nil
}

func neuron(w []float64, prev []Grid) Grid {
	var g = make(Grid, Cells)
	if prev == nil {
		copy(g, w)
	} else {
		for k, weight := range w {
			floats.AddScaled(g, weight, prev[k])
		}
	}
	Normalize(g)
	return g
}
