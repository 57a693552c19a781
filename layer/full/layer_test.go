package full

import "math"
import "math/rand"
import "testing"

import "gonum.org/v1/gonum/mat"

import "github.com/neurlang/deepview/layer"

// numerical gradient agrees with Backward
func TestGradient(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	f := MustNew(4, 3, true, r)
	x := mat.NewDense(2, 4, []float64{0.5, -1, 2, 0.1, -0.3, 0.8, 0.2, 1})
	// loss = sum of outputs
	out := f.Forward(x)
	rows, cols := out.Dims()
	ones := mat.NewDense(rows, cols, nil)
	ones.Apply(func(_, _ int, _ float64) float64 { return 1 }, ones)
	f.Backward(ones)

	sum := func() float64 {
		return mat.Sum(f.Forward(x))
	}
	const eps = 1e-6
	for n := 0; n < 3; n++ {
		for k := 0; k < 4; k++ {
			old := f.w.At(n, k)
			f.w.Set(n, k, old+eps)
			plus := sum()
			f.w.Set(n, k, old-eps)
			minus := sum()
			f.w.Set(n, k, old)
			num := (plus - minus) / (2 * eps)
			if math.Abs(num-f.gw.At(n, k)) > 1e-5 {
				t.Errorf("w[%d][%d]: numeric %v analytic %v", n, k, num, f.gw.At(n, k))
			}
		}
	}
}

func TestParameters(t *testing.T) {
	f := MustNew(2, 2, false, rand.New(rand.NewSource(1)))
	if err := f.SetParameters([][]float64{{1, 2}, {3, 4}}, []float64{0.5, -0.5}); err != nil {
		t.Fatal(err)
	}
	out := f.Forward(mat.NewDense(1, 2, []float64{1, 1}))
	if out.At(0, 0) != 3.5 || out.At(0, 1) != 6.5 {
		t.Errorf("unexpected output %v", mat.Formatted(out))
	}
	w := f.Weights()
	w[0][0] = 100
	if f.Weights()[0][0] != 1 {
		t.Error("Weights must return a copy")
	}
	if err := f.SetParameters([][]float64{{1}}, []float64{0}); err == nil {
		t.Error("wrong shape should fail")
	}
	f.Update(layer.SGD{LearningRate: 0.1})
}

func TestNewInvalid(t *testing.T) {
	if _, err := New(0, 3, false, rand.New(rand.NewSource(1))); err == nil {
		t.Error("zero input width should fail")
	}
}
