package feedforward

import "bytes"
import "math/rand"
import "testing"

import "github.com/neurlang/deepview/datasets"
import "github.com/neurlang/deepview/layer"

func newNet(t *testing.T, hidden ...int) *FeedforwardNetwork {
	f, err := New(hidden, 6, 3, layer.NewAdam(0.01), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestShape(t *testing.T) {
	f := newNet(t, 5, 4)
	p := f.Parameters()
	if len(p) != 3 || f.LenLayers() != 3 {
		t.Fatalf("expected 3 weight layers, got %d", len(p))
	}
	want := [][2]int{{5, 6}, {4, 5}, {3, 4}}
	for i, w := range want {
		if len(p[i]) != w[0] || len(p[i][0]) != w[1] {
			t.Errorf("layer %d is %dx%d, want %dx%d", i, len(p[i]), len(p[i][0]), w[0], w[1])
		}
	}
}

// loss decreases on a learnable set
func TestTrainStep(t *testing.T) {
	f := newNet(t, 8)
	ds, _ := datasets.NewBatched(datasets.Synthetic(60, 6, 3, 4), 10)
	r := rand.New(rand.NewSource(5))
	var first, last float64
	for epoch := 0; epoch < 30; epoch++ {
		var total float64
		it := ds.Epoch(r)
		for {
			b, ok, err := it.Next()
			if err != nil {
				t.Fatal(err)
			}
			if !ok {
				break
			}
			loss, err := f.TrainStep(b)
			if err != nil {
				t.Fatal(err)
			}
			total += loss
		}
		if epoch == 0 {
			first = total
		}
		last = total
	}
	if last >= first {
		t.Errorf("loss did not decrease: %v -> %v", first, last)
	}
	acc, err := f.Accuracy(ds)
	if err != nil {
		t.Fatal(err)
	}
	if acc < 0.9 {
		t.Errorf("accuracy %v too low", acc)
	}
	var good int
	var samples = ds.Samples
	var x = make([]float64, samples.Dim())
	for i := 0; i < samples.Len(); i++ {
		if y := samples.Sample(i, x); f.Infer(x) == y {
			good++
		}
	}
	if float64(good)/float64(samples.Len()) != acc {
		t.Errorf("Infer agrees on %d samples, Accuracy reports %v", good, acc)
	}
}

func TestTrainStepErrors(t *testing.T) {
	f := newNet(t, 4)
	ds, _ := datasets.NewBatched(datasets.Synthetic(4, 5, 3, 1), 4)
	b, _, _ := ds.Epoch(nil).Next()
	if _, err := f.TrainStep(b); err == nil {
		t.Error("wrong feature count should fail")
	}
	bad, _ := datasets.NewBatched(&datasets.Memory{X: [][]float64{make([]float64, 6)}, Y: []int{7}}, 1)
	b, _, _ = bad.Epoch(nil).Next()
	if _, err := f.TrainStep(b); err == nil {
		t.Error("label out of range should fail")
	}
	if _, err := f.TrainStep(datasets.Batch{}); err == nil {
		t.Error("empty batch should fail")
	}
}

func TestPersistence(t *testing.T) {
	f := newNet(t, 4)
	var buf bytes.Buffer
	if err := f.WriteCompressedWeights(&buf); err != nil {
		t.Fatal(err)
	}
	g, _ := New([]int{4}, 6, 3, layer.NewAdam(0.01), rand.New(rand.NewSource(99)))
	if err := g.ReadCompressedWeights(&buf); err != nil {
		t.Fatal(err)
	}
	a, b := f.Parameters(), g.Parameters()
	for i := range a {
		for j := range a[i] {
			for k := range a[i][j] {
				if a[i][j][k] != b[i][j][k] {
					t.Fatalf("weight %d/%d/%d differs", i, j, k)
				}
			}
		}
	}
	h := newNet(t, 5)
	buf.Reset()
	f.WriteCompressedWeights(&buf)
	if err := h.ReadCompressedWeights(&buf); err == nil {
		t.Error("architecture mismatch should fail")
	}
}
