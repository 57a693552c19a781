package datasets

import "math/rand"
import "testing"

func TestBatchedPass(t *testing.T) {
	m := Synthetic(70, 5, 10, 1)
	b, err := NewBatched(m, 32)
	if err != nil {
		t.Fatal(err)
	}
	if b.Batches() != 3 {
		t.Fatalf("expected 3 batches, got %d", b.Batches())
	}
	var seen = make(map[int]int)
	var sizes []int
	it := b.Epoch(rand.New(rand.NewSource(2)))
	for {
		batch, ok, err := it.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		r, c := batch.Inputs.Dims()
		if r != batch.Len() || c != 5 {
			t.Errorf("bad batch dims %dx%d", r, c)
		}
		for _, y := range batch.Labels {
			seen[y]++
		}
		sizes = append(sizes, batch.Len())
	}
	if len(sizes) != 3 || sizes[0] != 32 || sizes[2] != 6 {
		t.Errorf("unexpected batch sizes %v", sizes)
	}
	for c := 0; c < 10; c++ {
		if seen[c] != 7 {
			t.Errorf("class %d seen %d times", c, seen[c])
		}
	}
}

func TestUnshuffledOrder(t *testing.T) {
	m := &Memory{X: [][]float64{{0}, {1}, {2}}, Y: []int{0, 1, 2}}
	b, _ := NewBatched(m, 2)
	it := b.Epoch(nil)
	batch, _, _ := it.Next()
	if batch.Labels[0] != 0 || batch.Labels[1] != 1 || batch.Inputs.At(1, 0) != 1 {
		t.Errorf("order not preserved: %v", batch.Labels)
	}
}

func TestNewBatchedErrors(t *testing.T) {
	if _, err := NewBatched(&Memory{}, 3); err == nil {
		t.Error("empty samples should fail")
	}
	if _, err := NewBatched(Synthetic(3, 2, 2, 0), 0); err == nil {
		t.Error("zero batch size should fail")
	}
}
