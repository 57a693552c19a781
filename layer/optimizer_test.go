package layer

import "testing"

func TestAdamDescends(t *testing.T) {
	a := NewAdam(0.1)
	var s State
	x := []float64{3}
	for i := 0; i < 500; i++ {
		a.Update(x, []float64{2 * x[0]}, &s)
	}
	if x[0] > 0.5 || x[0] < -0.5 {
		t.Errorf("adam did not minimize x^2: %v", x[0])
	}
}

func TestSGD(t *testing.T) {
	x := []float64{1, 1}
	SGD{LearningRate: 0.5}.Update(x, []float64{1, -1}, nil)
	if x[0] != 0.5 || x[1] != 1.5 {
		t.Errorf("bad step %v", x)
	}
}
