// Package weights implements the point-in-time weight snapshot of a network
package weights

// Snapshot holds, for each layer, the incoming weight vector of every neuron.
// Layer 0 vectors have the network input length, later vectors have the width
// of the previous layer.
type Snapshot [][][]float64

// Len returns the number of layers in the snapshot.
func (s Snapshot) Len() int {
	return len(s)
}

// Empty reports whether the snapshot holds no layers.
func (s Snapshot) Empty() bool {
	return len(s) == 0
}

// Widths returns the neuron count of each layer.
func (s Snapshot) Widths() (o []int) {
	o = make([]int, len(s))
	for i, l := range s {
		o[i] = len(l)
	}
	return
}

// Clone deep copies the snapshot so the copy shares no memory with s.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	var o = make(Snapshot, len(s))
	for i, l := range s {
		o[i] = make([][]float64, len(l))
		for j, v := range l {
			o[i][j] = append([]float64(nil), v...)
		}
	}
	return o
}
