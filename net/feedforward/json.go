package feedforward

import "compress/lzw"
import "encoding/json"
import "io"
import "os"

import "github.com/pkg/errors"

import "github.com/neurlang/deepview/weights"

type persisted struct {
	Weights weights.Snapshot `json:"weights"`
	Biases  [][]float64      `json:"biases"`
}

// WriteCompressedWeightsToFile writes model weights to a lzw file
func (f *FeedforwardNetwork) WriteCompressedWeightsToFile(name string) error {
	file, err := os.Create(name)
	if err != nil {
		return err
	}
	err = f.WriteCompressedWeights(file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteCompressedWeights writes model weights to a writer
func (f *FeedforwardNetwork) WriteCompressedWeights(w io.Writer) error {
	var p = persisted{Weights: f.Parameters()}
	for _, l := range f.layers {
		p.Biases = append(p.Biases, l.Biases())
	}
	lw := lzw.NewWriter(w, lzw.LSB, 8)
	if err := json.NewEncoder(lw).Encode(&p); err != nil {
		lw.Close()
		return err
	}
	return lw.Close()
}

// ReadCompressedWeightsFromFile reads model weights from a lzw file
func (f *FeedforwardNetwork) ReadCompressedWeightsFromFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()
	return f.ReadCompressedWeights(file)
}

// ReadCompressedWeights reads model weights from a reader. The stored
// architecture must match the network.
func (f *FeedforwardNetwork) ReadCompressedWeights(r io.Reader) error {
	lr := lzw.NewReader(r, lzw.LSB, 8)
	defer lr.Close()
	var p persisted
	if err := json.NewDecoder(lr).Decode(&p); err != nil {
		return errors.Wrap(err, "decoding weights")
	}
	if len(p.Weights) != len(f.layers) || len(p.Biases) != len(f.layers) {
		return errors.Errorf("stored network has %d layers, want %d", len(p.Weights), len(f.layers))
	}
	for i, l := range f.layers {
		if err := l.SetParameters(p.Weights[i], p.Biases[i]); err != nil {
			return errors.Wrapf(err, "layer %d", i)
		}
	}
	return nil
}
