package trainer

import "math/rand"

import "github.com/neurlang/deepview/datasets"
import "github.com/neurlang/deepview/events"
import "github.com/neurlang/deepview/layer"
import "github.com/neurlang/deepview/net/feedforward"
import "github.com/neurlang/deepview/weights"

// Model is the trainable classifier driven by a session. Only the worker
// goroutine calls it.
type Model interface {

	// TrainStep trains on one batch and returns its loss.
	TrainStep(b datasets.Batch) (float64, error)

	// Parameters returns a consistent copy of all layers' weights.
	Parameters() weights.Snapshot
}

// Persistent is implemented by models whose weights can be checkpointed.
type Persistent interface {
	WriteCompressedWeightsToFile(name string) error
	ReadCompressedWeightsFromFile(name string) error
}

// ModelFactory builds a fresh model for a session configuration.
type ModelFactory func(cfg Config) (Model, error)

// Publisher receives the session events.
type Publisher interface {
	Publish(e events.Event) int
}

// FeedforwardFactory builds feedforward networks trained with Adam at the
// given learning rate. A zero seed draws a random one per model.
func FeedforwardFactory(lr float64, seed int64) ModelFactory {
	return func(cfg Config) (Model, error) {
		s := seed
		if s == 0 {
			s = rand.Int63()
		}
		net, err := feedforward.New(cfg.Layers, InputDim, OutputDim, layer.NewAdam(lr), rand.New(rand.NewSource(s)))
		if err != nil {
			return nil, err
		}
		return net, nil
	}
}
