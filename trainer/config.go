package trainer

import "github.com/pkg/errors"

// InputDim is the flattened 28x28 image size, OutputDim the number of classes.
const InputDim = 784
const OutputDim = 10

// DefaultLayers are the hidden widths used when a Config names none.
var DefaultLayers = []int{128, 64}

// Config is the client supplied session configuration.
type Config struct {
	Layers []int `json:"layers"`

	// Epochs ends the session after this many epochs. Zero trains until stopped.
	Epochs int `json:"epochs,omitempty"`
}

// WithDefaults fills in the default hidden layers.
func (c Config) WithDefaults() Config {
	if len(c.Layers) == 0 {
		c.Layers = append([]int(nil), DefaultLayers...)
	} else {
		c.Layers = append([]int(nil), c.Layers...)
	}
	return c
}

// Validate reports ErrInvalidConfig for non positive widths or a negative epoch count.
func (c Config) Validate() error {
	for i, size := range c.Layers {
		if size <= 0 {
			return errors.Wrapf(ErrInvalidConfig, "layer %d has width %d", i, size)
		}
	}
	if c.Epochs < 0 {
		return errors.Wrapf(ErrInvalidConfig, "epochs is %d", c.Epochs)
	}
	return nil
}
