package layer

import "gonum.org/v1/gonum/mat"

// Layer is one trainable stage of a feedforward network. Batches are matrices
// whose rows are samples.
type Layer interface {

	// Forward computes the output of the batch x and keeps what Backward needs.
	Forward(x *mat.Dense) *mat.Dense

	// Backward takes the loss gradient with respect to the last Forward output,
	// accumulates the parameter gradients and returns the gradient with respect to the input.
	Backward(grad *mat.Dense) *mat.Dense

	// Update applies and clears the accumulated gradients.
	Update(opt Optimizer)

	// Weights returns a copy of the incoming weight vector of each neuron.
	Weights() [][]float64

	// Biases returns a copy of the bias of each neuron.
	Biases() []float64

	// SetParameters replaces the weights and biases.
	SetParameters(w [][]float64, b []float64) error
}
