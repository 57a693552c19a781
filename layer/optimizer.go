// Package layer defines the trainable layer and optimizer interfaces
package layer

import "math"

// State is the per-parameter-tensor memory of an Optimizer.
type State struct {
	m, v []float64
	t    int
}

// Optimizer updates parameters in place from their gradients.
type Optimizer interface {
	Update(params, grads []float64, state *State)
}

// Adam is the Adam optimizer.
type Adam struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64
}

// NewAdam returns Adam with the usual betas and epsilon.
func NewAdam(lr float64) *Adam {
	return &Adam{LearningRate: lr, Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-8}
}

// Update performs one Adam step.
func (a *Adam) Update(params, grads []float64, s *State) {
	if len(s.m) != len(params) {
		s.m = make([]float64, len(params))
		s.v = make([]float64, len(params))
		s.t = 0
	}
	s.t++
	c1 := 1 - math.Pow(a.Beta1, float64(s.t))
	c2 := 1 - math.Pow(a.Beta2, float64(s.t))
	for i, g := range grads {
		s.m[i] = a.Beta1*s.m[i] + (1-a.Beta1)*g
		s.v[i] = a.Beta2*s.v[i] + (1-a.Beta2)*g*g
		params[i] -= a.LearningRate * (s.m[i] / c1) / (math.Sqrt(s.v[i]/c2) + a.Epsilon)
	}
}

// SGD is plain stochastic gradient descent.
type SGD struct {
	LearningRate float64
}

// Update performs one gradient descent step.
func (o SGD) Update(params, grads []float64, _ *State) {
	for i, g := range grads {
		params[i] -= o.LearningRate * g
	}
}
