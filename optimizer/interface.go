// Package optimizer updates network parameters from their gradients.
package optimizer

// Optimizer defines the common interface for all optimizers
type Optimizer interface {
	// Step applies one update to every trainable parameter that has a
	// gradient.
	Step() error

	// ZeroGrad clears the gradients of the optimized parameters.
	ZeroGrad()

	// GetStepCount returns the current optimization step number
	GetStepCount() uint64
}
