package anysgd

import (
	"fmt"

	"github.com/unixpickle/ctcnet"
)

// AddGradientNoise is meant to add scaled, zero-mean
// Gaussian noise to gradients.
// It is not implemented and always fails.
func AddGradientNoise(grads []Gradient, scale float64) ([]Gradient, error) {
	return nil, fmt.Errorf("add gradient noise (scale %g): %w", scale, ctcnet.ErrNotImplemented)
}
