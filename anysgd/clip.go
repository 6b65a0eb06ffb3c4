package anysgd

import "gonum.org/v1/gonum/floats"

// ClipByValue clamps every gradient component to
// [-limit, limit].
// The input gradients are not modified.
func ClipByValue(grads []Gradient, limit float64) []Gradient {
	res := copyGradients(grads)
	for _, g := range res {
		for i, x := range g.Values {
			if x > limit {
				g.Values[i] = limit
			} else if x < -limit {
				g.Values[i] = -limit
			}
		}
	}
	return res
}

// ClipByNorm rescales every gradient whose L2 norm
// exceeds limit so that its norm is limit.
// Each gradient is clipped on its own.
// The input gradients are not modified.
func ClipByNorm(grads []Gradient, limit float64) []Gradient {
	res := copyGradients(grads)
	for _, g := range res {
		if norm := floats.Norm(g.Values, 2); norm > limit {
			floats.Scale(limit/norm, g.Values)
		}
	}
	return res
}

func copyGradients(grads []Gradient) []Gradient {
	res := make([]Gradient, len(grads))
	for i, g := range grads {
		res[i] = Gradient{Param: g.Param, Values: append([]float64{}, g.Values...)}
	}
	return res
}
