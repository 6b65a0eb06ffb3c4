package ctcnet

import "github.com/unixpickle/anydiff"

// WeightDecay computes a one-component L2 penalty
//
//     coeff * sum(||w||^2 / 2)
//
// over every parameter tagged Weight.
// Biases are skipped.
func WeightDecay(params []*Param, coeff float64) anydiff.Res {
	var sum anydiff.Res
	sum = anydiff.NewConst(Creator.MakeVector(1))
	for _, p := range params {
		if p.Kind != Weight {
			continue
		}
		sum = anydiff.Add(sum, anydiff.Sum(anydiff.Square(p.Var)))
	}
	return anydiff.Scale(sum, Creator.MakeNumeric(coeff/2))
}
