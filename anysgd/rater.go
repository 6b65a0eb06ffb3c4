package anysgd

import "math"

// A Rater determines the learning rate given the epoch
// number.
// An "epoch" is a full pass over the training set, so
// fractional epochs are possible.
type Rater interface {
	Rate(epoch float64) float64
}

// A ConstRater is a Rater which always returns the same
// constant learning rate.
type ConstRater float64

// Rate returns float64(c).
func (c ConstRater) Rate(epoch float64) float64 {
	return float64(c)
}

// A DecayRater multiplies an initial rate by Decay once
// every Interval epochs, starting after Start epochs.
type DecayRater struct {
	Initial  float64
	Decay    float64
	Start    float64
	Interval float64
}

// Rate computes the decayed rate.
func (d *DecayRater) Rate(epoch float64) float64 {
	if epoch < d.Start || d.Interval <= 0 {
		return d.Initial
	}
	steps := math.Floor((epoch-d.Start)/d.Interval) + 1
	return d.Initial * math.Pow(d.Decay, steps)
}
