package anysgd

import "github.com/unixpickle/anyvec"

const (
	adadeltaDefaultRho     = 0.95
	adadeltaDefaultEpsilon = 1e-8
)

// Adadelta implements the technique described in
// https://arxiv.org/abs/1212.5701.
//
// The computed update is still scaled by the learning
// rate, so a rate of 1 matches the paper.
type Adadelta struct {
	// Rho is the decay rate of both running averages.
	Rho float64

	// Epsilon is used to prevent divisions by zero.
	Epsilon float64
}

func (Adadelta) Name() string { return "adadelta" }
func (Adadelta) optimizer()   {}

func adadeltaStep(a Adadelta, s *slotSet, w, g anyvec.Vector, rate float64) {
	c := w.Creator()
	eps := c.MakeNumeric(a.Epsilon)
	accum := s.Get("accum", 0)
	accumUpdate := s.Get("accum_update", 0)
	decayInto(accum, square(g), a.Rho)

	update := accumUpdate.Copy()
	update.AddScalar(eps)
	divisor := accum.Copy()
	divisor.AddScalar(eps)
	update.Div(divisor)
	anyvec.Pow(update, c.MakeNumeric(0.5))
	update.Mul(g)
	decayInto(accumUpdate, square(update), a.Rho)

	update.Scale(c.MakeNumeric(-rate))
	w.Add(update)
}
