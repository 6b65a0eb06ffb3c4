package anysgd

import "github.com/unixpickle/anyvec"

const (
	rmspropDefaultDecay   = 0.9
	rmspropDefaultEpsilon = 1e-10
)

// RMSProp implements the RMSProp regularizer; see:
// http://www.cs.toronto.edu/~tijmen/csc321/slides/lecture_slides_lec6.pdf.
//
// The running mean square starts at 1.
type RMSProp struct {
	// The decay rate for the running average.
	Decay float64

	// Momentum applied to the scaled gradient.
	// A value of 0 disables momentum.
	Momentum float64

	// Epsilon is used to prevent divisions by zero.
	Epsilon float64
}

func (RMSProp) Name() string { return "rmsprop" }
func (RMSProp) optimizer()   {}

func rmspropStep(r RMSProp, s *slotSet, w, g anyvec.Vector, rate float64) {
	c := w.Creator()
	meanSquare := s.Get("rms", 1)
	mom := s.Get("momentum", 0)
	decayInto(meanSquare, square(g), r.Decay)

	div := meanSquare.Copy()
	div.AddScalar(c.MakeNumeric(r.Epsilon))
	anyvec.Pow(div, c.MakeNumeric(-0.5))
	scaled := g.Copy()
	scaled.Mul(div)
	scaled.Scale(c.MakeNumeric(rate))
	mom.Scale(c.MakeNumeric(r.Momentum))
	mom.Add(scaled)
	w.Sub(mom)
}
