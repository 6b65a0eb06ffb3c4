package anysgd

import (
	"math"

	"github.com/unixpickle/anyvec"
)

const (
	adamDefaultBeta1   = 0.9
	adamDefaultBeta2   = 0.999
	adamDefaultEpsilon = 1e-8
)

// Adam implements the adaptive moments SGD technique
// described in https://arxiv.org/pdf/1412.6980.pdf.
//
// Bias correction is folded into the step size, so
// Epsilon is added to the uncorrected second moment.
type Adam struct {
	// Decay rates for the first and second moments of the
	// gradient.
	Beta1, Beta2 float64

	// Epsilon is used to prevent divisions by zero.
	Epsilon float64
}

func (Adam) Name() string { return "adam" }
func (Adam) optimizer()   {}

func adamStep(a Adam, s *slotSet, w, g anyvec.Vector, rate float64, step int64) {
	c := w.Creator()
	first := s.Get("m", 0)
	second := s.Get("v", 0)
	decayInto(first, g, a.Beta1)
	decayInto(second, square(g), a.Beta2)

	t := float64(step)
	rate *= math.Sqrt(1-math.Pow(a.Beta2, t)) / (1 - math.Pow(a.Beta1, t))
	divisor := second.Copy()
	anyvec.Pow(divisor, c.MakeNumeric(0.5))
	divisor.AddScalar(c.MakeNumeric(a.Epsilon))
	delta := first.Copy()
	delta.Div(divisor)
	delta.Scale(c.MakeNumeric(-rate))
	w.Add(delta)
}
