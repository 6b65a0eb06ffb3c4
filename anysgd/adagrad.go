package anysgd

import "github.com/unixpickle/anyvec"

const adagradDefaultInitialAccumulator = 0.1

// Adagrad scales every component of the gradient by the
// inverse root of its accumulated squares.
type Adagrad struct {
	// InitialAccumulator is the starting value of the sum
	// of squares. It must be positive.
	InitialAccumulator float64
}

func (Adagrad) Name() string { return "adagrad" }
func (Adagrad) optimizer()   {}

func adagradStep(a Adagrad, s *slotSet, w, g anyvec.Vector, rate float64) {
	c := w.Creator()
	acc := s.Get("accumulator", a.InitialAccumulator)
	acc.Add(square(g))
	delta := acc.Copy()
	anyvec.Pow(delta, c.MakeNumeric(-0.5))
	delta.Mul(g)
	delta.Scale(c.MakeNumeric(-rate))
	w.Add(delta)
}
