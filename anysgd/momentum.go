package anysgd

import "github.com/unixpickle/anyvec"

// DefaultMomentum is the momentum coefficient chosen by
// ParseOptimizer.
const DefaultMomentum = 0.9

// Momentum implements SGD with momentum.
//
// The accumulated gradient v is computed as
//
//     v := momentum * v + grad
//
// and the parameters move by -rate * v.
type Momentum struct {
	Momentum float64
}

func (Momentum) Name() string { return "momentum" }
func (Momentum) optimizer()   {}

func momentumStep(m Momentum, s *slotSet, w, g anyvec.Vector, rate float64) {
	c := w.Creator()
	acc := s.Get("momentum", 0)
	acc.Scale(c.MakeNumeric(m.Momentum))
	acc.Add(g)
	delta := acc.Copy()
	delta.Scale(c.MakeNumeric(-rate))
	w.Add(delta)
}
