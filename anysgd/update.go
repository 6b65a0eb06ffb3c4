package anysgd

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/ctcnet"
)

// A Gradient is the gradient of a cost with respect to a
// parameter.
type Gradient struct {
	Param  *ctcnet.Param
	Values []float64
}

// Gradients copies the gradient of every parameter out of
// g.
// Parameters missing from g get a zero gradient.
func Gradients(params []*ctcnet.Param, g anydiff.Grad) []Gradient {
	res := make([]Gradient, len(params))
	for i, p := range params {
		res[i].Param = p
		if vec, ok := g[p.Var]; ok {
			res[i].Values = append([]float64{}, ctcnet.Floats(vec)...)
		} else {
			res[i].Values = make([]float64, p.Var.Vector.Len())
		}
	}
	return res
}

// Apply performs one optimization step with the given
// learning rate and advances the global step.
//
// Nothing is modified if an error is returned.
func Apply(opt Optimizer, state *State, grads []Gradient, rate float64) error {
	if rate < 0 {
		return &ctcnet.ConfigError{Key: "learning rate", Value: rate,
			Reason: "must be non-negative"}
	}
	if err := checkOptimizer(opt); err != nil {
		return err
	}
	for _, g := range grads {
		if n := g.Param.Var.Vector.Len(); n != len(g.Values) {
			return fmt.Errorf("apply gradient: %s has %d components but gradient has %d",
				g.Param.Name, n, len(g.Values))
		}
	}
	if state.Slots == nil {
		state.Slots = map[string]anyvec.Vector{}
	}

	step := state.GlobalStep + 1
	for _, g := range grads {
		w := g.Param.Var.Vector
		gv := ctcnet.ConstVector(g.Values)
		slots := &slotSet{State: state, Param: g.Param.Name, Size: w.Len()}
		switch opt := opt.(type) {
		case SGD:
			delta := gv.Copy()
			delta.Scale(w.Creator().MakeNumeric(-rate))
			w.Add(delta)
		case Momentum:
			momentumStep(opt, slots, w, gv, rate)
		case Adam:
			adamStep(opt, slots, w, gv, rate, step)
		case Adagrad:
			adagradStep(opt, slots, w, gv, rate)
		case Adadelta:
			adadeltaStep(opt, slots, w, gv, rate)
		case RMSProp:
			rmspropStep(opt, slots, w, gv, rate)
		}
	}
	state.GlobalStep = step
	return nil
}

func checkOptimizer(opt Optimizer) error {
	switch opt.(type) {
	case SGD, Momentum, Adam, Adagrad, Adadelta, RMSProp:
		return nil
	}
	return &ctcnet.ConfigError{Key: "optimizer", Value: fmt.Sprintf("%T", opt),
		Valid: OptimizerNames}
}
