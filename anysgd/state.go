package anysgd

import (
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/ctcnet"
)

// State is the mutable state of training: the global step
// and the slot vectors of the optimizer.
//
// Slots are keyed by "<parameter name>/<slot name>", so a
// State may be saved and restored along with the
// parameters it belongs to.
//
// A State is not safe for concurrent use.
type State struct {
	// GlobalStep is the number of steps applied so far.
	GlobalStep int64

	Slots map[string]anyvec.Vector
}

// NewState creates a State at step 0.
func NewState() *State {
	return &State{Slots: map[string]anyvec.Vector{}}
}

// slotSet accesses the slots of a single parameter.
type slotSet struct {
	State *State
	Param string
	Size  int
}

// Get returns the named slot, creating it with every
// component set to init if it does not exist yet.
func (s *slotSet) Get(name string, init float64) anyvec.Vector {
	key := s.Param + "/" + name
	if res, ok := s.State.Slots[key]; ok && res.Len() == s.Size {
		return res
	}
	res := ctcnet.Creator.MakeVector(s.Size)
	if init != 0 {
		res.AddScalar(res.Creator().MakeNumeric(init))
	}
	s.State.Slots[key] = res
	return res
}

// square returns a copy of v with every component squared.
func square(v anyvec.Vector) anyvec.Vector {
	res := v.Copy()
	res.Mul(v)
	return res
}

// decayInto sets avg to decay*avg + (1-decay)*v.
func decayInto(avg, v anyvec.Vector, decay float64) {
	c := avg.Creator()
	scaled := v.Copy()
	scaled.Scale(c.MakeNumeric(1 - decay))
	avg.Scale(c.MakeNumeric(decay))
	avg.Add(scaled)
}
