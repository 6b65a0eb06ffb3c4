package anyrnn

import (
	"fmt"
	"math/rand"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/ctcnet"
)

// StackConfig describes a stack of recurrent layers.
type StackConfig struct {
	InCount  int
	NumUnit  int
	NumLayer int

	// NumProj, if non-zero, adds a projection to every
	// LSTM.
	NumProj int

	Bidirectional bool
	InitRange     float64
	CellClip      float64

	// Keep probabilities for dropout on the inputs and
	// outputs of every layer.
	KeepInput  float64
	KeepHidden float64
}

// A Stack is a meta-layer for composing recurrent layers.
// In a Stack, the output of each layer is fed as input to
// the next.
//
// An empty Stack is invalid.
type Stack struct {
	Layers        []*Bidir
	InputDropout  *ctcnet.Dropout
	HiddenDropout *ctcnet.Dropout
}

// NewStack creates a randomized Stack.
// Layer i is named name+"/layer<i+1>".
func NewStack(rng *rand.Rand, name string, cfg StackConfig) *Stack {
	res := &Stack{
		InputDropout:  &ctcnet.Dropout{KeepProb: cfg.KeepInput, Rand: rng},
		HiddenDropout: &ctcnet.Dropout{KeepProb: cfg.KeepHidden, Rand: rng},
	}
	inCount := cfg.InCount
	for i := 0; i < cfg.NumLayer; i++ {
		layerName := fmt.Sprintf("%s/layer%d", name, i+1)
		layer := &Bidir{
			Forward: NewLSTM(rng, layerName+"/fw", inCount, cfg.NumUnit, cfg.NumProj,
				cfg.InitRange),
		}
		layer.Forward.CellClip = cfg.CellClip
		if cfg.Bidirectional {
			layer.Backward = NewLSTM(rng, layerName+"/bw", inCount, cfg.NumUnit,
				cfg.NumProj, cfg.InitRange)
			layer.Backward.CellClip = cfg.CellClip
		}
		res.Layers = append(res.Layers, layer)
		inCount = layer.OutCount()
	}
	return res
}

// Apply applies every layer in order.
// The result holds the output of each layer, so that the
// i-th entry is the output of layer i+1.
//
// Dropout is only applied while training.
func (s *Stack) Apply(in *Seq, training bool) []*Seq {
	s.assertNonEmpty()
	var res []*Seq
	for _, layer := range s.Layers {
		in = dropSeq(s.InputDropout, in, training)
		out := dropSeq(s.HiddenDropout, layer.Apply(in), training)
		res = append(res, out)
		in = out
	}
	return res
}

// OutCount returns the output size of the layer at the
// given 1-based depth.
func (s *Stack) OutCount(depth int) int {
	return s.Layers[depth-1].OutCount()
}

// Parameters returns the parameters of every layer, from
// the first layer onwards.
func (s *Stack) Parameters() []*ctcnet.Param {
	var res []*ctcnet.Param
	for _, l := range s.Layers {
		res = append(res, l.Parameters()...)
	}
	return res
}

func (s *Stack) assertNonEmpty() {
	if len(s.Layers) == 0 {
		panic("empty Stack is invalid")
	}
}

func dropSeq(d *ctcnet.Dropout, in *Seq, training bool) *Seq {
	if d == nil || !training {
		return in
	}
	return in.Map(in.Dim, func(step anydiff.Res, batch int) anydiff.Res {
		return d.Apply(step, training)
	})
}
