package anyrnn

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/ctcnet"
)

// Bidir implements a bi-directional recurrent layer.
//
// The forward LSTM reads each utterance from its first
// frame; the backward LSTM reads it from its last real
// frame.
// Outputs for corresponding timesteps are concatenated,
// forward half first.
//
// If Backward is nil, the layer is unidirectional.
type Bidir struct {
	Forward  *LSTM
	Backward *LSTM
}

// OutCount returns the number of output components per
// timestep.
func (b *Bidir) OutCount() int {
	if b.Backward == nil {
		return b.Forward.OutCount
	}
	return b.Forward.OutCount + b.Backward.OutCount
}

// Apply applies the layer.
func (b *Bidir) Apply(in *Seq) *Seq {
	forw := b.Forward.Apply(in, false)
	if b.Backward == nil {
		return forw
	}
	back := b.Backward.Apply(in, true)
	res := &Seq{
		Steps:   make([]anydiff.Res, len(forw.Steps)),
		Lengths: in.Lengths,
		Dim:     b.OutCount(),
	}
	for t := range res.Steps {
		res.Steps[t] = ctcnet.ConcatRows(forw.Steps[t], back.Steps[t], in.BatchSize())
	}
	return res
}

// Parameters returns the forward parameters followed by
// the backward ones.
func (b *Bidir) Parameters() []*ctcnet.Param {
	res := b.Forward.Parameters()
	if b.Backward != nil {
		res = append(res, b.Backward.Parameters()...)
	}
	return res
}
