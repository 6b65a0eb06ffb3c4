package anyrnn

import (
	"fmt"
	"math/rand"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/ctcnet"
)

const lstmRememberBias = 1

// LSTM is a long short-term memory layer without
// peepholes.
//
// If Projection is non-nil, the output (and the recurrent
// state fed back into the gates) is projected from
// StateCount down to OutCount components.
type LSTM struct {
	InCount    int
	StateCount int
	OutCount   int

	InValue  *LSTMGate
	In       *LSTMGate
	Remember *LSTMGate
	Output   *LSTMGate

	Projection *ctcnet.Param

	// CellClip, if non-zero, clips the cell state to
	// [-CellClip, CellClip] after every step.
	CellClip float64
}

// NewLSTM creates a randomized LSTM.
//
// Weights are drawn uniformly from [-initRange,
// initRange]. The remember gate is biased to remember.
// A proj of 0 disables the projection.
func NewLSTM(rng *rand.Rand, name string, in, state, proj int,
	initRange float64) *LSTM {
	out := state
	if proj > 0 {
		out = proj
	}
	res := &LSTM{
		InCount:    in,
		StateCount: state,
		OutCount:   out,
		InValue:    NewLSTMGate(rng, name+"/input_value", in, out, state, initRange, anydiff.Tanh),
		In:         NewLSTMGate(rng, name+"/input_gate", in, out, state, initRange, anydiff.Sigmoid),
		Remember:   NewLSTMGate(rng, name+"/forget_gate", in, out, state, initRange, anydiff.Sigmoid),
		Output:     NewLSTMGate(rng, name+"/output_gate", in, out, state, initRange, anydiff.Sigmoid),
	}
	res.Remember.Biases.Var.Vector.AddScalar(ctcnet.Creator.MakeNumeric(lstmRememberBias))
	if proj > 0 {
		res.Projection = &ctcnet.Param{
			Name: name + "/projection",
			Kind: ctcnet.Weight,
			Var:  anydiff.NewVar(ctcnet.UniformVector(rng, proj*state, initRange)),
		}
	}
	return res
}

// Apply evaluates the layer over a sequence.
// If reverse is true, timesteps are visited from last to
// first, which makes this the backward half of a
// bidirectional layer.
func (l *LSTM) Apply(in *Seq, reverse bool) *Seq {
	if in.Dim != l.InCount {
		panic(fmt.Sprintf("input size should be %d, but got %d", l.InCount, in.Dim))
	}
	batch := in.BatchSize()
	c := ctcnet.Creator
	var state anydiff.Res = anydiff.NewConst(c.MakeVector(batch * l.StateCount))
	var output anydiff.Res = anydiff.NewConst(c.MakeVector(batch * l.OutCount))

	res := &Seq{
		Steps:   make([]anydiff.Res, in.MaxTime()),
		Lengths: in.Lengths,
		Dim:     l.OutCount,
	}
	for i := range in.Steps {
		t := i
		if reverse {
			t = in.MaxTime() - (i + 1)
		}
		newOut, newState := l.step(in.Steps[t], output, state, batch)
		if in.allPresent(t) {
			output, state = newOut, newState
			res.Steps[t] = newOut
			continue
		}
		presOut, absOut := in.masks(t, l.OutCount)
		presState, absState := in.masks(t, l.StateCount)
		res.Steps[t] = anydiff.Mul(newOut, anydiff.NewConst(presOut))
		output = anydiff.Add(res.Steps[t], anydiff.Mul(output, anydiff.NewConst(absOut)))
		state = anydiff.Add(
			anydiff.Mul(newState, anydiff.NewConst(presState)),
			anydiff.Mul(state, anydiff.NewConst(absState)),
		)
	}
	return res
}

func (l *LSTM) step(in, lastOut, lastState anydiff.Res, batch int) (out, state anydiff.Res) {
	inValue := l.InValue.Apply(in, lastOut, batch)
	inGate := l.In.Apply(in, lastOut, batch)
	remember := l.Remember.Apply(in, lastOut, batch)
	outGate := l.Output.Apply(in, lastOut, batch)

	state = anydiff.Add(anydiff.Mul(remember, lastState), anydiff.Mul(inGate, inValue))
	if l.CellClip > 0 {
		state = Clip(state, l.CellClip)
	}
	out = anydiff.Mul(outGate, anydiff.Tanh(state))
	if l.Projection != nil {
		out = applyWeights(l.StateCount, l.OutCount, l.Projection.Var, out)
	}
	return
}

// Parameters returns the parameters of every gate,
// followed by the projection if there is one.
func (l *LSTM) Parameters() []*ctcnet.Param {
	var res []*ctcnet.Param
	for _, g := range []*LSTMGate{l.InValue, l.In, l.Remember, l.Output} {
		res = append(res, g.Parameters()...)
	}
	if l.Projection != nil {
		res = append(res, l.Projection)
	}
	return res
}

// An LSTMGate computes a value from the input and the
// previous output.
type LSTMGate struct {
	InCount    int
	StateIn    int
	OutCount   int
	Input      *ctcnet.Param
	State      *ctcnet.Param
	Biases     *ctcnet.Param
	Activation func(anydiff.Res) anydiff.Res
}

// NewLSTMGate creates a randomized gate with zero biases.
// The gate reads in input components and stateIn
// recurrent components and produces out components.
func NewLSTMGate(rng *rand.Rand, name string, in, stateIn, out int, initRange float64,
	activation func(anydiff.Res) anydiff.Res) *LSTMGate {
	return &LSTMGate{
		InCount:  in,
		StateIn:  stateIn,
		OutCount: out,
		Input: &ctcnet.Param{
			Name: name + "/input_weights",
			Kind: ctcnet.Weight,
			Var:  anydiff.NewVar(ctcnet.UniformVector(rng, in*out, initRange)),
		},
		State: &ctcnet.Param{
			Name: name + "/state_weights",
			Kind: ctcnet.Weight,
			Var:  anydiff.NewVar(ctcnet.UniformVector(rng, stateIn*out, initRange)),
		},
		Biases: &ctcnet.Param{
			Name: name + "/biases",
			Kind: ctcnet.Bias,
			Var:  anydiff.NewVar(ctcnet.Creator.MakeVector(out)),
		},
		Activation: activation,
	}
}

// Apply applies the gate to a batch.
func (l *LSTMGate) Apply(in, state anydiff.Res, batch int) anydiff.Res {
	wIn := applyWeights(l.InCount, l.OutCount, l.Input.Var, in)
	wState := applyWeights(l.StateIn, l.OutCount, l.State.Var, state)
	return l.Activation(anydiff.AddRepeated(anydiff.Add(wIn, wState), l.Biases.Var))
}

// Parameters returns the input weights, the state weights
// and the biases.
func (l *LSTMGate) Parameters() []*ctcnet.Param {
	return []*ctcnet.Param{l.Input, l.State, l.Biases}
}

func applyWeights(in, out int, weights anydiff.Res, batch anydiff.Res) anydiff.Res {
	weightMat := &anydiff.Matrix{Data: weights, Rows: out, Cols: in}
	inMat := &anydiff.Matrix{Data: batch, Rows: batch.Output().Len() / in, Cols: in}
	return anydiff.MatMul(false, true, inMat, weightMat).Data
}
