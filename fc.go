package ctcnet

import (
	"fmt"
	"math/rand"

	"github.com/unixpickle/anydiff"
)

// FC is a fully-connected layer.
type FC struct {
	InCount  int
	OutCount int
	Weights  *Param
	Biases   *Param
}

// NewFC creates an FC whose weights are drawn uniformly
// from [-initRange, initRange] and whose biases are zero.
//
// The parameters are named name+"/weights" and
// name+"/biases".
func NewFC(rng *rand.Rand, name string, in, out int, initRange float64) *FC {
	return &FC{
		InCount:  in,
		OutCount: out,
		Weights:  NewParam(name+"/weights", Weight, UniformVector(rng, in*out, initRange)),
		Biases:   NewParam(name+"/biases", Bias, Creator.MakeVector(out)),
	}
}

// Apply applies the fully-connected layer to a batch of
// inputs.
func (f *FC) Apply(in anydiff.Res, batch int) anydiff.Res {
	if batch*f.InCount != in.Output().Len() {
		panic(fmt.Sprintf("input length should be %d, but got %d",
			batch*f.InCount, in.Output().Len()))
	}
	weightMat := &anydiff.Matrix{
		Data: f.Weights.Var,
		Rows: f.OutCount,
		Cols: f.InCount,
	}
	inMat := &anydiff.Matrix{
		Data: in,
		Rows: batch,
		Cols: f.InCount,
	}
	weighted := anydiff.MatMul(false, true, inMat, weightMat)
	return anydiff.AddRepeated(weighted.Data, f.Biases.Var)
}

// Parameters returns the weights and the biases, in that
// order.
func (f *FC) Parameters() []*Param {
	return []*Param{f.Weights, f.Biases}
}
