package ctcnet

import (
	"math/rand"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

// A Dropout layer applies inverted dropout.
//
// While training, every input is kept with probability
// KeepProb and scaled by 1/KeepProb; otherwise the input
// passes through unchanged.
// A KeepProb of 0 or of at least 1 disables dropout.
type Dropout struct {
	KeepProb float64
	Rand     *rand.Rand
}

// Apply applies the layer.
// The mask is only sampled when training is true.
func (d *Dropout) Apply(in anydiff.Res, training bool) anydiff.Res {
	if !training || d.KeepProb <= 0 || d.KeepProb >= 1 {
		return in
	}
	c := in.Output().Creator()
	mask := c.MakeVector(in.Output().Len())
	anyvec.Rand(mask, anyvec.Uniform, d.Rand)
	anyvec.LessThan(mask, c.MakeNumeric(d.KeepProb))
	mask.Scale(c.MakeNumeric(1 / d.KeepProb))
	return anydiff.Mul(in, anydiff.NewConst(mask))
}

// InputNoise adds zero-mean Gaussian noise to its input
// while training.
// A Stddev of 0 disables the layer.
type InputNoise struct {
	Stddev float64
	Rand   *rand.Rand
}

// Apply applies the layer.
func (n *InputNoise) Apply(in anydiff.Res, training bool) anydiff.Res {
	if !training || n.Stddev == 0 {
		return in
	}
	c := in.Output().Creator()
	noise := c.MakeVector(in.Output().Len())
	anyvec.Rand(noise, anyvec.Normal, n.Rand)
	noise.Scale(c.MakeNumeric(n.Stddev))
	return anydiff.Add(in, anydiff.NewConst(noise))
}
