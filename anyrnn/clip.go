package anyrnn

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/ctcnet"
)

type clipRes struct {
	In     anydiff.Res
	Limit  float64
	OutVec anyvec.Vector
}

// Clip clamps every component of in to [-limit, limit].
// Gradients only flow through components that were not
// clamped.
func Clip(in anydiff.Res, limit float64) anydiff.Res {
	data := append([]float64{}, ctcnet.Floats(in.Output())...)
	for i, x := range data {
		if x > limit {
			data[i] = limit
		} else if x < -limit {
			data[i] = -limit
		}
	}
	return &clipRes{
		In:     in,
		Limit:  limit,
		OutVec: ctcnet.ConstVector(data),
	}
}

func (c *clipRes) Output() anyvec.Vector {
	return c.OutVec
}

func (c *clipRes) Vars() anydiff.VarSet {
	return c.In.Vars()
}

func (c *clipRes) Propagate(u anyvec.Vector, g anydiff.Grad) {
	in := ctcnet.Floats(c.In.Output())
	down := append([]float64{}, ctcnet.Floats(u)...)
	for i, x := range in {
		if x > c.Limit || x < -c.Limit {
			down[i] = 0
		}
	}
	c.In.Propagate(ctcnet.ConstVector(down), g)
}
