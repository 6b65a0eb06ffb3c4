// Package ctcnet provides the building blocks shared by
// the CTC acoustic models in this module: tagged
// parameters, dense layers, dropout and regularizers.
//
// Sub-packages implement the recurrent encoder (anyrnn),
// CTC costs and decoders (anyctc), optimizers (anysgd) and
// the model abstraction itself (ctcmodel).
package ctcnet

import (
	"math/rand"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec64"
)

// Creator is the vector creator used throughout ctcnet.
//
// CTC computations read []float64 numeric lists directly,
// so every vector in a model is created with anyvec64.
var Creator anyvec.Creator = anyvec64.DefaultCreator{}

// A ParamKind tags a parameter with its role.
type ParamKind int

// These are the parameter kinds.
//
// Weights are subject to weight decay; biases are not.
const (
	Weight ParamKind = iota
	Bias
)

// String returns "weight" or "bias".
func (p ParamKind) String() string {
	if p == Bias {
		return "bias"
	}
	return "weight"
}

// A Param is a named, learnable variable.
//
// Names are unique within a model and are used to match
// parameters when restoring checkpoints.
type Param struct {
	Name string
	Kind ParamKind
	Var  *anydiff.Var
}

// NewParam creates a parameter that wraps the vector.
func NewParam(name string, kind ParamKind, v anyvec.Vector) *Param {
	return &Param{Name: name, Kind: kind, Var: anydiff.NewVar(v)}
}

// A Parameterizer is anything with learnable parameters.
//
// The parameters of a Parameterizer must be in the same
// order every time Parameters() is called.
type Parameterizer interface {
	Parameters() []*Param
}

// AllParameters collects the parameters of every object
// that implements Parameterizer, in order.
func AllParameters(objs ...interface{}) []*Param {
	var res []*Param
	for _, x := range objs {
		if p, ok := x.(Parameterizer); ok {
			res = append(res, p.Parameters()...)
		}
	}
	return res
}

// Vars extracts the variables from a list of parameters.
func Vars(params []*Param) []*anydiff.Var {
	res := make([]*anydiff.Var, len(params))
	for i, p := range params {
		res[i] = p.Var
	}
	return res
}

// UniformVector creates a vector of n values drawn from
// the uniform distribution on [-scale, scale].
func UniformVector(rng *rand.Rand, n int, scale float64) anyvec.Vector {
	res := Creator.MakeVector(n)
	anyvec.Rand(res, anyvec.Uniform, rng)
	res.Scale(Creator.MakeNumeric(2 * scale))
	res.AddScalar(Creator.MakeNumeric(-scale))
	return res
}

// ConstVector creates a vector from raw values.
func ConstVector(data []float64) anyvec.Vector {
	return Creator.MakeVectorData(Creator.MakeNumericList(data))
}

// Floats returns the values of a vector as a []float64.
func Floats(v anyvec.Vector) []float64 {
	return v.Data().([]float64)
}
