package ctcnet

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anydifftest"
)

func TestWeightDecay(t *testing.T) {
	params := []*Param{
		NewParam("w1", Weight, ConstVector([]float64{1, 2})),
		NewParam("b1", Bias, ConstVector([]float64{10})),
		NewParam("w2", Weight, ConstVector([]float64{-3})),
	}
	actual := Floats(WeightDecay(params, 0.5).Output())
	if len(actual) != 1 || math.Abs(actual[0]-3.5) > 1e-12 {
		t.Errorf("expected [3.5] but got %v", actual)
	}
	checker := &anydifftest.ResChecker{
		F: func() anydiff.Res {
			return WeightDecay(params, 0.5)
		},
		V:     Vars(params),
		Delta: 1e-5,
		Prec:  1e-4,
	}
	checker.FullCheck(t)
}

func TestFC(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	fc := NewFC(rng, "fc", 3, 2, 0.5)
	if fc.Weights.Name != "fc/weights" || fc.Biases.Name != "fc/biases" {
		t.Errorf("unexpected names: %s, %s", fc.Weights.Name, fc.Biases.Name)
	}
	if fc.Weights.Kind != Weight || fc.Biases.Kind != Bias {
		t.Error("unexpected parameter kinds")
	}
	in := anydiff.NewVar(UniformVector(rng, 6, 1))
	checker := &anydifftest.ResChecker{
		F: func() anydiff.Res {
			return fc.Apply(in, 2)
		},
		V:     append([]*anydiff.Var{in}, Vars(fc.Parameters())...),
		Delta: 1e-5,
		Prec:  1e-4,
	}
	checker.FullCheck(t)
}

func TestDropout(t *testing.T) {
	in := anydiff.NewConst(ConstVector([]float64{1, 2, 3, 4, 5, 6, 7, 8}))
	d := &Dropout{KeepProb: 0.5, Rand: rand.New(rand.NewSource(2))}
	if d.Apply(in, false) != in {
		t.Error("dropout should be disabled at inference")
	}
	out := Floats(d.Apply(in, true).Output())
	for i, x := range out {
		if x != 0 && x != 2*float64(i+1) {
			t.Errorf("component %d: unexpected value %f", i, x)
		}
	}
	for _, keep := range []float64{0, 1} {
		d.KeepProb = keep
		if d.Apply(in, true) != in {
			t.Errorf("keep probability %f should disable dropout", keep)
		}
	}
}

func TestDropoutKeepFraction(t *testing.T) {
	const n = 10000
	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	in := anydiff.NewConst(ConstVector(ones))
	d := &Dropout{KeepProb: 0.8, Rand: rand.New(rand.NewSource(4))}
	var kept int
	for i, x := range Floats(d.Apply(in, true).Output()) {
		if math.Abs(x-1.25) < 1e-9 {
			kept++
		} else if x != 0 {
			t.Fatalf("component %d: unexpected value %f", i, x)
		}
	}
	if frac := float64(kept) / n; math.Abs(frac-0.8) > 0.02 {
		t.Errorf("expected keep fraction 0.8 but got %f", frac)
	}
}

func TestUniformVector(t *testing.T) {
	vec := Floats(UniformVector(rand.New(rand.NewSource(5)), 1000, 0.3))
	if len(vec) != 1000 {
		t.Fatalf("expected 1000 values but got %d", len(vec))
	}
	var sawNeg, sawPos bool
	for _, x := range vec {
		if x < -0.3 || x > 0.3 {
			t.Fatalf("value %f out of range", x)
		}
		sawNeg = sawNeg || x < -0.15
		sawPos = sawPos || x > 0.15
	}
	if !sawNeg || !sawPos {
		t.Error("values do not cover the range")
	}
}

func TestInputNoise(t *testing.T) {
	in := anydiff.NewConst(ConstVector([]float64{1, 2, 3}))
	n := &InputNoise{Stddev: 0.1, Rand: rand.New(rand.NewSource(3))}
	if n.Apply(in, false) != in {
		t.Error("noise should be disabled at inference")
	}
	out := Floats(n.Apply(in, true).Output())
	if reflect.DeepEqual(out, []float64{1, 2, 3}) {
		t.Error("expected noisy output")
	}
}

func TestConcatRows(t *testing.T) {
	in1 := anydiff.NewConst(ConstVector([]float64{1, 2, 3, 4}))
	in2 := anydiff.NewConst(ConstVector([]float64{5, 6}))
	actual := Floats(ConcatRows(in1, in2, 2).Output())
	expected := []float64{1, 2, 5, 3, 4, 6}
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("expected %v but got %v", expected, actual)
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Key: "optimizer", Value: "lbfgs", Valid: []string{"adam", "sgd"}}
	expected := "invalid optimizer: lbfgs; should be one of [adam, sgd]"
	if err.Error() != expected {
		t.Errorf("expected %q but got %q", expected, err.Error())
	}
	err = &ConfigError{Key: "beam width", Value: 0, Reason: "must be positive"}
	expected = "invalid beam width: 0 (must be positive)"
	if err.Error() != expected {
		t.Errorf("expected %q but got %q", expected, err.Error())
	}
	if !IsConfigError(err) || IsConfigError(ErrNotImplemented) {
		t.Error("unexpected IsConfigError result")
	}
}

func TestAllParameters(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	fc1 := NewFC(rng, "a", 1, 1, 1)
	fc2 := NewFC(rng, "b", 1, 1, 1)
	params := AllParameters(fc1, "not a layer", fc2)
	if len(params) != 4 || params[0] != fc1.Weights || params[3] != fc2.Biases {
		t.Errorf("unexpected parameters: %v", params)
	}
}
