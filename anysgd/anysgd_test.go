package anysgd

import (
	"math"
	"strings"
	"testing"

	"github.com/unixpickle/ctcnet"
)

func TestParseOptimizer(t *testing.T) {
	for _, name := range OptimizerNames {
		for _, variant := range []string{name, strings.ToUpper(name), strings.Title(name)} {
			opt, err := ParseOptimizer(variant)
			if err != nil {
				t.Errorf("%s: %s", variant, err)
				continue
			}
			if opt.Name() != name {
				t.Errorf("%s: got optimizer %s", variant, opt.Name())
			}
		}
	}
	opt, _ := ParseOptimizer("momentum")
	if opt.(Momentum).Momentum != 0.9 {
		t.Errorf("unexpected momentum: %f", opt.(Momentum).Momentum)
	}
}

func TestParseOptimizerInvalid(t *testing.T) {
	_, err := ParseOptimizer("lbfgs")
	if !ctcnet.IsConfigError(err) {
		t.Fatalf("expected config error but got %v", err)
	}
	for _, name := range OptimizerNames {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not name %s", err, name)
		}
	}
	if !strings.Contains(err.Error(), "lbfgs") {
		t.Errorf("error %q does not name the value", err)
	}
}

func TestApplyGlobalStep(t *testing.T) {
	for _, name := range OptimizerNames {
		opt, err := ParseOptimizer(name)
		if err != nil {
			t.Fatal(err)
		}
		param := testParam([]float64{1, -2, 3})
		state := NewState()
		for i := 1; i <= 3; i++ {
			grads := []Gradient{{Param: param, Values: []float64{0.5, 0.1, -1}}}
			if err := Apply(opt, state, grads, 0.01); err != nil {
				t.Fatal(err)
			}
			if state.GlobalStep != int64(i) {
				t.Errorf("%s: expected step %d but got %d", name, i, state.GlobalStep)
			}
		}
		w := ctcnet.Floats(param.Var.Vector)
		if !(w[0] < 1 && w[1] < -2 && w[2] > 3) {
			t.Errorf("%s: parameters moved the wrong way: %v", name, w)
		}
	}
}

func TestApplyNegativeRate(t *testing.T) {
	param := testParam([]float64{1, 2})
	state := NewState()
	err := Apply(SGD{}, state, []Gradient{{Param: param, Values: []float64{1, 1}}}, -1)
	if !ctcnet.IsConfigError(err) {
		t.Fatalf("expected config error but got %v", err)
	}
	if state.GlobalStep != 0 || len(state.Slots) != 0 {
		t.Error("state was modified")
	}
	if w := ctcnet.Floats(param.Var.Vector); w[0] != 1 || w[1] != 2 {
		t.Errorf("parameters were modified: %v", w)
	}
}

func TestApplyRules(t *testing.T) {
	grad := []float64{2, -0.5}
	cases := []struct {
		opt      Optimizer
		expected [][]float64
	}{
		{
			opt:      SGD{},
			expected: [][]float64{{0.8, 0.05}, {0.6, 0.1}},
		},
		{
			opt:      Momentum{Momentum: 0.9},
			expected: [][]float64{{0.8, 0.05}, {0.42, 0.145}},
		},
		{
			// The first Adam step moves every component
			// by (almost exactly) the learning rate.
			opt:      Adam{Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-8},
			expected: [][]float64{{0.9, 0.1}},
		},
		{
			opt: Adagrad{InitialAccumulator: 0.1},
			expected: [][]float64{{1 - 0.1*2/math.Sqrt(4.1),
				0.1*0.5/math.Sqrt(0.35)}},
		},
		{
			opt: Adadelta{Rho: 0.95, Epsilon: 1e-8},
			expected: [][]float64{{1 - 0.1*2*math.Sqrt(1e-8)/math.Sqrt(0.05*4+1e-8),
				0.1*0.5*math.Sqrt(1e-8)/math.Sqrt(0.05*0.25+1e-8)}},
		},
		{
			opt: RMSProp{Decay: 0.9, Epsilon: 1e-10},
			expected: [][]float64{{1 - 0.1*2/math.Sqrt(0.9+0.1*4),
				0.1*0.5/math.Sqrt(0.9+0.1*0.25)}},
		},
	}
	for _, c := range cases {
		param := testParam([]float64{1, 0})
		state := NewState()
		for i, expected := range c.expected {
			grads := []Gradient{{Param: param, Values: grad}}
			if err := Apply(c.opt, state, grads, 0.1); err != nil {
				t.Fatal(err)
			}
			actual := ctcnet.Floats(param.Var.Vector)
			for j, x := range expected {
				if math.Abs(actual[j]-x) > 1e-6 {
					t.Errorf("%s step %d: expected %v but got %v", c.opt.Name(), i, expected,
						actual)
					break
				}
			}
		}
	}
}

func TestApplyConverges(t *testing.T) {
	// Minimize (w-3)^2 with each optimizer.
	// Adadelta is left out, as its steps start tiny.
	rates := map[string]float64{
		"adagrad":  0.5,
		"adam":     0.05,
		"momentum": 0.01,
		"rmsprop":  0.01,
		"sgd":      0.1,
	}
	for name, rate := range rates {
		opt, err := ParseOptimizer(name)
		if err != nil {
			t.Fatal(err)
		}
		param := testParam([]float64{0})
		state := NewState()
		for i := 0; i < 2000; i++ {
			w := ctcnet.Floats(param.Var.Vector)[0]
			grads := []Gradient{{Param: param, Values: []float64{2 * (w - 3)}}}
			if err := Apply(opt, state, grads, rate); err != nil {
				t.Fatal(err)
			}
		}
		if w := ctcnet.Floats(param.Var.Vector)[0]; math.Abs(w-3) > 0.05 {
			t.Errorf("%s: expected 3 but got %f", name, w)
		}
	}
}

func TestApplySlots(t *testing.T) {
	param := testParam([]float64{1, 0})
	state := NewState()
	grads := []Gradient{{Param: param, Values: []float64{2, -0.5}}}
	opt := Adam{Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-8}
	for i := 0; i < 2; i++ {
		if err := Apply(opt, state, grads, 0.1); err != nil {
			t.Fatal(err)
		}
	}
	expected := map[string][]float64{
		"test/weights/m": {0.19 * 2, 0.19 * -0.5},
		"test/weights/v": {(1 - 0.999*0.999) * 4, (1 - 0.999*0.999) * 0.25},
	}
	if len(state.Slots) != len(expected) {
		t.Fatalf("expected %d slots but got %d", len(expected), len(state.Slots))
	}
	for name, exp := range expected {
		slot, ok := state.Slots[name]
		if !ok {
			t.Errorf("missing slot %s", name)
			continue
		}
		actual := ctcnet.Floats(slot)
		for i, x := range exp {
			if math.Abs(actual[i]-x) > 1e-9 {
				t.Errorf("slot %s: expected %v but got %v", name, exp, actual)
				break
			}
		}
	}
	if grads[0].Values[0] != 2 || grads[0].Values[1] != -0.5 {
		t.Errorf("gradient was modified: %v", grads[0].Values)
	}
}

func TestGradientNoise(t *testing.T) {
	_, err := AddGradientNoise(nil, 0.1)
	if err == nil || !strings.Contains(err.Error(), ctcnet.ErrNotImplemented.Error()) {
		t.Errorf("unexpected error: %v", err)
	}
}

func testParam(values []float64) *ctcnet.Param {
	return ctcnet.NewParam("test/weights", ctcnet.Weight, ctcnet.ConstVector(values))
}
