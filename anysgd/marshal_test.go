package anysgd

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/unixpickle/ctcnet"
	"github.com/unixpickle/serializer"
)

func TestStateMarshal(t *testing.T) {
	state := NewState()
	state.GlobalStep = 17
	for _, name := range []string{"rnn/layer1/fw/input_gate/biases/m", "output/weights/v"} {
		slot := make([]float64, 1+rand.Intn(5))
		for i := range slot {
			slot[i] = rand.NormFloat64()
		}
		state.Slots[name] = ctcnet.ConstVector(slot)
	}

	data, err := serializer.SerializeAny(state)
	if err != nil {
		t.Fatal(err)
	}
	var newState *State
	if err := serializer.DeserializeAny(data, &newState); err != nil {
		t.Fatal(err)
	}
	if newState.GlobalStep != state.GlobalStep {
		t.Errorf("expected step %d but got %d", state.GlobalStep, newState.GlobalStep)
	}
	if len(newState.Slots) != len(state.Slots) {
		t.Fatalf("expected %d slots but got %d", len(state.Slots), len(newState.Slots))
	}
	for name, slot := range state.Slots {
		actual, ok := newState.Slots[name]
		if !ok {
			t.Errorf("missing slot %s", name)
			continue
		}
		if !reflect.DeepEqual(ctcnet.Floats(actual), ctcnet.Floats(slot)) {
			t.Errorf("slot %s: expected %v but got %v", name, ctcnet.Floats(slot),
				ctcnet.Floats(actual))
		}
	}
}

func TestStateMarshalEmpty(t *testing.T) {
	data, err := NewState().Serialize()
	if err != nil {
		t.Fatal(err)
	}
	state, err := DeserializeState(data)
	if err != nil {
		t.Fatal(err)
	}
	if state.GlobalStep != 0 || len(state.Slots) != 0 {
		t.Errorf("unexpected state: %v", state)
	}
}
