package anysgd

import (
	"errors"
	"fmt"
	"sort"

	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/ctcnet"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	serializer.RegisterTypedDeserializer((&State{}).SerializerType(), DeserializeState)
}

// DeserializeState deserializes a State.
func DeserializeState(d []byte) (*State, error) {
	slice, err := serializer.DeserializeSlice(d)
	if err != nil {
		return nil, essentials.AddCtx("deserialize State", err)
	}
	if len(slice)%2 != 1 {
		return nil, errors.New("deserialize State: bad slot list")
	}
	step, ok := slice[0].(serializer.Int)
	if !ok {
		return nil, fmt.Errorf("deserialize State: bad global step type: %T", slice[0])
	}
	res := &State{GlobalStep: int64(step), Slots: map[string]anyvec.Vector{}}
	for i := 1; i < len(slice); i += 2 {
		name, ok := slice[i].(serializer.String)
		if !ok {
			return nil, fmt.Errorf("deserialize State: bad slot name type: %T", slice[i])
		}
		vec, ok := slice[i+1].(*anyvecsave.S)
		if !ok {
			return nil, fmt.Errorf("deserialize State: bad slot type: %T", slice[i+1])
		}
		values, err := vectorFloats(vec)
		if err != nil {
			return nil, essentials.AddCtx("deserialize State", err)
		}
		res.Slots[string(name)] = ctcnet.ConstVector(values)
	}
	return res, nil
}

// SerializerType returns the unique ID used to serialize
// a State with the serializer package.
func (s *State) SerializerType() string {
	return "github.com/unixpickle/ctcnet/anysgd.State"
}

// Serialize serializes the global step and every slot.
// Slots are stored in order of name.
func (s *State) Serialize() ([]byte, error) {
	names := make([]string, 0, len(s.Slots))
	for name := range s.Slots {
		names = append(names, name)
	}
	sort.Strings(names)
	list := []serializer.Serializer{serializer.Int(s.GlobalStep)}
	for _, name := range names {
		list = append(list, serializer.String(name),
			&anyvecsave.S{Vector: s.Slots[name]})
	}
	return serializer.SerializeSlice(list)
}

func vectorFloats(s *anyvecsave.S) ([]float64, error) {
	switch data := s.Vector.Data().(type) {
	case []float64:
		return append([]float64{}, data...), nil
	case []float32:
		res := make([]float64, len(data))
		for i, x := range data {
			res[i] = float64(x)
		}
		return res, nil
	default:
		return nil, fmt.Errorf("unsupported numeric type: %T", data)
	}
}
