package corpus

import (
	"errors"
	"fmt"
	"io/ioutil"

	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/ctcnet"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	serializer.RegisterTypedDeserializer((&Utterance{}).SerializerType(),
		DeserializeUtterance)
}

// An Utterance is a sequence of feature frames with one
// label sequence per model head.
type Utterance struct {
	ID       string
	Features [][]float64
	Labels   [][]int
}

// DeserializeUtterance deserializes an Utterance.
func DeserializeUtterance(d []byte) (*Utterance, error) {
	slice, err := serializer.DeserializeSlice(d)
	if err != nil {
		return nil, essentials.AddCtx("deserialize Utterance", err)
	}
	res, err := decodeUtterance(slice)
	if err != nil {
		return nil, essentials.AddCtx("deserialize Utterance", err)
	}
	return res, nil
}

// SerializerType returns the unique ID used to serialize
// an Utterance with the serializer package.
func (u *Utterance) SerializerType() string {
	return "github.com/unixpickle/ctcnet/corpus.Utterance"
}

// Serialize serializes the utterance.
//
// Features must not be ragged.
func (u *Utterance) Serialize() ([]byte, error) {
	var dim int
	if len(u.Features) > 0 {
		dim = len(u.Features[0])
	}
	flat := make([]float64, 0, dim*len(u.Features))
	for t, frame := range u.Features {
		if len(frame) != dim {
			return nil, fmt.Errorf("serialize Utterance: frame %d has %d features, not %d",
				t, len(frame), dim)
		}
		flat = append(flat, frame...)
	}
	list := []serializer.Serializer{
		serializer.String(u.ID),
		serializer.Int(len(u.Features)),
		serializer.Int(dim),
		&anyvecsave.S{Vector: ctcnet.ConstVector(flat)},
		serializer.Int(len(u.Labels)),
	}
	for _, seq := range u.Labels {
		list = append(list, serializer.Int(len(seq)))
		for _, x := range seq {
			list = append(list, serializer.Int(x))
		}
	}
	return serializer.SerializeSlice(list)
}

func decodeUtterance(slice []serializer.Serializer) (*Utterance, error) {
	var pos int
	nextInt := func() (int, error) {
		if pos >= len(slice) {
			return 0, errors.New("unexpected end of data")
		}
		x, ok := slice[pos].(serializer.Int)
		if !ok {
			return 0, fmt.Errorf("expected Int but got %T", slice[pos])
		}
		pos++
		return int(x), nil
	}

	if len(slice) < 5 {
		return nil, errors.New("unexpected end of data")
	}
	id, ok := slice[0].(serializer.String)
	if !ok {
		return nil, fmt.Errorf("bad ID type: %T", slice[0])
	}
	pos = 1
	numFrames, err := nextInt()
	if err != nil {
		return nil, err
	}
	dim, err := nextInt()
	if err != nil {
		return nil, err
	}
	vec, ok := slice[pos].(*anyvecsave.S)
	if !ok {
		return nil, fmt.Errorf("bad feature type: %T", slice[pos])
	}
	pos++
	flat, ok := vec.Vector.Data().([]float64)
	if !ok || len(flat) != numFrames*dim {
		return nil, errors.New("bad feature vector")
	}
	res := &Utterance{ID: string(id), Features: make([][]float64, numFrames)}
	for t := range res.Features {
		res.Features[t] = append([]float64{}, flat[t*dim:(t+1)*dim]...)
	}

	numHeads, err := nextInt()
	if err != nil {
		return nil, err
	}
	for i := 0; i < numHeads; i++ {
		n, err := nextInt()
		if err != nil {
			return nil, err
		}
		seq := make([]int, n)
		for j := range seq {
			if seq[j], err = nextInt(); err != nil {
				return nil, err
			}
		}
		res.Labels = append(res.Labels, seq)
	}
	if pos != len(slice) {
		return nil, errors.New("trailing data")
	}
	return res, nil
}

// SaveUtterances writes a list of utterances to a file.
func SaveUtterances(path string, utts []*Utterance) error {
	list := make([]serializer.Serializer, len(utts))
	for i, u := range utts {
		list[i] = u
	}
	data, err := serializer.SerializeSlice(list)
	if err != nil {
		return essentials.AddCtx("save utterances", err)
	}
	if err := ioutil.WriteFile(path, data, 0644); err != nil {
		return essentials.AddCtx("save utterances", err)
	}
	return nil
}

// LoadUtterances reads a file written by SaveUtterances.
func LoadUtterances(path string) ([]*Utterance, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, essentials.AddCtx("load utterances", err)
	}
	slice, err := serializer.DeserializeSlice(data)
	if err != nil {
		return nil, essentials.AddCtx("load utterances", err)
	}
	res := make([]*Utterance, len(slice))
	for i, x := range slice {
		u, ok := x.(*Utterance)
		if !ok {
			return nil, fmt.Errorf("load utterances: bad type at %d: %T", i, x)
		}
		res[i] = u
	}
	return res, nil
}
