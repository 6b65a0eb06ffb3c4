// Package anyrnn implements the recurrent encoders used
// by CTC acoustic models.
//
// Sequences are padded and time-major.
// Every timestep packs one vector per utterance, and
// per-utterance lengths mark which timesteps are real.
// Recurrent layers freeze their state on padded timesteps
// and emit zeros there, so padding never influences the
// outputs for real frames.
package anyrnn

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/ctcnet"
)

// A Seq is a padded, time-major batch of sequences.
//
// Steps[t] packs BatchSize() vectors of Dim components,
// one per utterance.
// Lengths[b] is the number of real timesteps in the b-th
// utterance and never exceeds len(Steps).
type Seq struct {
	Steps   []anydiff.Res
	Lengths []int
	Dim     int
}

// ConstSeq creates a constant Seq from a padded
// [batch][time][feature] tensor.
//
// Every utterance must have the same (padded) number of
// timesteps and every frame must have dim components.
func ConstSeq(inputs [][][]float64, lengths []int, dim int) (*Seq, error) {
	if len(inputs) != len(lengths) {
		return nil, fmt.Errorf("batch size mismatch: %d inputs but %d lengths",
			len(inputs), len(lengths))
	}
	if len(inputs) == 0 {
		return &Seq{Dim: dim}, nil
	}
	maxTime := len(inputs[0])
	for b, utt := range inputs {
		if len(utt) != maxTime {
			return nil, fmt.Errorf("utterance %d: padded length %d should be %d",
				b, len(utt), maxTime)
		}
		if lengths[b] < 0 || lengths[b] > maxTime {
			return nil, fmt.Errorf("utterance %d: sequence length %d out of range [0, %d]",
				b, lengths[b], maxTime)
		}
	}
	steps := make([]anydiff.Res, maxTime)
	for t := range steps {
		packed := make([]float64, 0, len(inputs)*dim)
		for b, utt := range inputs {
			if len(utt[t]) != dim {
				return nil, fmt.Errorf("utterance %d, frame %d: feature size %d should be %d",
					b, t, len(utt[t]), dim)
			}
			packed = append(packed, utt[t]...)
		}
		steps[t] = anydiff.NewConst(ctcnet.ConstVector(packed))
	}
	return &Seq{
		Steps:   steps,
		Lengths: append([]int{}, lengths...),
		Dim:     dim,
	}, nil
}

// BatchSize returns the number of utterances.
func (s *Seq) BatchSize() int {
	return len(s.Lengths)
}

// MaxTime returns the padded number of timesteps.
func (s *Seq) MaxTime() int {
	return len(s.Steps)
}

// Map applies f to every timestep, producing a Seq with
// the same lengths and outDim components per vector.
func (s *Seq) Map(outDim int, f func(step anydiff.Res, batch int) anydiff.Res) *Seq {
	res := &Seq{
		Steps:   make([]anydiff.Res, len(s.Steps)),
		Lengths: s.Lengths,
		Dim:     outDim,
	}
	for t, x := range s.Steps {
		res.Steps[t] = f(x, s.BatchSize())
	}
	return res
}

// Vars returns the variables upon which the sequence
// depends.
func (s *Seq) Vars() anydiff.VarSet {
	res := anydiff.VarSet{}
	for _, x := range s.Steps {
		res = anydiff.MergeVarSets(res, x.Vars())
	}
	return res
}

// allPresent checks if timestep t is real for every
// utterance.
func (s *Seq) allPresent(t int) bool {
	for _, l := range s.Lengths {
		if t >= l {
			return false
		}
	}
	return true
}

// masks produces a pair of complementary masks for the
// timestep, with dim components per utterance.
// The first mask is 1 for real timesteps; the second is 1
// for padding.
func (s *Seq) masks(t, dim int) (present, absent anyvec.Vector) {
	pres := make([]float64, s.BatchSize()*dim)
	abs := make([]float64, len(pres))
	for b, l := range s.Lengths {
		chunk := pres[b*dim : (b+1)*dim]
		other := abs[b*dim : (b+1)*dim]
		for i := range chunk {
			if t < l {
				chunk[i] = 1
			} else {
				other[i] = 1
			}
		}
	}
	return ctcnet.ConstVector(pres), ctcnet.ConstVector(abs)
}
