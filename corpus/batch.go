package corpus

import (
	"fmt"

	"github.com/unixpickle/ctcnet"
	"github.com/unixpickle/ctcnet/anyctc"
	"github.com/unixpickle/ctcnet/ctcmodel"
	"github.com/unixpickle/ctcnet/telemetry"
)

// StackFrames concatenates every numStack consecutive
// frames into one, starting a new stack every numSkip
// frames.
// A stack that runs off the end is padded with the final
// frame.
func StackFrames(frames [][]float64, numStack, numSkip int) ([][]float64, error) {
	if numStack <= 0 {
		return nil, &ctcnet.ConfigError{Key: "num_stack", Value: numStack,
			Reason: "must be positive"}
	}
	if numSkip <= 0 {
		return nil, &ctcnet.ConfigError{Key: "num_skip", Value: numSkip,
			Reason: "must be positive"}
	}
	var res [][]float64
	for start := 0; start < len(frames); start += numSkip {
		var stacked []float64
		for i := start; i < start+numStack; i++ {
			idx := i
			if idx >= len(frames) {
				idx = len(frames) - 1
			}
			stacked = append(stacked, frames[idx]...)
		}
		res = append(res, stacked)
	}
	return res, nil
}

// MakeBatches groups consecutive utterances into padded
// batches of at most batchSize utterances.
//
// Every utterance must have the same feature size and the
// same number of label sequences.
func MakeBatches(utts []*Utterance, batchSize int, split telemetry.Split) ([]*ctcmodel.Batch, error) {
	if batchSize <= 0 {
		return nil, &ctcnet.ConfigError{Key: "batch_size", Value: batchSize,
			Reason: "must be positive"}
	}
	if len(utts) == 0 {
		return nil, nil
	}
	dim, numHeads := featureSize(utts[0]), len(utts[0].Labels)
	for _, u := range utts {
		if d := featureSize(u); d != dim && len(u.Features) > 0 {
			return nil, fmt.Errorf("make batches: utterance %s has %d features, not %d",
				u.ID, d, dim)
		}
		if len(u.Labels) != numHeads {
			return nil, fmt.Errorf("make batches: utterance %s has %d label sequences, "+
				"not %d", u.ID, len(u.Labels), numHeads)
		}
	}

	var res []*ctcmodel.Batch
	for start := 0; start < len(utts); start += batchSize {
		end := start + batchSize
		if end > len(utts) {
			end = len(utts)
		}
		res = append(res, makeBatch(utts[start:end], dim, numHeads, split))
	}
	return res, nil
}

func makeBatch(utts []*Utterance, dim, numHeads int, split telemetry.Split) *ctcmodel.Batch {
	var maxTime int
	for _, u := range utts {
		if len(u.Features) > maxTime {
			maxTime = len(u.Features)
		}
	}
	b := &ctcmodel.Batch{Split: split}
	for _, u := range utts {
		padded := make([][]float64, maxTime)
		for t := range padded {
			if t < len(u.Features) {
				padded[t] = u.Features[t]
			} else {
				padded[t] = make([]float64, dim)
			}
		}
		b.Inputs = append(b.Inputs, padded)
		b.SeqLens = append(b.SeqLens, len(u.Features))
	}
	for h := 0; h < numHeads; h++ {
		seqs := make([][]int, len(utts))
		for i, u := range utts {
			seqs[i] = u.Labels[h]
		}
		b.Labels = append(b.Labels, anyctc.FromDense(seqs))
	}
	return b
}

func featureSize(u *Utterance) int {
	if len(u.Features) == 0 {
		return 0
	}
	return len(u.Features[0])
}
