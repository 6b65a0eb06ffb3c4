package anyctc

import (
	"fmt"

	"github.com/unixpickle/anydiff"
)

// Logits stores unnormalized class scores for a padded
// batch.
//
// The output of Res is packed time-major: the scores for
// utterance b at time t start at (t*BatchSize+b)*NumClasses.
type Logits struct {
	Res        anydiff.Res
	MaxTime    int
	BatchSize  int
	NumClasses int
}

// NewLogits wraps a packed time-major result.
func NewLogits(res anydiff.Res, maxTime, batchSize, numClasses int) (*Logits, error) {
	if numClasses < 1 {
		return nil, fmt.Errorf("logits: need at least one class (the blank), got %d",
			numClasses)
	}
	expected := maxTime * batchSize * numClasses
	if n := res.Output().Len(); n != expected {
		return nil, fmt.Errorf("logits: size %d should be %d (%dx%dx%d)", n, expected,
			maxTime, batchSize, numClasses)
	}
	return &Logits{Res: res, MaxTime: maxTime, BatchSize: batchSize,
		NumClasses: numClasses}, nil
}

// Blank returns the index of the blank class.
func (l *Logits) Blank() int {
	return l.NumClasses - 1
}

// Frames returns the raw scores for the first length
// timesteps of utterance b.
func (l *Logits) Frames(b, length int) [][]float64 {
	data := l.Res.Output().Data().([]float64)
	res := make([][]float64, length)
	for t := range res {
		start := (t*l.BatchSize + b) * l.NumClasses
		res[t] = data[start : start+l.NumClasses]
	}
	return res
}

// checkLengths makes sure there is one valid sequence
// length per utterance.
func (l *Logits) checkLengths(seqLens []int) error {
	if len(seqLens) != l.BatchSize {
		return fmt.Errorf("got %d sequence lengths for batch size %d", len(seqLens),
			l.BatchSize)
	}
	for b, n := range seqLens {
		if n < 0 || n > l.MaxTime {
			return fmt.Errorf("utterance %d: sequence length %d out of range [0, %d]", b,
				n, l.MaxTime)
		}
	}
	return nil
}
