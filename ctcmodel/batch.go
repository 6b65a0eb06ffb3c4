package ctcmodel

import (
	"errors"
	"fmt"

	"github.com/unixpickle/ctcnet/anyctc"
	"github.com/unixpickle/ctcnet/telemetry"
)

// A Batch is a padded mini-batch of utterances.
type Batch struct {
	// Inputs is indexed as [utterance][time][feature].
	// Every utterance is padded to the same length.
	Inputs [][][]float64

	// SeqLens stores the true length of every utterance.
	// Frames past an utterance's length are ignored.
	SeqLens []int

	// Labels stores the targets for each head of the
	// model, in order.
	// It is not needed for inference.
	Labels []*anyctc.Labels

	// Split names the data the batch came from, for
	// telemetry.
	// An empty Split is reported as telemetry.Train.
	Split telemetry.Split
}

// MaxTime returns the padded length of the batch.
func (b *Batch) MaxTime() int {
	if len(b.Inputs) == 0 {
		return 0
	}
	return len(b.Inputs[0])
}

func (b *Batch) split() telemetry.Split {
	if b.Split == "" {
		return telemetry.Train
	}
	return b.Split
}

func (b *Batch) checkInputs() error {
	if len(b.Inputs) == 0 {
		return errors.New("empty batch")
	}
	if len(b.Inputs) != len(b.SeqLens) {
		return fmt.Errorf("batch has %d inputs but %d sequence lengths", len(b.Inputs),
			len(b.SeqLens))
	}
	return nil
}

func (b *Batch) checkLabels(numHeads int) error {
	if len(b.Labels) != numHeads {
		return fmt.Errorf("batch has labels for %d heads but model has %d", len(b.Labels),
			numHeads)
	}
	for i, l := range b.Labels {
		if l == nil {
			return fmt.Errorf("missing labels for head %d", i)
		}
		if l.BatchSize() != len(b.Inputs) {
			return fmt.Errorf("head %d: labels have batch size %d but inputs have %d", i,
				l.BatchSize(), len(b.Inputs))
		}
	}
	return nil
}
