package ctcmodel

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/ctcnet"
	"github.com/unixpickle/ctcnet/anyctc"
	"github.com/unixpickle/ctcnet/telemetry"
	"github.com/unixpickle/essentials"
)

// A LossTerm is one named component of a total loss.
type LossTerm struct {
	Name  string
	Value anydiff.Res
}

// SumTerms adds up loss terms.
func SumTerms(terms []LossTerm) anydiff.Res {
	var sum anydiff.Res = anydiff.NewConst(ctcnet.Creator.MakeVector(1))
	for _, t := range terms {
		sum = anydiff.Add(sum, t.Value)
	}
	return sum
}

// Output is the result of ComputeLoss.
type Output struct {
	// Loss is the sum of Terms.
	Loss anydiff.Res

	// Terms starts with "weight_decay", followed by one
	// weighted CTC term per head.
	Terms []LossTerm

	// HeadLosses holds the unweighted mean CTC loss of
	// each head.
	HeadLosses []anydiff.Res

	// Logits holds the logits of each head.
	Logits []*anyctc.Logits
}

// Term finds a loss term by name.
func (o *Output) Term(name string) (anydiff.Res, bool) {
	for _, t := range o.Terms {
		if t.Name == name {
			return t.Value, true
		}
	}
	return nil, false
}

// ComputeLoss runs a training pass and computes the total
// loss of the batch: the weight decay plus the weighted
// mean CTC loss of every head.
//
// With a single head, the CTC term is named "ctc_loss";
// otherwise each head contributes "ctc_loss/<name>".
//
// The total is reported to the sink as "loss_<split>".
func (m *Model) ComputeLoss(b *Batch) (*Output, error) {
	m.ensureBuilt()
	m.lock.RLock()
	defer m.lock.RUnlock()

	if err := b.checkInputs(); err != nil {
		return nil, essentials.AddCtx("compute loss", err)
	}
	if err := b.checkLabels(len(m.Heads)); err != nil {
		return nil, essentials.AddCtx("compute loss", err)
	}
	logits, err := m.forward(b, true)
	if err != nil {
		return nil, essentials.AddCtx("compute loss", err)
	}

	res := &Output{Logits: logits}
	res.Terms = append(res.Terms, LossTerm{
		Name:  "weight_decay",
		Value: ctcnet.WeightDecay(m.parameters(), m.Config.WeightDecay),
	})
	meanScale := ctcnet.Creator.MakeNumeric(1 / float64(len(b.Inputs)))
	for i, h := range m.Heads {
		costs, err := anyctc.Loss(logits[i], b.Labels[i], b.SeqLens)
		if err != nil {
			return nil, essentials.AddCtx("compute loss: head "+h.Name, err)
		}
		mean := anydiff.Scale(anydiff.Sum(costs), meanScale)
		res.HeadLosses = append(res.HeadLosses, mean)
		name := "ctc_loss"
		if len(m.Heads) > 1 {
			name += "/" + h.Name
		}
		res.Terms = append(res.Terms, LossTerm{
			Name:  name,
			Value: anydiff.Scale(mean, ctcnet.Creator.MakeNumeric(h.Weight)),
		})
	}
	res.Loss = SumTerms(res.Terms)

	if m.Config.NumDevices <= 1 {
		m.lossOnce.Do(func() {
			m.Sink.Register(telemetry.Train.Name("loss"))
			m.Sink.Register(telemetry.Dev.Name("loss"))
		})
		m.Sink.Scalar(b.split().Name("loss"), ctcnet.Floats(res.Loss.Output())[0])
	}
	return res, nil
}
