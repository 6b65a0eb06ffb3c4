package ctcmodel

import (
	"context"
	"fmt"

	"github.com/unixpickle/ctcnet/anyctc"
	"github.com/unixpickle/ctcnet/telemetry"
	"github.com/unixpickle/essentials"
	"golang.org/x/sync/errgroup"
)

// ComputeLER computes the label error rate of a decoded
// batch and reports it as "ler_<split>".
func (m *Model) ComputeLER(split telemetry.Split, decoded, reference *anyctc.Labels) (float64, error) {
	ler, err := anyctc.LER(decoded, reference)
	if err != nil {
		return 0, err
	}
	m.lerOnce.Do(func() {
		m.Sink.Register(telemetry.Train.Name("ler"))
		m.Sink.Register(telemetry.Dev.Name("ler"))
	})
	if split == "" {
		split = telemetry.Train
	}
	m.Sink.Scalar(split.Name("ler"), ler)
	return ler, nil
}

// An EvalSplit is a named list of batches.
type EvalSplit struct {
	Name    string
	Batches []*Batch
}

// EvalOptions configures Evaluate.
type EvalOptions struct {
	Strategy  anyctc.Strategy
	BeamWidth int

	// Head selects the head to evaluate.
	Head int

	// Parallel is the number of splits evaluated at once.
	// Values below 2 evaluate the splits in order.
	Parallel int

	// Normalize, if non-nil, maps label sequences before
	// they are compared, e.g. to turn label ids into
	// character ids for a character error rate.
	Normalize func(labels []int) []int
}

// Evaluate computes the label error rate of every split,
// averaged over utterances.
//
// The context is checked between batches.
func Evaluate(ctx context.Context, m *Model, splits []EvalSplit,
	opts EvalOptions) (map[string]float64, error) {
	if opts.Head < 0 || opts.Head >= len(m.Heads) {
		return nil, fmt.Errorf("evaluate: no head %d", opts.Head)
	}
	m.ensureBuilt()
	results := make([]float64, len(splits))
	if opts.Parallel < 2 {
		for i, s := range splits {
			ler, err := evaluateSplit(ctx, m, s, opts)
			if err != nil {
				return nil, err
			}
			results[i] = ler
		}
	} else {
		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Parallel)
		for i, s := range splits {
			i, s := i, s
			g.Go(func() error {
				ler, err := evaluateSplit(ctx, m, s, opts)
				results[i] = ler
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	res := map[string]float64{}
	for i, s := range splits {
		res[s.Name] = results[i]
	}
	return res, nil
}

func evaluateSplit(ctx context.Context, m *Model, s EvalSplit, opts EvalOptions) (float64, error) {
	var sum float64
	var count int
	for i, b := range s.Batches {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		ctxName := fmt.Sprintf("evaluate %s: batch %d", s.Name, i)
		if err := b.checkLabels(len(m.Heads)); err != nil {
			return 0, essentials.AddCtx(ctxName, err)
		}
		logits, err := m.Forward(b, false)
		if err != nil {
			return 0, essentials.AddCtx(ctxName, err)
		}
		decoded, err := anyctc.Decode(logits[opts.Head], b.SeqLens, opts.Strategy,
			opts.BeamWidth)
		if err != nil {
			return 0, err
		}
		hyps, err := decoded.Dense()
		if err != nil {
			return 0, essentials.AddCtx(ctxName, err)
		}
		refs, err := b.Labels[opts.Head].Dense()
		if err != nil {
			return 0, essentials.AddCtx(ctxName, err)
		}
		for j, ref := range refs {
			hyp := hyps[j]
			if opts.Normalize != nil {
				hyp, ref = opts.Normalize(hyp), opts.Normalize(ref)
			}
			sum += anyctc.UtteranceLER(hyp, ref)
			count++
		}
	}
	if count == 0 {
		return 0, fmt.Errorf("evaluate %s: no utterances", s.Name)
	}
	return sum / float64(count), nil
}
