// Package ctcmodel implements CTC acoustic models: a
// recurrent encoder shared by one or more output heads,
// each trained with its own CTC loss.
//
// A Model is built exactly once.
// Losses, training steps, decoding and evaluation all run
// against the same weights.
package ctcmodel

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/ctcnet"
	"github.com/unixpickle/ctcnet/anyctc"
	"github.com/unixpickle/ctcnet/anyrnn"
	"github.com/unixpickle/ctcnet/telemetry"
)

// ErrAlreadyBuilt is returned when a Model is built for a
// second time.
var ErrAlreadyBuilt = errors.New("model already built")

// A Head is an output layer on top of the encoder.
type Head struct {
	Name string

	// OutputSize is the number of labels, not counting
	// the blank.
	OutputSize int

	// NumLayer is the encoder depth the head reads from,
	// starting at 1.
	NumLayer int

	// Weight scales the head's CTC loss in the total.
	Weight float64
}

// NumClasses returns OutputSize+1.
func (h *Head) NumClasses() int {
	return h.OutputSize + 1
}

// A Model is a CTC acoustic model.
//
// Inference passes may run concurrently; training steps
// take an exclusive lock while they update the weights.
// Training passes share one random source and must not
// run concurrently.
type Model struct {
	Config Config
	Heads  []Head

	// Sink receives loss, error rate and parameter
	// statistics.
	Sink telemetry.Sink

	lock  sync.RWMutex
	built bool
	rng   *rand.Rand

	noise      *ctcnet.InputNoise
	encoder    *anyrnn.Stack
	bottleneck []*ctcnet.FC
	output     []*ctcnet.FC

	lossOnce sync.Once
	lerOnce  sync.Once
}

// New creates a single-head model.
// The head is named "main" and reads from the top of the
// encoder.
func New(cfg Config, sink telemetry.Sink) (*Model, error) {
	return NewHeads(cfg, []Head{{
		Name:       "main",
		OutputSize: cfg.OutputSize,
		NumLayer:   cfg.NumLayer,
		Weight:     1,
	}}, sink)
}

// NewHeads creates a model with an arbitrary list of
// heads.
//
// The encoder is as deep as the deepest head, so layers
// below a head's depth are shared with every deeper head.
// The OutputSize and NumLayer of base are ignored.
func NewHeads(base Config, heads []Head, sink telemetry.Sink) (*Model, error) {
	if len(heads) == 0 {
		return nil, &ctcnet.ConfigError{Key: "heads", Value: 0, Reason: "need at least one head"}
	}
	cfg := base
	cfg.NumLayer = 0
	names := map[string]bool{}
	for _, h := range heads {
		if h.OutputSize <= 0 {
			return nil, &ctcnet.ConfigError{Key: "output_size", Value: h.OutputSize,
				Reason: "head " + h.Name + " needs a positive output size"}
		}
		if h.NumLayer <= 0 {
			return nil, &ctcnet.ConfigError{Key: "num_layer", Value: h.NumLayer,
				Reason: "head " + h.Name + " needs a positive depth"}
		}
		if h.Weight < 0 {
			return nil, &ctcnet.ConfigError{Key: "head weight", Value: h.Weight,
				Reason: "must be non-negative"}
		}
		if names[h.Name] {
			return nil, &ctcnet.ConfigError{Key: "head name", Value: h.Name,
				Reason: "duplicate"}
		}
		names[h.Name] = true
		if h.NumLayer > cfg.NumLayer {
			cfg.NumLayer = h.NumLayer
		}
	}
	cfg.OutputSize = heads[0].OutputSize
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.NumDevices == 0 {
		cfg.NumDevices = 1
	}
	if sink == nil {
		sink = telemetry.Nop{}
	}
	return &Model{
		Config: cfg,
		Heads:  append([]Head{}, heads...),
		Sink:   sink,
	}, nil
}

// Build creates the weights of the model.
//
// Every other method builds the model if needed, so Build
// only has to be called to control when initialization
// happens.
// Calling Build on a built model returns ErrAlreadyBuilt.
func (m *Model) Build() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.built {
		return ErrAlreadyBuilt
	}
	m.build()
	return nil
}

// Built checks if the weights exist.
func (m *Model) Built() bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.built
}

// NumClasses returns the number of classes of a head.
func (m *Model) NumClasses(head int) int {
	return m.Heads[head].NumClasses()
}

// Parameters returns every parameter of the model, from
// the encoder up to the output layers.
func (m *Model) Parameters() []*ctcnet.Param {
	m.ensureBuilt()
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.parameters()
}

// Forward computes the logits of every head.
//
// When training is true, dropout and input noise are
// applied.
func (m *Model) Forward(b *Batch, training bool) ([]*anyctc.Logits, error) {
	m.ensureBuilt()
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.forward(b, training)
}

func (m *Model) ensureBuilt() {
	m.lock.Lock()
	defer m.lock.Unlock()
	if !m.built {
		m.build()
	}
}

func (m *Model) build() {
	cfg := &m.Config
	m.rng = rand.New(rand.NewSource(cfg.Seed))
	m.noise = &ctcnet.InputNoise{Stddev: cfg.InputNoiseStddev, Rand: m.rng}
	m.encoder = anyrnn.NewStack(m.rng, "rnn", anyrnn.StackConfig{
		InCount:       cfg.InputSize,
		NumUnit:       cfg.NumUnit,
		NumLayer:      cfg.NumLayer,
		NumProj:       cfg.NumProj,
		Bidirectional: cfg.Bidirectional,
		InitRange:     cfg.ParameterInit,
		CellClip:      cfg.ClipActivation,
		KeepInput:     cfg.DropoutInput,
		KeepHidden:    cfg.DropoutHidden,
	})
	m.bottleneck = make([]*ctcnet.FC, len(m.Heads))
	m.output = make([]*ctcnet.FC, len(m.Heads))
	for i, h := range m.Heads {
		inCount := m.encoder.OutCount(h.NumLayer)
		if cfg.BottleneckDim > 0 {
			m.bottleneck[i] = ctcnet.NewFC(m.rng, h.Name+"/bottleneck", inCount,
				cfg.BottleneckDim, cfg.ParameterInit)
			inCount = cfg.BottleneckDim
		}
		m.output[i] = ctcnet.NewFC(m.rng, h.Name+"/output", inCount, h.NumClasses(),
			cfg.ParameterInit)
	}
	m.built = true
}

func (m *Model) parameters() []*ctcnet.Param {
	res := m.encoder.Parameters()
	for i := range m.Heads {
		if m.bottleneck[i] != nil {
			res = append(res, m.bottleneck[i].Parameters()...)
		}
		res = append(res, m.output[i].Parameters()...)
	}
	return res
}

func (m *Model) forward(b *Batch, training bool) ([]*anyctc.Logits, error) {
	if err := b.checkInputs(); err != nil {
		return nil, err
	}
	seq, err := anyrnn.ConstSeq(b.Inputs, b.SeqLens, m.Config.InputSize)
	if err != nil {
		return nil, err
	}
	seq = seq.Map(seq.Dim, func(step anydiff.Res, batch int) anydiff.Res {
		return m.noise.Apply(step, training)
	})
	layers := m.encoder.Apply(seq, training)

	res := make([]*anyctc.Logits, len(m.Heads))
	for i, h := range m.Heads {
		hidden := layers[h.NumLayer-1]
		steps := make([]anydiff.Res, hidden.MaxTime())
		for t, step := range hidden.Steps {
			if m.bottleneck[i] != nil {
				step = m.bottleneck[i].Apply(step, seq.BatchSize())
			}
			steps[t] = m.output[i].Apply(step, seq.BatchSize())
		}
		var packed anydiff.Res
		if len(steps) == 0 {
			packed = anydiff.NewConst(ctcnet.Creator.MakeVector(0))
		} else {
			packed = anydiff.Concat(steps...)
		}
		res[i], err = anyctc.NewLogits(packed, hidden.MaxTime(), seq.BatchSize(),
			h.NumClasses())
		if err != nil {
			return nil, fmt.Errorf("head %s: %s", h.Name, err)
		}
	}
	return res, nil
}
