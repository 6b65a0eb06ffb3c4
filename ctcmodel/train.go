package ctcmodel

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/ctcnet"
	"github.com/unixpickle/ctcnet/anysgd"
	"github.com/unixpickle/ctcnet/telemetry"
	"github.com/unixpickle/essentials"
)

// TrainConfig configures a training step.
type TrainConfig struct {
	// Optimizer is one of anysgd.OptimizerNames.
	Optimizer string

	// LearningRate is the constant learning rate.
	// It is ignored when Scheduled is set, but it must
	// still be non-negative.
	LearningRate float64

	// ClipByNorm selects clipping by L2 norm rather than
	// by value when the model's ClipGrad is positive.
	ClipByNorm bool

	// Scheduled makes every step use the learning rate
	// passed to Run.
	Scheduled bool

	// GradientNoiseScale, if non-zero, requests Gaussian
	// gradient noise, which is not implemented.
	GradientNoiseScale float64
}

// A TrainOp performs training steps on a Model.
type TrainOp struct {
	Model     *Model
	Config    TrainConfig
	Optimizer anysgd.Optimizer

	// State holds the global step and the optimizer slots.
	State *anysgd.State

	// ClippedGradients stores the gradients applied by the
	// last step when clipping is enabled.
	ClippedGradients []anysgd.Gradient
}

// Train creates a training op.
// If state is nil, training starts from step 0.
//
// Invalid settings are reported before anything is
// created or built.
func (m *Model) Train(cfg TrainConfig, state *anysgd.State) (*TrainOp, error) {
	opt, err := anysgd.ParseOptimizer(cfg.Optimizer)
	if err != nil {
		return nil, err
	}
	if cfg.LearningRate < 0 {
		return nil, &ctcnet.ConfigError{Key: "learning rate", Value: cfg.LearningRate,
			Reason: "must be non-negative"}
	}
	if state == nil {
		state = anysgd.NewState()
	}
	m.ensureBuilt()
	if m.Config.ClipGrad > 0 {
		telemetry.RegisterParamStats(m.Sink, m.Parameters())
	}
	return &TrainOp{
		Model:     m,
		Config:    cfg,
		Optimizer: opt,
		State:     state,
	}, nil
}

// Run performs one training step on the batch and returns
// its total loss.
//
// The rate argument is only used if the op is scheduled.
// The weights and the global step are updated together,
// and neither changes if an error is returned.
func (t *TrainOp) Run(b *Batch, rate float64) (float64, error) {
	if t.Config.Scheduled {
		if rate < 0 {
			return 0, &ctcnet.ConfigError{Key: "learning rate", Value: rate,
				Reason: "must be non-negative"}
		}
	} else {
		rate = t.Config.LearningRate
	}

	out, err := t.Model.ComputeLoss(b)
	if err != nil {
		return 0, essentials.AddCtx("train step", err)
	}
	params := t.Model.Parameters()
	grad := anydiff.NewGrad(ctcnet.Vars(params)...)
	out.Loss.Propagate(ctcnet.ConstVector([]float64{1}), grad)
	grads := anysgd.Gradients(params, grad)

	if t.Config.GradientNoiseScale != 0 {
		if grads, err = anysgd.AddGradientNoise(grads, t.Config.GradientNoiseScale); err != nil {
			return 0, err
		}
	}
	if clip := t.Model.Config.ClipGrad; clip > 0 {
		if t.Config.ClipByNorm {
			grads = anysgd.ClipByNorm(grads, clip)
		} else {
			grads = anysgd.ClipByValue(grads, clip)
		}
		t.ClippedGradients = grads
		telemetry.ParamStats(t.Model.Sink, b.split(), params)
	}

	t.Model.lock.Lock()
	defer t.Model.lock.Unlock()
	if err := anysgd.Apply(t.Optimizer, t.State, grads, rate); err != nil {
		return 0, err
	}
	return ctcnet.Floats(out.Loss.Output())[0], nil
}
