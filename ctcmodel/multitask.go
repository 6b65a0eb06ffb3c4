package ctcmodel

import (
	"github.com/unixpickle/ctcnet"
	"github.com/unixpickle/ctcnet/telemetry"
)

// MultiTaskConfig configures a model with a main and a
// second head over a shared encoder.
//
// The embedded Config's OutputSize and NumLayer describe
// the main head.
type MultiTaskConfig struct {
	Config

	OutputSizeSecond int
	NumLayerSecond   int

	// MainWeight is the weight of the main loss; the
	// second loss is weighted by 1-MainWeight.
	MainWeight float64
}

// NewMultiTask creates a two-head model.
// The heads are named "main" and "second".
func NewMultiTask(cfg MultiTaskConfig, sink telemetry.Sink) (*Model, error) {
	if cfg.MainWeight < 0 || cfg.MainWeight > 1 {
		return nil, &ctcnet.ConfigError{Key: "main_task_weight", Value: cfg.MainWeight,
			Reason: "must be in [0, 1]"}
	}
	return NewHeads(cfg.Config, []Head{
		{
			Name:       "main",
			OutputSize: cfg.OutputSize,
			NumLayer:   cfg.NumLayer,
			Weight:     cfg.MainWeight,
		},
		{
			Name:       "second",
			OutputSize: cfg.OutputSizeSecond,
			NumLayer:   cfg.NumLayerSecond,
			Weight:     1 - cfg.MainWeight,
		},
	}, sink)
}
