package ctcmodel

import "github.com/unixpickle/ctcnet"

// Config describes the structure and regularization of a
// CTC model.
//
// A Config is a plain value; a Model copies it when it is
// created.
type Config struct {
	BatchSize  int
	InputSize  int
	NumUnit    int
	NumLayer   int
	OutputSize int

	// ParameterInit is the range [-ParameterInit,
	// ParameterInit] of the uniform weight initializer.
	ParameterInit float64

	// ClipGrad, if positive, clips gradients before every
	// update (by norm or by value, see TrainConfig).
	ClipGrad float64

	// ClipActivation, if positive, clips the LSTM cell
	// state.
	ClipActivation float64

	// Keep probabilities for dropout on inputs and on
	// hidden connections.
	// A value of 0 or 1 disables dropout.
	DropoutInput  float64
	DropoutHidden float64

	// NumProj, if positive, adds a projection to every
	// LSTM.
	NumProj int

	// BottleneckDim, if positive, inserts a linear layer
	// of this size before each output layer.
	BottleneckDim int

	WeightDecay float64

	// InputNoiseStddev, if positive, adds Gaussian noise
	// to the inputs while training.
	InputNoiseStddev float64

	// NumDevices is the number of devices the model is
	// replicated to.
	// Loss telemetry is only registered for one device.
	NumDevices int

	Bidirectional bool

	// Seed seeds weight initialization, dropout and input
	// noise.
	Seed int64
}

// NumClasses returns the number of outputs per frame: one
// per label, plus the blank.
func (c *Config) NumClasses() int {
	return c.OutputSize + 1
}

// Validate checks that the structural parameters are
// specified and the regularizers are in range.
func (c *Config) Validate() error {
	positive := []struct {
		key   string
		value int
	}{
		{"input_size", c.InputSize},
		{"num_unit", c.NumUnit},
		{"num_layer", c.NumLayer},
		{"output_size", c.OutputSize},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return &ctcnet.ConfigError{Key: p.key, Value: p.value, Reason: "must be positive"}
		}
	}
	nonNegative := []struct {
		key   string
		value float64
	}{
		{"batch_size", float64(c.BatchSize)},
		{"parameter_init", c.ParameterInit},
		{"clip_grad", c.ClipGrad},
		{"clip_activation", c.ClipActivation},
		{"num_proj", float64(c.NumProj)},
		{"bottleneck_dim", float64(c.BottleneckDim)},
		{"weight_decay", c.WeightDecay},
		{"input_noise_stddev", c.InputNoiseStddev},
		{"num_devices", float64(c.NumDevices)},
	}
	for _, p := range nonNegative {
		if p.value < 0 {
			return &ctcnet.ConfigError{Key: p.key, Value: p.value,
				Reason: "must be non-negative"}
		}
	}
	for key, value := range map[string]float64{
		"dropout_input":  c.DropoutInput,
		"dropout_hidden": c.DropoutHidden,
	} {
		if value < 0 || value > 1 {
			return &ctcnet.ConfigError{Key: key, Value: value,
				Reason: "keep probability must be in [0, 1]"}
		}
	}
	return nil
}
