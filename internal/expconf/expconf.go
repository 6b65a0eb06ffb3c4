// Package expconf reads experiment configuration files.
//
// A configuration file is YAML with a model name and
// three sections (corpus, feature and param), as written
// next to every trained model.
package expconf

import (
	"io/ioutil"
	"strings"

	"github.com/unixpickle/ctcnet"
	"github.com/unixpickle/ctcnet/corpus"
	"github.com/unixpickle/ctcnet/ctcmodel"
	"github.com/unixpickle/ctcnet/telemetry"
	"github.com/unixpickle/essentials"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the configuration file in a
// model directory.
const FileName = "config.yml"

// DefaultParameterInit is the weight initialization range
// used when a file does not set one.
const DefaultParameterInit = 0.1

var modelNames = []string{"blstm_ctc", "lstm_ctc", "multitask_blstm_ctc",
	"multitask_lstm_ctc"}

// File is the contents of a configuration file.
type File struct {
	ModelName string  `yaml:"model_name"`
	Corpus    Corpus  `yaml:"corpus"`
	Feature   Feature `yaml:"feature"`
	Param     Param   `yaml:"param"`
}

// Corpus selects the data and its label spaces.
type Corpus struct {
	LabelType       string `yaml:"label_type"`
	LabelTypeSecond string `yaml:"label_type_second"`
	TrainDataSize   string `yaml:"train_data_size"`
}

// Feature describes the input frames.
type Feature struct {
	InputSize int `yaml:"input_size"`
	NumStack  int `yaml:"num_stack"`
	NumSkip   int `yaml:"num_skip"`
}

// Param holds the model and training hyper-parameters.
type Param struct {
	BatchSize int `yaml:"batch_size"`

	// NumUnit and NumCell are synonyms.
	NumUnit int `yaml:"num_unit"`
	NumCell int `yaml:"num_cell"`

	NumLayer       int `yaml:"num_layer"`
	NumLayerMain   int `yaml:"num_layer_main"`
	NumLayerSecond int `yaml:"num_layer_second"`

	ClipGrad       float64 `yaml:"clip_grad"`
	ClipActivation float64 `yaml:"clip_activation"`
	DropoutInput   float64 `yaml:"dropout_input"`
	DropoutHidden  float64 `yaml:"dropout_hidden"`
	NumProj        int     `yaml:"num_proj"`
	BottleneckDim  int     `yaml:"bottleneck_dim"`
	WeightDecay    float64 `yaml:"weight_decay"`
	InputNoise     float64 `yaml:"input_noise_stddev"`
	MainTaskWeight float64 `yaml:"main_task_weight"`

	Optimizer    string  `yaml:"optimizer"`
	LearningRate float64 `yaml:"learning_rate"`
	ClipByNorm   bool    `yaml:"clip_by_norm"`

	// ParameterInit defaults to DefaultParameterInit.
	ParameterInit float64 `yaml:"parameter_init"`

	Seed int64 `yaml:"seed"`
}

// Load reads and parses a configuration file.
func Load(path string) (*File, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, essentials.AddCtx("load config", err)
	}
	return Parse(data)
}

// Parse parses the contents of a configuration file.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, essentials.AddCtx("parse config", err)
	}
	if f.Feature.NumStack == 0 {
		f.Feature.NumStack = 1
	}
	if f.Feature.NumSkip == 0 {
		f.Feature.NumSkip = 1
	}
	if f.Param.ParameterInit == 0 {
		f.Param.ParameterInit = DefaultParameterInit
	}
	return &f, nil
}

// MultiTask checks if the file describes a two-head
// model.
func (f *File) MultiTask() bool {
	return strings.HasPrefix(f.ModelName, "multitask_")
}

// InputSize returns the size of a stacked input frame.
func (f *File) InputSize() int {
	return f.Feature.InputSize * f.Feature.NumStack
}

// ModelConfig creates the model configuration of a
// single-head model.
func (f *File) ModelConfig() (ctcmodel.Config, error) {
	outSize, err := corpus.OutputSize(f.Corpus.LabelType)
	if err != nil {
		return ctcmodel.Config{}, err
	}
	return f.baseConfig(outSize, f.Param.NumLayer)
}

// MultiTaskConfig creates the configuration of a two-head
// model.
// The main head uses the multi-task main label space;
// the second head uses LabelTypeSecond.
func (f *File) MultiTaskConfig() (ctcmodel.MultiTaskConfig, error) {
	secondSize, err := corpus.OutputSize(f.Corpus.LabelTypeSecond)
	if err != nil {
		return ctcmodel.MultiTaskConfig{}, err
	}
	cfg, err := f.baseConfig(corpus.MultiTaskMainSize, f.Param.NumLayerMain)
	if err != nil {
		return ctcmodel.MultiTaskConfig{}, err
	}
	return ctcmodel.MultiTaskConfig{
		Config:           cfg,
		OutputSizeSecond: secondSize,
		NumLayerSecond:   f.Param.NumLayerSecond,
		MainWeight:       f.Param.MainTaskWeight,
	}, nil
}

// TrainConfig creates the training configuration.
func (f *File) TrainConfig() ctcmodel.TrainConfig {
	return ctcmodel.TrainConfig{
		Optimizer:    f.Param.Optimizer,
		LearningRate: f.Param.LearningRate,
		ClipByNorm:   f.Param.ClipByNorm,
	}
}

// NewModel creates the model described by the file.
func (f *File) NewModel(sink telemetry.Sink) (*ctcmodel.Model, error) {
	if f.MultiTask() {
		cfg, err := f.MultiTaskConfig()
		if err != nil {
			return nil, err
		}
		return ctcmodel.NewMultiTask(cfg, sink)
	}
	cfg, err := f.ModelConfig()
	if err != nil {
		return nil, err
	}
	return ctcmodel.New(cfg, sink)
}

func (f *File) baseConfig(outSize, numLayer int) (ctcmodel.Config, error) {
	bidir, err := f.bidirectional()
	if err != nil {
		return ctcmodel.Config{}, err
	}
	p := &f.Param
	numUnit := p.NumUnit
	if numUnit == 0 {
		numUnit = p.NumCell
	}
	return ctcmodel.Config{
		BatchSize:        p.BatchSize,
		InputSize:        f.InputSize(),
		NumUnit:          numUnit,
		NumLayer:         numLayer,
		OutputSize:       outSize,
		ParameterInit:    p.ParameterInit,
		ClipGrad:         p.ClipGrad,
		ClipActivation:   p.ClipActivation,
		DropoutInput:     p.DropoutInput,
		DropoutHidden:    p.DropoutHidden,
		NumProj:          p.NumProj,
		BottleneckDim:    p.BottleneckDim,
		WeightDecay:      p.WeightDecay,
		InputNoiseStddev: p.InputNoise,
		Bidirectional:    bidir,
		Seed:             p.Seed,
	}, nil
}

func (f *File) bidirectional() (bool, error) {
	name := strings.TrimPrefix(f.ModelName, "multitask_")
	switch name {
	case "blstm_ctc", "blstm":
		return true, nil
	case "lstm_ctc", "lstm":
		return false, nil
	}
	return false, &ctcnet.ConfigError{Key: "model_name", Value: f.ModelName, Valid: modelNames}
}
