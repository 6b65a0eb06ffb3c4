package expconf

import (
	"testing"

	"github.com/unixpickle/ctcnet"
)

const testFile = `
model_name: blstm_ctc
corpus:
  label_type: phone
  train_data_size: default
feature:
  input_size: 123
  num_stack: 3
  num_skip: 3
param:
  batch_size: 32
  num_cell: 256
  num_layer: 5
  clip_grad: 5.0
  clip_activation: 50
  dropout_input: 0.8
  dropout_hidden: 0.5
  num_proj: 0
  bottleneck_dim: 0
  weight_decay: 1e-6
  optimizer: adam
  learning_rate: 0.001
`

const testMultiTaskFile = `
model_name: multitask_lstm_ctc
corpus:
  label_type: character
  label_type_second: phone39
feature:
  input_size: 40
param:
  batch_size: 16
  num_unit: 128
  num_layer_main: 3
  num_layer_second: 2
  main_task_weight: 0.8
  optimizer: rmsprop
  learning_rate: 0.01
`

func TestModelConfig(t *testing.T) {
	f, err := Parse([]byte(testFile))
	if err != nil {
		t.Fatal(err)
	}
	if f.MultiTask() {
		t.Error("unexpected multi-task model")
	}
	cfg, err := f.ModelConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.InputSize != 369 {
		t.Errorf("expected input size 369 but got %d", cfg.InputSize)
	}
	if cfg.OutputSize != 37 || cfg.NumClasses() != 38 {
		t.Errorf("unexpected output size %d", cfg.OutputSize)
	}
	if cfg.NumUnit != 256 || cfg.NumLayer != 5 || !cfg.Bidirectional {
		t.Errorf("unexpected structure: %+v", cfg)
	}
	if cfg.DropoutInput != 0.8 || cfg.DropoutHidden != 0.5 || cfg.WeightDecay != 1e-6 {
		t.Errorf("unexpected regularization: %+v", cfg)
	}
	if cfg.ParameterInit != DefaultParameterInit {
		t.Errorf("unexpected init range: %f", cfg.ParameterInit)
	}
	train := f.TrainConfig()
	if train.Optimizer != "adam" || train.LearningRate != 0.001 {
		t.Errorf("unexpected train config: %+v", train)
	}
	m, err := f.NewModel(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Heads) != 1 {
		t.Errorf("expected 1 head but got %d", len(m.Heads))
	}
}

func TestMultiTaskConfig(t *testing.T) {
	f, err := Parse([]byte(testMultiTaskFile))
	if err != nil {
		t.Fatal(err)
	}
	if !f.MultiTask() {
		t.Fatal("expected multi-task model")
	}
	cfg, err := f.MultiTaskConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.InputSize != 40 {
		t.Errorf("expected input size 40 but got %d", cfg.InputSize)
	}
	if cfg.OutputSize != 30 || cfg.OutputSizeSecond != 39 {
		t.Errorf("unexpected output sizes: %d, %d", cfg.OutputSize, cfg.OutputSizeSecond)
	}
	if cfg.NumLayer != 3 || cfg.NumLayerSecond != 2 || cfg.MainWeight != 0.8 {
		t.Errorf("unexpected heads: %+v", cfg)
	}
	if cfg.Bidirectional {
		t.Error("expected unidirectional model")
	}
	m, err := f.NewModel(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Heads) != 2 || m.NumClasses(1) != 40 {
		t.Errorf("unexpected heads: %+v", m.Heads)
	}
}

func TestConfigErrors(t *testing.T) {
	f, err := Parse([]byte(testFile))
	if err != nil {
		t.Fatal(err)
	}
	f.ModelName = "cnn_ctc"
	if _, err := f.ModelConfig(); !ctcnet.IsConfigError(err) {
		t.Errorf("expected config error for model name but got %v", err)
	}
	f.ModelName = "lstm_ctc"
	f.Corpus.LabelType = "phone50"
	if _, err := f.ModelConfig(); !ctcnet.IsConfigError(err) {
		t.Errorf("expected config error for label type but got %v", err)
	}
	if _, err := Parse([]byte("param: [1, 2")); err == nil {
		t.Error("expected parse error")
	}
}
