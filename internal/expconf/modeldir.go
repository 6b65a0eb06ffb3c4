package expconf

import (
	"io/ioutil"
	"path/filepath"

	"github.com/unixpickle/ctcnet/anysgd"
	"github.com/unixpickle/ctcnet/checkpoint"
	"github.com/unixpickle/ctcnet/ctcmodel"
	"github.com/unixpickle/ctcnet/telemetry"
	"github.com/unixpickle/essentials"
)

// A ModelDir is a restored model directory.
type ModelDir struct {
	Dir        string
	File       *File
	Model      *ctcmodel.Model
	State      *anysgd.State
	Checkpoint string
}

// OpenModelDir reads the configuration file of a model
// directory and restores its weights.
//
// A negative epoch restores the latest checkpoint.
func OpenModelDir(dir string, epoch int, sink telemetry.Sink) (*ModelDir, error) {
	f, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}
	m, err := f.NewModel(sink)
	if err != nil {
		return nil, err
	}
	path, err := checkpoint.Resolve(dir, epoch)
	if err != nil {
		return nil, err
	}
	state := anysgd.NewState()
	if _, err := checkpoint.Restore(path, m, state); err != nil {
		return nil, err
	}
	return &ModelDir{
		Dir:        dir,
		File:       f,
		Model:      m,
		State:      state,
		Checkpoint: path,
	}, nil
}

// CopyFile copies a configuration file into a model
// directory, so that OpenModelDir can find it.
func CopyFile(path, dir string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return essentials.AddCtx("copy config", err)
	}
	if _, err := Parse(data); err != nil {
		return err
	}
	if err := ioutil.WriteFile(filepath.Join(dir, FileName), data, 0644); err != nil {
		return essentials.AddCtx("copy config", err)
	}
	return nil
}
