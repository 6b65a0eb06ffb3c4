// Package checkpoint saves and restores model parameters
// together with the optimizer state.
//
// A model directory holds one file per saved epoch, named
// "model.ckpt-<epoch>", and an index file, "checkpoint",
// which names the latest one.
package checkpoint

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/ctcnet"
	"github.com/unixpickle/ctcnet/anysgd"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

// ErrNoCheckpoint is returned when a directory has no
// saved checkpoints.
var ErrNoCheckpoint = errors.New("no checkpoint")

const (
	indexName   = "checkpoint"
	filePrefix  = "model.ckpt-"
	indexPrefix = "model_checkpoint_path: "
)

// A Checkpoint is the contents of a checkpoint file.
type Checkpoint struct {
	Epoch  int
	State  *anysgd.State
	Params map[string][]float64
}

// Path returns the path of the checkpoint for an epoch.
func Path(dir string, epoch int) string {
	return filepath.Join(dir, filePrefix+strconv.Itoa(epoch))
}

// Save writes the parameters of model and the training
// state to Path(dir, epoch) and marks it as the latest
// checkpoint.
//
// The directory is created if necessary.
func Save(dir string, epoch int, model ctcnet.Parameterizer, state *anysgd.State) (string, error) {
	path, err := save(dir, epoch, model, state)
	if err != nil {
		return "", essentials.AddCtx("save checkpoint", err)
	}
	return path, nil
}

func save(dir string, epoch int, model ctcnet.Parameterizer, state *anysgd.State) (string, error) {
	if state == nil {
		state = anysgd.NewState()
	}
	list := []serializer.Serializer{serializer.Int(epoch), state}
	for _, p := range model.Parameters() {
		list = append(list, serializer.String(p.Name), &anyvecsave.S{Vector: p.Var.Vector})
	}
	data, err := serializer.SerializeSlice(list)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := Path(dir, epoch)
	if err := ioutil.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	index := indexPrefix + strconv.Quote(filepath.Base(path)) + "\n"
	if err := ioutil.WriteFile(filepath.Join(dir, indexName), []byte(index), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Resolve finds a checkpoint in a model directory.
//
// A negative epoch selects the latest checkpoint, as
// named by the index file; otherwise the result is
// exactly Path(dir, epoch).
// Either way, a directory without an index file results
// in an error wrapping ErrNoCheckpoint.
func Resolve(dir string, epoch int) (string, error) {
	data, err := ioutil.ReadFile(filepath.Join(dir, indexName))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("resolve checkpoint: %w: %s", ErrNoCheckpoint, dir)
		}
		return "", essentials.AddCtx("resolve checkpoint", err)
	}
	if epoch >= 0 {
		return Path(dir, epoch), nil
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, indexPrefix) {
			continue
		}
		name, err := strconv.Unquote(strings.TrimSpace(line[len(indexPrefix):]))
		if err != nil {
			return "", fmt.Errorf("resolve checkpoint: bad index line: %q", line)
		}
		if !filepath.IsAbs(name) {
			name = filepath.Join(dir, name)
		}
		return name, nil
	}
	return "", fmt.Errorf("resolve checkpoint: %w: empty index in %s", ErrNoCheckpoint, dir)
}

// Load reads a checkpoint file.
func Load(path string) (*Checkpoint, error) {
	ckpt, err := load(path)
	if err != nil {
		return nil, essentials.AddCtx("load checkpoint", err)
	}
	return ckpt, nil
}

func load(path string) (*Checkpoint, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	slice, err := serializer.DeserializeSlice(data)
	if err != nil {
		return nil, err
	}
	if len(slice) < 2 || len(slice)%2 != 0 {
		return nil, errors.New("bad checkpoint layout")
	}
	epoch, ok := slice[0].(serializer.Int)
	if !ok {
		return nil, fmt.Errorf("bad epoch type: %T", slice[0])
	}
	state, ok := slice[1].(*anysgd.State)
	if !ok {
		return nil, fmt.Errorf("bad state type: %T", slice[1])
	}
	res := &Checkpoint{
		Epoch:  int(epoch),
		State:  state,
		Params: map[string][]float64{},
	}
	for i := 2; i < len(slice); i += 2 {
		name, ok := slice[i].(serializer.String)
		if !ok {
			return nil, fmt.Errorf("bad parameter name type: %T", slice[i])
		}
		vec, ok := slice[i+1].(*anyvecsave.S)
		if !ok {
			return nil, fmt.Errorf("bad parameter type: %T", slice[i+1])
		}
		values, ok := vec.Vector.Data().([]float64)
		if !ok {
			return nil, fmt.Errorf("parameter %s: bad numeric type: %T", name,
				vec.Vector.Data())
		}
		res.Params[string(name)] = values
	}
	return res, nil
}

// Restore loads a checkpoint into the parameters of
// model, matching them by name, and copies the saved
// training state into state if it is non-nil.
//
// Nothing is modified unless every parameter of model is
// present in the checkpoint with the right size.
func Restore(path string, model ctcnet.Parameterizer, state *anysgd.State) (*Checkpoint, error) {
	ckpt, err := Load(path)
	if err != nil {
		return nil, err
	}
	params := model.Parameters()
	for _, p := range params {
		values, ok := ckpt.Params[p.Name]
		if !ok {
			return nil, fmt.Errorf("restore checkpoint: missing parameter %s", p.Name)
		}
		if len(values) != p.Var.Vector.Len() {
			return nil, fmt.Errorf("restore checkpoint: parameter %s has %d components "+
				"but checkpoint has %d", p.Name, p.Var.Vector.Len(), len(values))
		}
	}
	for _, p := range params {
		p.Var.Vector.Set(ctcnet.ConstVector(ckpt.Params[p.Name]))
	}
	if state != nil {
		*state = *ckpt.State
	}
	return ckpt, nil
}
