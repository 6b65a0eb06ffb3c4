package anyctc

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/ctcnet"
)

func TestParseStrategy(t *testing.T) {
	for name, expected := range map[string]Strategy{
		"greedy":      Greedy,
		"Greedy":      Greedy,
		"beam_search": BeamSearch,
		"beamSearch":  BeamSearch,
	} {
		actual, err := ParseStrategy(name)
		if err != nil {
			t.Errorf("%s: %s", name, err)
		} else if actual != expected {
			t.Errorf("%s: expected %s but got %s", name, expected, actual)
		}
	}
	_, err := ParseStrategy("viterbi")
	if !ctcnet.IsConfigError(err) {
		t.Errorf("expected config error but got %v", err)
	}
}

func TestGreedyLabels(t *testing.T) {
	blank := 2
	path := []int{blank, 1, 1, blank, 1, 0, 0, blank}
	frames := make([][]float64, len(path))
	for i, x := range path {
		frames[i] = make([]float64, 3)
		frames[i][x] = 1
	}
	actual := GreedyLabels(frames)
	expected := []int{1, 1, 0}
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("expected %v but got %v", expected, actual)
	}
}

func TestBeamSearchLabels(t *testing.T) {
	probs := [][]float64{
		{1e-6, 1e-6, 1 - 2e-6},
		// The first label is not more likely in either
		// frame, but after both timesteps it has a 64%
		// chance of being seen at least once.
		{0.4, 1e-6, 0.6 - 1e-6},
		{0.4, 1e-6, 0.6 - 1e-6},
		{1e-6, 1e-6, 1 - 2e-6},
		{0.2, 0.5, 0.3},
	}
	frames := make([][]float64, len(probs))
	for i, p := range probs {
		frames[i] = make([]float64, len(p))
		for j, x := range p {
			frames[i][j] = math.Log(x)
		}
	}
	if actual := BeamSearchLabels(frames, 4); !reflect.DeepEqual(actual, []int{0, 1}) {
		t.Errorf("beam search: expected [0 1] but got %v", actual)
	}
	if actual := GreedyLabels(frames); !reflect.DeepEqual(actual, []int{1}) {
		t.Errorf("greedy: expected [1] but got %v", actual)
	}
}

func TestDecodeBeamMatchesGreedy(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const (
		maxTime    = 12
		batch      = 3
		numClasses = 5
	)
	data := make([]float64, maxTime*batch*numClasses)
	for i := 0; i < maxTime*batch; i++ {
		data[i*numClasses+rng.Intn(numClasses)] = 6
	}
	logits, err := NewLogits(anydiff.NewConst(ctcnet.ConstVector(data)), maxTime, batch,
		numClasses)
	if err != nil {
		t.Fatal(err)
	}
	seqLens := []int{12, 7, 1}
	greedy, err := Decode(logits, seqLens, Greedy, 0)
	if err != nil {
		t.Fatal(err)
	}
	beam, err := Decode(logits, seqLens, BeamSearch, 1)
	if err != nil {
		t.Fatal(err)
	}
	greedyLabels, err := greedy.Dense()
	if err != nil {
		t.Fatal(err)
	}
	beamLabels, err := beam.Dense()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(greedyLabels, beamLabels) {
		t.Errorf("greedy %v differs from beam %v", greedyLabels, beamLabels)
	}
}

// A beam of width 1 keeps the most probable prefix, not the
// most probable path, so it only matches greedy decoding
// when every frame is peaked. Here the path 0,blank,0 is the
// best single path (greedy gives [0 0]), but prefix [0]
// collects 0.384 of the mass against 0.216 for [0 0].
func TestBeamWidthOneNotGreedy(t *testing.T) {
	probs := [][]float64{{0.6, 0.4}, {0.4, 0.6}, {0.6, 0.4}}
	frames := make([][]float64, len(probs))
	for i, p := range probs {
		frames[i] = []float64{math.Log(p[0]), math.Log(p[1])}
	}
	if actual := GreedyLabels(frames); !reflect.DeepEqual(actual, []int{0, 0}) {
		t.Errorf("greedy: expected [0 0] but got %v", actual)
	}
	if actual := BeamSearchLabels(frames, 1); !reflect.DeepEqual(actual, []int{0}) {
		t.Errorf("beam search: expected [0] but got %v", actual)
	}
}

func TestDecodeMissingBeamWidth(t *testing.T) {
	logits := randomLogits(rand.New(rand.NewSource(2)), 3, 1, 3)
	_, err := Decode(logits, []int{3}, BeamSearch, 0)
	if !ctcnet.IsConfigError(err) {
		t.Errorf("expected config error but got %v", err)
	}
	if _, err := Decode(logits, []int{3}, Greedy, 0); err != nil {
		t.Error(err)
	}
}

func TestDecodePadding(t *testing.T) {
	// Frames: utterance 0 emits label 0 at t=0 and label 1
	// at t=1; utterance 1 is one frame long.
	logits, err := NewLogits(anydiff.NewConst(ctcnet.ConstVector([]float64{
		5, 0, 0, 0, 5, 0,
		0, 5, 0, 5, 0, 0,
	})), 2, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []Strategy{Greedy, BeamSearch} {
		res, err := Decode(logits, []int{2, 1}, s, 3)
		if err != nil {
			t.Fatal(err)
		}
		dense, err := res.Dense()
		if err != nil {
			t.Fatal(err)
		}
		expected := [][]int{{0, 1}, {1}}
		if !reflect.DeepEqual(dense, expected) {
			t.Errorf("%s: expected %v but got %v", s, expected, dense)
		}
	}
}
