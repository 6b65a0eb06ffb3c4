package anyctc

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/ctcnet"
	"github.com/unixpickle/essentials"
)

// A Strategy is a decoding algorithm.
type Strategy int

const (
	Greedy Strategy = iota
	BeamSearch
)

var strategyNames = []string{"greedy", "beam_search"}

// ParseStrategy parses a decoding strategy name.
// Both "beam_search" and "beamsearch" select BeamSearch.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case "greedy":
		return Greedy, nil
	case "beam_search", "beamsearch":
		return BeamSearch, nil
	}
	return 0, &ctcnet.ConfigError{Key: "decode strategy", Value: name, Valid: strategyNames}
}

// String returns the canonical name of the strategy.
func (s Strategy) String() string {
	switch s {
	case Greedy:
		return "greedy"
	case BeamSearch:
		return "beam_search"
	}
	return "Strategy(" + strconv.Itoa(int(s)) + ")"
}

// Decode produces one label sequence per utterance.
// Only the first seqLens[b] frames of each utterance are
// decoded.
//
// The beamWidth is required for BeamSearch and ignored
// for Greedy.
func Decode(logits *Logits, seqLens []int, s Strategy, beamWidth int) (*Labels, error) {
	switch s {
	case Greedy:
	case BeamSearch:
		if beamWidth <= 0 {
			return nil, &ctcnet.ConfigError{Key: "beam width", Value: beamWidth,
				Reason: "beam search requires a positive beam width"}
		}
	default:
		return nil, &ctcnet.ConfigError{Key: "decode strategy", Value: s, Valid: strategyNames}
	}
	if err := logits.checkLengths(seqLens); err != nil {
		return nil, essentials.AddCtx("decode", err)
	}
	res := make([][]int, logits.BatchSize)
	for b := range res {
		frames := logits.Frames(b, seqLens[b])
		if s == Greedy {
			res[b] = GreedyLabels(frames)
		} else {
			res[b] = BeamSearchLabels(logSoftmaxFrames(frames), beamWidth)
		}
	}
	return FromDense(res), nil
}

// GreedyLabels picks the best class for every frame, then
// collapses repeated symbols and removes blanks.
// The last class of each frame is the blank.
func GreedyLabels(frames [][]float64) []int {
	res := []int{}
	last := -1
	for _, frame := range frames {
		blank := len(frame) - 1
		idx := argmax(frame)
		if idx != blank && idx != last {
			res = append(res, idx)
		}
		last = idx
	}
	return res
}

// BeamSearchLabels runs a CTC prefix beam search over
// log-probability frames and returns the most likely
// label sequence.
//
// At every timestep, only the width most likely prefixes
// are kept.
// The probability of each prefix is the sum over all of
// the paths that collapse to it.
func BeamSearchLabels(frames [][]float64, width int) []int {
	beams := []*beam{{Prefix: []int{}, Prob: labelProb{Blank: 0, NoBlank: math.Inf(-1)}}}
	for _, frame := range frames {
		beams = nextBeams(beams, frame, width)
	}
	return beams[0].Prefix
}

func nextBeams(beams []*beam, frame []float64, width int) []*beam {
	blank := len(frame) - 1
	set := newBeamSet()
	for _, b := range beams {
		total := b.Prob.Total()
		stay := set.Get(b.Prefix)
		stay.Prob.Blank = addLogs(stay.Prob.Blank, total+frame[blank])
		if len(b.Prefix) > 0 {
			last := b.Prefix[len(b.Prefix)-1]
			stay.Prob.NoBlank = addLogs(stay.Prob.NoBlank, b.Prob.NoBlank+frame[last])
		}
		for class, logProb := range frame[:blank] {
			ext := set.Get(append(append([]int{}, b.Prefix...), class))
			if len(b.Prefix) > 0 && class == b.Prefix[len(b.Prefix)-1] {
				// A repeated symbol must be separated by a blank.
				ext.Prob.NoBlank = addLogs(ext.Prob.NoBlank, b.Prob.Blank+logProb)
			} else {
				ext.Prob.NoBlank = addLogs(ext.Prob.NoBlank, total+logProb)
			}
		}
	}
	res := set.List
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Prob.Total() > res[j].Prob.Total()
	})
	if len(res) > width {
		res = res[:width]
	}
	return res
}

// labelProb represents the probability of a labeling,
// split up into the probability of the labeling without a
// trailing blank and with a trailing blank.
type labelProb struct {
	Blank   float64
	NoBlank float64
}

func (l labelProb) Total() float64 {
	return addLogs(l.Blank, l.NoBlank)
}

type beam struct {
	Prefix []int
	Prob   labelProb
}

// beamSet stores candidate prefixes in insertion order.
type beamSet struct {
	List  []*beam
	index map[string]*beam
}

func newBeamSet() *beamSet {
	return &beamSet{index: map[string]*beam{}}
}

// Get finds or creates the candidate for a prefix.
// New candidates have zero probability.
func (b *beamSet) Get(prefix []int) *beam {
	key := prefixKey(prefix)
	if res, ok := b.index[key]; ok {
		return res
	}
	res := &beam{
		Prefix: prefix,
		Prob:   labelProb{Blank: math.Inf(-1), NoBlank: math.Inf(-1)},
	}
	b.index[key] = res
	b.List = append(b.List, res)
	return res
}

func prefixKey(prefix []int) string {
	var buf strings.Builder
	for _, x := range prefix {
		buf.WriteString(strconv.Itoa(x))
		buf.WriteByte(',')
	}
	return buf.String()
}

func argmax(frame []float64) int {
	vec := ctcnet.ConstVector(frame)
	return anyvec.MaxIndex(vec)
}

func logSoftmaxFrames(frames [][]float64) [][]float64 {
	res := make([][]float64, len(frames))
	for i, frame := range frames {
		vec := ctcnet.ConstVector(append([]float64{}, frame...))
		anyvec.LogSoftmax(vec, len(frame))
		res[i] = ctcnet.Floats(vec)
	}
	return res
}
