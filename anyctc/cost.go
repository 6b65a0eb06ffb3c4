package anyctc

import (
	"fmt"
	"math"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
)

// Loss computes the CTC cost for every utterance in a
// batch.
// The cost of an utterance is the negative log likelihood
// of its label sequence given its first seqLens[b] frames.
// Frames past an utterance's length do not affect the
// cost.
//
// The logits are unnormalized; a log-softmax is applied
// to every frame internally.
// The result has one component per utterance.
//
// If a label cannot be aligned to its frames (e.g. it is
// longer than the utterance), the cost is +Inf and no
// gradient flows from it.
//
// The logits must use []float64 numeric lists.
func Loss(logits *Logits, labels *Labels, seqLens []int) (anydiff.Res, error) {
	if err := logits.checkLengths(seqLens); err != nil {
		return nil, essentials.AddCtx("ctc loss", err)
	}
	if labels == nil {
		return nil, essentials.AddCtx("ctc loss", fmt.Errorf("missing labels"))
	}
	if labels.BatchSize() != logits.BatchSize {
		return nil, essentials.AddCtx("ctc loss",
			fmt.Errorf("labels have batch size %d but logits have %d", labels.BatchSize(),
				logits.BatchSize))
	}
	if err := labels.Check(logits.NumClasses - 1); err != nil {
		return nil, essentials.AddCtx("ctc loss", err)
	}
	dense, err := labels.Dense()
	if err != nil {
		return nil, essentials.AddCtx("ctc loss", err)
	}

	logProbs := anydiff.LogSoftmax(logits.Res, logits.NumClasses)
	res := &lossRes{
		In:      logProbs,
		Logits:  logits,
		Labels:  dense,
		SeqLens: append([]int{}, seqLens...),
		Alphas:  make([][][]float64, len(dense)),
		Totals:  make([]float64, len(dense)),
	}
	data := logProbs.Output().Data().([]float64)
	costs := make([]float64, len(dense))
	for b, label := range dense {
		frames := framesOf(data, logits, b, seqLens[b])
		res.Alphas[b], res.Totals[b] = forward(frames, label, logits.Blank())
		costs[b] = -res.Totals[b]
	}
	c := logProbs.Output().Creator()
	res.OutVec = c.MakeVectorData(c.MakeNumericList(costs))
	return res, nil
}

type lossRes struct {
	In      anydiff.Res
	Logits  *Logits
	Labels  [][]int
	SeqLens []int

	// Alphas[b][t][s] is the forward log probability of
	// position s in the blank-infused label at time t.
	Alphas [][][]float64
	Totals []float64

	OutVec anyvec.Vector
}

func (l *lossRes) Output() anyvec.Vector {
	return l.OutVec
}

func (l *lossRes) Vars() anydiff.VarSet {
	return l.In.Vars()
}

func (l *lossRes) Propagate(u anyvec.Vector, g anydiff.Grad) {
	if !g.Intersects(l.In.Vars()) {
		return
	}
	upstream := u.Data().([]float64)
	data := l.In.Output().Data().([]float64)
	downstream := make([]float64, len(data))
	blank := l.Logits.Blank()
	numClasses := l.Logits.NumClasses
	for b, label := range l.Labels {
		total := l.Totals[b]
		if math.IsInf(total, -1) || upstream[b] == 0 {
			continue
		}
		frames := framesOf(data, l.Logits, b, l.SeqLens[b])
		betas := backward(frames, label, blank)
		alphas := l.Alphas[b]
		for t := range frames {
			start := (t*l.Logits.BatchSize + b) * numClasses
			for s := range alphas[t] {
				occupancy := math.Exp(alphas[t][s] + betas[t][s] - total)
				downstream[start+expandedLabel(label, s, blank)] -= upstream[b] * occupancy
			}
		}
	}
	c := u.Creator()
	l.In.Propagate(c.MakeVectorData(c.MakeNumericList(downstream)), g)
}

func framesOf(data []float64, logits *Logits, b, length int) [][]float64 {
	res := make([][]float64, length)
	for t := range res {
		start := (t*logits.BatchSize + b) * logits.NumClasses
		res[t] = data[start : start+logits.NumClasses]
	}
	return res
}

// expandedLabel returns the symbol at position s of the
// blank-infused label, where blanks are injected at the
// start and end of the label, and between entries.
func expandedLabel(label []int, s, blank int) int {
	if s%2 == 0 {
		return blank
	}
	return label[s/2]
}

// canSkip checks if position s may be reached directly
// from position s-2, skipping a blank.
func canSkip(label []int, s int) bool {
	if s%2 == 0 || s < 2 {
		return false
	}
	return label[s/2] != label[s/2-1]
}

// forward computes the forward log probabilities and the
// total log likelihood of the label.
func forward(frames [][]float64, label []int, blank int) ([][]float64, float64) {
	numPos := len(label)*2 + 1
	if len(frames) == 0 {
		if len(label) == 0 {
			return nil, 0
		}
		return nil, math.Inf(-1)
	}
	alphas := make([][]float64, len(frames))
	for t, frame := range frames {
		alphas[t] = make([]float64, numPos)
		for s := range alphas[t] {
			var prev float64
			if t == 0 {
				prev = math.Inf(-1)
				if s < 2 {
					prev = 0
				}
			} else {
				last := alphas[t-1]
				prev = last[s]
				if s > 0 {
					prev = addLogs(prev, last[s-1])
				}
				if canSkip(label, s) {
					prev = addLogs(prev, last[s-2])
				}
			}
			alphas[t][s] = prev + frame[expandedLabel(label, s, blank)]
		}
	}
	final := alphas[len(alphas)-1]
	total := final[numPos-1]
	if numPos > 1 {
		total = addLogs(total, final[numPos-2])
	}
	return alphas, total
}

// backward computes the log probability of finishing the
// label from every position at every time, not counting
// the frame at that time.
func backward(frames [][]float64, label []int, blank int) [][]float64 {
	numPos := len(label)*2 + 1
	betas := make([][]float64, len(frames))
	for t := len(frames) - 1; t >= 0; t-- {
		betas[t] = make([]float64, numPos)
		for s := range betas[t] {
			if t == len(frames)-1 {
				betas[t][s] = math.Inf(-1)
				if s >= numPos-2 {
					betas[t][s] = 0
				}
				continue
			}
			next := betas[t+1]
			nextFrame := frames[t+1]
			sum := next[s] + nextFrame[expandedLabel(label, s, blank)]
			if s+1 < numPos {
				sum = addLogs(sum, next[s+1]+nextFrame[expandedLabel(label, s+1, blank)])
			}
			if s+2 < numPos && canSkip(label, s+2) {
				sum = addLogs(sum, next[s+2]+nextFrame[expandedLabel(label, s+2, blank)])
			}
			betas[t][s] = sum
		}
	}
	return betas
}

// addLogs adds two numbers in the log domain.
func addLogs(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	} else if math.IsInf(b, -1) {
		return a
	}
	normalizer := math.Max(a, b)
	exp1 := math.Exp(a - normalizer)
	exp2 := math.Exp(b - normalizer)
	return math.Log(exp1+exp2) + normalizer
}
