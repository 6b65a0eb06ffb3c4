package anyctc

import (
	"fmt"
	"math"

	"github.com/unixpickle/essentials"
)

// EditDistance computes the Levenshtein distance between
// two label sequences.
func EditDistance(a, b []int) int {
	if len(a) == 0 {
		return len(b)
	} else if len(b) == 0 {
		return len(a)
	}

	// Only the previous row of the table is needed.
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			sub := prev[j-1]
			if a[i-1] != b[j-1] {
				sub++
			}
			cur[j] = minInt(sub, minInt(prev[j]+1, cur[j-1]+1))
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// UtteranceLER computes the edit distance between a
// hypothesis and a reference, normalized by the reference
// length.
//
// For an empty reference, the result is 0 if the
// hypothesis is empty and +Inf otherwise.
func UtteranceLER(hyp, ref []int) float64 {
	if len(ref) == 0 {
		if len(hyp) == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return float64(EditDistance(hyp, ref)) / float64(len(ref))
}

// LER computes the label error rate of a batch: the mean
// of UtteranceLER over every utterance.
//
// This is a label-level metric; it is only a character
// error rate when labels correspond one-to-one with
// characters.
func LER(decoded, reference *Labels) (float64, error) {
	hyps, err := decoded.Dense()
	if err != nil {
		return 0, essentials.AddCtx("label error rate", err)
	}
	refs, err := reference.Dense()
	if err != nil {
		return 0, essentials.AddCtx("label error rate", err)
	}
	return DenseLER(hyps, refs)
}

// DenseLER is like LER, but for dense label sequences.
func DenseLER(hyps, refs [][]int) (float64, error) {
	if len(hyps) != len(refs) {
		return 0, fmt.Errorf("label error rate: %d hypotheses for %d references",
			len(hyps), len(refs))
	}
	if len(refs) == 0 {
		return 0, fmt.Errorf("label error rate: empty batch")
	}
	var sum float64
	for i, ref := range refs {
		sum += UtteranceLER(hyps[i], ref)
	}
	return sum / float64(len(refs)), nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
