package anyctc

import (
	"fmt"
	"sort"
)

// Labels is a sparse batch of label sequences.
//
// Each entry of Indices is a (batch, position) pair, and
// the corresponding entry of Values is the label at that
// position.
// Shape is (batch size, maximum label length).
//
// Ground truth and decoder output both use Labels.
type Labels struct {
	Indices [][2]int
	Values  []int
	Shape   [2]int
}

// FromDense creates sparse Labels from one label sequence
// per utterance.
func FromDense(seqs [][]int) *Labels {
	res := &Labels{Shape: [2]int{len(seqs), 0}}
	for b, seq := range seqs {
		if len(seq) > res.Shape[1] {
			res.Shape[1] = len(seq)
		}
		for i, x := range seq {
			res.Indices = append(res.Indices, [2]int{b, i})
			res.Values = append(res.Values, x)
		}
	}
	return res
}

// BatchSize returns the number of utterances.
func (l *Labels) BatchSize() int {
	return l.Shape[0]
}

// Dense converts the labels into one sequence per
// utterance.
//
// Every utterance must have entries for a contiguous
// range of positions starting at 0, though the entries
// themselves may appear in any order.
func (l *Labels) Dense() ([][]int, error) {
	if len(l.Indices) != len(l.Values) {
		return nil, fmt.Errorf("labels: %d indices but %d values", len(l.Indices),
			len(l.Values))
	}
	type entry struct {
		pos   int
		value int
	}
	entries := make([][]entry, l.Shape[0])
	for i, idx := range l.Indices {
		b, pos := idx[0], idx[1]
		if b < 0 || b >= l.Shape[0] || pos < 0 || pos >= l.Shape[1] {
			return nil, fmt.Errorf("labels: index %v out of bounds for shape %v", idx, l.Shape)
		}
		entries[b] = append(entries[b], entry{pos: pos, value: l.Values[i]})
	}
	res := make([][]int, l.Shape[0])
	for b, list := range entries {
		sort.Slice(list, func(i, j int) bool {
			return list[i].pos < list[j].pos
		})
		res[b] = make([]int, len(list))
		for i, e := range list {
			if e.pos != i {
				return nil, fmt.Errorf("labels: utterance %d has no label at position %d", b, i)
			}
			res[b][i] = e.value
		}
	}
	return res, nil
}

// Check makes sure that every label value is in the range
// [0, numLabels).
func (l *Labels) Check(numLabels int) error {
	for i, x := range l.Values {
		if x < 0 || x >= numLabels {
			return fmt.Errorf("labels: value %d at index %v out of range [0, %d)", x,
				l.Indices[i], numLabels)
		}
	}
	return nil
}
