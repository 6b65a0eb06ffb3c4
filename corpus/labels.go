// Package corpus describes the label spaces of the
// supported corpora and stores utterances for training
// and evaluation.
package corpus

import (
	"sort"

	"github.com/unixpickle/ctcnet"
)

// MultiTaskMainSize is the size of the main label space
// of multi-task TIMIT models.
const MultiTaskMainSize = 30

var labelSizes = map[string]int{
	// CSJ
	"phone":     37,
	"character": 146,
	"kanji":     3385,

	// TIMIT
	"phone61": 61,
	"phone48": 48,
	"phone39": 39,
}

// LabelTypes returns the known label types, sorted.
func LabelTypes() []string {
	var res []string
	for name := range labelSizes {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

// OutputSize returns the number of labels, not counting
// the blank, for a label type.
func OutputSize(labelType string) (int, error) {
	size, ok := labelSizes[labelType]
	if !ok {
		return 0, &ctcnet.ConfigError{Key: "label type", Value: labelType, Valid: LabelTypes()}
	}
	return size, nil
}

// IsCharacter checks if a label type is scored with a
// character error rate rather than a phone error rate.
func IsCharacter(labelType string) bool {
	return labelType == "character" || labelType == "kanji"
}

// ErrorRateName returns "CER" or "PER" for a label type.
func ErrorRateName(labelType string) string {
	if IsCharacter(labelType) {
		return "CER"
	}
	return "PER"
}

// DropLabels creates a normalizer that removes the given
// labels from a sequence, e.g. word boundaries before a
// character error rate is computed.
func DropLabels(labels ...int) func([]int) []int {
	drop := map[int]bool{}
	for _, l := range labels {
		drop[l] = true
	}
	return func(seq []int) []int {
		res := make([]int, 0, len(seq))
		for _, x := range seq {
			if !drop[x] {
				res = append(res, x)
			}
		}
		return res
	}
}
