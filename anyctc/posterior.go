package anyctc

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Posteriors computes the class distribution of every
// frame, including padded ones.
//
// Row t*BatchSize+b of the result is the softmax of the
// scores of utterance b at time t.
func Posteriors(logits *Logits) *mat.Dense {
	rows := logits.MaxTime * logits.BatchSize
	data := append([]float64{}, logits.Res.Output().Data().([]float64)...)
	for i := 0; i < rows; i++ {
		row := data[i*logits.NumClasses : (i+1)*logits.NumClasses]
		norm := floats.LogSumExp(row)
		for j, x := range row {
			row[j] = math.Exp(x - norm)
		}
	}
	if rows == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(rows, logits.NumClasses, data)
}
