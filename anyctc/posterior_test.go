package anyctc

import (
	"math"
	"math/rand"
	"testing"
)

func TestPosteriors(t *testing.T) {
	logits := randomLogits(rand.New(rand.NewSource(1)), 4, 2, 5)
	probs := Posteriors(logits)
	rows, cols := probs.Dims()
	if rows != 8 || cols != 5 {
		t.Fatalf("expected 8x5 table but got %dx%d", rows, cols)
	}
	raw := logits.Res.Output().Data().([]float64)
	for i := 0; i < rows; i++ {
		var sum float64
		for j := 0; j < cols; j++ {
			sum += probs.At(i, j)
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("row %d sums to %f", i, sum)
		}
		ratio := probs.At(i, 0) / probs.At(i, 1)
		expected := math.Exp(raw[i*cols] - raw[i*cols+1])
		if math.Abs(ratio-expected) > 1e-9*expected {
			t.Errorf("row %d: expected ratio %f but got %f", i, expected, ratio)
		}
	}
}
