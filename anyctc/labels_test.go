package anyctc

import (
	"reflect"
	"testing"
)

func TestLabelsDense(t *testing.T) {
	seqs := [][]int{{3, 1}, {}, {0, 2, 2}}
	labels := FromDense(seqs)
	if labels.Shape != [2]int{3, 3} {
		t.Errorf("unexpected shape: %v", labels.Shape)
	}
	actual, err := labels.Dense()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(actual, seqs) {
		t.Errorf("expected %v but got %v", seqs, actual)
	}

	shuffled := &Labels{
		Indices: [][2]int{{1, 1}, {0, 0}, {1, 0}},
		Values:  []int{7, 5, 6},
		Shape:   [2]int{2, 2},
	}
	actual, err = shuffled.Dense()
	if err != nil {
		t.Fatal(err)
	}
	if expected := [][]int{{5}, {6, 7}}; !reflect.DeepEqual(actual, expected) {
		t.Errorf("expected %v but got %v", expected, actual)
	}
}

func TestLabelsErrors(t *testing.T) {
	gap := &Labels{
		Indices: [][2]int{{0, 1}},
		Values:  []int{1},
		Shape:   [2]int{1, 2},
	}
	if _, err := gap.Dense(); err == nil {
		t.Error("expected error for missing position")
	}
	outOfBounds := &Labels{
		Indices: [][2]int{{1, 0}},
		Values:  []int{1},
		Shape:   [2]int{1, 1},
	}
	if _, err := outOfBounds.Dense(); err == nil {
		t.Error("expected error for out-of-bounds index")
	}
	if err := FromDense([][]int{{0, 4}}).Check(4); err == nil {
		t.Error("expected error for out-of-range value")
	}
}
