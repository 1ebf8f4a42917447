package dataset

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"testing"
)

func makeDataset(t *testing.T, n int) *Dataset {
	t.Helper()
	var b strings.Builder
	b.WriteString("id,score\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d,%d\n", i, i*3)
	}
	d, err := Read(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	return d
}

func TestSplitIndices_Counts(t *testing.T) {
	tests := []struct {
		n        int
		testSize float64
		wantTest int
	}{
		{n: 100, testSize: 0.2, wantTest: 20},
		{n: 1000, testSize: 0.2, wantTest: 200},
		{n: 11, testSize: 0.2, wantTest: 3},
		{n: 2, testSize: 0.2, wantTest: 1},
		{n: 10, testSize: 0.5, wantTest: 5},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			train, test, err := SplitIndices(tt.n, tt.testSize, DefaultRandomState)
			if err != nil {
				t.Fatalf("SplitIndices() error = %v", err)
			}
			if len(test) != tt.wantTest {
				t.Errorf("len(test) = %d, want %d", len(test), tt.wantTest)
			}
			if len(train)+len(test) != tt.n {
				t.Errorf("len(train)+len(test) = %d, want %d", len(train)+len(test), tt.n)
			}

			all := append(append([]int(nil), train...), test...)
			sort.Ints(all)
			for i, v := range all {
				if v != i {
					t.Fatalf("indices not a permutation of 0..%d: %v", tt.n-1, all)
				}
			}
		})
	}
}

func TestSplitIndices_Deterministic(t *testing.T) {
	train1, test1, err := SplitIndices(50, 0.2, 42)
	if err != nil {
		t.Fatalf("SplitIndices() error = %v", err)
	}
	train2, test2, err := SplitIndices(50, 0.2, 42)
	if err != nil {
		t.Fatalf("SplitIndices() error = %v", err)
	}
	if !reflect.DeepEqual(train1, train2) || !reflect.DeepEqual(test1, test2) {
		t.Error("same seed should produce identical splits")
	}

	_, test3, err := SplitIndices(50, 0.2, 7)
	if err != nil {
		t.Fatalf("SplitIndices() error = %v", err)
	}
	if reflect.DeepEqual(test1, test3) {
		t.Error("different seeds should produce different splits")
	}
}

func TestSplitIndices_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		testSize float64
	}{
		{name: "zero rows", n: 0, testSize: 0.2},
		{name: "single row", n: 1, testSize: 0.2},
		{name: "zero test size", n: 10, testSize: 0},
		{name: "full test size", n: 10, testSize: 1},
		{name: "negative test size", n: 10, testSize: -0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := SplitIndices(tt.n, tt.testSize, 42); err == nil {
				t.Error("SplitIndices() expected error")
			}
		})
	}
}

func TestTrainTestSplit_Disjoint(t *testing.T) {
	d := makeDataset(t, 100)

	train, test, err := TrainTestSplit(d, DefaultTestSize, DefaultRandomState)
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}
	if train.Nrow() != 80 || test.Nrow() != 20 {
		t.Errorf("rows = %d/%d, want 80/20", train.Nrow(), test.Nrow())
	}
	if !reflect.DeepEqual(train.Names(), d.Names()) || !reflect.DeepEqual(test.Names(), d.Names()) {
		t.Error("split subsets should keep the source header")
	}

	seen := make(map[string]bool)
	for _, row := range train.Records() {
		seen[strings.Join(row, ",")] = true
	}
	for _, row := range test.Records() {
		if seen[strings.Join(row, ",")] {
			t.Errorf("row %v appears in both subsets", row)
		}
	}
}

func TestTrainTestSplit_TooSmall(t *testing.T) {
	d := makeDataset(t, 1)
	if _, _, err := TrainTestSplit(d, DefaultTestSize, DefaultRandomState); err == nil {
		t.Error("TrainTestSplit() expected error for a single row")
	}
}
