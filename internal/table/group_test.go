package table

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
)

var nan = math.NaN()

func TestGroupMean(t *testing.T) {
	keys := []string{"b", "a", "b", "", "c", "a"}
	values := []float64{1, 2, 3, 100, nan, nan}

	got := GroupMean(keys, values)
	want := []Group{
		{Key: "b", Value: 2},
		{Key: "a", Value: 2},
		{Key: "c", Value: nan},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("GroupMean() mismatch (-want +got):\n%s", diff)
	}
}

func TestSortDescending(t *testing.T) {
	groups := []Group{
		{Key: "low", Value: 0.01},
		{Key: "tie-first", Value: 0.05},
		{Key: "gone", Value: nan},
		{Key: "high", Value: 0.09},
		{Key: "tie-second", Value: 0.05},
	}

	got := SortDescending(groups)
	want := []Group{
		{Key: "high", Value: 0.09},
		{Key: "tie-first", Value: 0.05},
		{Key: "tie-second", Value: 0.05},
		{Key: "low", Value: 0.01},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SortDescending() mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, groups, 5, "input must not be modified")
}

func TestHead(t *testing.T) {
	groups := []Group{{Key: "a"}, {Key: "b"}, {Key: "c"}}
	assert.Len(t, Head(groups, 2), 2)
	assert.Len(t, Head(groups, 10), 3)
	assert.Empty(t, Head(groups, 0))
	assert.Empty(t, Head(groups, -1))
}

func TestUniqueSorted(t *testing.T) {
	got := UniqueSorted([]string{"Victoria", "", "Vancouver", "Victoria", "NaN"})
	assert.Equal(t, []string{"Vancouver", "Victoria"}, got)
	assert.Empty(t, UniqueSorted(nil))
}

func TestPivot(t *testing.T) {
	rowKeys := []string{"Vancouver", "Vancouver", "Vancouver", "Victoria", "Victoria", "Kelowna"}
	colKeys := []string{"Pre", "Post", "Pre", "Post", "During", "Pre"}
	values := []float64{100, 150, 200, 90, 5, nan}

	got := Pivot(rowKeys, colKeys, values, []string{"Kelowna", "Vancouver", "Victoria"}, []string{"Pre", "Post"})
	want := [][]float64{
		{nan, nan},
		{150, 150},
		{nan, 90},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("Pivot() mismatch (-want +got):\n%s", diff)
	}
}
