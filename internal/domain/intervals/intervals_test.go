package intervals

import (
	"math/rand"
	"reflect"
	"testing"

	"touchdown/internal/types"
)

func TestMerge_Empty(t *testing.T) {
	t.Parallel()
	if got := Merge(nil); len(got) != 0 {
		t.Fatalf("expected empty output, got %v", got)
	}
}

func TestMerge_OverlapPair(t *testing.T) {
	t.Parallel()
	in := []types.Highlight{
		{StartTime: 0, EndTime: 10, Description: "kickoff", ImportanceScore: 6, Category: "kickoff"},
		{StartTime: 5, EndTime: 15, Description: "long run", ImportanceScore: 8.5},
	}
	got := Merge(in)
	if len(got) != 1 {
		t.Fatalf("expected 1 merged interval, got %d", len(got))
	}
	m := got[0]
	if m.StartTime != 0 || m.EndTime != 15 {
		t.Fatalf("wrong bounds: [%v, %v]", m.StartTime, m.EndTime)
	}
	if m.Description != "kickoff | long run" {
		t.Fatalf("wrong description: %q", m.Description)
	}
	if m.ImportanceScore != 8.5 {
		t.Fatalf("wrong importance: %v", m.ImportanceScore)
	}
	if m.Category != "kickoff" {
		t.Fatalf("wrong category: %q", m.Category)
	}
}

func TestMerge_DisjointUnchanged(t *testing.T) {
	t.Parallel()
	in := []types.Highlight{
		{StartTime: 0, EndTime: 5, Description: "a"},
		{StartTime: 10, EndTime: 15, Description: "b"},
		{StartTime: 20, EndTime: 25, Description: "c"},
	}
	got := Merge(in)
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("disjoint intervals changed: %v", got)
	}
}

func TestMerge_TouchingBoundaryNotMerged(t *testing.T) {
	t.Parallel()
	in := []types.Highlight{
		{StartTime: 0, EndTime: 5, Description: "a"},
		{StartTime: 5, EndTime: 10, Description: "b"},
	}
	if got := Merge(in); len(got) != 2 {
		t.Fatalf("touching intervals merged: %v", got)
	}
}

func TestMerge_ChainThroughMergedValue(t *testing.T) {
	t.Parallel()
	// The third interval only overlaps the result of merging the first two.
	in := []types.Highlight{
		{StartTime: 0, EndTime: 4, Description: "a"},
		{StartTime: 3, EndTime: 9, Description: "b"},
		{StartTime: 8, EndTime: 12, Description: "c"},
	}
	got := Merge(in)
	if len(got) != 1 {
		t.Fatalf("expected a single chained merge, got %v", got)
	}
	if got[0].StartTime != 0 || got[0].EndTime != 12 {
		t.Fatalf("wrong bounds: [%v, %v]", got[0].StartTime, got[0].EndTime)
	}
	if got[0].Description != "a | b | c" {
		t.Fatalf("wrong description: %q", got[0].Description)
	}
}

func TestMerge_ContainedInterval(t *testing.T) {
	t.Parallel()
	in := []types.Highlight{
		{StartTime: 0, EndTime: 20, Description: "drive"},
		{StartTime: 5, EndTime: 10, Description: "catch"},
	}
	got := Merge(in)
	if len(got) != 1 || got[0].EndTime != 20 {
		t.Fatalf("contained interval not absorbed: %v", got)
	}
}

func TestMerge_EqualStartTieBreak(t *testing.T) {
	t.Parallel()
	in := []types.Highlight{
		{StartTime: 10, EndTime: 12, Description: "short"},
		{StartTime: 10, EndTime: 30, Description: "long"},
	}
	got := Merge(in)
	if len(got) != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
	// Longest interval at the start anchors the merge.
	if got[0].Description != "long | short" {
		t.Fatalf("tie-break order wrong: %q", got[0].Description)
	}
	if got[0].EndTime != 30 {
		t.Fatalf("wrong end: %v", got[0].EndTime)
	}
}

func TestMerge_UnsortedInput(t *testing.T) {
	t.Parallel()
	in := []types.Highlight{
		{StartTime: 20, EndTime: 25, Description: "late"},
		{StartTime: 0, EndTime: 5, Description: "early"},
		{StartTime: 3, EndTime: 8, Description: "mid"},
	}
	got := Merge(in)
	if len(got) != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
	if got[0].Description != "early | mid" || got[1].Description != "late" {
		t.Fatalf("wrong order: %v", got)
	}
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	t.Parallel()
	in := []types.Highlight{
		{StartTime: 5, EndTime: 15, Description: "b"},
		{StartTime: 0, EndTime: 10, Description: "a"},
	}
	snapshot := make([]types.Highlight, len(in))
	copy(snapshot, in)
	Merge(in)
	if !reflect.DeepEqual(in, snapshot) {
		t.Fatalf("input mutated: %v", in)
	}
}

func TestMerge_SortedAndDisjoint(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 100; iter++ {
		n := rng.Intn(30)
		in := make([]types.Highlight, 0, n)
		for i := 0; i < n; i++ {
			start := rng.Float64() * 100
			in = append(in, types.Highlight{
				StartTime:   start,
				EndTime:     start + rng.Float64()*20 + 0.1,
				Description: "x",
			})
		}
		out := Merge(in)
		for i := 1; i < len(out); i++ {
			if out[i-1].EndTime > out[i].StartTime {
				t.Fatalf("overlap in output: %v then %v", out[i-1], out[i])
			}
		}
		// Idempotent: merging the output again changes nothing.
		again := Merge(out)
		if !reflect.DeepEqual(out, again) {
			t.Fatalf("merge not idempotent:\n first: %v\nsecond: %v", out, again)
		}
	}
}

func TestTotalDuration(t *testing.T) {
	t.Parallel()
	in := []types.Highlight{
		{StartTime: 0, EndTime: 8},
		{StartTime: 20, EndTime: 25},
	}
	if got := TotalDuration(in); got != 13 {
		t.Fatalf("expected 13, got %v", got)
	}
}
