// Package intervals resolves overlapping highlight time ranges into a
// disjoint, time-ordered set ready for clip extraction.
package intervals

import (
	"sort"

	"touchdown/internal/types"
)

// Merge returns a time-ordered, pairwise non-overlapping copy of the given
// highlights. Inputs may arrive in any order with arbitrary overlaps; the
// inputs themselves are never mutated.
//
// Candidates are sorted by start time ascending; equal starts are broken by
// end time descending so the longest interval at a given start anchors the
// merge. A single left-to-right sweep then folds each candidate that starts
// before the previously placed interval's end into that interval: the merged
// value keeps the earlier start, takes the later end, joins the descriptions
// with " | " in placement order, keeps the maximum importance score, and the
// first present category. Touching at a boundary (start == previous end) is
// not an overlap.
func Merge(highlights []types.Highlight) []types.Highlight {
	if len(highlights) == 0 {
		return nil
	}

	sorted := make([]types.Highlight, len(highlights))
	copy(sorted, highlights)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].StartTime != sorted[j].StartTime {
			return sorted[i].StartTime < sorted[j].StartTime
		}
		return sorted[i].EndTime > sorted[j].EndTime
	})

	out := make([]types.Highlight, 0, len(sorted))
	for _, h := range sorted {
		if len(out) == 0 {
			out = append(out, h)
			continue
		}

		last := out[len(out)-1]
		if h.StartTime >= last.EndTime {
			out = append(out, h)
			continue
		}

		// Overlap: fold the candidate into the last placed interval. Later
		// candidates may in turn merge into this merged value, which is why
		// the sweep never re-scans.
		merged := types.Highlight{
			StartTime:       last.StartTime,
			EndTime:         maxFloat(last.EndTime, h.EndTime),
			Description:     joinDescriptions(last.Description, h.Description),
			ImportanceScore: maxFloat(last.ImportanceScore, h.ImportanceScore),
			Category:        last.Category,
		}
		if merged.Category == "" {
			merged.Category = h.Category
		}
		out[len(out)-1] = merged
	}
	return out
}

// TotalDuration sums the lengths of the given highlights in seconds.
func TotalDuration(highlights []types.Highlight) float64 {
	var total float64
	for _, h := range highlights {
		total += h.EndTime - h.StartTime
	}
	return total
}

func joinDescriptions(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + " | " + b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
