package stats

import (
	"cmp"
	"slices"

	"github.com/verte-zerg/keysprint/internal/model"
)

// charAccuracy treats a character never typed as fully accurate.
func charAccuracy(agg model.CharAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1
	}
	return float64(agg.Correct) / float64(total)
}

func charLatency(agg model.CharAggregate) float64 {
	if agg.LatencyCount == 0 {
		return 0
	}
	return float64(agg.LatencySumMs) / float64(agg.LatencyCount)
}

// byAccuracy orders the least accurate characters first.
func byAccuracy(a, b model.CharAggregate) int {
	if c := cmp.Compare(charAccuracy(a), charAccuracy(b)); c != 0 {
		return c
	}
	return cmp.Compare(a.Char, b.Char)
}

// TopCharsByFrequency returns the n most typed characters.
func TopCharsByFrequency(aggs []model.CharAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	sorted := slices.Clone(aggs)
	slices.SortFunc(sorted, func(a, b model.CharAggregate) int {
		if c := cmp.Compare(b.Correct+b.Incorrect, a.Correct+a.Incorrect); c != 0 {
			return c
		}
		return cmp.Compare(a.Char, b.Char)
	})
	out := make([]string, 0, min(n, len(sorted)))
	for _, agg := range sorted[:min(n, len(sorted))] {
		out = append(out, agg.Char)
	}
	return out
}

// SelectWeakChars returns the top least accurate characters. top <= 0
// selects all of them.
func SelectWeakChars(aggs []model.CharAggregate, top int) map[rune]struct{} {
	weak := map[rune]struct{}{}
	sorted := slices.Clone(aggs)
	slices.SortFunc(sorted, byAccuracy)
	if top <= 0 || top > len(sorted) {
		top = len(sorted)
	}
	for _, agg := range sorted[:top] {
		for _, r := range agg.Char {
			weak[r] = struct{}{}
			break
		}
	}
	return weak
}
