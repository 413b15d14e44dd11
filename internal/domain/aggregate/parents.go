// Package aggregate computes the chart-facing views over a candle
// collection: parent counts, the three-level breakdown, daypart
// buckets, and the weekday matrix.
//
// Every function here is pure and single-pass. Malformed records are
// skipped, never surfaced as errors; a chart with one bad row missing
// beats no chart.
package aggregate

import (
	"sort"

	"github.com/lumenmap/candles/internal/domain/emotion"
	"github.com/lumenmap/candles/internal/domain/model"
)

// Count is a named tally.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// sortCounts orders count-descending, ties broken by name ascending so
// equal-count entries render in a stable order.
func sortCounts(counts []Count) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Name < counts[j].Name
	})
}

// ParentCounts tallies candles by main emotion, most frequent first.
// Emotions outside the taxonomy count under their own name.
func ParentCounts(candles []model.Candle, r *emotion.Resolver) []Count {
	tally := make(map[string]int)
	for _, c := range candles {
		if c.Emotion == "" {
			continue
		}
		tally[r.Parent(c.Emotion)]++
	}

	out := make([]Count, 0, len(tally))
	for name, n := range tally {
		out = append(out, Count{Name: name, Count: n})
	}
	sortCounts(out)
	return out
}
