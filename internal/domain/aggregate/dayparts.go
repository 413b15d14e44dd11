package aggregate

import (
	"github.com/lumenmap/candles/internal/domain/emotion"
	"github.com/lumenmap/candles/internal/domain/model"
)

// Daypart names in display order.
const (
	LateNight = "Late-night"
	Morning   = "Morning"
	Afternoon = "Afternoon"
	Evening   = "Evening"
)

// DaypartOrder fixes the bucket order for rendering.
var DaypartOrder = []string{LateNight, Morning, Afternoon, Evening}

// DaypartOf buckets an hour of day. Boundaries are half-open: 5 is
// Morning, 12 is Afternoon, 17 is Evening.
func DaypartOf(hour int) string {
	switch {
	case hour < 5:
		return LateNight
	case hour < 12:
		return Morning
	case hour < 17:
		return Afternoon
	default:
		return Evening
	}
}

// ShareCount is a parent tally plus its share of the bucket total.
type ShareCount struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// DaypartBucket is one time-of-day bucket with per-parent tallies.
type DaypartBucket struct {
	Name    string       `json:"name"`
	Total   int          `json:"total"`
	Parents []ShareCount `json:"parents"`
}

// DaypartCounts buckets candles by time of day, preferring the
// creator-local instant over the server one. Candles with no usable
// timestamp are skipped. All four buckets are always present, in
// DaypartOrder, even when empty.
func DaypartCounts(candles []model.Candle, r *emotion.Resolver) []DaypartBucket {
	tally := make(map[string]map[string]int, len(DaypartOrder))
	for _, name := range DaypartOrder {
		tally[name] = make(map[string]int)
	}

	for _, c := range candles {
		ts := c.ObservedAt()
		if c.Emotion == "" || ts.IsZero() {
			continue
		}
		tally[DaypartOf(ts.Hour())][r.Parent(c.Emotion)]++
	}

	out := make([]DaypartBucket, 0, len(DaypartOrder))
	for _, name := range DaypartOrder {
		bucket := DaypartBucket{Name: name}
		counts := make([]Count, 0, len(tally[name]))
		for parent, n := range tally[name] {
			counts = append(counts, Count{Name: parent, Count: n})
			bucket.Total += n
		}
		sortCounts(counts)
		bucket.Parents = make([]ShareCount, len(counts))
		for i, c := range counts {
			share := 0.0
			if bucket.Total > 0 {
				share = float64(c.Count) / float64(bucket.Total)
			}
			bucket.Parents[i] = ShareCount{Name: c.Name, Count: c.Count, Share: share}
		}
		out = append(out, bucket)
	}
	return out
}
