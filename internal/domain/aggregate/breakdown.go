package aggregate

import (
	"sort"

	"github.com/lumenmap/candles/internal/domain/emotion"
	"github.com/lumenmap/candles/internal/domain/model"
)

// SyntheticMid collects candles whose emotion has no mid-level
// ancestor (mains and unknown names) so the middle ring still sums to
// the inner ring.
const SyntheticMid = "other"

// LeafSlice is one outer-ring segment.
type LeafSlice struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MidSlice is one middle-ring segment with its outer-ring children.
type MidSlice struct {
	Name   string      `json:"name"`
	Count  int         `json:"count"`
	Leaves []LeafSlice `json:"leaves"`
}

// ParentSlice is one inner-ring segment with its nested rings.
type ParentSlice struct {
	Name  string     `json:"name"`
	Color string     `json:"color"`
	Count int        `json:"count"`
	Mids  []MidSlice `json:"mids"`
}

// Breakdown builds the three-ring donut view. Each candle contributes
// exactly one unit per ring: its main emotion, its mid ancestor (or
// SyntheticMid), and its stored name. So the sum of each parent's mids
// equals the parent count, and the sum of each mid's leaves equals the
// mid count.
//
// Parents are ordered count-descending (ties by name); mids and leaves
// likewise within their parent. Outer rings iterate parents in the
// inner ring's order, so ring segments line up when rendered.
func Breakdown(candles []model.Candle, r *emotion.Resolver) []ParentSlice {
	parents := make(map[string]int)
	mids := make(map[string]map[string]int)
	leaves := make(map[string]map[string]map[string]int)

	for _, c := range candles {
		if c.Emotion == "" {
			continue
		}
		parent := r.Parent(c.Emotion)
		mid := r.Mid(c.Emotion)
		if mid == "" {
			mid = SyntheticMid
		}

		parents[parent]++
		if mids[parent] == nil {
			mids[parent] = make(map[string]int)
			leaves[parent] = make(map[string]map[string]int)
		}
		mids[parent][mid]++
		if leaves[parent][mid] == nil {
			leaves[parent][mid] = make(map[string]int)
		}
		leaves[parent][mid][c.Emotion]++
	}

	out := make([]ParentSlice, 0, len(parents))
	for parent, total := range parents {
		ps := ParentSlice{
			Name:  parent,
			Color: r.Color(parent),
			Count: total,
			Mids:  make([]MidSlice, 0, len(mids[parent])),
		}
		for mid, midTotal := range mids[parent] {
			ms := MidSlice{
				Name:   mid,
				Count:  midTotal,
				Leaves: make([]LeafSlice, 0, len(leaves[parent][mid])),
			}
			for leaf, n := range leaves[parent][mid] {
				ms.Leaves = append(ms.Leaves, LeafSlice{Name: leaf, Count: n})
			}
			sort.Slice(ms.Leaves, func(i, j int) bool {
				if ms.Leaves[i].Count != ms.Leaves[j].Count {
					return ms.Leaves[i].Count > ms.Leaves[j].Count
				}
				return ms.Leaves[i].Name < ms.Leaves[j].Name
			})
			ps.Mids = append(ps.Mids, ms)
		}
		sort.Slice(ps.Mids, func(i, j int) bool {
			if ps.Mids[i].Count != ps.Mids[j].Count {
				return ps.Mids[i].Count > ps.Mids[j].Count
			}
			return ps.Mids[i].Name < ps.Mids[j].Name
		})
		out = append(out, ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
