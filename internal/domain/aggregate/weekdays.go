package aggregate

import (
	"sort"

	"github.com/lumenmap/candles/internal/domain/emotion"
	"github.com/lumenmap/candles/internal/domain/model"
)

// WeekdayNames in matrix column order, Monday first.
var WeekdayNames = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// WeekdayIndex maps a time's weekday to a Monday=0..Sunday=6 column.
func WeekdayIndex(wd int) int {
	return (wd + 6) % 7
}

// WeekdayRow is one heatmap row: a parent emotion's tally per weekday.
type WeekdayRow struct {
	Parent string `json:"parent"`
	Cells  [7]int `json:"cells"`
}

// WeekdayMatrix is the weekday-by-emotion heatmap.
type WeekdayMatrix struct {
	Rows []WeekdayRow `json:"rows"`

	// DayTotals sums each column.
	DayTotals [7]int `json:"day_totals"`

	// Max is the largest single cell, for color-scale normalization.
	Max int `json:"max"`
}

// Weekdays builds the heatmap using the same timestamp preference as
// DaypartCounts. Rows are ordered by row total descending, ties by
// parent name. Candles with no usable timestamp are skipped.
func Weekdays(candles []model.Candle, r *emotion.Resolver) WeekdayMatrix {
	cells := make(map[string]*WeekdayRow)
	var m WeekdayMatrix

	for _, c := range candles {
		ts := c.ObservedAt()
		if c.Emotion == "" || ts.IsZero() {
			continue
		}
		parent := r.Parent(c.Emotion)
		row, ok := cells[parent]
		if !ok {
			row = &WeekdayRow{Parent: parent}
			cells[parent] = row
		}
		day := WeekdayIndex(int(ts.Weekday()))
		row.Cells[day]++
		m.DayTotals[day]++
		if row.Cells[day] > m.Max {
			m.Max = row.Cells[day]
		}
	}

	m.Rows = make([]WeekdayRow, 0, len(cells))
	for _, row := range cells {
		m.Rows = append(m.Rows, *row)
	}
	sort.Slice(m.Rows, func(i, j int) bool {
		ti, tj := 0, 0
		for d := 0; d < 7; d++ {
			ti += m.Rows[i].Cells[d]
			tj += m.Rows[j].Cells[d]
		}
		if ti != tj {
			return ti > tj
		}
		return m.Rows[i].Parent < m.Rows[j].Parent
	})
	return m
}
