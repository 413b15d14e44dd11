package aggregate

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/lumenmap/candles/internal/domain/emotion"
	"github.com/lumenmap/candles/internal/domain/model"
)

func resolver() *emotion.Resolver {
	return emotion.NewResolver(emotion.Default())
}

func candleAt(name string, ts time.Time) model.Candle {
	return model.Candle{Emotion: name, CreatedAt: ts}
}

func TestParentCounts(t *testing.T) {
	Convey("Given a mixed candle collection", t, func() {
		r := resolver()
		ts := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
		candles := []model.Candle{
			candleAt("lonely", ts),    // sad
			candleAt("grief", ts),     // sad
			candleAt("sad", ts),       // sad (main-level name)
			candleAt("amused", ts),    // happy
			candleAt("happy", ts),     // happy
			candleAt("uncharted", ts), // outside the taxonomy
		}

		Convey("When counting parents", func() {
			counts := ParentCounts(candles, r)

			Convey("Then every record lands under its main emotion", func() {
				So(counts[0], ShouldResemble, Count{Name: "sad", Count: 3})
				So(counts[1], ShouldResemble, Count{Name: "happy", Count: 2})
			})

			Convey("And unknown names count under themselves", func() {
				So(counts, ShouldContain, Count{Name: "uncharted", Count: 1})
			})

			Convey("And the counts sum to the valid records", func() {
				sum := 0
				for _, c := range counts {
					sum += c.Count
				}
				So(sum, ShouldEqual, len(candles))
			})
		})

		Convey("When counts tie", func() {
			counts := ParentCounts([]model.Candle{
				candleAt("happy", ts),
				candleAt("sad", ts),
				candleAt("angry", ts),
			}, r)

			Convey("Then ties break lexically", func() {
				So(counts, ShouldResemble, []Count{
					{Name: "angry", Count: 1},
					{Name: "happy", Count: 1},
					{Name: "sad", Count: 1},
				})
			})
		})

		Convey("When records are malformed", func() {
			counts := ParentCounts([]model.Candle{
				candleAt("", ts),
				candleAt("lonely", ts),
			}, r)

			Convey("Then empty emotions are skipped, not counted", func() {
				So(counts, ShouldResemble, []Count{{Name: "sad", Count: 1}})
			})
		})

		Convey("When the collection is empty", func() {
			So(ParentCounts(nil, r), ShouldBeEmpty)
		})
	})
}

func TestBreakdown(t *testing.T) {
	Convey("Given a collection spanning all three levels", t, func() {
		r := resolver()
		ts := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
		candles := []model.Candle{
			candleAt("lonely", ts),
			candleAt("lonely", ts),
			candleAt("grief", ts),
			candleAt("depressed", ts),
			candleAt("sad", ts),     // main-level: synthetic mid
			candleAt("unknown", ts), // identity parent + synthetic mid
			candleAt("amused", ts),
		}

		Convey("When building the breakdown", func() {
			bd := Breakdown(candles, r)

			Convey("Then parents are ordered count-descending", func() {
				So(bd[0].Name, ShouldEqual, "sad")
				So(bd[0].Count, ShouldEqual, 5)
				for i := 1; i < len(bd); i++ {
					So(bd[i].Count, ShouldBeLessThanOrEqualTo, bd[i-1].Count)
				}
			})

			Convey("Then each parent's mids sum to its count", func() {
				for _, p := range bd {
					sum := 0
					for _, m := range p.Mids {
						sum += m.Count
					}
					So(sum, ShouldEqual, p.Count)
				}
			})

			Convey("Then each mid's leaves sum to its count", func() {
				for _, p := range bd {
					for _, m := range p.Mids {
						sum := 0
						for _, l := range m.Leaves {
							sum += l.Count
						}
						So(sum, ShouldEqual, m.Count)
					}
				}
			})

			Convey("Then a main-level candle lands under the synthetic mid", func() {
				var sad ParentSlice
				for _, p := range bd {
					if p.Name == "sad" {
						sad = p
					}
				}
				var other *MidSlice
				for i := range sad.Mids {
					if sad.Mids[i].Name == SyntheticMid {
						other = &sad.Mids[i]
					}
				}
				So(other, ShouldNotBeNil)
				So(other.Count, ShouldEqual, 1)
				So(other.Leaves, ShouldResemble, []LeafSlice{{Name: "sad", Count: 1}})
			})

			Convey("Then unknown emotions form their own parent with a synthetic mid", func() {
				var unk *ParentSlice
				for i := range bd {
					if bd[i].Name == "unknown" {
						unk = &bd[i]
					}
				}
				So(unk, ShouldNotBeNil)
				So(unk.Mids, ShouldHaveLength, 1)
				So(unk.Mids[0].Name, ShouldEqual, SyntheticMid)
			})

			Convey("Then every parent carries its palette color", func() {
				for _, p := range bd {
					So(p.Color, ShouldNotBeEmpty)
				}
			})
		})
	})
}

func TestDayparts(t *testing.T) {
	Convey("Given the daypart boundaries", t, func() {
		Convey("Then buckets are half-open at 5, 12, and 17", func() {
			So(DaypartOf(0), ShouldEqual, LateNight)
			So(DaypartOf(4), ShouldEqual, LateNight)
			So(DaypartOf(5), ShouldEqual, Morning)
			So(DaypartOf(11), ShouldEqual, Morning)
			So(DaypartOf(12), ShouldEqual, Afternoon)
			So(DaypartOf(16), ShouldEqual, Afternoon)
			So(DaypartOf(17), ShouldEqual, Evening)
			So(DaypartOf(23), ShouldEqual, Evening)
		})
	})

	Convey("Given candles across the day", t, func() {
		r := resolver()
		day := func(hour int) time.Time {
			return time.Date(2025, 6, 2, hour, 30, 0, 0, time.UTC)
		}
		candles := []model.Candle{
			candleAt("lonely", day(2)),
			candleAt("amused", day(8)),
			candleAt("amused", day(9)),
			candleAt("grief", day(13)),
			candleAt("lonely", day(21)),
		}

		Convey("When bucketing", func() {
			buckets := DaypartCounts(candles, r)

			Convey("Then all four buckets appear in order, empty or not", func() {
				names := make([]string, len(buckets))
				for i, b := range buckets {
					names[i] = b.Name
				}
				So(names, ShouldResemble, DaypartOrder)
			})

			Convey("Then counts land in the right bucket", func() {
				So(buckets[0].Total, ShouldEqual, 1) // late-night
				So(buckets[1].Total, ShouldEqual, 2) // morning
				So(buckets[1].Parents[0], ShouldResemble, ShareCount{Name: "happy", Count: 2, Share: 1.0})
				So(buckets[2].Total, ShouldEqual, 1) // afternoon
				So(buckets[3].Total, ShouldEqual, 1) // evening
			})

			Convey("Then shares within a bucket sum to one", func() {
				for _, b := range buckets {
					if b.Total == 0 {
						continue
					}
					sum := 0.0
					for _, p := range b.Parents {
						sum += p.Share
					}
					So(sum, ShouldAlmostEqual, 1.0)
				}
			})
		})

		Convey("When a candle carries a viewer-local instant", func() {
			c := model.Candle{
				Emotion:     "lonely",
				CreatedAt:   day(3),  // late-night on the server clock
				ViewerLocal: day(20), // evening for the creator
			}
			buckets := DaypartCounts([]model.Candle{c}, r)

			Convey("Then the creator-local hour wins", func() {
				So(buckets[0].Total, ShouldEqual, 0)
				So(buckets[3].Total, ShouldEqual, 1)
			})
		})

		Convey("When a candle has no usable timestamp", func() {
			buckets := DaypartCounts([]model.Candle{{Emotion: "lonely"}}, r)

			Convey("Then it is skipped", func() {
				for _, b := range buckets {
					So(b.Total, ShouldEqual, 0)
				}
			})
		})
	})
}

func TestWeekdays(t *testing.T) {
	Convey("Given the weekday index", t, func() {
		Convey("Then Monday maps to column 0 and Sunday to 6", func() {
			So(WeekdayIndex(int(time.Monday)), ShouldEqual, 0)
			So(WeekdayIndex(int(time.Wednesday)), ShouldEqual, 2)
			So(WeekdayIndex(int(time.Sunday)), ShouldEqual, 6)
		})
	})

	Convey("Given candles across a week", t, func() {
		r := resolver()
		monday := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC) // a Monday
		candles := []model.Candle{
			candleAt("lonely", monday),
			candleAt("grief", monday),
			candleAt("amused", monday.AddDate(0, 0, 5)), // Saturday
			candleAt("lonely", monday.AddDate(0, 0, 6)), // Sunday
			{Emotion: "lonely"},                         // no timestamp: skipped
		}

		Convey("When building the matrix", func() {
			m := Weekdays(candles, r)

			Convey("Then cells land in Monday-first columns", func() {
				So(m.Rows[0].Parent, ShouldEqual, "sad")
				So(m.Rows[0].Cells[0], ShouldEqual, 2) // Monday
				So(m.Rows[0].Cells[6], ShouldEqual, 1) // Sunday
			})

			Convey("Then day totals sum the columns", func() {
				So(m.DayTotals[0], ShouldEqual, 2)
				So(m.DayTotals[5], ShouldEqual, 1)
				So(m.DayTotals[6], ShouldEqual, 1)
			})

			Convey("Then the max cell tracks the densest cell", func() {
				So(m.Max, ShouldEqual, 2)
			})

			Convey("Then untimestamped records are skipped", func() {
				total := 0
				for _, t := range m.DayTotals {
					total += t
				}
				So(total, ShouldEqual, 4)
			})
		})
	})
}
