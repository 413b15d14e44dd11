package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/lumenmap/candles/internal/domain/emotion"
	"github.com/lumenmap/candles/internal/domain/model"
	"github.com/lumenmap/candles/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func TestGenerateDrafts(t *testing.T) {
	Convey("Given a worldwide config", t, func() {
		cfg := &Config{NumCandles: 200, Worldwide: true, DaysBack: 7}
		resolver := emotion.NewResolver(emotion.Default())

		Convey("When generating drafts", func() {
			drafts := generateDrafts(cfg)

			Convey("Then every draft is a known leaf inside map bounds", func() {
				So(drafts, ShouldHaveLength, 200)
				for _, d := range drafts {
					So(resolver.Known(d.Emotion), ShouldBeTrue)
					So(d.Position.Validate(), ShouldBeNil)
					So(d.ViewerLocal.After(time.Now().Add(-8*24*time.Hour)), ShouldBeTrue)
					So(d.ViewerLocal.Before(time.Now().Add(time.Minute)), ShouldBeTrue)
				}
			})
		})
	})

	Convey("Given a centered config with a tight spread", t, func() {
		cfg := &Config{NumCandles: 100, CenterLat: 38.9, CenterLon: -77.0, Spread: 2.0, DaysBack: 1}

		Convey("Then positions stay within the spread box", func() {
			for _, d := range generateDrafts(cfg) {
				So(d.Position.Lat, ShouldBeBetweenOrEqual, 36.9, 40.9)
				So(d.Position.Lon, ShouldBeBetweenOrEqual, -79.0, -75.0)
			}
		})
	})

	Convey("Given a center near the pole", t, func() {
		cfg := &Config{NumCandles: 50, CenterLat: 85.0, CenterLon: 179.0, Spread: 10.0, DaysBack: 1}

		Convey("Then positions are clamped to map bounds", func() {
			for _, d := range generateDrafts(cfg) {
				So(d.Position.Validate(), ShouldBeNil)
			}
		})
	})
}

func TestRunAgainstStub(t *testing.T) {
	Convey("Given a stub server", t, func() {
		var created int64
		mux := http.NewServeMux()
		mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		mux.HandleFunc("POST /session", func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "t", "user_id": "u"})
		})
		mux.HandleFunc("POST /candles/", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Emotion string  `json:"emotion"`
				Lat     float64 `json:"lat"`
				Lon     float64 `json:"lon"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			n := atomic.AddInt64(&created, 1)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(model.Candle{
				ID:       fmt.Sprintf("c-%d", n),
				Emotion:  req.Emotion,
				Position: model.Position{Lat: req.Lat, Lon: req.Lon},
			})
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("When seeding 25 candles over 4 workers", func() {
			stats, err := Run(context.Background(), &Config{
				BaseURL:    srv.URL,
				NumCandles: 25,
				Workers:    4,
				Timeout:    5 * time.Second,
				Worldwide:  true,
				DaysBack:   7,
			})

			Convey("Then every candle is created", func() {
				So(err, ShouldBeNil)
				So(stats.Generated, ShouldEqual, 25)
				So(stats.Created, ShouldEqual, 25)
				So(stats.RateLimited, ShouldEqual, 0)
				So(stats.Failed, ShouldEqual, 0)
				So(atomic.LoadInt64(&created), ShouldEqual, 25)
			})
		})

		Convey("When the server is unreachable", func() {
			_, err := Run(context.Background(), &Config{
				BaseURL:    "http://127.0.0.1:1",
				NumCandles: 1,
				Workers:    1,
				Timeout:    time.Second,
			})
			So(err, ShouldNotBeNil)
		})
	})
}
