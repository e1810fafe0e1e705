package loadtest_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/unisignals/internal/adapters/http/api"
	service "github.com/okian/unisignals/internal/app"
	"github.com/okian/unisignals/internal/loadtest"
	"github.com/okian/unisignals/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("warn")
}

func TestGenerate(t *testing.T) {
	Convey("Given a seed", t, func() {
		first, err := loadtest.Generate(42, 50, true)
		So(err, ShouldBeNil)
		second, err := loadtest.Generate(42, 50, true)
		So(err, ShouldBeNil)

		Convey("Then generation is reproducible", func() {
			So(first, ShouldResemble, second)
		})

		Convey("Then every submission is internally consistent", func() {
			seen := map[string]bool{}
			for _, s := range first {
				So(s.MatchID, ShouldHaveLength, 36)
				So(seen[s.MatchID], ShouldBeFalse)
				seen[s.MatchID] = true

				st := s.HomeStats
				So(st.Wins+st.Draws+st.Losses, ShouldEqual, st.Played)
				So(len(s.AwayForm), ShouldBeLessThanOrEqualTo, 5)
				h := s.HeadToHead
				So(h.HomeWins+h.AwayWins+h.Draws, ShouldBeLessThanOrEqualTo, h.Total)
			}
		})
	})

	Convey("Given no IDs requested", t, func() {
		subs, err := loadtest.Generate(1, 3, false)
		So(err, ShouldBeNil)
		for _, s := range subs {
			So(s.MatchID, ShouldBeEmpty)
		}
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running service behind the HTTP API", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		svc := service.New(service.WithWorkerCount(4), service.WithQueueSize(1000))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		srv := httptest.NewServer(api.NewServer(svc, svc, api.WithMaxListLimit(500)).Handler())
		defer srv.Close()

		Convey("When a load test runs against it", func() {
			cfg := loadtest.NewConfig()
			cfg.BaseURL = srv.URL
			cfg.Count = 200
			cfg.Workers = 8
			cfg.TopN = 200
			cfg.Settle = 20 * time.Second

			stats, err := loadtest.Run(ctx, cfg)

			Convey("Then every match is stored and verified", func() {
				So(err, ShouldBeNil)
				So(stats.Generated, ShouldEqual, 200)
				So(stats.Accepted, ShouldEqual, 200)
				So(stats.Retrieved, ShouldEqual, 200)
				So(stats.Mismatched, ShouldEqual, 0)
				So(stats.Listed, ShouldEqual, 200)
			})
		})

		Convey("When the configuration is invalid", func() {
			cfg := loadtest.NewConfig()
			cfg.BaseURL = srv.URL
			cfg.Count = 0

			_, err := loadtest.Run(ctx, cfg)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given an unreachable service", t, func() {
		cfg := loadtest.NewConfig()
		cfg.BaseURL = "http://127.0.0.1:1"
		cfg.Timeout = time.Second

		_, err := loadtest.Run(context.Background(), cfg)
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "health check")
	})
}
