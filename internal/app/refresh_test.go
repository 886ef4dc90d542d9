package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/pokerleague/internal/app"
	"github.com/okian/pokerleague/internal/domain/season"
)

func TestSnapshotSequencing(t *testing.T) {
	Convey("Given two builds of the default view", t, func() {
		svc := snapshotService(league())
		older := svc.NextToken()
		newer := svc.NextToken()

		Convey("When the newer build finishes first", func() {
			So(svc.Publish(newer, service.HomeView{Selection: season.Selection{Year: "new"}}), ShouldBeTrue)
			published := svc.Publish(older, service.HomeView{Selection: season.Selection{Year: "old"}})

			Convey("Then the late older result should be discarded", func() {
				So(published, ShouldBeFalse)
				view, err := svc.Home(context.Background(), season.Selection{})
				So(err, ShouldBeNil)
				So(view.Selection.Year, ShouldEqual, "new")
				So(svc.GetStats()["staleDiscarded"], ShouldEqual, 1)
			})
		})

		Convey("When a refresh completes after a slow build started", func() {
			So(svc.Refresh(context.Background()), ShouldBeNil)

			Convey("Then the slow build should not overwrite it", func() {
				So(svc.Publish(newer, service.HomeView{}), ShouldBeFalse)
				view, _ := svc.Home(context.Background(), season.Selection{})
				So(view.Selection, ShouldResemble, season.Selection{Year: "2025", Season: "T1"})
			})
		})
	})

	Convey("Given a refresh whose sections fail", t, func() {
		up := league()
		up.RoundsErr = errors.New("rounds down")
		svc := newService(up)

		Convey("Then nothing should be published", func() {
			So(svc.Refresh(context.Background()), ShouldNotBeNil)
			So(svc.GetStats()["snapshotToken"], ShouldBeNil)
		})
	})

	Convey("Given a running service with a short refresh interval", t, func() {
		svc := service.New(league(), service.WithRefreshInterval(10*time.Millisecond))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("Then a snapshot should be published in the background", func() {
			deadline := time.Now().Add(2 * time.Second)
			for svc.GetStats()["snapshotToken"] == nil && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			So(svc.GetStats()["snapshotToken"], ShouldNotBeNil)
			So(svc.GetStats()["refreshes"], ShouldBeGreaterThanOrEqualTo, 1)
		})
	})
}
