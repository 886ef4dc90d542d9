package chart

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pokerleague/internal/domain/stats"
)

func TestSeasonHistory(t *testing.T) {
	Convey("Given season points", t, func() {
		points := []stats.SeasonPoint{
			{Key: "2024-T1", Efficiency: 10, Position: 1},
			{Key: "2024-T2", Efficiency: 1.5, Position: 0},
			{Key: "2025-T1", Efficiency: 8.25, Position: 4},
		}

		Convey("When rendering", func() {
			svg, err := SeasonHistory(points, WithSize(640, 240))

			Convey("Then an SVG with the season labels should be produced", func() {
				So(err, ShouldBeNil)
				out := string(svg)
				So(out, ShouldStartWith, "<svg")
				So(out, ShouldContainSubstring, "2024-T2")
				So(out, ShouldContainSubstring, `width="640"`)
			})
		})

		Convey("When no position is known", func() {
			for i := range points {
				points[i].Position = 0
			}
			svg, err := SeasonHistory(points)
			So(err, ShouldBeNil)
			So(len(svg), ShouldBeGreaterThan, 0)
		})

		Convey("When only one season exists with zero efficiency", func() {
			svg, err := SeasonHistory(points[1:2])
			So(err, ShouldBeNil)
			So(string(svg), ShouldContainSubstring, "</svg>")
		})
	})

	Convey("Given no seasons", t, func() {
		svg, err := SeasonHistory(nil)

		Convey("Then a placeholder should be rendered", func() {
			So(err, ShouldBeNil)
			So(string(svg), ShouldContainSubstring, "Sem temporadas registradas")
		})
	})
}

func TestRoundHistory(t *testing.T) {
	Convey("Given a season's rounds", t, func() {
		points := []stats.RoundPoint{
			{RoundID: "R1", Label: "01", Points: 8},
			{RoundID: "R2", Label: "02", Points: 20},
		}

		Convey("Then the running points should render", func() {
			svg, err := RoundHistory(points, WithPalette(DefaultPalette()))
			So(err, ShouldBeNil)
			So(strings.Count(string(svg), "<svg"), ShouldEqual, 1)
		})

		Convey("Then an empty season should render a placeholder", func() {
			svg, err := RoundHistory(nil)
			So(err, ShouldBeNil)
			So(string(svg), ShouldContainSubstring, "Sem rodadas registradas")
		})
	})
}
