package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/pokerleague/internal/app"
	"github.com/okian/pokerleague/internal/adapters/upstream"
	"github.com/okian/pokerleague/internal/domain/model"
	"github.com/okian/pokerleague/internal/domain/season"
	"github.com/okian/pokerleague/internal/domain/types"
	"github.com/okian/pokerleague/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func row(id, name string, points, p1, parts int64) model.RankingRow {
	return model.RankingRow{
		PlayerID:       id,
		Name:           name,
		Points:         model.Count(points),
		P1:             model.Count(p1),
		Participations: model.Count(parts),
	}
}

func league() *service.FakeUpstream {
	general := []model.RankingRow{
		{PlayerID: "A", Name: "Ana", Points: 100, P1: 3, Podiums: 5, Participations: 10, RebuyTotal: 1},
		{PlayerID: "J055", Name: "Oculto", Points: 90, P1: 1, Podiums: 2, Participations: 8, RebuyTotal: 9},
		{PlayerID: "B", Name: "Bia", Points: 80, P1: 3, Podiums: 4, Participations: 6},
		{PlayerID: "D", Name: "Davi", Points: 50, P1: 4, Podiums: 4, Participations: 2},
	}

	return &service.FakeUpstream{
		Refs: []model.SeasonRef{
			{Year: "2024", Season: "T1"},
			{Year: "2024", Season: "T2"},
			{Year: "2025", Season: "T1"},
		},
		RoundList: []model.Round{
			{RoundID: "R1", Year: "2024", Season: "T1", PrizePool: 100},
			{RoundID: "R2", Year: "2024", Season: "T2", PrizePool: 150.5},
			{RoundID: "R3", Year: "2025", Season: "T1", PrizePool: 200},
		},
		Rankings: map[string][]model.RankingRow{
			"2024-T1": {row("A", "Ana", 10, 1, 1), row("B", "Bia", 5, 0, 1)},
			"2024-T2": {row("C", "Caio", 12, 1, 1), row("A", "Ana", 3, 0, 2)},
			"2025-T1": {row("B", "Bia", 20, 1, 1), row("J055", "Oculto", 7, 0, 1)},
		},
		General: general,
		Players: map[string]*model.PlayerResponse{
			"ALL|ALL|A": {
				OK:     true,
				Player: &model.PlayerInfo{RankingRow: general[0]},
				Seasons: []model.SeasonSummary{
					{Year: "2024", Season: "T1", Points: 10, Participations: 1, P1: 1, Podiums: 1, RebuyTotal: 2, Position: 1},
					{Year: "2024", Season: "T2", Points: 3, Participations: 2, Podiums: 1, RebuyTotal: 1, Position: 3},
					{Year: "2025", Season: "T1", Points: 40, Participations: 4, P1: 2, Podiums: 3, BestHand: 1, Position: 1},
				},
				Totals: &model.Totals{Points: 100, Participations: 10, TotalPaid: 300, TotalReceived: 450},
			},
			"2025|T1|A": {
				OK:      true,
				Player:  &model.PlayerInfo{RankingRow: row("A", "Ana", 30, 1, 2)},
				Finance: &model.Finance{Paid: 60, Received: 120, Balance: 60},
				History: []model.RoundRecord{
					{RoundID: "R4", Date: "2025-02-08", Placement: 3, Points: 10, CumulativePoints: 30, RankingPosition: 2},
					{RoundID: "R3", Date: "2025-02-01", Placement: 1, Points: 20, Rebuy: 1, Participated: true, CumulativePoints: 20, RankingPosition: 1},
				},
			},
		},
	}
}

func ids(rows []types.RankedRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.PlayerID
	}
	return out
}

func ranks(rows []types.RankedRow) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.Rank
	}
	return out
}

func newService(up service.Upstream) *service.Service {
	return service.New(up,
		service.WithWorkerCount(2),
		service.WithHiddenPlayers("J055"),
		service.WithRefreshInterval(0),
	)
}

// snapshotService has the refresher enabled but not started, so the default
// home view is served from published snapshots.
func snapshotService(up service.Upstream) *service.Service {
	return service.New(up,
		service.WithWorkerCount(2),
		service.WithHiddenPlayers("J055"),
		service.WithRefreshInterval(time.Hour),
	)
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(league(), service.WithRefreshInterval(time.Hour))
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				So(svc.GetStats()["started"], ShouldEqual, true)
			})

			Convey("And starting twice should be harmless", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("And stopping should mark it stopped", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Seasons(t *testing.T) {
	Convey("Given a league with three seasons", t, func() {
		svc := newService(league())

		Convey("When reading the catalogue", func() {
			view, err := svc.Seasons(context.Background())

			Convey("Then the latest season should be the default", func() {
				So(err, ShouldBeNil)
				So(view.Default, ShouldResemble, season.Selection{Year: "2025", Season: "T1"})
				So(view.Years, ShouldResemble, []string{"ALL", "2024", "2025"})
				So(view.Seasons, ShouldResemble, []string{"ALL", "T1"})
			})
		})
	})
}

func TestService_Ranking(t *testing.T) {
	Convey("Given a league with several seasons", t, func() {
		up := league()
		svc := newService(up)
		ctx := context.Background()

		Convey("When a single season is selected", func() {
			view, err := svc.Ranking(ctx, season.Selection{Year: "2024", Season: "T1"})

			Convey("Then it should be fetched without the catalogue", func() {
				So(err, ShouldBeNil)
				So(ids(view.Rows), ShouldResemble, []string{"A", "B"})
				So(up.Calls("SeasonRefs"), ShouldEqual, 0)
			})
		})

		Convey("When a whole year is selected", func() {
			view, err := svc.Ranking(ctx, season.Selection{Year: "2024", Season: season.All})

			Convey("Then its seasons should be aggregated", func() {
				So(err, ShouldBeNil)
				So(cmp.Diff([]string{"A", "C", "B"}, ids(view.Rows)), ShouldBeEmpty)
				So(view.Rows[0].Points.Int(), ShouldEqual, 13)
				So(view.Rows[0].Participations.Int(), ShouldEqual, 3)
				So(len(view.Seasons), ShouldEqual, 2)
				So(up.Calls("SeasonRanking"), ShouldEqual, 2)
			})
		})

		Convey("When one season is selected across years", func() {
			view, err := svc.Ranking(ctx, season.Selection{Year: season.All, Season: "T1"})

			Convey("Then every year having it should be merged", func() {
				So(err, ShouldBeNil)
				So(ids(view.Rows), ShouldResemble, []string{"B", "A", "J055"})
				So(view.Rows[0].Points.Int(), ShouldEqual, 25)
			})

			Convey("Then hidden players should be marked eliminated", func() {
				So(bool(view.Rows[2].Eliminated), ShouldBeTrue)
				So(bool(view.Rows[0].Eliminated), ShouldBeFalse)
			})
		})

		Convey("When nothing is selected", func() {
			view, err := svc.Ranking(ctx, season.Selection{})

			Convey("Then the latest season should be used", func() {
				So(err, ShouldBeNil)
				So(view.Selection, ShouldResemble, season.Selection{Year: "2025", Season: "T1"})
				So(ids(view.Rows), ShouldResemble, []string{"B", "J055"})
			})
		})

		Convey("When one of the season fetches fails", func() {
			up.RankingErr = errors.New("sheet offline")
			_, err := svc.Ranking(ctx, season.AllTime())

			Convey("Then the whole ranking should fail", func() {
				So(err, ShouldNotBeNil)
				So(service.ErrorCode(err), ShouldEqual, service.CodeUpstream)
			})
		})
	})
}

func TestService_Home(t *testing.T) {
	Convey("Given the home dashboard", t, func() {
		up := league()
		svc := newService(up)
		ctx := context.Background()

		Convey("When a year is selected", func() {
			view, err := svc.Home(ctx, season.Selection{Year: "2024", Season: season.All})

			Convey("Then every section should load", func() {
				So(err, ShouldBeNil)
				So(view.Ranking.OK(), ShouldBeTrue)
				So(view.KPIs.Data, ShouldResemble, types.RoundKPIs{Rounds: 2, PrizePool: 250.5, Players: 3})
				So(len(view.Rounds.Data), ShouldEqual, 2)
			})
		})

		Convey("When rounds cannot be loaded", func() {
			up.RoundsErr = errors.New("rounds tab missing")
			view, err := svc.Home(ctx, season.Selection{Year: "2024", Season: "T1"})

			Convey("Then only the rounds and KPI sections should carry errors", func() {
				So(err, ShouldBeNil)
				So(view.Ranking.OK(), ShouldBeTrue)
				So(view.Rounds.Error.Code, ShouldEqual, service.CodeUpstream)
				So(view.KPIs.Error, ShouldNotBeNil)
				So(view.Rounds.Data, ShouldBeEmpty)
			})
		})

		Convey("When the season list fails but one season is named", func() {
			up.RefsErr = errors.New("refs down")
			view, err := svc.Home(ctx, season.Selection{Year: "2024", Season: "T1"})

			Convey("Then the ranking should still load", func() {
				So(err, ShouldBeNil)
				So(view.Ranking.OK(), ShouldBeTrue)
				So(view.KPIs.Data.Rounds, ShouldEqual, 1)
			})
		})

		Convey("When the season list fails for a multi-season selection", func() {
			up.RefsErr = errors.New("refs down")
			view, err := svc.Home(ctx, season.AllTime())

			Convey("Then the ranking section should report it", func() {
				So(err, ShouldBeNil)
				So(view.Ranking.OK(), ShouldBeFalse)
				So(view.Rounds.OK(), ShouldBeTrue)
			})
		})

		Convey("When the league API is not configured", func() {
			up.RefsErr = upstream.ErrMissingBaseURL
			up.RoundsErr = upstream.ErrMissingBaseURL
			_, err := svc.Home(ctx, season.Selection{})

			Convey("Then the view should fail as config-missing", func() {
				So(service.ErrorCode(err), ShouldEqual, service.CodeConfigMissing)
			})
		})

		Convey("When the default view is requested twice", func() {
			svc := snapshotService(up)
			first, err1 := svc.Home(ctx, season.Selection{})
			calls := up.Calls("SeasonRefs")
			second, err2 := svc.Home(ctx, season.Selection{})

			Convey("Then the second answer should come from the snapshot", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(up.Calls("SeasonRefs"), ShouldEqual, calls)
				So(second.Selection, ShouldResemble, first.Selection)
				So(svc.GetStats()["snapshotToken"], ShouldNotBeNil)
			})
		})

		Convey("When the refresher is disabled and the league changes", func() {
			first, err := svc.Home(ctx, season.Selection{})
			So(err, ShouldBeNil)
			up.Rankings["2025-T1"] = append(up.Rankings["2025-T1"], row("E", "Eva", 3, 0, 1))
			second, err2 := svc.Home(ctx, season.Selection{})
			current, err3 := svc.Ranking(ctx, season.Selection{})

			Convey("Then the default view should follow the league", func() {
				So(err2, ShouldBeNil)
				So(err3, ShouldBeNil)
				So(len(second.Ranking.Data.Rows), ShouldEqual, len(first.Ranking.Data.Rows)+1)
				So(ids(second.Ranking.Data.Rows), ShouldResemble, ids(current.Rows))
				So(svc.GetStats()["snapshotToken"], ShouldBeNil)
			})
		})
	})
}

func TestService_General(t *testing.T) {
	Convey("Given the all-time ranking", t, func() {
		up := league()
		svc := newService(up)

		Convey("When building the general view", func() {
			view, err := svc.General(context.Background())

			Convey("Then only eligible, visible players should be ranked", func() {
				So(err, ShouldBeNil)
				So(ids(view.Rows), ShouldResemble, []string{"A", "B"})
				So(ranks(view.Rows), ShouldResemble, []int{1, 2})
				So(view.Players, ShouldEqual, 2)
				So(view.MinParticipations, ShouldEqual, 5)
			})

			Convey("Then the podium should include every eligible player", func() {
				So(ids(view.Podium), ShouldResemble, []string{"A", "J055", "B"})
			})

			Convey("Then tied superlatives should list every winner", func() {
				titles := view.Superlatives[3]
				So(titles.Key, ShouldEqual, "most_titles")
				So(titles.Value, ShouldEqual, 3)
				So(len(titles.Winners), ShouldEqual, 2)
				So(titles.Winners[0].PlayerID, ShouldEqual, "A")
				So(titles.Winners[1].PlayerID, ShouldEqual, "B")

				rebuys := view.Superlatives[0]
				So(rebuys.Winners[0].PlayerID, ShouldEqual, "J055")
			})
		})

		Convey("When the general ranking fails", func() {
			up.GeneralErr = upstream.ErrMissingBaseURL
			_, err := svc.General(context.Background())
			So(errors.Is(err, upstream.ErrMissingBaseURL), ShouldBeTrue)
		})
	})
}

func TestService_Player(t *testing.T) {
	Convey("Given a player with three seasons", t, func() {
		up := league()
		svc := newService(up)
		ctx := context.Background()

		Convey("When building the profile", func() {
			view, err := svc.Player(ctx, " A ")
			So(err, ShouldBeNil)

			Convey("Then identity and position should be filled", func() {
				So(view.Name, ShouldEqual, "Ana")
				So(view.Photo, ShouldEqual, "/players/A.png")
				So(view.Position.Data, ShouldResemble, &service.Position{Rank: 1, Points: 100})
			})

			Convey("Then the best campaign should keep the first of equal seasons", func() {
				So(view.BestCampaign.Year, ShouldEqual, "2024")
				So(view.BestCampaign.Season, ShouldEqual, "T1")
				So(view.BestCampaign.Efficiency, ShouldEqual, 10)
			})

			Convey("Then KPIs should sum the season summaries", func() {
				So(view.KPIs, ShouldResemble, service.PlayerKPIs{
					Participations:         10,
					Wins:                   3,
					Podiums:                5,
					BestHands:              1,
					Rebuys:                 3,
					WinRate:                0.3,
					PodiumRate:             0.5,
					PointsPerParticipation: 10,
				})
			})

			Convey("Then finance should come from the all-time totals", func() {
				So(view.Finance, ShouldResemble, model.Finance{Paid: 300, Received: 450, Balance: 150})
			})

			Convey("Then the chart should list seasons oldest first", func() {
				So(len(view.Chart), ShouldEqual, 3)
				So(view.Chart[0].Key, ShouldEqual, "2024-T1")
				So(view.Chart[2].Key, ShouldEqual, "2025-T1")
			})

			Convey("Then the two newest seasons should be detailed independently", func() {
				So(len(view.Recent), ShouldEqual, 2)
				latest := view.Recent[0]
				So(latest.Key, ShouldEqual, "2025-T1")
				So(latest.Error, ShouldBeNil)
				So(latest.Efficiency, ShouldEqual, 10)
				So(latest.LastPosition, ShouldEqual, 2)
				So(latest.Series[0].RoundID, ShouldEqual, "R3")

				So(view.Recent[1].Key, ShouldEqual, "2024-T2")
				So(view.Recent[1].Error.Code, ShouldEqual, service.CodeNotFound)
			})

			Convey("Then playing-since should fall back to the round history", func() {
				So(view.PlayingSince, ShouldEqual, "2025-02-01")
			})
		})

		Convey("When the general ranking is unavailable", func() {
			up.GeneralErr = errors.New("timeout")
			view, err := svc.Player(ctx, "A")

			Convey("Then the profile should degrade gracefully", func() {
				So(err, ShouldBeNil)
				So(view.Position.Data, ShouldBeNil)
				So(view.Position.Error, ShouldNotBeNil)
				So(view.KPIs.PointsPerParticipation, ShouldEqual, 10)
			})
		})

		Convey("When the player does not exist", func() {
			_, err := svc.Player(ctx, "ZZZ")
			So(service.ErrorCode(err), ShouldEqual, service.CodeNotFound)
		})

		Convey("When the id is malformed", func() {
			_, err := svc.Player(ctx, "../etc")
			So(errors.Is(err, service.ErrInvalidPlayerID), ShouldBeTrue)
			So(service.ErrorCode(err), ShouldEqual, service.CodeBadRequest)
		})
	})
}

func TestService_PlayerSeason(t *testing.T) {
	Convey("Given a player's season", t, func() {
		svc := newService(league())
		ctx := context.Background()

		Convey("When the season label is given as a number", func() {
			view, err := svc.PlayerSeason(ctx, "A", "2025", "1")

			Convey("Then it should be normalised and detailed", func() {
				So(err, ShouldBeNil)
				So(view.Season, ShouldEqual, "T1")
				So(view.Name, ShouldEqual, "Ana")
				So(view.Efficiency, ShouldEqual, 10)
				So(view.Finance.Balance, ShouldEqual, 60)
				So(len(view.Series), ShouldEqual, 2)
			})
		})

		Convey("When the selection is not a single season", func() {
			_, err := svc.PlayerSeason(ctx, "A", "ALL", "T1")
			So(errors.Is(err, service.ErrInvalidSelection), ShouldBeTrue)
		})
	})
}
