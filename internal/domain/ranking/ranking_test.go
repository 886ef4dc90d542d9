package ranking

import (
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/okian/pokerleague/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func row(id, name string, points, p1, parts model.Count) model.RankingRow {
	return model.RankingRow{PlayerID: id, Name: name, Points: points, P1: p1, Participations: parts}
}

// randomLists builds season rankings over a small player pool so that ids
// repeat across lists. Names are fixed per id.
func randomLists(f *gofakeit.Faker, lists int) [][]model.RankingRow {
	out := make([][]model.RankingRow, lists)
	for i := range out {
		n := f.Number(0, 8)
		for j := 0; j < n; j++ {
			id := fmt.Sprintf("J%03d", f.Number(1, 6))
			r := model.RankingRow{PlayerID: id, Name: "Player " + id, Eliminated: model.Flag(f.Bool())}
			for _, c := range r.Counters() {
				*c = model.Count(f.Number(0, 30))
			}
			out[i] = append(out[i], r)
		}
	}
	return out
}

func TestAggregate(t *testing.T) {
	Convey("Given two season rankings", t, func() {
		season1 := []model.RankingRow{row("J001", "Ana", 50, 1, 5)}
		season2 := []model.RankingRow{
			row("J001", "Ana", 30, 0, 4),
			row("J002", "Bruno", 80, 2, 6),
		}

		Convey("When aggregating them", func() {
			got := Aggregate(season1, season2)

			Convey("Then counters are summed and the tie on points goes to p1", func() {
				want := []model.RankingRow{
					row("J002", "Bruno", 80, 2, 6),
					row("J001", "Ana", 80, 1, 9),
				}
				So(cmp.Diff(want, got), ShouldBeEmpty)
			})

			Convey("Then the inputs are left untouched", func() {
				So(season1[0].Points, ShouldEqual, model.Count(50))
			})
		})

		Convey("When a later row has an empty name and a set eliminated flag", func() {
			later := []model.RankingRow{{PlayerID: "J001", Points: 1, Eliminated: true}}
			got := Aggregate(season1, later)

			Convey("Then the name is kept and the flag is set", func() {
				So(got[0].Name, ShouldEqual, "Ana")
				So(bool(got[0].Eliminated), ShouldBeTrue)
			})
		})

		Convey("When a later row renames the player", func() {
			got := Aggregate(season1, []model.RankingRow{row("J001", "Ana Paula", 0, 0, 1)})

			Convey("Then the latest non-empty name wins", func() {
				So(got[0].Name, ShouldEqual, "Ana Paula")
			})
		})

		Convey("When nothing is given", func() {
			Convey("Then the result is empty", func() {
				So(Aggregate(), ShouldBeEmpty)
				So(Aggregate(nil, []model.RankingRow{}), ShouldBeEmpty)
			})
		})
	})
}

func TestAggregateProperties(t *testing.T) {
	Convey("Given random season rankings", t, func() {
		for seed := 1; seed <= 25; seed++ {
			f := gofakeit.New(uint64(seed))
			lists := randomLists(f, f.Number(1, 5))

			shuffled := make([][]model.RankingRow, len(lists))
			copy(shuffled, lists)
			f.ShuffleAnySlice(shuffled)

			base := Aggregate(lists...)

			So(cmp.Diff(base, Aggregate(shuffled...)), ShouldBeEmpty)
			So(cmp.Diff(base, Aggregate(lists...)), ShouldBeEmpty)

			if len(lists) >= 3 {
				left := Aggregate(Aggregate(lists[0], lists[1]), lists[2])
				right := Aggregate(lists[0], Aggregate(lists[1], lists[2]))
				So(cmp.Diff(left, right), ShouldBeEmpty)
			}

			flat := Aggregate(lists...)
			doubled := Aggregate(flat, flat)
			So(len(doubled), ShouldEqual, len(flat))
			for i := range flat {
				single, twice := flat[i].Counters(), doubled[i].Counters()
				for k := range single {
					So(*twice[k], ShouldEqual, 2 * *single[k])
				}
				So(doubled[i].Name, ShouldEqual, flat[i].Name)
			}

			for i := 1; i < len(base); i++ {
				So(Less(base[i], base[i-1]), ShouldBeFalse)
			}
		}
	})
}

func TestSort(t *testing.T) {
	Convey("Given rows that tie on points", t, func() {
		rows := []model.RankingRow{
			{PlayerID: "J3", Name: "Caio", Points: 10, P1: 1, P2: 1},
			{PlayerID: "J4", Name: "Davi", Points: 10, P1: 1, P2: 1, Podiums: 3},
			{PlayerID: "J2", Name: "Bia", Points: 10, P1: 1, P2: 2},
			{PlayerID: "J5", Name: "Ana", Points: 10, P1: 1, P2: 1},
			{PlayerID: "J1", Name: "Zeca", Points: 12},
		}

		Convey("When sorting", func() {
			Sort(rows)

			Convey("Then placements, podiums and names break the ties", func() {
				ids := make([]string, len(rows))
				for i, r := range rows {
					ids[i] = r.PlayerID
				}
				So(ids, ShouldResemble, []string{"J1", "J2", "J4", "J5", "J3"})
			})
		})
	})

	Convey("Given rows equal on the whole sort key", t, func() {
		a := model.RankingRow{PlayerID: "A", Name: "Same", Points: 5, SerieB: 1}
		b := model.RankingRow{PlayerID: "B", Name: "Same", Points: 5}

		Convey("Then counters outside the key do not reorder them", func() {
			So(Compare(a, b), ShouldBeLessThan, 0)
			So(Compare(b, a), ShouldBeGreaterThan, 0)
			So(Compare(a, a), ShouldEqual, 0)
		})
	})
}

func TestDisplayRanks(t *testing.T) {
	Convey("Given a sorted ranking with a tie at the top", t, func() {
		tied := model.RankingRow{Points: 100, P1: 2, Podiums: 4, Participations: 10}
		a, b := tied, tied
		a.PlayerID, a.Name = "J1", "Ana"
		b.PlayerID, b.Name = "J2", "Bia"
		c := model.RankingRow{PlayerID: "J3", Name: "Caio", Points: 90, Participations: 10}
		rows := []model.RankingRow{a, b, c}

		Convey("Then tied rows share a rank and the next row keeps its position", func() {
			So(DisplayRanks(rows), ShouldResemble, []int{1, 1, 3})
		})

		Convey("Then a tie of three shares the first rank", func() {
			d := tied
			d.PlayerID = "J4"
			So(DisplayRanks([]model.RankingRow{a, b, d, c}), ShouldResemble, []int{1, 1, 1, 4})
		})

		Convey("Then Ranked pairs rows with ranks", func() {
			ranked := Ranked(rows)
			So(len(ranked), ShouldEqual, 3)
			So(ranked[1].Rank, ShouldEqual, 1)
			So(ranked[1].PlayerID, ShouldEqual, "J2")
			So(ranked[2].Rank, ShouldEqual, 3)
		})

		Convey("Then PositionOf reports the tie-aware rank", func() {
			pos, r, ok := PositionOf(rows, "J2")
			So(ok, ShouldBeTrue)
			So(pos, ShouldEqual, 1)
			So(r.Name, ShouldEqual, "Bia")

			_, _, ok = PositionOf(rows, "J404")
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given rows equal on the sort key but not on every counter", t, func() {
		a := model.RankingRow{PlayerID: "J1", Points: 20, BestHand: 1}
		b := model.RankingRow{PlayerID: "J2", Points: 20}

		Convey("Then they are not tied", func() {
			So(Tied(a, b), ShouldBeFalse)
			So(DisplayRanks([]model.RankingRow{a, b}), ShouldResemble, []int{1, 2})
		})
	})

	Convey("Given an empty ranking", t, func() {
		So(DisplayRanks(nil), ShouldBeEmpty)
		So(Ranked(nil), ShouldBeEmpty)
	})
}

func TestWithout(t *testing.T) {
	Convey("Given a ranking with a hidden player", t, func() {
		rows := []model.RankingRow{{PlayerID: "J001"}, {PlayerID: "J055"}, {PlayerID: "J002"}}

		Convey("Then Without drops it and keeps the order", func() {
			got := Without(rows, "J055")
			So(len(got), ShouldEqual, 2)
			So(got[1].PlayerID, ShouldEqual, "J002")
			So(len(Without(rows)), ShouldEqual, 3)
		})
	})
}
