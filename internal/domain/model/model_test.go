package model_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	model "github.com/okian/pokerleague/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestCount(t *testing.T) {
	convey.Convey("Given counters from the data provider", t, func() {
		cases := []struct {
			raw  string
			want model.Count
		}{
			{`12`, 12},
			{`"7"`, 7},
			{`" 3 "`, 3},
			{`""`, 0},
			{`null`, 0},
			{`"abc"`, 0},
			{`-4`, 0},
			{`2.6`, 3},
			{`"12,4"`, 12},
			{`true`, 0},
		}

		for _, tc := range cases {
			convey.Convey("When decoding "+tc.raw, func() {
				var c model.Count
				err := json.Unmarshal([]byte(tc.raw), &c)

				convey.Convey("Then it should never fail and default to zero", func() {
					convey.So(err, convey.ShouldBeNil)
					convey.So(c, convey.ShouldEqual, tc.want)
				})
			})
		}
	})
}

func TestFlag(t *testing.T) {
	convey.Convey("Given boolean flags in spreadsheet spellings", t, func() {
		truthy := []string{`true`, `"TRUE"`, `"sim"`, `"x"`, `1`, `"1"`}
		falsy := []string{`false`, `"FALSE"`, `""`, `null`, `0`, `"nao"`}

		convey.Convey("Then truthy spellings decode to true", func() {
			for _, raw := range truthy {
				var f model.Flag
				convey.So(json.Unmarshal([]byte(raw), &f), convey.ShouldBeNil)
				convey.So(bool(f), convey.ShouldBeTrue)
			}
		})

		convey.Convey("Then everything else decodes to false", func() {
			for _, raw := range falsy {
				f := model.Flag(true)
				convey.So(json.Unmarshal([]byte(raw), &f), convey.ShouldBeNil)
				convey.So(bool(f), convey.ShouldBeFalse)
			}
		})
	})
}

func TestRankingRowDecoding(t *testing.T) {
	convey.Convey("Given a ranking row with missing and stringly typed fields", t, func() {
		raw := `{"id_jogador":"J001","nome":"Ana","pontos":"50","p1":1,"p2":null,"participacoes":"5","eliminado":"TRUE"}`

		var row model.RankingRow
		err := json.Unmarshal([]byte(raw), &row)

		convey.Convey("Then present fields are parsed and missing ones are zero", func() {
			convey.So(err, convey.ShouldBeNil)
			want := model.RankingRow{
				PlayerID:       "J001",
				Name:           "Ana",
				Points:         50,
				P1:             1,
				Participations: 5,
				Eliminated:     true,
			}
			convey.So(cmp.Diff(want, row), convey.ShouldBeEmpty)
		})

		convey.Convey("Then Counters exposes every summed field in comparison order", func() {
			counters := row.Counters()
			convey.So(len(counters), convey.ShouldEqual, 17)
			convey.So(*counters[0], convey.ShouldEqual, 50)
			convey.So(*counters[1], convey.ShouldEqual, 1)
			convey.So(*counters[16], convey.ShouldEqual, 5)

			*counters[16] = 9
			convey.So(row.Participations, convey.ShouldEqual, 9)
		})
	})
}

func TestLabelsDecoding(t *testing.T) {
	convey.Convey("Given season references and rounds with numeric labels", t, func() {
		var refs []model.SeasonRef
		err := json.Unmarshal([]byte(`[{"ano":2024,"temporada":"T1"},{"ano":"2025","temporada":2}]`), &refs)

		convey.Convey("Then labels are read as strings", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(refs, convey.ShouldResemble, []model.SeasonRef{
				{Year: "2024", Season: "T1"},
				{Year: "2025", Season: "2"},
			})
		})

		convey.Convey("Then rounds keep their numeric fields", func() {
			var r model.Round
			err := json.Unmarshal([]byte(`{"id_rodada":"2025-T1-03","ano":2025,"temporada":"T1","rodada":3,"qtd_jogadores":"18","prizepool":"1250,50"}`), &r)
			convey.So(err, convey.ShouldBeNil)
			convey.So(r.Year, convey.ShouldEqual, "2025")
			convey.So(r.Round, convey.ShouldEqual, "3")
			convey.So(r.Players, convey.ShouldEqual, 18)
			convey.So(r.PrizePool, convey.ShouldEqual, 1250.5)
		})
	})
}

func TestPlayerResponseDecoding(t *testing.T) {
	convey.Convey("Given an all-time player response", t, func() {
		raw := `{
			"ok": true,
			"jogador": {"id_jogador":"J007","nome":"Bia","participacoes":12,"joga_desde":"2023-03-02"},
			"resumo_por_temporada": [{"ano":"2024","temporada":"T2","pontos":40,"participacoes":8,"posicao":""}],
			"total_geral": {"pontos":40,"participacoes":12,"total_pagar":300,"total_receber":450}
		}`

		var resp model.PlayerResponse
		err := json.Unmarshal([]byte(raw), &resp)

		convey.Convey("Then identity, summaries and totals are available", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(bool(resp.OK), convey.ShouldBeTrue)
			convey.So(resp.Player, convey.ShouldNotBeNil)
			convey.So(resp.Player.Name, convey.ShouldEqual, "Bia")
			convey.So(resp.Player.PlayingSince, convey.ShouldEqual, "2023-03-02")
			convey.So(resp.Seasons[0].Position, convey.ShouldEqual, 0)
		})

		convey.Convey("Then a missing balance is derived from paid and received", func() {
			convey.So(resp.Totals.Net(), convey.ShouldEqual, 150)

			reported := model.Amount(-20)
			resp.Totals.Balance = &reported
			convey.So(resp.Totals.Net(), convey.ShouldEqual, -20)
		})
	})

	convey.Convey("Given a not-found player response", t, func() {
		var resp model.PlayerResponse
		err := json.Unmarshal([]byte(`{"ok":false,"message":"Jogador não encontrado"}`), &resp)

		convey.Convey("Then the player is absent", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(resp.Player, convey.ShouldBeNil)
			convey.So(bool(resp.OK), convey.ShouldBeFalse)
		})
	})
}
