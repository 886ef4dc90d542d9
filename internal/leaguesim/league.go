// Package leaguesim generates a synthetic poker league and serves it over
// the league data API. It backs local development and smoke checks of a
// running service.
package leaguesim

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/okian/pokerleague/internal/domain/model"
	"github.com/okian/pokerleague/internal/domain/ranking"
	"github.com/okian/pokerleague/internal/domain/season"
)

// Generation defaults.
const (
	defaultPlayers   = 24
	defaultRounds    = 8
	defaultTableSize = 12
	defaultBuyIn     = 50.0
	finalTableSize   = 9
	minTableSize     = 4
	maxRebuys        = 2
	daysBetween      = 7
)

// Payout shares of the prize pool for first, second and third place.
var payouts = []float64{0.5, 0.3, 0.2}

// Config controls the generated league.
type Config struct {
	Seed            int64
	Players         int
	Years           []string
	Seasons         []string
	RoundsPerSeason int
	TableSize       int
	BuyIn           float64
}

// DefaultConfig returns a two-year league with two seasons a year.
func DefaultConfig() Config {
	return Config{
		Seed:            1,
		Players:         defaultPlayers,
		Years:           []string{"2024", "2025"},
		Seasons:         []string{"T1", "T2"},
		RoundsPerSeason: defaultRounds,
		TableSize:       defaultTableSize,
		BuyIn:           defaultBuyIn,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.Players < minTableSize {
		c.Players = d.Players
	}
	if len(c.Years) == 0 {
		c.Years = d.Years
	}
	if len(c.Seasons) == 0 {
		c.Seasons = d.Seasons
	}
	if c.RoundsPerSeason < 1 {
		c.RoundsPerSeason = d.RoundsPerSeason
	}
	if c.TableSize < minTableSize {
		c.TableSize = d.TableSize
	}
	c.TableSize = min(c.TableSize, c.Players)
	if c.BuyIn <= 0 {
		c.BuyIn = d.BuyIn
	}
	return c
}

// League is a generated league. It is read-only once built.
type League struct {
	refs     []model.SeasonRef
	rounds   []model.Round
	names    map[string]string
	history  map[string][]model.RoundRecord
	rankings map[string][]model.RankingRow
	general  []model.RankingRow
}

// Generate builds a league from cfg. The same config always yields the
// same league.
func Generate(cfg Config) *League {
	cfg = cfg.normalized()
	f := gofakeit.New(uint64(cfg.Seed))

	l := &League{
		names:    make(map[string]string, cfg.Players),
		history:  make(map[string][]model.RoundRecord, cfg.Players),
		rankings: make(map[string][]model.RankingRow),
	}
	ids := make([]string, cfg.Players)
	for i := range ids {
		ids[i] = fmt.Sprintf("J%03d", i+1)
		l.names[ids[i]] = f.Name()
	}

	roundID := 0
	for yi, year := range cfg.Years {
		for si, label := range cfg.Seasons {
			l.refs = append(l.refs, model.SeasonRef{Year: year, Season: label})
			start := seasonStart(year, yi, si, len(cfg.Seasons))
			running := map[string]model.Count{}

			for n := 1; n <= cfg.RoundsPerSeason; n++ {
				roundID++
				date := start.AddDate(0, 0, (n-1)*daysBetween).Format(time.DateOnly)
				records := l.playRound(f, cfg, ids, roundID, n, year, label, date)
				for i := range records {
					running[records[i].PlayerID()] += records[i].Points
				}
				positions := positionsOf(running)
				for i := range records {
					id := records[i].PlayerID()
					records[i].CumulativePoints = running[id]
					records[i].RankingPosition = model.Count(positions[id])
					l.history[id] = append(l.history[id], records[i].RoundRecord)
				}
			}
			key := season.Key(year, label)
			l.rankings[key] = l.seasonRows(year, label)
		}
	}

	lists := make([][]model.RankingRow, 0, len(l.rankings))
	for _, ref := range l.refs {
		lists = append(lists, l.rankings[season.Key(ref.Year, ref.Season)])
	}
	l.general = ranking.Aggregate(lists...)
	return l
}

// seasonStart spreads the seasons of a year over its months.
func seasonStart(year string, yearIndex, seasonIndex, seasons int) time.Time {
	y, err := strconv.Atoi(year)
	if err != nil {
		y = 2000 + yearIndex
	}
	month := time.Month(1 + seasonIndex*12/max(seasons, 1))
	return time.Date(y, month, 5, 0, 0, 0, 0, time.UTC)
}

// seat is a round record with the id it belongs to.
type seat struct {
	model.RoundRecord
	id string
}

func (s seat) PlayerID() string { return s.id }

// playRound seats a random table and settles placements, points and money.
func (l *League) playRound(f *gofakeit.Faker, cfg Config, ids []string, roundID, number int, year, label, date string) []seat {
	table := slices.Clone(ids)
	f.ShuffleAnySlice(table)
	table = table[:f.Number(minTableSize, cfg.TableSize)]

	seats := make([]seat, len(table))
	pool := 0.0
	for i, id := range table {
		rebuy, addon := f.Number(0, maxRebuys), f.Number(0, 1)
		paid := cfg.BuyIn * float64(1+rebuy+addon)
		pool += paid
		placement := i + 1
		seats[i] = seat{id: id, RoundRecord: model.RoundRecord{
			RoundID:      strconv.Itoa(roundID),
			Date:         date,
			Year:         year,
			Season:       label,
			Round:        strconv.Itoa(number),
			Placement:    model.Count(placement),
			Participated: true,
			CSB:          model.Flag(placement == finalTableSize+1),
			Points:       model.Count(pointsFor(placement, len(table))),
			Rebuy:        model.Count(rebuy),
			Addon:        model.Count(addon),
			Paid:         model.Amount(paid),
		}}
	}
	for i := range seats {
		if i < len(payouts) {
			seats[i].Received = model.Amount(pool * payouts[i])
		}
		seats[i].Balance = seats[i].Received - seats[i].Paid
	}
	seats[f.Number(0, len(seats)-1)].BestHand = true

	l.rounds = append(l.rounds, model.Round{
		RoundID:   strconv.Itoa(roundID),
		Year:      year,
		Season:    label,
		Round:     strconv.Itoa(number),
		Date:      date,
		Players:   model.Count(len(table)),
		PrizePool: model.Amount(pool),
	})
	return seats
}

// pointsFor awards one point per beaten player plus a podium bonus.
func pointsFor(placement, players int) int {
	bonus := [...]int{5, 3, 1}
	p := players - placement + 1
	if placement <= len(bonus) {
		p += bonus[placement-1]
	}
	return p
}

// positionsOf ranks running season totals: points descending, id ascending.
func positionsOf(running map[string]model.Count) map[string]int {
	ids := make([]string, 0, len(running))
	for id := range running {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		if c := cmp.Compare(running[b], running[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	out := make(map[string]int, len(ids))
	for i, id := range ids {
		out[id] = i + 1
	}
	return out
}

// seasonRows sums every player's records of one season.
func (l *League) seasonRows(year, label string) []model.RankingRow {
	var rows []model.RankingRow
	for id, records := range l.history {
		row := model.RankingRow{PlayerID: id, Name: l.names[id]}
		for _, r := range records {
			if r.Year != year || r.Season != label {
				continue
			}
			addRecord(&row, r)
		}
		if row.Participations > 0 {
			rows = append(rows, row)
		}
	}
	ranking.Sort(rows)
	// The last row is flagged eliminated.
	if len(rows) > minTableSize {
		rows[len(rows)-1].Eliminated = true
	}
	return rows
}

func addRecord(row *model.RankingRow, r model.RoundRecord) {
	row.Points += r.Points
	row.Participations++
	row.RebuyTotal += r.Rebuy
	row.AddonTotal += r.Addon
	if r.BestHand {
		row.BestHand++
	}
	if r.CSB {
		row.SerieB++
	}
	switch p := r.Placement.Int(); {
	case p >= 1 && p <= finalTableSize:
		*row.Counters()[p]++
		if p <= len(payouts) {
			row.Podiums++
		}
	default:
		row.OutOfFinalTable++
	}
}

// Refs lists the generated seasons in play order.
func (l *League) Refs() []model.SeasonRef { return slices.Clone(l.refs) }

// Rounds lists every generated round.
func (l *League) Rounds() []model.Round { return slices.Clone(l.rounds) }

// PlayerIDs lists every generated player id in ascending order.
func (l *League) PlayerIDs() []string {
	ids := make([]string, 0, len(l.names))
	for id := range l.names {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Ranking merges the season rankings matching sel.
func (l *League) Ranking(sel season.Selection) []model.RankingRow {
	sel = sel.Normalized()
	if sel.Year == season.All && sel.Season == season.All {
		return slices.Clone(l.general)
	}
	var lists [][]model.RankingRow
	for _, ref := range season.Resolve(l.refs, sel) {
		lists = append(lists, l.rankings[season.Key(ref.Year, ref.Season)])
	}
	return ranking.Aggregate(lists...)
}

// General returns the all-time ranking.
func (l *League) General() []model.RankingRow { return slices.Clone(l.general) }

// Player answers a player lookup. A season of ALL selects the all-time
// summary. ok is false when the player never played in the selection.
func (l *League) Player(year, label, id string) (model.PlayerResponse, bool) {
	records, known := l.history[id]
	if !known {
		return model.PlayerResponse{OK: false, Message: "jogador não encontrado"}, false
	}
	if label == "" || label == season.All {
		return l.allTime(id, records), true
	}

	resp := model.PlayerResponse{OK: true, Finance: &model.Finance{}}
	row := model.RankingRow{PlayerID: id, Name: l.names[id]}
	for _, r := range records {
		if r.Year != year || r.Season != label {
			continue
		}
		resp.History = append(resp.History, r)
		addRecord(&row, r)
		resp.Finance.Paid += r.Paid
		resp.Finance.Received += r.Received
	}
	if len(resp.History) == 0 {
		return model.PlayerResponse{OK: false, Message: "sem participações na temporada"}, false
	}
	resp.Finance.Balance = resp.Finance.Received - resp.Finance.Paid
	resp.Player = &model.PlayerInfo{RankingRow: row}
	return resp, true
}

func (l *League) allTime(id string, records []model.RoundRecord) model.PlayerResponse {
	resp := model.PlayerResponse{OK: true, Totals: &model.Totals{}}
	for _, r := range records {
		resp.Totals.Points += r.Points
		resp.Totals.Participations++
		resp.Totals.TotalPaid += r.Paid
		resp.Totals.TotalReceived += r.Received
	}
	for i, row := range l.general {
		if row.PlayerID == id {
			resp.Player = &model.PlayerInfo{RankingRow: l.general[i], PlayingSince: records[0].Date}
			break
		}
	}
	for _, ref := range l.refs {
		rows := l.rankings[season.Key(ref.Year, ref.Season)]
		for pos, row := range rows {
			if row.PlayerID != id {
				continue
			}
			resp.Seasons = append(resp.Seasons, model.SeasonSummary{
				Year:           ref.Year,
				Season:         ref.Season,
				Points:         row.Points,
				Participations: row.Participations,
				P1:             row.P1,
				Podiums:        row.Podiums,
				BestHand:       row.BestHand,
				RebuyTotal:     row.RebuyTotal,
				Position:       model.Count(pos + 1),
			})
		}
	}
	return resp
}
