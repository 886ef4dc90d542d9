package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/pokerleague/internal/domain/model"
	"github.com/okian/pokerleague/internal/domain/ranking"
	"github.com/okian/pokerleague/internal/domain/season"
)

// League API actions.
const (
	ActionSeasons        = "anos_temporadas"
	ActionRounds         = "rodadas"
	ActionRanking        = "ranking"
	ActionGeneralRanking = "ranking_geral"
	ActionPlayer         = "jogador"
)

// SeasonRefs lists every (year, season) pair known to the league.
func (c *Client) SeasonRefs(ctx context.Context) ([]model.SeasonRef, error) {
	return getList[model.SeasonRef](ctx, c, ActionSeasons, nil)
}

// Rounds lists every played round.
func (c *Client) Rounds(ctx context.Context) ([]model.Round, error) {
	return getList[model.Round](ctx, c, ActionRounds, nil)
}

// SeasonRanking returns the sorted ranking of one season.
func (c *Client) SeasonRanking(ctx context.Context, year, seasonLabel string) ([]model.RankingRow, error) {
	rows, err := getList[model.RankingRow](ctx, c, ActionRanking, map[string]string{
		"ano":       year,
		"temporada": seasonLabel,
	})
	if err != nil {
		return nil, err
	}
	ranking.Sort(rows)
	return rows, nil
}

// GeneralRanking returns the sorted all-time ranking.
func (c *Client) GeneralRanking(ctx context.Context) ([]model.RankingRow, error) {
	rows, err := getList[model.RankingRow](ctx, c, ActionGeneralRanking, nil)
	if err != nil {
		return nil, err
	}
	ranking.Sort(rows)
	return rows, nil
}

// Player looks a player up. Season ALL selects the all-time variant.
// ErrPlayerNotFound is returned when the league reports ok=false or has no
// data for the player.
func (c *Client) Player(ctx context.Context, year, seasonLabel, playerID string) (*model.PlayerResponse, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, fmt.Errorf("%w: empty id", ErrPlayerNotFound)
	}
	body, err := c.get(ctx, ActionPlayer, map[string]string{
		"ano":        year,
		"temporada":  seasonLabel,
		"id_jogador": playerID,
	})
	if err != nil {
		return nil, err
	}

	resp, ok, err := decodePlayer(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, ActionPlayer, err)
	}

	missing := resp.Player == nil
	if seasonLabel != season.All {
		missing = missing && len(resp.History) == 0
	}
	if missing || (ok != nil && !bool(*ok)) {
		if resp.Message != "" {
			return nil, fmt.Errorf("%w: %s: %s", ErrPlayerNotFound, playerID, resp.Message)
		}
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	return resp, nil
}

// playerEnvelope holds the members a player answer may carry at top level.
type playerEnvelope struct {
	Data    json.RawMessage `json:"data"`
	OK      *model.Flag     `json:"ok"`
	Message string          `json:"message"`
}

// decodePlayer accepts the player object bare or inside a {"data": {...}}
// envelope. ok is the reported flag, nil when the league sent none; an
// inner ok or message wins over the top-level one.
func decodePlayer(body []byte) (*model.PlayerResponse, *model.Flag, error) {
	var env playerEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, nil, err
	}
	payload := body
	if d := bytes.TrimSpace(env.Data); len(d) > 0 && d[0] == '{' {
		payload = d
	}

	var inner struct {
		OK *model.Flag `json:"ok"`
	}
	if err := json.Unmarshal(payload, &inner); err != nil {
		return nil, nil, err
	}
	var resp model.PlayerResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, nil, err
	}

	ok := inner.OK
	if ok == nil {
		ok = env.OK
	}
	if ok != nil {
		resp.OK = *ok
	}
	if resp.Message == "" {
		resp.Message = env.Message
	}
	return &resp, ok, nil
}

func getList[T any](ctx context.Context, c *Client, action string, params map[string]string) ([]T, error) {
	body, err := c.get(ctx, action, params)
	if err != nil {
		return nil, err
	}
	out, err := decodeList[T](body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return out, nil
}

// decodeList accepts a bare array or a {"data": [...]} envelope. A missing
// or null list decodes to an empty slice.
func decodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	raw := json.RawMessage(trimmed)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		raw = env.Data
	}

	out := []T{}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
