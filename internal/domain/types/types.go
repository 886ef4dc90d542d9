// Package types contains common types used across the application
package types

import "github.com/okian/pokerleague/internal/domain/model"

// RankedRow is a ranking line with its tie-aware display rank.
type RankedRow struct {
	Rank int `json:"rank"`
	model.RankingRow
}

// SectionError is the inline error a view section carries when its data
// could not be loaded. Other sections of the same view are unaffected.
type SectionError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RoundKPIs are the headline numbers of a round selection.
type RoundKPIs struct {
	Rounds    int          `json:"rodadas"`
	PrizePool model.Amount `json:"prizepool"`
	Players   int          `json:"jogadores"`
}

// Section is one independently loaded part of a view. Error is set when the
// data could not be loaded; Data then holds its zero value.
type Section[T any] struct {
	Data  T             `json:"data"`
	Error *SectionError `json:"error,omitempty"`
}

// OK reports whether the section loaded.
func (s Section[T]) OK() bool {
	return s.Error == nil
}
