// Package season resolves (year, season) filter selections into the concrete
// season pairs whose rankings must be fetched and merged.
package season

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/pokerleague/internal/domain/model"
)

// All is the wildcard value for both the year and the season axis.
const All = "ALL"

// Selection is a filter over the year and season axes.
type Selection struct {
	Year   string `json:"ano"`
	Season string `json:"temporada"`
}

// AllTime selects every season of every year.
func AllTime() Selection {
	return Selection{Year: All, Season: All}
}

// Normalized replaces empty axes with the wildcard.
func (s Selection) Normalized() Selection {
	if strings.TrimSpace(s.Year) == "" {
		s.Year = All
	}
	if strings.TrimSpace(s.Season) == "" {
		s.Season = All
	}
	return s
}

// WithYear selects a year. The season is reset to the wildcard, so a season
// label that does not exist in the new year is never requested.
func (s Selection) WithYear(year string) Selection {
	return Selection{Year: year, Season: All}
}

// WithSeason selects a season label and keeps the year.
func (s Selection) WithSeason(season string) Selection {
	return Selection{Year: s.Year, Season: season}
}

// Single reports whether the selection names exactly one season pair.
func (s Selection) Single() bool {
	return s.Year != All && s.Season != All
}

// Matches reports whether a (year, season) pair falls inside the selection.
func (s Selection) Matches(year, season string) bool {
	return (s.Year == All || s.Year == year) && (s.Season == All || s.Season == season)
}

// Resolve returns the season pairs covered by sel, in option order and
// without duplicates.
//
//   - year X, season S: [(X, S)] even when the pair is not listed
//   - year ALL, season S: every year that has S
//   - year X, season ALL: every season of X
//   - ALL, ALL: every pair
func Resolve(options []model.SeasonRef, sel Selection) []model.SeasonRef {
	sel = sel.Normalized()
	if sel.Single() {
		return []model.SeasonRef{{Year: sel.Year, Season: sel.Season}}
	}

	seen := make(map[model.SeasonRef]struct{}, len(options))
	out := make([]model.SeasonRef, 0, len(options))
	for _, o := range options {
		if !sel.Matches(o.Year, o.Season) {
			continue
		}
		if _, dup := seen[o]; dup {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out
}

// Latest returns the default selection: the greatest year and, within it,
// the greatest season label, both in plain string order. With no options it
// returns AllTime.
func Latest(options []model.SeasonRef) Selection {
	if len(options) == 0 {
		return AllTime()
	}
	last := slices.MaxFunc(options, func(a, b model.SeasonRef) int {
		if c := cmp.Compare(a.Year, b.Year); c != 0 {
			return c
		}
		return cmp.Compare(a.Season, b.Season)
	})
	return Selection{Year: last.Year, Season: last.Season}
}

// Catalog lists the values a season filter can offer.
type Catalog struct {
	Years         []string            `json:"anos"`
	SeasonsByYear map[string][]string `json:"temporadas_por_ano"`
	Seasons       []string            `json:"temporadas"`
}

// NewCatalog builds a Catalog with every list sorted and de-duplicated.
func NewCatalog(options []model.SeasonRef) Catalog {
	c := Catalog{
		Years:         []string{},
		SeasonsByYear: map[string][]string{},
		Seasons:       []string{},
	}
	for _, o := range options {
		c.Years = append(c.Years, o.Year)
		c.Seasons = append(c.Seasons, o.Season)
		c.SeasonsByYear[o.Year] = append(c.SeasonsByYear[o.Year], o.Season)
	}
	c.Years = sortedUnique(c.Years)
	c.Seasons = sortedUnique(c.Seasons)
	for y, s := range c.SeasonsByYear {
		c.SeasonsByYear[y] = sortedUnique(s)
	}
	return c
}

// YearOptions returns the selectable years, optionally led by the wildcard.
func (c Catalog) YearOptions(allowAll bool) []string {
	return withAll(c.Years, allowAll)
}

// SeasonOptions returns the seasons selectable for year: every season when
// year is the wildcard, otherwise that year's seasons.
func (c Catalog) SeasonOptions(year string, allowAll bool) []string {
	if year == All {
		return withAll(c.Seasons, allowAll)
	}
	return withAll(c.SeasonsByYear[year], allowAll)
}

func withAll(values []string, allowAll bool) []string {
	out := make([]string, 0, len(values)+1)
	if allowAll {
		out = append(out, All)
	}
	return append(out, values...)
}

func sortedUnique(values []string) []string {
	out := slices.Clone(values)
	slices.Sort(out)
	return slices.Compact(out)
}

var (
	digitsOnly   = regexp.MustCompile(`^\d+$`)
	prefixedT    = regexp.MustCompile(`^[tT]\d+$`)
	firstNumber  = regexp.MustCompile(`\d+`)
	nonDigitRune = regexp.MustCompile(`\D`)
)

// Normalize canonicalises a season label: "1" and "t1" become "T1"; other
// labels are only trimmed.
func Normalize(label string) string {
	s := strings.TrimSpace(label)
	switch {
	case digitsOnly.MatchString(s):
		return "T" + s
	case prefixedT.MatchString(s):
		return "T" + nonDigitRune.ReplaceAllString(s, "")
	default:
		return s
	}
}

// Number extracts the first number of a season label ("T3" -> 3), 0 if none.
func Number(label string) int {
	m := firstNumber.FindString(label)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// Key joins a year and season label into "year-season".
func Key(year, season string) string {
	return year + "-" + season
}

// SplitKey undoes Key. The season part keeps any further dashes.
func SplitKey(key string) (year, season string) {
	year, season, _ = strings.Cut(key, "-")
	return year, season
}

// SortKeysDesc orders season keys newest first: numeric year descending,
// then season number descending. The input is not modified.
func SortKeysDesc(keys []string) []string {
	out := slices.Clone(keys)
	slices.SortStableFunc(out, func(a, b string) int {
		ay, as := SplitKey(a)
		by, bs := SplitKey(b)
		if c := cmp.Compare(yearNumber(by), yearNumber(ay)); c != 0 {
			return c
		}
		return cmp.Compare(Number(bs), Number(as))
	})
	return out
}

func yearNumber(y string) int {
	n, err := strconv.Atoi(strings.TrimSpace(y))
	if err != nil {
		return 0
	}
	return n
}
