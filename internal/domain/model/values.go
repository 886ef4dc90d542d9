package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Count is a non-negative integer counter decoded leniently from the data
// provider. Numbers, numeric strings, empty strings and null are accepted;
// anything missing or unparsable decodes to 0 and negatives clamp to 0.
type Count int64

// UnmarshalJSON implements json.Unmarshaler.
func (c *Count) UnmarshalJSON(b []byte) error {
	f, ok := parseNumber(b)
	if !ok || f < 0 {
		*c = 0
		return nil
	}
	*c = Count(math.Round(f))
	return nil
}

// Int returns the counter as an int.
func (c Count) Int() int { return int(c) }

// Float returns the counter as a float64.
func (c Count) Float() float64 { return float64(c) }

// Amount is a signed money value (BRL) decoded with the same leniency as Count.
type Amount float64

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	f, ok := parseNumber(b)
	if !ok {
		f = 0
	}
	*a = Amount(f)
	return nil
}

// Flag is a boolean that also accepts spreadsheet spellings such as "TRUE",
// "sim", "x" and 1.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("true")):
		*f = true
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*f = false
			return nil
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "sim", "s", "yes", "y", "x", "1":
			*f = true
		default:
			*f = false
		}
	default:
		n, ok := parseNumber(b)
		*f = Flag(ok && n != 0)
	}
	return nil
}

// Text is a label that may arrive as a JSON string or number (years, season
// and round labels typed into a spreadsheet).
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		*t = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(strings.TrimSpace(s))
	default:
		*t = Text(b)
	}
	return nil
}

func parseNumber(b []byte) (float64, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return 0, false
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return 0, false
		}
		// pt-BR spreadsheets export "12,5".
		s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	}
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
