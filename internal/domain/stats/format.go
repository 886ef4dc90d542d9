package stats

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ptBR = message.NewPrinter(language.BrazilianPortuguese) //nolint:gochecknoglobals // shared read-only printer

// FormatBRL renders a money value in pt-BR currency style, e.g. "R$ 1.234,50".
func FormatBRL(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + "R$ " + ptBR.Sprintf("%.2f", v)
}

// FormatPercent renders a ratio as a pt-BR percentage with at most one
// decimal, e.g. 0.125 -> "12,5%".
func FormatPercent(ratio float64) string {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		ratio = 0
	}
	s := ptBR.Sprintf("%.1f", math.Round(ratio*1000)/10)
	return strings.TrimSuffix(s, ",0") + "%"
}
