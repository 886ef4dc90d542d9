// Package chart renders player history charts as SVG.
package chart

import (
	"bytes"
	"fmt"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/pokerleague/internal/domain/stats"
)

// Palette holds the chart colours.
type Palette struct {
	Background drawing.Color
	Text       drawing.Color
	Primary    drawing.Color
	Secondary  drawing.Color
	Accent     drawing.Color
}

// DefaultPalette matches the dashboard's dark theme.
func DefaultPalette() Palette {
	return Palette{
		Background: drawing.ColorFromHex("0b1220"),
		Text:       drawing.ColorFromHex("e6edf7"),
		Primary:    drawing.ColorFromHex("3ddc97"),
		Secondary:  drawing.ColorFromHex("f5c542"),
		Accent:     drawing.ColorFromHex("ffffff"),
	}
}

type config struct {
	width, height int
	palette       Palette
}

// Option customises a rendered chart.
type Option func(*config)

// WithSize sets the canvas size in pixels.
func WithSize(width, height int) Option {
	return func(c *config) {
		if width > 0 && height > 0 {
			c.width, c.height = width, height
		}
	}
}

// WithPalette replaces the colours.
func WithPalette(p Palette) Option {
	return func(c *config) {
		c.palette = p
	}
}

func newConfig(opts []Option) config {
	c := config{width: 720, height: 260, palette: DefaultPalette()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// SeasonHistory draws approximate efficiency per season on the left axis and
// the final ranking position on an inverted right axis, so first place sits
// at the top. Seasons without a known position are left off that line.
func SeasonHistory(points []stats.SeasonPoint, opts ...Option) ([]byte, error) {
	c := newConfig(opts)
	if len(points) == 0 {
		return placeholder(c, "Sem temporadas registradas")
	}

	xs := make([]float64, len(points))
	effs := make([]float64, len(points))
	ticks := make([]gochart.Tick, len(points))
	var posX, posY []float64
	maxEff, maxPos := 0.0, 1.0
	for i, p := range points {
		xs[i] = float64(i)
		effs[i] = p.Efficiency
		ticks[i] = gochart.Tick{Value: float64(i), Label: p.Key}
		maxEff = max(maxEff, p.Efficiency)
		if p.Position > 0 {
			posX = append(posX, float64(i))
			posY = append(posY, float64(p.Position))
			maxPos = max(maxPos, float64(p.Position))
		}
	}

	series := []gochart.Series{
		gochart.ContinuousSeries{
			Name:    "Eficiência",
			XValues: xs,
			YValues: effs,
			Style:   lineStyle(c.palette.Primary, c.palette.Accent),
		},
	}
	graph := baseChart(c, ticks)
	graph.YAxis = gochart.YAxis{
		Name:           "Eficiência",
		Style:          textStyle(c),
		ValueFormatter: decimal,
		Range:          &gochart.ContinuousRange{Min: 0, Max: padded(maxEff)},
	}
	if len(posX) > 0 {
		series = append(series, gochart.ContinuousSeries{
			Name:    "Posição",
			YAxis:   gochart.YAxisSecondary,
			XValues: posX,
			YValues: posY,
			Style:   lineStyle(c.palette.Secondary, c.palette.Accent),
		})
		graph.YAxisSecondary = gochart.YAxis{
			Name:           "Posição",
			Style:          textStyle(c),
			ValueFormatter: ordinal,
			Range:          &gochart.ContinuousRange{Min: 1, Max: max(maxPos, 2), Descending: true},
		}
	}
	graph.Series = series
	graph.Elements = []gochart.Renderable{gochart.LegendThin(&graph)}
	return render(graph)
}

// RoundHistory draws the running points of one season, round by round.
func RoundHistory(points []stats.RoundPoint, opts ...Option) ([]byte, error) {
	c := newConfig(opts)
	if len(points) == 0 {
		return placeholder(c, "Sem rodadas registradas")
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	ticks := make([]gochart.Tick, len(points))
	maxPts := 0.0
	for i, p := range points {
		xs[i] = float64(i)
		ys[i] = float64(p.Points)
		ticks[i] = gochart.Tick{Value: float64(i), Label: p.Label}
		maxPts = max(maxPts, float64(p.Points))
	}

	graph := baseChart(c, ticks)
	graph.YAxis = gochart.YAxis{
		Name:  "Pontos",
		Style: textStyle(c),
		Range: &gochart.ContinuousRange{Min: 0, Max: padded(maxPts)},
	}
	graph.Series = []gochart.Series{
		gochart.ContinuousSeries{
			Name:    "Pontos acumulados",
			XValues: xs,
			YValues: ys,
			Style:   lineStyle(c.palette.Primary, c.palette.Accent),
		},
	}
	return render(graph)
}

func baseChart(c config, ticks []gochart.Tick) gochart.Chart {
	return gochart.Chart{
		Width:      c.width,
		Height:     c.height,
		Background: gochart.Style{FillColor: c.palette.Background, Padding: gochart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		Canvas:     gochart.Style{FillColor: c.palette.Background},
		XAxis: gochart.XAxis{
			Style: textStyle(c),
			Ticks: ticks,
			Range: &gochart.ContinuousRange{Min: 0, Max: max(1, float64(len(ticks)-1))},
		},
	}
}

func textStyle(c config) gochart.Style {
	return gochart.Style{FontColor: c.palette.Text, StrokeColor: c.palette.Text}
}

func lineStyle(stroke, dot drawing.Color) gochart.Style {
	return gochart.Style{StrokeColor: stroke, StrokeWidth: 2, DotColor: dot, DotWidth: 3}
}

// placeholder renders msg on an empty canvas. go-chart needs a series, so a
// hidden one is drawn.
func placeholder(c config, msg string) ([]byte, error) {
	graph := gochart.Chart{
		Width:      c.width,
		Height:     c.height,
		Background: gochart.Style{FillColor: c.palette.Background},
		Canvas:     gochart.Style{FillColor: c.palette.Background},
		XAxis:      gochart.XAxis{Style: gochart.Style{Hidden: true}},
		YAxis:      gochart.YAxis{Style: gochart.Style{Hidden: true}},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Style:   gochart.Style{Hidden: true},
				XValues: []float64{0, 1},
				YValues: []float64{0, 1},
			},
		},
		Elements: []gochart.Renderable{
			func(r gochart.Renderer, cb gochart.Box, _ gochart.Style) {
				r.SetFontColor(c.palette.Text)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				r.Text(msg, (c.width-tb.Width())/2, (c.height+tb.Height())/2)
			},
		},
	}
	return render(graph)
}

func render(graph gochart.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := graph.Render(gochart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// padded leaves headroom above the highest value and never returns 0.
func padded(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v * 1.15
}

func decimal(v interface{}) string {
	f, _ := v.(float64)
	return strings.Replace(fmt.Sprintf("%.1f", f), ".", ",", 1)
}

func ordinal(v interface{}) string {
	f, _ := v.(float64)
	return fmt.Sprintf("%.0fº", f)
}
