// Package chart renders the comparison step plot and the run-differential
// metrics table to PNG bytes.
package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"seasonmetrics/internal/models"
)

// parseColor maps a configured color name to an RGBA value, defaulting when
// the name is unknown.
func parseColor(name string, fallback color.RGBA) color.RGBA {
	if c, ok := colornames.Map[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c
	}
	return fallback
}

// integerTicks keeps axis ticks on whole numbers, like games and wins.
type integerTicks struct{}

func (integerTicks) Ticks(min, max float64) []plot.Tick {
	lo := int(math.Ceil(min))
	hi := int(math.Floor(max))
	if hi < lo {
		return nil
	}
	step := 1
	if n := hi - lo; n > 10 {
		step = (n + 9) / 10
	}
	var ticks []plot.Tick
	for v := lo; v <= hi; v += step {
		ticks = append(ticks, plot.Tick{Value: float64(v), Label: fmt.Sprintf("%d", v)})
	}
	return ticks
}

// StepChart draws the two win trajectories through game g as mid-step lines
// and returns the plot as PNG bytes.
func StepChart(pair *models.TrackedPair, g int, seriesA, seriesB []int) ([]byte, error) {
	if len(seriesA) != g || len(seriesB) != g || g < 1 {
		return nil, fmt.Errorf("series length must equal games played %d", g)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Wins Comparison: %s %d vs %s %d Seasons", pair.TeamA, pair.YearA, pair.TeamB, pair.YearB)
	p.X.Label.Text = "Games Played"
	p.Y.Label.Text = "Wins"
	p.X.Tick.Marker = integerTicks{}
	p.Y.Tick.Marker = integerTicks{}
	p.Add(plotter.NewGrid())

	lineA, err := stepLine(seriesA, parseColor(pair.ColorA, colornames.Red))
	if err != nil {
		return nil, err
	}
	lineB, err := stepLine(seriesB, parseColor(pair.ColorB, colornames.Blue))
	if err != nil {
		return nil, err
	}
	p.Add(lineA, lineB)
	p.Legend.Add(fmt.Sprintf("%s %d Season", pair.TeamA, pair.YearA), lineA)
	p.Legend.Add(fmt.Sprintf("%s %d Season", pair.TeamB, pair.YearB), lineB)
	p.Legend.Top = true
	p.Legend.Left = true

	p.X.Min = 1
	p.X.Max = float64(g)
	p.Y.Min = 0
	p.Y.Max = float64(maxWins(seriesA, seriesB) + 1)

	wt, err := p.WriterTo(8*vg.Inch, 8*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to render step chart: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode step chart: %w", err)
	}
	return buf.Bytes(), nil
}

func stepLine(series []int, c color.RGBA) (*plotter.Line, error) {
	xys := make(plotter.XYs, len(series))
	for i, wins := range series {
		xys[i].X = float64(i + 1)
		xys[i].Y = float64(wins)
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fmt.Errorf("failed to build line: %w", err)
	}
	line.StepStyle = plotter.MidStep
	line.Color = c
	line.Width = vg.Points(2)
	return line, nil
}

func maxWins(a, b []int) int {
	max := 0
	for _, v := range a {
		if v > max {
			max = v
		}
	}
	for _, v := range b {
		if v > max {
			max = v
		}
	}
	return max
}
