package chart

import (
	"bytes"
	"database/sql"
	"fmt"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"seasonmetrics/internal/stats"
)

type tableRow struct {
	Metric string
	Value  string
	Total  string
}

func fmt4(v float64) string { return fmt.Sprintf("%.4f", v) }

func fmtPace(v sql.NullFloat64) string {
	if !v.Valid {
		return "---"
	}
	return fmt4(v.Float64)
}

// metricsRows lays out the table body in the fixed order the feed has always
// used, blank separator row included.
func metricsRows(rep stats.DiffReport) []tableRow {
	return []tableRow{
		{"RD/G", fmt4(rep.RunDiffPerGame), fmt.Sprintf("%d", rep.RunDiff)},
		{"RD/G, match 2023OAK", fmtPace(rep.ReqPerGameOAK162), fmt.Sprintf("%d", stats.OAK2023Diff)},
		{"RD/G, match 1932BOS", fmtPace(rep.ReqPerGameBOS154), fmt.Sprintf("%d", stats.BOS1932Diff)},
		{"(154) RD/G, match 1932BOS", fmtPace(rep.ReqPerGameBOS154Modern), ""},
		{"G Remaining 162", fmt.Sprintf("%d", rep.GamesRemaining162), ""},
		{"G Remaining 154", fmt.Sprintf("%d", rep.GamesRemaining154), ""},
		{"", "", ""},
		{"Actual W%", fmt4(rep.WinPct), ""},
		{"Actual W", fmt.Sprintf("%d", rep.Wins), ""},
		{"Pythag W%", fmt4(rep.PythagPct), ""},
		{"Pythag W", fmt4(rep.PythagWins), ""},
		{"Pythag W% (BR)", fmt4(rep.PythagPctBR), ""},
		{"Pythag W (BR)", fmt4(rep.PythagWinsBR), ""},
	}
}

func fontFace(ttf []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: size}), nil
}

// MetricsTable renders the DiffReport as a table image with Metric, Value
// and Total columns and returns PNG bytes.
func MetricsTable(team string, year int, rep stats.DiffReport) ([]byte, error) {
	const (
		width      = 800
		height     = 800
		marginX    = 40.0
		titleH     = 80.0
		headerSize = 20.0
		cellSize   = 16.0
		titleSize  = 28.0
	)

	rows := metricsRows(rep)
	headers := []string{"Metric", "Value", "Total"}
	// Column split: wide metric label column, two value columns.
	colX := []float64{marginX, 440, 620, width - marginX}

	regular, err := fontFace(goregular.TTF, cellSize)
	if err != nil {
		return nil, err
	}
	bold, err := fontFace(gobold.TTF, headerSize)
	if err != nil {
		return nil, err
	}
	title, err := fontFace(gobold.TTF, titleSize)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)

	dc.SetFontFace(title)
	dc.DrawStringAnchored(fmt.Sprintf("%d %s RunDiff Metrics", year, team), width/2, titleH/2, 0.5, 0.5)

	tableTop := titleH
	tableBottom := float64(height) - 40
	rowH := (tableBottom - tableTop) / float64(len(rows)+1)

	// Header row
	dc.SetFontFace(bold)
	for i, h := range headers {
		cx := (colX[i] + colX[i+1]) / 2
		dc.DrawStringAnchored(h, cx, tableTop+rowH/2, 0.5, 0.5)
	}

	dc.SetFontFace(regular)
	for r, row := range rows {
		cy := tableTop + rowH*float64(r+1) + rowH/2
		// Metric labels right-aligned, values centered.
		dc.DrawStringAnchored(row.Metric, colX[1]-12, cy, 1, 0.5)
		dc.DrawStringAnchored(row.Value, (colX[1]+colX[2])/2, cy, 0.5, 0.5)
		dc.DrawStringAnchored(row.Total, (colX[2]+colX[3])/2, cy, 0.5, 0.5)
	}

	// Grid lines
	dc.SetLineWidth(1)
	for r := 0; r <= len(rows)+1; r++ {
		y := tableTop + rowH*float64(r)
		dc.DrawLine(marginX, y, width-marginX, y)
	}
	for _, x := range colX {
		dc.DrawLine(x, tableTop, x, tableBottom)
	}
	dc.Stroke()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode table chart: %w", err)
	}
	return buf.Bytes(), nil
}
