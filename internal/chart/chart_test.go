package chart

import (
	"database/sql"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seasonmetrics/internal/models"
	"seasonmetrics/internal/stats"
)

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func testPair() *models.TrackedPair {
	return &models.TrackedPair{
		TeamA: "OAK", YearA: 2023, ColorA: "green",
		TeamB: "ATH", YearB: 2025, ColorB: "gold",
	}
}

func TestStepChart(t *testing.T) {
	seriesA := []int{1, 1, 2, 3, 3, 4, 4, 4, 5, 5}
	seriesB := []int{0, 1, 1, 1, 2, 2, 3, 4, 4, 5}

	img, err := StepChart(testPair(), 10, seriesA, seriesB)
	require.NoError(t, err)
	require.Greater(t, len(img), len(pngMagic))
	assert.Equal(t, pngMagic, img[:len(pngMagic)])
}

func TestStepChart_SeriesLengthMismatch(t *testing.T) {
	_, err := StepChart(testPair(), 10, []int{1, 2}, []int{1, 2})
	assert.Error(t, err)
}

func TestMetricsTable(t *testing.T) {
	rep := stats.DiffReport{
		GamesPlayed:            40,
		Wins:                   9,
		RunDiff:                -128,
		RunDiffPerGame:         -3.2,
		GamesRemaining162:      122,
		GamesRemaining154:      114,
		ReqPerGameOAK162:       sql.NullFloat64{Float64: -1.7295, Valid: true},
		ReqPerGameBOS154:       sql.NullFloat64{Float64: -1.9386, Valid: true},
		ReqPerGameBOS154Modern: sql.NullFloat64{Float64: -1.8115, Valid: true},
		WinPct:                 0.225,
		PythagPct:              0.2891,
		PythagWins:             11.564,
		PythagPctBR:            0.3012,
		PythagWinsBR:           12.048,
	}

	img, err := MetricsTable("COL", 2025, rep)
	require.NoError(t, err)
	require.Greater(t, len(img), len(pngMagic))
	assert.Equal(t, pngMagic, img[:len(pngMagic)])
}

func TestMetricsRows_Sentinels(t *testing.T) {
	rep := stats.DiffReport{GamesPlayed: 162, RunDiff: -200}
	rows := metricsRows(rep)
	require.Len(t, rows, 13)

	// Required-pace figures render the NA sentinel when the season is over.
	assert.Equal(t, "---", rows[1].Value)
	assert.Equal(t, "---", rows[2].Value)
	assert.Equal(t, "---", rows[3].Value)
	assert.Equal(t, "-339", rows[1].Total)
	assert.Equal(t, "-349", rows[2].Total)

	// Separator row stays blank.
	assert.Equal(t, tableRow{}, rows[6])
}

func TestParseColor(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 0xFF, A: 0xFF}, parseColor("red", color.RGBA{}))
	assert.Equal(t, color.RGBA{B: 0xFF, A: 0xFF}, parseColor("Blue", color.RGBA{}))

	fallback := color.RGBA{R: 1, G: 2, B: 3, A: 0xFF}
	assert.Equal(t, fallback, parseColor("no-such-color", fallback))
}
