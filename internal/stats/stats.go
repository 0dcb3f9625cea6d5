package stats

import (
	"database/sql"
	"math"

	"seasonmetrics/internal/models"
)

// Season length and benchmark constants.
const (
	TotalGamesModern = 162 // modern season length
	TotalGamesOlden  = 154 // pre-1961 season length

	// Worst full-season run differentials on record: 2023 Athletics over a
	// 162-game schedule and 1932 Red Sox over a 154-game schedule.
	OAK2023Diff = -339
	BOS1932Diff = -349
)

// Pythagorean exponents: the classic James exponent and the
// baseball-reference.com refinement.
const (
	PythagExponent   = 2.0
	PythagExponentBR = 1.83
)

// WinsAfter returns the cumulative win count at 1-based game g. A g outside
// [1, 162] or a missing row yields 0 rather than an error so comparisons
// degrade gracefully.
func WinsAfter(rec *models.SeasonRecord, g int) int {
	if g < 1 || g > TotalGamesModern {
		return 0
	}
	row, ok := rec.Row(g)
	if !ok {
		return 0
	}
	return row.Wins
}

// PythagoreanWinPct estimates win percentage from cumulative runs scored and
// allowed: rs^exp / (rs^exp + ra^exp). With ra == 0 the result is 1. Callers
// must not pass rs == ra == 0 (a zero-game season).
func PythagoreanWinPct(runsScored, runsAllowed, exponent float64) float64 {
	s := math.Pow(runsScored, exponent)
	a := math.Pow(runsAllowed, exponent)
	return s / (s + a)
}

// ComparisonSeries returns the win trajectories of both seasons through game
// g, one entry per game from 1 to g.
func ComparisonSeries(recA, recB *models.SeasonRecord, g int) ([]int, []int) {
	seriesA := make([]int, 0, g)
	seriesB := make([]int, 0, g)
	for i := 1; i <= g; i++ {
		seriesA = append(seriesA, WinsAfter(recA, i))
		seriesB = append(seriesB, WinsAfter(recB, i))
	}
	return seriesA, seriesB
}

// DiffReport aggregates run-differential metrics as of one game. The three
// required-pace figures are invalid once the corresponding remaining-games
// denominator reaches zero; they never carry NaN or Inf.
type DiffReport struct {
	GamesPlayed int
	Wins        int
	RunsScored  int
	RunsAllowed int

	RunDiff        int
	RunDiffPerGame float64

	GamesRemaining162 int
	GamesRemaining154 int

	// Per-remaining-game differential needed to finish at the benchmark.
	ReqPerGameOAK162       sql.NullFloat64 // match 2023 OAK over 162
	ReqPerGameBOS154       sql.NullFloat64 // match 1932 BOS over 154
	ReqPerGameBOS154Modern sql.NullFloat64 // match 1932 BOS over the 162 denominator

	WinPct       float64
	PythagPct    float64
	PythagWins   float64
	PythagPctBR  float64
	PythagWinsBR float64
}

// Differential computes the DiffReport for rec as of 1-based game g. The
// caller must have validated 1 <= g <= rec.GamesPlayed().
func Differential(rec *models.SeasonRecord, g int) DiffReport {
	row, _ := rec.Row(g)

	rep := DiffReport{
		GamesPlayed: g,
		Wins:        row.Wins,
		RunsScored:  row.RunsScored,
		RunsAllowed: row.RunsAllowed,
	}
	rep.RunDiff = row.RunsScored - row.RunsAllowed
	rep.RunDiffPerGame = float64(rep.RunDiff) / float64(g)

	rep.GamesRemaining162 = remaining(TotalGamesModern, g)
	rep.GamesRemaining154 = remaining(TotalGamesOlden, g)

	rep.ReqPerGameOAK162 = requiredPace(OAK2023Diff, rep.RunDiff, rep.GamesRemaining162)
	rep.ReqPerGameBOS154 = requiredPace(BOS1932Diff, rep.RunDiff, rep.GamesRemaining154)
	rep.ReqPerGameBOS154Modern = requiredPace(BOS1932Diff, rep.RunDiff, rep.GamesRemaining162)

	rep.WinPct = float64(row.Wins) / float64(g)
	rep.PythagPct = PythagoreanWinPct(float64(row.RunsScored), float64(row.RunsAllowed), PythagExponent)
	rep.PythagWins = rep.PythagPct * float64(g)
	rep.PythagPctBR = PythagoreanWinPct(float64(row.RunsScored), float64(row.RunsAllowed), PythagExponentBR)
	rep.PythagWinsBR = rep.PythagPctBR * float64(g)

	return rep
}

func remaining(total, played int) int {
	if total > played {
		return total - played
	}
	return 0
}

func requiredPace(benchmark, current, gamesLeft int) sql.NullFloat64 {
	if gamesLeft <= 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{
		Float64: float64(benchmark-current) / float64(gamesLeft),
		Valid:   true,
	}
}
