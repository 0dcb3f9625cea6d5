// Command manualfetch fetches one team-season and prints its record and
// run-differential metrics without posting anything. Use it to sanity-check
// the data source and the chart output before pointing a tracker at a
// season.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"seasonmetrics/internal/chart"
	"seasonmetrics/internal/client"
	"seasonmetrics/internal/config"
	"seasonmetrics/internal/models"
	"seasonmetrics/internal/stats"

	"github.com/rs/zerolog/log"
)

func main() {
	var (
		team    = flag.String("team", "", "team abbreviation (e.g. OAK)")
		year    = flag.Int("year", 0, "season year")
		game    = flag.Int("game", 0, "game index to report at (default: last completed game)")
		pngPath = flag.String("png", "", "write the metrics table chart to this file")
	)
	flag.Parse()

	if *team == "" || *year == 0 {
		flag.Usage()
		os.Exit(1)
	}

	settings := config.MustLoad()
	mlb := client.NewClient(settings.StatsAPIBaseURL, settings.StatsAPITimeout)

	ctx := context.Background()
	rec, err := mlb.FetchSeason(ctx, *year, *team)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch season")
	}

	g := *game
	if g == 0 {
		g = rec.GamesPlayed()
	}
	if g < 1 || g > rec.GamesPlayed() {
		log.Fatal().
			Int("game", g).
			Int("completed", rec.GamesPlayed()).
			Msg("Game index out of range")
	}

	printReport(rec, g)

	if *pngPath != "" {
		rep := stats.Differential(rec, g)
		img, err := chart.MetricsTable(*team, *year, rep)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to render chart")
		}
		if err := os.WriteFile(*pngPath, img, 0o644); err != nil {
			log.Fatal().Err(err).Msg("Failed to write chart")
		}
		log.Info().Str("path", *pngPath).Msg("Chart written")
	}
}

func printReport(rec *models.SeasonRecord, g int) {
	row, _ := rec.Row(g)
	rep := stats.Differential(rec, g)

	fmt.Printf("%s %d through game %d (%d completed)\n", rec.Team, rec.Year, g, rec.GamesPlayed())
	fmt.Printf("  Record:        %d-%d\n", row.Wins, row.Losses)
	fmt.Printf("  Runs:          %d scored, %d allowed (diff %+d)\n", row.RunsScored, row.RunsAllowed, rep.RunDiff)
	fmt.Printf("  RD/G:          %.4f\n", rep.RunDiffPerGame)
	fmt.Printf("  W%%:            %.4f\n", rep.WinPct)
	fmt.Printf("  Pythag W%%:     %.4f (%.4f wins)\n", rep.PythagPct, rep.PythagWins)
	fmt.Printf("  Pythag W%% BR:  %.4f (%.4f wins)\n", rep.PythagPctBR, rep.PythagWinsBR)
	fmt.Printf("  Remaining:     %d of 162, %d of 154\n", rep.GamesRemaining162, rep.GamesRemaining154)
	if rep.ReqPerGameOAK162.Valid {
		fmt.Printf("  RD/G to match 2023 OAK: %.4f\n", rep.ReqPerGameOAK162.Float64)
	}
	if rep.ReqPerGameBOS154.Valid {
		fmt.Printf("  RD/G to match 1932 BOS: %.4f\n", rep.ReqPerGameBOS154.Float64)
	}
}
