package runner

import (
	"fmt"

	"seasonmetrics/internal/models"
	"seasonmetrics/internal/stats"
)

// pairCaption narrates where the B season stands against the A season at
// game g. The three-way branch and its wording are part of the feed's voice;
// season B is always the rhetorical subject.
func pairCaption(pair *models.TrackedPair, g, winsA, winsB int) string {
	switch {
	case winsA > winsB:
		return fmt.Sprintf(
			"With %d game(s) in the books, the %s %d season is somehow worse at %d wins, "+
				"behind the %s %d season by %d win(s)."+
				"\n\n"+
				"No 'could always be' worse here. It *is* worse at this point.",
			g, pair.TeamB, pair.YearB, winsB, pair.TeamA, pair.YearA, winsA-winsB,
		)
	case winsA < winsB:
		return fmt.Sprintf(
			"Through %d game(s) played, the %s %d season is ahead with %d wins, "+
				"above the %s %d season by %d win(s)."+
				"\n\n"+
				"The grass, for now, is greener here. It could always be worse.",
			g, pair.TeamB, pair.YearB, winsB, pair.TeamA, pair.YearA, winsB-winsA,
		)
	default:
		return fmt.Sprintf(
			"After %d game(s), the %s %d season isn't better than the %s %d season at %d win(s) each."+
				"\n\n"+
				"But it also isn't worse.",
			g, pair.TeamB, pair.YearB, pair.TeamA, pair.YearA, winsA,
		)
	}
}

func pairAltText(pair *models.TrackedPair, g, winsA, winsB int) string {
	return fmt.Sprintf(
		"A step line plot comparing the wins of the %s %d season and the %s %d season. "+
			"The x-axis represents the number of games played (1 to %d), and the y-axis represents the number of wins. "+
			"The %s %d season is shown in %s, and the %s %d season is shown in %s. "+
			"After %d games, the %s %d season has %d wins, while the %s %d season has %d wins.",
		pair.TeamA, pair.YearA, pair.TeamB, pair.YearB,
		g,
		pair.TeamA, pair.YearA, pair.ColorA, pair.TeamB, pair.YearB, pair.ColorB,
		g, pair.TeamA, pair.YearA, winsA, pair.TeamB, pair.YearB, winsB,
	)
}

func diffCaption(team string, year int, rep stats.DiffReport) string {
	return fmt.Sprintf(
		"After %d game(s), the %s %d season has a run differential of %d."+
			"\n\n"+
			"The current W%% is %.4f,\n"+
			"Pythagorean W%% is %.4f, and\n"+
			"Pythagorean W%% (BRef) is %.4f.",
		rep.GamesPlayed, team, year, rep.RunDiff,
		rep.WinPct, rep.PythagPct, rep.PythagPctBR,
	)
}

func diffAltText(team string, year int) string {
	return fmt.Sprintf(
		"A table showing various metrics for the %s %d season.\n"+
			"The table includes run differential, games remaining, and Pythagorean win percentage "+
			"using regular (2) & baseball-reference.com's (1.83) exponent values).",
		team, year,
	)
}
