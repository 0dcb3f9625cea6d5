package models

// GameRow holds a team's cumulative record as of one completed game.
// Runs scored/allowed are season-to-date totals, not single-game scores.
type GameRow struct {
	Date        string `json:"date"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	RunsScored  int    `json:"runs_scored"`
	RunsAllowed int    `json:"runs_allowed"`
}

// SeasonRecord is the ordered per-game cumulative record for one team-season.
// Games[0] is game 1; rows are contiguous with no gaps for games actually
// played, and Wins+Losses of row N equals N+1.
type SeasonRecord struct {
	Team  string    `json:"team"`
	Year  int       `json:"year"`
	Games []GameRow `json:"games"`
}

// GamesPlayed returns the number of completed games in the record.
func (r *SeasonRecord) GamesPlayed() int {
	if r == nil {
		return 0
	}
	return len(r.Games)
}

// Row returns the cumulative row for 1-based game g.
func (r *SeasonRecord) Row(g int) (GameRow, bool) {
	if r == nil || g < 1 || g > len(r.Games) {
		return GameRow{}, false
	}
	return r.Games[g-1], true
}
