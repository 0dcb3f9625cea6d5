package models

// TrackedPair is an ongoing comparison between two team-seasons. GamesPlayed
// is the last game index already reported; the runner bumps it only after a
// successful post.
type TrackedPair struct {
	TeamA       string `yaml:"teamA"`
	YearA       int    `yaml:"yearA"`
	ColorA      string `yaml:"colorA"`
	TeamB       string `yaml:"teamB"`
	YearB       int    `yaml:"yearB"`
	ColorB      string `yaml:"colorB"`
	GamesPlayed int    `yaml:"games_played"`
}

// TrackedDiff is an ongoing run-differential tracker for one team-season.
type TrackedDiff struct {
	Team        string `yaml:"team"`
	Year        int    `yaml:"year"`
	GamesPlayed int    `yaml:"games_played"`
}

// Config is the mutable tracker document, loaded at run start and written
// back with advanced cursors.
type Config struct {
	Pairs []*TrackedPair `yaml:"pairs"`
	Diffs []*TrackedDiff `yaml:"diffs"`
}

// Secrets holds the Bluesky credentials. Read-only, never written back.
type Secrets struct {
	Bluesky BlueskyCredentials `yaml:"bluesky"`
}

// BlueskyCredentials is the handle/app-password pair used to create a session.
type BlueskyCredentials struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}
