package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"seasonmetrics/internal/models"
)

// SeasonProvider is the season-data contract the runner depends on.
type SeasonProvider interface {
	FetchSeason(ctx context.Context, year int, team string) (*models.SeasonRecord, error)
}

// FetchError wraps a season-data failure. The runner logs it and skips the
// tracker rather than aborting the run.
type FetchError struct {
	Team string
	Year int
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s %d: %v", e.Team, e.Year, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client fetches season schedules from the MLB Stats API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration

	// abbreviation -> team ID, per season year, resolved lazily
	teamIDs map[int]map[string]int
}

// NewClient creates a new MLB Stats API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxRetries: 3,
		retryDelay: 1 * time.Second,
		teamIDs:    make(map[int]map[string]int),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// get performs a GET request with retry logic and exponential backoff.
func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying API request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "season-metrics-bot/1.0")

		if len(params) > 0 {
			q := req.URL.Query()
			for key, value := range params {
				q.Add(key, value)
			}
			req.URL.RawQuery = q.Encode()
		}

		log.Debug().
			Str("url", url).
			Int("attempt", attempt+1).
			Msg("Making API request")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("API request failed: %w", err)
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK:
			log.Debug().
				Str("url", url).
				Int("status", resp.StatusCode).
				Int("size", len(body)).
				Msg("API request successful")
			return body, nil

		case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			lastErr = fmt.Errorf("API returned retryable status %d: %s", resp.StatusCode, string(body))
			if attempt < c.maxRetries {
				log.Warn().
					Str("url", url).
					Int("status", resp.StatusCode).
					Int("attempt", attempt+1).
					Msg("Received retryable error, will retry")
				continue
			}
			return nil, lastErr

		default:
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
	}

	return nil, lastErr
}

// teamsResponse is the /teams payload subset we need.
type teamsResponse struct {
	Teams []struct {
		ID           int    `json:"id"`
		Abbreviation string `json:"abbreviation"`
	} `json:"teams"`
}

// scheduleResponse is the /schedule payload subset we need.
type scheduleResponse struct {
	Dates []struct {
		Date  string `json:"date"`
		Games []struct {
			OfficialDate string `json:"officialDate"`
			Status       struct {
				CodedGameState string `json:"codedGameState"`
			} `json:"status"`
			Teams struct {
				Home scheduleSide `json:"home"`
				Away scheduleSide `json:"away"`
			} `json:"teams"`
		} `json:"games"`
	} `json:"dates"`
}

type scheduleSide struct {
	Score int `json:"score"`
	Team  struct {
		ID int `json:"id"`
	} `json:"team"`
}

// resolveTeamID maps a team abbreviation (OAK, BOS, ...) to the Stats API
// team ID for a given season year. Franchise IDs are stable but
// abbreviations change across seasons, so the lookup is per year.
func (c *Client) resolveTeamID(ctx context.Context, year int, team string) (int, error) {
	if ids, ok := c.teamIDs[year]; ok {
		if id, ok := ids[strings.ToUpper(team)]; ok {
			return id, nil
		}
		return 0, fmt.Errorf("unknown team %q for season %d", team, year)
	}

	body, err := c.get(ctx, "teams", map[string]string{
		"sportId": "1",
		"season":  fmt.Sprintf("%d", year),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to fetch teams: %w", err)
	}

	var tr teamsResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return 0, fmt.Errorf("failed to unmarshal teams: %w", err)
	}

	ids := make(map[string]int, len(tr.Teams))
	for _, t := range tr.Teams {
		ids[strings.ToUpper(t.Abbreviation)] = t.ID
	}
	c.teamIDs[year] = ids

	id, ok := ids[strings.ToUpper(team)]
	if !ok {
		return 0, fmt.Errorf("unknown team %q for season %d", team, year)
	}
	return id, nil
}

// FetchSeason fetches the regular-season schedule for one team-year and
// folds the completed games, in order, into a cumulative SeasonRecord.
func (c *Client) FetchSeason(ctx context.Context, year int, team string) (*models.SeasonRecord, error) {
	teamID, err := c.resolveTeamID(ctx, year, team)
	if err != nil {
		return nil, &FetchError{Team: team, Year: year, Err: err}
	}

	body, err := c.get(ctx, "schedule", map[string]string{
		"sportId":  "1",
		"season":   fmt.Sprintf("%d", year),
		"teamId":   fmt.Sprintf("%d", teamID),
		"gameType": "R",
	})
	if err != nil {
		return nil, &FetchError{Team: team, Year: year, Err: err}
	}

	var sr scheduleResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, &FetchError{Team: team, Year: year, Err: fmt.Errorf("failed to unmarshal schedule: %w", err)}
	}

	rec := foldSchedule(&sr, teamID, team, year)
	log.Info().
		Str("team", team).
		Int("year", year).
		Int("games", rec.GamesPlayed()).
		Msg("Season record fetched")
	return rec, nil
}

// foldSchedule turns final games into cumulative rows. Rare no-decision
// games (ties, abandoned) are excluded so wins+losses stays equal to the
// game number.
func foldSchedule(sr *scheduleResponse, teamID int, team string, year int) *models.SeasonRecord {
	type finalGame struct {
		date        string
		runsScored  int
		runsAllowed int
	}

	var finals []finalGame
	for _, d := range sr.Dates {
		for _, g := range d.Games {
			if g.Status.CodedGameState != "F" {
				continue
			}
			var us, them scheduleSide
			if g.Teams.Home.Team.ID == teamID {
				us, them = g.Teams.Home, g.Teams.Away
			} else {
				us, them = g.Teams.Away, g.Teams.Home
			}
			if us.Score == them.Score {
				continue
			}
			date := g.OfficialDate
			if date == "" {
				date = d.Date
			}
			finals = append(finals, finalGame{date: date, runsScored: us.Score, runsAllowed: them.Score})
		}
	}

	sort.SliceStable(finals, func(i, j int) bool { return finals[i].date < finals[j].date })

	rec := &models.SeasonRecord{Team: team, Year: year, Games: make([]models.GameRow, 0, len(finals))}
	var wins, losses, scored, allowed int
	for _, fg := range finals {
		if fg.runsScored > fg.runsAllowed {
			wins++
		} else {
			losses++
		}
		scored += fg.runsScored
		allowed += fg.runsAllowed
		rec.Games = append(rec.Games, models.GameRow{
			Date:        fg.date,
			Wins:        wins,
			Losses:      losses,
			RunsScored:  scored,
			RunsAllowed: allowed,
		})
	}
	return rec
}
