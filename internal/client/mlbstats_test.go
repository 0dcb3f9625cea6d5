package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const teamsJSON = `{
  "teams": [
    {"id": 133, "abbreviation": "OAK"},
    {"id": 111, "abbreviation": "BOS"}
  ]
}`

// Four dates for team 133: a win, a road loss, a scheduled (ignored) game,
// and a tie (ignored).
const scheduleJSON = `{
  "dates": [
    {"date": "2023-03-30", "games": [
      {"officialDate": "2023-03-30",
       "status": {"codedGameState": "F"},
       "teams": {
         "home": {"score": 2, "team": {"id": 133}},
         "away": {"score": 1, "team": {"id": 111}}
       }}
    ]},
    {"date": "2023-04-01", "games": [
      {"officialDate": "2023-04-01",
       "status": {"codedGameState": "F"},
       "teams": {
         "home": {"score": 6, "team": {"id": 111}},
         "away": {"score": 3, "team": {"id": 133}}
       }}
    ]},
    {"date": "2023-04-02", "games": [
      {"officialDate": "2023-04-02",
       "status": {"codedGameState": "S"},
       "teams": {
         "home": {"score": 0, "team": {"id": 111}},
         "away": {"score": 0, "team": {"id": 133}}
       }}
    ]},
    {"date": "2023-04-03", "games": [
      {"officialDate": "2023-04-03",
       "status": {"codedGameState": "F"},
       "teams": {
         "home": {"score": 4, "team": {"id": 111}},
         "away": {"score": 4, "team": {"id": 133}}
       }}
    ]}
  ]
}`

func newFixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/teams", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("sportId"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(teamsJSON))
	})
	mux.HandleFunc("/schedule", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "133", r.URL.Query().Get("teamId"))
		assert.Equal(t, "R", r.URL.Query().Get("gameType"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(scheduleJSON))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchSeason(t *testing.T) {
	srv := newFixtureServer(t)
	c := NewClient(srv.URL, 5*time.Second)

	rec, err := c.FetchSeason(context.Background(), 2023, "OAK")
	require.NoError(t, err)

	// The scheduled game and the tie are excluded.
	require.Equal(t, 2, rec.GamesPlayed())
	assert.Equal(t, "OAK", rec.Team)
	assert.Equal(t, 2023, rec.Year)

	row1, ok := rec.Row(1)
	require.True(t, ok)
	assert.Equal(t, 1, row1.Wins)
	assert.Equal(t, 0, row1.Losses)
	assert.Equal(t, 2, row1.RunsScored)
	assert.Equal(t, 1, row1.RunsAllowed)

	row2, ok := rec.Row(2)
	require.True(t, ok)
	assert.Equal(t, 1, row2.Wins)
	assert.Equal(t, 1, row2.Losses)
	assert.Equal(t, 5, row2.RunsScored)
	assert.Equal(t, 7, row2.RunsAllowed)
}

func TestFetchSeason_UnknownTeam(t *testing.T) {
	srv := newFixtureServer(t)
	c := NewClient(srv.URL, 5*time.Second)

	_, err := c.FetchSeason(context.Background(), 2023, "XYZ")
	require.Error(t, err)
	var ferr *FetchError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, "XYZ", ferr.Team)
	assert.Equal(t, 2023, ferr.Year)
}

func TestFetchSeason_RetriesOnServerBusy(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/teams", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(teamsJSON))
	})
	mux.HandleFunc("/schedule", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(scheduleJSON))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	c.retryDelay = time.Millisecond

	rec, err := c.FetchSeason(context.Background(), 2023, "OAK")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.GamesPlayed())
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchSeason_NonRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/teams", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	c.retryDelay = time.Millisecond

	_, err := c.FetchSeason(context.Background(), 1800, "OAK")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "4xx responses must not be retried")
}

func TestResolveTeamID_CachedPerYear(t *testing.T) {
	var teamCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/teams", func(w http.ResponseWriter, r *http.Request) {
		teamCalls.Add(1)
		w.Write([]byte(teamsJSON))
	})
	mux.HandleFunc("/schedule", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(scheduleJSON))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	ctx := context.Background()

	_, err := c.FetchSeason(ctx, 2023, "OAK")
	require.NoError(t, err)
	_, err = c.FetchSeason(ctx, 2023, "OAK")
	require.NoError(t, err)

	assert.Equal(t, int32(1), teamCalls.Load(), "team directory is resolved once per year")
}
