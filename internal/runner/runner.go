// Package runner walks the tracked comparisons, publishing one report per
// tracker per run and advancing the games-played cursor only after a
// successful post.
package runner

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"seasonmetrics/internal/chart"
	"seasonmetrics/internal/client"
	"seasonmetrics/internal/metrics"
	"seasonmetrics/internal/models"
	"seasonmetrics/internal/stats"
)

// ErrOutOfRange means the next game index exceeds the completed games of a
// season. The tracker is skipped this run without touching its cursor.
var ErrOutOfRange = errors.New("game index out of range for season")

// Publisher posts one image with caption and alt text.
type Publisher interface {
	Publish(ctx context.Context, caption string, image []byte, altText string) error
}

// Runner processes the tracker lists sequentially.
type Runner struct {
	provider  client.SeasonProvider
	publisher Publisher
	postDelay time.Duration

	// Injection points for tests.
	sleep       func(time.Duration)
	renderStep  func(*models.TrackedPair, int, []int, []int) ([]byte, error)
	renderTable func(string, int, stats.DiffReport) ([]byte, error)
}

// New creates a Runner with the production renderers wired in.
func New(provider client.SeasonProvider, publisher Publisher, postDelay time.Duration) *Runner {
	return &Runner{
		provider:    provider,
		publisher:   publisher,
		postDelay:   postDelay,
		sleep:       time.Sleep,
		renderStep:  chart.StepChart,
		renderTable: chart.MetricsTable,
	}
}

// ProcessPairs handles every tracked pair. Per-tracker failures are logged
// and skipped so one bad tracker does not block the rest; only context
// cancellation aborts the loop.
func (r *Runner) ProcessPairs(ctx context.Context, pairs []*models.TrackedPair) error {
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return err
		}

		logger := log.With().
			Str("teamA", pair.TeamA).Int("yearA", pair.YearA).
			Str("teamB", pair.TeamB).Int("yearB", pair.YearB).
			Logger()
		logger.Info().Int("games_played", pair.GamesPlayed).Msg("Processing pair")

		if err := r.processPair(ctx, pair); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			logger.Warn().Err(err).Msg("Pair skipped")
			continue
		}
		logger.Info().Int("games_played", pair.GamesPlayed).Msg("Pair published")
	}
	return nil
}

func (r *Runner) processPair(ctx context.Context, pair *models.TrackedPair) error {
	recA, err := r.fetch(ctx, pair.YearA, pair.TeamA)
	if err != nil {
		return err
	}
	recB, err := r.fetch(ctx, pair.YearB, pair.TeamB)
	if err != nil {
		return err
	}

	g := pair.GamesPlayed + 1
	if g < 1 || g > recA.GamesPlayed() || g > recB.GamesPlayed() {
		metrics.TrackersSkippedTotal.WithLabelValues("out_of_range").Inc()
		return ErrOutOfRange
	}

	seriesA, seriesB := stats.ComparisonSeries(recA, recB, g)
	winsA := seriesA[g-1]
	winsB := seriesB[g-1]

	image, err := r.renderStep(pair, g, seriesA, seriesB)
	if err != nil {
		metrics.TrackersSkippedTotal.WithLabelValues("render_error").Inc()
		return err
	}

	caption := pairCaption(pair, g, winsA, winsB)
	altText := pairAltText(pair, g, winsA, winsB)
	if err := r.publisher.Publish(ctx, caption, image, altText); err != nil {
		metrics.PublishErrorsTotal.Inc()
		metrics.TrackersSkippedTotal.WithLabelValues("publish_error").Inc()
		return err
	}

	pair.GamesPlayed = g
	metrics.PostsPublishedTotal.WithLabelValues("pair").Inc()
	r.sleep(r.postDelay)
	return nil
}

// ProcessDiffs handles every run-differential tracker, same skip policy as
// ProcessPairs.
func (r *Runner) ProcessDiffs(ctx context.Context, diffs []*models.TrackedDiff) error {
	for _, diff := range diffs {
		if err := ctx.Err(); err != nil {
			return err
		}

		logger := log.With().Str("team", diff.Team).Int("year", diff.Year).Logger()
		logger.Info().Int("games_played", diff.GamesPlayed).Msg("Processing run differential")

		if err := r.processDiff(ctx, diff); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			logger.Warn().Err(err).Msg("Run differential skipped")
			continue
		}
		logger.Info().Int("games_played", diff.GamesPlayed).Msg("Run differential published")
	}
	return nil
}

func (r *Runner) processDiff(ctx context.Context, diff *models.TrackedDiff) error {
	rec, err := r.fetch(ctx, diff.Year, diff.Team)
	if err != nil {
		return err
	}

	g := diff.GamesPlayed + 1
	if g < 1 || g > rec.GamesPlayed() {
		metrics.TrackersSkippedTotal.WithLabelValues("out_of_range").Inc()
		return ErrOutOfRange
	}

	rep := stats.Differential(rec, g)

	image, err := r.renderTable(diff.Team, diff.Year, rep)
	if err != nil {
		metrics.TrackersSkippedTotal.WithLabelValues("render_error").Inc()
		return err
	}

	caption := diffCaption(diff.Team, diff.Year, rep)
	altText := diffAltText(diff.Team, diff.Year)
	if err := r.publisher.Publish(ctx, caption, image, altText); err != nil {
		metrics.PublishErrorsTotal.Inc()
		metrics.TrackersSkippedTotal.WithLabelValues("publish_error").Inc()
		return err
	}

	diff.GamesPlayed = g
	metrics.PostsPublishedTotal.WithLabelValues("diff").Inc()
	r.sleep(r.postDelay)
	return nil
}

func (r *Runner) fetch(ctx context.Context, year int, team string) (*models.SeasonRecord, error) {
	rec, err := r.provider.FetchSeason(ctx, year, team)
	if err != nil {
		metrics.FetchErrorsTotal.Inc()
		metrics.TrackersSkippedTotal.WithLabelValues("fetch_error").Inc()
		return nil, err
	}
	return rec, nil
}
