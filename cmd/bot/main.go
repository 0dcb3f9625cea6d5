package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seasonmetrics/internal/cache"
	"seasonmetrics/internal/client"
	"seasonmetrics/internal/config"
	"seasonmetrics/internal/lockfile"
	"seasonmetrics/internal/metrics"
	"seasonmetrics/internal/publisher"
	"seasonmetrics/internal/runner"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Exit codes. Lock contention gets its own code so wrappers can tell "still
// running" apart from real failures.
const (
	exitOK       = 0
	exitFatal    = 1
	exitLockHeld = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	setupLogger()

	log.Info().Msg("Starting season metrics bot")
	start := time.Now()

	settings := config.MustLoad()
	log.Info().
		Str("env", settings.AppEnv).
		Str("config", settings.ConfigFilePath).
		Msg("Settings loaded")

	log.Info().Str("path", settings.LockFilePath).Msg("Acquiring lock...")
	lock, err := lockfile.Acquire(settings.LockFilePath)
	if err != nil {
		if errors.Is(err, lockfile.ErrLockHeld) {
			log.Error().Str("path", settings.LockFilePath).Msg("Another instance is running. Exiting.")
			return exitLockHeld
		}
		log.Error().Err(err).Msg("Failed to acquire lock")
		return exitFatal
	}
	defer func() {
		if err := lock.Release(); err != nil {
			log.Warn().Err(err).Msg("Failed to release lock")
		} else {
			log.Info().Msg("Lock released")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, finishing up...")
		cancel()
	}()

	cfg, err := config.LoadTrackers(settings.ConfigFilePath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load tracker config")
		return exitFatal
	}
	log.Info().
		Int("pairs", len(cfg.Pairs)).
		Int("diffs", len(cfg.Diffs)).
		Msg("Tracker config loaded")

	secrets, err := config.LoadSecrets(settings.SecretsFilePath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load secrets")
		return exitFatal
	}

	mlb := client.NewClient(settings.StatsAPIBaseURL, settings.StatsAPITimeout)
	log.Info().Str("base_url", settings.StatsAPIBaseURL).Msg("MLB Stats client initialized")

	var provider client.SeasonProvider = mlb
	seasonCache, err := cache.New(cache.Config{
		Addr:     settings.RedisAddr(),
		Password: settings.RedisPassword,
		DB:       settings.RedisDB,
		TTL:      settings.CacheTTL,
	}, mlb)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
	} else {
		provider = seasonCache
		defer seasonCache.Close()
		// In-progress seasons change between runs; drop everything this run
		// touched so the next run starts from fresh data.
		defer func() {
			flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer flushCancel()
			seasonCache.FlushTouched(flushCtx)
		}()
		log.Info().Msg("Redis season cache connected")
	}

	bsky, err := publisher.Login(ctx, settings.BlueskyHost, secrets.Bluesky.Username, secrets.Bluesky.Password, settings.BlueskyTimeout)
	if err != nil {
		log.Error().Err(err).Msg("Failed to log in to Bluesky")
		return exitFatal
	}

	// Cursors advanced so far are persisted even if a later tracker fails;
	// the failing tracker itself is never half-committed.
	defer func() {
		if err := config.SaveTrackers(cfg, settings.ConfigFilePath); err != nil {
			log.Error().Err(err).Msg("Failed to save tracker config")
		} else {
			log.Info().Str("path", settings.ConfigFilePath).Msg("Tracker config saved")
		}
	}()

	defer func() {
		metrics.RunDuration.Set(time.Since(start).Seconds())
		metrics.Push(settings.PushgatewayURL)
	}()

	r := runner.New(provider, bsky, settings.PostDelay)

	if err := r.ProcessPairs(ctx, cfg.Pairs); err != nil {
		log.Error().Err(err).Msg("Pair processing aborted")
		return exitFatal
	}
	if err := r.ProcessDiffs(ctx, cfg.Diffs); err != nil {
		log.Error().Err(err).Msg("Run differential processing aborted")
		return exitFatal
	}

	log.Info().Dur("elapsed", time.Since(start)).Msg("Run complete")
	return exitOK
}

// setupLogger configures the zerolog logger.
func setupLogger() {
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)
}
