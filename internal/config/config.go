package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Settings holds all process configuration sourced from the environment.
// The mutable tracker document and the secrets live in YAML files whose
// paths are set here.
type Settings struct {
	// Document paths
	ConfigFilePath  string `envconfig:"CONFIG_FILE_PATH" default:"config.yaml"`
	SecretsFilePath string `envconfig:"SECRETS_FILE_PATH" default:"secrets.yaml"`
	LockFilePath    string `envconfig:"LOCK_FILE_PATH" default:"process.lock"`

	// MLB Stats API
	StatsAPIBaseURL string        `envconfig:"STATS_API_BASE_URL" default:"https://statsapi.mlb.com/api/v1"`
	StatsAPITimeout time.Duration `envconfig:"STATS_API_TIMEOUT" default:"30s"`

	// Bluesky
	BlueskyHost    string        `envconfig:"BLUESKY_HOST" default:"https://bsky.social"`
	BlueskyTimeout time.Duration `envconfig:"BLUESKY_TIMEOUT" default:"60s"`

	// Pause between posts to stay under the Bluesky rate limit
	PostDelay time.Duration `envconfig:"POST_DELAY" default:"10s"`

	// Redis season cache
	RedisHost     string        `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int           `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"168h"`

	// Monitoring
	PushgatewayURL string `envconfig:"PUSHGATEWAY_URL" default:""`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load loads settings from environment variables, reading a .env file first
// if one exists.
func Load() (*Settings, error) {
	_ = godotenv.Load()

	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &s, nil
}

// Validate checks settings that envconfig tags cannot express.
func (s *Settings) Validate() error {
	if s.StatsAPITimeout <= 0 {
		return fmt.Errorf("STATS_API_TIMEOUT must be positive")
	}
	if s.BlueskyTimeout <= 0 {
		return fmt.Errorf("BLUESKY_TIMEOUT must be positive")
	}
	if s.PostDelay < 0 {
		return fmt.Errorf("POST_DELAY must not be negative")
	}
	return nil
}

// RedisAddr returns the Redis address.
func (s *Settings) RedisAddr() string {
	return fmt.Sprintf("%s:%d", s.RedisHost, s.RedisPort)
}

// IsDevelopment returns true if running in development mode.
func (s *Settings) IsDevelopment() bool {
	return s.AppEnv == "development"
}

// MustLoad loads settings or exits. Use in main() where we want to fail fast.
func MustLoad() *Settings {
	s, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return s
}
