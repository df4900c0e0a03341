package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"reviewarena/internal/domain/ghsync"
)

type Config struct {
	DatabaseURL   string `env:"DATABASE_URL" env-required:"true"`
	HTTPAddr      string `env:"HTTP_ADDR" env-default:":8080"`
	LogLevel      string `env:"LOG_LEVEL" env-default:"info"`
	MigrationsDir string `env:"MIGRATIONS_DIR" env-default:"migrations"`
	Timezone      string `env:"TIMEZONE" env-default:"UTC"`

	GitHub  GitHub
	Sync    Sync
	Workers int `env:"WORKER_POOL_SIZE" env-default:"4"`

	CronSecret string `env:"CRON_SECRET_TOKEN"`
}

type GitHub struct {
	Token         string `env:"GITHUB_TOKEN"`
	Org           string `env:"GITHUB_ORG" env-required:"true"`
	APIURL        string `env:"GITHUB_API_URL"`
	WebhookSecret string `env:"GITHUB_WEBHOOK_SECRET"`
}

type Sync struct {
	Interval              time.Duration `env:"SYNC_INTERVAL" env-default:"1h"`
	Staleness             time.Duration `env:"SYNC_STALENESS" env-default:"8h"`
	HistoricalInterval    time.Duration `env:"HISTORICAL_SYNC_INTERVAL" env-default:"24h"`
	HistoricalLookback    time.Duration `env:"HISTORICAL_LOOKBACK" env-default:"8760h"`
	IncrementalFallback   time.Duration `env:"INCREMENTAL_FALLBACK" env-default:"24h"`
	LockTimeout           time.Duration `env:"SYNC_LOCK_TIMEOUT" env-default:"1h"`
	RepoConcurrency       int           `env:"REPO_CONCURRENCY" env-default:"5"`
	HighActivityThreshold int           `env:"HIGH_ACTIVITY_THRESHOLD" env-default:"5"`
	PushSyncAfter         time.Duration `env:"PUSH_SYNC_AFTER" env-default:"4h"`
}

// Load reads the environment, after merging a .env file from the working
// directory when one exists. Variables already set win over the file.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (s Sync) Options() ghsync.Options {
	return ghsync.Options{
		Staleness:           s.Staleness,
		HistoricalInterval:  s.HistoricalInterval,
		HistoricalLookback:  s.HistoricalLookback,
		IncrementalFallback: s.IncrementalFallback,
		LockTimeout:         s.LockTimeout,
		RepoConcurrency:     s.RepoConcurrency,
	}
}
