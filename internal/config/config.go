// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting. Values come from PRIZEWHEEL_* variables,
// optionally declared in a .env file.
type Config struct {
	Addr          string `env:"ADDR"           envDefault:":8080"`
	Debug         bool   `env:"DEBUG"          envDefault:"false"`
	DBPath        string `env:"DB_PATH"        envDefault:"prizewheel.db"`
	SessionSecret string `env:"SESSION_SECRET" envDefault:"change-me-prizewheel-secret"`
	LogFile       string `env:"LOG_FILE"`
	SeedDemo      bool   `env:"SEED_DEMO"      envDefault:"true"`

	WebhookURL     string        `env:"WEBHOOK_URL"`
	WebhookTimeout time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"10s"`
	NotifyWorkers  int           `env:"NOTIFY_WORKERS"  envDefault:"8"`

	CampaignSpinDuration time.Duration `env:"CAMPAIGN_SPIN_DURATION" envDefault:"2200ms"`
	CampaignTurns        int           `env:"CAMPAIGN_TURNS"         envDefault:"6"`
	DemoSpinDuration     time.Duration `env:"DEMO_SPIN_DURATION"     envDefault:"3200ms"`
	DemoTurns            int           `env:"DEMO_TURNS"             envDefault:"8"`

	SessionTTL  time.Duration `env:"SESSION_TTL"  envDefault:"1h"`
	JanitorSpec string        `env:"JANITOR_SPEC" envDefault:"@every 10m"`
	CacheTTL    time.Duration `env:"CACHE_TTL"    envDefault:"30s"`
}

// Prefix is prepended to every variable name.
const Prefix = "PRIZEWHEEL_"

// Load reads the optional dotenv files, then parses the environment.
func Load(dotenv ...string) (Config, error) {
	if err := godotenv.Load(dotenv...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}
	return Parse()
}

// Parse reads the environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	switch {
	case c.CampaignTurns < 0 || c.DemoTurns < 0:
		return errors.New("config: spin turns must not be negative")
	case c.CampaignSpinDuration <= 0 || c.DemoSpinDuration <= 0:
		return errors.New("config: spin durations must be positive")
	case c.NotifyWorkers <= 0:
		return errors.New("config: notify workers must be positive")
	case len(c.SessionSecret) < 16:
		return errors.New("config: session secret must be at least 16 bytes")
	}
	return nil
}
