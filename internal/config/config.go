package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds the terminal client's runtime configuration. The session core
// receives plain values from here, never the struct itself.
type App struct {
	Name string `env:"APP_NAME" envDefault:"quiz-client"`
	Env  string `env:"APP_ENV" envDefault:"development"`

	// Base URLs of the external collaborators.
	SignOnURL   string `env:"SIGN_ON_URL" envDefault:"http://localhost:8081"`
	SpeedRunURL string `env:"SPEED_RUN_URL" envDefault:"ws://localhost:8080"`
	UploadURL   string `env:"QUIZ_UPLOAD_URL" envDefault:"http://localhost:8082"`

	// MetricsAddr serves the prometheus scrape endpoint when non-empty.
	MetricsAddr string `env:"METRICS_ADDR"`

	Reconnect Reconnect
}

// Reconnect tunes the dispatcher's retry policy after the channel closes.
type Reconnect struct {
	InitialInterval time.Duration `env:"RECONNECT_INITIAL_INTERVAL" envDefault:"500ms"`
	MaxElapsed      time.Duration `env:"RECONNECT_MAX_ELAPSED" envDefault:"2m"`
}

// Load parses environment variables into the App config.
func Load() (*App, error) {
	cfg := &App{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
