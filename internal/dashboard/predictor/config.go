// internal/dashboard/predictor/config.go
package predictor

import (
	"time"

	"churn-dashboard/internal/common/config"
)

type Config struct {
	URL        string
	Timeout    time.Duration
	MaxRetries int
}

// LoadConfig maps the predictor section of the application config.
func LoadConfig(cfg config.PredictorConfig) *Config {
	url := cfg.URL
	if url == "" {
		url = config.DefaultPredictorURL
	}
	return &Config{
		URL:        url,
		Timeout:    config.GetDuration(cfg.Timeout),
		MaxRetries: cfg.MaxRetries,
	}
}
