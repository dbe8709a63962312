// internal/dashboard/web/config.go
package web

import (
	"time"

	"churn-dashboard/internal/common/config"
)

type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	SessionTTL   time.Duration
}

// LoadConfig maps the server section of the application config.
func LoadConfig(cfg config.ServerConfig) *Config {
	return &Config{
		Address:      cfg.Address,
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
		SessionTTL:   config.GetDuration(cfg.SessionTTL),
	}
}
