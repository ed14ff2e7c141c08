package config

import (
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/aiservice/poseul/internal/logging"
)

// Environment variables read by Load
const (
	EnvServerURL      = "POSEUL_SERVER_URL"
	EnvHealthTimeout  = "POSEUL_HEALTH_TIMEOUT"
	EnvPredictTimeout = "POSEUL_PREDICT_TIMEOUT"
	EnvStateTimeout   = "POSEUL_STATE_TIMEOUT"
	EnvControlTimeout = "POSEUL_CONTROL_TIMEOUT"
)

func (c *Config) applyEnv() {
	c.ServerURL = getEnv(EnvServerURL, c.ServerURL)
	c.Timeouts.Health = getEnvDuration(EnvHealthTimeout, c.Timeouts.Health)
	c.Timeouts.Predict = getEnvDuration(EnvPredictTimeout, c.Timeouts.Predict)
	c.Timeouts.State = getEnvDuration(EnvStateTimeout, c.Timeouts.State)
	c.Timeouts.Control = getEnvDuration(EnvControlTimeout, c.Timeouts.Control)
}

// ResolveServerURL returns flagValue when set, otherwise the configured
// (possibly env-overridden) server URL.
func (c *Config) ResolveServerURL(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if c.ServerURL != "" {
		return c.ServerURL
	}
	return DefaultServerURL
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		logging.Warn("Invalid duration in environment, using default",
			zap.String("key", key),
			zap.String("value", value),
			zap.Duration("default", defaultValue),
		)
		return defaultValue
	}
	return d
}
