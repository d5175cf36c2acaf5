package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// EnvFiles are loaded, in order, by LoadEnv. Later files win.
var EnvFiles = []string{".env", ".env.local"}

// LoadEnv loads local env files into the process environment.
func LoadEnv(logger logrus.FieldLogger) []string {
	var loaded []string
	for _, file := range EnvFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Overload(file); err != nil {
			if logger != nil {
				logger.WithError(err).Warnf("Failed to load %s", file)
			}
			continue
		}
		loaded = append(loaded, file)
	}
	if logger != nil && len(loaded) > 0 {
		logger.Debugf("Loaded env files: %s", strings.Join(loaded, ", "))
	}
	return loaded
}

// applyEnv overrides file settings with BIZPULSE_* and LOG_LEVEL variables.
func (c *Config) applyEnv() {
	overrides := []struct {
		key  string
		dest *string
	}{
		{"BIZPULSE_DATA_DIR", &c.Output.DataDir},
		{"BIZPULSE_HELPSCOUT_URL", &c.Sources.HelpScout.BaseURL},
		{"BIZPULSE_WORDPRESS_URL", &c.Sources.WordPress.BaseURL},
		{"BIZPULSE_FEED_URL", &c.Sources.WordPress.FeedURL},
		{"BIZPULSE_AUTOMEM_URL", &c.Sink.AutoMemURL},
		{"LOG_LEVEL", &c.Logging.Level},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.dest = v
		}
	}
}
