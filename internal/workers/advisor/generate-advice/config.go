// internal/workers/advisor/generate-advice/config.go
package generateadvice

import "time"

type Config struct {
	Timeout time.Duration
}

// LoadConfig allows for the upstream retries inside one job.
func LoadConfig() *Config {
	return &Config{
		Timeout: 90 * time.Second,
	}
}
