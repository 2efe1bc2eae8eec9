package config

// @config prefix="APP"
// AppConfig contains all application settings
type AppConfig struct {
	DatabaseURL   string
	RedisURL      string
	LogLevel      string
	MaxWorkers    int
	EnableMetrics bool
}

type Report struct{}
