package app

// @config prefix="APP" fields=true
// AppConfig contains application configuration
type AppConfig struct {
	DatabaseURL string
	LogLevel    string
	Port        int
}

// @config
// internalConfig is not exported and cannot be bound
type internalConfig struct {
	Secret string
}
