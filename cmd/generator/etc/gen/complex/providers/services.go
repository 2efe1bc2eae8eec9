package providers

import (
	"github.com/test/complex/config"
)

// @provider named="app.service"
// AppService is the main application service
func NewAppService(
	cfg *config.AppConfig,
	cache Cache, // @inject named="cache"
	runners []Runner, // @inject all=true
) *AppService {
	return &AppService{}
}

// @provider named="cache"
// @when named="REDIS_ENABLED" equals="true"
// RedisCache for production
func NewRedisCache(cfg *config.AppConfig) Cache { // @inject optional=true
	return &redisCache{}
}

// @provider named="cache"
// MemCache for development
func NewMemCache() Cache {
	return &memCache{}
}

// @provider named="runner"
// FirstRunner implementation
func NewFirstRunner() Runner {
	return &firstRunner{}
}

// @provider named="second.runner" scope=transient
// SecondRunner implementation
func NewSecondRunner() Runner {
	return &secondRunner{}
}

// @provider
// ConfigReport returns the app config, bound from the config package
func NewConfigReport(cfg *config.AppConfig) *config.Report {
	return &config.Report{}
}

type AppService struct{}
type Cache interface{}
type Runner interface{}
type redisCache struct{}
type memCache struct{}
type firstRunner struct{}
type secondRunner struct{}
