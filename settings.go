package treedi

import (
	"fmt"

	"github.com/a-peyrard/treedi/config"
	"github.com/a-peyrard/treedi/logging"
	"github.com/a-peyrard/treedi/option"
	"github.com/rs/zerolog"
)

const SettingsEnvPrefix = "TREEDI"

type (
	// Settings are shared by every container of a tree.
	Settings struct {
		// Debug keeps identifier names for diagnostics, warns about duplicate primaries and
		// rejects unused extra arguments.
		Debug bool `mapstructure:"debug"`
		// Concurrent guards singleton materialization with a mutex, for trees resolved from
		// several goroutines once flushed. The mutex is held while the singleton is built, so
		// factories must resolve through their InjectContext: a resolution started from a captured
		// container has a fresh cycle tracker and blocks on its own singleton instead of failing.
		Concurrent bool `mapstructure:"concurrent"`
		// MaxDepth bounds the nesting of resolutions, injection cycles between transients hit it.
		MaxDepth  int    `mapstructure:"max_depth"`
		LogLevel  string `mapstructure:"log_level"`
		LogFormat string `mapstructure:"log_format"`
	}
)

func (s *Settings) ApplyDefault() {
	if s.MaxDepth <= 0 {
		s.MaxDepth = DefaultMaxDepth
	}
}

// LoadSettings reads the settings from TREEDI_* environment variables, .env files can be added
// with config.WithDotEnv.
func LoadSettings(opts ...option.Option[config.Options]) (*Settings, error) {
	settings, err := config.Load[Settings](option.Prepend(opts, config.WithEnvPrefix(SettingsEnvPrefix))...)
	if err != nil {
		return nil, fmt.Errorf("failed to load container settings:\n\t%w", err)
	}
	return settings, nil
}

// Logger builds the logger described by the settings, nil when no level is configured.
func (s *Settings) Logger() (*zerolog.Logger, error) {
	if s.LogLevel == "" {
		return nil, nil
	}
	opts := []option.Option[logging.Options]{
		logging.WithLevel(s.LogLevel),
		logging.WithFormat(logging.Format(s.LogFormat)),
	}
	if s.Debug {
		opts = append(opts, logging.WithCaller())
	}
	logger, err := logging.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build container logger:\n\t%w", err)
	}
	return &logger, nil
}
