package hello

import (
	"context"
	"time"

	"github.com/a-peyrard/treedi/playground/app/config"
	"github.com/a-peyrard/treedi/runner"
	"github.com/rs/zerolog"
)

// NewHelloRunner creates a Runnable greeting the world, then ticking for a few seconds.
//
// @provider named="hello.runner"
// @when named="Config.Environment" not_equals="test"
func NewHelloRunner(cfg *config.Config, logger zerolog.Logger) runner.Runnable {
	logger = logger.With().Str("component", "hello.runner").Logger()
	return runner.RunnableFunc(func(ctx context.Context) error {
		logger.Info().Msgf("%s world", cfg.Hello.Greeting)
		for i := 0; i < cfg.Hello.Ticks; i++ {
			select {
			case <-ctx.Done():
				logger.Info().Msg("context cancelled, exiting early")
				return ctx.Err()
			case <-time.After(time.Second):
				logger.Debug().Int("tick", i+1).Msg("tick")
			}
		}
		logger.Info().Msg("done ticking")
		return nil
	})
}
