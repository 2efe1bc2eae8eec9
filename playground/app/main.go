package main

import (
	"context"
	"errors"
	"os"

	"github.com/a-peyrard/treedi"
	"github.com/a-peyrard/treedi/playground/app/registry"
	"github.com/a-peyrard/treedi/runner"
	"github.com/rs/zerolog"
)

func main() {
	settings, err := treedi.LoadSettings()
	if err != nil {
		panic(err)
	}
	if settings.LogLevel == "" {
		settings.LogLevel = "debug"
	}
	loggerRef, err := settings.Logger()
	if err != nil {
		panic(err)
	}
	logger := *loggerRef

	root := treedi.New(treedi.Name("playground"), treedi.WithSettings(*settings), treedi.WithLogger(logger))
	//goland:noinspection GoUnhandledErrorResult
	defer root.Close()

	treedi.Bind[context.Context](root).FromInstance(runner.WithSyscallKillableContext(context.Background()))
	treedi.Bind[zerolog.Logger](root).FromInstance(logger)
	if err := registry.Register(root); err != nil {
		logger.Fatal().Err(err).Msg("failed to register components")
	}
	if err := root.Flush(); err != nil {
		logger.Fatal().Err(err).Msg("invalid bindings")
	}

	logger.Info().Msgf("here is what we have in store before running:\n%s", root.Describe())

	if err := runner.Run(context.Background(), root); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("error running app")
		os.Exit(1)
	}

	logger.Info().Msg("bye.")
}
