package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/a-peyrard/treedi"
	"github.com/a-peyrard/treedi/playground/app/config"
	"github.com/a-peyrard/treedi/runner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 5 * time.Second

// NewRouter mounts every bound route behind the request scope middleware.
//
// @provider
func NewRouter(
	root *treedi.Container,
	logger zerolog.Logger,
	routes []*Route, // @inject all=true
) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID, middleware.Recoverer, RequestScope(root))
	for _, route := range routes {
		logger.Debug().Str("method", route.Method).Str("pattern", route.Pattern).Msg("mounting route")
		router.Method(route.Method, route.Pattern, route.handler(logger))
	}
	return router
}

// NewServer serves the router until the run context is done.
//
// @provider named="http.server"
func NewServer(cfg *config.Config, router chi.Router, logger zerolog.Logger) runner.Runnable {
	addr := net.JoinHostPort(cfg.Http.Host, strconv.Itoa(cfg.Http.Port))
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return runner.RunnableFunc(func(ctx context.Context) error {
		errs := make(chan error, 1)
		go func() {
			logger.Info().Str("addr", addr).Msg("http server listening")
			errs <- server.ListenAndServe()
		}()

		select {
		case err := <-errs:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("http server failed:\n\t%w", err)
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("http server shutdown failed:\n\t%w", err)
			}
			return ctx.Err()
		}
	})
}
