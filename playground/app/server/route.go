package server

import (
	"context"
	"net/http"

	"github.com/a-peyrard/treedi"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type (
	// Route is an endpoint contributed by any package, the router mounts every bound one.
	Route struct {
		Method  string
		Pattern string
		Handle  func(scope *treedi.Container, w http.ResponseWriter, r *http.Request) error
	}

	scopeKey struct{}
)

// RequestScope opens a child container per request, where the request is bound.
func RequestScope(root *treedi.Container) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := root.NewChild(treedi.Name("request " + middleware.GetReqID(r.Context())))
			//goland:noinspection GoUnhandledErrorResult
			defer scope.Close()

			r = r.WithContext(context.WithValue(r.Context(), scopeKey{}, scope))
			treedi.Bind[*http.Request](scope).FromInstance(r)
			next.ServeHTTP(w, r)
		})
	}
}

// Scope returns the container of the request, set by RequestScope.
func Scope(r *http.Request) (*treedi.Container, bool) {
	scope, ok := r.Context().Value(scopeKey{}).(*treedi.Container)
	return scope, ok
}

func (route *Route) handler(logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := Scope(r)
		if !ok {
			http.Error(w, "no request scope", http.StatusInternalServerError)
			return
		}
		if err := route.Handle(scope, w, r); err != nil {
			logger.Error().
				Err(err).
				Str("route", route.Method+" "+route.Pattern).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request failed")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

// NewHealthRoute reports the service is up.
//
// @provider named="health.route"
func NewHealthRoute() *Route {
	return &Route{
		Method:  http.MethodGet,
		Pattern: "/health",
		Handle: func(_ *treedi.Container, w http.ResponseWriter, _ *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		},
	}
}
