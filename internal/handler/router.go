package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/stockplan/stockplan-api/internal/auth"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth      *AuthHandler
	Stock     *StockHandler
	Watchlist *WatchlistHandler
	Research  *ResearchHandler
	Target    *TargetHandler
	Portfolio *PortfolioHandler
	Market    *MarketHandler
	Broker    *BrokerHandler
}

// NewRouter wires all routes behind the shared middleware stack.
func NewRouter(h Handlers, jwtAuth auth.JWTAuthenticator, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("It works!"))
	})

	r.Route("/auth", func(r chi.Router) {
		h.Auth.Mount(r)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(jwtAuth))
			r.Get("/me", h.Auth.Me)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(jwtAuth))

		r.Route("/stocks", h.Stock.Mount)
		r.Route("/watchlist", h.Watchlist.Mount)
		r.Route("/research", h.Research.Mount)
		r.Route("/targets", h.Target.Mount)
		r.Route("/brokers", h.Broker.Mount)

		h.Portfolio.Mount(r)
		h.Market.Mount(r)
	})

	return r
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request completed")
		})
	}
}
