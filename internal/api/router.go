package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/wonny/copa/internal/api/handlers"
	"github.com/wonny/copa/pkg/config"
	"github.com/wonny/copa/pkg/database"
	"github.com/wonny/copa/pkg/logger"
)

// NewRouter wires all endpoints and middleware.
func NewRouter(
	rankingHandler *handlers.RankingHandler,
	periodHandler *handlers.PeriodHandler,
	schedulerHandler *handlers.SchedulerHandler,
	db *database.DB,
	cfg *config.Config,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthCheckHandler(db)).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Ranking
	api.HandleFunc("/rankings/{month}", rankingHandler.GetRanking).Methods("GET")

	// Period lifecycle
	api.HandleFunc("/periods/pending", periodHandler.ListPending).Methods("GET")
	api.HandleFunc("/periods/{id}/analysis", periodHandler.GetAnalysis).Methods("GET")
	api.HandleFunc("/periods/{id}/officialize", periodHandler.Officialize).Methods("POST")

	// Scheduler control
	api.HandleFunc("/scheduler/status", schedulerHandler.GetStatus).Methods("GET")
	api.HandleFunc("/scheduler/run", schedulerHandler.RunOnce).Methods("POST")

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	r.Use(rateLimitMiddleware(cfg))
	r.Use(handlers.PrincipalMiddleware)

	return r
}

// healthCheckHandler reports server and database health.
func healthCheckHandler(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbHealth, err := db.HealthCheck(r.Context())

		status := http.StatusOK
		overall := "ok"
		if err != nil {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":   overall,
			"service":  "copa-api",
			"database": dbHealth,
		})
	}
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware converts panics into 500 responses.
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.WithField("panic", rec).Error("Handler panicked")
					http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware applies a server-wide request rate limit.
func rateLimitMiddleware(cfg *config.Config) mux.MiddlewareFunc {
	limiter := rate.NewLimiter(rate.Limit(cfg.API.RateLimitRPS), cfg.API.RateLimitBurst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
