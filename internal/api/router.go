package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/ipo-scorecard/internal/api/handlers"
	"github.com/wonny/ipo-scorecard/pkg/logger"
)

// RouterDeps holds everything the routes need
type RouterDeps struct {
	Analyze     *handlers.AnalyzeHandler
	Score       *handlers.ScoreHandler
	Limiter     RateLimiter
	AnalyzeRate int // per client per minute, <= 0 disables
	Logger      *logger.Logger
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Logger
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// Document analysis (rate limited per client)
	analyzeHandler := rateLimitMiddleware(deps.Limiter, deps.AnalyzeRate, log)(http.HandlerFunc(deps.Analyze.Analyze))
	r.Handle("/analyze", analyzeHandler).Methods("POST", "OPTIONS")

	// API
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/score", deps.Score.Score).Methods("POST", "OPTIONS")
	api.HandleFunc("/scoring/config", deps.Score.GetConfig).Methods("GET", "OPTIONS")

	// Apply middleware (outermost first)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	r.Use(corsMiddleware)

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{
		"ok": true,
	})
}
