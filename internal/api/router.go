package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/aegis-panel/internal/api/handlers"
	"github.com/wonny/aegis-panel/pkg/logger"
)

// Deps are the collaborators wired into the router
type Deps struct {
	Evaluation *handlers.EvaluationHandler
	Progress   *handlers.ProgressHub // optional
	Metrics    http.Handler          // optional, served on /metrics
	Recorder   HTTPRecorder          // optional
	Limiter    *ClientLimiter        // optional
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(deps Deps, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics).Methods("GET")
	}

	if deps.Progress != nil {
		r.HandleFunc("/ws/progress", deps.Progress.HandleWebSocket).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()

	// Evaluation endpoints
	api.HandleFunc("/evaluate/{code}", deps.Evaluation.Evaluate).Methods("GET")
	api.HandleFunc("/evaluate", deps.Evaluation.EvaluateRecord).Methods("POST")
	api.HandleFunc("/evaluations/{code}/latest", deps.Evaluation.GetLatest).Methods("GET")
	api.HandleFunc("/evaluations/{code}", deps.Evaluation.ListHistory).Methods("GET")

	// API-only middleware; the websocket route must keep the raw ResponseWriter
	if deps.Recorder != nil {
		api.Use(metricsMiddleware(deps.Recorder))
	}
	if deps.Limiter != nil {
		api.Use(rateLimitMiddleware(deps.Limiter, log))
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "aegis-panel-api",
	})
}
