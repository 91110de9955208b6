package handler

import (
	"net/http"

	"github.com/yumyai/orthogroup/logger"
	"github.com/yumyai/orthogroup/pkg/middle"
)

func NewRouter(app *AppContext) http.Handler {
	mux := http.NewServeMux()

	// Error route
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	// API routes
	mux.HandleFunc("GET /api/v1/health", HealthCheck)
	mux.HandleFunc("GET /api/v1/groups", app.GroupsHandler)
	mux.HandleFunc("GET /api/v1/resolve", app.ResolveHandler)
	mux.HandleFunc("POST /api/v1/jobs", app.SubmitJobHandler)
	mux.HandleFunc("GET /api/v1/jobs/{job_id}", app.JobStatusHandler)

	log := logger.Logger()
	return middle.RequestIDMiddleware(log)(middle.LoggingMiddleware(log)(mux))
}
