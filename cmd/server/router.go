package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/redinklabs/redink-api/internal/api"
	"github.com/redinklabs/redink-api/internal/grading"
	"github.com/redinklabs/redink-api/internal/task"
	"github.com/redinklabs/redink-api/internal/telemetry"
)

// newRouter assembles the chi router with standard middleware and all
// application routes.
func newRouter(engine *grading.Engine, manager *task.Manager, appLogger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	gradingHandler := api.NewGradingHandler(engine, manager, appLogger)
	taskHandler := api.NewTaskHandler(manager, appLogger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/grading/batch", gradingHandler.SubmitBatch)
		r.Get("/tasks/{id}", taskHandler.GetStatus)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Method(http.MethodGet, "/metrics", telemetry.Handler())

	return r
}
