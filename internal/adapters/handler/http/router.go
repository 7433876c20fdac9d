package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// NewHandler wires the public routes. metrics may be nil.
func NewHandler(voteHandler *VoteHandler, healthHandler *HealthHandler, metrics http.Handler, logger logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))

	r.Get("/", serveView("index.html"))
	r.Get("/stats", serveView("results.html"))

	r.Post("/vote", voteHandler.Vote)
	r.Get("/results", voteHandler.Results)

	r.Get("/healthz", healthHandler.Check)
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}

	return r
}
