package http

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// recoverer turns a panicking handler into the generic JSON 500 so a single
// request can never take the process down.
func recoverer(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.WithFields(logrus.Fields{
					"panic":      rec,
					"path":       r.URL.Path,
					"request_id": middleware.GetReqID(r.Context()),
				}).Error("recovered from panic")
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgInternal})
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logger, NoColor: true})
}
