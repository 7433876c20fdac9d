package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/dubvote/internal/core/domain"
)

// Messages returned to clients. Internal error detail is only logged.
const (
	msgInvalidVote      = "Voto invalido"
	msgStoreUnavailable = "Servicio de Redis no disponible"
	msgInternal         = "Error interno del servidor"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError is the only place where domain errors become status codes.
func writeError(w http.ResponseWriter, r *http.Request, logger logrus.FieldLogger, err error) {
	status, msg := http.StatusInternalServerError, msgInternal
	switch {
	case errors.Is(err, domain.ErrInvalidVote):
		status, msg = http.StatusBadRequest, msgInvalidVote
	case errors.Is(err, domain.ErrStoreUnavailable):
		msg = msgStoreUnavailable
	}

	if status >= http.StatusInternalServerError {
		logger.WithError(err).WithFields(logrus.Fields{
			"path":       r.URL.Path,
			"request_id": middleware.GetReqID(r.Context()),
		}).Error("request failed")
	}

	writeJSON(w, status, errorResponse{Error: msg})
}
