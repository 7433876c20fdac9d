package http

import (
	"net/http"

	"github.com/vncsmyrnk/dubvote/internal/core/domain"
	"github.com/vncsmyrnk/dubvote/internal/core/ports"
)

type HealthHandler struct {
	service ports.HealthService
}

func NewHealthHandler(service ports.HealthService) *HealthHandler {
	return &HealthHandler{
		service: service,
	}
}

type healthResponse struct {
	Status       string                             `json:"status"`
	Dependencies map[string]domain.DependencyStatus `json:"dependencies"`
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	report := h.service.Check(r.Context())

	status, code := "ok", http.StatusOK
	if !report.Healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	writeJSON(w, code, healthResponse{Status: status, Dependencies: report.Dependencies})
}
