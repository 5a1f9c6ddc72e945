package handlers

import (
	"net/http"
	"time"

	"github.com/white/lead-management/pkg/mongodb"
)

type HealthResponse struct {
	Status  string                 `json:"status"`
	Service string                 `json:"service"`
	Version string                 `json:"version"`
	Checks  map[string]HealthCheck `json:"checks,omitempty"`
}

type HealthCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthHandler reports service and dependency health
type HealthHandler struct {
	mongo *mongodb.Client
}

func NewHealthHandler(mongo *mongodb.Client) *HealthHandler {
	return &HealthHandler{mongo: mongo}
}

func (h *HealthHandler) GetOverallHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Service: "lead-management-api",
		Version: "1.0.0",
		Checks:  make(map[string]HealthCheck),
	}

	allHealthy := true

	start := time.Now()
	if err := h.mongo.Ping(); err != nil {
		allHealthy = false
		response.Checks["mongodb"] = HealthCheck{Status: "unhealthy", Error: err.Error()}
	} else {
		response.Checks["mongodb"] = HealthCheck{Status: "healthy", Latency: time.Since(start).String()}
	}

	if allHealthy {
		response.Status = "healthy"
		respondWithJSON(w, http.StatusOK, response)
	} else {
		response.Status = "unhealthy"
		respondWithJSON(w, http.StatusServiceUnavailable, response)
	}
}
