package handlers

import (
	"net/http"
	"time"

	"github.com/soundlens/soundlens/internal/store"
)

// Version is the build version, set at link time.
var Version = "dev"

// HealthChecker handles health check requests
type HealthChecker struct {
	sessions *store.SessionStore
	cache    *store.InsightStore
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(sessions *store.SessionStore, cache *store.InsightStore) *HealthChecker {
	return &HealthChecker{sessions: sessions, cache: cache}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Checks    map[string]int `json:"checks,omitempty"`
}

// HealthCheck handles the /healthz endpoint
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if r.URL.Query().Get("mode") == "extended" {
		response.Checks = map[string]int{
			"sessions":      h.sessions.Len(),
			"insight_users": h.cache.Len(),
		}
	}

	respondJSON(w, http.StatusOK, response)
}

// VersionCheck handles the /version endpoint
func (h *HealthChecker) VersionCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"version": Version})
}
