package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/soundlens/soundlens/internal/analytics"
	"github.com/soundlens/soundlens/internal/apperrors"
	"github.com/soundlens/soundlens/internal/store"
)

// AnalyticsHandler serves the listening summary
type AnalyticsHandler struct {
	client   ProviderClient
	sessions *store.SessionStore
	logger   *zap.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(client ProviderClient, sessions *store.SessionStore, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		client:   client,
		sessions: sessions,
		logger:   logger,
	}
}

// RegisterRoutes registers analytics routes on the given router.
// The router should already have the /api prefix.
func (h *AnalyticsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/analytics", h.GetAnalytics).Methods("POST")
}

type analyticsRequest struct {
	SessionID string `json:"sessionId"`
}

// GetAnalytics fetches the caller's listening data from the provider and
// returns the extracted summary.
func (h *AnalyticsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	var req analyticsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid request", "request body must be JSON")
		return
	}

	session, ok := h.sessions.Get(req.SessionID)
	if !ok {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", apperrors.ErrInvalidSession.Error())
		return
	}

	raw, tok, err := h.client.FetchAll(r.Context(), session.Token)
	if err != nil {
		h.logger.Error("provider_fetch_failed",
			zap.String("user_id", session.UserID),
			zap.Error(err),
		)
		errorType := "Internal error"
		if apperrors.IsUpstreamError(err) {
			errorType = "Upstream failure"
		}
		respondJSONError(w, http.StatusInternalServerError, errorType, "could not load listening data")
		return
	}

	// Keep any refreshed credentials for the next call.
	h.sessions.UpdateToken(session.ID, tok)

	respondJSON(w, http.StatusOK, analytics.Extract(raw))
}
