package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/soundlens/soundlens/internal/analytics"
	"github.com/soundlens/soundlens/internal/apperrors"
	"github.com/soundlens/soundlens/internal/insights"
	"github.com/soundlens/soundlens/internal/models"
	"github.com/soundlens/soundlens/internal/store"
)

// InsightsHandler serves AI-generated habit and persona insights
type InsightsHandler struct {
	provider insights.Provider
	cache    *store.InsightStore
	sessions *store.SessionStore
	logger   *zap.Logger
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(provider insights.Provider, cache *store.InsightStore, sessions *store.SessionStore, logger *zap.Logger) *InsightsHandler {
	return &InsightsHandler{
		provider: provider,
		cache:    cache,
		sessions: sessions,
		logger:   logger,
	}
}

// RegisterRoutes registers insight routes on the given router.
// The router should already have the /api/ai prefix.
func (h *InsightsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/habits", h.GetHabits).Methods("POST")
	r.HandleFunc("/persona", h.GetPersona).Methods("POST")
}

type insightRequest struct {
	Analytics *models.Summary `json:"analytics"`
	SessionID string          `json:"sessionId"`
}

// decodeInsightRequest parses the request body and resolves the session.
// A nil session means the response has already been written.
func (h *InsightsHandler) decodeInsightRequest(w http.ResponseWriter, r *http.Request) (*insightRequest, *store.Session) {
	var req insightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid request", "request body must be JSON")
		return nil, nil
	}
	if req.Analytics == nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid request", "analytics summary is required")
		return nil, nil
	}

	session, ok := h.sessions.Get(req.SessionID)
	if !ok {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", apperrors.ErrInvalidSession.Error())
		return nil, nil
	}
	return &req, session
}

// GetHabits returns habit insights for the posted summary, generating them
// only when no cached artifact matches the summary's fingerprint.
func (h *InsightsHandler) GetHabits(w http.ResponseWriter, r *http.Request) {
	req, session := h.decodeInsightRequest(w, r)
	if session == nil {
		return
	}

	fingerprint := analytics.Fingerprint(req.Analytics)
	habits, err := h.cache.HabitsFor(r.Context(), session.UserID, fingerprint,
		func(ctx context.Context) ([]models.HabitInsight, error) {
			return h.provider.GenerateHabits(ctx, req.Analytics)
		})
	if err != nil {
		h.logger.Error("habit_generation_failed",
			zap.String("user_id", session.UserID),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Generation failed", "could not generate habit insights")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"habits": habits})
}

// GetPersona returns the listener persona for the posted summary, using the
// same fingerprint-keyed cache.
func (h *InsightsHandler) GetPersona(w http.ResponseWriter, r *http.Request) {
	req, session := h.decodeInsightRequest(w, r)
	if session == nil {
		return
	}

	fingerprint := analytics.Fingerprint(req.Analytics)
	persona, err := h.cache.PersonaFor(r.Context(), session.UserID, fingerprint,
		func(ctx context.Context) (*models.PersonaInsight, error) {
			return h.provider.GeneratePersona(ctx, req.Analytics)
		})
	if err != nil {
		h.logger.Error("persona_generation_failed",
			zap.String("user_id", session.UserID),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Generation failed", "could not generate persona insight")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"persona": persona})
}
