// Package handlers wires the HTTP surface: the OAuth login flow, the
// analytics endpoint, and the AI insight endpoints.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/soundlens/soundlens/internal/models"
	"github.com/soundlens/soundlens/internal/store"
)

// ProviderClient is the slice of the streaming-provider client the handlers
// use. Tests substitute a fake.
type ProviderClient interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Profile(ctx context.Context, tok *oauth2.Token) (*models.UserProfile, *oauth2.Token, error)
	FetchAll(ctx context.Context, tok *oauth2.Token) (*models.RawData, *oauth2.Token, error)
}

const stateCookieName = "oauth_state"

// AuthHandler handles the OAuth login flow
type AuthHandler struct {
	client      ProviderClient
	sessions    *store.SessionStore
	frontendURL string
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(client ProviderClient, sessions *store.SessionStore, frontendURL string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		client:      client,
		sessions:    sessions,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// RegisterRoutes registers auth routes on the given router
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/login", h.Login).Methods("GET")
	r.HandleFunc("/callback", h.Callback).Methods("GET")
}

// Login redirects to the provider's consent screen with a fresh CSRF state.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.client.AuthCodeURL(state), http.StatusFound)
}

// Callback completes the authorization-code flow: exchanges the code, looks
// up the account identity, creates a session, and sends the browser to the
// dashboard with the session token.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		respondJSONError(w, http.StatusBadRequest, "Authorization failed", errParam)
		return
	}

	code := query.Get("code")
	if code == "" {
		respondJSONError(w, http.StatusBadRequest, "Authorization failed", "missing authorization code")
		return
	}

	if cookie, err := r.Cookie(stateCookieName); err != nil || cookie.Value == "" || cookie.Value != query.Get("state") {
		respondJSONError(w, http.StatusBadRequest, "Authorization failed", "state mismatch")
		return
	}

	ctx := r.Context()
	tok, err := h.client.Exchange(ctx, code)
	if err != nil {
		h.logger.Error("token_exchange_failed", zap.Error(err))
		respondJSONError(w, http.StatusBadGateway, "Authorization failed", "could not exchange authorization code")
		return
	}

	profile, tok, err := h.client.Profile(ctx, tok)
	if err != nil {
		h.logger.Error("profile_fetch_failed", zap.Error(err))
		respondJSONError(w, http.StatusBadGateway, "Authorization failed", "could not load account profile")
		return
	}

	session := h.sessions.Create(profile.ID, tok)
	h.logger.Info("session_created", zap.String("user_id", profile.ID))

	// Clear the state cookie, it is single-use.
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})

	http.Redirect(w, r, h.frontendURL+"/dashboard?session="+session.ID, http.StatusFound)
}
