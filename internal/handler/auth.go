package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/sizem-re/placelist/internal/auth"
	"github.com/sizem-re/placelist/internal/service"
)

// sessionMaxAge matches the session token lifetime so the cookie and the
// JWT inside it expire together.
const sessionMaxAge = 7 * 24 * time.Hour

// flexID accepts a JSON string or number. Farcaster clients send the fid
// either way depending on the SDK version.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("must be a string or a number")
	}
	*f = flexID(n.String())
	return nil
}

// AuthHandler exposes registration, credential verification, the OAuth
// login flow, and session management.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authSvc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authSvc, logger: logger}
}

type registerRequest struct {
	FarcasterID          flexID `json:"farcaster_id"`
	FarcasterUsername    string `json:"farcaster_username"`
	FarcasterDisplayName string `json:"farcaster_display_name"`
	FarcasterPfpURL      string `json:"farcaster_pfp_url"`
}

// HandleRegister upserts the user identified by a Farcaster id.
//
// HTTP: POST /auth/register
//
// Registration is idempotent: repeated calls with the same fid refresh
// the profile fields and return the same user.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.auth.Reconcile(r.Context(), string(req.FarcasterID), service.Profile{
		Username:    req.FarcasterUsername,
		DisplayName: req.FarcasterDisplayName,
		PfpURL:      req.FarcasterPfpURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type verifyRequest struct {
	Message string `json:"message"`
}

// HandleVerify verifies a signed sign-in message, reconciles the identity
// it carries, and sets the session cookie.
//
// HTTP: POST /auth/verify
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.auth.SignInWithMessage(r.Context(), req.Message)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, map[string]any{"user": result.User})
}

// HandleLogin redirects the browser to the identity provider's
// authorization page.
//
// HTTP: GET /auth/login
//
// A random state value stored in a short-lived HttpOnly cookie ties the
// eventual callback to this browser (CSRF protection).
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	url, err := h.auth.LoginURL(state)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// HandleCallback completes the OAuth login flow: validates the CSRF
// state, exchanges the code, reconciles the user, and sets the session
// cookie.
//
// HTTP: GET /auth/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization",
			slog.String("error", errParam),
		)
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	result, err := h.auth.SignInWithCode(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.logger.Error("auth callback: sign-in failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleMe returns the authenticated user's profile.
//
// HTTP: GET /api/me
// Auth: required
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleLogout clears the session cookie. The token stays valid until it
// expires, but without the cookie the browser cannot send it.
//
// HTTP: POST /auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
