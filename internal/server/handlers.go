package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hackspark/hackspark/internal/session"
	"github.com/hackspark/hackspark/pkg/client"
	"github.com/hackspark/hackspark/pkg/domain"
)

type handler struct {
	deps Deps
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client gone
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// userDetails answers with the bare UserDetails. Every failure, including
// a missing session, is reported as the same 500.
func (h *handler) userDetails(w http.ResponseWriter, r *http.Request) {
	c, err := h.deps.Resolver.CreateAuthenticatedClient(r.Context())
	if err == nil {
		var d domain.UserDetails
		if d, err = c.UserDetails(r.Context()); err == nil {
			writeJSON(w, http.StatusOK, d)
			return
		}
	}
	h.deps.Logger.Error("failed to fetch user details",
		"error", err,
		"kind", string(client.KindOf(err)),
	)
	writeError(w, http.StatusInternalServerError, "Failed to fetch user details")
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	user, token, err := h.deps.Resolver.SignIn(r.Context(), req)
	if err != nil {
		h.deps.Logger.Warn("login failed", "error", err)
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	maxAge := session.DefaultMaxAge
	if req.Remember {
		maxAge = session.DefaultRememberMaxAge
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   h.deps.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	// The backend credential stays inside the signed cookie.
	out := *user
	out.SessionID = ""
	writeJSON(w, http.StatusOK, struct {
		Success bool                     `json:"success"`
		Data    domain.AuthenticatedUser `json:"data"`
	}{true, out})
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Resolver.Logout(r.Context()); err != nil {
		h.deps.Logger.Warn("logout failed", "error", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.deps.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
