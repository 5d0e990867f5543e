package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"photo-gallery/internal/database"
	"photo-gallery/internal/library"
	"photo-gallery/internal/logging"
	"photo-gallery/internal/metrics"
)

// SessionCookieName is the name of the session cookie
const SessionCookieName = "gallery_session"

type principalKey struct{}

// principalFrom returns the principal the middleware attached to the
// request. The zero principal means the request never passed the
// middleware, which only happens in tests.
func principalFrom(r *http.Request) library.Principal {
	p, _ := r.Context().Value(principalKey{}).(library.Principal)
	return p
}

// requestWithPrincipal is used by tests to inject an identity directly.
func requestWithPrincipal(r *http.Request, p library.Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), principalKey{}, p))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Email  string   `json:"email"`
	Admin  bool     `json:"admin"`
	Groups []string `json:"groups"`
}

// Login checks credentials and sets the session cookie.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.db.ValidateCredentials(req.Email, req.Password)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("failure").Inc()
		logging.Warn("Failed login for %s from %s", req.Email, r.RemoteAddr)
		writeJSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	session, err := h.db.CreateSession(user.ID)
	if err != nil {
		logging.Error("creating session for %s: %v", user.Email, err)
		writeJSONError(w, "internal error", http.StatusInternalServerError)
		return
	}

	metrics.AuthAttemptsTotal.WithLabelValues("success").Inc()
	logging.Info("User %s logged in", user.Email)

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	groups, err := h.db.UserGroups(user.ID)
	if err != nil {
		logging.Warn("resolving groups for %s: %v", user.Email, err)
	}
	writeJSON(w, loginResponse{Email: user.Email, Admin: user.Admin, Groups: groups})
}

// Logout deletes the session and clears the cookie.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err == nil && cookie.Value != "" {
		if err := h.db.DeleteSession(cookie.Value); err != nil {
			logging.Warn("deleting session on logout: %v", err)
		}
	}

	clearSessionCookie(w)
	writeJSONStatus(w, "logged out")
}

// CheckAuth reports who the current session belongs to.
func (h *Handlers) CheckAuth(w http.ResponseWriter, r *http.Request) {
	user, err := h.sessionUser(r)
	if err != nil {
		clearSessionCookie(w)
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	groups, err := h.db.UserGroups(user.ID)
	if err != nil {
		logging.Warn("resolving groups for %s: %v", user.Email, err)
	}
	writeJSON(w, loginResponse{Email: user.Email, Admin: user.Admin, Groups: groups})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword lets a signed-in user rotate their own password. All of
// their sessions, this one included, are revoked.
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, err := h.sessionUser(r)
	if err != nil {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.NewPassword == "" {
		writeJSONError(w, "new password must not be empty", http.StatusBadRequest)
		return
	}
	if _, err := h.db.ValidateCredentials(user.Email, req.CurrentPassword); err != nil {
		writeJSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := h.db.UpdatePassword(user.Email, req.NewPassword); err != nil {
		logging.Error("updating password for %s: %v", user.Email, err)
		writeJSONError(w, "internal error", http.StatusInternalServerError)
		return
	}

	logging.Info("User %s changed password", user.Email)
	clearSessionCookie(w)
	writeJSONStatus(w, "password changed")
}

// AuthMiddleware resolves the session cookie to a principal and attaches
// it to the request. Requests without a valid session get a 401.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.sessionUser(r)
		if err != nil {
			if !errors.Is(err, http.ErrNoCookie) {
				clearSessionCookie(w)
			}
			writeJSONError(w, "not authenticated", http.StatusUnauthorized)
			return
		}

		groups, err := h.db.UserGroups(user.ID)
		if err != nil {
			logging.Warn("resolving groups for %s: %v", user.Email, err)
		}

		p := library.Principal{Email: user.Email, Admin: user.Admin, Groups: groups}
		next.ServeHTTP(w, requestWithPrincipal(r, p))
	})
}

// AdminOnly rejects requests whose principal is not an administrator. It
// must run inside AuthMiddleware.
func (h *Handlers) AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := principalFrom(r)
		if !p.Admin {
			logging.Warn("Non-admin %s hit admin endpoint %s", p.Email, r.URL.Path)
			writeJSONError(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) sessionUser(r *http.Request) (*database.User, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, err
	}
	if cookie.Value == "" {
		return nil, database.ErrInvalidSession
	}
	return h.db.ValidateSession(cookie.Value)
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
