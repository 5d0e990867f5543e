package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes attaches every API route to the router. Auth routes are
// open; album and media routes require a session; admin routes require the
// administrator role on top.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/check", h.CheckAuth).Methods(http.MethodGet)
	api.HandleFunc("/auth/password", h.ChangePassword).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(h.AuthMiddleware)
	protected.HandleFunc("/album/{path:.*}", h.Album).Methods(http.MethodGet)
	protected.HandleFunc("/thumbnail/{path:.*}", h.Thumbnail).Methods(http.MethodGet)
	protected.HandleFunc("/display/{path:.*}", h.Display).Methods(http.MethodGet)
	protected.HandleFunc("/medium/{path:.*}", h.Original).Methods(http.MethodGet)

	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(h.AdminOnly)
	admin.HandleFunc("/reload", h.Reload).Methods(http.MethodPost)
	admin.HandleFunc("/users", h.ListUsers).Methods(http.MethodGet)

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", h.Version).Methods(http.MethodGet)
}
