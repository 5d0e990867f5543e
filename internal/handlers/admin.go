package handlers

import (
	"net/http"
	"time"

	"photo-gallery/internal/logging"
)

type reloadResponse struct {
	Status   string `json:"status"`
	Albums   int    `json:"albums"`
	Media    int    `json:"media"`
	Duration string `json:"duration"`
}

// Reload rebuilds the album tree from the filesystem and swaps it in.
// Requests running against the previous tree are unaffected.
func (h *Handlers) Reload(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r)
	logging.Info("Library reload requested by %s", p.Email)

	start := time.Now()
	if err := h.lib.Reload(); err != nil {
		logging.Error("library reload failed: %v", err)
		writeJSONError(w, "reload failed", http.StatusInternalServerError)
		return
	}

	tree := h.lib.Tree()
	writeJSON(w, reloadResponse{
		Status:   "reloaded",
		Albums:   tree.Len(),
		Media:    tree.MediaCount(),
		Duration: time.Since(start).Round(time.Millisecond).String(),
	})
}

type userView struct {
	Email  string `json:"email"`
	Admin  bool   `json:"admin"`
	Active bool   `json:"active"`
}

// ListUsers returns every account, for the admin UI.
func (h *Handlers) ListUsers(w http.ResponseWriter, _ *http.Request) {
	users, err := h.db.ListUsers()
	if err != nil {
		logging.Error("listing users: %v", err)
		writeJSONError(w, "internal error", http.StatusInternalServerError)
		return
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, userView{Email: u.Email, Admin: u.Admin, Active: u.Active})
	}
	writeJSON(w, views)
}
