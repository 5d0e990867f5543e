package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"photo-gallery/internal/library"
	"photo-gallery/internal/logging"
	"photo-gallery/internal/thumbs"
)

// Thumbnail serves the small rendition of a medium.
func (h *Handlers) Thumbnail(w http.ResponseWriter, r *http.Request) {
	h.serveRendition(w, r, h.lib.Thumbnail)
}

// Display serves the large rendition of a medium.
func (h *Handlers) Display(w http.ResponseWriter, r *http.Request) {
	h.serveRendition(w, r, h.lib.Display)
}

func (h *Handlers) serveRendition(w http.ResponseWriter, r *http.Request, get func(string, library.Principal) (string, error)) {
	mediumPath := mux.Vars(r)["path"]

	path, err := get(mediumPath, principalFrom(r))
	if err != nil {
		if errors.Is(err, thumbs.ErrSourceUnavailable) {
			logging.Warn("Rendition source unavailable for %s: %v", mediumPath, err)
			writeJSONError(w, "not found", http.StatusNotFound)
			return
		}
		writeLibraryError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeFile(w, r, path)
}

// Original serves the unmodified medium, for download and for video
// playback where renditions are only posters.
func (h *Handlers) Original(w http.ResponseWriter, r *http.Request) {
	mediumPath := mux.Vars(r)["path"]

	path, mime, err := h.lib.Original(mediumPath, principalFrom(r))
	if err != nil {
		writeLibraryError(w, err)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeFile(w, r, path)
}
