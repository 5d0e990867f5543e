package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"photo-gallery/internal/library"
	"photo-gallery/internal/logging"
	"photo-gallery/internal/metrics"
)

// writeJSON encodes v as JSON. Encoding errors are logged since the
// response is already underway and cannot be unwound.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		logging.Error("failed to encode JSON error response: %v", err)
	}
}

// writeJSONStatus writes a simple status response as JSON.
func writeJSONStatus(w http.ResponseWriter, status string) {
	writeJSON(w, map[string]string{"status": status})
}

// writeLibraryError maps tree errors to their HTTP status: unknown albums
// are 404, denied albums 403. Anything else is a 500.
func writeLibraryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, library.ErrAlbumNotFound):
		writeJSONError(w, "not found", http.StatusNotFound)
	case errors.Is(err, library.ErrNotTraversable):
		metrics.PermissionDenials.WithLabelValues("traverse").Inc()
		writeJSONError(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, library.ErrNotBrowsable):
		metrics.PermissionDenials.WithLabelValues("browse").Inc()
		writeJSONError(w, "forbidden", http.StatusForbidden)
	default:
		logging.Error("album request failed: %v", err)
		writeJSONError(w, "internal error", http.StatusInternalServerError)
	}
}
