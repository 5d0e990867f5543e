package middleware

import (
	"net/http"
	"strings"
	"time"

	"photo-gallery/internal/logging"
)

// statusRecorder captures the response status for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Logging returns an access-log middleware. Rendition and health-check
// requests are chatty, so they are only logged when the matching flag is
// set; everything else is always logged.
func Logging(logStaticFiles, logHealthChecks bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			if !shouldLog(r.URL.Path, logStaticFiles, logHealthChecks) {
				return
			}
			logging.Info("%s %s %d %v %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond), clientIP(r))
		})
	}
}

func shouldLog(path string, logStaticFiles, logHealthChecks bool) bool {
	switch {
	case strings.HasPrefix(path, "/api/thumbnail/"), strings.HasPrefix(path, "/api/display/"):
		return logStaticFiles
	case path == "/health", path == "/healthz", path == "/livez", path == "/readyz":
		return logHealthChecks
	}
	return true
}

// clientIP prefers the reverse proxy's forwarded address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return fwd
	}
	return r.RemoteAddr
}
