package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusRecorder(t *testing.T) {
	handler := Logging(false, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/album/", nil))
	if rr.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusTeapot)
	}
}

func TestShouldLog(t *testing.T) {
	tests := []struct {
		path            string
		logStatic       bool
		logHealthChecks bool
		want            bool
	}{
		{"/api/album/trips", false, false, true},
		{"/api/thumbnail/trips/pic.jpg", false, true, false},
		{"/api/thumbnail/trips/pic.jpg", true, false, true},
		{"/api/display/trips/pic.jpg", false, true, false},
		{"/health", true, false, false},
		{"/health", false, true, true},
		{"/api/auth/login", false, false, true},
	}
	for _, tc := range tests {
		if got := shouldLog(tc.path, tc.logStatic, tc.logHealthChecks); got != tc.want {
			t.Errorf("shouldLog(%q, %v, %v) = %v, want %v", tc.path, tc.logStatic, tc.logHealthChecks, got, tc.want)
		}
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	if got := clientIP(r); got != "10.0.0.1:1234" {
		t.Errorf("clientIP = %q", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := clientIP(r); got != "203.0.113.9" {
		t.Errorf("clientIP with forwarded header = %q", got)
	}
}

func TestMetricsMiddlewarePassesThrough(t *testing.T) {
	called := false
	handler := Metrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if !called {
		t.Fatal("wrapped handler not called")
	}
	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rr.Code)
	}
}
