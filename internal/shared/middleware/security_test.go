package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsHostAllowed(t *testing.T) {
	tests := []struct {
		name    string
		host    string
		allowed []string
		want    bool
	}{
		{"empty allowlist accepts all", "evil.example.com", nil, true},
		{"exact match", "notify.example.com", []string{"notify.example.com"}, true},
		{"match ignoring port", "notify.example.com:8443", []string{"notify.example.com"}, true},
		{"case insensitive", "Notify.Example.COM", []string{"notify.example.com"}, true},
		{"no match", "other.example.com", []string{"notify.example.com"}, false},
		{"allowlist entry with port", "notify.example.com", []string{"notify.example.com:443"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHostAllowed(tt.host, tt.allowed); got != tt.want {
				t.Errorf("IsHostAllowed(%q, %v) = %v, want %v", tt.host, tt.allowed, got, tt.want)
			}
		})
	}
}

func TestHostFilter(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := HostFilter([]string{"notify.example.com"})(next)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Host = "notify.example.com"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("allowed host: status = %d, want %d", rr.Code, http.StatusOK)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Host = "evil.example.com"
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("blocked host: status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestHSTS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := HSTS(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Strict-Transport-Security"); got == "" {
		t.Error("Strict-Transport-Security header not set")
	}
}
