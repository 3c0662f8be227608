package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_NoKeyConfigured(t *testing.T) {
	s := &Server{apiKey: ""}
	handler := s.authMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/bots", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 when no API key configured, got %d", rr.Code)
	}
}

func TestAuthMiddleware_HealthBypass(t *testing.T) {
	s := &Server{apiKey: "secret123"}
	handler := s.authMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for /health without auth, got %d", rr.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	s := &Server{apiKey: "secret123"}
	handler := s.authMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/bots", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthMiddleware_WrongKey(t *testing.T) {
	s := &Server{apiKey: "secret123"}
	handler := s.authMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/bots", nil)
	req.Header.Set("Authorization", "Bearer wrong_key")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthMiddleware_CorrectKey(t *testing.T) {
	s := &Server{apiKey: "secret123"}
	handler := s.authMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/bots", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestAuthMiddleware_MalformedBearer(t *testing.T) {
	s := &Server{apiKey: "secret123"}
	handler := s.authMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/bots", nil)
	req.Header.Set("Authorization", "Basic secret123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-Bearer auth, got %d", rr.Code)
	}
}

func TestAuthMiddleware_StreamQueryToken(t *testing.T) {
	s := &Server{apiKey: "secret123"}
	handler := s.authMiddleware(okHandler())

	// correct token in the query string passes without a header
	req := httptest.NewRequest(http.MethodGet, "/v1/stream?token=secret123", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for stream token auth, got %d", rr.Code)
	}

	// wrong token falls through to the header check and fails
	req = httptest.NewRequest(http.MethodGet, "/v1/stream?token=nope", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong stream token, got %d", rr.Code)
	}

	// query tokens are only honored on the stream route
	req = httptest.NewRequest(http.MethodGet, "/v1/bots?token=secret123", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for query token on REST route, got %d", rr.Code)
	}
}

func TestParseLimit(t *testing.T) {
	cases := []struct {
		query    string
		deflt    int
		expected int
	}{
		{"", 100, 100},
		{"?limit=50", 100, 50},
		{"?limit=0", 100, 100},
		{"?limit=-5", 100, 100},
		{"?limit=abc", 100, 100},
		{"?limit=2000", 100, maxQueryLimit},
		{"?limit=1000", 100, 1000},
		{"?limit=1", 50, 1},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/test"+tc.query, nil)
		got := parseLimit(req, tc.deflt)
		if got != tc.expected {
			t.Fatalf("parseLimit(%q, %d) = %d, want %d", tc.query, tc.deflt, got, tc.expected)
		}
	}
}

func TestCorsMiddleware_Headers(t *testing.T) {
	handler := corsMiddleware(okHandler(), "https://dashboard.example.com")

	req := httptest.NewRequest(http.MethodGet, "/v1/bots", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	origin := rr.Header().Get("Access-Control-Allow-Origin")
	if origin != "https://dashboard.example.com" {
		t.Fatalf("expected custom origin, got %q", origin)
	}

	allow := rr.Header().Get("Access-Control-Allow-Headers")
	if allow == "" {
		t.Fatal("expected Allow-Headers to include Authorization")
	}
}

func TestCorsMiddleware_Preflight(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not be called for OPTIONS")
	})
	handler := corsMiddleware(inner, "*")

	req := httptest.NewRequest(http.MethodOptions, "/v1/bots", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for preflight, got %d", rr.Code)
	}
}

func TestCorsMiddleware_EmptyOriginDefaultsToWildcard(t *testing.T) {
	handler := corsMiddleware(okHandler(), "")

	req := httptest.NewRequest(http.MethodGet, "/v1/bots", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
}
