package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/evcraddock/realty/internal/account"
	"github.com/evcraddock/realty/internal/models"
)

func TestStatusShowsServerAndToken(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("REALTY_TOKEN", "eyJhbGciOiJIUzI1NiJ9.payload.sig")
	t.Setenv("REALTY_SERVER_URL", "http://127.0.0.1:1")

	// An unreachable server is reported, not returned as an error.
	if err := runStatus(); err != nil {
		t.Fatalf("status: %v", err)
	}
}

func TestStatusShortToken(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("REALTY_TOKEN", "ab")
	t.Setenv("REALTY_SERVER_URL", "http://127.0.0.1:1")

	// Should not panic with a short token
	if err := runStatus(); err != nil {
		t.Fatalf("status with short token: %v", err)
	}
}

func TestStatusNoToken(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("REALTY_TOKEN", "")
	t.Setenv("REALTY_SERVER_URL", "http://127.0.0.1:1")

	if err := runStatus(); err != nil {
		t.Fatalf("status with no token: %v", err)
	}
}

func TestStatusWithServer(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"valid token", "validtoken1234567890"},
		{"invalid token", "badtoken1234567890"},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/me" {
			t.Errorf("path = %q, want /api/auth/me", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer validtoken1234567890" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(account.DTO{Email: "agent@example.com", Role: models.RoleAgent}); err != nil {
			http.Error(w, "encode error", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			t.Setenv("REALTY_TOKEN", tt.token)
			t.Setenv("REALTY_SERVER_URL", srv.URL)

			if err := runStatus(); err != nil {
				t.Fatalf("status: %v", err)
			}
		})
	}
}

func TestStatusExpiredStoredToken(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("REALTY_TOKEN", "")
	t.Setenv("REALTY_SERVER_URL", "")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	}))
	defer srv.Close()

	err := saveConfig(CLIConfig{
		ServerURL: srv.URL,
		Token:     "expiredtoken123",
		Email:     "agent@example.com",
		ExpiresAt: time.Now().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := runStatus(); err != nil {
		t.Fatalf("status: %v", err)
	}
}
