package cli

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/evcraddock/realty/internal/account"
	"github.com/evcraddock/realty/internal/db"
	"github.com/evcraddock/realty/internal/models"
)

func TestMigrateCreatesDatabase(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "realty.db")

	if _, err := executeCommand("migrate", "--db", path); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database not created: %v", err)
	}
}

func TestUserCreate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "realty.db")

	_, err := executeCommand("user", "create",
		"--db", path,
		"--email", "Agent@Example.com",
		"--password", "agent123",
		"--first", "Ada",
		"--last", "Agent",
		"--role", "agent",
	)
	if err != nil {
		t.Fatalf("user create: %v", err)
	}

	database, err := db.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeDB(database)

	svc := account.NewService(account.NewRepository(database))
	u, err := svc.Authenticate(context.Background(), "agent@example.com", "agent123")
	if err != nil {
		t.Fatalf("authenticate created user: %v", err)
	}
	if u.Role != models.RoleAgent {
		t.Errorf("role = %q, want Agent", u.Role)
	}
	if u.FullName != "Ada Agent" {
		t.Errorf("full name = %q", u.FullName)
	}
}

func TestUserCreateRejects(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown role", []string{"--role", "Owner", "--password", "agent123"}, "invalid role"},
		{"weak password", []string{"--password", "short"}, "Passwords must"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			args := append([]string{"user", "create",
				"--db", filepath.Join(t.TempDir(), "realty.db"),
				"--email", "x@example.com",
				"--first", "X",
				"--last", "Y",
			}, tt.args...)

			_, err := executeCommand(args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestInquiriesUsesRole(t *testing.T) {
	tests := []struct {
		role     models.Role
		wantPath string
	}{
		{models.RoleClient, "/api/inquiries/mine"},
		{models.RoleAgent, "/api/inquiries"},
		{models.RoleAdmin, "/api/inquiries"},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			var listed string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				if r.URL.Path == "/api/auth/me" {
					_, _ = io.WriteString(w, `{"id":"u1","email":"u@example.com","role":"`+string(tt.role)+`"}`)
					return
				}
				listed = r.URL.Path
				if r.URL.Query().Get("status") != "New" {
					t.Errorf("status = %q, want New", r.URL.Query().Get("status"))
				}
				_, _ = io.WriteString(w, `{"items":[{"id":1,"propertyId":2,"userId":"u2","status":0,"requestDate":"2026-01-02T03:04:05Z"}],"totalCount":1,"pageNumber":1,"pageSize":12}`)
			}))
			defer srv.Close()

			t.Setenv("HOME", t.TempDir())
			t.Setenv("REALTY_SERVER_URL", srv.URL)
			t.Setenv("REALTY_TOKEN", "token")

			if err := runInquiries("New"); err != nil {
				t.Fatalf("inquiries: %v", err)
			}
			if listed != tt.wantPath {
				t.Errorf("listed %q, want %q", listed, tt.wantPath)
			}
		})
	}
}

func TestInbox(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/messages/inbox":
			_, _ = io.WriteString(w, `{"items":[{"id":5,"senderId":"u2","subject":"Viewing","isRead":false,"sentDate":"2026-01-02T03:04:05Z"}],"totalCount":1,"pageNumber":1,"pageSize":12}`)
		case "/api/messages/unread-count":
			_, _ = io.WriteString(w, `{"count":1}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("REALTY_SERVER_URL", srv.URL)
	t.Setenv("REALTY_TOKEN", "token")

	if err := runInbox(1, 0); err != nil {
		t.Fatalf("inbox: %v", err)
	}
	if strings.Join(paths, ",") != "/api/messages/inbox,/api/messages/unread-count" {
		t.Errorf("paths = %v", paths)
	}
}

func TestRemoveReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/properties/3" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":"forbidden"}`)
	}))
	defer srv.Close()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("REALTY_SERVER_URL", srv.URL)
	t.Setenv("REALTY_TOKEN", "token")

	_, err := executeCommand("remove", "3")
	if err == nil || err.Error() != "forbidden" {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
