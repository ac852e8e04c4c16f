package db

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/evcraddock/realty/internal/models"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr bool
	}{
		{
			name: "creates new database",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "realty.db")
			},
		},
		{
			name: "creates nested directories",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "a", "b", "realty.db")
			},
		},
		{
			name: "opens existing database",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "realty.db")
				d, err := Open(path)
				if err != nil {
					t.Fatalf("setup: %v", err)
				}
				if err := Close(d); err != nil {
					t.Fatalf("setup close: %v", err)
				}
				return path
			},
		},
		{
			name: "empty path",
			setup: func(t *testing.T) string {
				return ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setup(t)
			d, err := Open(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer func() {
				if err := Close(d); err != nil {
					t.Errorf("close: %v", err)
				}
			}()

			if _, err := os.Stat(path); os.IsNotExist(err) {
				t.Error("database file was not created")
			}
		})
	}
}

func TestOpenConfigUnknownDriver(t *testing.T) {
	if _, err := OpenConfig(Config{Driver: "oracle", DSN: "x"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/tmp/a.db", "/tmp/a.db?" + sqliteParams},
		{"file:/tmp/a.db?cache=shared", "file:/tmp/a.db?cache=shared&" + sqliteParams},
	}
	for _, tt := range tests {
		if got := sqliteDSN(tt.path); got != tt.want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestWALMode(t *testing.T) {
	d := openTestDB(t)

	var mode string
	if err := d.Raw("PRAGMA journal_mode").Scan(&mode).Error; err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want %q", mode, "wal")
	}
}

func TestForeignKeys(t *testing.T) {
	d := openTestDB(t)

	var fk int
	if err := d.Raw("PRAGMA foreign_keys").Scan(&fk).Error; err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}

func TestMigrations(t *testing.T) {
	tests := []struct {
		name  string
		model any
		table string
		cols  []string
	}{
		{
			name:  "users table exists",
			model: &models.User{},
			table: "users",
			cols:  []string{"id", "email", "password_hash", "first_name", "last_name", "phone_number", "address", "is_active", "created_at", "last_login_at"},
		},
		{
			name:  "user_roles table exists",
			model: &models.UserRole{},
			table: "user_roles",
			cols:  []string{"user_id", "role"},
		},
		{
			name:  "properties table exists",
			model: &models.Property{},
			table: "properties",
			cols:  []string{"id", "title", "description", "price", "type", "transaction_type", "status", "address", "city", "area", "bedrooms", "bathrooms", "year_built", "is_featured", "view_count", "created_at", "updated_at", "owner_id"},
		},
		{
			name:  "property_images table exists",
			model: &models.PropertyImage{},
			table: "property_images",
			cols:  []string{"id", "property_id", "image_url", "thumbnail_url", "is_primary", "display_order", "uploaded_at"},
		},
		{
			name:  "inquiries table exists",
			model: &models.Inquiry{},
			table: "inquiries",
			cols:  []string{"id", "property_id", "user_id", "message", "phone_number", "preferred_visit_date", "status", "request_date", "response_date", "admin_notes"},
		},
		{
			name:  "messages table exists",
			model: &models.Message{},
			table: "messages",
			cols:  []string{"id", "sender_id", "receiver_id", "subject", "content", "is_read", "sent_date", "property_id"},
		},
	}

	d := openTestDB(t)
	m := d.Migrator()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !m.HasTable(tt.table) {
				t.Fatalf("table %s missing", tt.table)
			}
			for _, col := range tt.cols {
				if !m.HasColumn(tt.model, col) {
					t.Errorf("column %s.%s missing", tt.table, col)
				}
			}
		})
	}

	for _, idx := range []string{"idx_messages_receiver_unread", "idx_properties_featured", "idx_inquiries_status_date"} {
		var n int
		if err := d.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = ?", idx).Scan(&n).Error; err != nil {
			t.Fatalf("query index %s: %v", idx, err)
		}
		if n != 1 {
			t.Errorf("index %s missing", idx)
		}
	}
}

func TestCascadeDelete(t *testing.T) {
	d := openTestDB(t)
	owner := insertUser(t, d, "owner@example.com")
	buyer := insertUser(t, d, "buyer@example.com")
	p := insertProperty(t, d, owner.ID)

	for i := 0; i < 3; i++ {
		img := models.PropertyImage{PropertyID: p.ID, ImageURL: "/img.jpg", DisplayOrder: i, UploadedAt: time.Now()}
		if err := d.Create(&img).Error; err != nil {
			t.Fatalf("insert image %d: %v", i, err)
		}
	}
	inq := models.Inquiry{PropertyID: p.ID, UserID: buyer.ID, Message: "hi", PhoneNumber: "1", RequestDate: time.Now()}
	if err := d.Create(&inq).Error; err != nil {
		t.Fatalf("insert inquiry: %v", err)
	}

	if err := d.Delete(&models.Property{}, p.ID).Error; err != nil {
		t.Fatalf("delete property: %v", err)
	}

	var images, inquiries int64
	if err := d.Model(&models.PropertyImage{}).Where("property_id = ?", p.ID).Count(&images).Error; err != nil {
		t.Fatalf("count images: %v", err)
	}
	if err := d.Model(&models.Inquiry{}).Where("property_id = ?", p.ID).Count(&inquiries).Error; err != nil {
		t.Fatalf("count inquiries: %v", err)
	}
	if images != 0 {
		t.Errorf("expected 0 images after cascade delete, got %d", images)
	}
	if inquiries != 0 {
		t.Errorf("expected 0 inquiries after cascade delete, got %d", inquiries)
	}
}

func TestRestrictDeleteOwner(t *testing.T) {
	d := openTestDB(t)
	owner := insertUser(t, d, "owner@example.com")
	insertProperty(t, d, owner.ID)

	err := d.Delete(&models.User{}, "id = ?", owner.ID).Error
	if err == nil {
		t.Fatal("expected foreign key error deleting an owner")
	}
	if !IsForeignKeyViolation(err) {
		t.Errorf("IsForeignKeyViolation(%v) = false, want true", err)
	}
}

func TestMessagePropertySetNull(t *testing.T) {
	d := openTestDB(t)
	a := insertUser(t, d, "a@example.com")
	b := insertUser(t, d, "b@example.com")
	p := insertProperty(t, d, a.ID)

	msg := models.Message{SenderID: a.ID, ReceiverID: b.ID, Subject: "s", Content: "c", SentDate: time.Now(), PropertyID: &p.ID}
	if err := d.Create(&msg).Error; err != nil {
		t.Fatalf("insert message: %v", err)
	}

	if err := d.Delete(&models.Property{}, p.ID).Error; err != nil {
		t.Fatalf("delete property: %v", err)
	}

	var got models.Message
	if err := d.First(&got, msg.ID).Error; err != nil {
		t.Fatalf("reload message: %v", err)
	}
	if got.PropertyID != nil {
		t.Errorf("property_id = %d, want NULL", *got.PropertyID)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	d := openTestDB(t)
	insertUser(t, d, "dup@example.com")

	err := d.Create(&models.User{ID: "other", Email: "dup@example.com", PasswordHash: "x", IsActive: true, CreatedAt: time.Now()}).Error
	if err == nil {
		t.Fatal("expected duplicate email error")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}
	if IsUniqueViolation(nil) {
		t.Error("IsUniqueViolation(nil) = true")
	}
	if IsForeignKeyViolation(err) {
		t.Error("duplicate email reported as foreign key violation")
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "realty.db")

	// Open twice; migrations should not fail on second run
	d1, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := Close(d1); err != nil {
		t.Fatalf("first close: %v", err)
	}

	d2, err := Open(path)
	if err != nil {
		t.Fatalf("second open (idempotency): %v", err)
	}
	if err := Close(d2); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestDefaultPath(t *testing.T) {
	p, err := DefaultPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if filepath.Base(p) != "realty.db" {
		t.Errorf("expected filename realty.db, got %s", filepath.Base(p))
	}

	dir := filepath.Base(filepath.Dir(p))
	if dir != ".realty" {
		t.Errorf("expected directory .realty, got %s", dir)
	}
}

// openTestDB creates a temporary database for testing.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "realty.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if err := Close(d); err != nil {
			t.Errorf("close test db: %v", err)
		}
	})
	return d
}

func insertUser(t *testing.T, d *gorm.DB, email string) *models.User {
	t.Helper()
	u := &models.User{
		ID:           "user-" + email,
		Email:        email,
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     "User",
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	if err := d.Create(u).Error; err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return u
}

func insertProperty(t *testing.T, d *gorm.DB, ownerID string) *models.Property {
	t.Helper()
	p := &models.Property{
		Title:       "Test",
		Description: "Test listing",
		Price:       100000,
		Address:     "1 Test St",
		Area:        50,
		OwnerID:     ownerID,
		CreatedAt:   time.Now(),
	}
	if err := d.Create(p).Error; err != nil {
		t.Fatalf("insert property: %v", err)
	}
	return p
}
