// Package dbtest provides database fixtures for tests in other packages.
package dbtest

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/evcraddock/realty/internal/db"
	"github.com/evcraddock/realty/internal/models"
)

// Open creates a migrated SQLite database in a temp dir, closed on cleanup.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "realty.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(d); err != nil {
			t.Errorf("close test db: %v", err)
		}
	})
	return d
}

// User inserts an active user holding role. The id is derived from the
// email's local part so tests can refer to it.
func User(t testing.TB, d *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	local, _, _ := strings.Cut(email, "@")
	u := &models.User{
		ID:           "user-" + local,
		Email:        email,
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     local,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
		Roles:        []models.UserRole{{Role: role}},
	}
	if err := d.Create(u).Error; err != nil {
		t.Fatalf("insert user %s: %v", email, err)
	}
	return u
}

// Property inserts an available listing owned by ownerID after applying opts.
func Property(t testing.TB, d *gorm.DB, ownerID string, opts ...func(*models.Property)) *models.Property {
	t.Helper()
	p := &models.Property{
		Title:       "Test listing",
		Description: "A place to live",
		Price:       100000,
		Address:     "1 Test St",
		City:        "Springfield",
		Area:        50,
		Status:      models.PropertyStatusAvailable,
		OwnerID:     ownerID,
		CreatedAt:   time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := d.Create(p).Error; err != nil {
		t.Fatalf("insert property: %v", err)
	}
	return p
}

// Inquiry inserts an inquiry from userID about propertyID.
func Inquiry(t testing.TB, d *gorm.DB, propertyID int64, userID string, status models.InquiryStatus) *models.Inquiry {
	t.Helper()
	inq := &models.Inquiry{
		PropertyID:  propertyID,
		UserID:      userID,
		Message:     "Is it still available?",
		PhoneNumber: "555-0100",
		Status:      status,
		RequestDate: time.Now().UTC(),
	}
	if err := d.Create(inq).Error; err != nil {
		t.Fatalf("insert inquiry: %v", err)
	}
	return inq
}

// Message inserts an unread message.
func Message(t testing.TB, d *gorm.DB, senderID, receiverID string) *models.Message {
	t.Helper()
	m := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Subject:    "Hello",
		Content:    "Hi there",
		SentDate:   time.Now().UTC(),
	}
	if err := d.Create(m).Error; err != nil {
		t.Fatalf("insert message: %v", err)
	}
	return m
}
