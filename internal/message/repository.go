// Package message implements private mail between users.
package message

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/evcraddock/realty/internal/models"
	"github.com/evcraddock/realty/internal/paging"
)

// ErrNotFound is returned when a message does not exist or is not visible to the caller.
var ErrNotFound = errors.New("message not found")

// Repository provides data access for messages.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a message repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func withParties(db *gorm.DB) *gorm.DB {
	return db.Preload("Sender").Preload("Receiver").Preload("Property")
}

// GetByID returns a message with sender, receiver and property loaded.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	var m models.Message
	err := withParties(r.db.WithContext(ctx)).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("message %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying message %d: %w", id, err)
	}
	return &m, nil
}

// Create inserts a message.
func (r *Repository) Create(ctx context.Context, m *models.Message) error {
	if err := r.db.WithContext(ctx).Omit("Sender", "Receiver", "Property").Create(m).Error; err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	return nil
}

// Inbox returns one page of messages received by userID, newest first.
func (r *Repository) Inbox(ctx context.Context, userID string, p paging.Params) ([]models.Message, int64, error) {
	return r.page(ctx, "receiver_id = ?", userID, p)
}

// Sent returns one page of messages sent by userID, newest first.
func (r *Repository) Sent(ctx context.Context, userID string, p paging.Params) ([]models.Message, int64, error) {
	return r.page(ctx, "sender_id = ?", userID, p)
}

func (r *Repository) page(ctx context.Context, where, userID string, p paging.Params) ([]models.Message, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).Where(where, userID).Count(&total).Error
	if err != nil {
		return nil, 0, fmt.Errorf("counting messages: %w", err)
	}

	var msgs []models.Message
	err = withParties(r.db.WithContext(ctx)).
		Where(where, userID).
		Order("sent_date DESC, id DESC").
		Scopes(p.Scope).
		Find(&msgs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing messages: %w", err)
	}
	return msgs, total, nil
}

// MarkAsRead flags a message read if receiverID received it.
// Returns false if no such message exists. Marking twice is harmless.
func (r *Repository) MarkAsRead(ctx context.Context, id int64, receiverID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ? AND receiver_id = ?", id, receiverID).
		UpdateColumn("is_read", true)
	if res.Error != nil {
		return false, fmt.Errorf("marking message %d read: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete removes a message. Returns false if it does not exist.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Message{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("deleting message %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// UnreadCount returns the number of unread messages received by userID.
func (r *Repository) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("counting unread messages: %w", err)
	}
	return n, nil
}

// UserExists reports whether a user with id exists.
func (r *Repository) UserExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, &models.User{}, id)
}

// PropertyExists reports whether a property with id exists.
func (r *Repository) PropertyExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, &models.Property{}, id)
}

func (r *Repository) exists(ctx context.Context, model any, id any) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("checking existence: %w", err)
	}
	return n > 0, nil
}
