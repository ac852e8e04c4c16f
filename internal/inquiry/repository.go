// Package inquiry manages contact requests sent about listings.
package inquiry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/evcraddock/realty/internal/models"
	"github.com/evcraddock/realty/internal/paging"
)

var (
	// ErrNotFound is returned when an inquiry does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPropertyNotFound is returned when a new inquiry refers to a missing property.
	ErrPropertyNotFound = errors.New("property not found")
)

// Repository provides data access for inquiries.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates an inquiry repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Filter controls List. New and Pending match each other.
type Filter struct {
	Status     *models.InquiryStatus
	PropertyID *int64
	OwnerID    string // inquiries on listings owned by this user
	UserID     string // inquiries sent by this user
	paging.Params
}

func (f Filter) where() (string, []any) {
	var conditions []string
	var args []any

	if f.Status != nil {
		if f.Status.Open() {
			conditions = append(conditions, "inquiries.status IN ?")
			args = append(args, models.OpenInquiryStatuses)
		} else {
			conditions = append(conditions, "inquiries.status = ?")
			args = append(args, *f.Status)
		}
	}
	if f.PropertyID != nil {
		conditions = append(conditions, "inquiries.property_id = ?")
		args = append(args, *f.PropertyID)
	}
	if f.OwnerID != "" {
		conditions = append(conditions, "properties.owner_id = ?")
		args = append(args, f.OwnerID)
	}
	if f.UserID != "" {
		conditions = append(conditions, "inquiries.user_id = ?")
		args = append(args, f.UserID)
	}

	return strings.Join(conditions, " AND "), args
}

func (r *Repository) filtered(ctx context.Context, f Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Inquiry{})
	if f.OwnerID != "" {
		q = q.Joins("JOIN properties ON properties.id = inquiries.property_id")
	}
	if where, args := f.where(); where != "" {
		q = q.Where(where, args...)
	}
	return q
}

// List returns one page of inquiries, newest first, with property and sender loaded.
func (r *Repository) List(ctx context.Context, f Filter) ([]models.Inquiry, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting inquiries: %w", err)
	}

	var inqs []models.Inquiry
	err := r.filtered(ctx, f).
		Preload("Property").
		Preload("User").
		Order("inquiries.request_date DESC, inquiries.id DESC").
		Scopes(f.Params.Scope).
		Find(&inqs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing inquiries: %w", err)
	}
	return inqs, total, nil
}

// GetByID returns an inquiry with its property and sender.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Inquiry, error) {
	var inq models.Inquiry
	err := r.db.WithContext(ctx).Preload("Property").Preload("User").First(&inq, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("inquiry %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying inquiry %d: %w", id, err)
	}
	return &inq, nil
}

// Create inserts inq after loading its property and passing it to check,
// all in one transaction. A missing property yields ErrPropertyNotFound.
func (r *Repository) Create(ctx context.Context, inq *models.Inquiry, check func(*models.Property) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Property
		err := tx.Select("id", "owner_id", "title").First(&p, inq.PropertyID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %d", ErrPropertyNotFound, inq.PropertyID)
		}
		if err != nil {
			return fmt.Errorf("querying property %d: %w", inq.PropertyID, err)
		}
		if check != nil {
			if err := check(&p); err != nil {
				return err
			}
		}
		if err := tx.Omit("Property", "User").Create(inq).Error; err != nil {
			return fmt.Errorf("inserting inquiry: %w", err)
		}
		return nil
	})
}

// UpdateStatus sets the status and, when non-nil, the response date and notes.
// Returns false if the inquiry does not exist.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status models.InquiryStatus, respondedAt *time.Time, notes *string) (bool, error) {
	updates := map[string]any{"status": status}
	if respondedAt != nil {
		updates["response_date"] = *respondedAt
	}
	if notes != nil {
		updates["admin_notes"] = *notes
	}

	res := r.db.WithContext(ctx).Model(&models.Inquiry{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("updating inquiry %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete removes an inquiry. Returns false if it does not exist.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Inquiry{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("deleting inquiry %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// PendingCount returns the number of open inquiries.
func (r *Repository) PendingCount(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Inquiry{}).
		Where("status IN ?", models.OpenInquiryStatuses).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("counting pending inquiries: %w", err)
	}
	return n, nil
}
