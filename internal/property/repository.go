package property

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/evcraddock/realty/internal/models"
	"github.com/evcraddock/realty/internal/paging"
)

// ErrNotFound is returned when a property or image does not exist.
var ErrNotFound = errors.New("property not found")

// Repository provides data access for properties and their images.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a property repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Sort keys accepted by Filter.SortBy.
const (
	SortByDate  = "date"
	SortByPrice = "price"
	SortByViews = "views"
)

// Filter controls Search. Nil pointers and empty strings are ignored.
type Filter struct {
	SearchTerm  string
	Type        *models.PropertyType
	Status      *models.PropertyStatus
	Transaction *models.TransactionType
	MinPrice    *float64
	MaxPrice    *float64
	MinArea     *float64
	MaxArea     *float64
	MinBedrooms *int
	MaxBedrooms *int
	City        string
	IsFeatured  *bool
	OwnerID     string
	SortBy      string // price, date, views
	SortOrder   string // asc, desc
	paging.Params
}

// where builds the conjunctive predicate for f.
func (f Filter) where() (string, []any) {
	var conditions []string
	var args []any

	if term := strings.TrimSpace(f.SearchTerm); term != "" {
		pattern := likePattern(term)
		conditions = append(conditions,
			`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(city) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}
	if f.Type != nil {
		conditions = append(conditions, "type = ?")
		args = append(args, *f.Type)
	}
	if f.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *f.Status)
	}
	if f.Transaction != nil {
		conditions = append(conditions, "transaction_type = ?")
		args = append(args, *f.Transaction)
	}
	if f.MinPrice != nil {
		conditions = append(conditions, "price >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		conditions = append(conditions, "price <= ?")
		args = append(args, *f.MaxPrice)
	}
	if f.MinArea != nil {
		conditions = append(conditions, "area >= ?")
		args = append(args, *f.MinArea)
	}
	if f.MaxArea != nil {
		conditions = append(conditions, "area <= ?")
		args = append(args, *f.MaxArea)
	}
	if f.MinBedrooms != nil {
		conditions = append(conditions, "bedrooms >= ?")
		args = append(args, *f.MinBedrooms)
	}
	if f.MaxBedrooms != nil {
		conditions = append(conditions, "bedrooms <= ?")
		args = append(args, *f.MaxBedrooms)
	}
	if city := strings.TrimSpace(f.City); city != "" {
		conditions = append(conditions, "LOWER(city) = ?")
		args = append(args, strings.ToLower(city))
	}
	if f.IsFeatured != nil {
		conditions = append(conditions, "is_featured = ?")
		args = append(args, *f.IsFeatured)
	}
	if f.OwnerID != "" {
		conditions = append(conditions, "owner_id = ?")
		args = append(args, f.OwnerID)
	}

	return strings.Join(conditions, " AND "), args
}

// orderBy returns the ORDER BY clause, falling back to newest first.
// id is appended so pages never overlap when the sort key ties.
func (f Filter) orderBy() string {
	dir := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		dir = "ASC"
	}

	var col string
	switch strings.ToLower(f.SortBy) {
	case SortByPrice:
		col = "price"
	case SortByViews:
		col = "view_count"
	case SortByDate, "":
		col = "created_at"
	default:
		return "created_at DESC, id DESC"
	}
	return fmt.Sprintf("%s %s, id %s", col, dir, dir)
}

// likePattern lower-cases term and escapes LIKE wildcards.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}

func imagesInOrder(db *gorm.DB) *gorm.DB {
	return db.Order("display_order ASC, id ASC")
}

func (r *Repository) filtered(ctx context.Context, f Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Property{})
	if where, args := f.where(); where != "" {
		q = q.Where(where, args...)
	}
	return q
}

// Search returns one page of properties matching f and the total match count.
// f.Params must already be normalized.
func (r *Repository) Search(ctx context.Context, f Filter) ([]models.Property, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting properties: %w", err)
	}

	var props []models.Property
	err := r.filtered(ctx, f).
		Preload("Owner").
		Preload("Images", imagesInOrder).
		Order(f.orderBy()).
		Scopes(f.Params.Scope).
		Find(&props).Error
	if err != nil {
		return nil, 0, fmt.Errorf("searching properties: %w", err)
	}

	return props, total, nil
}

// GetByID returns a property without its relations.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Property, error) {
	var p models.Property
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("property %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying property %d: %w", id, err)
	}
	return &p, nil
}

// GetByIDWithDetails returns a property with its owner and ordered images,
// and its inquiries when withInquiries is set.
func (r *Repository) GetByIDWithDetails(ctx context.Context, id int64, withInquiries bool) (*models.Property, error) {
	q := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Images", imagesInOrder)
	if withInquiries {
		q = q.Preload("Inquiries", func(db *gorm.DB) *gorm.DB {
			return db.Order("request_date DESC, id DESC")
		}).Preload("Inquiries.User")
	}

	var p models.Property
	err := q.First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("property %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying property %d: %w", id, err)
	}
	return &p, nil
}

// GetFeatured returns up to count featured, available properties, newest first.
func (r *Repository) GetFeatured(ctx context.Context, count int) ([]models.Property, error) {
	var props []models.Property
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Images", imagesInOrder).
		Where("is_featured = ? AND status = ?", true, models.PropertyStatusAvailable).
		Order("created_at DESC, id DESC").
		Limit(count).
		Find(&props).Error
	if err != nil {
		return nil, fmt.Errorf("querying featured properties: %w", err)
	}
	return props, nil
}

// IncrementViewCount adds one to the view counter in a single statement.
// Returns false if the property does not exist.
func (r *Repository) IncrementViewCount(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Property{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if res.Error != nil {
		return false, fmt.Errorf("incrementing view count for %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// TotalCount returns the number of properties.
func (r *Repository) TotalCount(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Property{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting properties: %w", err)
	}
	return n, nil
}

// CountByStatus returns the number of properties with the given status.
func (r *Repository) CountByStatus(ctx context.Context, status models.PropertyStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Property{}).Where("status = ?", status).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("counting %s properties: %w", status, err)
	}
	return n, nil
}

// CountByOwner returns the number of properties owned by a user.
func (r *Repository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Property{}).Where("owner_id = ?", ownerID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("counting properties for owner %s: %w", ownerID, err)
	}
	return n, nil
}

// Create inserts a property and its images in one transaction.
// Image PropertyIDs are filled in from the new property.
func (r *Repository) Create(ctx context.Context, p *models.Property) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return fmt.Errorf("inserting property: %w", err)
		}
		if len(p.Images) == 0 {
			return nil
		}
		for i := range p.Images {
			p.Images[i].PropertyID = p.ID
		}
		if err := tx.Create(&p.Images).Error; err != nil {
			return fmt.Errorf("inserting images: %w", err)
		}
		return nil
	})
}

// Update replaces the editable fields of p and stamps updated_at.
// Images and owner are not touched. Returns false if the property does not exist.
func (r *Repository) Update(ctx context.Context, p *models.Property) (bool, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&models.Property{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"title":            p.Title,
			"description":      p.Description,
			"price":            p.Price,
			"type":             p.Type,
			"transaction_type": p.Transaction,
			"status":           p.Status,
			"address":          p.Address,
			"city":             p.City,
			"area":             p.Area,
			"bedrooms":         p.Bedrooms,
			"bathrooms":        p.Bathrooms,
			"year_built":       p.YearBuilt,
			"is_featured":      p.IsFeatured,
			"updated_at":       now,
		})
	if res.Error != nil {
		return false, fmt.Errorf("updating property %d: %w", p.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	p.UpdatedAt = &now
	return true, nil
}

// UpdateStatus sets only the status column. Returns false if the property does not exist.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status models.PropertyStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Property{}).
		Where("id = ?", id).
		UpdateColumn("status", status)
	if res.Error != nil {
		return false, fmt.Errorf("updating status of property %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete removes a property; images and inquiries cascade.
// Returns false if the property does not exist.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Property{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("deleting property %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Images returns a property's images in display order.
func (r *Repository) Images(ctx context.Context, propertyID int64) ([]models.PropertyImage, error) {
	var imgs []models.PropertyImage
	err := imagesInOrder(r.db.WithContext(ctx)).Where("property_id = ?", propertyID).Find(&imgs).Error
	if err != nil {
		return nil, fmt.Errorf("listing images of property %d: %w", propertyID, err)
	}
	return imgs, nil
}

// AddImages appends images after the existing ones. If the property has no
// primary image yet, the first appended image becomes primary.
func (r *Repository) AddImages(ctx context.Context, propertyID int64, imgs []models.PropertyImage) error {
	if len(imgs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Property{}).Where("id = ?", propertyID).Count(&exists).Error; err != nil {
			return fmt.Errorf("checking property %d: %w", propertyID, err)
		}
		if exists == 0 {
			return fmt.Errorf("property %d: %w", propertyID, ErrNotFound)
		}

		var state struct {
			MaxOrder     *int
			PrimaryCount int64
		}
		err := tx.Model(&models.PropertyImage{}).
			Select("MAX(display_order) AS max_order, COALESCE(SUM(CASE WHEN is_primary THEN 1 ELSE 0 END), 0) AS primary_count").
			Where("property_id = ?", propertyID).
			Scan(&state).Error
		if err != nil {
			return fmt.Errorf("reading image order: %w", err)
		}

		next := 0
		if state.MaxOrder != nil {
			next = *state.MaxOrder + 1
		}
		for i := range imgs {
			imgs[i].ID = 0
			imgs[i].PropertyID = propertyID
			imgs[i].DisplayOrder = next + i
			imgs[i].IsPrimary = state.PrimaryCount == 0 && i == 0
		}
		if err := tx.Create(&imgs).Error; err != nil {
			return fmt.Errorf("inserting images: %w", err)
		}
		return nil
	})
}

// SetPrimaryImage marks one image primary and clears the flag on the others.
// Returns false if the image does not belong to the property.
func (r *Repository) SetPrimaryImage(ctx context.Context, propertyID, imageID int64) (bool, error) {
	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.PropertyImage{}).
			Where("id = ? AND property_id = ?", imageID, propertyID).
			Count(&n).Error; err != nil {
			return fmt.Errorf("checking image %d: %w", imageID, err)
		}
		if n == 0 {
			return nil
		}
		found = true
		if err := tx.Model(&models.PropertyImage{}).
			Where("property_id = ?", propertyID).
			UpdateColumn("is_primary", gorm.Expr("id = ?", imageID)).Error; err != nil {
			return fmt.Errorf("setting primary image: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// DeleteImage removes one image and returns it. When the primary image is
// removed, the next image in display order is promoted.
// Returns nil if the image does not belong to the property.
func (r *Repository) DeleteImage(ctx context.Context, propertyID, imageID int64) (*models.PropertyImage, error) {
	var deleted *models.PropertyImage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var img models.PropertyImage
		err := tx.Where("id = ? AND property_id = ?", imageID, propertyID).First(&img).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("querying image %d: %w", imageID, err)
		}
		if err := tx.Delete(&img).Error; err != nil {
			return fmt.Errorf("deleting image %d: %w", imageID, err)
		}
		deleted = &img

		if !img.IsPrimary {
			return nil
		}
		var next models.PropertyImage
		err = imagesInOrder(tx).Where("property_id = ?", propertyID).First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("finding next image: %w", err)
		}
		if err := tx.Model(&next).UpdateColumn("is_primary", true).Error; err != nil {
			return fmt.Errorf("promoting image %d: %w", next.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
