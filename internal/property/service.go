package property

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/evcraddock/realty/internal/auth"
	"github.com/evcraddock/realty/internal/models"
	"github.com/evcraddock/realty/internal/paging"
	"github.com/evcraddock/realty/internal/storage"
)

var (
	// ErrForbidden is returned when the caller may not modify the property.
	ErrForbidden = errors.New("not allowed to modify this property")
	// ErrInvalidStatus is returned for a status outside the declared values.
	ErrInvalidStatus = errors.New("invalid property status")
	// ErrInvalidInput is returned for enum or image values that fail validation.
	ErrInvalidInput = errors.New("invalid property")
)

// Featured listing bounds.
const (
	DefaultFeaturedCount = 6
	maxFeaturedCount     = 50
)

// Service provides property business logic.
type Service struct {
	repo  *Repository
	store storage.Store
	now   func() time.Time
}

// NewService creates a property service. store may be nil, in which case
// image uploads are rejected.
func NewService(repo *Repository, store storage.Store) *Service {
	return &Service{repo: repo, store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Search returns one page of listings matching f.
func (s *Service) Search(ctx context.Context, f Filter) (paging.Result[DTO], error) {
	f.Params = f.Params.Normalize(paging.DefaultPageSize)
	props, total, err := s.repo.Search(ctx, f)
	if err != nil {
		return paging.Result[DTO]{}, err
	}
	return paging.Map(props, total, f.Params, ToDTO), nil
}

// Mine returns the caller's own listings.
func (s *Service) Mine(ctx context.Context, caller auth.Identity, f Filter) (paging.Result[DTO], error) {
	f.OwnerID = caller.UserID
	return s.Search(ctx, f)
}

// Get returns a property with its owner and images.
func (s *Service) Get(ctx context.Context, id int64) (*DTO, error) {
	p, err := s.repo.GetByIDWithDetails(ctx, id, false)
	if err != nil {
		return nil, err
	}
	d := ToDTO(p)
	return &d, nil
}

// View counts a visit to the detail page and returns the details.
// Inquiries are included for admins and the owner.
func (s *Service) View(ctx context.Context, id int64, caller *auth.Identity) (*DTO, error) {
	ok, err := s.repo.IncrementViewCount(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("property %d: %w", id, ErrNotFound)
	}

	p, err := s.repo.GetByIDWithDetails(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if caller != nil && canModify(*caller, p) {
		if p, err = s.repo.GetByIDWithDetails(ctx, id, true); err != nil {
			return nil, err
		}
	}
	d := ToDTO(p)
	return &d, nil
}

// Featured returns up to count featured listings that are still available.
func (s *Service) Featured(ctx context.Context, count int) ([]DTO, error) {
	if count <= 0 {
		count = DefaultFeaturedCount
	}
	count = min(count, maxFeaturedCount)

	props, err := s.repo.GetFeatured(ctx, count)
	if err != nil {
		return nil, err
	}
	out := make([]DTO, 0, len(props))
	for i := range props {
		out = append(out, ToDTO(&props[i]))
	}
	return out, nil
}

// Create publishes a new listing owned by the caller. The status always
// starts as Available and the first image URL becomes the primary image.
func (s *Service) Create(ctx context.Context, caller auth.Identity, in CreateInput) (*DTO, error) {
	if !caller.HasRole(models.RoleAdmin, models.RoleAgent) {
		return nil, ErrForbidden
	}
	if err := validateKinds(in.Type, in.Transaction); err != nil {
		return nil, err
	}

	now := s.now()
	p := &models.Property{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Type:        in.Type,
		Transaction: in.Transaction,
		Status:      models.PropertyStatusAvailable,
		Address:     strings.TrimSpace(in.Address),
		City:        strings.TrimSpace(in.City),
		Area:        in.Area,
		Bedrooms:    in.Bedrooms,
		Bathrooms:   in.Bathrooms,
		YearBuilt:   in.YearBuilt,
		IsFeatured:  in.IsFeatured,
		CreatedAt:   now,
		OwnerID:     caller.UserID,
	}
	for i, url := range in.ImageURLs {
		p.Images = append(p.Images, models.PropertyImage{
			ImageURL:     url,
			IsPrimary:    i == 0,
			DisplayOrder: i,
			UploadedAt:   now,
		})
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating property: %w", err)
	}
	slog.Info("property created", "id", p.ID, "owner", p.OwnerID)

	return s.Get(ctx, p.ID)
}

// Update replaces the editable fields of a listing.
// Returns false if the property does not exist.
func (s *Service) Update(ctx context.Context, caller auth.Identity, id int64, in UpdateInput) (bool, error) {
	if err := validateKinds(in.Type, in.Transaction); err != nil {
		return false, err
	}
	if !in.Status.Valid() {
		return false, fmt.Errorf("%w: %d", ErrInvalidStatus, int(in.Status))
	}

	p, err := s.authorized(ctx, caller, id)
	if err != nil || p == nil {
		return false, err
	}

	p.Title = strings.TrimSpace(in.Title)
	p.Description = strings.TrimSpace(in.Description)
	p.Price = in.Price
	p.Type = in.Type
	p.Transaction = in.Transaction
	p.Status = in.Status
	p.Address = strings.TrimSpace(in.Address)
	p.City = strings.TrimSpace(in.City)
	p.Area = in.Area
	p.Bedrooms = in.Bedrooms
	p.Bathrooms = in.Bathrooms
	p.YearBuilt = in.YearBuilt
	p.IsFeatured = in.IsFeatured

	ok, err := s.repo.Update(ctx, p)
	if err != nil {
		return false, err
	}
	if ok {
		slog.Info("property updated", "id", id)
	}
	return ok, nil
}

// UpdateStatus moves a listing to any status.
// Returns false if the property does not exist.
func (s *Service) UpdateStatus(ctx context.Context, caller auth.Identity, id int64, status models.PropertyStatus) (bool, error) {
	if !status.Valid() {
		return false, fmt.Errorf("%w: %d", ErrInvalidStatus, int(status))
	}

	p, err := s.authorized(ctx, caller, id)
	if err != nil || p == nil {
		return false, err
	}

	ok, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return false, err
	}
	if ok {
		slog.Info("property status changed", "id", id, "from", p.Status, "to", status)
	}
	return ok, nil
}

// Delete removes a listing and, best-effort, its stored image files.
// Returns false if the property does not exist.
func (s *Service) Delete(ctx context.Context, caller auth.Identity, id int64) (bool, error) {
	p, err := s.authorized(ctx, caller, id)
	if err != nil || p == nil {
		return false, err
	}

	imgs, err := s.repo.Images(ctx, id)
	if err != nil {
		return false, err
	}

	ok, err := s.repo.Delete(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	slog.Info("property deleted", "id", id)

	s.removeFiles(ctx, imgs...)
	return true, nil
}

// UploadImages stores files and appends them to the listing. Files already
// stored are removed again if anything fails.
func (s *Service) UploadImages(ctx context.Context, caller auth.Identity, id int64, uploads []Upload) ([]ImageDTO, error) {
	if s.store == nil {
		return nil, fmt.Errorf("image storage is not configured")
	}
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: no images uploaded", ErrInvalidInput)
	}

	p, err := s.authorized(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("property %d: %w", id, ErrNotFound)
	}

	now := s.now()
	imgs := make([]models.PropertyImage, 0, len(uploads))
	for _, u := range uploads {
		obj, err := s.store.Save(ctx, u.Data, u.Filename)
		if err != nil {
			s.removeFiles(ctx, imgs...)
			if isUploadError(err) {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInput, u.Filename, err)
			}
			return nil, fmt.Errorf("storing %s: %w", u.Filename, err)
		}
		imgs = append(imgs, models.PropertyImage{
			ImageURL:     obj.URL,
			ThumbnailURL: obj.ThumbnailURL,
			StorageKey:   obj.Key,
			UploadedAt:   now,
		})
	}

	if err := s.repo.AddImages(ctx, id, imgs); err != nil {
		s.removeFiles(ctx, imgs...)
		return nil, err
	}
	slog.Info("property images uploaded", "id", id, "count", len(imgs))

	return ToImageDTOs(imgs), nil
}

// SetPrimaryImage makes imageID the listing's primary image.
// Returns false if the property or image does not exist.
func (s *Service) SetPrimaryImage(ctx context.Context, caller auth.Identity, id, imageID int64) (bool, error) {
	p, err := s.authorized(ctx, caller, id)
	if err != nil || p == nil {
		return false, err
	}
	return s.repo.SetPrimaryImage(ctx, id, imageID)
}

// DeleteImage removes one image and its stored file.
// Returns false if the property or image does not exist.
func (s *Service) DeleteImage(ctx context.Context, caller auth.Identity, id, imageID int64) (bool, error) {
	p, err := s.authorized(ctx, caller, id)
	if err != nil || p == nil {
		return false, err
	}

	img, err := s.repo.DeleteImage(ctx, id, imageID)
	if err != nil || img == nil {
		return false, err
	}
	s.removeFiles(ctx, *img)
	return true, nil
}

// Statistics counts all listings and the listings in each status.
func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	total, err := s.repo.TotalCount(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{TotalCount: total, ByStatus: make(map[string]int64, len(models.PropertyStatuses))}
	for _, st := range models.PropertyStatuses {
		n, err := s.repo.CountByStatus(ctx, st)
		if err != nil {
			return nil, err
		}
		stats.ByStatus[st.String()] = n
	}
	return stats, nil
}

// authorized loads a property the caller may modify. It returns nil, nil
// when the property does not exist.
func (s *Service) authorized(ctx context.Context, caller auth.Identity, id int64) (*models.Property, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !canModify(caller, p) {
		return nil, ErrForbidden
	}
	return p, nil
}

// canModify reports whether caller is an admin or the property's owner.
func canModify(caller auth.Identity, p *models.Property) bool {
	return caller.IsAdmin() || (caller.UserID != "" && caller.UserID == p.OwnerID)
}

func validateKinds(t models.PropertyType, tx models.TransactionType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: unknown type %d", ErrInvalidInput, int(t))
	}
	if !tx.Valid() {
		return fmt.Errorf("%w: unknown transaction %d", ErrInvalidInput, int(tx))
	}
	return nil
}

func isUploadError(err error) bool {
	return errors.Is(err, storage.ErrUnsupportedType) ||
		errors.Is(err, storage.ErrTooLarge) ||
		errors.Is(err, storage.ErrInvalidImage)
}

// removeFiles deletes stored files for imgs, logging failures.
func (s *Service) removeFiles(ctx context.Context, imgs ...models.PropertyImage) {
	if s.store == nil {
		return
	}
	var keys []string
	for _, img := range imgs {
		if img.StorageKey != "" {
			keys = append(keys, img.StorageKey, storage.ThumbnailKey(img.StorageKey))
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := s.store.Delete(ctx, keys...); err != nil {
		slog.Warn("failed to remove image files", "error", err)
	}
}
