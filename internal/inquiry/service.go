package inquiry

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
)

var (
	// ErrForbidden is returned when the caller may not see or change the inquiry.
	ErrForbidden = errors.New("not allowed to access this inquiry")
	// ErrOwnProperty is returned when an owner inquires about their own listing.
	ErrOwnProperty = errors.New("cannot send an inquiry about your own property")
	// ErrInvalidStatus is returned for a status outside the declared values.
	ErrInvalidStatus = errors.New("invalid inquiry status")
)

// Service provides inquiry business logic.
type Service struct {
	repo *Repository
	now  func() time.Time
}

// NewService creates an inquiry service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Create records a new inquiry from the caller. It starts in the New status.
func (s *Service) Create(ctx context.Context, caller auth.Identity, in CreateInput) (*DTO, error) {
	inq := &models.Inquiry{
		PropertyID:         in.PropertyID,
		UserID:             caller.UserID,
		Message:            strings.TrimSpace(in.Message),
		PhoneNumber:        strings.TrimSpace(in.PhoneNumber),
		PreferredVisitDate: in.PreferredVisitDate,
		Status:             models.InquiryStatusNew,
		RequestDate:        s.now(),
	}

	err := s.repo.Create(ctx, inq, func(p *models.Property) error {
		if p.OwnerID == caller.UserID {
			return ErrOwnProperty
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("inquiry created", "id", inq.ID, "property", inq.PropertyID, "user", inq.UserID)

	created, err := s.repo.GetByID(ctx, inq.ID)
	if err != nil {
		return nil, err
	}
	d := ToDTO(created)
	return &d, nil
}

// Get returns an inquiry visible to admins, the property owner and the sender.
func (s *Service) Get(ctx context.Context, caller auth.Identity, id int64) (*DTO, error) {
	inq, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && caller.UserID != inq.UserID && !ownsProperty(caller, inq) {
		return nil, ErrForbidden
	}
	d := ToDTO(inq)
	return &d, nil
}

// List returns every inquiry to admins and, to anyone else, the inquiries on
// listings they own.
func (s *Service) List(ctx context.Context, caller auth.Identity, f Filter) (paging.Result[DTO], error) {
	if !caller.IsAdmin() {
		f.OwnerID = caller.UserID
	}
	return s.list(ctx, f)
}

// Mine returns the inquiries the caller has sent.
func (s *Service) Mine(ctx context.Context, caller auth.Identity, f Filter) (paging.Result[DTO], error) {
	f.OwnerID = ""
	f.UserID = caller.UserID
	return s.list(ctx, f)
}

func (s *Service) list(ctx context.Context, f Filter) (paging.Result[DTO], error) {
	f.Params = f.Params.Normalize(paging.DefaultPageSize)
	inqs, total, err := s.repo.List(ctx, f)
	if err != nil {
		return paging.Result[DTO]{}, err
	}
	return paging.Map(inqs, total, f.Params, ToDTO), nil
}

// UpdateStatus moves an inquiry to a new status. Leaving the open state
// stamps the response date. Returns false if the inquiry does not exist.
func (s *Service) UpdateStatus(ctx context.Context, caller auth.Identity, id int64, in StatusInput) (bool, error) {
	if !in.Status.Valid() {
		return false, fmt.Errorf("%w: %d", ErrInvalidStatus, int(in.Status))
	}

	inq, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !caller.IsAdmin() && !ownsProperty(caller, inq) {
		return false, ErrForbidden
	}

	var respondedAt *time.Time
	if !in.Status.Open() {
		now := s.now()
		respondedAt = &now
	}

	ok, err := s.repo.UpdateStatus(ctx, id, in.Status, respondedAt, in.AdminNotes)
	if err != nil {
		return false, err
	}
	if ok {
		slog.Info("inquiry status changed", "id", id, "from", inq.Status, "to", in.Status)
	}
	return ok, nil
}

// Delete removes an inquiry. Only admins may delete.
// Returns false if the inquiry does not exist.
func (s *Service) Delete(ctx context.Context, caller auth.Identity, id int64) (bool, error) {
	if !caller.IsAdmin() {
		return false, ErrForbidden
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		slog.Info("inquiry deleted", "id", id)
	}
	return ok, nil
}

// PendingCount returns the number of inquiries still open.
func (s *Service) PendingCount(ctx context.Context) (int64, error) {
	return s.repo.PendingCount(ctx)
}

func ownsProperty(caller auth.Identity, inq *models.Inquiry) bool {
	return inq.Property != nil && caller.UserID != "" && inq.Property.OwnerID == caller.UserID
}
