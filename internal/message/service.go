package message

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
	// ErrForbidden is returned when the caller is neither sender nor receiver.
	ErrForbidden = errors.New("not allowed to access this message")
	// ErrInvalidRecipient is returned for a missing receiver or a message to oneself.
	ErrInvalidRecipient = errors.New("invalid recipient")
	// ErrInvalidProperty is returned when the referenced property does not exist.
	ErrInvalidProperty = errors.New("referenced property does not exist")
)

// Service provides messaging business logic.
type Service struct {
	repo *Repository
	now  func() time.Time
}

// NewService creates a message service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Send delivers a message from the caller and returns it with both parties loaded.
func (s *Service) Send(ctx context.Context, caller auth.Identity, in SendInput) (*DTO, error) {
	receiverID := strings.TrimSpace(in.ReceiverID)
	if receiverID == caller.UserID {
		return nil, fmt.Errorf("%w: cannot send a message to yourself", ErrInvalidRecipient)
	}

	ok, err := s.repo.UserExists(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: user %s does not exist", ErrInvalidRecipient, receiverID)
	}

	if in.PropertyID != nil {
		ok, err := s.repo.PropertyExists(ctx, *in.PropertyID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrInvalidProperty, *in.PropertyID)
		}
	}

	m := &models.Message{
		SenderID:   caller.UserID,
		ReceiverID: receiverID,
		Subject:    strings.TrimSpace(in.Subject),
		Content:    in.Content,
		SentDate:   s.now(),
		PropertyID: in.PropertyID,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	slog.Info("message sent", "id", m.ID, "from", m.SenderID, "to", m.ReceiverID)

	sent, err := s.repo.GetByID(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	d := ToDTO(sent)
	return &d, nil
}

// Get returns a message to its sender or receiver. Opening an unread message
// as its receiver marks it read. Anyone else gets ErrNotFound.
func (s *Service) Get(ctx context.Context, caller auth.Identity, id int64) (*DTO, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.UserID != m.SenderID && caller.UserID != m.ReceiverID {
		return nil, fmt.Errorf("message %d: %w", id, ErrNotFound)
	}

	if caller.UserID == m.ReceiverID && !m.IsRead {
		if _, err := s.repo.MarkAsRead(ctx, id, caller.UserID); err != nil {
			return nil, err
		}
		m.IsRead = true
	}

	d := ToDTO(m)
	return &d, nil
}

// MarkAsRead flags a received message read.
// Returns false if the message does not exist or the caller did not receive it.
func (s *Service) MarkAsRead(ctx context.Context, caller auth.Identity, id int64) (bool, error) {
	return s.repo.MarkAsRead(ctx, id, caller.UserID)
}

// Delete removes a message on behalf of either party.
// Returns false if the message does not exist.
func (s *Service) Delete(ctx context.Context, caller auth.Identity, id int64) (bool, error) {
	m, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if caller.UserID != m.SenderID && caller.UserID != m.ReceiverID {
		return false, ErrForbidden
	}

	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		slog.Info("message deleted", "id", id, "by", caller.UserID)
	}
	return ok, nil
}

// Inbox returns the caller's received messages, newest first.
func (s *Service) Inbox(ctx context.Context, caller auth.Identity, p paging.Params) (paging.Result[DTO], error) {
	p = p.Normalize(paging.DefaultPageSize)
	msgs, total, err := s.repo.Inbox(ctx, caller.UserID, p)
	if err != nil {
		return paging.Result[DTO]{}, err
	}
	return paging.Map(msgs, total, p, ToDTO), nil
}

// Sent returns the caller's sent messages, newest first.
func (s *Service) Sent(ctx context.Context, caller auth.Identity, p paging.Params) (paging.Result[DTO], error) {
	p = p.Normalize(paging.DefaultPageSize)
	msgs, total, err := s.repo.Sent(ctx, caller.UserID, p)
	if err != nil {
		return paging.Result[DTO]{}, err
	}
	return paging.Map(msgs, total, p, ToDTO), nil
}

// UnreadCount returns the number of unread messages the caller has received.
func (s *Service) UnreadCount(ctx context.Context, caller auth.Identity) (int64, error) {
	return s.repo.UnreadCount(ctx, caller.UserID)
}
